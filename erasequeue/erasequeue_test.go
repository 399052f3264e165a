package erasequeue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashring/ringfs/flash"
	"github.com/flashring/ringfs/internal/flashsim"
	"github.com/flashring/ringfs/ringfs"
)

func newInstance(t *testing.T) *ringfs.Instance {
	t.Helper()
	sim := flashsim.New(128*4, 128)
	partition := flash.Partition{SectorSize: 128, SectorOffset: 0, SectorCount: 4, Adapter: sim}
	inst, err := ringfs.Init(partition, 1, 4)
	require.NoError(t, err)
	require.NoError(t, inst.Format())
	require.NoError(t, inst.Scan())
	return inst
}

func TestSubmitIncreasesPending(t *testing.T) {
	s := New()
	inst := newInstance(t)
	s.Submit(Hint{Instance: inst, Sector: 2})
	assert.Equal(t, 1, s.Pending())
}

func TestRunDrainsSubmittedHints(t *testing.T) {
	s := New()
	inst := newInstance(t)
	go s.Run()
	defer s.Stop()

	s.Submit(Hint{Instance: inst, Sector: 2})

	require.Eventually(t, func() bool { return s.Pending() == 0 }, time.Second, time.Millisecond)
}
