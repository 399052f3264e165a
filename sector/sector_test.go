package sector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashring/ringfs/flash"
	"github.com/flashring/ringfs/internal/flashsim"
)

func testPartition(t *testing.T) (flash.Partition, *flashsim.Sim) {
	t.Helper()
	sim := flashsim.New(128*4, 128)
	return flash.Partition{
		SectorSize:   128,
		SectorOffset: 0,
		SectorCount:  4,
		Adapter:      sim,
	}, sim
}

func TestFreshSectorReadsErased(t *testing.T) {
	p, _ := testPartition(t)
	status, err := GetStatus(p, 0)
	require.NoError(t, err)
	assert.Equal(t, StatusErased, status)
}

func TestFreeFromErasedSetsFreeAndVersion(t *testing.T) {
	p, _ := testPartition(t)
	require.NoError(t, Free(p, 0, 42))

	h, err := ReadHeader(p, 0)
	require.NoError(t, err)
	assert.Equal(t, StatusFree, h.Status)
	assert.Equal(t, uint32(42), h.Version)
}

func TestFreeIsIdempotentOnAlreadyFreeSector(t *testing.T) {
	p, _ := testPartition(t)
	require.NoError(t, Free(p, 0, 1))
	require.NoError(t, Free(p, 0, 1))

	status, err := GetStatus(p, 0)
	require.NoError(t, err)
	assert.Equal(t, StatusFree, status)
}

func TestFreeFromInUseTransitionsThroughErasing(t *testing.T) {
	p, _ := testPartition(t)
	require.NoError(t, Free(p, 0, 1))
	require.NoError(t, SetStatus(p, 0, StatusInUse))

	require.NoError(t, Free(p, 0, 2))

	h, err := ReadHeader(p, 0)
	require.NoError(t, err)
	assert.Equal(t, StatusFree, h.Status)
	assert.Equal(t, uint32(2), h.Version)
}

func TestFreeFromFormattingCollapsesToErasedBits(t *testing.T) {
	// FORMATTING is all-zero, so programming ERASING over it (an AND) is a
	// no-op that leaves the word at zero; the physical erase that follows
	// is what actually restores the sector.
	p, _ := testPartition(t)
	require.NoError(t, SetStatus(p, 0, StatusFormatting))

	require.NoError(t, Free(p, 0, 7))

	h, err := ReadHeader(p, 0)
	require.NoError(t, err)
	assert.Equal(t, StatusFree, h.Status)
	assert.Equal(t, uint32(7), h.Version)
}

func TestKnown(t *testing.T) {
	assert.True(t, StatusErased.Known())
	assert.True(t, StatusFormatting.Known())
	assert.False(t, Status(0x12345678).Known())
}
