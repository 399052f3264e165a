package slot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashring/ringfs/flash"
	"github.com/flashring/ringfs/internal/flashsim"
	"github.com/flashring/ringfs/location"
)

func testPartition(t *testing.T) (flash.Partition, Geometry) {
	t.Helper()
	sim := flashsim.New(128*4, 128)
	p := flash.Partition{SectorSize: 128, SectorOffset: 0, SectorCount: 4, Adapter: sim}
	g := Geometry{SectorOffset: 0, SectorSize: 128, ObjectSize: 8}
	return p, g
}

func TestFreshSlotReadsErased(t *testing.T) {
	p, g := testPartition(t)
	status, err := GetStatus(p, g, location.Location{Sector: 0, Slot: 0})
	require.NoError(t, err)
	assert.Equal(t, StatusErased, status)
}

func TestStatusLadderMovesForward(t *testing.T) {
	p, g := testPartition(t)
	loc := location.Location{Sector: 1, Slot: 3}

	require.NoError(t, SetStatus(p, g, loc, StatusReserved))
	status, err := GetStatus(p, g, loc)
	require.NoError(t, err)
	assert.Equal(t, StatusReserved, status)

	require.NoError(t, SetStatus(p, g, loc, StatusValid))
	status, err = GetStatus(p, g, loc)
	require.NoError(t, err)
	assert.Equal(t, StatusValid, status)

	require.NoError(t, SetStatus(p, g, loc, StatusGarbage))
	status, err = GetStatus(p, g, loc)
	require.NoError(t, err)
	assert.Equal(t, StatusGarbage, status)
}

func TestWriteThenReadPayloadRoundTrips(t *testing.T) {
	p, g := testPartition(t)
	loc := location.Location{Sector: 0, Slot: 1}

	require.NoError(t, SetStatus(p, g, loc, StatusReserved))
	require.NoError(t, WritePayload(p, g, loc, []byte{1, 2, 3, 4, 5, 6, 7, 8}))
	require.NoError(t, SetStatus(p, g, loc, StatusValid))

	buf := make([]byte, 8)
	require.NoError(t, ReadPayload(p, g, loc, buf))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, buf)
}

func TestWritePayloadRejectsWrongSize(t *testing.T) {
	p, g := testPartition(t)
	loc := location.Location{Sector: 0, Slot: 0}
	err := WritePayload(p, g, loc, []byte{1, 2, 3})
	assert.Error(t, err)
}

func TestReadPayloadRejectsWrongSize(t *testing.T) {
	p, g := testPartition(t)
	loc := location.Location{Sector: 0, Slot: 0}
	err := ReadPayload(p, g, loc, make([]byte, 3))
	assert.Error(t, err)
}

func TestPayloadAddrFollowsHeader(t *testing.T) {
	g := Geometry{SectorOffset: 0, SectorSize: 128, ObjectSize: 8}
	loc := location.Location{Sector: 0, Slot: 0}
	got := PayloadAddr(g, loc)
	assert.Equal(t, int32(HeaderSize), got.AsInt32())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "ERASED", StatusErased.String())
	assert.Equal(t, "RESERVED", StatusReserved.String())
	assert.Equal(t, "VALID", StatusValid.String())
	assert.Equal(t, "GARBAGE", StatusGarbage.String())
	assert.Equal(t, "UNKNOWN", Status(0x12345678).String())
}
