package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvanceSlotWithinSector(t *testing.T) {
	loc := AdvanceSlot(Location{Sector: 1, Slot: 3}, 15, 4)
	assert.Equal(t, Location{Sector: 1, Slot: 4}, loc)
}

func TestAdvanceSlotRollsOverSector(t *testing.T) {
	loc := AdvanceSlot(Location{Sector: 1, Slot: 14}, 15, 4)
	assert.Equal(t, Location{Sector: 2, Slot: 0}, loc)
}

func TestAdvanceSectorWrapsPartition(t *testing.T) {
	loc := AdvanceSector(Location{Sector: 3, Slot: 5}, 4)
	assert.Equal(t, Location{Sector: 0, Slot: 0}, loc)
}

func TestDistanceSameLocation(t *testing.T) {
	loc := Location{Sector: 2, Slot: 5}
	assert.Equal(t, int32(0), Distance(loc, loc, 15, 4))
}

func TestDistanceAcrossSectors(t *testing.T) {
	a := Location{Sector: 0, Slot: 10}
	b := Location{Sector: 1, Slot: 2}
	assert.Equal(t, int32(15-10+2), Distance(a, b, 15, 4))
}
