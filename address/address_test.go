package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddress(t *testing.T) {
	a1 := FromInt32(0)
	assert.Equal(t, Address(0), a1)

	aMax := FromInt32(MaxAddress)
	assert.Equal(t, Address(MaxAddress), aMax)

	assert.Panics(t, func() { FromInt32(MaxAddress + 1) })
	assert.Panics(t, func() { FromInt32(-1) })

	assert.Equal(t, Address(12), FromInt32(10).Add(FromInt32(2)))
	assert.Panics(t, func() { FromInt32(0).Sub(FromInt32(5)) })
}

func TestSectorAndSlotAddress(t *testing.T) {
	// sector_size=128, sector_offset=0, header size 8, object size 4,
	// slot header size 4 -> slot stride 8.
	assert.Equal(t, Address(0), SectorAddress(0, 128, 0))
	assert.Equal(t, Address(128), SectorAddress(0, 128, 1))
	assert.Equal(t, Address(256), SectorAddress(0, 128, 2))

	assert.Equal(t, Address(0), SlotAddress(0, 128, 4, 4, 0, 0))
	assert.Equal(t, Address(8), SlotAddress(0, 128, 4, 4, 0, 1))
	assert.Equal(t, Address(128+16), SlotAddress(0, 128, 4, 4, 1, 2))

	assert.Equal(t, Address(120), SectorHeaderAddress(0, 128, 8, 0))
	assert.Equal(t, Address(248), SectorHeaderAddress(0, 128, 8, 1))
}

func TestSectorAddressWithOffset(t *testing.T) {
	assert.Equal(t, Address(384), SectorAddress(3, 128, 0))
}
