// Package address performs the byte-address arithmetic that turns a
// (sector, slot) location into an offset a flash.Adapter understands.
package address

// MaxAddress bounds the byte offsets ringfs will address. Partition
// geometry is 32-bit signed throughout.
const MaxAddress = (1 << 30) - 1

// Address is a byte offset within a flash partition.
type Address int32

// FromInt32 wraps a raw offset, panicking if it falls outside range.
func FromInt32(val int32) Address {
	if val < 0 || val > MaxAddress {
		panic("address: value out of range")
	}
	return Address(val)
}

// AsInt32 returns the raw byte offset.
func (a Address) AsInt32() int32 {
	return int32(a)
}

// Add returns a+b, panicking on overflow past MaxAddress.
func (a Address) Add(b Address) Address {
	return FromInt32(int32(a) + int32(b))
}

// Sub returns a-b, panicking if b > a.
func (a Address) Sub(b Address) Address {
	if b > a {
		panic("address: subtraction underflows")
	}
	return FromInt32(int32(a) - int32(b))
}

// SectorAddress computes the base byte address of sector k within a
// partition that starts sectorOffset sectors into the device.
func SectorAddress(sectorOffset, sectorSize, k int32) Address {
	return FromInt32((sectorOffset + k) * sectorSize)
}

// SlotAddress computes the byte address of a slot within a sector, where
// each slot occupies slotHeaderSize+objectSize bytes.
func SlotAddress(sectorOffset, sectorSize, slotHeaderSize, objectSize, sector, slot int32) Address {
	base := SectorAddress(sectorOffset, sectorSize, sector)
	return base.Add(FromInt32(slot * (slotHeaderSize + objectSize)))
}

// SectorHeaderAddress returns the address of the 8-byte sector header,
// which lives at the end of the sector.
func SectorHeaderAddress(sectorOffset, sectorSize, sectorHeaderSize, k int32) Address {
	base := SectorAddress(sectorOffset, sectorSize, k)
	return base.Add(FromInt32(sectorSize - sectorHeaderSize))
}
