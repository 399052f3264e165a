// Package location implements the (sector, slot) cursor arithmetic ringfs
// walks read/write/cursor positions with, wrapping at partition
// boundaries. Grounded on cannyls-go's storage/journal ring-buffer wrap
// arithmetic (JournalRingBuffer's tail-reset-to-zero on overflow),
// generalized from a single byte offset to a two-level sector/slot pair.
package location

// Location names one slot within a partition.
type Location struct {
	Sector int32
	Slot   int32
}

// Equal reports whether a and b name the same slot.
func (a Location) Equal(b Location) bool {
	return a.Sector == b.Sector && a.Slot == b.Slot
}

// AdvanceSlot moves loc to the next slot, rolling over into the next
// sector (wrapping the partition) when slotsPerSector is exceeded.
func AdvanceSlot(loc Location, slotsPerSector, sectorCount int32) Location {
	loc.Slot++
	if loc.Slot >= slotsPerSector {
		loc = AdvanceSector(loc, sectorCount)
	}
	return loc
}

// AdvanceSector moves loc to slot 0 of the next sector, wrapping around the
// partition's sector count.
func AdvanceSector(loc Location, sectorCount int32) Location {
	loc.Slot = 0
	loc.Sector = (loc.Sector + 1) % sectorCount
	return loc
}

// Distance computes an O(1) estimate of the slot count between a and b:
// sector distance (mod sectorCount) times slots-per-sector, plus the raw
// slot delta. It is intentionally not slot-clamped, so it may overestimate
// when garbage slots are present between a and b, rather than walking the
// ring to count exactly.
func Distance(a, b Location, slotsPerSector, sectorCount int32) int32 {
	sectorDelta := ((b.Sector - a.Sector) % sectorCount + sectorCount) % sectorCount
	return sectorDelta*slotsPerSector + (b.Slot - a.Slot)
}
