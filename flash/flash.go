// Package flash defines the capability object ringfs uses to talk to
// physical (or simulated) NOR flash: whole-sector erase, bit-clearing
// program, and random read. Nothing above this package knows whether the
// bytes behind it are a real device, a file, or RAM.
package flash

// Adapter is the flash access primitive ringfs is built on top of. It is
// kept minimal and interface-based (rather than exposing *os.File or a
// []byte directly) so a simulator and a real driver can coexist behind one
// type.
type Adapter interface {
	// Erase turns the whole sector containing anyAddrInSector into
	// all-ones (0xFF bytes).
	Erase(anyAddrInSector int32) error
	// Program bitwise-ANDs data into the memory starting at addr. It may
	// be called more than once against the same bytes, provided each
	// call only clears bits that are already set.
	Program(addr int32, data []byte) error
	// Read copies len(buf) bytes starting at addr into buf.
	Read(addr int32, buf []byte) error
}

// Partition describes a ringfs partition: its geometry on the device, and
// the Adapter it is addressed through. It is borrowed by a ringfs instance
// for the instance's entire lifetime; ringfs never closes or frees it.
type Partition struct {
	// SectorSize is the size of one erase unit, in bytes.
	SectorSize int32
	// SectorOffset is the sector index of the partition's start on the
	// underlying device.
	SectorOffset int32
	// SectorCount is the partition's length, in sectors.
	SectorCount int32
	// Adapter is the capability used to erase/program/read this
	// partition's sectors.
	Adapter Adapter
}
