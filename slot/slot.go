// Package slot reads and writes the per-slot 4-byte header that drives a
// slot through ERASED -> RESERVED -> VALID -> GARBAGE.
//
// Grounded on cannyls-go's storage/journal record header handling
// (journal/record.go's writeRecordHeader/readRecordHeader), narrowed from a
// tagged, checksummed record header to a single fixed-width status word,
// since ringfs slots carry no payload checksum.
package slot

import (
	"github.com/pkg/errors"

	"github.com/flashring/ringfs/address"
	"github.com/flashring/ringfs/flash"
	"github.com/flashring/ringfs/location"
	"github.com/flashring/ringfs/wire"
)

// Status is the monotone 32-bit ladder a slot's lifecycle moves down.
type Status uint32

const (
	StatusErased   Status = 0xFFFFFFFF
	StatusReserved Status = 0xFFFFFF00
	StatusValid    Status = 0xFFFF0000
	StatusGarbage  Status = 0xFF000000
)

// HeaderSize is the size, in bytes, of a slot's status header.
const HeaderSize int32 = 4

func (s Status) String() string {
	switch s {
	case StatusErased:
		return "ERASED"
	case StatusReserved:
		return "RESERVED"
	case StatusValid:
		return "VALID"
	case StatusGarbage:
		return "GARBAGE"
	default:
		return "UNKNOWN"
	}
}

// Geometry carries the fields slot address arithmetic needs, mirroring the
// subset of flash.Partition plus object size that every call site here
// otherwise had to pass individually.
type Geometry struct {
	SectorOffset int32
	SectorSize   int32
	ObjectSize   int32
}

func slotAddr(g Geometry, loc location.Location) address.Address {
	return address.SlotAddress(g.SectorOffset, g.SectorSize, HeaderSize, g.ObjectSize, loc.Sector, loc.Slot)
}

// PayloadAddr returns the byte address of loc's payload, just past its
// status header.
func PayloadAddr(g Geometry, loc location.Location) address.Address {
	return slotAddr(g, loc).Add(address.FromInt32(HeaderSize))
}

// GetStatus reads the status word of the slot at loc.
func GetStatus(p flash.Partition, g Geometry, loc location.Location) (Status, error) {
	var buf [4]byte
	addr := slotAddr(g, loc)
	if err := p.Adapter.Read(addr.AsInt32(), buf[:]); err != nil {
		return 0, errors.Wrapf(err, "slot %+v: read status", loc)
	}
	return Status(wire.GetUint32(buf[:])), nil
}

// SetStatus programs a new status into the slot at loc. As with sector
// status, this only ANDs bits into what's there; callers are responsible
// for only moving down the ladder.
func SetStatus(p flash.Partition, g Geometry, loc location.Location, s Status) error {
	var buf [4]byte
	wire.PutUint32(buf[:], uint32(s))
	addr := slotAddr(g, loc)
	if err := p.Adapter.Program(addr.AsInt32(), buf[:]); err != nil {
		return errors.Wrapf(err, "slot %+v: program status %#x", loc, uint32(s))
	}
	return nil
}

// WritePayload programs the object bytes for the slot at loc. Callers must
// call this only after the slot has been reserved (see ringfs.Append), so a
// torn write leaves the slot RESERVED, never VALID, and inert to readers.
func WritePayload(p flash.Partition, g Geometry, loc location.Location, payload []byte) error {
	if int32(len(payload)) != g.ObjectSize {
		return errors.Errorf("slot %+v: payload is %d bytes, want %d", loc, len(payload), g.ObjectSize)
	}
	addr := PayloadAddr(g, loc)
	if err := p.Adapter.Program(addr.AsInt32(), payload); err != nil {
		return errors.Wrapf(err, "slot %+v: program payload", loc)
	}
	return nil
}

// ReadPayload reads the object bytes stored in the slot at loc into buf.
func ReadPayload(p flash.Partition, g Geometry, loc location.Location, buf []byte) error {
	if int32(len(buf)) != g.ObjectSize {
		return errors.Errorf("slot %+v: read buffer is %d bytes, want %d", loc, len(buf), g.ObjectSize)
	}
	addr := PayloadAddr(g, loc)
	if err := p.Adapter.Read(addr.AsInt32(), buf); err != nil {
		return errors.Wrapf(err, "slot %+v: read payload", loc)
	}
	return nil
}
