// Package sector reads and writes the per-sector header and drives a
// sector through its ERASED -> FREE -> IN_USE -> ERASING -> FREE lifecycle.
//
// Grounded on cannyls-go's storage/journal region header handling
// (journal.JournalHeaderRegion.WriteTo/ReadFrom): a small fixed header read
// and written through the flash.Adapter, generalized from one journal head
// to one header per sector.
package sector

import (
	"github.com/pkg/errors"

	"github.com/flashring/ringfs/address"
	"github.com/flashring/ringfs/flash"
	"github.com/flashring/ringfs/wire"
)

// Status is the monotone 32-bit ladder a sector's lifecycle moves down.
// Every legal transition clears bits versus the prior value; flash can only
// clear bits (1->0), never set them, without a full erase.
type Status uint32

const (
	StatusErased     Status = 0xFFFFFFFF
	StatusFree       Status = 0xFFFFFF00
	StatusInUse      Status = 0xFFFF0000
	StatusErasing    Status = 0xFF000000
	StatusFormatting Status = 0x00000000
)

// HeaderSize is the size, in bytes, of the sector header (status + version).
const HeaderSize int32 = 8

// String renders a status for logs and dumps.
func (s Status) String() string {
	switch s {
	case StatusErased:
		return "ERASED"
	case StatusFree:
		return "FREE"
	case StatusInUse:
		return "IN_USE"
	case StatusErasing:
		return "ERASING"
	case StatusFormatting:
		return "FORMATTING"
	default:
		return "UNKNOWN"
	}
}

// Known reports whether s is one of the five ladder values.
func (s Status) Known() bool {
	switch s {
	case StatusErased, StatusFree, StatusInUse, StatusErasing, StatusFormatting:
		return true
	default:
		return false
	}
}

// Header is a sector's on-flash header contents.
type Header struct {
	Status  Status
	Version uint32
}

func headerAddr(sectorOffset, sectorSize, k int32) address.Address {
	return address.SectorHeaderAddress(sectorOffset, sectorSize, HeaderSize, k)
}

// ReadHeader reads sector k's header.
func ReadHeader(p flash.Partition, k int32) (Header, error) {
	buf := make([]byte, HeaderSize)
	addr := headerAddr(p.SectorOffset, p.SectorSize, k)
	if err := p.Adapter.Read(addr.AsInt32(), buf); err != nil {
		return Header{}, errors.Wrapf(err, "sector %d: read header", k)
	}
	return Header{
		Status:  Status(wire.GetUint32(buf[0:4])),
		Version: wire.GetUint32(buf[4:8]),
	}, nil
}

// GetStatus reads only the status word of sector k's header.
func GetStatus(p flash.Partition, k int32) (Status, error) {
	h, err := ReadHeader(p, k)
	if err != nil {
		return 0, err
	}
	return h.Status, nil
}

// SetStatus programs a new status into sector k's header. Because flash
// program only ANDs bits into what's already there, it is the caller's
// duty to pass a value that is a bitwise-AND descendant of the current
// one; SetStatus does not validate this itself, since a program call
// against a value that isn't a strict descendant is not an error on real
// flash, just a program that clears more than the caller intended.
func SetStatus(p flash.Partition, k int32, s Status) error {
	var buf [4]byte
	wire.PutUint32(buf[:], uint32(s))
	addr := headerAddr(p.SectorOffset, p.SectorSize, k)
	if err := p.Adapter.Program(addr.AsInt32(), buf[:]); err != nil {
		return errors.Wrapf(err, "sector %d: program status %#x", k, uint32(s))
	}
	return nil
}

// setVersion programs the version word of sector k's header. Called only
// during Free, right after the physical erase, so the header is currently
// all-ones and any version value can be programmed.
func setVersion(p flash.Partition, k int32, version uint32) error {
	var buf [4]byte
	wire.PutUint32(buf[:], version)
	addr := headerAddr(p.SectorOffset, p.SectorSize, k).Add(address.FromInt32(4))
	if err := p.Adapter.Program(addr.AsInt32(), buf[:]); err != nil {
		return errors.Wrapf(err, "sector %d: program version", k)
	}
	return nil
}

// Free performs the crash-safe erase of sector k: program ERASING, erase
// physically, program the version, program FREE. If power is lost at any
// point the next mount scan recognizes ERASED or ERASING and retries Free
// (see ringfs.Instance.Scan), so this function's steps need not be atomic
// with respect to each other.
func Free(p flash.Partition, k int32, version uint32) error {
	status, err := GetStatus(p, k)
	if err != nil {
		return err
	}

	if status != StatusErased && status != StatusErasing {
		if err := SetStatus(p, k, StatusErasing); err != nil {
			return err
		}
	}

	anyAddr := address.SectorAddress(p.SectorOffset, p.SectorSize, k)
	if err := p.Adapter.Erase(anyAddr.AsInt32()); err != nil {
		return errors.Wrapf(err, "sector %d: physical erase", k)
	}

	if err := setVersion(p, k, version); err != nil {
		return err
	}

	return SetStatus(p, k, StatusFree)
}
