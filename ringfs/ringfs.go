// Package ringfs implements a crash-safe, wear-levelling FIFO log of
// fixed-size records over a flash.Partition: oldest-first consumption,
// append at the head, automatic overwrite of the oldest records when full,
// and recovery of a consistent read/write position after an unclean
// shutdown.
//
// Grounded structurally on cannyls-go's storage.Storage: a value that owns
// no goroutines, exposes synchronous methods over a borrowed backing
// device, and reconstructs its volatile index by walking the device at
// open time rather than persisting it separately.
package ringfs

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"

	"github.com/flashring/ringfs/block"
	"github.com/flashring/ringfs/flash"
	"github.com/flashring/ringfs/location"
	"github.com/flashring/ringfs/metrics"
	"github.com/flashring/ringfs/ringerr"
	"github.com/flashring/ringfs/sector"
	"github.com/flashring/ringfs/slot"
)

// maxScanSteps bounds the slot-walking loops in Scan/Fetch/CountExact. Any
// well-formed ring visits at most one full pass over every slot; a walk
// that exceeds this indicates the on-flash state machine has been
// violated in a way Scan's per-sector checks did not already catch.
const maxScanSteps = 1 << 20

// Instance is a mounted ring log over one flash.Partition. The zero value
// is not usable; construct one with Init.
type Instance struct {
	partition  flash.Partition
	version    uint32
	objectSize int32

	slotsPerSector int32
	geometry       slot.Geometry

	// SessionID correlates log lines and metric labels across this
	// instance's lifetime. It is never written to flash.
	SessionID uuid.UUID

	read, write, cursor location.Location
	cache                *block.PageBuffer
}

// Init prepares an Instance over partition without touching the medium.
// Callers must follow it with either Format (destructive) or Scan
// (recovery) before using the instance.
func Init(partition flash.Partition, version uint32, objectSize int32) (*Instance, error) {
	if partition.SectorCount < 2 {
		return nil, errors.Wrap(ringerr.ErrInvalidInput, "ringfs: need at least 2 sectors to keep one FREE")
	}
	if objectSize <= 0 {
		return nil, errors.Wrap(ringerr.ErrInvalidInput, "ringfs: object size must be positive")
	}

	usable := partition.SectorSize - sector.HeaderSize
	slotSize := slot.HeaderSize + objectSize
	if usable < slotSize {
		return nil, errors.Wrap(ringerr.ErrInvalidInput, "ringfs: sector too small to hold one slot")
	}
	slotsPerSector := usable / slotSize

	return &Instance{
		partition:      partition,
		version:        version,
		objectSize:     objectSize,
		slotsPerSector: slotsPerSector,
		geometry: slot.Geometry{
			SectorOffset: partition.SectorOffset,
			SectorSize:   partition.SectorSize,
			ObjectSize:   objectSize,
		},
		SessionID: uuid.NewV4(),
	}, nil
}

// SlotsPerSector returns the derived slots-per-sector for this instance's
// geometry.
func (r *Instance) SlotsPerSector() int32 {
	return r.slotsPerSector
}

// Capacity returns the number of records the ring can hold. One sector is
// always reserved as rotation buffer.
func (r *Instance) Capacity() int32 {
	return r.slotsPerSector * (r.partition.SectorCount - 1)
}

// Format performs the two-phase global wipe that turns arbitrary flash
// contents into a valid empty ring.
func (r *Instance) Format() error {
	for k := int32(0); k < r.partition.SectorCount; k++ {
		if err := sector.SetStatus(r.partition, k, sector.StatusFormatting); err != nil {
			metrics.Count(metrics.RingMetric.AdapterErrors)
			return errors.Wrapf(err, "ringfs: format sector %d to FORMATTING", k)
		}
	}
	for k := int32(0); k < r.partition.SectorCount; k++ {
		if err := sector.Free(r.partition, k, r.version); err != nil {
			metrics.Count(metrics.RingMetric.ErasesFailed)
			return errors.Wrapf(err, "ringfs: format free sector %d", k)
		}
		metrics.Count(metrics.RingMetric.SectorErasures)
	}
	r.read = location.Location{}
	r.write = location.Location{}
	r.cursor = location.Location{}
	return nil
}

// Scan rebuilds read, write, and cursor from on-flash state alone. It is
// the recovery path after any restart, including after a clean one.
func (r *Instance) Scan() error {
	previousFree := true
	freeSeen, usedSeen := false, false
	readSector, writeSector := int32(0), int32(0)

	for k := int32(0); k < r.partition.SectorCount; k++ {
		h, err := sector.ReadHeader(r.partition, k)
		if err != nil {
			metrics.Count(metrics.RingMetric.AdapterErrors)
			metrics.Count(metrics.RingMetric.ScanFailures)
			return errors.Wrapf(err, "ringfs: scan read sector %d header", k)
		}

		currentFree := false
		switch h.Status {
		case sector.StatusFormatting:
			metrics.Count(metrics.RingMetric.ScanFailures)
			return errors.Wrapf(ringerr.ErrCorrupted, "ringfs: sector %d interrupted mid-format", k)
		case sector.StatusErased, sector.StatusErasing:
			if err := sector.Free(r.partition, k, r.version); err != nil {
				// Permissive: leave this sector as not-yet-free and let a
				// future Append retry it, rather than failing the scan.
				metrics.Count(metrics.RingMetric.ErasesFailed)
				currentFree = false
			} else {
				metrics.Count(metrics.RingMetric.ScanRepairs)
				metrics.Count(metrics.RingMetric.SectorErasures)
				currentFree = true
				freeSeen = true
			}
		case sector.StatusFree:
			currentFree = true
			freeSeen = true
		case sector.StatusInUse:
			if h.Version != r.version {
				metrics.Count(metrics.RingMetric.ScanFailures)
				return errors.Wrapf(ringerr.ErrIncompatibleVersion, "ringfs: sector %d version %#x, want %#x", k, h.Version, r.version)
			}
			currentFree = false
			usedSeen = true
		default:
			metrics.Count(metrics.RingMetric.CorruptionSeen)
			metrics.Count(metrics.RingMetric.ScanFailures)
			return errors.Wrapf(ringerr.ErrCorrupted, "ringfs: sector %d has unknown status %#x", k, uint32(h.Status))
		}

		if !currentFree && previousFree {
			readSector = k
		}
		if currentFree && !previousFree {
			writeSector = k - 1
		}
		previousFree = currentFree
	}

	if !freeSeen {
		metrics.Count(metrics.RingMetric.ScanFailures)
		return errors.Wrap(ringerr.ErrInvariant, "ringfs: no FREE sector found at mount")
	}
	if !usedSeen {
		readSector = 0
		writeSector = 0
	}

	write := location.Location{Sector: writeSector, Slot: 0}
	steps := int32(0)
	for write.Slot < r.slotsPerSector && steps < maxScanSteps {
		status, err := slot.GetStatus(r.partition, r.geometry, write)
		if err != nil {
			metrics.Count(metrics.RingMetric.AdapterErrors)
			metrics.Count(metrics.RingMetric.ScanFailures)
			return errors.Wrapf(err, "ringfs: scan read slot %+v status", write)
		}
		if status == slot.StatusErased {
			break
		}
		write.Slot++
		steps++
	}
	if write.Slot >= r.slotsPerSector {
		write = location.AdvanceSector(write, r.partition.SectorCount)
	}

	read := location.Location{Sector: readSector, Slot: 0}
	steps = 0
	for !read.Equal(write) && steps < maxScanSteps {
		status, err := slot.GetStatus(r.partition, r.geometry, read)
		if err != nil {
			metrics.Count(metrics.RingMetric.AdapterErrors)
			metrics.Count(metrics.RingMetric.ScanFailures)
			return errors.Wrapf(err, "ringfs: scan read slot %+v status", read)
		}
		if status == slot.StatusValid {
			break
		}
		read = location.AdvanceSlot(read, r.slotsPerSector, r.partition.SectorCount)
		steps++
	}

	r.write = write
	r.read = read
	r.cursor = read
	return nil
}

// Append writes payload as the next record, freeing and reclaiming the
// oldest sector when the ring is full. len(payload) must equal the
// instance's object size.
func (r *Instance) Append(payload []byte) error {
	if int32(len(payload)) != r.objectSize {
		return errors.Wrapf(ringerr.ErrInvalidInput, "ringfs: append payload is %d bytes, want %d", len(payload), r.objectSize)
	}

	next := (r.write.Sector + 1) % r.partition.SectorCount
	nextStatus, err := sector.GetStatus(r.partition, next)
	if err != nil {
		metrics.Count(metrics.RingMetric.AdapterErrors)
		metrics.Count(metrics.RingMetric.AppendFailures)
		return errors.Wrapf(err, "ringfs: append read sector %d status", next)
	}
	if nextStatus != sector.StatusFree {
		if r.read.Sector == next {
			r.read = location.AdvanceSector(r.read, r.partition.SectorCount)
		}
		if r.cursor.Sector == next {
			r.cursor = location.AdvanceSector(r.cursor, r.partition.SectorCount)
		}
		if err := sector.Free(r.partition, next, r.version); err != nil {
			metrics.Count(metrics.RingMetric.ErasesFailed)
			metrics.Count(metrics.RingMetric.AppendFailures)
			return errors.Wrapf(err, "ringfs: append free sector %d", next)
		}
		metrics.Count(metrics.RingMetric.SectorErasures)
	}

	writeStatus, err := sector.GetStatus(r.partition, r.write.Sector)
	if err != nil {
		metrics.Count(metrics.RingMetric.AdapterErrors)
		metrics.Count(metrics.RingMetric.AppendFailures)
		return errors.Wrapf(err, "ringfs: append read sector %d status", r.write.Sector)
	}
	switch writeStatus {
	case sector.StatusFree:
		if err := sector.SetStatus(r.partition, r.write.Sector, sector.StatusInUse); err != nil {
			metrics.Count(metrics.RingMetric.AdapterErrors)
			metrics.Count(metrics.RingMetric.AppendFailures)
			return errors.Wrapf(err, "ringfs: append promote sector %d to IN_USE", r.write.Sector)
		}
	case sector.StatusInUse:
		// already open for writing
	default:
		metrics.Count(metrics.RingMetric.CorruptionSeen)
		metrics.Count(metrics.RingMetric.AppendFailures)
		return errors.Wrapf(ringerr.ErrCorrupted, "ringfs: write sector %d has status %#x, want FREE or IN_USE", r.write.Sector, uint32(writeStatus))
	}

	if err := slot.SetStatus(r.partition, r.geometry, r.write, slot.StatusReserved); err != nil {
		metrics.Count(metrics.RingMetric.AdapterErrors)
		metrics.Count(metrics.RingMetric.AppendFailures)
		return errors.Wrapf(err, "ringfs: reserve slot %+v", r.write)
	}
	if err := slot.WritePayload(r.partition, r.geometry, r.write, payload); err != nil {
		metrics.Count(metrics.RingMetric.AdapterErrors)
		metrics.Count(metrics.RingMetric.AppendFailures)
		return errors.Wrapf(err, "ringfs: write payload at %+v", r.write)
	}
	if err := slot.SetStatus(r.partition, r.geometry, r.write, slot.StatusValid); err != nil {
		metrics.Count(metrics.RingMetric.AdapterErrors)
		metrics.Count(metrics.RingMetric.AppendFailures)
		return errors.Wrapf(err, "ringfs: commit slot %+v", r.write)
	}

	r.write = location.AdvanceSlot(r.write, r.slotsPerSector, r.partition.SectorCount)
	metrics.Count(metrics.RingMetric.Appends)
	return nil
}

// AppendToCache buffers data into the instance's page-coalescing buffer,
// flushing the buffer via Append when data would overflow it. The buffer's
// capacity is the instance's object size, so a flush writes exactly one
// record. It returns the number of bytes accepted, which is len(data) on
// success.
func (r *Instance) AppendToCache(data []byte) (int32, error) {
	if r.cache == nil {
		r.cache = block.NewPageBuffer(r.objectSize)
	}
	n, err := r.cache.Append(data, func(page []byte) error {
		metrics.Count(metrics.RingMetric.CacheFlushes)
		return r.Append(page)
	})
	if err != nil {
		metrics.Count(metrics.RingMetric.AppendFailures)
		return 0, err
	}
	return n, nil
}

// Fetch reads the next VALID record starting at cursor into buf, advancing
// cursor past it. buf must be exactly the instance's object size. It
// returns ringerr.ErrEmpty when cursor has caught up to write.
func (r *Instance) Fetch(buf []byte) error {
	steps := int32(0)
	for !r.cursor.Equal(r.write) {
		if steps >= maxScanSteps {
			return errors.Wrap(ringerr.ErrCorrupted, "ringfs: fetch scan exceeded ring size without reaching write")
		}
		status, err := slot.GetStatus(r.partition, r.geometry, r.cursor)
		if err != nil {
			metrics.Count(metrics.RingMetric.AdapterErrors)
			return errors.Wrapf(err, "ringfs: fetch read slot %+v status", r.cursor)
		}
		if status == slot.StatusValid {
			if err := slot.ReadPayload(r.partition, r.geometry, r.cursor, buf); err != nil {
				metrics.Count(metrics.RingMetric.AdapterErrors)
				return errors.Wrapf(err, "ringfs: fetch read payload at %+v", r.cursor)
			}
			r.cursor = location.AdvanceSlot(r.cursor, r.slotsPerSector, r.partition.SectorCount)
			metrics.Count(metrics.RingMetric.Fetches)
			return nil
		}
		r.cursor = location.AdvanceSlot(r.cursor, r.slotsPerSector, r.partition.SectorCount)
		steps++
	}
	return ringerr.ErrEmpty
}

// Discard marks every slot from read up to (excluding) cursor as GARBAGE,
// acknowledging everything a reader has fetched, and advances read to
// cursor.
func (r *Instance) Discard() error {
	steps := int32(0)
	for !r.read.Equal(r.cursor) {
		if steps >= maxScanSteps {
			return errors.Wrap(ringerr.ErrCorrupted, "ringfs: discard scan exceeded ring size without reaching cursor")
		}
		if err := slot.SetStatus(r.partition, r.geometry, r.read, slot.StatusGarbage); err != nil {
			metrics.Count(metrics.RingMetric.AdapterErrors)
			return errors.Wrapf(err, "ringfs: discard slot %+v", r.read)
		}
		r.read = location.AdvanceSlot(r.read, r.slotsPerSector, r.partition.SectorCount)
		metrics.Count(metrics.RingMetric.Discards)
		steps++
	}
	return nil
}

// DiscardOne marks only the slot at read as GARBAGE and advances read by
// one. It is unconditional: calling it on an empty ring (read == cursor ==
// write) still marks and advances. Callers must guard against that
// themselves.
func (r *Instance) DiscardOne() error {
	if err := slot.SetStatus(r.partition, r.geometry, r.read, slot.StatusGarbage); err != nil {
		metrics.Count(metrics.RingMetric.AdapterErrors)
		return errors.Wrapf(err, "ringfs: discard-one slot %+v", r.read)
	}
	r.read = location.AdvanceSlot(r.read, r.slotsPerSector, r.partition.SectorCount)
	metrics.Count(metrics.RingMetric.Discards)
	return nil
}

// Rewind resets cursor to read, so the next Fetch re-reads from the oldest
// undiscarded record.
func (r *Instance) Rewind() {
	r.cursor = r.read
}

// CountEstimate returns the O(1) window size between read and write. It
// counts VALID, GARBAGE, and RESERVED slots alike and so may overestimate
// the exact VALID count when garbage or torn writes are present.
func (r *Instance) CountEstimate() int32 {
	return location.Distance(r.read, r.write, r.slotsPerSector, r.partition.SectorCount)
}

// CountExact walks from read to write counting only VALID slots. O(n) in
// the current window size.
func (r *Instance) CountExact() (int32, error) {
	count := int32(0)
	loc := r.read
	steps := int32(0)
	for !loc.Equal(r.write) {
		if steps >= maxScanSteps {
			return 0, errors.Wrap(ringerr.ErrCorrupted, "ringfs: count_exact scan exceeded ring size without reaching write")
		}
		status, err := slot.GetStatus(r.partition, r.geometry, loc)
		if err != nil {
			metrics.Count(metrics.RingMetric.AdapterErrors)
			return 0, errors.Wrapf(err, "ringfs: count_exact read slot %+v status", loc)
		}
		if status == slot.StatusValid {
			count++
		}
		loc = location.AdvanceSlot(loc, r.slotsPerSector, r.partition.SectorCount)
		steps++
	}
	return count, nil
}

// EraseSector frees sector k. It exists so a background scheduler (see
// erasequeue.Scheduler) may reclaim a sector off the append hot path; it
// does not return an error because the append protocol redoes the same
// work inline if the sector isn't free when actually needed.
func (r *Instance) EraseSector(k int32) {
	if err := sector.Free(r.partition, k, r.version); err != nil {
		metrics.Count(metrics.RingMetric.ErasesFailed)
		return
	}
	metrics.Count(metrics.RingMetric.SectorErasures)
}

// Dump writes a human-readable rendering of read/cursor/write and every
// sector and slot's status to w, for debugging.
func (r *Instance) Dump(w io.Writer) error {
	fmt.Fprintf(w, "ringfs read: %+v cursor: %+v write: %+v\n", r.read, r.cursor, r.write)

	for k := int32(0); k < r.partition.SectorCount; k++ {
		h, err := sector.ReadHeader(r.partition, k)
		if err != nil {
			return errors.Wrapf(err, "ringfs: dump read sector %d header", k)
		}
		fmt.Fprintf(w, "[%04d] [v=%#08x] [%-10s] ", k, h.Version, h.Status)

		for s := int32(0); s < r.slotsPerSector; s++ {
			loc := location.Location{Sector: k, Slot: s}
			status, err := slot.GetStatus(r.partition, r.geometry, loc)
			if err != nil {
				return errors.Wrapf(err, "ringfs: dump read slot %+v status", loc)
			}
			switch status {
			case slot.StatusErased:
				fmt.Fprint(w, "E")
			case slot.StatusReserved:
				fmt.Fprint(w, "R")
			case slot.StatusValid:
				fmt.Fprint(w, "V")
			case slot.StatusGarbage:
				fmt.Fprint(w, "G")
			default:
				fmt.Fprint(w, "?")
			}
		}
		fmt.Fprint(w, "\n")
	}
	return nil
}
