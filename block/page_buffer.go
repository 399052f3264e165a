// Package block holds a byte-granular page-coalescing buffer: an in-RAM
// buffer that fills up to one flash program page before being flushed as
// a single ringfs record.
//
// Grounded on cannyls-go's block.AlignedBytes (a fixed backing slice with a
// tracked fill length, resized/truncated rather than reallocated on every
// write), narrowed to ringfs's simpler contract: the buffer's capacity is
// fixed at construction and equals the ring's object size.
package block

import "github.com/pkg/errors"

// PageBuffer amortises small writes into a single ring record. Its
// capacity is fixed at construction; ringfs requires this to equal the
// partition's configured object size.
type PageBuffer struct {
	buf  []byte
	fill int32
}

// NewPageBuffer allocates a page buffer of the given capacity.
func NewPageBuffer(capacity int32) *PageBuffer {
	return &PageBuffer{buf: make([]byte, capacity)}
}

// Capacity returns the buffer's fixed size.
func (b *PageBuffer) Capacity() int32 {
	return int32(len(b.buf))
}

// Fill returns how many bytes are currently buffered.
func (b *PageBuffer) Fill() int32 {
	return b.fill
}

// FlushFunc is called with the buffer's full backing slice (always exactly
// Capacity() bytes) when the buffer must be emptied. Trailing bytes past
// the current fill level retain whatever was previously programmed there;
// callers whose ring semantics need the tail zeroed should zero it after
// filling before every flush that might fire mid-object.
type FlushFunc func(page []byte) error

// Append copies data into the buffer, flushing first via flush if data
// would overflow the remaining capacity. It returns the number of bytes
// copied, which is always len(data) on success.
func (b *PageBuffer) Append(data []byte, flush FlushFunc) (int32, error) {
	if int32(len(data)) > int32(len(b.buf)) {
		return 0, errors.Errorf("block: %d bytes can't fit a %d-byte page buffer", len(data), len(b.buf))
	}

	if b.fill+int32(len(data)) > int32(len(b.buf)) {
		if err := b.Flush(flush); err != nil {
			return 0, err
		}
	}

	n := copy(b.buf[b.fill:], data)
	b.fill += int32(n)
	return int32(n), nil
}

// Flush writes out the buffered page (if non-empty) and resets the fill
// level, regardless of whether the page was completely filled.
func (b *PageBuffer) Flush(flush FlushFunc) error {
	if b.fill == 0 {
		return nil
	}
	if err := flush(b.buf); err != nil {
		return err
	}
	b.fill = 0
	return nil
}
