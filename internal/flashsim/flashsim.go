// Package flashsim is a fault-injecting in-memory flash.Adapter used only
// by tests: a plain byte slice standing in for NOR flash, plus hooks to
// simulate a torn write or a power cut mid-erase.
package flashsim

import (
	"github.com/pkg/errors"

	"github.com/flashring/ringfs/ringerr"
)

// Sim is an in-RAM flash.Adapter with fault injection.
type Sim struct {
	mem        []byte
	sectorSize int32

	// FailNextProgram, if >0, makes the next N Program calls fail
	// without applying any bits, decrementing by one per call.
	FailNextProgram int
	// TornWriteBytes, if >0, truncates the *next* Program call to that
	// many leading bytes actually applied, simulating a torn write that
	// stops mid-payload on power loss. Reset to 0 after firing once.
	TornWriteBytes int
	// FailNextErase, if >0, makes the next N Erase calls fail without
	// erasing anything.
	FailNextErase int

	programCount int
	eraseCount   int
}

// New creates a blank (all-ones) simulated flash image of the given size.
func New(size int, sectorSize int32) *Sim {
	mem := make([]byte, size)
	for i := range mem {
		mem[i] = 0xFF
	}
	return &Sim{mem: mem, sectorSize: sectorSize}
}

// AsBytes exposes the raw backing slice, for test assertions and for
// pre-corrupting the image before a Scan.
func (s *Sim) AsBytes() []byte {
	return s.mem
}

// ProgramCount returns how many Program calls have completed (including
// injected failures), for assertions in tests.
func (s *Sim) ProgramCount() int {
	return s.programCount
}

// EraseCount returns how many Erase calls have completed.
func (s *Sim) EraseCount() int {
	return s.eraseCount
}

func (s *Sim) sectorBase(addr int32) int32 {
	return (addr / s.sectorSize) * s.sectorSize
}

// Erase implements flash.Adapter.
func (s *Sim) Erase(anyAddrInSector int32) error {
	s.eraseCount++
	if s.FailNextErase > 0 {
		s.FailNextErase--
		return errors.Wrap(ringerr.ErrAdapter, "flashsim: injected erase failure")
	}
	base := s.sectorBase(anyAddrInSector)
	for i := int32(0); i < s.sectorSize; i++ {
		s.mem[base+i] = 0xFF
	}
	return nil
}

// Program implements flash.Adapter.
func (s *Sim) Program(addr int32, data []byte) error {
	s.programCount++
	if s.FailNextProgram > 0 {
		s.FailNextProgram--
		return errors.Wrap(ringerr.ErrAdapter, "flashsim: injected program failure")
	}

	apply := data
	if s.TornWriteBytes > 0 {
		n := s.TornWriteBytes
		s.TornWriteBytes = 0
		if n < len(apply) {
			apply = apply[:n]
		}
	}

	for i, b := range apply {
		s.mem[int(addr)+i] &= b
	}
	return nil
}

// Read implements flash.Adapter.
func (s *Sim) Read(addr int32, buf []byte) error {
	copy(buf, s.mem[addr:addr+int32(len(buf))])
	return nil
}
