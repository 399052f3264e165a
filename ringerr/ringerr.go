// Package ringerr holds the sentinel errors shared by every ringfs package.
//
// Call sites wrap these with github.com/pkg/errors to attach context
// (sector index, status word, ...); callers compare with errors.Cause or
// errors.Is against the sentinels below, never against the wrapped string.
package ringerr

import "errors"

var (
	// ErrCorrupted means a sector status fell outside the known ladder, a
	// sector was found mid-format at mount, the write sector was neither
	// FREE nor IN_USE at append, or a slot walk ran past the
	// ring without reaching its end. A schema version mismatch is reported
	// as ErrIncompatibleVersion instead.
	ErrCorrupted = errors.New("ringfs: medium corrupted")
	// ErrInvariant means Scan could not find any FREE sector.
	ErrInvariant = errors.New("ringfs: ring invariant violated")
	// ErrIncompatibleVersion means an IN_USE sector's version doesn't
	// match the schema version the instance was initialized with.
	ErrIncompatibleVersion = errors.New("ringfs: incompatible schema version")
	// ErrEmpty means Fetch found cursor == write. Not a failure.
	ErrEmpty = errors.New("ringfs: no more records")
	// ErrFull names a full ring. No operation in this module returns it:
	// Append reclaims the oldest sector rather than reporting a full ring.
	ErrFull = errors.New("ringfs: ring is full")
	// ErrAdapter wraps a failure returned by the flash.Adapter.
	ErrAdapter = errors.New("ringfs: flash adapter error")
	// ErrInvalidInput means a caller-supplied argument violates a
	// documented precondition (wrong payload size, fewer than two sectors,
	// a sector too small for one slot, a backing file of the wrong size).
	// Status transitions are not validated and never produce it.
	ErrInvalidInput = errors.New("ringfs: invalid input")
)
