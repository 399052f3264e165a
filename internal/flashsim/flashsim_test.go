package flashsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsBlank(t *testing.T) {
	s := New(64, 64)
	for _, b := range s.AsBytes() {
		assert.Equal(t, byte(0xFF), b)
	}
}

func TestProgramAndsBits(t *testing.T) {
	s := New(64, 64)
	require.NoError(t, s.Program(0, []byte{0x0F}))
	buf := make([]byte, 1)
	require.NoError(t, s.Read(0, buf))
	assert.Equal(t, byte(0x0F), buf[0])
}

func TestFailNextProgramLeavesBytesUntouched(t *testing.T) {
	s := New(64, 64)
	s.FailNextProgram = 1
	err := s.Program(0, []byte{0x00})
	assert.Error(t, err)

	buf := make([]byte, 1)
	require.NoError(t, s.Read(0, buf))
	assert.Equal(t, byte(0xFF), buf[0])
}

func TestTornWriteTruncatesAppliedBytes(t *testing.T) {
	s := New(64, 64)
	s.TornWriteBytes = 2
	require.NoError(t, s.Program(0, []byte{0x00, 0x00, 0x00, 0x00}))

	buf := make([]byte, 4)
	require.NoError(t, s.Read(0, buf))
	assert.Equal(t, []byte{0x00, 0x00, 0xFF, 0xFF}, buf)

	// The knob fires once.
	require.NoError(t, s.Program(4, []byte{0x00, 0x00}))
	require.NoError(t, s.Read(4, buf[:2]))
	assert.Equal(t, []byte{0x00, 0x00}, buf[:2])
}

func TestEraseResetsWholeSector(t *testing.T) {
	s := New(128, 64)
	require.NoError(t, s.Program(70, []byte{0x00}))
	require.NoError(t, s.Erase(70))

	buf := make([]byte, 1)
	require.NoError(t, s.Read(70, buf))
	assert.Equal(t, byte(0xFF), buf[0])
}

func TestFailNextEraseSkipsErase(t *testing.T) {
	s := New(64, 64)
	require.NoError(t, s.Program(0, []byte{0x00}))
	s.FailNextErase = 1
	err := s.Erase(0)
	assert.Error(t, err)

	buf := make([]byte, 1)
	require.NoError(t, s.Read(0, buf))
	assert.Equal(t, byte(0x00), buf[0])
}

func TestCounters(t *testing.T) {
	s := New(64, 64)
	require.NoError(t, s.Program(0, []byte{0xFF}))
	require.NoError(t, s.Erase(0))
	assert.Equal(t, 1, s.ProgramCount())
	assert.Equal(t, 1, s.EraseCount())
}
