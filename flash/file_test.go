package flash

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFileAdapterInitializesBlankImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ring.bin")
	a, err := OpenFileAdapter(path, 256, 64)
	require.NoError(t, err)
	defer a.Close()

	buf := make([]byte, 256)
	require.NoError(t, a.Read(0, buf))
	for _, b := range buf {
		assert.Equal(t, byte(0xFF), b)
	}
}

func TestOpenFileAdapterRejectsSizeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ring.bin")
	a, err := OpenFileAdapter(path, 256, 64)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	_, err = OpenFileAdapter(path, 512, 64)
	assert.Error(t, err)
}

func TestProgramOnlyClearsBits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ring.bin")
	a, err := OpenFileAdapter(path, 64, 64)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Program(0, []byte{0x0F}))
	buf := make([]byte, 1)
	require.NoError(t, a.Read(0, buf))
	assert.Equal(t, byte(0x0F), buf[0])

	require.NoError(t, a.Program(0, []byte{0xFF}))
	require.NoError(t, a.Read(0, buf))
	assert.Equal(t, byte(0x0F), buf[0], "programming 0xFF must not set already-cleared bits back")
}

func TestEraseResetsSectorToAllOnes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ring.bin")
	a, err := OpenFileAdapter(path, 64, 64)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Program(0, []byte{0x00}))
	require.NoError(t, a.Erase(0))

	buf := make([]byte, 1)
	require.NoError(t, a.Read(0, buf))
	assert.Equal(t, byte(0xFF), buf[0])
}
