package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUint32RoundTrip(t *testing.T) {
	var buf [4]byte
	PutUint32(buf[:], 0xFFFFFF00)
	assert.Equal(t, uint32(0xFFFFFF00), GetUint32(buf[:]))

	PutUint32(buf[:], 0)
	assert.Equal(t, uint32(0), GetUint32(buf[:]))
}

func TestPutUint32PanicsOnWrongSize(t *testing.T) {
	assert.Panics(t, func() { PutUint32(make([]byte, 3), 0) })
	assert.Panics(t, func() { GetUint32(make([]byte, 5)) })
}
