package block

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendFillsWithoutFlushing(t *testing.T) {
	b := NewPageBuffer(8)
	flushed := false
	n, err := b.Append([]byte("abcd"), func([]byte) error {
		flushed = true
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(4), n)
	assert.Equal(t, int32(4), b.Fill())
	assert.False(t, flushed)
}

func TestAppendFlushesOnOverflow(t *testing.T) {
	b := NewPageBuffer(8)
	_, err := b.Append([]byte("abcdef"), func([]byte) error { return nil })
	require.NoError(t, err)

	var flushedPage []byte
	n, err := b.Append([]byte("ghijk"), func(page []byte) error {
		flushedPage = append([]byte(nil), page...)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(5), n)
	assert.Equal(t, []byte("abcdef\x00\x00"), flushedPage)
	assert.Equal(t, int32(5), b.Fill())
}

func TestAppendLargerThanCapacityErrors(t *testing.T) {
	b := NewPageBuffer(4)
	_, err := b.Append([]byte("toolong"), func([]byte) error { return nil })
	assert.Error(t, err)
}

func TestFlushIsNoopWhenEmpty(t *testing.T) {
	b := NewPageBuffer(4)
	called := false
	require.NoError(t, b.Flush(func([]byte) error {
		called = true
		return nil
	}))
	assert.False(t, called)
}

func TestFlushPropagatesError(t *testing.T) {
	b := NewPageBuffer(4)
	_, err := b.Append([]byte("ab"), func([]byte) error { return nil })
	require.NoError(t, err)

	wantErr := errors.New("adapter down")
	err = b.Flush(func([]byte) error { return wantErr })
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, int32(2), b.Fill(), "fill level must survive a failed flush so the caller can retry")
}
