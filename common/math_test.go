package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]float32(nil)))

	b := SliceToBytes([]uint32{0x04030201})
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, b)

	assert.Len(t, SliceToBytes([]float32{1, 2, 3, 4}), 16)
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, uint64(0), AlignUp(0, 256))
	assert.Equal(t, uint64(256), AlignUp(1, 256))
	assert.Equal(t, uint64(256), AlignUp(256, 256))
	assert.Equal(t, uint64(512), AlignUp(257, 256))
	assert.Equal(t, uint64(16), AlignUp(13, 16))
}

func TestDispatchGroups(t *testing.T) {
	assert.Equal(t, uint32(128), DispatchGroups(1024, 8))
	assert.Equal(t, uint32(96), DispatchGroups(768, 8))
	assert.Equal(t, uint32(128), DispatchGroups(1023, 8))
	assert.Equal(t, uint32(96), DispatchGroups(767, 8))
	assert.Equal(t, uint32(1), DispatchGroups(1, 64))
	assert.Equal(t, uint32(0), DispatchGroups(0, 8))
}
