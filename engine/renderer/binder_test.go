package renderer

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isgasho/rendertoy/engine/assets"
	"github.com/isgasho/rendertoy/engine/renderer/frame"
	"github.com/isgasho/rendertoy/engine/renderer/shader"
	"github.com/isgasho/rendertoy/engine/renderer/uniform"
)

func blockReflection() *shader.Reflection {
	return &shader.Reflection{
		Bindings: []shader.BindingInfo{
			{
				Binding:   0,
				Name:      "constants",
				Kind:      shader.DescriptorUniformBlock,
				BlockSize: 48,
				Members: []shader.BlockMember{
					{Name: "scale", Offset: 0, Size: 4},
					{Name: "offset", Offset: 8, Size: 8},
					{Name: "tint", Offset: 16, Size: 16},
					{Name: "frame", Offset: 32, Size: 4},
				},
			},
			{
				Binding: 1,
				Name:    "outputTex",
				Kind:    shader.DescriptorStorageImage,
			},
		},
	}
}

func TestBindUniformsBlockEntryAndDynamicOffset(t *testing.T) {
	arena := frame.NewMemoryArena(4096)
	// Push the block off offset zero so the dynamic offset is visible.
	_, err := arena.Allocate(16)
	require.NoError(t, err)

	res, err := bindUniforms(blockReflection(), arena, uniform.FlatUniforms{
		"scale": uniform.Float32(3.5),
	})
	require.NoError(t, err)

	require.Len(t, res.dynamicOffsets, 1)
	assert.Equal(t, uint32(256), res.dynamicOffsets[0])

	require.Len(t, res.entries, 1)
	entry := res.entries[0]
	assert.Equal(t, uint32(0), entry.Binding)
	assert.Equal(t, uint64(0), entry.Offset)
	assert.Equal(t, uint64(48), entry.Size)
}

func TestBindUniformsMemberBytes(t *testing.T) {
	arena := frame.NewMemoryArena(4096)
	refl := blockReflection()

	// Capture the staging window by allocating through a recording arena.
	rec := &recordingArena{inner: arena}
	res, err := bindUniforms(refl, rec, uniform.FlatUniforms{
		"scale":  uniform.Float32(3.5),
		"offset": uniform.IVec2{-2, 7},
		"tint":   uniform.Vec4{1, 0.5, 0.25, 1},
		"frame":  uniform.Uint32(9),
	})
	require.NoError(t, err)
	require.Len(t, res.entries, 1)
	require.Len(t, rec.allocs, 1)

	block := rec.allocs[0].Bytes
	require.Len(t, block, 48)

	assert.Equal(t, math.Float32bits(3.5), binary.LittleEndian.Uint32(block[0:4]))
	assert.Equal(t, int32(-2), int32(binary.LittleEndian.Uint32(block[8:12])))
	assert.Equal(t, int32(7), int32(binary.LittleEndian.Uint32(block[12:16])))
	assert.Equal(t, math.Float32bits(0.5), binary.LittleEndian.Uint32(block[20:24]))
	assert.Equal(t, uint32(9), binary.LittleEndian.Uint32(block[32:36]))
	// Padding between scale and offset stays zero.
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(block[4:8]))
}

func TestBindUniformsAbsentMembersStayZero(t *testing.T) {
	rec := &recordingArena{inner: frame.NewMemoryArena(4096)}
	_, err := bindUniforms(blockReflection(), rec, uniform.FlatUniforms{
		"frame": uniform.Uint32(1),
	})
	require.NoError(t, err)

	block := rec.allocs[0].Bytes
	for _, b := range block[0:32] {
		assert.Zero(t, b)
	}
}

func TestBindUniformsStorageImage(t *testing.T) {
	tex := &assets.Texture{Key: assets.TextureKey{Width: 64, Height: 64}}
	res, err := bindUniforms(blockReflection(), frame.NewMemoryArena(4096), uniform.FlatUniforms{
		"outputTex": uniform.ResolvedTexture{Texture: tex},
	})
	require.NoError(t, err)

	require.Len(t, res.entries, 2)
	img := res.entries[1]
	assert.Equal(t, uint32(1), img.Binding)
	assert.Equal(t, tex.View, img.TextureView)
	assert.Empty(t, res.warnings)
}

func TestBindUniformsMissingTextureWarns(t *testing.T) {
	res, err := bindUniforms(blockReflection(), frame.NewMemoryArena(4096), uniform.FlatUniforms{})
	require.NoError(t, err)

	require.Len(t, res.entries, 1)
	require.Len(t, res.warnings, 1)
	assert.Contains(t, res.warnings[0], "outputTex")
}

func TestBindUniformsUnsupportedKindWarns(t *testing.T) {
	refl := &shader.Reflection{
		Bindings: []shader.BindingInfo{
			{Binding: 0, Name: "samp", Kind: shader.DescriptorUnsupported, TypeName: "sampler"},
		},
	}
	res, err := bindUniforms(refl, frame.NewMemoryArena(4096), uniform.FlatUniforms{})
	require.NoError(t, err)
	assert.Empty(t, res.entries)
	require.Len(t, res.warnings, 1)
	assert.Contains(t, res.warnings[0], "samp")
	assert.Contains(t, res.warnings[0], "sampler")
}

func TestBindUniformsUnusedNamesIgnored(t *testing.T) {
	tex := &assets.Texture{Key: assets.TextureKey{Width: 8, Height: 8}}
	res, err := bindUniforms(blockReflection(), frame.NewMemoryArena(4096), uniform.FlatUniforms{
		"outputTex":  uniform.ResolvedTexture{Texture: tex},
		"scale":      uniform.Float32(1),
		"notInTable": uniform.Float32(99),
		"alsoUnused": uniform.ResolvedTexture{Texture: tex},
	})
	require.NoError(t, err)
	assert.Empty(t, res.warnings)
	assert.Len(t, res.entries, 2)
}

func TestBindUniformsMemberTypeMismatch(t *testing.T) {
	tex := &assets.Texture{Key: assets.TextureKey{Width: 8, Height: 8}}
	_, err := bindUniforms(blockReflection(), frame.NewMemoryArena(4096), uniform.FlatUniforms{
		"scale": uniform.ResolvedTexture{Texture: tex},
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, `member "scale"`)
}

func TestBindUniformsMemberSizeMismatch(t *testing.T) {
	_, err := bindUniforms(blockReflection(), frame.NewMemoryArena(4096), uniform.FlatUniforms{
		"tint": uniform.Float32(1), // member is 16 bytes, value needs 4
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, `member "tint"`)
}

func TestBindUniformsArenaExhaustion(t *testing.T) {
	arena := frame.NewMemoryArena(256)
	_, err := arena.Allocate(256)
	require.NoError(t, err)

	_, err = bindUniforms(blockReflection(), arena, uniform.FlatUniforms{})
	require.Error(t, err)
	assert.ErrorIs(t, err, frame.ErrArenaExhausted)
	assert.ErrorContains(t, err, `uniform block "constants"`)
}

// recordingArena wraps a UniformArena and remembers every allocation so tests
// can inspect the staged bytes.
type recordingArena struct {
	inner  frame.UniformArena
	allocs []frame.Allocation
}

func (r *recordingArena) Allocate(size uint64) (frame.Allocation, error) {
	alloc, err := r.inner.Allocate(size)
	if err == nil {
		r.allocs = append(r.allocs, alloc)
	}
	return alloc, err
}
