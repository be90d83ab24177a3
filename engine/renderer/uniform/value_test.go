package uniform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/isgasho/rendertoy/engine/assets"
)

func TestShallowHashEqualForIdenticalHolders(t *testing.T) {
	a := NewHolder("scale", Float32(2.5))
	b := NewHolder("scale", Float32(2.5))
	assert.Equal(t, a.ShallowHash(), b.ShallowHash())

	ra := NewHolder("inputTex", TextureRef{Handle: assets.NewHandle(11)})
	rb := NewHolder("inputTex", TextureRef{Handle: assets.NewHandle(11)})
	assert.Equal(t, ra.ShallowHash(), rb.ShallowHash())
}

func TestShallowHashDiffersByName(t *testing.T) {
	a := NewHolder("scale", Float32(2.5))
	b := NewHolder("bias", Float32(2.5))
	assert.NotEqual(t, a.ShallowHash(), b.ShallowHash())
}

func TestShallowHashDiffersByValue(t *testing.T) {
	a := NewHolder("scale", Float32(2.5))
	b := NewHolder("scale", Float32(2.6))
	assert.NotEqual(t, a.ShallowHash(), b.ShallowHash())
}

func TestShallowHashDiffersByVariantWithSameBits(t *testing.T) {
	// 1.0f32 and its bit pattern as a uint32 must not collide.
	a := NewHolder("x", Float32(1.0))
	b := NewHolder("x", Uint32(0x3f800000))
	assert.NotEqual(t, a.ShallowHash(), b.ShallowHash())

	// Same handle id behind different reference kinds.
	c := NewHolder("x", TextureRef{Handle: assets.NewHandle(7)})
	d := NewHolder("x", BufferRef{Handle: assets.NewHandle(7)})
	assert.NotEqual(t, c.ShallowHash(), d.ShallowHash())
}

func TestShallowHashBundleReflectsChildren(t *testing.T) {
	inner := func(v float32) Bundle {
		return Bundle{NewHolder("gain", Float32(v))}
	}
	a := NewHolder("params", inner(1))
	b := NewHolder("params", inner(1))
	c := NewHolder("params", inner(2))
	assert.Equal(t, a.ShallowHash(), b.ShallowHash())
	assert.NotEqual(t, a.ShallowHash(), c.ShallowHash())
}

func TestShallowHashIgnoresAssetContent(t *testing.T) {
	// Only the handle identity contributes, so the hash is stable before and
	// after the asset builds.
	h := assets.NewHandle(42)
	a := NewHolder("tex", TextureRef{Handle: h})
	b := NewHolder("tex", TextureRef{Handle: h})
	assert.Equal(t, a.ShallowHash(), b.ShallowHash())

	other := NewHolder("tex", TextureRef{Handle: assets.NewHandle(43)})
	assert.NotEqual(t, a.ShallowHash(), other.ShallowHash())
}

func TestNewHolderNilValuePanics(t *testing.T) {
	assert.Panics(t, func() { NewHolder("x", nil) })
}
