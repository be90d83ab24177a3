package uniform

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isgasho/rendertoy/engine/assets"
)

// fakeGetter serves canned values by handle id, optionally delaying each
// fetch to force out-of-order completion.
type fakeGetter struct {
	mu     sync.Mutex
	values map[uint64]any
	errs   map[uint64]error
	delays map[uint64]time.Duration
}

func newFakeGetter() *fakeGetter {
	return &fakeGetter{
		values: make(map[uint64]any),
		errs:   make(map[uint64]error),
		delays: make(map[uint64]time.Duration),
	}
}

func (f *fakeGetter) Get(ctx context.Context, h assets.Handle) (any, error) {
	f.mu.Lock()
	delay := f.delays[h.ID()]
	v, err := f.values[h.ID()], f.errs[h.ID()]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func TestResolveLiteralsPassThrough(t *testing.T) {
	b := Bundle{
		NewHolder("f", Float32(1.5)),
		NewHolder("i", Int32(-3)),
		NewHolder("u", Uint32(9)),
		NewHolder("iv", IVec2{4, 5}),
		NewHolder("v", Vec4{1, 2, 3, 4}),
	}

	rb, err := Resolve(context.Background(), nil, b)
	require.NoError(t, err)
	require.Len(t, rb, 5)
	assert.Equal(t, ResolvedHolder{Name: "f", Value: Float32(1.5)}, rb[0])
	assert.Equal(t, ResolvedHolder{Name: "i", Value: Int32(-3)}, rb[1])
	assert.Equal(t, ResolvedHolder{Name: "u", Value: Uint32(9)}, rb[2])
	assert.Equal(t, ResolvedHolder{Name: "iv", Value: IVec2{4, 5}}, rb[3])
	assert.Equal(t, ResolvedHolder{Name: "v", Value: Vec4{1, 2, 3, 4}}, rb[4])
}

func TestResolvePreservesOrderUnderReverseCompletion(t *testing.T) {
	g := newFakeGetter()
	g.values[1] = float32(1)
	g.values[2] = float32(2)
	g.values[3] = float32(3)
	// Earlier holders finish last.
	g.delays[1] = 60 * time.Millisecond
	g.delays[2] = 30 * time.Millisecond

	b := Bundle{
		NewHolder("a", Float32Ref{Handle: assets.NewHandle(1)}),
		NewHolder("b", Float32Ref{Handle: assets.NewHandle(2)}),
		NewHolder("c", Float32Ref{Handle: assets.NewHandle(3)}),
	}

	rb, err := Resolve(context.Background(), g, b)
	require.NoError(t, err)
	require.Len(t, rb, 3)
	assert.Equal(t, "a", rb[0].Name)
	assert.Equal(t, Float32(1), rb[0].Value)
	assert.Equal(t, "b", rb[1].Name)
	assert.Equal(t, Float32(2), rb[1].Value)
	assert.Equal(t, "c", rb[2].Name)
	assert.Equal(t, Float32(3), rb[2].Value)
}

func TestResolveFailFast(t *testing.T) {
	g := newFakeGetter()
	boom := errors.New("texture decode failed")
	g.errs[1] = boom
	g.values[2] = float32(2)
	g.delays[2] = time.Second

	b := Bundle{
		NewHolder("bad", Float32Ref{Handle: assets.NewHandle(1)}),
		NewHolder("slow", Float32Ref{Handle: assets.NewHandle(2)}),
	}

	start := time.Now()
	_, err := Resolve(context.Background(), g, b)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, `uniform "bad"`)
	// The slow fetch is cancelled instead of waited on.
	assert.Less(t, time.Since(start), time.Second)
}

func TestResolveTypeMismatch(t *testing.T) {
	g := newFakeGetter()
	g.values[1] = "not a texture"

	b := Bundle{NewHolder("tex", TextureRef{Handle: assets.NewHandle(1)})}
	_, err := Resolve(context.Background(), g, b)
	require.Error(t, err)
	assert.ErrorContains(t, err, "got string")
}

func TestResolveNestedAndReferencedBundles(t *testing.T) {
	g := newFakeGetter()
	g.values[1] = &assets.Texture{Key: assets.TextureKey{Width: 8, Height: 8}}
	g.values[2] = Bundle{NewHolder("depth", Uint32Ref{Handle: assets.NewHandle(3)})}
	g.values[3] = uint32(7)

	b := Bundle{
		NewHolder("blur", Bundle{
			NewHolder("input", TextureRef{Handle: assets.NewHandle(1)}),
			NewHolder("radius", Float32(4)),
		}),
		NewHolder("shared", BundleRef{Handle: assets.NewHandle(2)}),
	}

	rb, err := Resolve(context.Background(), g, b)
	require.NoError(t, err)
	require.Len(t, rb, 2)

	blur, ok := rb[0].Value.(ResolvedBundle)
	require.True(t, ok)
	require.Len(t, blur, 2)
	assert.Equal(t, "input", blur[0].Name)
	assert.IsType(t, ResolvedTexture{}, blur[0].Value)
	assert.Equal(t, ResolvedHolder{Name: "radius", Value: Float32(4)}, blur[1])

	shared, ok := rb[1].Value.(ResolvedBundle)
	require.True(t, ok)
	require.Len(t, shared, 1)
	assert.Equal(t, ResolvedHolder{Name: "depth", Value: Uint32(7)}, shared[0])
}

func TestResolveUintRefNarrowsToUint32(t *testing.T) {
	g := newFakeGetter()
	g.values[1] = uint(12)

	b := Bundle{NewHolder("count", UintRef{Handle: assets.NewHandle(1)})}
	rb, err := Resolve(context.Background(), g, b)
	require.NoError(t, err)
	assert.Equal(t, Uint32(12), rb[0].Value)
}

func TestResolveUintRefOverflow(t *testing.T) {
	if math.MaxUint == math.MaxUint32 {
		t.Skip("uint cannot exceed uint32 on this platform")
	}
	g := newFakeGetter()
	big := uint(math.MaxUint32)
	big++
	g.values[1] = big

	b := Bundle{NewHolder("count", UintRef{Handle: assets.NewHandle(1)})}
	_, err := Resolve(context.Background(), g, b)
	require.Error(t, err)
	assert.ErrorContains(t, err, `uniform "count"`)
	assert.ErrorContains(t, err, "overflows uint32")
}
