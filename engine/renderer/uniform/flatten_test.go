package uniform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isgasho/rendertoy/engine/assets"
)

func collect(rb ResolvedBundle) []Event {
	var events []Event
	Flatten(rb, func(e Event) { events = append(events, e) })
	return events
}

func TestFlattenLiteralsOnly(t *testing.T) {
	rb := ResolvedBundle{
		{Name: "a", Value: Float32(1)},
		{Name: "b", Value: Int32(2)},
		{Name: "c", Value: Vec4{1, 2, 3, 4}},
	}

	events := collect(rb)
	require.Len(t, events, 3)
	for i, e := range events {
		assert.Equal(t, EventSetUniform, e.Kind)
		assert.Equal(t, rb[i].Name, e.Name)
		assert.Equal(t, rb[i].Value, e.Value)
	}
}

func TestFlattenTextureEmitsSizeFirst(t *testing.T) {
	tex := &assets.Texture{Key: assets.TextureKey{Width: 256, Height: 128}}
	rb := ResolvedBundle{
		{Name: "gain", Value: Float32(1)},
		{Name: "t", Value: ResolvedTexture{Texture: tex}},
	}

	events := collect(rb)
	require.Len(t, events, 3)

	assert.Equal(t, "gain", events[0].Name)
	assert.Equal(t, "t_size", events[1].Name)
	assert.Equal(t, Vec4{256, 128, 1.0 / 256, 1.0 / 128}, events[1].Value)
	assert.Equal(t, "t", events[2].Name)
	assert.Equal(t, ResolvedTexture{Texture: tex}, events[2].Value)
}

func TestFlattenBundlesAfterLiteralsWithScopes(t *testing.T) {
	rb := ResolvedBundle{
		{Name: "nested", Value: ResolvedBundle{
			{Name: "x", Value: Float32(10)},
		}},
		{Name: "top", Value: Float32(1)},
	}

	events := collect(rb)
	require.Len(t, events, 4)
	// Non-bundle holders flatten first even when declared after a bundle.
	assert.Equal(t, Event{Kind: EventSetUniform, Name: "top", Value: Float32(1)}, events[0])
	assert.Equal(t, EventEnterScope, events[1].Kind)
	assert.Equal(t, Event{Kind: EventSetUniform, Name: "x", Value: Float32(10)}, events[2])
	assert.Equal(t, EventLeaveScope, events[3].Kind)
}

func TestFlattenScopesBalancedAtEveryPrefix(t *testing.T) {
	rb := ResolvedBundle{
		{Name: "a", Value: Float32(1)},
		{Name: "outer", Value: ResolvedBundle{
			{Name: "b", Value: Float32(2)},
			{Name: "inner", Value: ResolvedBundle{
				{Name: "c", Value: Float32(3)},
			}},
		}},
		{Name: "sibling", Value: ResolvedBundle{
			{Name: "d", Value: Float32(4)},
		}},
	}

	depth := 0
	enters, leaves := 0, 0
	Flatten(rb, func(e Event) {
		switch e.Kind {
		case EventEnterScope:
			depth++
			enters++
		case EventLeaveScope:
			depth--
			leaves++
		}
		assert.GreaterOrEqual(t, depth, 0)
	})
	assert.Equal(t, 0, depth)
	assert.Equal(t, 3, enters)
	assert.Equal(t, 3, leaves)
}

func TestFlattenToMapInnerScopeShadows(t *testing.T) {
	rb := ResolvedBundle{
		{Name: "gain", Value: Float32(1)},
		{Name: "overrides", Value: ResolvedBundle{
			{Name: "gain", Value: Float32(5)},
		}},
	}

	flat := FlattenToMap(rb)
	assert.Equal(t, Float32(5), flat["gain"])
	assert.Len(t, flat, 1)
}

func TestFlattenToMapIncludesTextureSizes(t *testing.T) {
	tex := &assets.Texture{Key: assets.TextureKey{Width: 64, Height: 32}}
	flat := FlattenToMap(ResolvedBundle{
		{Name: "outputTex", Value: ResolvedTexture{Texture: tex}},
	})

	require.Len(t, flat, 2)
	assert.Equal(t, Vec4{64, 32, 1.0 / 64, 1.0 / 32}, flat["outputTex_size"])
	assert.Equal(t, ResolvedTexture{Texture: tex}, flat["outputTex"])
}
