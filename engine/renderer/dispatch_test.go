package renderer

import (
	"context"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isgasho/rendertoy/engine/assets"
	"github.com/isgasho/rendertoy/engine/renderer/frame"
	"github.com/isgasho/rendertoy/engine/renderer/shader"
)

// recordingReporter captures warnings so tests can assert on the dispatch
// path's diagnostics.
type recordingReporter struct {
	warnings []string
}

func (r *recordingReporter) Warn(shader, msg string) {
	r.warnings = append(r.warnings, shader+": "+msg)
}

func (r *recordingReporter) ReportTexture(name string, view *wgpu.TextureView) {}

// stubShader is a ComputeShader with a canned reflection table and no GPU
// objects behind it.
type stubShader struct {
	name string
	refl *shader.Reflection
}

func (s *stubShader) Name() string                           { return s.name }
func (s *stubShader) Source() string                         { return "" }
func (s *stubShader) EntryPoint() string                     { return "main" }
func (s *stubShader) Reflection() *shader.Reflection         { return s.refl }
func (s *stubShader) BindGroupLayout() *wgpu.BindGroupLayout { return nil }
func (s *stubShader) Pipeline() *wgpu.ComputePipeline        { return nil }
func (s *stubShader) WorkgroupSize() [3]uint32               { return [3]uint32{8, 8, 1} }
func (s *stubShader) WorkgroupCount(w, h uint32) [3]uint32   { return [3]uint32{1, 1, 1} }
func (s *stubShader) Release()                               {}

var _ shader.ComputeShader = &stubShader{}

// An unbindable storage image must surface its warning even when the dispatch
// itself cannot proceed, since the incomplete bind group is exactly what
// fails next.
func TestComputeTextureWarnsBeforeDispatchFails(t *testing.T) {
	key := assets.TextureKey{Width: 16, Height: 16, Format: wgpu.TextureFormatRGBA8Unorm}
	rep := &recordingReporter{}
	r := &renderer{
		texturePool: map[assets.TextureKey]*assets.Texture{
			key: {Key: key},
		},
		reporter: rep,
	}

	cs := &stubShader{
		name: "History",
		refl: &shader.Reflection{
			Bindings: []shader.BindingInfo{
				{Binding: 0, Name: "historyTex", Kind: shader.DescriptorStorageImage},
			},
		},
	}

	// The frame was never begun, so encoding fails after binding.
	f := frame.NewFrame(&wgpu.Device{}, frame.NewMemoryArena(4096))

	_, err := r.ComputeTexture(context.Background(), f, nil, key, cs, nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "no open encoder")

	require.Len(t, rep.warnings, 1)
	assert.Contains(t, rep.warnings[0], "History")
	assert.Contains(t, rep.warnings[0], "historyTex")
}
