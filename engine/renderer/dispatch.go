package renderer

import (
	"context"
	"fmt"

	"github.com/isgasho/rendertoy/engine/assets"
	"github.com/isgasho/rendertoy/engine/renderer/frame"
	"github.com/isgasho/rendertoy/engine/renderer/shader"
	"github.com/isgasho/rendertoy/engine/renderer/uniform"
)

func (r *renderer) ComputeTexture(ctx context.Context, f *frame.Frame, g uniform.Getter, key assets.TextureKey, cs shader.ComputeShader, uniforms uniform.Bundle) (*assets.Texture, error) {
	out, err := r.AcquireTexture(key)
	if err != nil {
		return nil, fmt.Errorf("compute %q: %w", cs.Name(), err)
	}

	resolved, err := uniform.Resolve(ctx, g, uniforms)
	if err != nil {
		return nil, fmt.Errorf("compute %q: %w", cs.Name(), err)
	}

	// The output texture is injected last so it wins over any caller-supplied
	// value of the same name, and its size vector is emitted like any other
	// texture's.
	resolved = append(resolved, uniform.ResolvedHolder{
		Name:  OutputTextureName,
		Value: uniform.ResolvedTexture{Texture: out},
	})

	flat := uniform.FlattenToMap(resolved)

	res, err := bindUniforms(cs.Reflection(), f.Arena(), flat)
	if err != nil {
		return nil, fmt.Errorf("compute %q: %w", cs.Name(), err)
	}

	// Warnings surface before bind group creation: an unbound binding makes
	// the incomplete entry set fail validation below, and the warning naming
	// it is the only useful diagnostic.
	for _, w := range res.warnings {
		r.reporter.Warn(cs.Name(), w)
	}

	encoder := f.Encoder()
	if encoder == nil {
		return nil, fmt.Errorf("compute %q: frame has no open encoder, call Begin first", cs.Name())
	}

	bg, err := f.CreateBindGroup(cs.BindGroupLayout(), res.entries, cs.Name())
	if err != nil {
		return nil, fmt.Errorf("compute %q: %w", cs.Name(), err)
	}

	// Prior contents of the output are never read, so no preserving
	// transition is needed; WebGPU tracks the write hazard itself.
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(cs.Pipeline())
	pass.SetBindGroup(0, bg, res.dynamicOffsets)
	count := cs.WorkgroupCount(key.Width, key.Height)
	pass.DispatchWorkgroups(count[0], count[1], count[2])
	pass.End()

	r.reporter.ReportTexture(cs.Name(), out.View)

	return out, nil
}
