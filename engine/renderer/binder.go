package renderer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/isgasho/rendertoy/common"
	"github.com/isgasho/rendertoy/engine/renderer/frame"
	"github.com/isgasho/rendertoy/engine/renderer/shader"
	"github.com/isgasho/rendertoy/engine/renderer/uniform"
)

// bindResult is the outcome of matching a flat uniform map against a shader's
// reflection table: the bind group entries, one dynamic offset per uniform
// block in binding order, and the warnings for anything that could not bind.
type bindResult struct {
	entries        []wgpu.BindGroupEntry
	dynamicOffsets []uint32
	warnings       []string
}

// bindUniforms walks the reflection table in binding order and assembles bind
// group entries from the flat uniform map. Uniform blocks are allocated from
// the arena and filled member by member; storage images bind the matching
// texture view. Uniform names with no matching binding are silently ignored;
// bindings the binder cannot serve produce warnings. A typed member whose
// value has the wrong kind or size is a hard error.
func bindUniforms(refl *shader.Reflection, arena frame.UniformArena, uniforms uniform.FlatUniforms) (*bindResult, error) {
	res := &bindResult{}

	for i := range refl.Bindings {
		b := &refl.Bindings[i]
		switch b.Kind {
		case shader.DescriptorUniformBlock:
			alloc, err := arena.Allocate(b.BlockSize)
			if err != nil {
				return nil, fmt.Errorf("uniform block %q: %w", b.Name, err)
			}
			for _, m := range b.Members {
				val, ok := uniforms[m.Name]
				if !ok {
					continue
				}
				if err := writeMember(alloc.Bytes, b.Name, m, val); err != nil {
					return nil, err
				}
			}
			res.entries = append(res.entries, wgpu.BindGroupEntry{
				Binding: b.Binding,
				Buffer:  alloc.Buffer,
				Offset:  0,
				Size:    b.BlockSize,
			})
			res.dynamicOffsets = append(res.dynamicOffsets, alloc.Offset)

		case shader.DescriptorStorageImage:
			val, ok := uniforms[b.Name]
			if !ok {
				res.warnings = append(res.warnings, fmt.Sprintf("storage image %q has no bound texture", b.Name))
				continue
			}
			tex, ok := val.(uniform.ResolvedTexture)
			if !ok {
				res.warnings = append(res.warnings, fmt.Sprintf("storage image %q bound to %T, expected a texture", b.Name, val))
				continue
			}
			res.entries = append(res.entries, wgpu.BindGroupEntry{
				Binding:     b.Binding,
				TextureView: tex.Texture.View,
			})

		default:
			res.warnings = append(res.warnings, fmt.Sprintf("binding %q (%s %s) is not supported and was left unbound", b.Name, b.Kind, b.TypeName))
		}
	}

	return res, nil
}

// writeMember copies one resolved value into a uniform block's staging window
// at the member's offset. The value kind must match the member's size exactly.
func writeMember(block []byte, blockName string, m shader.BlockMember, val uniform.Resolved) error {
	dst := block[m.Offset : m.Offset+m.Size]

	switch v := val.(type) {
	case uniform.Float32:
		if m.Size != 4 {
			return memberSizeError(blockName, m, val, 4)
		}
		copy(dst, common.SliceToBytes([]float32{float32(v)}))
	case uniform.Int32:
		if m.Size != 4 {
			return memberSizeError(blockName, m, val, 4)
		}
		copy(dst, common.SliceToBytes([]int32{int32(v)}))
	case uniform.Uint32:
		if m.Size != 4 {
			return memberSizeError(blockName, m, val, 4)
		}
		copy(dst, common.SliceToBytes([]uint32{uint32(v)}))
	case uniform.IVec2:
		if m.Size != 8 {
			return memberSizeError(blockName, m, val, 8)
		}
		copy(dst, common.SliceToBytes(v[:]))
	case uniform.Vec4:
		if m.Size != 16 {
			return memberSizeError(blockName, m, val, 16)
		}
		copy(dst, common.SliceToBytes(v[:]))
	default:
		return fmt.Errorf("uniform block %q member %q: cannot write value of type %T", blockName, m.Name, val)
	}

	return nil
}

func memberSizeError(blockName string, m shader.BlockMember, val uniform.Resolved, want uint64) error {
	return fmt.Errorf("uniform block %q member %q: value %T needs %d bytes, member has %d", blockName, m.Name, val, want, m.Size)
}
