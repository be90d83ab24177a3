package shader

import (
	"fmt"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// DescriptorKind categorizes a shader binding for the uniform binder.
type DescriptorKind int

const (
	// DescriptorUniformBlock is a var<uniform> of struct type, bound through
	// the dynamic uniform arena.
	DescriptorUniformBlock DescriptorKind = iota

	// DescriptorStorageImage is a writable storage texture binding.
	DescriptorStorageImage

	// DescriptorUnsupported covers every other resource kind. The binder
	// warns about these and leaves them unbound.
	DescriptorUnsupported
)

func (k DescriptorKind) String() string {
	switch k {
	case DescriptorUniformBlock:
		return "uniform block"
	case DescriptorStorageImage:
		return "storage image"
	default:
		return "unsupported"
	}
}

// BlockMember is one field of a uniform block, placed per WGSL layout rules.
type BlockMember struct {
	Name   string
	Offset uint64
	Size   uint64
}

// BindingInfo describes one @group(0) @binding(N) resource declaration.
// Members is populated for uniform blocks only.
type BindingInfo struct {
	Binding   uint32
	Name      string
	Kind      DescriptorKind
	TypeName  string
	BlockSize uint64
	Members   []BlockMember
}

// Reflection is the binding table extracted from a compute shader's source,
// in ascending binding order. The binder walks it to assemble a bind group
// without the caller naming bindings explicitly.
type Reflection struct {
	Bindings []BindingInfo
}

// member looks up a uniform block member by name.
func (b *BindingInfo) member(name string) (BlockMember, bool) {
	for _, m := range b.Members {
		if m.Name == name {
			return m, true
		}
	}
	return BlockMember{}, false
}

// reflectSource builds the reflection table and bind group layout entries from
// cleaned WGSL source. Only bind group 0 is supported for compute dispatch;
// declarations in other groups are an error, as is a var<uniform> whose type
// cannot be resolved to a struct layout.
func reflectSource(cleaned string) (*Reflection, []wgpu.BindGroupLayoutEntry, error) {
	structs := parseStructBlocks(cleaned)
	structSizes := computeStructSizes(structs)
	structsByName := make(map[string]parsedStruct, len(structs))
	for _, ps := range structs {
		structsByName[ps.name] = ps
	}

	refl := &Reflection{}
	var entries []wgpu.BindGroupLayoutEntry

	for _, pb := range parseBindings(cleaned) {
		if pb.group != 0 {
			return nil, nil, fmt.Errorf("binding %q: bind group %d is not supported, compute resources must use group 0", pb.varName, pb.group)
		}

		entry := classifyResource(pb.binding, pb.addressSpace, pb.typeName)
		info := BindingInfo{
			Binding:  pb.binding,
			Name:     pb.varName,
			TypeName: pb.typeName,
			Kind:     DescriptorUnsupported,
		}

		switch {
		case pb.addressSpace == "uniform":
			ps, ok := structsByName[pb.typeName]
			if !ok {
				return nil, nil, fmt.Errorf("uniform binding %q: type %q is not a struct declared in the shader", pb.varName, pb.typeName)
			}
			members, ok := computeStructMembers(ps, structSizes)
			if !ok {
				return nil, nil, fmt.Errorf("uniform binding %q: cannot lay out struct %q", pb.varName, pb.typeName)
			}
			info.Kind = DescriptorUniformBlock
			info.BlockSize = structSizes[pb.typeName].size
			info.Members = members
			entry.Buffer.HasDynamicOffset = true
			entry.Buffer.MinBindingSize = info.BlockSize
		case pb.addressSpace == "" && strings.HasPrefix(pb.typeName, "texture_storage_"):
			info.Kind = DescriptorStorageImage
		}

		refl.Bindings = append(refl.Bindings, info)
		entries = append(entries, entry)
	}

	return refl, entries, nil
}
