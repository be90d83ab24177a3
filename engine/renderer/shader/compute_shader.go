package shader

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/isgasho/rendertoy/common"
)

// computeShader is the implementation of the ComputeShader interface.
// It holds the compiled module, pipeline, layout, and reflection data required
// for reflection-driven uniform binding and dispatch.
type computeShader struct {
	name          string
	source        string
	entryPoint    string
	workgroupSize [3]uint32
	reflection    *Reflection

	module          *wgpu.ShaderModule
	bindGroupLayout *wgpu.BindGroupLayout
	pipelineLayout  *wgpu.PipelineLayout
	pipeline        *wgpu.ComputePipeline
}

// ComputeShader is a compiled WGSL compute shader together with the reflection
// data extracted from its source: the group-0 binding table with uniform block
// member layouts, the bind group layout, and the workgroup size.
type ComputeShader interface {
	// Name retrieves the shader's name, used for labels, warnings, and reports.
	//
	// Returns:
	//   - string: the shader name
	Name() string

	// Source retrieves the WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source the shader was compiled from
	Source() string

	// EntryPoint returns the @compute entry point function name.
	//
	// Returns:
	//   - string: the entry point name (e.g. "main")
	EntryPoint() string

	// Reflection returns the group-0 binding table parsed from the source.
	//
	// Returns:
	//   - *Reflection: bindings in ascending binding order
	Reflection() *Reflection

	// BindGroupLayout returns the GPU layout object matching the reflection table.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the group-0 layout
	BindGroupLayout() *wgpu.BindGroupLayout

	// Pipeline returns the compiled compute pipeline.
	//
	// Returns:
	//   - *wgpu.ComputePipeline: the pipeline to bind before dispatch
	Pipeline() *wgpu.ComputePipeline

	// WorkgroupSize returns the @workgroup_size dimensions, with omitted
	// dimensions defaulting to 1.
	//
	// Returns:
	//   - [3]uint32: the workgroup size as [x, y, z]
	WorkgroupSize() [3]uint32

	// WorkgroupCount returns the dispatch dimensions needed to cover a
	// width x height output, rounding up so partial workgroups still run.
	//
	// Parameters:
	//   - width: output width in texels
	//   - height: output height in texels
	//
	// Returns:
	//   - [3]uint32: workgroup counts as [x, y, 1]
	WorkgroupCount(width, height uint32) [3]uint32

	// Release destroys the GPU objects owned by the shader.
	Release()
}

var _ ComputeShader = &computeShader{}

func (s *computeShader) Name() string {
	return s.name
}

func (s *computeShader) Source() string {
	return s.source
}

func (s *computeShader) EntryPoint() string {
	return s.entryPoint
}

func (s *computeShader) Reflection() *Reflection {
	return s.reflection
}

func (s *computeShader) BindGroupLayout() *wgpu.BindGroupLayout {
	return s.bindGroupLayout
}

func (s *computeShader) Pipeline() *wgpu.ComputePipeline {
	return s.pipeline
}

func (s *computeShader) WorkgroupSize() [3]uint32 {
	return s.workgroupSize
}

func (s *computeShader) WorkgroupCount(width, height uint32) [3]uint32 {
	return [3]uint32{
		common.DispatchGroups(width, s.workgroupSize[0]),
		common.DispatchGroups(height, s.workgroupSize[1]),
		1,
	}
}

func (s *computeShader) Release() {
	if s.pipeline != nil {
		s.pipeline.Release()
		s.pipeline = nil
	}
	if s.pipelineLayout != nil {
		s.pipelineLayout.Release()
		s.pipelineLayout = nil
	}
	if s.bindGroupLayout != nil {
		s.bindGroupLayout.Release()
		s.bindGroupLayout = nil
	}
	if s.module != nil {
		s.module.Release()
		s.module = nil
	}
}
