package shader

import (
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/isgasho/rendertoy/common"
)

// ComputeShaderBuilderOption is a functional option for configuring a ComputeShader.
// Use the With* functions to create options.
type ComputeShaderBuilderOption func(s *computeShader)

// WithEntryPoint overrides the entry point parsed from the source. Useful when
// a source file declares more than one @compute function.
//
// Parameters:
//   - entryPoint: the entry point function name
//
// Returns:
//   - ComputeShaderBuilderOption: option function to apply
func WithEntryPoint(entryPoint string) ComputeShaderBuilderOption {
	return func(s *computeShader) {
		s.entryPoint = entryPoint
	}
}

// NewComputeShader parses, reflects, and compiles a WGSL compute shader.
// The source must contain a @compute entry point; every var<uniform> must be
// of a struct type declared in the same source so its member layout can be
// computed. All GPU objects are labeled with the shader name.
//
// Parameters:
//   - device: the device to compile against (must not be nil)
//   - name: the shader name, used for labels and reports
//   - source: the WGSL source code
//   - options: functional options to further configure the shader
//
// Returns:
//   - ComputeShader: the compiled shader
//   - error: a reflection or compilation failure
func NewComputeShader(device *wgpu.Device, name, source string, options ...ComputeShaderBuilderOption) (ComputeShader, error) {
	if device == nil {
		panic("shader: NewComputeShader requires a non-nil Device")
	}

	cleaned := stripComments(source)

	s := &computeShader{
		name:          name,
		source:        source,
		entryPoint:    parseComputeEntry(cleaned),
		workgroupSize: parseWorkgroupSize(cleaned),
	}
	for _, option := range options {
		option(s)
	}
	if s.entryPoint == "" {
		return nil, fmt.Errorf("shader %q: no @compute entry point found", name)
	}

	refl, entries, err := reflectSource(cleaned)
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", name, err)
	}
	s.reflection = refl

	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("shader %q: create module: %w", name, err)
	}
	s.module = module

	bgl, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   name + " Bind Group Layout",
		Entries: entries,
	})
	if err != nil {
		s.Release()
		return nil, fmt.Errorf("shader %q: create bind group layout: %w", name, err)
	}
	s.bindGroupLayout = bgl

	pl, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            name + " Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		s.Release()
		return nil, fmt.Errorf("shader %q: create pipeline layout: %w", name, err)
	}
	s.pipelineLayout = pl

	pipeline, err := device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  name + " Compute Pipeline",
		Layout: pl,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: s.entryPoint,
		},
	})
	if err != nil {
		s.Release()
		return nil, fmt.Errorf("shader %q: create compute pipeline: %w", name, err)
	}
	s.pipeline = pipeline

	return s, nil
}

// NewComputeShaderFromPath reads WGSL source from a file and compiles it via
// NewComputeShader. The shader name defaults to the file path when name is empty.
//
// Parameters:
//   - device: the device to compile against (must not be nil)
//   - name: the shader name, or empty to use the path
//   - path: the file path to read WGSL source from
//   - options: functional options to further configure the shader
//
// Returns:
//   - ComputeShader: the compiled shader
//   - error: a read, reflection, or compilation failure
func NewComputeShaderFromPath(device *wgpu.Device, name, path string, options ...ComputeShaderBuilderOption) (ComputeShader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader: read source file %q: %w", path, err)
	}
	return NewComputeShader(device, common.Coalesce(name, path), string(data), options...)
}
