package renderer

import (
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/isgasho/rendertoy/engine/assets"
	"github.com/isgasho/rendertoy/engine/profiler"
	"github.com/isgasho/rendertoy/engine/renderer/frame"
)

// RendererBuilderOption is a functional option for configuring a Renderer.
// Use the With* functions to create options.
type RendererBuilderOption func(r *renderer)

// WithForceFallbackAdapter forces selection of a software adapter. Useful on
// CI machines without a GPU.
//
// Parameters:
//   - force: whether to force the fallback adapter
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithForceFallbackAdapter(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithReporter sets the reporter that receives binder warnings and texture
// reports. Defaults to the logging reporter.
//
// Parameters:
//   - reporter: the reporter to use (must not be nil)
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithReporter(reporter profiler.Reporter) RendererBuilderOption {
	return func(r *renderer) {
		if reporter != nil {
			r.reporter = reporter
		}
	}
}

// WithArenaSize sets the uniform arena capacity in bytes. Defaults to
// frame.DefaultArenaSize.
//
// Parameters:
//   - size: the arena capacity in bytes
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithArenaSize(size uint64) RendererBuilderOption {
	return func(r *renderer) {
		r.arenaSize = size
	}
}

// NewRenderer creates a Renderer, requesting an adapter, device, and queue.
// A nil surface descriptor creates a headless renderer for compute-only use;
// otherwise the surface is created but not configured, so call
// ConfigureSurface once the window size is known. NewRenderer panics when GPU
// initialization fails, matching the engine's other init paths.
//
// Parameters:
//   - surfaceDescriptor: the window surface descriptor, or nil for headless
//   - options: functional options to further configure the renderer
//
// Returns:
//   - Renderer: the newly created renderer
func NewRenderer(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...RendererBuilderOption) Renderer {
	runtime.LockOSThread()

	r := &renderer{
		instance:    wgpu.CreateInstance(nil),
		texturePool: make(map[assets.TextureKey]*assets.Texture),
		reporter:    profiler.NewLogReporter(),
	}
	for _, option := range options {
		option(r)
	}

	if surfaceDescriptor != nil {
		r.surface = r.instance.CreateSurface(surfaceDescriptor)
	}

	adapter, err := r.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: r.forceFallbackAdapter,
		CompatibleSurface:    r.surface,
	})
	if err != nil {
		panic(err)
	}
	r.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		panic(err)
	}
	r.device = device
	r.queue = device.GetQueue()

	arena, err := frame.NewArena(device, r.arenaSize)
	if err != nil {
		panic(err)
	}
	r.arena = arena

	return r
}
