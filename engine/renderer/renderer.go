package renderer

import (
	"context"
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/isgasho/rendertoy/engine/assets"
	"github.com/isgasho/rendertoy/engine/profiler"
	"github.com/isgasho/rendertoy/engine/renderer/frame"
	"github.com/isgasho/rendertoy/engine/renderer/shader"
	"github.com/isgasho/rendertoy/engine/renderer/uniform"
)

// renderer is the implementation of the Renderer interface. It owns the GPU
// instance, adapter, device, and queue, the keyed output texture pool, and the
// uniform arena shared by frames.
type renderer struct {
	mu sync.Mutex

	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat wgpu.TextureFormat
	surfaceWidth  uint32
	surfaceHeight uint32

	arena       *frame.Arena
	texturePool map[assets.TextureKey]*assets.Texture
	reporter    profiler.Reporter

	// builder state
	forceFallbackAdapter bool
	arenaSize            uint64
}

// Renderer is the GPU facade for compute-driven texture generation: device
// setup, the keyed output texture pool, frame construction, the compute
// dispatch orchestrator, and optional surface presentation.
type Renderer interface {
	// Device returns the wgpu device.
	//
	// Returns:
	//   - *wgpu.Device: the device
	Device() *wgpu.Device

	// Queue returns the wgpu queue.
	//
	// Returns:
	//   - *wgpu.Queue: the queue
	Queue() *wgpu.Queue

	// ConfigureSurface (re)configures the window surface for presentation.
	// Must be called after creation and on every resize. Panics when the
	// renderer was created headless.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	ConfigureSurface(width, height int)

	// SurfaceFormat returns the configured surface texture format. Output
	// textures intended for PresentTexture must use this format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the surface format
	SurfaceFormat() wgpu.TextureFormat

	// NewFrame creates a frame over the renderer's device and uniform arena.
	// One frame at a time: the arena is reset by Frame.Begin.
	//
	// Returns:
	//   - *frame.Frame: the frame
	NewFrame() *frame.Frame

	// AcquireTexture returns the pooled output texture for the key, creating
	// it on first use with storage, sampling, and copy-source usage.
	//
	// The pool is grow-only: each distinct key keeps its texture alive until
	// Release, so callers that vary keys every frame (continuous resizing)
	// accumulate one texture per size seen.
	//
	// Parameters:
	//   - key: the texture's allocation parameters
	//
	// Returns:
	//   - *assets.Texture: the pooled texture
	//   - error: a texture creation failure
	AcquireTexture(key assets.TextureKey) (*assets.Texture, error)

	// ComputeTexture runs one compute dispatch that writes the keyed output
	// texture: resolve the uniform bundle, inject the implicit output texture
	// holder, flatten, bind against the shader's reflection, and encode the
	// dispatch on the frame's encoder.
	//
	// Parameters:
	//   - ctx: cancels asset resolution
	//   - f: the frame to encode on (must be begun)
	//   - g: the asset getter for reference resolution
	//   - key: the output texture's allocation parameters
	//   - cs: the compute shader to dispatch
	//   - uniforms: the uniform bundle to bind
	//
	// Returns:
	//   - *assets.Texture: the output texture
	//   - error: a resolution, binding, or encoding failure
	ComputeTexture(ctx context.Context, f *frame.Frame, g uniform.Getter, key assets.TextureKey, cs shader.ComputeShader, uniforms uniform.Bundle) (*assets.Texture, error)

	// PresentTexture copies a texture to the current surface texture and
	// presents it. The texture format must match the surface format.
	//
	// Parameters:
	//   - tex: the texture to present
	//
	// Returns:
	//   - error: an acquisition or format mismatch failure
	PresentTexture(tex *assets.Texture) error

	// Release destroys the texture pool, arena, and GPU objects.
	Release()
}

// OutputTextureName is the uniform name under which the dispatch target is
// injected, so shaders address the output like any other texture uniform.
const OutputTextureName = "outputTex"

var _ Renderer = &renderer{}

func (r *renderer) Device() *wgpu.Device {
	return r.device
}

func (r *renderer) Queue() *wgpu.Queue {
	return r.queue
}

func (r *renderer) SurfaceFormat() wgpu.TextureFormat {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.surfaceFormat
}

func (r *renderer) ConfigureSurface(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.surface == nil {
		panic("renderer: ConfigureSurface called on a headless renderer")
	}

	capabilities := r.surface.GetCapabilities(r.adapter)
	r.surfaceFormat = capabilities.Formats[0]
	// Prefer a format compute shaders can also use as a storage texel format,
	// so outputs can be copied to the surface without a conversion pass.
	for _, f := range capabilities.Formats {
		if f == wgpu.TextureFormatRGBA8Unorm {
			r.surfaceFormat = f
			break
		}
	}

	r.surface.Configure(r.adapter, r.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopyDst,
		Format:      r.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	r.surfaceWidth = uint32(width)
	r.surfaceHeight = uint32(height)
}

func (r *renderer) NewFrame() *frame.Frame {
	return frame.NewFrame(r.device, r.arena)
}

func (r *renderer) AcquireTexture(key assets.TextureKey) (*assets.Texture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tex, ok := r.texturePool[key]; ok {
		return tex, nil
	}

	gpuTex, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     fmt.Sprintf("Output Texture %dx%d", key.Width, key.Height),
		Usage:     wgpu.TextureUsageStorageBinding | wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopySrc,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              key.Width,
			Height:             key.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        key.Format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: create output texture: %w", err)
	}

	view, err := gpuTex.CreateView(nil)
	if err != nil {
		gpuTex.Release()
		return nil, fmt.Errorf("renderer: create output texture view: %w", err)
	}

	tex := &assets.Texture{
		Key:     key,
		Texture: gpuTex,
		View:    view,
	}
	r.texturePool[key] = tex
	return tex, nil
}

func (r *renderer) PresentTexture(tex *assets.Texture) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.surface == nil {
		return fmt.Errorf("renderer: PresentTexture called on a headless renderer")
	}
	if tex.Key.Format != r.surfaceFormat {
		return fmt.Errorf("renderer: texture format %v does not match surface format %v", tex.Key.Format, r.surfaceFormat)
	}

	surfaceTexture, err := r.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("renderer: acquire surface texture: %w", err)
	}

	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		surfaceTexture.Release()
		return fmt.Errorf("renderer: create present encoder: %w", err)
	}

	width := min(tex.Key.Width, r.surfaceWidth)
	height := min(tex.Key.Height, r.surfaceHeight)
	encoder.CopyTextureToTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex.Texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyTexture{
			Texture:  surfaceTexture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
	)

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		surfaceTexture.Release()
		return fmt.Errorf("renderer: finish present encoder: %w", err)
	}
	r.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()

	r.surface.Present()
	surfaceTexture.Release()
	return nil
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tex := range r.texturePool {
		tex.Release()
	}
	r.texturePool = make(map[assets.TextureKey]*assets.Texture)

	if r.arena != nil {
		r.arena.Release()
		r.arena = nil
	}
	if r.device != nil {
		r.device.Release()
		r.device = nil
	}
	if r.adapter != nil {
		r.adapter.Release()
		r.adapter = nil
	}
	if r.surface != nil {
		r.surface.Release()
		r.surface = nil
	}
	if r.instance != nil {
		r.instance.Release()
		r.instance = nil
	}
}
