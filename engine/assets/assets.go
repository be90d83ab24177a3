package assets

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Handle is an opaque reference to an asset in a Graph. Handles are cheap to
// copy and compare; two handles with the same ID refer to the same asset.
type Handle struct {
	id uint64
}

// NewHandle creates a handle with the given identity. The identity is normally
// a content hash of the asset's build recipe so identical recipes share a handle.
//
// Parameters:
//   - id: the asset identity
//
// Returns:
//   - Handle: the handle wrapping id
func NewHandle(id uint64) Handle {
	return Handle{id: id}
}

// ID returns the asset identity.
func (h Handle) ID() uint64 {
	return h.id
}

func (h Handle) String() string {
	return fmt.Sprintf("asset:%016x", h.id)
}

// TextureKey identifies a pooled GPU texture by its allocation parameters.
// Textures with equal keys are interchangeable render targets.
type TextureKey struct {
	Width  uint32
	Height uint32
	Format wgpu.TextureFormat
}

// Texture is a GPU texture plus its default view, as produced by the asset
// graph or acquired from the renderer's texture pool.
type Texture struct {
	Key     TextureKey
	Texture *wgpu.Texture
	View    *wgpu.TextureView
}

// Release destroys the underlying GPU objects. Safe to call on a partially
// initialized texture.
func (t *Texture) Release() {
	if t == nil {
		return
	}
	if t.View != nil {
		t.View.Release()
		t.View = nil
	}
	if t.Texture != nil {
		t.Texture.Release()
		t.Texture = nil
	}
}

// Buffer is a GPU buffer produced by the asset graph.
type Buffer struct {
	Size   uint64
	Buffer *wgpu.Buffer
}

// Release destroys the underlying GPU buffer.
func (b *Buffer) Release() {
	if b == nil {
		return
	}
	if b.Buffer != nil {
		b.Buffer.Release()
		b.Buffer = nil
	}
}
