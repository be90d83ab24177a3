package frame

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// Frame owns the transient GPU state for one frame of compute work: the
// command encoder, the uniform arena, and every bind group created during the
// frame. Bind groups are tracked and released at End, which is the pool the
// binder allocates from.
type Frame struct {
	mu         sync.Mutex
	device     *wgpu.Device
	arena      FrameArena
	encoder    *wgpu.CommandEncoder
	bindGroups []*wgpu.BindGroup
}

// NewFrame creates a frame around the given device and arena. The arena is
// shared with the caller and reset by Begin each frame.
//
// Parameters:
//   - device: the device to encode on (must not be nil)
//   - arena: the uniform arena for this frame's blocks (must not be nil)
//
// Returns:
//   - *Frame: the frame
func NewFrame(device *wgpu.Device, arena FrameArena) *Frame {
	if device == nil {
		panic("frame: NewFrame requires a non-nil Device")
	}
	if arena == nil {
		panic("frame: NewFrame requires a non-nil Arena")
	}
	return &Frame{
		device: device,
		arena:  arena,
	}
}

// Begin resets the arena and opens a new command encoder. Must be called
// before any dispatch is encoded.
//
// Returns:
//   - error: an encoder creation failure
func (f *Frame) Begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.encoder != nil {
		return fmt.Errorf("frame: Begin called with an open encoder")
	}
	f.arena.Reset()

	encoder, err := f.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{
		Label: "Frame Encoder",
	})
	if err != nil {
		return fmt.Errorf("frame: create command encoder: %w", err)
	}
	f.encoder = encoder
	return nil
}

// Encoder returns the open command encoder, or nil outside Begin/End.
func (f *Frame) Encoder() *wgpu.CommandEncoder {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.encoder
}

// Arena returns the frame's uniform arena.
func (f *Frame) Arena() FrameArena {
	return f.arena
}

// CreateBindGroup creates a bind group and tracks it for release at End.
// Creation is serialized under the frame mutex so concurrent binders can
// share one frame.
//
// Parameters:
//   - layout: the layout the entries must match
//   - entries: the bind group entries
//   - label: the debug label
//
// Returns:
//   - *wgpu.BindGroup: the created bind group
//   - error: a creation failure
func (f *Frame) CreateBindGroup(layout *wgpu.BindGroupLayout, entries []wgpu.BindGroupEntry, label string) (*wgpu.BindGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bg, err := f.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("frame: create bind group %q: %w", label, err)
	}
	f.bindGroups = append(f.bindGroups, bg)
	return bg, nil
}

// End flushes the uniform arena, submits the encoded commands, and releases
// the frame's bind groups and encoder.
//
// Parameters:
//   - queue: the queue to flush and submit on
//
// Returns:
//   - error: an encoder finish failure
func (f *Frame) End(queue *wgpu.Queue) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.encoder == nil {
		return fmt.Errorf("frame: End called without Begin")
	}

	// Uniform data must land before the commands that read it.
	f.arena.Flush(queue)

	commandBuffer, err := f.encoder.Finish(nil)
	if err != nil {
		f.releaseLocked()
		return fmt.Errorf("frame: finish encoder: %w", err)
	}
	queue.Submit(commandBuffer)
	commandBuffer.Release()

	f.releaseLocked()
	return nil
}

func (f *Frame) releaseLocked() {
	for _, bg := range f.bindGroups {
		bg.Release()
	}
	f.bindGroups = f.bindGroups[:0]
	if f.encoder != nil {
		f.encoder.Release()
		f.encoder = nil
	}
}
