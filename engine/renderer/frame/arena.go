package frame

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/isgasho/rendertoy/common"
)

// UniformAlignment is the required alignment for dynamic uniform buffer
// offsets. WebGPU guarantees support for 256-byte alignment.
const UniformAlignment = 256

// DefaultArenaSize is the arena capacity used when no size is configured.
const DefaultArenaSize = 1 << 20

// ErrArenaExhausted is returned when an allocation does not fit in the arena's
// remaining capacity for this frame.
var ErrArenaExhausted = errors.New("uniform arena exhausted")

// Allocation is one uniform block's slot in the arena. Bytes is a CPU staging
// window of exactly the requested size, uploaded on Flush; Offset is the
// dynamic offset to pass when binding.
type Allocation struct {
	Buffer *wgpu.Buffer
	Offset uint32
	Bytes  []byte
}

// UniformArena hands out aligned slots from a per-frame uniform buffer.
type UniformArena interface {
	// Allocate reserves size bytes at the next aligned offset. The returned
	// staging window is zero-filled.
	//
	// Parameters:
	//   - size: the allocation size in bytes
	//
	// Returns:
	//   - Allocation: the reserved slot
	//   - error: ErrArenaExhausted (wrapped) when the arena is full
	Allocate(size uint64) (Allocation, error)
}

// FrameArena is the arena surface a Frame drives across its lifecycle:
// allocation during encoding, Reset at Begin, Flush at End.
type FrameArena interface {
	UniformArena

	// Reset rewinds the arena for the next frame. Outstanding allocations
	// become invalid.
	Reset()

	// Flush uploads the used staging region before submission.
	//
	// Parameters:
	//   - queue: the queue to upload on
	Flush(queue *wgpu.Queue)
}

// Arena is the GPU-backed UniformArena: one large uniform buffer plus a CPU
// staging slice, bump-allocated under a mutex and uploaded in a single write
// per frame.
type Arena struct {
	mu      sync.Mutex
	buffer  *wgpu.Buffer
	staging []byte
	head    uint64
}

var _ FrameArena = &Arena{}

// NewArena creates a uniform arena with the given capacity, rounded up to the
// dynamic offset alignment.
//
// Parameters:
//   - device: the device to allocate the buffer on (must not be nil)
//   - size: the arena capacity in bytes (0 uses DefaultArenaSize)
//
// Returns:
//   - *Arena: the arena
//   - error: a buffer creation failure
func NewArena(device *wgpu.Device, size uint64) (*Arena, error) {
	if device == nil {
		panic("frame: NewArena requires a non-nil Device")
	}
	if size == 0 {
		size = DefaultArenaSize
	}
	size = common.AlignUp(size, UniformAlignment)

	buffer, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Uniform Arena",
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("frame: create arena buffer: %w", err)
	}

	return &Arena{
		buffer:  buffer,
		staging: make([]byte, size),
	}, nil
}

func (a *Arena) Allocate(size uint64) (Allocation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	reserved := common.AlignUp(size, UniformAlignment)
	if a.head+reserved > uint64(len(a.staging)) {
		return Allocation{}, fmt.Errorf("%w: requested %d bytes, %d remaining", ErrArenaExhausted, size, uint64(len(a.staging))-a.head)
	}

	offset := a.head
	a.head += reserved

	window := a.staging[offset : offset+size]
	clear(window)

	return Allocation{
		Buffer: a.buffer,
		Offset: uint32(offset),
		Bytes:  window,
	}, nil
}

// Flush uploads the used staging region to the GPU in one write. Call after
// all allocations for the frame are filled and before submitting.
//
// Parameters:
//   - queue: the queue to upload on
func (a *Arena) Flush(queue *wgpu.Queue) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.head == 0 {
		return
	}
	queue.WriteBuffer(a.buffer, 0, a.staging[:a.head])
}

// Reset rewinds the arena for the next frame. Outstanding allocations become
// invalid.
func (a *Arena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.head = 0
}

// Release destroys the arena's GPU buffer.
func (a *Arena) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.buffer != nil {
		a.buffer.Release()
		a.buffer = nil
	}
}

// MemoryArena is a CPU-only UniformArena with the same alignment contract as
// Arena. It backs tests and headless binding runs where no device exists.
type MemoryArena struct {
	mu      sync.Mutex
	staging []byte
	head    uint64
}

var _ FrameArena = &MemoryArena{}

// NewMemoryArena creates a CPU-only arena with the given capacity.
//
// Parameters:
//   - size: the arena capacity in bytes (0 uses DefaultArenaSize)
//
// Returns:
//   - *MemoryArena: the arena
func NewMemoryArena(size uint64) *MemoryArena {
	if size == 0 {
		size = DefaultArenaSize
	}
	return &MemoryArena{
		staging: make([]byte, common.AlignUp(size, UniformAlignment)),
	}
}

func (a *MemoryArena) Allocate(size uint64) (Allocation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	reserved := common.AlignUp(size, UniformAlignment)
	if a.head+reserved > uint64(len(a.staging)) {
		return Allocation{}, fmt.Errorf("%w: requested %d bytes, %d remaining", ErrArenaExhausted, size, uint64(len(a.staging))-a.head)
	}

	offset := a.head
	a.head += reserved

	window := a.staging[offset : offset+size]
	clear(window)

	return Allocation{
		Offset: uint32(offset),
		Bytes:  window,
	}, nil
}

// Reset rewinds the arena. Outstanding allocations become invalid.
func (a *MemoryArena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.head = 0
}

// Flush is a no-op: there is no GPU buffer to upload to.
func (a *MemoryArena) Flush(queue *wgpu.Queue) {}
