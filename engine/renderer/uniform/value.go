package uniform

import (
	"encoding/binary"
	"hash/fnv"
	"io"
	"math"

	"github.com/isgasho/rendertoy/engine/assets"
)

// Value is a closed union over everything a shader uniform can be set to:
// plain literals, references to asset-graph outputs, and nested bundles.
// All implementations live in this package.
type Value interface {
	// hashValue writes a tag byte plus the value's identity payload. Asset
	// references hash their handle, never the resolved content, so a holder's
	// hash is stable regardless of build state.
	hashValue(w io.Writer)
}

// Hash tag bytes, one per variant. The tag keeps same-bit-pattern values of
// different types from colliding.
const (
	tagFloat32 byte = iota + 1
	tagInt32
	tagUint32
	tagIVec2
	tagVec4
	tagBundle
	tagFloat32Ref
	tagUint32Ref
	tagUintRef
	tagTextureRef
	tagBufferRef
	tagBundleRef
)

// Float32 is a literal float uniform value.
type Float32 float32

// Int32 is a literal signed integer uniform value.
type Int32 int32

// Uint32 is a literal unsigned integer uniform value.
type Uint32 uint32

// IVec2 is a literal two-component signed integer vector.
type IVec2 [2]int32

// Vec4 is a literal four-component float vector.
type Vec4 [4]float32

// Float32Ref references a float asset in the graph.
type Float32Ref struct {
	Handle assets.Handle
}

// Uint32Ref references a uint32 asset in the graph.
type Uint32Ref struct {
	Handle assets.Handle
}

// UintRef references a platform-sized unsigned integer asset in the graph.
// It resolves to a Uint32 for shader consumption.
type UintRef struct {
	Handle assets.Handle
}

// TextureRef references a texture asset in the graph.
type TextureRef struct {
	Handle assets.Handle
}

// BufferRef references a buffer asset in the graph.
type BufferRef struct {
	Handle assets.Handle
}

// BundleRef references a bundle asset in the graph. The referenced bundle is
// resolved recursively.
type BundleRef struct {
	Handle assets.Handle
}

// Bundle is an ordered list of nested uniform holders. A bundle nested inside
// another introduces a scope when flattened.
type Bundle []Holder

func writeLE(w io.Writer, data any) {
	// fnv hashers never return a write error.
	_ = binary.Write(w, binary.LittleEndian, data)
}

func (v Float32) hashValue(w io.Writer) {
	writeLE(w, tagFloat32)
	writeLE(w, math.Float32bits(float32(v)))
}

func (v Int32) hashValue(w io.Writer) {
	writeLE(w, tagInt32)
	writeLE(w, int32(v))
}

func (v Uint32) hashValue(w io.Writer) {
	writeLE(w, tagUint32)
	writeLE(w, uint32(v))
}

func (v IVec2) hashValue(w io.Writer) {
	writeLE(w, tagIVec2)
	writeLE(w, v[0])
	writeLE(w, v[1])
}

func (v Vec4) hashValue(w io.Writer) {
	writeLE(w, tagVec4)
	for _, c := range v {
		writeLE(w, math.Float32bits(c))
	}
}

func (v Bundle) hashValue(w io.Writer) {
	writeLE(w, tagBundle)
	writeLE(w, uint32(len(v)))
	for _, h := range v {
		writeLE(w, []byte(h.name))
		writeLE(w, h.hash)
	}
}

func hashRef(w io.Writer, tag byte, h assets.Handle) {
	writeLE(w, tag)
	writeLE(w, h.ID())
}

func (v Float32Ref) hashValue(w io.Writer) { hashRef(w, tagFloat32Ref, v.Handle) }
func (v Uint32Ref) hashValue(w io.Writer)  { hashRef(w, tagUint32Ref, v.Handle) }
func (v UintRef) hashValue(w io.Writer)    { hashRef(w, tagUintRef, v.Handle) }
func (v TextureRef) hashValue(w io.Writer) { hashRef(w, tagTextureRef, v.Handle) }
func (v BufferRef) hashValue(w io.Writer)  { hashRef(w, tagBufferRef, v.Handle) }
func (v BundleRef) hashValue(w io.Writer)  { hashRef(w, tagBundleRef, v.Handle) }

// Holder pairs a uniform name with its value. The shallow hash is computed
// eagerly at construction so bundles can hash their children without
// revisiting asset contents.
type Holder struct {
	name  string
	value Value
	hash  uint64
}

// NewHolder creates a holder and computes its shallow hash over the name and
// the value's identity.
//
// Parameters:
//   - name: the uniform name as addressed from shader source
//   - value: the uniform value (must not be nil)
//
// Returns:
//   - Holder: the holder with its shallow hash populated
func NewHolder(name string, value Value) Holder {
	if value == nil {
		panic("uniform: NewHolder requires a non-nil Value")
	}
	hasher := fnv.New64a()
	writeLE(hasher, []byte(name))
	value.hashValue(hasher)
	return Holder{
		name:  name,
		value: value,
		hash:  hasher.Sum64(),
	}
}

// Name returns the uniform name.
func (h Holder) Name() string {
	return h.name
}

// Value returns the uniform value.
func (h Holder) Value() Value {
	return h.value
}

// ShallowHash returns the hash computed at construction. Asset references
// contribute their handle identity only, so the hash does not change when an
// asset rebuilds.
func (h Holder) ShallowHash() uint64 {
	return h.hash
}
