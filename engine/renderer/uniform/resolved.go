package uniform

import (
	"github.com/isgasho/rendertoy/engine/assets"
)

// Resolved is a closed union over uniform values after asset resolution.
// Literal values are their own resolved form; asset references become the
// concrete resources they point at.
type Resolved interface {
	isResolved()
}

func (Float32) isResolved() {}
func (Int32) isResolved()   {}
func (Uint32) isResolved()  {}
func (IVec2) isResolved()   {}
func (Vec4) isResolved()    {}

// ResolvedTexture is a texture reference after resolution.
type ResolvedTexture struct {
	Texture *assets.Texture
}

func (ResolvedTexture) isResolved() {}

// ResolvedBuffer is a buffer reference after resolution.
type ResolvedBuffer struct {
	Buffer *assets.Buffer
}

func (ResolvedBuffer) isResolved() {}

// ResolvedHolder pairs a uniform name with its resolved value.
type ResolvedHolder struct {
	Name  string
	Value Resolved
}

// ResolvedBundle is an ordered list of resolved holders, in the same order as
// the bundle it was resolved from.
type ResolvedBundle []ResolvedHolder

func (ResolvedBundle) isResolved() {}

// FlatUniforms maps uniform names to resolved values after scope flattening.
// Later writes shadow earlier ones.
type FlatUniforms map[string]Resolved
