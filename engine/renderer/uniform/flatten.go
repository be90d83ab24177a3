package uniform

// EventKind discriminates flatten events.
type EventKind int

const (
	// EventSetUniform assigns a resolved value to a name.
	EventSetUniform EventKind = iota
	// EventEnterScope opens a nested bundle's scope.
	EventEnterScope
	// EventLeaveScope closes the innermost open scope.
	EventLeaveScope
)

// Event is one step of the flattened uniform stream. Scope events carry no
// name or value; they only delimit nesting.
type Event struct {
	Kind  EventKind
	Name  string
	Value Resolved
}

// OutputSizeSuffix is appended to a texture's uniform name for the implicit
// size vector emitted alongside it.
const OutputSizeSuffix = "_size"

// Flatten walks a resolved bundle in two phases per level: first every
// non-bundle holder in order, then every nested bundle wrapped in scope
// events. Textures emit their size vector (width, height, 1/width, 1/height)
// immediately before the texture itself so shaders can address texel extents
// without a separate plumbing step.
//
// Parameters:
//   - rb: the resolved bundle to flatten
//   - emit: receives each event in stream order
func Flatten(rb ResolvedBundle, emit func(Event)) {
	for _, h := range rb {
		if _, ok := h.Value.(ResolvedBundle); ok {
			continue
		}
		if tex, ok := h.Value.(ResolvedTexture); ok {
			w := float32(tex.Texture.Key.Width)
			ht := float32(tex.Texture.Key.Height)
			emit(Event{
				Kind:  EventSetUniform,
				Name:  h.Name + OutputSizeSuffix,
				Value: Vec4{w, ht, 1 / w, 1 / ht},
			})
		}
		emit(Event{Kind: EventSetUniform, Name: h.Name, Value: h.Value})
	}
	for _, h := range rb {
		nested, ok := h.Value.(ResolvedBundle)
		if !ok {
			continue
		}
		emit(Event{Kind: EventEnterScope})
		Flatten(nested, emit)
		emit(Event{Kind: EventLeaveScope})
	}
}

// FlattenToMap drains the event stream into a name-to-value map. Later events
// win, so values set inside nested scopes shadow same-named values from outer
// scopes.
//
// Parameters:
//   - rb: the resolved bundle to flatten
//
// Returns:
//   - FlatUniforms: the final name-to-value mapping
func FlattenToMap(rb ResolvedBundle) FlatUniforms {
	flat := make(FlatUniforms)
	Flatten(rb, func(e Event) {
		if e.Kind == EventSetUniform {
			flat[e.Name] = e.Value
		}
	})
	return flat
}
