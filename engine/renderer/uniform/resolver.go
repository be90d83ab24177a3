package uniform

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/isgasho/rendertoy/engine/assets"
)

// Getter fetches built asset values by handle. assets.Graph satisfies it.
type Getter interface {
	Get(ctx context.Context, h assets.Handle) (any, error)
}

// Resolve turns a bundle into a ResolvedBundle. Literal values pass through
// untouched; asset references are fetched concurrently, one goroutine per
// reference, with nested bundles resolved recursively. The output preserves
// the input order regardless of which fetch completes first. The first error
// cancels all outstanding fetches and is returned wrapped with the failing
// holder's name.
//
// Parameters:
//   - ctx: cancels the resolution
//   - g: the asset getter (must not be nil when the bundle contains references)
//   - b: the bundle to resolve
//
// Returns:
//   - ResolvedBundle: resolved holders in input order
//   - error: the first resolution failure, or nil
func Resolve(ctx context.Context, g Getter, b Bundle) (ResolvedBundle, error) {
	out := make(ResolvedBundle, len(b))
	eg, ctx := errgroup.WithContext(ctx)

	for i, h := range b {
		if lit, ok := h.Value().(Resolved); ok {
			out[i] = ResolvedHolder{Name: h.Name(), Value: lit}
			continue
		}
		eg.Go(func() error {
			r, err := resolveValue(ctx, g, h.Value())
			if err != nil {
				return fmt.Errorf("uniform %q: %w", h.Name(), err)
			}
			out[i] = ResolvedHolder{Name: h.Name(), Value: r}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func resolveValue(ctx context.Context, g Getter, v Value) (Resolved, error) {
	switch val := v.(type) {
	case Bundle:
		return Resolve(ctx, g, val)
	case Float32Ref:
		f, err := fetch[float32](ctx, g, val.Handle)
		return Float32(f), err
	case Uint32Ref:
		u, err := fetch[uint32](ctx, g, val.Handle)
		return Uint32(u), err
	case UintRef:
		u, err := fetch[uint](ctx, g, val.Handle)
		if err != nil {
			return nil, err
		}
		if uint64(u) > math.MaxUint32 {
			return nil, fmt.Errorf("asset %s: value %d overflows uint32", val.Handle, u)
		}
		return Uint32(u), nil
	case TextureRef:
		t, err := fetch[*assets.Texture](ctx, g, val.Handle)
		if err != nil {
			return nil, err
		}
		return ResolvedTexture{Texture: t}, nil
	case BufferRef:
		buf, err := fetch[*assets.Buffer](ctx, g, val.Handle)
		if err != nil {
			return nil, err
		}
		return ResolvedBuffer{Buffer: buf}, nil
	case BundleRef:
		nested, err := fetch[Bundle](ctx, g, val.Handle)
		if err != nil {
			return nil, err
		}
		return Resolve(ctx, g, nested)
	default:
		return nil, fmt.Errorf("unresolvable value type %T", v)
	}
}

func fetch[T any](ctx context.Context, g Getter, h assets.Handle) (T, error) {
	var zero T
	v, err := g.Get(ctx, h)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("asset %s: got %T, want %T", h, v, zero)
	}
	return typed, nil
}
