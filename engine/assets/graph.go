package assets

import (
	"context"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// BuildFunc produces an asset's value. It runs at most once per graph entry,
// on the graph's worker pool. The context is the graph's own background
// context, not any individual caller's, so one caller cancelling does not
// abandon the build for everyone else.
type BuildFunc func(ctx context.Context) (any, error)

// Graph is a memoized asynchronous asset build graph. Adding the same key
// twice returns the same handle; the first registered build function wins.
// Builds are started lazily on first Get and every waiter observes the same
// result.
type Graph interface {
	// Add registers a build function under the given identity and returns its handle.
	//
	// Parameters:
	//   - key: the asset identity, normally a content hash of the build recipe
	//   - build: the function that produces the asset value
	//
	// Returns:
	//   - Handle: the handle for the registered asset
	Add(key uint64, build BuildFunc) Handle

	// Get returns the built value for the handle, starting the build if it has
	// not started yet. Concurrent callers share a single build.
	//
	// Parameters:
	//   - ctx: cancels this caller's wait, not the build itself
	//   - h: the handle to fetch
	//
	// Returns:
	//   - any: the built asset value
	//   - error: the build error, a ctx error, or an unknown-handle error
	Get(ctx context.Context, h Handle) (any, error)
}

type graphEntry struct {
	build   BuildFunc
	started bool
	done    chan struct{}
	value   any
	err     error
}

type graph struct {
	mu       sync.Mutex
	pool     worker.DynamicWorkerPool
	entries  map[uint64]*graphEntry
	nextTask int
}

// Ensure graph implements Graph interface.
var _ Graph = &graph{}

func (g *graph) Add(key uint64, build BuildFunc) Handle {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.entries[key]; !ok {
		g.entries[key] = &graphEntry{
			build: build,
			done:  make(chan struct{}),
		}
	}
	return Handle{id: key}
}

func (g *graph) Get(ctx context.Context, h Handle) (any, error) {
	g.mu.Lock()
	e, ok := g.entries[h.id]
	if !ok {
		g.mu.Unlock()
		return nil, fmt.Errorf("assets: unknown handle %s", h)
	}
	if !e.started {
		e.started = true
		id := g.nextTask
		g.nextTask++
		g.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				v, err := e.build(context.Background())
				e.value, e.err = v, err
				close(e.done)
				return v, err
			},
		})
	}
	g.mu.Unlock()

	select {
	case <-e.done:
		return e.value, e.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
