package assets

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// GraphBuilderOption is a functional option for configuring a Graph.
// Use the With* functions to create options.
type GraphBuilderOption func(g *graphConfig)

type graphConfig struct {
	workers     int
	queueSize   int
	idleTimeout time.Duration
}

// WithBuildWorkers sets the number of worker goroutines used to execute asset
// builds. Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of build workers (minimum 1)
//
// Returns:
//   - GraphBuilderOption: option function to apply
func WithBuildWorkers(n int) GraphBuilderOption {
	return func(g *graphConfig) {
		if n < 1 {
			n = 1
		}
		g.workers = n
	}
}

// WithQueueSize sets the size of the pending build queue. Defaults to 256.
//
// Parameters:
//   - n: the queue size (minimum 1)
//
// Returns:
//   - GraphBuilderOption: option function to apply
func WithQueueSize(n int) GraphBuilderOption {
	return func(g *graphConfig) {
		if n < 1 {
			n = 1
		}
		g.queueSize = n
	}
}

// NewGraph creates an empty asset graph backed by a dynamic worker pool.
//
// Parameters:
//   - options: functional options to configure the graph
//
// Returns:
//   - Graph: the newly created graph
func NewGraph(options ...GraphBuilderOption) Graph {
	cfg := &graphConfig{
		workers:     max(runtime.NumCPU()-1, 1),
		queueSize:   256,
		idleTimeout: 1 * time.Second,
	}
	for _, option := range options {
		option(cfg)
	}

	return &graph{
		pool:    worker.NewDynamicWorkerPool(cfg.workers, cfg.queueSize, cfg.idleTimeout),
		entries: make(map[uint64]*graphEntry),
	}
}
