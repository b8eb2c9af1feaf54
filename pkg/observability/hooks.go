// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies to the placement packages. Consumers register hooks at startup
// to receive events about pipeline stages, solver passes, cache operations
// and HTTP requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// [PrometheusHooks] implements every interface on top of a Prometheus
// registry and is what `qplace serve` installs.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    h := observability.NewPrometheusHooks(prometheus.NewRegistry())
//	    observability.SetSolverHooks(h)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Solver().OnPassStart(ctx, "INITIAL", budget)
//	// ... run the solver ...
//	observability.Solver().OnPassComplete(ctx, "INITIAL", stats, complete, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the placement pipeline stages.
type PipelineHooks interface {
	// Slice events (gate list → pattern graph)
	OnSliceStart(ctx context.Context, gateCount int)
	OnSliceComplete(ctx context.Context, sliceCount int, duration time.Duration, err error)

	// Augment events (device graph → augmented graph)
	OnAugmentStart(ctx context.Context, edgeCount int)
	OnAugmentComplete(ctx context.Context, edgeCount int, duration time.Duration, err error)

	// Place events (graphs → placement)
	OnPlaceStart(ctx context.Context, patternVertices, targetVertices int)
	OnPlaceComplete(ctx context.Context, assigned int, duration time.Duration, err error)
}

// =============================================================================
// Solver Hooks
// =============================================================================

// PassStats summarises one solver pass.
type PassStats struct {
	Iterations uint64
	InitTime   time.Duration
	SearchTime time.Duration
	Complete   bool
}

// SolverHooks receives events from the multi-pass orchestrator.
type SolverHooks interface {
	// OnPassStart records the start of a solver pass with its time budget.
	OnPassStart(ctx context.Context, pass string, budget time.Duration)

	// OnPassComplete records the outcome of a solver pass.
	OnPassComplete(ctx context.Context, pass string, stats PassStats, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records the response sent for a request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnSliceStart(context.Context, int)                            {}
func (NoopPipelineHooks) OnSliceComplete(context.Context, int, time.Duration, error)   {}
func (NoopPipelineHooks) OnAugmentStart(context.Context, int)                          {}
func (NoopPipelineHooks) OnAugmentComplete(context.Context, int, time.Duration, error) {}
func (NoopPipelineHooks) OnPlaceStart(context.Context, int, int)                       {}
func (NoopPipelineHooks) OnPlaceComplete(context.Context, int, time.Duration, error)   {}

// NoopSolverHooks is a no-op implementation of SolverHooks.
type NoopSolverHooks struct{}

func (NoopSolverHooks) OnPassStart(context.Context, string, time.Duration)     {}
func (NoopSolverHooks) OnPassComplete(context.Context, string, PassStats, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                     {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	solverHooks   SolverHooks   = NoopSolverHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetSolverHooks registers custom solver hooks.
func SetSolverHooks(h SolverHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		solverHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Solver returns the registered solver hooks.
func Solver() SolverHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return solverHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	solverHooks = NoopSolverHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
