package observability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnSliceStart(ctx, 10)
	p.OnSliceComplete(ctx, 4, time.Second, nil)
	p.OnAugmentStart(ctx, 12)
	p.OnAugmentComplete(ctx, 40, time.Second, nil)
	p.OnPlaceStart(ctx, 5, 9)
	p.OnPlaceComplete(ctx, 5, time.Second, nil)

	// Solver hooks
	s := NoopSolverHooks{}
	s.OnPassStart(ctx, "INITIAL", time.Second)
	s.OnPassComplete(ctx, "INITIAL", PassStats{Iterations: 10}, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "placement")
	c.OnCacheMiss(ctx, "placement")
	c.OnCacheSet(ctx, "placement", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/placements")
	h.OnResponse(ctx, "POST", "/v1/placements", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Solver().(NoopSolverHooks); !ok {
		t.Error("Solver() should return NoopSolverHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customSolver := &testSolverHooks{}
	SetSolverHooks(customSolver)
	if Solver() != customSolver {
		t.Error("SetSolverHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
	if _, ok := Solver().(NoopSolverHooks); !ok {
		t.Error("Reset() should restore NoopSolverHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testSolverHooks{}
	SetSolverHooks(custom)

	// Setting nil should be ignored
	SetSolverHooks(nil)

	if Solver() != custom {
		t.Error("SetSolverHooks(nil) should be ignored")
	}

	Reset()
}

func TestPrometheusHooks(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	h := NewPrometheusHooks(reg)

	h.OnPassComplete(ctx, "INITIAL", PassStats{Iterations: 100, Complete: true}, nil)
	h.OnPassComplete(ctx, "INITIAL", PassStats{Iterations: 5}, nil)
	h.OnPassComplete(ctx, "COMPLETE_TARGET_GRAPH", PassStats{}, errors.New("boom"))

	if got := testutil.ToFloat64(h.passTotal.WithLabelValues("INITIAL", "complete")); got != 1 {
		t.Errorf("complete passes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.passTotal.WithLabelValues("INITIAL", "incomplete")); got != 1 {
		t.Errorf("incomplete passes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.passTotal.WithLabelValues("COMPLETE_TARGET_GRAPH", "error")); got != 1 {
		t.Errorf("error passes = %v, want 1", got)
	}

	h.OnCacheHit(ctx, "placement")
	h.OnCacheHit(ctx, "placement")
	h.OnCacheMiss(ctx, "placement")
	if got := testutil.ToFloat64(h.cacheEvents.WithLabelValues("placement", "hit")); got != 2 {
		t.Errorf("cache hits = %v, want 2", got)
	}

	h.OnResponse(ctx, "POST", "/v1/placements", 200, time.Millisecond)
	h.OnSliceComplete(ctx, 3, time.Millisecond, nil)
	h.OnAugmentComplete(ctx, 3, time.Millisecond, errors.New("bad"))
	if got := testutil.ToFloat64(h.stageTotal.WithLabelValues("augment", "error")); got != 1 {
		t.Errorf("augment errors = %v, want 1", got)
	}

	expected := `
# HELP qplace_http_requests_total HTTP requests by route and status
# TYPE qplace_http_requests_total counter
qplace_http_requests_total{method="POST",route="/v1/placements",status="200"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "qplace_http_requests_total"); err != nil {
		t.Error(err)
	}
}

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testSolverHooks struct{ NoopSolverHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
