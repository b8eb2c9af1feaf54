package placement

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/graph"
	"github.com/matzehuels/qplace/pkg/observability"
	"github.com/matzehuels/qplace/pkg/weight"
	"github.com/matzehuels/qplace/pkg/wsm"
)

// MinTimeout is the smallest total budget Place accepts, and the least time
// that must remain for the fallback pass to run.
const MinTimeout = 4 * time.Millisecond

// ForcedPass runs exactly one pass, for reproducible tests.
type ForcedPass struct {
	Pass Pass
	// Iterations caps the solver when nonzero.
	Iterations uint64
}

// Parameters controls [Place].
type Parameters struct {
	// Timeout is the total budget. Values below MinTimeout are raised to it.
	Timeout time.Duration

	// Forced, if set, skips the multi-pass strategy.
	Forced *ForcedPass

	// MaxIterations caps each solver pass when nonzero.
	MaxIterations uint64

	// NewSolver creates one solver per pass. Defaults to wsm.NewSearchSolver.
	NewSolver wsm.Factory

	Logger *log.Logger
}

func (p Parameters) withDefaults() Parameters {
	p.Timeout = max(p.Timeout, MinTimeout)
	if p.NewSolver == nil {
		p.NewSolver = wsm.NewSearchSolver
	}
	if p.Logger == nil {
		p.Logger = log.New(io.Discard)
	}
	return p
}

var tracer = otel.Tracer("qplace/placement")

// Place computes a placement of in.Pattern onto the device.
func Place(ctx context.Context, in Input, p Parameters) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p = p.withDefaults()
	total := p.Timeout

	if p.Forced != nil {
		target := in.Augmented
		if p.Forced.Pass == PassCompleteTarget {
			var err error
			if target, err = CompleteTarget(in.Augmented); err != nil {
				return nil, err
			}
		}
		res, err := runPass(ctx, p, in, target, p.Forced.Pass, total, 0, p.Forced.Iterations)
		if err != nil {
			return nil, err
		}
		res.Passes = 1
		return res, nil
	}

	first := total / 4
	rest := total - first
	res, err := runPass(ctx, p, in, in.Augmented, PassInitial, first, rest, p.MaxIterations)
	if err != nil {
		return nil, err
	}
	res.Passes = 1
	if res.Complete {
		return res, nil
	}

	used := res.TotalTime()
	if used+MinTimeout >= total {
		p.Logger.Debug("no time left for fallback pass", "used", used, "total", total)
		return res, nil
	}
	p.Logger.Warn("initial pass incomplete, trying complete target graph",
		"assigned", res.Stats.Assigned, "remaining", total-used)

	complete, err := CompleteTarget(in.Augmented)
	if err != nil {
		return nil, err
	}
	alt, err := runPass(ctx, p, in, complete, PassCompleteTarget, total-used, 0, p.MaxIterations)
	if err != nil {
		if !errors.Is(err, errors.ErrCodeInitTimeout) {
			return nil, err
		}
		// The first pass already produced a result to fall back on.
		p.Logger.Warn("fallback pass skipped", "err", err)
		return res, nil
	}

	res.Passes = 2
	res.InitTime += alt.InitTime
	res.SearchTime += alt.SearchTime
	if res.Prefer(alt) {
		res.Placement = alt.Placement
		res.Stats = alt.Stats
		res.Pass = alt.Pass
		res.Iterations = alt.Iterations
		res.Complete = alt.Complete
	}
	return res, nil
}

// runPass initialises a fresh solver against target and searches with
// budget. If a complete solution is found and extra > 0, the search continues
// until budget+extra has been used in total.
func runPass(ctx context.Context, p Parameters, in Input, target graph.Weighted,
	pass Pass, budget, extra time.Duration, maxIterations uint64) (res *Result, err error) {
	ctx, span := tracer.Start(ctx, "placement.pass", trace.WithAttributes(
		attribute.String("pass", pass.String()),
		attribute.Int64("budget_ms", (budget+extra).Milliseconds()),
		attribute.Int("target_edges", len(target)),
	))
	defer span.End()

	hooks := observability.Solver()
	hooks.OnPassStart(ctx, pass.String(), budget+extra)
	var solver wsm.Solver
	defer func() {
		var ps observability.PassStats
		if solver != nil {
			st := solver.Statistics()
			ps = observability.PassStats{Iterations: st.Iterations, InitTime: st.InitTime, SearchTime: st.SearchTime}
		}
		if res != nil {
			ps.Complete = res.Complete
		}
		hooks.OnPassComplete(ctx, pass.String(), ps, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "pass failed")
		}
	}()

	solver = p.NewSolver()
	initStats, err := solver.Initialise(ctx, in.Pattern, target)
	if err != nil {
		return nil, err
	}
	if initStats.InitTime >= budget {
		return nil, errors.New(errors.ErrCodeInitTimeout,
			"initialisation took %v, already longer than timeout %v", initStats.InitTime, budget)
	}

	params := wsm.Parameters{Timeout: budget - initStats.InitTime, MaxIterations: maxIterations}
	if err := solver.Solve(ctx, params); err != nil {
		return nil, err
	}
	if solver.BestSolution().Complete && extra > 0 {
		st := solver.Statistics()
		if used, allowed := st.InitTime+st.SearchTime, budget+extra; used < allowed {
			params.Timeout = allowed - used
			if err := solver.Solve(ctx, params); err != nil {
				return nil, err
			}
		}
	}

	best := solver.BestSolution()
	placement, stats, err := Validate(in, best)
	if err != nil {
		return nil, err
	}
	st := solver.Statistics()
	res = &Result{
		Placement:  placement,
		Stats:      stats,
		Pass:       pass,
		Iterations: st.Iterations,
		InitTime:   st.InitTime,
		SearchTime: st.SearchTime,
		Complete:   best.Complete && len(best.Assignments) == len(placement),
	}
	span.SetAttributes(
		attribute.Int64("iterations", int64(st.Iterations)),
		attribute.Int("assigned", stats.Assigned),
		attribute.Bool("complete", res.Complete),
	)
	p.Logger.Debug("solver pass finished",
		"pass", pass, "assigned", stats.Assigned, "complete", res.Complete,
		"iterations", st.Iterations, "init", st.InitTime, "search", st.SearchTime)
	return res, nil
}

// CompleteTarget adds every missing vertex pair to augmented with weight
// 3·(largest augmented weight), so that any injective mapping embeds.
func CompleteTarget(augmented graph.Weighted) (graph.Weighted, error) {
	w, err := weight.Product(augmented.MaxWeight(), 3)
	if err != nil {
		return nil, err
	}
	vs := augmented.Vertices()
	out := augmented.Clone()
	for i, a := range vs {
		for _, b := range vs[i+1:] {
			if e := graph.NewEdge(a, b); !out.Has(a, b) {
				out[e] = w
			}
		}
	}
	return out, nil
}
