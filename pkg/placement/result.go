package placement

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/graph"
	"github.com/matzehuels/qplace/pkg/weight"
	"github.com/matzehuels/qplace/pkg/wsm"
)

// Pass identifies which solver pass produced a result.
type Pass int

const (
	PassInitial Pass = iota
	PassCompleteTarget
)

func (p Pass) String() string {
	switch p {
	case PassInitial:
		return "INITIAL"
	case PassCompleteTarget:
		return "COMPLETE_TARGET_GRAPH"
	}
	return fmt.Sprintf("Pass(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p Pass) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pass) UnmarshalText(b []byte) error {
	pass, err := ParsePass(string(b))
	if err != nil {
		return err
	}
	*p = pass
	return nil
}

// ParsePass accepts "initial" and "complete" (any case) as well as the
// String forms.
func ParsePass(s string) (Pass, error) {
	switch strings.ToUpper(s) {
	case "INITIAL":
		return PassInitial, nil
	case "COMPLETE", "COMPLETE_TARGET_GRAPH":
		return PassCompleteTarget, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown pass %q", s)
}

// Placement maps pattern vertices to distinct target vertices.
type Placement map[graph.Vertex]graph.Vertex

// Assignments returns the placement sorted by pattern vertex.
func (p Placement) Assignments() []wsm.Assignment {
	out := make([]wsm.Assignment, 0, len(p))
	for _, pv := range slices.Sorted(maps.Keys(p)) {
		out = append(out, wsm.Assignment{P: pv, T: p[pv]})
	}
	return out
}

// Stats are per-gate quality counters of a placement.
type Stats struct {
	Assigned int `json:"assigned"`

	// Two-qubit gates
	InPlace    int           `json:"in_place"`
	Nearby     int           `json:"nearby"`
	SwapWeight weight.Weight `json:"swap_weight"`
	Poor       int           `json:"poor"`
	Unassigned int           `json:"unassigned"`

	SingleQubit          int `json:"single_qubit"`
	MultiQubit           int `json:"multi_qubit"`
	MultiQubitUnassigned int `json:"multi_qubit_unassigned"`
}

// Better reports whether s is strictly preferable to o: more assigned
// qubits, then more gates in place, then more gates nearby, then a lower
// total swap weight.
func (s Stats) Better(o Stats) bool {
	if c := cmp.Compare(s.Assigned, o.Assigned); c != 0 {
		return c > 0
	}
	if c := cmp.Compare(s.InPlace, o.InPlace); c != 0 {
		return c > 0
	}
	if c := cmp.Compare(s.Nearby, o.Nearby); c != 0 {
		return c > 0
	}
	return s.SwapWeight < o.SwapWeight
}

func (s Stats) String() string {
	return fmt.Sprintf("assigned %d qubits; %d twoQ gates in place; %d twoQ gates nearby; "+
		"%d total swap weights; %d twoQ bad gates; %d twoQ gates unassigned; "+
		"%d oneQ gates; %d nQ gates; %d nQ gates unassigned.",
		s.Assigned, s.InPlace, s.Nearby, s.SwapWeight, s.Poor, s.Unassigned,
		s.SingleQubit, s.MultiQubit, s.MultiQubitUnassigned)
}

// Result is the outcome of [Place].
type Result struct {
	Placement  Placement     `json:"placement"`
	Stats      Stats         `json:"stats"`
	Pass       Pass          `json:"pass"`
	Passes     int           `json:"passes"`
	Iterations uint64        `json:"iterations"`
	InitTime   time.Duration `json:"init_time"`
	SearchTime time.Duration `json:"search_time"`
	// Complete is set when the solver of the chosen pass reported a
	// complete solution and validation kept all of it.
	Complete bool `json:"complete"`
}

// Prefer reports whether other should replace r under [Stats.Better].
func (r *Result) Prefer(other *Result) bool {
	return other.Stats.Better(r.Stats)
}

// TotalTime returns the accumulated initialisation and search time.
func (r *Result) TotalTime() time.Duration {
	return r.InitTime + r.SearchTime
}

func (r *Result) String() string {
	return r.Details(false)
}

// Details renders the one-line summary, optionally followed by timings.
func (r *Result) Details(withTimes bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Passes: %d; best: %s; iterations: %d", r.Stats, r.Passes, r.Pass, r.Iterations)
	if withTimes {
		fmt.Fprintf(&b, ". Total time: %d+%d = %d ms",
			r.InitTime.Milliseconds(), r.SearchTime.Milliseconds(), r.TotalTime().Milliseconds())
	}
	return b.String()
}
