package cache

import "time"

// Key types, used as labels for cache metrics.
const (
	KeyTypePattern   = "pattern"
	KeyTypeAugment   = "augment"
	KeyTypePlacement = "placement"
)

// PatternKeyOpts holds the options that change a pattern graph.
type PatternKeyOpts struct {
	Method          string   `json:"method"`
	TimeZeroWeight  uint64   `json:"w0"`
	FinalTimeWeight uint64   `json:"wf"`
	PerSlice        []uint64 `json:"per_slice,omitempty"`
}

// AugmentKeyOpts holds the options that change an augmented device graph.
type AugmentKeyOpts struct {
	SwapGateCount                   uint64  `json:"k"`
	MaxPathLength                   uint64  `json:"max_path"`
	MaxWeightRatioToLargest         uint64  `json:"ratio_largest"`
	MaxWeightRatioToSmallestNonzero uint64  `json:"ratio_smallest"`
	AbsoluteMaxWeight               *uint64 `json:"abs_max,omitempty"`
	RemoveHighWeights               bool    `json:"remove_high"`
	ReplaceLowFidelity              bool    `json:"replace_low"`
}

// PlacementKeyOpts holds the options that change a placement result.
type PlacementKeyOpts struct {
	Timeout          time.Duration `json:"timeout"`
	MaxIterations    uint64        `json:"max_iterations"`
	ForcedPass       string        `json:"forced_pass,omitempty"`
	ForcedIterations uint64        `json:"forced_iterations,omitempty"`
}

// Keyer builds cache keys for each pipeline stage.
type Keyer interface {
	// PatternKey identifies the pattern graph of a circuit.
	PatternKey(circuitHash string, opts PatternKeyOpts) string

	// AugmentKey identifies the augmented graph of a device.
	AugmentKey(deviceHash string, opts AugmentKeyOpts) string

	// PlacementKey identifies the placement of a pattern onto an
	// augmented device.
	PlacementKey(patternHash, augmentedHash string, opts PlacementKeyOpts) string
}

// DefaultKeyer builds keys of the form "<type>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard Keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) PatternKey(circuitHash string, opts PatternKeyOpts) string {
	return hashKey(KeyTypePattern, circuitHash, opts)
}

func (DefaultKeyer) AugmentKey(deviceHash string, opts AugmentKeyOpts) string {
	return hashKey(KeyTypeAugment, deviceHash, opts)
}

func (DefaultKeyer) PlacementKey(patternHash, augmentedHash string, opts PlacementKeyOpts) string {
	return hashKey(KeyTypePlacement, patternHash, augmentedHash, opts)
}
