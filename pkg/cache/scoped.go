package cache

// ScopedKeyer prefixes every key of an inner Keyer, so that several
// tenants or device calibrations can share one backend.
//
//	calibrated := NewScopedKeyer(NewDefaultKeyer(), "calib:2024-06-01:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// the DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) PatternKey(circuitHash string, opts PatternKeyOpts) string {
	return k.prefix + k.inner.PatternKey(circuitHash, opts)
}

func (k *ScopedKeyer) AugmentKey(deviceHash string, opts AugmentKeyOpts) string {
	return k.prefix + k.inner.AugmentKey(deviceHash, opts)
}

func (k *ScopedKeyer) PlacementKey(patternHash, augmentedHash string, opts PlacementKeyOpts) string {
	return k.prefix + k.inner.PlacementKey(patternHash, augmentedHash, opts)
}
