// Package weight provides checked arithmetic over edge and gate weights.
//
// Weights are non-negative integers. [Max] is reserved as a +infinity
// sentinel and compares larger than every finite weight. All accumulation in
// qplace goes through [Sum] and [Product], which report an
// ARITHMETIC_OVERFLOW error instead of silently wrapping.
package weight

import (
	"math"
	"math/bits"

	"github.com/matzehuels/qplace/pkg/errors"
)

// Weight is the cost of an edge or of a gate interaction.
type Weight uint64

// Max is the +infinity sentinel.
const Max Weight = math.MaxUint64

// IsMax reports whether w is the +infinity sentinel.
func IsMax(w Weight) bool { return w == Max }

// Sum returns a+b, or an overflow error if the result does not fit.
func Sum(a, b Weight) (Weight, error) {
	s, carry := bits.Add64(uint64(a), uint64(b), 0)
	if carry != 0 {
		return 0, errors.New(errors.ErrCodeOverflow, "sum %d + %d overflows", a, b)
	}
	return Weight(s), nil
}

// Product returns a*b, or an overflow error if the result does not fit.
func Product(a, b Weight) (Weight, error) {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 {
		return 0, errors.New(errors.ErrCodeOverflow, "product %d * %d overflows", a, b)
	}
	return Weight(lo), nil
}

// Total sums ws with checked addition.
func Total(ws ...Weight) (Weight, error) {
	var t Weight
	for _, w := range ws {
		var err error
		if t, err = Sum(t, w); err != nil {
			return 0, err
		}
	}
	return t, nil
}

// Add accumulates w into *acc with checked addition.
func Add(acc *Weight, w Weight) error {
	s, err := Sum(*acc, w)
	if err != nil {
		return err
	}
	*acc = s
	return nil
}
