package weight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/qplace/pkg/errors"
)

func TestSum(t *testing.T) {
	s, err := Sum(3, 4)
	require.NoError(t, err)
	assert.Equal(t, Weight(7), s)

	s, err = Sum(Max-1, 1)
	require.NoError(t, err)
	assert.True(t, IsMax(s))

	_, err = Sum(Max, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeOverflow))
}

func TestProduct(t *testing.T) {
	p, err := Product(6, 7)
	require.NoError(t, err)
	assert.Equal(t, Weight(42), p)

	p, err = Product(Max, 0)
	require.NoError(t, err)
	assert.Equal(t, Weight(0), p)

	_, err = Product(1<<32, 1<<32)
	assert.True(t, errors.Is(err, errors.ErrCodeOverflow))
}

func TestTotal(t *testing.T) {
	tot, err := Total(1, 2, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, Weight(10), tot)

	_, err = Total(Max/2, Max/2, 2)
	assert.True(t, errors.Is(err, errors.ErrCodeOverflow))
}

func TestAdd(t *testing.T) {
	acc := Weight(5)
	require.NoError(t, Add(&acc, 10))
	assert.Equal(t, Weight(15), acc)

	acc = Max
	require.Error(t, Add(&acc, 1))
	assert.Equal(t, Max, acc, "failed add leaves accumulator unchanged")
}
