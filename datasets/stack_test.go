package datasets

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackRange(t *testing.T) {
	src := Slice[Sample]{
		{Input: []float64{0, 1}, Target: 3},
		{Input: []float64{2, 3}, Target: 4},
		{Input: []float64{4, 5}, Target: 5},
	}
	x, labels, err := StackRange(src, 1, 3, 2)
	require.NoError(t, err)
	r, c := x.Dims()
	require.Equal(t, 2, r)
	require.Equal(t, 2, c)
	assert.Equal(t, []float64{2, 3}, x.RawRowView(0))
	assert.Equal(t, []float64{4, 5}, x.RawRowView(1))
	assert.Equal(t, []int{4, 5}, labels)
}

func TestStackRange_Errors(t *testing.T) {
	ragged := Slice[Sample]{
		{Input: []float64{0, 1}},
		{Input: []float64{2}},
	}
	_, _, err := Stack(ragged, 1)
	assert.Error(t, err)

	_, _, err = StackRange(ragged, 1, 1, 1)
	assert.True(t, errors.Is(err, ErrConfiguration))
	_, _, err = StackRange(ragged, 0, 3, 1)
	assert.True(t, errors.Is(err, ErrConfiguration))

	_, _, err = Stack(Slice[Sample]{{Input: nil}}, 1)
	assert.True(t, errors.Is(err, ErrConfiguration))
}
