package datasets

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func randomSamples(rng *rand.Rand, items, features int, mean, scale float64) Slice[Sample] {
	var o = make(Slice[Sample], items)
	for i := range o {
		x := make([]float64, features)
		for j := range x {
			x[j] = mean + scale*rng.NormFloat64()
		}
		o[i] = Sample{Input: x, Target: i % 10}
	}
	return o
}

type countingSamples struct {
	Slice[Sample]
	reads int
}

func (c *countingSamples) Get(n int) (Sample, error) {
	c.reads++
	return c.Slice.Get(n)
}

func TestWhiten_Statistics(t *testing.T) {
	src := randomSamples(rand.New(rand.NewSource(3)), 50, 17, 4, 2.5)

	var flat []float64
	for _, s := range src {
		flat = append(flat, s.Input...)
	}
	m, s := stat.MeanStdDev(flat, nil)

	w, err := NewWhiten[int](src)
	require.NoError(t, err)
	assert.InDelta(t, m, w.Mean(), 1e-9)
	assert.InDelta(t, s, w.Std(), 1e-9)

	for i := 0; i < w.Len(); i++ {
		got, err := w.Get(i)
		require.NoError(t, err)
		require.Len(t, got.Input, 17)
		assert.Equal(t, src[i].Target, got.Target)
		for j, v := range got.Input {
			assert.InDelta(t, (src[i].Input[j]-m)/s, v, 1e-9)
		}
	}

	// whitened inputs have zero mean and unit deviation
	var white []float64
	for i := 0; i < w.Len(); i++ {
		got, _ := w.Get(i)
		white = append(white, got.Input...)
	}
	wm, ws := stat.MeanStdDev(white, nil)
	assert.InDelta(t, 0, wm, 1e-9)
	assert.InDelta(t, 1, ws, 1e-9)
}

func TestWhiten_KnownValues(t *testing.T) {
	// elements 1..4, mean 2.5, Bessel-corrected variance 5/3
	src := Slice[Sample]{
		{Input: []float64{1, 2}, Target: 0},
		{Input: []float64{3}, Target: 1},
		{Input: []float64{4}, Target: 2},
	}
	w, err := NewWhiten[int](src)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, w.Mean(), 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/3.0), w.Std(), 1e-12)

	got, err := w.Get(1)
	require.NoError(t, err)
	assert.InDelta(t, 0.5/math.Sqrt(5.0/3.0), got.Input[0], 1e-12)
	assert.Equal(t, 1, got.Target)
}

func TestWhiten_StatisticsComputedOnce(t *testing.T) {
	src := &countingSamples{Slice: randomSamples(rand.New(rand.NewSource(5)), 20, 3, 0, 1)}
	w, err := NewWhiten[int](src)
	require.NoError(t, err)
	require.Equal(t, 20, src.reads)

	mean, std := w.Mean(), w.Std()
	for i := 0; i < w.Len(); i++ {
		_, err := w.Get(i)
		require.NoError(t, err)
	}
	assert.Equal(t, 40, src.reads)
	assert.Equal(t, mean, w.Mean())
	assert.Equal(t, std, w.Std())
}

func TestWhiten_DoesNotMutateUpstream(t *testing.T) {
	src := Slice[Sample]{{Input: []float64{1, 5}}, {Input: []float64{3, 7}}}
	w, err := NewWhiten[int](src)
	require.NoError(t, err)
	_, err = w.Get(0)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 5}, src[0].Input)
}

func TestWhiten_ZeroDeviation(t *testing.T) {
	for name, src := range map[string]Slice[Sample]{
		"constant": {{Input: []float64{2, 2}}, {Input: []float64{2}}},
		"single":   {{Input: []float64{2}}},
		"empty":    {},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewWhiten[int](src)
			assert.True(t, errors.Is(err, ErrConfiguration))
			assert.True(t, errors.Is(err, ErrZeroDeviation))
		})
	}
}

func TestWhiten_UpstreamError(t *testing.T) {
	boom := errors.New("boom")
	src := Func[Sample]{Length: 2, Item: func(n int) (Sample, error) {
		return Sample{}, boom
	}}
	_, err := NewWhiten[int](src)
	assert.True(t, errors.Is(err, boom))
}
