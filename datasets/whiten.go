package datasets

import (
	"math"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

// Whiten normalizes the inputs of its upstream by one scalar mean and standard
// deviation, measured once over every input element at construction.
type Whiten[Y any] struct {
	src  Source[Pair[[]float64, Y]]
	mean float64
	std  float64
}

// moments accumulates count, mean and the sum of squared deviations.
type moments struct {
	n    float64
	mean float64
	m2   float64
}

// merge combines two partial moments (Chan, Golub, LeVeque).
func (a moments) merge(b moments) moments {
	if a.n == 0 {
		return b
	}
	if b.n == 0 {
		return a
	}
	n := a.n + b.n
	delta := b.mean - a.mean
	return moments{
		n:    n,
		mean: a.mean + delta*b.n/n,
		m2:   a.m2 + b.m2 + delta*delta*a.n*b.n/n,
	}
}

func momentsOf(x []float64) moments {
	switch len(x) {
	case 0:
		return moments{}
	case 1:
		return moments{n: 1, mean: x[0]}
	}
	mean, variance := stat.MeanVariance(x, nil)
	n := float64(len(x))
	return moments{n: n, mean: mean, m2: variance * (n - 1)}
}

// NewWhiten reads every upstream item once and fixes the statistics. The
// upstream is streamed, only the running moments are kept. The standard
// deviation is Bessel-corrected. Statistics without spread are refused with
// ErrZeroDeviation.
func NewWhiten[Y any](src Source[Pair[[]float64, Y]]) (*Whiten[Y], error) {
	var acc moments
	for i := 0; i < src.Len(); i++ {
		item, err := src.Get(i)
		if err != nil {
			return nil, errors.Wrapf(err, "whiten: reading item %d", i)
		}
		acc = acc.merge(momentsOf(item.Input))
	}
	if acc.n < 2 {
		return nil, &ConfigurationError{Wrapper: "whiten", Reason: "fewer than two input elements", Err: ErrZeroDeviation}
	}
	std := math.Sqrt(acc.m2 / (acc.n - 1))
	if std == 0 || math.IsNaN(std) || math.IsInf(std, 0) {
		return nil, &ConfigurationError{Wrapper: "whiten", Reason: "inputs have no spread", Err: ErrZeroDeviation}
	}
	log.Debug().
		Int("items", src.Len()).
		Float64("mean", acc.mean).
		Float64("std", std).
		Msg("whitening statistics")
	return &Whiten[Y]{src: src, mean: acc.mean, std: std}, nil
}

// Mean returns the mean subtracted from every input element
func (w *Whiten[Y]) Mean() float64 {
	return w.mean
}

// Std returns the deviation every input element is divided by
func (w *Whiten[Y]) Std() float64 {
	return w.std
}

func (w *Whiten[Y]) Len() int {
	return w.src.Len()
}

// Get returns the n-th item with a newly allocated, whitened input.
func (w *Whiten[Y]) Get(n int) (o Pair[[]float64, Y], err error) {
	if err = checkBounds(n, w.Len()); err != nil {
		return
	}
	item, err := w.src.Get(n)
	if err != nil {
		return o, err
	}
	var x = make([]float64, len(item.Input))
	for i, v := range item.Input {
		x[i] = (v - w.mean) / w.std
	}
	return Pair[[]float64, Y]{Input: x, Target: item.Target}, nil
}
