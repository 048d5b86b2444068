// Package learning implements the optimization stage of the classifier:
// the Adadelta update rule and a stepped learning-rate schedule.
package learning

import "math"

// HyperParameters configures the optimizer and its schedule.
type HyperParameters struct {
	LR    float64 // initial learning rate
	Gamma float64 // multiplicative decay applied every StepSize epochs

	StepSize int // epochs between decays

	Rho float64 // running average coefficient of squared values
	Eps float64 // added under the square roots

	WeightDecay float64
}

// Defaults returns the settings of the digit experiments.
func Defaults() HyperParameters {
	return HyperParameters{
		LR:       1.0,
		Gamma:    0.7,
		StepSize: 1,
		Rho:      0.9,
		Eps:      1e-6,
	}
}

// StepLR returns the learning rate for the zero based epoch.
func (h HyperParameters) StepLR(epoch int) float64 {
	step := h.StepSize
	if step <= 0 {
		step = 1
	}
	return h.LR * math.Pow(h.Gamma, float64(epoch/step))
}
