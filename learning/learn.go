package learning

import "math"

import "github.com/neurlang/digits/net/feedforward"

// Adadelta keeps the running averages of squared gradients and squared
// updates for every parameter it has seen.
type Adadelta struct {
	h     HyperParameters
	lr    float64
	state map[*feedforward.Param]*adadeltaState
}

type adadeltaState struct {
	squareAvg []float64
	accDelta  []float64
}

// NewAdadelta creates the optimizer at the initial learning rate of h.
func NewAdadelta(h HyperParameters) *Adadelta {
	return &Adadelta{h: h, lr: h.LR, state: make(map[*feedforward.Param]*adadeltaState)}
}

// SetEpoch moves the learning rate along the StepLR schedule.
func (a *Adadelta) SetEpoch(epoch int) {
	a.lr = a.h.StepLR(epoch)
}

// LR returns the current learning rate
func (a *Adadelta) LR() float64 {
	return a.lr
}

// Step updates every parameter in place from its gradient.
func (a *Adadelta) Step(params []*feedforward.Param) {
	rho, eps := a.h.Rho, a.h.Eps
	for _, p := range params {
		s, ok := a.state[p]
		if !ok {
			s = &adadeltaState{
				squareAvg: make([]float64, len(p.Value)),
				accDelta:  make([]float64, len(p.Value)),
			}
			a.state[p] = s
		}
		for i, g := range p.Grad {
			if a.h.WeightDecay != 0 {
				g += a.h.WeightDecay * p.Value[i]
			}
			s.squareAvg[i] = rho*s.squareAvg[i] + (1-rho)*g*g
			delta := math.Sqrt(s.accDelta[i]+eps) / math.Sqrt(s.squareAvg[i]+eps) * g
			s.accDelta[i] = rho*s.accDelta[i] + (1-rho)*delta*delta
			p.Value[i] -= a.lr * delta
		}
	}
}
