package feedforward

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Param is a trainable tensor flattened to a slice, with its gradient.
type Param struct {
	Name  string
	Value []float64
	Grad  []float64
}

func newParam(name string, n int) *Param {
	return &Param{Name: name, Value: make([]float64, n), Grad: make([]float64, n)}
}

// Layer is one stage of the network working on a batch, one row per sample.
type Layer interface {

	// Kind names the layer type in saved weights and complexity tables
	Kind() string

	// Forward computes the output; keep retains what Backward needs.
	Forward(x *mat.Dense, keep bool) *mat.Dense

	// Backward receives dLoss/dOutput of the last kept Forward, stores the
	// parameter gradients and returns dLoss/dInput.
	Backward(grad *mat.Dense) *mat.Dense

	Params() []*Param

	// Outputs reports the output width for the given input width
	Outputs(inputs int) int
}

// Linear is a fully connected layer, y = x·Wᵀ + b.
type Linear struct {
	In, Out int
	weight  *Param
	bias    *Param
	input   *mat.Dense
}

// NewLinear initializes the weights and biases uniformly in ±1/√in.
func NewLinear(in, out int, rng *rand.Rand) *Linear {
	l := &Linear{In: in, Out: out, weight: newParam("weight", in*out), bias: newParam("bias", out)}
	bound := 1 / math.Sqrt(float64(in))
	for _, p := range []*Param{l.weight, l.bias} {
		for i := range p.Value {
			p.Value[i] = (2*rng.Float64() - 1) * bound
		}
	}
	return l
}

func (l *Linear) Kind() string { return "linear" }

func (l *Linear) Params() []*Param { return []*Param{l.weight, l.bias} }

func (l *Linear) Outputs(int) int { return l.Out }

func (l *Linear) w() *mat.Dense {
	return mat.NewDense(l.Out, l.In, l.weight.Value)
}

func (l *Linear) Forward(x *mat.Dense, keep bool) *mat.Dense {
	rows, _ := x.Dims()
	y := mat.NewDense(rows, l.Out, nil)
	y.Mul(x, l.w().T())
	for i := 0; i < rows; i++ {
		row := y.RawRowView(i)
		for j := range row {
			row[j] += l.bias.Value[j]
		}
	}
	if keep {
		l.input = x
	}
	return y
}

func (l *Linear) Backward(grad *mat.Dense) *mat.Dense {
	rows, _ := grad.Dims()
	mat.NewDense(l.Out, l.In, l.weight.Grad).Mul(grad.T(), l.input)
	for j := range l.bias.Grad {
		l.bias.Grad[j] = 0
	}
	for i := 0; i < rows; i++ {
		for j, v := range grad.RawRowView(i) {
			l.bias.Grad[j] += v
		}
	}
	dx := mat.NewDense(rows, l.In, nil)
	dx.Mul(grad, l.w())
	return dx
}

// Tanh is the elementwise hyperbolic tangent.
type Tanh struct {
	output *mat.Dense
}

func (t *Tanh) Kind() string { return "tanh" }

func (t *Tanh) Params() []*Param { return nil }

func (t *Tanh) Outputs(n int) int { return n }

func (t *Tanh) Forward(x *mat.Dense, keep bool) *mat.Dense {
	var y mat.Dense
	y.Apply(func(_, _ int, v float64) float64 { return math.Tanh(v) }, x)
	if keep {
		t.output = &y
	}
	return &y
}

func (t *Tanh) Backward(grad *mat.Dense) *mat.Dense {
	var dx mat.Dense
	dx.Apply(func(i, j int, g float64) float64 {
		y := t.output.At(i, j)
		return g * (1 - y*y)
	}, grad)
	return &dx
}

// LogSoftmax normalizes each row to log-probabilities.
type LogSoftmax struct {
	output *mat.Dense
}

func (s *LogSoftmax) Kind() string { return "logsoftmax" }

func (s *LogSoftmax) Params() []*Param { return nil }

func (s *LogSoftmax) Outputs(n int) int { return n }

func (s *LogSoftmax) Forward(x *mat.Dense, keep bool) *mat.Dense {
	rows, cols := x.Dims()
	y := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		in, out := x.RawRowView(i), y.RawRowView(i)
		max := math.Inf(-1)
		for _, v := range in {
			if v > max {
				max = v
			}
		}
		var sum float64
		for _, v := range in {
			sum += math.Exp(v - max)
		}
		lse := max + math.Log(sum)
		for j, v := range in {
			out[j] = v - lse
		}
	}
	if keep {
		s.output = y
	}
	return y
}

func (s *LogSoftmax) Backward(grad *mat.Dense) *mat.Dense {
	rows, cols := grad.Dims()
	dx := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		g, y, d := grad.RawRowView(i), s.output.RawRowView(i), dx.RawRowView(i)
		var sum float64
		for _, v := range g {
			sum += v
		}
		for j := range d {
			d[j] = g[j] - math.Exp(y[j])*sum
		}
	}
	return dx
}
