package feedforward

import (
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// FeedforwardNetwork is the feedforward network
type FeedforwardNetwork struct {
	inputs int
	layers []Layer
}

// New creates an empty network taking inputs features per sample.
func New(inputs int) *FeedforwardNetwork {
	return &FeedforwardNetwork{inputs: inputs}
}

// NewMLP creates the classifier: every hidden size is a linear layer followed
// by tanh, the last linear layer maps to classes log-probabilities.
func NewMLP(rng *rand.Rand, inputs int, hidden []int, classes int) *FeedforwardNetwork {
	f := New(inputs)
	for _, h := range hidden {
		f.NewLinear(h, rng)
		f.NewLayer(&Tanh{})
	}
	f.NewLinear(classes, rng)
	f.NewLayer(&LogSoftmax{})
	return f
}

// Inputs returns the number of features per sample
func (f *FeedforwardNetwork) Inputs() int {
	return f.inputs
}

// Outputs returns the width of the last layer
func (f *FeedforwardNetwork) Outputs() int {
	n := f.inputs
	for _, l := range f.layers {
		n = l.Outputs(n)
	}
	return n
}

// Len returns the number of layers.
func (f *FeedforwardNetwork) Len() int {
	return len(f.layers)
}

// GetLayer gets the n-th layer
func (f *FeedforwardNetwork) GetLayer(n int) Layer {
	return f.layers[n]
}

// NewLayer appends a layer.
func (f *FeedforwardNetwork) NewLayer(l Layer) {
	f.layers = append(f.layers, l)
}

// NewLinear appends a fully connected layer with out outputs.
func (f *FeedforwardNetwork) NewLinear(out int, rng *rand.Rand) {
	f.NewLayer(NewLinear(f.Outputs(), out, rng))
}

// Params lists every trainable parameter in layer order.
func (f *FeedforwardNetwork) Params() (o []*Param) {
	for _, l := range f.layers {
		o = append(o, l.Params()...)
	}
	return
}

func (f *FeedforwardNetwork) check(x *mat.Dense) error {
	if _, c := x.Dims(); c != f.inputs {
		return errors.Errorf("feedforward: input has %d features, network takes %d", c, f.inputs)
	}
	return nil
}

// Infer returns the output for a batch. It does not touch training state and
// may run concurrently with other Infer calls.
func (f *FeedforwardNetwork) Infer(x *mat.Dense) (*mat.Dense, error) {
	if err := f.check(x); err != nil {
		return nil, err
	}
	for _, l := range f.layers {
		x = l.Forward(x, false)
	}
	return x, nil
}

// Predict returns the most likely class of each sample.
func (f *FeedforwardNetwork) Predict(x *mat.Dense) ([]int, error) {
	out, err := f.Infer(x)
	if err != nil {
		return nil, err
	}
	return argmax(out), nil
}

func argmax(out *mat.Dense) []int {
	rows, _ := out.Dims()
	var o = make([]int, rows)
	for i := range o {
		row := out.RawRowView(i)
		for j, v := range row {
			if v > row[o[i]] {
				o[i] = j
			}
		}
	}
	return o
}

// Evaluate returns the summed negative log likelihood of labels and the
// number of correctly predicted samples.
func (f *FeedforwardNetwork) Evaluate(x *mat.Dense, labels []int) (loss float64, correct int, err error) {
	out, err := f.Infer(x)
	if err != nil {
		return 0, 0, err
	}
	if loss, err = nllSum(out, labels); err != nil {
		return 0, 0, err
	}
	for i, p := range argmax(out) {
		if p == labels[i] {
			correct++
		}
	}
	return loss, correct, nil
}

func nllSum(out *mat.Dense, labels []int) (loss float64, err error) {
	rows, cols := out.Dims()
	if rows != len(labels) {
		return 0, errors.Errorf("feedforward: %d outputs for %d labels", rows, len(labels))
	}
	for i, y := range labels {
		if y < 0 || y >= cols {
			return 0, errors.Errorf("feedforward: label %d outside %d classes", y, cols)
		}
		loss -= out.At(i, y)
	}
	return loss, nil
}

// Step runs forward and backward passes on a batch against the mean negative
// log likelihood, leaving gradients in Params. It returns the mean loss.
func (f *FeedforwardNetwork) Step(x *mat.Dense, labels []int) (float64, error) {
	if err := f.check(x); err != nil {
		return 0, err
	}
	out := x
	for _, l := range f.layers {
		out = l.Forward(out, true)
	}
	sum, err := nllSum(out, labels)
	if err != nil {
		return 0, err
	}
	rows, cols := out.Dims()
	grad := mat.NewDense(rows, cols, nil)
	for i, y := range labels {
		grad.Set(i, y, -1/float64(rows))
	}
	for i := len(f.layers) - 1; i >= 0; i-- {
		grad = f.layers[i].Backward(grad)
	}
	return sum / float64(rows), nil
}
