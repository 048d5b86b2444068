package feedforward

import (
	"bytes"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func randomBatch(rng *rand.Rand, rows, cols, classes int) (*mat.Dense, []int) {
	x := mat.NewDense(rows, cols, nil)
	labels := make([]int, rows)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			x.Set(i, j, rng.NormFloat64())
		}
		labels[i] = rng.Intn(classes)
	}
	return x, labels
}

func meanLoss(t *testing.T, f *FeedforwardNetwork, x *mat.Dense, labels []int) float64 {
	loss, _, err := f.Evaluate(x, labels)
	require.NoError(t, err)
	return loss / float64(len(labels))
}

// gradient check against central differences
func TestStep_Gradients(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	f := NewMLP(rng, 5, []int{4, 3}, 3)
	x, labels := randomBatch(rng, 6, 5, 3)

	loss, err := f.Step(x, labels)
	require.NoError(t, err)
	assert.InDelta(t, meanLoss(t, f, x, labels), loss, 1e-12)

	const h = 1e-6
	for _, p := range f.Params() {
		for i := range p.Value {
			orig := p.Value[i]
			p.Value[i] = orig + h
			up := meanLoss(t, f, x, labels)
			p.Value[i] = orig - h
			down := meanLoss(t, f, x, labels)
			p.Value[i] = orig
			assert.InDelta(t, (up-down)/(2*h), p.Grad[i], 1e-6, "%s[%d]", p.Name, i)
		}
	}
}

func TestStep_LearnsSeparableData(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	f := NewMLP(rng, 2, []int{8}, 2)
	x := mat.NewDense(40, 2, nil)
	labels := make([]int, 40)
	for i := 0; i < 40; i++ {
		labels[i] = i % 2
		sign := float64(2*labels[i] - 1)
		x.Set(i, 0, sign*(1+rng.Float64()))
		x.Set(i, 1, rng.NormFloat64())
	}
	before := meanLoss(t, f, x, labels)
	for step := 0; step < 200; step++ {
		_, err := f.Step(x, labels)
		require.NoError(t, err)
		for _, p := range f.Params() {
			for i := range p.Value {
				p.Value[i] -= 0.5 * p.Grad[i]
			}
		}
	}
	after := meanLoss(t, f, x, labels)
	assert.Less(t, after, before)

	_, correct, err := f.Evaluate(x, labels)
	require.NoError(t, err)
	assert.Equal(t, 40, correct)
}

func TestInfer_LogProbabilities(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	f := NewMLP(rng, 7, []int{5}, 4)
	x, _ := randomBatch(rng, 3, 7, 4)
	out, err := f.Infer(x)
	require.NoError(t, err)
	r, c := out.Dims()
	require.Equal(t, 3, r)
	require.Equal(t, 4, c)
	for i := 0; i < r; i++ {
		var sum float64
		for _, v := range out.RawRowView(i) {
			sum += math.Exp(v)
		}
		assert.InDelta(t, 1, sum, 1e-12)
	}

	_, err = f.Infer(mat.NewDense(1, 6, nil))
	assert.Error(t, err)
	_, _, err = f.Evaluate(x, []int{0, 1, 4})
	assert.Error(t, err)
}

func TestCompressedWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	f := NewMLP(rng, 6, []int{5}, 3)
	var buf bytes.Buffer
	require.NoError(t, f.WriteCompressedWeights(&buf))

	g := NewMLP(rand.New(rand.NewSource(5)), 6, []int{5}, 3)
	require.NoError(t, g.ReadCompressedWeights(bytes.NewReader(buf.Bytes())))
	x, _ := randomBatch(rng, 4, 6, 3)
	want, err := f.Infer(x)
	require.NoError(t, err)
	got, err := g.Infer(x)
	require.NoError(t, err)
	assert.True(t, mat.Equal(want, got))

	other := NewMLP(rng, 6, []int{4}, 3)
	assert.Error(t, other.ReadCompressedWeights(bytes.NewReader(buf.Bytes())))
}

func TestComplexity(t *testing.T) {
	f := NewMLP(rand.New(rand.NewSource(1)), 784, []int{128, 128}, 10)
	layers := f.Complexity()
	require.Len(t, layers, 6)
	assert.Equal(t, LayerComplexity{Kind: "linear", Inputs: 784, Outputs: 128, MACs: 100480, Params: 100480}, layers[0])
	assert.Equal(t, LayerComplexity{Kind: "tanh", Inputs: 128, Outputs: 128, MACs: 128}, layers[1])
	assert.Equal(t, LayerComplexity{Kind: "logsoftmax", Inputs: 10, Outputs: 10, MACs: 10}, layers[5])

	macs, params := f.TotalComplexity()
	assert.Equal(t, 118282, params)
	assert.Equal(t, 100480+128+16512+128+1290+10, macs)
}
