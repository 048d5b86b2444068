package trainer

import "github.com/neurlang/digits/datasets"
import "github.com/neurlang/digits/net/feedforward"

import "gonum.org/v1/gonum/mat"

// Evaluation is the outcome of testing a network on a dataset.
type Evaluation struct {
	Loss    float64 // mean negative log likelihood
	Correct int
	Total   int
}

// Accuracy returns the percentage of correct predictions
func (e Evaluation) Accuracy() float64 {
	if e.Total == 0 {
		return 0
	}
	return 100 * float64(e.Correct) / float64(e.Total)
}

// Evaluate tests net on every item of src, batch items at a time.
func Evaluate(net *feedforward.FeedforwardNetwork, src datasets.Source[datasets.Sample], batch, threads int) (e Evaluation, err error) {
	var sum float64
	for start := 0; start < src.Len(); start += batch {
		stop := start + batch
		if stop > src.Len() {
			stop = src.Len()
		}
		x, labels, err := datasets.StackRange(src, start, stop, threads)
		if err != nil {
			return e, err
		}
		loss, correct, err := net.Evaluate(x, labels)
		if err != nil {
			return e, err
		}
		sum += loss
		e.Correct += correct
		e.Total += len(labels)
	}
	if e.Total > 0 {
		e.Loss = sum / float64(e.Total)
	}
	return e, nil
}

// evaluateStacked tests net on an already materialized dataset.
func evaluateStacked(net *feedforward.FeedforwardNetwork, x *mat.Dense, labels []int) (e Evaluation, err error) {
	loss, correct, err := net.Evaluate(x, labels)
	if err != nil {
		return e, err
	}
	e = Evaluation{Correct: correct, Total: len(labels)}
	if e.Total > 0 {
		e.Loss = loss / float64(e.Total)
	}
	return e, nil
}
