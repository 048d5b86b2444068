package datasets

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/digits/parallel"
)

// Sample is a flattened input with its class label.
type Sample = Pair[[]float64, int]

// Stack materializes the whole of src into a matrix with one row per item.
func Stack(src Source[Sample], threads int) (*mat.Dense, []int, error) {
	return StackRange(src, 0, src.Len(), threads)
}

// StackRange materializes the items [start, stop) of src, reading them on up
// to threads goroutines. All inputs must have the same length.
func StackRange(src Source[Sample], start, stop, threads int) (*mat.Dense, []int, error) {
	if start < 0 || stop > src.Len() || start >= stop {
		return nil, nil, misconfigured("stack", "range [%d, %d) of %d items", start, stop, src.Len())
	}
	first, err := src.Get(start)
	if err != nil {
		return nil, nil, err
	}
	var (
		rows   = stop - start
		cols   = len(first.Input)
		data   = make([]float64, rows*cols)
		labels = make([]int, rows)
	)
	if cols == 0 {
		return nil, nil, misconfigured("stack", "item %d has an empty input", start)
	}
	err = parallel.ForEach(rows, threads, func(i int) error {
		item, err := src.Get(start + i)
		if err != nil {
			return err
		}
		if len(item.Input) != cols {
			return errors.Errorf("stack: item %d has %d features, want %d", start+i, len(item.Input), cols)
		}
		copy(data[i*cols:(i+1)*cols], item.Input)
		labels[i] = item.Target
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return mat.NewDense(rows, cols, data), labels, nil
}
