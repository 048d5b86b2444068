// Package datasets implements lazily composable indexed datasets.
//
// A Source supports random access by integer index and reports its length.
// Every wrapper in this package consumes a Source and is a Source itself, so
// wrappers nest in any order: a Cache around a Whiten around a Subset of a
// Union of two loaders is as valid as any other chain. A read by index
// descends through the chain, each wrapper adjusting the index, the item,
// or both.
package datasets

// Source is the indexed dataset capability.
type Source[T any] interface {

	// Len reports the number of items, never negative.
	Len() int

	// Get returns the n-th item, 0 <= n < Len().
	Get(n int) (T, error)
}

// Pair is an item made of a model input and its expected target.
type Pair[X, Y any] struct {
	Input  X
	Target Y
}

// Slice is an in-memory Source.
type Slice[T any] []T

// Len returns the number of items in the slice
func (s Slice[T]) Len() int {
	return len(s)
}

// Get returns the n-th item of the slice
func (s Slice[T]) Get(n int) (o T, err error) {
	if err = checkBounds(n, len(s)); err != nil {
		return
	}
	return s[n], nil
}

// Func is a Source computing items on demand.
type Func[T any] struct {
	Length int
	Item   func(n int) (T, error)
}

func (f Func[T]) Len() int {
	return f.Length
}

func (f Func[T]) Get(n int) (o T, err error) {
	if err = checkBounds(n, f.Length); err != nil {
		return
	}
	return f.Item(n)
}

// Collect reads every item of src in order.
func Collect[T any](src Source[T]) ([]T, error) {
	var o = make([]T, src.Len())
	for i := range o {
		v, err := src.Get(i)
		if err != nil {
			return nil, err
		}
		o[i] = v
	}
	return o, nil
}
