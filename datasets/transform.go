package datasets

// Transform applies independent functions to the input and the target of each pair.
type Transform[X, Y any] struct {
	src             Source[Pair[X, Y]]
	transform       func(X) X
	targetTransform func(Y) Y
}

// NewTransform wraps src. A nil function leaves its component unchanged.
func NewTransform[X, Y any](src Source[Pair[X, Y]], transform func(X) X, targetTransform func(Y) Y) *Transform[X, Y] {
	return &Transform[X, Y]{src: src, transform: transform, targetTransform: targetTransform}
}

func (t *Transform[X, Y]) Len() int {
	return t.src.Len()
}

func (t *Transform[X, Y]) Get(n int) (o Pair[X, Y], err error) {
	if err = checkBounds(n, t.Len()); err != nil {
		return
	}
	o, err = t.src.Get(n)
	if err != nil {
		return
	}
	if t.transform != nil {
		o.Input = t.transform(o.Input)
	}
	if t.targetTransform != nil {
		o.Target = t.targetTransform(o.Target)
	}
	return o, nil
}

// Map converts every item of its upstream, possibly to another type.
type Map[T, U any] struct {
	src Source[T]
	fn  func(T) (U, error)
}

// NewMap wraps src with the conversion fn.
func NewMap[T, U any](src Source[T], fn func(T) (U, error)) *Map[T, U] {
	return &Map[T, U]{src: src, fn: fn}
}

func (m *Map[T, U]) Len() int {
	return m.src.Len()
}

func (m *Map[T, U]) Get(n int) (o U, err error) {
	if err = checkBounds(n, m.Len()); err != nil {
		return
	}
	v, err := m.src.Get(n)
	if err != nil {
		return o, err
	}
	return m.fn(v)
}
