package datasets

// NoStop makes a Subset extend to the end of its upstream, whatever its length at read time.
const NoStop = -1

// Subset exposes the contiguous range [start, stop) of its upstream without copying.
type Subset[T any] struct {
	src   Source[T]
	start int
	stop  int
}

// NewSubset wraps src with the range [start, stop). A stop beyond the
// upstream length is clamped to it; NoStop follows the upstream length.
func NewSubset[T any](src Source[T], start, stop int) (*Subset[T], error) {
	if start < 0 {
		return nil, misconfigured("subset", "negative start %d", start)
	}
	if stop != NoStop {
		if stop < 0 {
			return nil, misconfigured("subset", "negative stop %d", stop)
		}
		if l := src.Len(); stop > l {
			stop = l
		}
	}
	s := &Subset[T]{src: src, start: start, stop: stop}
	if end := s.end(); start > end {
		return nil, misconfigured("subset", "start %d after stop %d", start, end)
	}
	return s, nil
}

func (s *Subset[T]) end() int {
	if s.stop == NoStop {
		return s.src.Len()
	}
	return s.stop
}

// Len is recomputed on every call so that an open-ended subset tracks its upstream.
func (s *Subset[T]) Len() int {
	if l := s.end() - s.start; l > 0 {
		return l
	}
	return 0
}

func (s *Subset[T]) Get(n int) (o T, err error) {
	if err = checkBounds(n, s.Len()); err != nil {
		return
	}
	return s.src.Get(n + s.start)
}
