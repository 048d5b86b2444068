package datasets

import "math/rand"

// Shuffle reads its upstream through a random permutation fixed at construction.
type Shuffle[T any] struct {
	src     Source[T]
	mapping []int
}

// NewShuffle draws the permutation of [0, src.Len()) from rng. Seed rng to
// reproduce a traversal; construct a new Shuffle to reshuffle.
func NewShuffle[T any](src Source[T], rng *rand.Rand) (*Shuffle[T], error) {
	if rng == nil {
		return nil, misconfigured("shuffle", "nil random generator")
	}
	return &Shuffle[T]{src: src, mapping: rng.Perm(src.Len())}, nil
}

func (s *Shuffle[T]) Len() int {
	return len(s.mapping)
}

func (s *Shuffle[T]) Get(n int) (o T, err error) {
	if err = checkBounds(n, len(s.mapping)); err != nil {
		return
	}
	return s.src.Get(s.mapping[n])
}

// Permutation returns a copy of the upstream index read for each position.
func (s *Shuffle[T]) Permutation() []int {
	return append([]int(nil), s.mapping...)
}
