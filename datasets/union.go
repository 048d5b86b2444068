package datasets

import "sort"

// Union concatenates several sources into one, in order.
type Union[T any] struct {
	sources []Source[T]

	// cumulative[k] is the total length of sources[0..k]
	cumulative []int
}

// NewUnion concatenates sources. Their lengths are read once, here.
func NewUnion[T any](sources ...Source[T]) (*Union[T], error) {
	if len(sources) == 0 {
		return nil, misconfigured("union", "no sources")
	}
	u := &Union[T]{
		sources:    sources,
		cumulative: make([]int, len(sources)),
	}
	var total int
	for k, s := range sources {
		total += s.Len()
		u.cumulative[k] = total
	}
	return u, nil
}

func (u *Union[T]) Len() int {
	return u.cumulative[len(u.cumulative)-1]
}

// locate maps a global index to the owning source and the index within it.
func (u *Union[T]) locate(n int) (k, local int) {
	k = sort.Search(len(u.cumulative), func(k int) bool {
		return u.cumulative[k] > n
	})
	if k == 0 {
		return 0, n
	}
	return k, n - u.cumulative[k-1]
}

func (u *Union[T]) Get(n int) (o T, err error) {
	if err = checkBounds(n, u.Len()); err != nil {
		return
	}
	k, local := u.locate(n)
	return u.sources[k].Get(local)
}
