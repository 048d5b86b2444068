package datasets

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	hits, misses, evictions int32
}

func (o *countingObserver) Hit()   { atomic.AddInt32(&o.hits, 1) }
func (o *countingObserver) Miss()  { atomic.AddInt32(&o.misses, 1) }
func (o *countingObserver) Evict() { atomic.AddInt32(&o.evictions, 1) }

func TestCache_Memoizes(t *testing.T) {
	src := newCounting(10)
	c := NewCache[Pair[int, int]](src)
	require.Equal(t, 10, c.Len())

	for i := 0; i < c.Len(); i++ {
		first, err := c.Get(i)
		require.NoError(t, err)
		second, err := c.Get(i)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, int32(1), src.reads[i], "index %d read upstream more than once", i)
	}
	assert.Equal(t, 10, c.Stored())
}

func TestCache_Reset(t *testing.T) {
	src := newCounting(3)
	c := NewCache[Pair[int, int]](src)
	_, err := c.Get(1)
	require.NoError(t, err)
	c.Reset()
	assert.Equal(t, 0, c.Stored())
	_, err = c.Get(1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.reads[1])
}

func TestCache_CapacityEvictsOldest(t *testing.T) {
	src := newCounting(10)
	obs := &countingObserver{}
	c := NewCache[Pair[int, int]](src, WithCapacity(2), WithObserver(obs))

	for _, n := range []int{0, 1, 2} {
		_, err := c.Get(n)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, c.Stored())
	assert.Equal(t, int32(1), obs.evictions)

	// 0 was evicted, 2 is still held
	_, err := c.Get(2)
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.reads[2])
	_, err = c.Get(0)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.reads[0])

	assert.Equal(t, int32(1), obs.hits)
	assert.Equal(t, int32(4), obs.misses)
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	var calls int
	boom := errors.New("boom")
	f := Func[int]{Length: 1, Item: func(n int) (int, error) {
		calls++
		if calls == 1 {
			return 0, boom
		}
		return 7, nil
	}}
	c := NewCache[int](f)
	_, err := c.Get(0)
	assert.Equal(t, boom, err)
	v, err := c.Get(0)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 1, c.Stored())
}

func TestCache_OutOfBounds(t *testing.T) {
	c := NewCache[Pair[int, int]](newCounting(2))
	_, err := c.Get(2)
	assert.True(t, errors.Is(err, ErrOutOfBounds))
	assert.Equal(t, 0, c.Stored())
}

func TestCache_Concurrent(t *testing.T) {
	src := newCounting(64)
	c := NewCache[Pair[int, int]](src, WithCapacity(16))
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				n := (i*7 + g) % src.Len()
				v, err := c.Get(n)
				if assert.NoError(t, err) {
					assert.Equal(t, n, v.Input)
				}
			}
		}(g)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Stored(), 16)
}
