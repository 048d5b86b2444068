package parallel

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Loop represents the number of goroutines to run.
type Loop int

// Until starts l goroutines that keep claiming increasing indices, starting
// from 0, and running body on them. It returns nil once ctx is done, or the
// first error returned by body.
func (l Loop) Until(ctx context.Context, body func(i uint64) error) error {
	if l <= 0 {
		l = 1
	}
	var next uint64
	g, gctx := errgroup.WithContext(ctx)
	for n := 0; n < int(l); n++ {
		g.Go(func() error {
			for gctx.Err() == nil {
				if err := body(atomic.AddUint64(&next, 1) - 1); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
