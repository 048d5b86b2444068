// package parallel contains a bounded parallel ForEach() and the parallel Loop.Until().
package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEach executes a for loop with a limited number of concurrent goroutines.
// Each goroutine processes one integer, from 0 to length. The first error
// returned by body is returned once every started iteration finished;
// iterations not yet started when it occurred are skipped.
func ForEach(length, limit int, body func(i int) error) error {
	if limit <= 0 {
		limit = 1 // Default to 1 if limit is zero or negative
	}
	if length <= 0 {
		return nil // No iterations to perform
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(limit) // Go blocks while limit goroutines are running

	for i := 0; i < length; i++ {
		if ctx.Err() != nil {
			break
		}
		i := i // Capture loop variable
		g.Go(func() error {
			return body(i)
		})
	}

	return g.Wait()
}
