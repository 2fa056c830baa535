package vetting

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 8

// CheckAll evaluates urls on at most workers goroutines. Verdicts are returned
// in input order. Duplicate URLs are evaluated once.
func (c *Checker) CheckAll(ctx context.Context, urls []string, workers int) []Verdict {
	if workers <= 0 {
		workers = defaultWorkers
	}

	first := make(map[string]int, len(urls))
	var unique []string
	for _, u := range urls {
		if _, ok := first[u]; !ok {
			first[u] = len(unique)
			unique = append(unique, u)
		}
	}

	results := make([]Verdict, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, u := range unique {
		g.Go(func() error {
			results[i] = c.Check(gctx, u)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Verdict, len(urls))
	for i, u := range urls {
		out[i] = results[first[u]]
	}
	return out
}
