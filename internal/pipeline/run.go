package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Run scrapes every target across the zip list, fanning out up to
// Concurrency sites at a time. Individual site failures are logged and
// skipped; the run fails only when there is nothing to scrape or every
// site produced nothing.
func (p *Pipeline) Run(ctx context.Context, targets []Target, zips []string) ([]*SiteResult, error) {
	if len(targets) == 0 {
		return nil, &RunError{Message: "no sites to scrape"}
	}
	if len(zips) == 0 {
		return nil, &RunError{Message: "no zip codes to search"}
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)

	var mu sync.Mutex
	var results []*SiteResult

	for _, target := range targets {
		target := target
		g.Go(func() error {
			result, err := p.RunSite(gCtx, target, zips)
			if err != nil {
				fmt.Printf("Warning: %s failed: %v\n", target.Brand, err)
			}
			if result != nil {
				mu.Lock()
				results = append(results, result)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	total := 0
	for _, r := range results {
		total += len(r.Dealers)
	}
	if total == 0 {
		return results, &RunError{Message: "no dealers found on any site"}
	}
	return results, nil
}
