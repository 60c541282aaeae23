// Package bulk fans one request shape out over many cycle times and
// lead hours under a bounded worker pool. One failure never aborts the
// batch; results come back in (lead, init time) order regardless of
// completion order.
package bulk

import (
	"context"
	"sort"
	"time"

	"github.com/agentic-research/gale/api"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrent requests in a batch.
const DefaultWorkers = 6

// Result pairs one expanded request with its outcome. Path is whatever
// the operation produced (a local file, a URL) and Err the per-request
// failure, if any.
type Result struct {
	Request *api.Request
	Path    string
	Err     error
}

// Operation executes one request, e.g. Downloader.Download bound to a
// selector.
type Operation func(ctx context.Context, req *api.Request) (string, error)

// Expand builds the dates × leads cross product of requests from a base
// request. The base's InitTime/ValidTime/Lead are ignored.
func Expand(base *api.Request, dates []time.Time, leads []int) []*api.Request {
	reqs := make([]*api.Request, 0, len(dates)*len(leads))
	for _, d := range dates {
		for _, l := range leads {
			r := *base
			r.InitTime = d.UTC()
			r.ValidTime = time.Time{}
			r.Lead = time.Duration(l) * time.Hour
			reqs = append(reqs, &r)
		}
	}
	return reqs
}

// Run executes op for every request under a pool of workers. Each
// result slot is owned by exactly one goroutine, so no locking is
// needed; the final sort makes parallel and serial runs emit identical
// orderings.
func Run(ctx context.Context, reqs []*api.Request, workers int, op Operation) []Result {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	results := make([]Result, len(reqs))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, req := range reqs {
		i, req := i, req
		eg.Go(func() error {
			path, err := op(gctx, req)
			results[i] = Result{Request: req, Path: path, Err: err}
			// Per-request errors are collected, never propagated: a
			// batch runs to completion.
			return nil
		})
	}
	_ = eg.Wait()

	sort.SliceStable(results, func(a, b int) bool {
		ra, rb := results[a].Request, results[b].Request
		if ra.Lead != rb.Lead {
			return ra.Lead < rb.Lead
		}
		return ra.InitTime.Before(rb.InitTime)
	})
	return results
}

// Successes filters a batch down to the requests that worked.
func Successes(results []Result) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			out = append(out, r)
		}
	}
	return out
}
