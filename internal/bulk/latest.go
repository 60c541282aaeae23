package bulk

import (
	"context"
	"fmt"
	"time"

	"github.com/agentic-research/gale/api"
)

// CycleFrequency returns how often a model starts a new cycle: hourly
// for the short-range CONUS models, six-hourly for the global ones.
func CycleFrequency(modelName string) time.Duration {
	switch modelName {
	case "gfs", "gefs", "ifs":
		return 6 * time.Hour
	default:
		return time.Hour
	}
}

// Found reports whether a request's GRIB exists, e.g. a Resolve bound
// to discard its resolution.
type Found func(ctx context.Context, req *api.Request) bool

// Latest sweeps recent cycle times newest-first and returns the first
// request whose GRIB a source can serve. lookback bounds the sweep.
func Latest(ctx context.Context, base *api.Request, now time.Time, lookback time.Duration, found Found) (*api.Request, error) {
	freq := CycleFrequency(base.Model)
	cycle := now.UTC().Truncate(freq)
	oldest := now.Add(-lookback)

	for !cycle.Before(oldest) {
		r := *base
		r.InitTime = cycle
		r.ValidTime = time.Time{}
		if err := r.Normalize(now); err == nil && found(ctx, &r) {
			return &r, nil
		}
		cycle = cycle.Add(-freq)
	}
	return nil, fmt.Errorf("no %s cycle found within the last %s", base.Model, lookback)
}

// Wait polls one cycle at a fixed interval until the GRIB appears or
// the timeout elapses. Useful while a fresh cycle is still uploading.
func Wait(ctx context.Context, req *api.Request, interval, timeout time.Duration, found Found) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if found(ctx, req) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out after %s waiting for %s", timeout, req)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
