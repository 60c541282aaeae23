// Package api holds the shared types of the gale acquisition engine:
// the request that drives every operation, the template record emitted by
// the model registry, the parsed inventory row, and the error kinds that
// cross package boundaries.
package api

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// NomadsRetention is how long the NOMADS mirror keeps a model cycle.
// Requests older than this have "nomads" dropped from their priority list.
const NomadsRetention = 14 * 24 * time.Hour

// Request fully determines one acquisition operation.
// Exactly one of InitTime or ValidTime must be set before Normalize;
// afterwards both are populated (ValidTime = InitTime + Lead).
type Request struct {
	// Model is the case-insensitive model identifier (e.g. "hrrr", "gfs").
	Model string
	// Product is the model-specific sub-stream. Empty means the template's
	// first declared product.
	Product string
	// InitTime is the model cycle (initialization) time, UTC.
	InitTime time.Time
	// ValidTime is InitTime + Lead, UTC.
	ValidTime time.Time
	// Lead is the forecast lead time. Whole hours only.
	Lead time.Duration
	// Priority is the ordered list of source names to probe. Names not
	// declared by the template are silently dropped.
	Priority []string
	// SaveDir is the root of the local cache. Home-relative and $VAR
	// expansions are resolved by the config layer before it gets here.
	SaveDir string
	// Overwrite bypasses the local cache during source resolution.
	Overwrite bool
	// Extra carries model-specific fields such as "member" (ensembles),
	// "storm_id" (hurricane models) or "nest". Templates consume what
	// they need and fail with MissingFieldError otherwise.
	Extra map[string]string
}

// Normalize validates the request and derives the missing one of
// InitTime/ValidTime. now is injected so the
// boundary check is testable.
func (r *Request) Normalize(now time.Time) error {
	r.Model = strings.ToLower(strings.TrimSpace(r.Model))
	if r.Model == "" {
		return &InvalidRequestError{Reason: "model is required"}
	}
	if r.Lead < 0 {
		return &InvalidRequestError{Reason: fmt.Sprintf("negative lead time %s", r.Lead)}
	}
	if r.Lead%time.Hour != 0 {
		return &InvalidRequestError{Reason: fmt.Sprintf("lead time %s is not a whole number of hours", r.Lead)}
	}

	switch {
	case r.InitTime.IsZero() && r.ValidTime.IsZero():
		return &InvalidRequestError{Reason: "one of init time or valid time is required"}
	case !r.InitTime.IsZero() && !r.ValidTime.IsZero():
		if !r.ValidTime.Equal(r.InitTime.Add(r.Lead)) {
			return &InvalidRequestError{Reason: "init time and valid time both set but inconsistent with lead"}
		}
	case r.InitTime.IsZero():
		r.InitTime = r.ValidTime.Add(-r.Lead)
	default:
		r.ValidTime = r.InitTime.Add(r.Lead)
	}

	r.InitTime = r.InitTime.UTC()
	r.ValidTime = r.ValidTime.UTC()

	if !r.InitTime.Before(now) {
		return &InvalidRequestError{
			Reason: fmt.Sprintf("init time %s is not in the past", r.InitTime.Format(time.RFC3339)),
		}
	}
	return nil
}

// LeadHours returns the lead time as whole hours.
func (r *Request) LeadHours() int {
	return int(r.Lead / time.Hour)
}

// Field returns an Extra field value, or "" when unset.
func (r *Request) Field(name string) string {
	if r.Extra == nil {
		return ""
	}
	return r.Extra[name]
}

// Identity is a canonical string for the request's content, used as the
// memoization key for parsed inventories and in error messages. Extras
// are emitted in sorted key order so identical requests always produce
// identical strings.
func (r *Request) Identity() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|%s|%d", r.Model, r.Product, r.InitTime.Format("200601021504"), r.LeadHours())
	if len(r.Extra) > 0 {
		keys := make([]string, 0, len(r.Extra))
		for k := range r.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "|%s=%s", k, r.Extra[k])
		}
	}
	return b.String()
}

// String identifies the request in user-visible messages.
func (r *Request) String() string {
	return fmt.Sprintf("%s %s F%02d", strings.ToUpper(r.Model), r.InitTime.Format("2006-01-02 15Z"), r.LeadHours())
}
