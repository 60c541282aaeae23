package api

import (
	"fmt"
	"time"
)

// MissingFieldError means a template could not satisfy the request
// because a required model-specific field was absent.
type MissingFieldError struct {
	Model string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("model %s requires field %q (set it with --%s or Request.Extra)", e.Model, e.Field, e.Field)
}

// InvalidRequestError means the request is internally inconsistent:
// future init time, unknown model or product, negative lead.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return "invalid request: " + e.Reason
}

// UnknownModelError means the registry has no template for the model.
// Suggestion, when non-empty, is the closest known name.
type UnknownModelError struct {
	Model      string
	Suggestion string
}

func (e *UnknownModelError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown model %q (did you mean %q?)", e.Model, e.Suggestion)
	}
	return fmt.Sprintf("unknown model %q", e.Model)
}

// UnresolvableError means no source has the requested GRIB file.
type UnresolvableError struct {
	Model string
	Init  time.Time
	Lead  time.Duration
}

func (e *UnresolvableError) Error() string {
	return fmt.Sprintf("no source found for %s %s F%02d",
		e.Model, e.Init.Format("2006-01-02 15Z"), int(e.Lead/time.Hour))
}

// NoIndexError means no index file could be located and the local
// synthesis fallback was unavailable.
type NoIndexError struct {
	Request string
	Reason  string
}

func (e *NoIndexError) Error() string {
	return fmt.Sprintf("no index file for %s: %s", e.Request, e.Reason)
}

// BadDialectError means the index file did not parse as its declared
// dialect, or violated an inventory invariant such as unique message
// numbers.
type BadDialectError struct {
	Dialect Dialect
	Line    int
	Err     error
}

func (e *BadDialectError) Error() string {
	return fmt.Sprintf("bad %s index at line %d: %v", e.Dialect, e.Line, e.Err)
}

func (e *BadDialectError) Unwrap() error { return e.Err }

// RangeUnsupportedError means a mirror did not honor an HTTP byte-range
// request with 206 Partial Content.
type RangeUnsupportedError struct {
	URL    string
	Status int
}

func (e *RangeUnsupportedError) Error() string {
	return fmt.Sprintf("mirror rejected byte-range request (HTTP %d): %s", e.Status, e.URL)
}
