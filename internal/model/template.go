// Package model is the template registry: for each (model, product) pair
// it turns a request into the fully interpolated mirror URLs, index-file
// suffixes, dialect tag and local filename that drive source resolution.
// Template evaluation is pure — no I/O happens here.
package model

import (
	"fmt"

	"github.com/agentic-research/gale/api"
)

// Builder constructs the template record for one model family.
type Builder interface {
	// Name is the canonical lower-case model identifier.
	Name() string
	// Build evaluates the template for the request. It must be pure:
	// the same request always yields the same output.
	Build(req *api.Request) (*api.Template, error)
}

// GribExtensions are the suffixes recognized as GRIB filename extensions
// when deriving index-file URLs (append vs. replace).
var GribExtensions = []string{".grib2", ".grb2", ".grib", ".grb"}

// resolveProduct picks the request's product, falling back to the first
// declared product, and rejects products the template does not know.
func resolveProduct(req *api.Request, order []string, products map[string]string) (string, error) {
	p := req.Product
	if p == "" {
		if len(order) == 0 {
			return "", &api.InvalidRequestError{Reason: "template declares no products"}
		}
		return order[0], nil
	}
	if _, ok := products[p]; !ok {
		return "", &api.InvalidRequestError{
			Reason: fmt.Sprintf("unknown product %q for model %s (known: %v)", p, req.Model, order),
		}
	}
	return p, nil
}

// requireField fetches a mandatory Extra field or fails with MissingField.
func requireField(req *api.Request, field string) (string, error) {
	v := req.Field(field)
	if v == "" {
		return "", &api.MissingFieldError{Model: req.Model, Field: field}
	}
	return v, nil
}

// dateDir formats the YYYYMMDD directory component of archive layouts.
func dateDir(req *api.Request) string { return req.InitTime.Format("20060102") }

// cycle formats the two-digit cycle hour.
func cycle(req *api.Request) string { return req.InitTime.Format("15") }
