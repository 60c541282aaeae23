package api

// Dialect names an index-file format.
type Dialect string

const (
	// DialectWgrib2 is the colon-separated text emitted by `wgrib2 -s`,
	// used by the U.S. models.
	DialectWgrib2 Dialect = "wgrib2"
	// DialectEccodes is the line-delimited JSON emitted by ECMWF's
	// eccodes utilities.
	DialectEccodes Dialect = "eccodes"
)

// Source is one named mirror URL for a specific request.
type Source struct {
	Name string
	URL  string
}

// Template is the immutable record a model template emits for a request.
// All URLs are fully interpolated; evaluation performs no I/O.
type Template struct {
	Description string
	Details     string
	// Products maps product name → human description. The registry's
	// default product is the first entry of ProductOrder.
	Products     map[string]string
	ProductOrder []string
	// Sources in template-default probe order.
	Sources []Source
	// IdxSuffixes are candidate suffixes for deriving the index URL from
	// the GRIB URL, tried in order.
	IdxSuffixes []string
	IdxDialect  Dialect
	// LocalFilename is the on-disk basename for the full file.
	LocalFilename string
	// RequireClosedRange forces open-ended byte ranges to be materialized
	// into closed ones (via a preceding HEAD) before the range GET. Set by
	// templates whose mirrors reject "bytes=N-".
	RequireClosedRange bool
}

// SourceURL returns the URL for a named source, or "" if the template
// does not declare it.
func (t *Template) SourceURL(name string) string {
	for _, s := range t.Sources {
		if s.Name == name {
			return s.URL
		}
	}
	return ""
}

// HasSource reports whether the template declares the named source.
func (t *Template) HasSource(name string) bool {
	return t.SourceURL(name) != ""
}

// DefaultProduct returns the first product declared by the template.
func (t *Template) DefaultProduct() string {
	if len(t.ProductOrder) == 0 {
		return ""
	}
	return t.ProductOrder[0]
}
