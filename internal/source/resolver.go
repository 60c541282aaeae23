package source

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/agentic-research/gale/api"
	"github.com/agentic-research/gale/internal/cache"
	"github.com/agentic-research/gale/internal/model"
)

// LocalSource is the source tag reported when the cache satisfies a
// request without touching the network.
const LocalSource = "local"

// Resolution is the outcome of resolving one request: where the GRIB
// lives, where its index lives, and which source supplied each. Any of
// the four may be empty when unresolved.
type Resolution struct {
	Grib       string
	GribSource string
	Idx        string
	IdxSource  string
}

// Resolver walks a template's mirrors in priority order.
type Resolver struct {
	Prober *Prober
	Store  *cache.Store
	// Now is injected for the NOMADS retention check; nil means
	// time.Now.
	Now     func() time.Time
	Verbose bool
}

// NewResolver wires a resolver with default collaborators.
func NewResolver(prober *Prober, store *cache.Store) *Resolver {
	return &Resolver{Prober: prober, Store: store}
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Resolve locates the GRIB and its index file independently.
// The GRIB short-circuits to the cache when the local file exists and
// Overwrite is off; the index likewise prefers a local copy. When
// neither GRIB nor index can be found the error is Unresolvable.
func (r *Resolver) Resolve(ctx context.Context, req *api.Request, tmpl *api.Template) (*Resolution, error) {
	res := &Resolution{}
	sources := r.effectiveSources(req, tmpl)

	localPath := r.Store.ResolveLocal(req, tmpl)
	if !req.Overwrite && r.Store.Exists(localPath) {
		res.Grib = localPath
		res.GribSource = LocalSource
	} else {
		for _, src := range sources {
			loc, ok := r.probeSource(ctx, src)
			if ok {
				res.Grib = loc
				res.GribSource = src.Name
				break
			}
		}
	}

	// The index resolves independently: mirrors often carry the GRIB but
	// not its index, or the reverse.
	if idx := r.localIdx(req, tmpl, sources); idx != "" {
		res.Idx = idx
		res.IdxSource = LocalSource
	} else {
	outer:
		for _, src := range sources {
			for _, candidate := range IdxCandidates(src.URL, tmpl.IdxSuffixes) {
				loc, ok := r.probeSource(ctx, api.Source{Name: src.Name, URL: candidate})
				if ok {
					res.Idx = loc
					res.IdxSource = src.Name
					break outer
				}
			}
		}
	}

	if res.Grib == "" && res.Idx == "" {
		return res, &api.UnresolvableError{Model: req.Model, Init: req.InitTime, Lead: req.Lead}
	}
	return res, nil
}

// probeSource probes one source, signing azure URLs first. Returns the
// (possibly signed) location on success.
func (r *Resolver) probeSource(ctx context.Context, src api.Source) (string, bool) {
	loc := src.URL
	if src.Name == "azure" && IsURL(loc) {
		signed, err := SignAzure(ctx, r.Prober.Client, loc)
		if err != nil {
			if r.Verbose {
				fmt.Fprintf(os.Stderr, "azure signing failed: %v\n", err)
			}
			return "", false
		}
		loc = signed
	}
	return loc, r.Prober.Exists(ctx, loc)
}

// effectiveSources orders the template's sources by the user's priority
// list, dropping unknown names, and falls back to template order when no
// priority is given. NOMADS does not retain old cycles, so it is removed
// for requests older than the retention window.
func (r *Resolver) effectiveSources(req *api.Request, tmpl *api.Template) []api.Source {
	var ordered []api.Source
	if len(req.Priority) == 0 {
		ordered = append(ordered, tmpl.Sources...)
	} else {
		for _, name := range req.Priority {
			if u := tmpl.SourceURL(name); u != "" {
				ordered = append(ordered, api.Source{Name: name, URL: u})
			}
		}
	}

	if r.now().Sub(req.InitTime) > api.NomadsRetention {
		kept := ordered[:0]
		for _, s := range ordered {
			if s.Name != "nomads" {
				kept = append(kept, s)
			}
		}
		ordered = kept
	}
	return ordered
}

// localIdx looks for an already-cached index file next to the local
// GRIB path.
func (r *Resolver) localIdx(req *api.Request, tmpl *api.Template, sources []api.Source) string {
	for _, src := range sources {
		for _, candidate := range IdxCandidates(src.URL, tmpl.IdxSuffixes) {
			p := cache.IdxPath(req, candidate)
			if r.Store.Exists(p) {
				return p
			}
		}
	}
	return ""
}

// IdxCandidates derives index-file URLs from a GRIB URL. Each suffix is
// first appended to the full name; when the GRIB URL ends in a known
// GRIB extension, a variant with the extension replaced is tried too
// (e.g. .grb2 → .grb2.inv and .inv).
func IdxCandidates(gribURL string, suffixes []string) []string {
	var ext string
	for _, e := range model.GribExtensions {
		if strings.HasSuffix(gribURL, e) {
			ext = e
			break
		}
	}

	seen := make(map[string]bool)
	var out []string
	add := func(u string) {
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	for _, s := range suffixes {
		add(gribURL + s)
		if ext != "" {
			add(strings.TrimSuffix(gribURL, ext) + s)
		}
	}
	return out
}
