package model

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/agentic-research/gale/api"
	"github.com/fatih/color"
	edlib "github.com/hbollon/go-edlib"
)

// Registry maps model names (and aliases) to template builders. It is
// populated with the built-in set at construction and may be extended
// with user templates from an HCL extension directory.
type Registry struct {
	builders map[string]Builder
	aliases  map[string]string
	// deprecated maps an accepted-but-discouraged alias to the warning
	// printed when it is used.
	deprecated map[string]string
}

// New returns a registry holding the built-in templates.
func New() *Registry {
	r := &Registry{
		builders:   make(map[string]Builder),
		aliases:    map[string]string{"alaska": "hrrrak", "hafsa": "hafs"},
		deprecated: map[string]string{"ecmwf": "ifs"},
	}
	for _, b := range []Builder{
		&hrrr{}, &hrrr{alaska: true},
		&gfs{}, &gefs{},
		&ifs{},
		&nam{}, &rap{}, &rrfs{}, &nbm{},
		&hafs{},
	} {
		r.Register(b)
	}
	return r
}

// Register adds or replaces a builder under its canonical name.
func (r *Registry) Register(b Builder) {
	r.builders[strings.ToLower(b.Name())] = b
}

// Names returns the canonical model names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for n := range r.builders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves aliases and returns the builder for a model name.
// A deprecated alias still resolves but prints a warning. Unknown names
// fail with UnknownModelError carrying a closest-match suggestion.
func (r *Registry) Lookup(name string) (Builder, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if target, ok := r.deprecated[name]; ok {
		color.New(color.FgYellow).Fprintf(os.Stderr,
			"WARNING: model name %q is deprecated, use %q\n", name, target)
		name = target
	}
	if target, ok := r.aliases[name]; ok {
		name = target
	}
	if b, ok := r.builders[name]; ok {
		return b, nil
	}
	suggestion, err := edlib.FuzzySearchThreshold(name, r.Names(), 0.6, edlib.Levenshtein)
	if err != nil {
		suggestion = ""
	}
	return nil, &api.UnknownModelError{Model: name, Suggestion: suggestion}
}

// Build resolves the model and evaluates its template for the request.
func (r *Registry) Build(req *api.Request) (*api.Template, error) {
	b, err := r.Lookup(req.Model)
	if err != nil {
		return nil, err
	}
	tmpl, err := b.Build(req)
	if err != nil {
		return nil, err
	}
	if len(tmpl.Sources) == 0 {
		return nil, fmt.Errorf("template %s emitted no sources", b.Name())
	}
	return tmpl, nil
}
