package model

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/agentic-research/gale/api"
	"github.com/hashicorp/hcl/v2/hclsimple"
)

// User templates extend the registry without recompiling. A file in the
// extension directory declares one or more models:
//
//	model "mymodel" {
//	  description  = "My in-house WRF run"
//	  dialect      = "wgrib2"
//	  idx_suffixes = [".idx"]
//	  filename     = "wrf.t{{.HH}}z.f{{.FXX}}.grib2"
//
//	  product "sfc" { description = "Surface fields" }
//
//	  source "archive" {
//	    url = "https://example.com/{{.YYYYMMDD}}/wrf.t{{.HH}}z.f{{.FXX}}.grib2"
//	  }
//	}
//
// URL and filename strings are Go text/template expressions evaluated
// against the request (see urlFields).

type extensionFile struct {
	Models []extensionModel `hcl:"model,block"`
}

type extensionModel struct {
	Name               string             `hcl:"name,label"`
	Description        string             `hcl:"description,optional"`
	Details            string             `hcl:"details,optional"`
	Dialect            string             `hcl:"dialect"`
	IdxSuffixes        []string           `hcl:"idx_suffixes,optional"`
	Filename           string             `hcl:"filename"`
	RequireClosedRange bool               `hcl:"require_closed_range,optional"`
	Products           []extensionProduct `hcl:"product,block"`
	Sources            []extensionSource  `hcl:"source,block"`
}

type extensionProduct struct {
	Name        string `hcl:"name,label"`
	Description string `hcl:"description,optional"`
}

type extensionSource struct {
	Name string `hcl:"name,label"`
	URL  string `hcl:"url"`
}

// urlFields is the template context for extension URL and filename
// expressions.
type urlFields struct {
	Model     string
	Product   string
	YYYYMMDD  string
	HH        string
	FXX       string // zero-padded to 2
	FXX3      string // zero-padded to 3
	LeadHours int
	Init      time.Time
	Extra     map[string]string
}

// hclTemplate is a Builder backed by an extension declaration.
type hclTemplate struct {
	decl extensionModel
}

func (h *hclTemplate) Name() string { return strings.ToLower(h.decl.Name) }

func (h *hclTemplate) Build(req *api.Request) (*api.Template, error) {
	order := make([]string, 0, len(h.decl.Products))
	products := make(map[string]string, len(h.decl.Products))
	for _, p := range h.decl.Products {
		order = append(order, p.Name)
		products[p.Name] = p.Description
	}
	product := req.Product
	if len(order) > 0 {
		var err error
		if product, err = resolveProduct(req, order, products); err != nil {
			return nil, err
		}
	}

	fields := urlFields{
		Model:     req.Model,
		Product:   product,
		YYYYMMDD:  dateDir(req),
		HH:        cycle(req),
		FXX:       fmt.Sprintf("%02d", req.LeadHours()),
		FXX3:      fmt.Sprintf("%03d", req.LeadHours()),
		LeadHours: req.LeadHours(),
		Init:      req.InitTime,
		Extra:     req.Extra,
	}

	sources := make([]api.Source, 0, len(h.decl.Sources))
	for _, s := range h.decl.Sources {
		url, err := renderURL(s.URL, fields)
		if err != nil {
			return nil, fmt.Errorf("template %s source %s: %w", h.Name(), s.Name, err)
		}
		sources = append(sources, api.Source{Name: s.Name, URL: url})
	}

	filename, err := renderURL(h.decl.Filename, fields)
	if err != nil {
		return nil, fmt.Errorf("template %s filename: %w", h.Name(), err)
	}

	dialect := api.Dialect(h.decl.Dialect)
	if dialect != api.DialectWgrib2 && dialect != api.DialectEccodes {
		return nil, fmt.Errorf("template %s: unknown index dialect %q", h.Name(), h.decl.Dialect)
	}

	suffixes := h.decl.IdxSuffixes
	if len(suffixes) == 0 {
		suffixes = []string{".idx"}
	}

	return &api.Template{
		Description:        h.decl.Description,
		Details:            h.decl.Details,
		Products:           products,
		ProductOrder:       order,
		Sources:            sources,
		IdxSuffixes:        suffixes,
		IdxDialect:         dialect,
		LocalFilename:      filename,
		RequireClosedRange: h.decl.RequireClosedRange,
	}, nil
}

func renderURL(expr string, fields urlFields) (string, error) {
	t, err := template.New("").Option("missingkey=error").Parse(expr)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, fields); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// LoadExtensions registers every model declared in the *.hcl files of
// dir. A missing directory is not an error — extensions are optional.
func (r *Registry) LoadExtensions(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read template dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".hcl" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		var file extensionFile
		if err := hclsimple.DecodeFile(path, nil, &file); err != nil {
			return fmt.Errorf("parse template file %s: %w", path, err)
		}
		for _, m := range file.Models {
			r.Register(&hclTemplate{decl: m})
		}
	}
	return nil
}
