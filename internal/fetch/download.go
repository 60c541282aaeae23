package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/agentic-research/gale/api"
	"github.com/agentic-research/gale/internal/cache"
	"github.com/agentic-research/gale/internal/inventory"
	"github.com/agentic-research/gale/internal/model"
	"github.com/agentic-research/gale/internal/source"
	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"
)

// ErrorMode selects whether resolution failures raise or downgrade to
// warnings.
type ErrorMode string

const (
	ErrorsRaise ErrorMode = "raise"
	ErrorsWarn  ErrorMode = "warn"
)

// DefaultWorkers bounds concurrent range fetches within one download.
const DefaultWorkers = 4

// DefaultGetTimeout bounds one ranged GET.
const DefaultGetTimeout = 30 * time.Second

// Downloader runs the full acquisition pipeline for one request:
// template → resolution → inventory → filter → ranged fetch → assembly.
type Downloader struct {
	Registry *model.Registry
	Resolver *source.Resolver
	Loader   *inventory.Loader
	Store    *cache.Store
	Client   *http.Client
	Workers  int
	Timeout  time.Duration
	Errors   ErrorMode
	Verbose  bool
	// Diag receives warnings and the zero-match help block. Defaults to
	// stderr.
	Diag io.Writer
}

// New wires a downloader and its collaborators around one HTTP client
// and cache store.
func New(registry *model.Registry, client *http.Client, store *cache.Store) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Downloader{
		Registry: registry,
		Resolver: source.NewResolver(source.NewProber(client), store),
		Loader:   inventory.NewLoader(client, store),
		Store:    store,
		Client:   client,
		Workers:  DefaultWorkers,
		Timeout:  DefaultGetTimeout,
		Errors:   ErrorsRaise,
	}
}

func (d *Downloader) diag() io.Writer {
	if d.Diag != nil {
		return d.Diag
	}
	return os.Stderr
}

func (d *Downloader) warnf(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(d.diag(), "WARNING: "+format+"\n", args...)
}

// fail honors the error mode: in warn mode the error is printed and
// swallowed.
func (d *Downloader) fail(err error) error {
	if d.Errors == ErrorsWarn {
		d.warnf("%v", err)
		return nil
	}
	return err
}

// Template evaluates the registry for the request and fills in the
// default product.
func (d *Downloader) Template(req *api.Request) (*api.Template, error) {
	tmpl, err := d.Registry.Build(req)
	if err != nil {
		return nil, err
	}
	if req.Product == "" {
		req.Product = tmpl.DefaultProduct()
	}
	return tmpl, nil
}

// Resolve runs source resolution for the request.
func (d *Downloader) Resolve(ctx context.Context, req *api.Request) (*source.Resolution, *api.Template, error) {
	tmpl, err := d.Template(req)
	if err != nil {
		return nil, nil, err
	}
	res, err := d.Resolver.Resolve(ctx, req, tmpl)
	return res, tmpl, err
}

// Inventory returns the (optionally filtered) inventory table.
func (d *Downloader) Inventory(ctx context.Context, req *api.Request, selector string) ([]api.Row, error) {
	res, tmpl, err := d.Resolve(ctx, req)
	if err != nil {
		var unres *api.UnresolvableError
		if !errors.As(err, &unres) {
			return nil, err
		}
		// An unresolvable GRIB may still have a usable local copy for
		// index synthesis; Load reports NoIndex if not.
	}
	rows, err := d.Loader.Load(ctx, req, tmpl, res.Idx, res.Grib)
	if err != nil {
		return nil, err
	}
	return inventory.Filter(rows, selector, tmpl.IdxDialect, d.diag())
}

// LocalPath computes the deterministic cache path for the request. With
// a non-trivial selector the subset name depends on which messages
// match, so the inventory is consulted.
func (d *Downloader) LocalPath(ctx context.Context, req *api.Request, selector string) (string, error) {
	tmpl, err := d.Template(req)
	if err != nil {
		return "", err
	}
	if trivialSelector(selector) {
		return d.Store.ResolveLocal(req, tmpl), nil
	}
	rows, err := d.Inventory(ctx, req, selector)
	if err != nil {
		return "", err
	}
	return cache.SubsetPath(req, tmpl, SelectedMessages(rows)), nil
}

func trivialSelector(selector string) bool {
	return selector == "" || selector == ":"
}

// Download fetches the request's GRIB data — the matching subset when a
// selector is given, the whole file otherwise — and returns the local
// path. An existing cache file short-circuits unless Overwrite is set.
func (d *Downloader) Download(ctx context.Context, req *api.Request, selector string) (string, error) {
	res, tmpl, err := d.Resolve(ctx, req)
	if err != nil {
		var unres *api.UnresolvableError
		if errors.As(err, &unres) {
			return "", d.fail(err)
		}
		return "", err
	}

	full := trivialSelector(selector)
	var rows []api.Row
	if !full {
		rows, err = d.Loader.Load(ctx, req, tmpl, res.Idx, res.Grib)
		if err != nil {
			var noIdx *api.NoIndexError
			if errors.As(err, &noIdx) {
				d.warnf("%v; downloading the whole file instead", err)
				full = true
			} else {
				return "", err
			}
		}
	}

	if full {
		return d.downloadFull(ctx, req, tmpl, res)
	}

	selected, err := inventory.Filter(rows, selector, tmpl.IdxDialect, d.diag())
	if err != nil {
		return "", err
	}
	if len(selected) == 0 {
		// Empty selection is a diagnostic, not an error.
		return "", nil
	}
	return d.downloadSubset(ctx, req, tmpl, res, selected)
}

func (d *Downloader) downloadFull(ctx context.Context, req *api.Request, tmpl *api.Template, res *source.Resolution) (string, error) {
	dest := d.Store.ResolveLocal(req, tmpl)
	if res.GribSource == source.LocalSource && res.Grib == dest {
		return dest, nil
	}
	if res.Grib == "" {
		return "", d.fail(&api.UnresolvableError{Model: req.Model, Init: req.InitTime, Lead: req.Lead})
	}
	if err := d.fetchFull(ctx, res.Grib, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func (d *Downloader) downloadSubset(ctx context.Context, req *api.Request, tmpl *api.Template, res *source.Resolution, selected []api.Row) (string, error) {
	dest := cache.SubsetPath(req, tmpl, SelectedMessages(selected))
	if !req.Overwrite && d.Store.Exists(dest) {
		return dest, nil
	}
	if res.Grib == "" {
		return "", d.fail(&api.UnresolvableError{Model: req.Model, Init: req.InitTime, Lead: req.Lead})
	}

	groups, skipped := Coalesce(selected)
	for _, g := range skipped {
		d.warnf("skipping inverted byte range %d-%d for messages %v (GRIB sub-messages)", g.Start, g.End, g.Messages)
	}
	if len(groups) == 0 {
		return "", fmt.Errorf("no fetchable byte ranges for %s", req)
	}

	if tmpl.RequireClosedRange {
		if err := d.closeOpenRanges(ctx, res.Grib, groups); err != nil {
			return "", err
		}
	}

	parts := make([]string, len(groups))
	for i := range parts {
		parts[i] = fmt.Sprintf("%s.part%03d", dest, i)
	}
	cleanup := func() {
		for _, p := range parts {
			_ = d.Store.Remove(p)
		}
	}

	workers := d.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, g := range groups {
		i, g := i, g
		eg.Go(func() error {
			return d.fetchGroup(gctx, res.Grib, g, parts[i])
		})
	}
	if err := eg.Wait(); err != nil {
		cleanup()
		_ = d.Store.Remove(dest)
		return "", err
	}

	// Assembly: ascending group order, independent of fetch completion
	// order. GRIB2 messages are self-framing so plain concatenation is a
	// valid file.
	if err := d.merge(parts, dest); err != nil {
		cleanup()
		_ = d.Store.Remove(dest)
		return "", err
	}
	cleanup()
	return dest, nil
}

func (d *Downloader) merge(parts []string, dest string) error {
	out, err := d.Store.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	for _, p := range parts {
		in, err := d.Store.Open(p)
		if err != nil {
			_ = out.Close()
			return fmt.Errorf("open part %s: %w", p, err)
		}
		_, err = io.Copy(out, in)
		_ = in.Close()
		if err != nil {
			_ = out.Close()
			return fmt.Errorf("assemble %s: %w", dest, err)
		}
	}
	return out.Close()
}

// closeOpenRanges materializes open-ended groups into closed ones via a
// HEAD for the total length, for mirrors that reject "bytes=N-".
func (d *Downloader) closeOpenRanges(ctx context.Context, grib string, groups []Group) error {
	var total int64 = -1
	for i := range groups {
		if groups[i].End != api.OpenEnd {
			continue
		}
		if total < 0 {
			var err error
			total, err = d.contentLength(ctx, grib)
			if err != nil {
				return err
			}
		}
		groups[i].End = total - 1
	}
	return nil
}

func (d *Downloader) contentLength(ctx context.Context, grib string) (int64, error) {
	if !source.IsURL(grib) {
		n := d.Store.Size(grib)
		if n < 0 {
			return 0, fmt.Errorf("stat %s", grib)
		}
		return n, nil
	}
	head, err := http.NewRequestWithContext(ctx, http.MethodHead, grib, nil)
	if err != nil {
		return 0, err
	}
	resp, err := d.Client.Do(head)
	if err != nil {
		return 0, fmt.Errorf("content length of %s: %w", grib, err)
	}
	_ = resp.Body.Close()
	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("mirror did not advertise a content length for %s", grib)
	}
	return resp.ContentLength, nil
}

func (d *Downloader) fetchGroup(ctx context.Context, grib string, g Group, part string) error {
	out, err := d.Store.Create(part)
	if err != nil {
		return fmt.Errorf("create part file: %w", err)
	}
	if source.IsURL(grib) {
		err = d.httpRange(ctx, grib, g, out)
	} else {
		err = d.localRange(grib, g, out)
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}

func (d *Downloader) httpRange(ctx context.Context, url string, g Group, w io.Writer) error {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultGetTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if g.End == api.OpenEnd {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", g.Start))
	} else {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", g.Start, g.End))
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("range fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusPartialContent {
		return &api.RangeUnsupportedError{URL: url, Status: resp.StatusCode}
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("range fetch %s: %w", url, err)
	}
	return nil
}

// localRange mirrors the remote path for local files: seek and read
// exactly the group's bytes, or to EOF for an open-ended range.
func (d *Downloader) localRange(path string, g Group, w io.Writer) error {
	in, err := d.Store.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = in.Close() }()

	if _, err := in.Seek(g.Start, io.SeekStart); err != nil {
		return fmt.Errorf("seek %s: %w", path, err)
	}
	if g.End == api.OpenEnd {
		_, err = io.Copy(w, in)
	} else {
		_, err = io.CopyN(w, in, g.End-g.Start+1)
	}
	if err != nil && err != io.EOF {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}
