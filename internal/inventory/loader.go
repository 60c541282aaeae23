package inventory

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/agentic-research/gale/api"
	"github.com/agentic-research/gale/internal/cache"
	"github.com/agentic-research/gale/internal/source"
)

// DefaultGetTimeout bounds one index-file GET.
const DefaultGetTimeout = 30 * time.Second

// Loader turns a resolved index location into a parsed table. Remote
// indexes are written through to the GRIB's cache directory so later
// runs skip the HTTP round-trip; parsed tables are memoized per process.
type Loader struct {
	Client  *http.Client
	Store   *cache.Store
	Timeout time.Duration
	Memo    *Memo
	Verbose bool
}

// NewLoader wires a loader with default timeout and a fresh memo.
func NewLoader(client *http.Client, store *cache.Store) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{Client: client, Store: store, Timeout: DefaultGetTimeout, Memo: NewMemo()}
}

// Load produces the inventory table for a request. idxLocation may be a
// URL or local path; when empty, a local GRIB plus the external wgrib2
// binary can synthesize the index, otherwise the error is NoIndex.
func (l *Loader) Load(ctx context.Context, req *api.Request, tmpl *api.Template, idxLocation, gribLocation string) ([]api.Row, error) {
	if l.Memo != nil {
		if rows, ok := l.Memo.Get(req, idxLocation); ok {
			return rows, nil
		}
	}

	data, err := l.fetchIndex(ctx, req, idxLocation, gribLocation)
	if err != nil {
		return nil, err
	}

	var rows []api.Row
	switch tmpl.IdxDialect {
	case api.DialectEccodes:
		rows, err = ParseEccodes(data)
	default:
		rows, err = ParseWgrib2(data, req.Lead)
	}
	if err != nil {
		return nil, err
	}

	if l.Memo != nil {
		l.Memo.Put(req, idxLocation, rows)
	}
	return rows, nil
}

func (l *Loader) fetchIndex(ctx context.Context, req *api.Request, idxLocation, gribLocation string) ([]byte, error) {
	switch {
	case idxLocation == "":
		// Generation fallback: a local GRIB plus wgrib2 on PATH.
		if gribLocation != "" && !source.IsURL(gribLocation) && l.Store.Exists(gribLocation) {
			if HaveWgrib2() {
				return Synthesize(ctx, gribLocation)
			}
			return nil, &api.NoIndexError{Request: req.String(), Reason: "no index file found and wgrib2 is not on PATH"}
		}
		return nil, &api.NoIndexError{Request: req.String(), Reason: "no index file found on any source"}

	case source.IsURL(idxLocation):
		data, err := l.get(ctx, idxLocation)
		if err != nil {
			return nil, err
		}
		// Write-through so the next run reads it locally.
		local := cache.IdxPath(req, idxLocation)
		if err := l.Store.WriteFile(local, data); err != nil && l.Verbose {
			fmt.Fprintf(os.Stderr, "could not cache index to %s: %v\n", local, err)
		}
		return data, nil

	default:
		data, err := l.Store.ReadFile(idxLocation)
		if err != nil {
			return nil, fmt.Errorf("read index %s: %w", idxLocation, err)
		}
		return data, nil
	}
}

func (l *Loader) get(ctx context.Context, url string) ([]byte, error) {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultGetTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch index %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch index %s: HTTP %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
