// Package source resolves a request to concrete GRIB and index-file
// locations: it probes each candidate mirror with a HEAD request and
// short-circuits to the local cache when the file is already on disk.
package source

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"
)

// minContentLength guards against mirrors that answer 200 with a tiny
// HTML placeholder for missing files.
const minContentLength = 10

// DefaultHeadTimeout bounds a single existence probe.
const DefaultHeadTimeout = 5 * time.Second

// Prober answers "does this URL (or path) hold a real file" with a
// single HEAD request. No retries; any transport error means no.
type Prober struct {
	Client  *http.Client
	Timeout time.Duration
}

// NewProber returns a prober with the default HEAD timeout.
func NewProber(client *http.Client) *Prober {
	if client == nil {
		client = http.DefaultClient
	}
	return &Prober{Client: client, Timeout: DefaultHeadTimeout}
}

// Exists probes a URL or local path. A URL exists when the status is
// 2xx and any advertised Content-Length clears the placeholder floor.
func (p *Prober) Exists(ctx context.Context, location string) bool {
	if !IsURL(location) {
		info, err := os.Stat(location)
		return err == nil && !info.IsDir() && info.Size() > minContentLength
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultHeadTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, location, nil)
	if err != nil {
		return false
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false
	}
	if resp.ContentLength >= 0 && resp.ContentLength <= minContentLength {
		return false
	}
	return true
}

// IsURL reports whether location is a remote URL rather than a local
// filesystem path.
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
