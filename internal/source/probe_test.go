package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProberExistsHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/good":
			w.Header().Set("Content-Length", "1000")
		case "/tiny":
			// A placeholder page smaller than a plausible GRIB file.
			w.Header().Set("Content-Length", "5")
		case "/redirected":
			w.WriteHeader(http.StatusFound)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewProber(srv.Client())
	ctx := context.Background()

	assert.True(t, p.Exists(ctx, srv.URL+"/good"))
	assert.False(t, p.Exists(ctx, srv.URL+"/tiny"))
	assert.False(t, p.Exists(ctx, srv.URL+"/missing"))
}

func TestProberExistsLocal(t *testing.T) {
	p := NewProber(nil)
	ctx := context.Background()
	dir := t.TempDir()

	assert.False(t, p.Exists(ctx, filepath.Join(dir, "missing")))
	assert.False(t, p.Exists(ctx, dir), "directories do not count")

	small := filepath.Join(dir, "small")
	require.NoError(t, os.WriteFile(small, []byte("tiny"), 0o644))
	assert.False(t, p.Exists(ctx, small), "placeholder-sized files do not count")

	real := filepath.Join(dir, "real.grib2")
	require.NoError(t, os.WriteFile(real, make([]byte, 100), 0o644))
	assert.True(t, p.Exists(ctx, real))
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/f.grib2"))
	assert.True(t, IsURL("http://example.com/f.grib2"))
	assert.False(t, IsURL("/data/f.grib2"))
	assert.False(t, IsURL("ftp://example.com/f.grib2"))
}
