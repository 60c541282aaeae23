package inventory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/agentic-research/gale/api"
	"github.com/agentic-research/gale/internal/cache"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loaderFixture(t *testing.T) (*Loader, *cache.Store, *api.Request, *api.Template) {
	t.Helper()
	store := cache.NewWithFS(memfs.New())
	req := &api.Request{
		Model:    "hrrr",
		InitTime: time.Date(2023, 1, 1, 6, 0, 0, 0, time.UTC),
		SaveDir:  "/data",
	}
	require.NoError(t, req.Normalize(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)))
	tmpl := &api.Template{
		IdxDialect:    api.DialectWgrib2,
		LocalFilename: "hrrr.t06z.wrfsfcf00.grib2",
		Sources:       []api.Source{{Name: "aws", URL: "https://example.com/x.grib2"}},
	}
	return NewLoader(http.DefaultClient, store), store, req, tmpl
}

func TestLoadRemoteIndexWritesThrough(t *testing.T) {
	loader, store, req, tmpl := loaderFixture(t)

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(hrrrIndex))
	}))
	defer srv.Close()
	loader.Client = srv.Client()

	idxURL := srv.URL + "/hrrr.t06z.wrfsfcf00.grib2.idx"
	rows, err := loader.Load(context.Background(), req, tmpl, idxURL, "")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
	assert.Equal(t, 1, hits)

	// The fetched index lands next to the GRIB's cache path.
	assert.True(t, store.Exists(cache.IdxPath(req, idxURL)))
}

func TestLoadMemoizesWithinProcess(t *testing.T) {
	loader, _, req, tmpl := loaderFixture(t)

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(hrrrIndex))
	}))
	defer srv.Close()
	loader.Client = srv.Client()

	idxURL := srv.URL + "/a.idx"
	_, err := loader.Load(context.Background(), req, tmpl, idxURL, "")
	require.NoError(t, err)
	_, err = loader.Load(context.Background(), req, tmpl, idxURL, "")
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
}

func TestLoadLocalIndex(t *testing.T) {
	loader, store, req, tmpl := loaderFixture(t)
	require.NoError(t, store.WriteFile("/data/local.idx", []byte(hrrrIndex)))

	rows, err := loader.Load(context.Background(), req, tmpl, "/data/local.idx", "")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestLoadNoIndexAnywhere(t *testing.T) {
	loader, _, req, tmpl := loaderFixture(t)

	_, err := loader.Load(context.Background(), req, tmpl, "", "")
	var noIdx *api.NoIndexError
	require.True(t, errors.As(err, &noIdx))
}

func TestLoadNoIndexWithoutWgrib2(t *testing.T) {
	loader, store, req, tmpl := loaderFixture(t)
	require.NoError(t, store.WriteFile("/data/file.grib2", []byte("GRIB...")))

	old := wgrib2Binary
	wgrib2Binary = "definitely-not-a-real-binary"
	defer func() { wgrib2Binary = old }()

	_, err := loader.Load(context.Background(), req, tmpl, "", "/data/file.grib2")
	var noIdx *api.NoIndexError
	require.True(t, errors.As(err, &noIdx))
	assert.ErrorContains(t, err, "wgrib2")
}

func TestLoadHTTPErrorSurfaces(t *testing.T) {
	loader, _, req, tmpl := loaderFixture(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()
	loader.Client = srv.Client()

	_, err := loader.Load(context.Background(), req, tmpl, srv.URL+"/a.idx", "")
	assert.ErrorContains(t, err, "HTTP 404")
}

func TestLoadEccodesDialectDispatch(t *testing.T) {
	loader, store, req, tmpl := loaderFixture(t)
	tmpl.IdxDialect = api.DialectEccodes
	require.NoError(t, store.WriteFile("/data/local.index", []byte(ifsIndex)))

	rows, err := loader.Load(context.Background(), req, tmpl, "/data/local.index", "")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "10u", rows[0].Param)
}

func TestMemoKeysOnRequestIdentity(t *testing.T) {
	m := NewMemo()
	req := &api.Request{Model: "hrrr", InitTime: time.Date(2023, 1, 1, 6, 0, 0, 0, time.UTC)}
	other := &api.Request{Model: "hrrr", InitTime: time.Date(2023, 1, 1, 7, 0, 0, 0, time.UTC)}

	m.Put(req, "loc", []api.Row{{Message: 1}})

	_, ok := m.Get(other, "loc")
	assert.False(t, ok)
	_, ok = m.Get(req, "other-loc")
	assert.False(t, ok)

	rows, ok := m.Get(req, "loc")
	require.True(t, ok)
	assert.Equal(t, 1, rows[0].Message)
}
