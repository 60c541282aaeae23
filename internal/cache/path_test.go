package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/agentic-research/gale/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cacheRequest(t *testing.T) *api.Request {
	t.Helper()
	req := &api.Request{
		Model:    "hrrr",
		InitTime: time.Date(2023, 1, 1, 6, 0, 0, 0, time.UTC),
		SaveDir:  "/data",
	}
	require.NoError(t, req.Normalize(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)))
	return req
}

func TestPathLayout(t *testing.T) {
	req := cacheRequest(t)
	tmpl := &api.Template{LocalFilename: "hrrr.t06z.wrfsfcf00.grib2"}
	assert.Equal(t, "/data/hrrr/20230101/hrrr.t06z.wrfsfcf00.grib2", Path(req, tmpl))
}

func TestPathIsPure(t *testing.T) {
	req := cacheRequest(t)
	tmpl := &api.Template{LocalFilename: "f.grib2"}
	assert.Equal(t, Path(req, tmpl), Path(req, tmpl))
}

func TestSubsetPrefixShape(t *testing.T) {
	req := cacheRequest(t)
	prefix := SubsetPrefix(req, []int{3, 7, 12})

	// subset_ + 2 hex (1 byte) + 2 hex (1 byte) + 4 hex (2 bytes).
	require.True(t, strings.HasPrefix(prefix, "subset_"))
	assert.Len(t, strings.TrimPrefix(prefix, "subset_"), 8)
}

func TestSubsetPrefixDependsOnSelection(t *testing.T) {
	req := cacheRequest(t)
	assert.NotEqual(t, SubsetPrefix(req, []int{1, 2}), SubsetPrefix(req, []int{1, 3}))
}

func TestSubsetPrefixEqualForEquivalentSelections(t *testing.T) {
	// Different regexes selecting the same messages must produce the same
	// name; the prefix depends only on the message list.
	req := cacheRequest(t)
	assert.Equal(t, SubsetPrefix(req, []int{3, 7}), SubsetPrefix(req, []int{3, 7}))
}

func TestSubsetPrefixDependsOnInitAndLead(t *testing.T) {
	a := cacheRequest(t)

	b := cacheRequest(t)
	b.InitTime = b.InitTime.Add(time.Hour)
	assert.NotEqual(t, SubsetPrefix(a, []int{1}), SubsetPrefix(b, []int{1}))

	c := cacheRequest(t)
	c.Lead = 6 * time.Hour
	assert.NotEqual(t, SubsetPrefix(a, []int{1}), SubsetPrefix(c, []int{1}))
}

func TestSubsetPath(t *testing.T) {
	req := cacheRequest(t)
	tmpl := &api.Template{LocalFilename: "hrrr.t06z.wrfsfcf00.grib2"}
	p := SubsetPath(req, tmpl, []int{3})

	assert.True(t, strings.HasPrefix(p, "/data/hrrr/20230101/subset_"))
	assert.True(t, strings.HasSuffix(p, "__hrrr.t06z.wrfsfcf00.grib2"))
}

func TestIdxPath(t *testing.T) {
	req := cacheRequest(t)
	p := IdxPath(req, "https://example.com/hrrr.20230101/conus/hrrr.t06z.wrfsfcf00.grib2.idx")
	assert.Equal(t, "/data/hrrr/20230101/hrrr.t06z.wrfsfcf00.grib2.idx", p)
}

func TestIdxPathStripsQueryString(t *testing.T) {
	req := cacheRequest(t)
	p := IdxPath(req, "https://example.blob.core.windows.net/c/f.grib2.idx?sv=2021&sig=abc")
	assert.Equal(t, "/data/hrrr/20230101/f.grib2.idx", p)
}
