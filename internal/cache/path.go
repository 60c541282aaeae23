package cache

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/agentic-research/gale/api"
	"golang.org/x/crypto/blake2b"
)

// Dir returns the cache directory for a request:
// <save_dir>/<model>/<YYYYMMDD>.
func Dir(req *api.Request) string {
	return filepath.Join(req.SaveDir, req.Model, req.InitTime.Format("20060102"))
}

// Path returns the full-file cache path for a request. Pure: the same
// request and template always map to the same path.
func Path(req *api.Request, tmpl *api.Template) string {
	return filepath.Join(Dir(req), tmpl.LocalFilename)
}

// SubsetPath returns the cache path for a subset selection. The basename
// is prefixed with three short BLAKE2b digests of the init timestamp,
// the lead hours, and the selected message numbers, so it sorts by date
// then lead and stays unique per selection at a bounded length.
func SubsetPath(req *api.Request, tmpl *api.Template, messages []int) string {
	name := SubsetPrefix(req, messages) + "__" + tmpl.LocalFilename
	return filepath.Join(Dir(req), name)
}

// SubsetPrefix computes the subset_<h1><h2><h3> filename prefix.
// Digest sizes are 1, 1 and 2 bytes; collisions are possible in
// principle but the selection list dominates the entropy in practice.
func SubsetPrefix(req *api.Request, messages []int) string {
	parts := make([]string, len(messages))
	for i, m := range messages {
		parts[i] = strconv.Itoa(m)
	}
	h1 := shortHash(req.InitTime.Format("200601021504"), 1)
	h2 := shortHash(strconv.Itoa(req.LeadHours()), 1)
	h3 := shortHash(strings.Join(parts, "-"), 2)
	return fmt.Sprintf("subset_%s%s%s", h1, h2, h3)
}

func shortHash(s string, size int) string {
	h, err := blake2b.New(size, nil)
	if err != nil {
		// Only reachable with an invalid digest size.
		panic(err)
	}
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

// IdxPath returns the write-through location of a fetched remote index
// file: alongside the GRIB, named after the index URL's basename.
func IdxPath(req *api.Request, idxURL string) string {
	base := idxURL
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	// Strip any signing query string.
	if i := strings.Index(base, "?"); i >= 0 {
		base = base[:i]
	}
	return filepath.Join(Dir(req), base)
}
