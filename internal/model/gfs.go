package model

import (
	"fmt"
	"time"

	"github.com/agentic-research/gale/api"
)

// gfsLayoutCutover is when NCEP reorganized the GFS archive layout to put
// the atmosphere files under an extra atmos/ directory level.
var gfsLayoutCutover = time.Date(2021, 3, 22, 12, 0, 0, 0, time.UTC)

// gfs is the Global Forecast System.
type gfs struct{}

func (g *gfs) Name() string { return "gfs" }

var gfsProductOrder = []string{"pgrb2.0p25", "pgrb2.0p50", "pgrb2.1p00", "pgrb2b.0p25"}

var gfsProducts = map[string]string{
	"pgrb2.0p25":  "Common fields, 0.25 degree resolution",
	"pgrb2.0p50":  "Common fields, 0.50 degree resolution",
	"pgrb2.1p00":  "Common fields, 1.00 degree resolution",
	"pgrb2b.0p25": "Uncommon fields, 0.25 degree resolution",
}

func (g *gfs) Build(req *api.Request) (*api.Template, error) {
	product, err := resolveProduct(req, gfsProductOrder, gfsProducts)
	if err != nil {
		return nil, err
	}

	basename := fmt.Sprintf("gfs.t%sz.%s.f%03d", cycle(req), product, req.LeadHours())
	var path string
	if req.InitTime.Before(gfsLayoutCutover) {
		path = fmt.Sprintf("gfs.%s/%s/%s", dateDir(req), cycle(req), basename)
	} else {
		path = fmt.Sprintf("gfs.%s/%s/atmos/%s", dateDir(req), cycle(req), basename)
	}

	return &api.Template{
		Description:  "Global Forecast System",
		Details:      "NCEP's global model, four cycles per day",
		Products:     gfsProducts,
		ProductOrder: gfsProductOrder,
		Sources: []api.Source{
			{Name: "aws", URL: "https://noaa-gfs-bdp-pds.s3.amazonaws.com/" + path},
			{Name: "nomads", URL: "https://nomads.ncep.noaa.gov/pub/data/nccf/com/gfs/prod/" + path},
			{Name: "google", URL: "https://storage.googleapis.com/global-forecast-system/" + path},
			{Name: "azure", URL: "https://noaagfs.blob.core.windows.net/gfs/" + path},
		},
		IdxSuffixes:   []string{".idx"},
		IdxDialect:    api.DialectWgrib2,
		LocalFilename: basename + ".grib2",
	}, nil
}

// gefs is the Global Ensemble Forecast System. It requires the "member"
// extra field: "c00" for the control, "p01".."p30" for perturbations,
// "avg"/"spr" for the derived mean and spread.
type gefs struct{}

func (g *gefs) Name() string { return "gefs" }

var gefsProductOrder = []string{"pgrb2ap5", "pgrb2bp5"}

var gefsProducts = map[string]string{
	"pgrb2ap5": "Common fields, 0.50 degree resolution",
	"pgrb2bp5": "Uncommon fields, 0.50 degree resolution",
}

func (g *gefs) Build(req *api.Request) (*api.Template, error) {
	product, err := resolveProduct(req, gefsProductOrder, gefsProducts)
	if err != nil {
		return nil, err
	}
	member, err := requireField(req, "member")
	if err != nil {
		return nil, err
	}

	// pgrb2ap5 files are named pgrb2a, the directory carries the p5.
	fileProduct := product[:len(product)-2]
	basename := fmt.Sprintf("ge%s.t%sz.%s.0p50.f%03d", member, cycle(req), fileProduct, req.LeadHours())
	path := fmt.Sprintf("gefs.%s/%s/atmos/%s/%s", dateDir(req), cycle(req), product, basename)

	return &api.Template{
		Description:  "Global Ensemble Forecast System",
		Details:      "31-member global ensemble, four cycles per day",
		Products:     gefsProducts,
		ProductOrder: gefsProductOrder,
		Sources: []api.Source{
			{Name: "aws", URL: "https://noaa-gefs-pds.s3.amazonaws.com/" + path},
			{Name: "nomads", URL: "https://nomads.ncep.noaa.gov/pub/data/nccf/com/gens/prod/" + path},
		},
		IdxSuffixes:   []string{".idx"},
		IdxDialect:    api.DialectWgrib2,
		LocalFilename: basename + ".grib2",
	}, nil
}
