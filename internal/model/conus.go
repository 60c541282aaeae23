package model

import (
	"fmt"
	"os"

	"github.com/agentic-research/gale/api"
	"github.com/fatih/color"
)

// nam is the North American Mesoscale model.
type nam struct{}

func (n *nam) Name() string { return "nam" }

var namProductOrder = []string{"conusnest.hiresf", "awphysf", "awip32f"}

var namProducts = map[string]string{
	"conusnest.hiresf": "CONUS nest, 3-km resolution",
	"awphysf":          "12-km CONUS AWIPS grid",
	"awip32f":          "32-km North America grid",
}

func (n *nam) Build(req *api.Request) (*api.Template, error) {
	product, err := resolveProduct(req, namProductOrder, namProducts)
	if err != nil {
		return nil, err
	}

	basename := fmt.Sprintf("nam.t%sz.%s%02d.tm00.grib2", cycle(req), product, req.LeadHours())
	path := fmt.Sprintf("nam.%s/%s", dateDir(req), basename)

	return &api.Template{
		Description:  "North American Mesoscale model",
		Products:     namProducts,
		ProductOrder: namProductOrder,
		Sources: []api.Source{
			{Name: "aws", URL: "https://noaa-nam-pds.s3.amazonaws.com/" + path},
			{Name: "nomads", URL: "https://nomads.ncep.noaa.gov/pub/data/nccf/com/nam/prod/" + path},
		},
		IdxSuffixes:   []string{".idx"},
		IdxDialect:    api.DialectWgrib2,
		LocalFilename: basename,
	}, nil
}

// rap is the Rapid Refresh model. Some RAP index files report GRIB
// sub-messages whose grouped byte ranges invert; the downloader skips
// those groups.
type rap struct{}

func (r *rap) Name() string { return "rap" }

var rapProductOrder = []string{"awp130pgrb", "awp252pgrb", "wrfnat"}

var rapProducts = map[string]string{
	"awp130pgrb": "13-km CONUS pressure levels",
	"awp252pgrb": "20-km CONUS pressure levels",
	"wrfnat":     "Native level fields",
}

func (r *rap) Build(req *api.Request) (*api.Template, error) {
	product, err := resolveProduct(req, rapProductOrder, rapProducts)
	if err != nil {
		return nil, err
	}

	basename := fmt.Sprintf("rap.t%sz.%sf%02d.grib2", cycle(req), product, req.LeadHours())
	path := fmt.Sprintf("rap.%s/%s", dateDir(req), basename)

	return &api.Template{
		Description:  "Rapid Refresh model",
		Products:     rapProducts,
		ProductOrder: rapProductOrder,
		Sources: []api.Source{
			{Name: "aws", URL: "https://noaa-rap-pds.s3.amazonaws.com/" + path},
			{Name: "nomads", URL: "https://nomads.ncep.noaa.gov/pub/data/nccf/com/rap/prod/" + path},
			{Name: "ncei", URL: "https://www.ncei.noaa.gov/data/rapid-refresh/access/rap-130-13km/analysis/" + path},
		},
		IdxSuffixes:   []string{".idx", ".grb2.inv"},
		IdxDialect:    api.DialectWgrib2,
		LocalFilename: basename,
	}, nil
}

// rrfs is the experimental Rapid Refresh Forecast System.
type rrfs struct{}

func (r *rrfs) Name() string { return "rrfs" }

var rrfsProductOrder = []string{"prslev", "natlev"}

var rrfsProducts = map[string]string{
	"prslev": "Pressure level fields, 3-km resolution",
	"natlev": "Native level fields, 3-km resolution",
}

func (r *rrfs) Build(req *api.Request) (*api.Template, error) {
	product, err := resolveProduct(req, rrfsProductOrder, rrfsProducts)
	if err != nil {
		return nil, err
	}

	basename := fmt.Sprintf("rrfs.t%sz.%s.f%03d.conus_3km.grib2", cycle(req), product, req.LeadHours())
	path := fmt.Sprintf("rrfs_a/rrfs_a.%s/%s/%s", dateDir(req), cycle(req), basename)

	return &api.Template{
		Description:  "Rapid Refresh Forecast System (prototype)",
		Products:     rrfsProducts,
		ProductOrder: rrfsProductOrder,
		Sources: []api.Source{
			{Name: "aws", URL: "https://noaa-rrfs-pds.s3.amazonaws.com/" + path},
		},
		IdxSuffixes:   []string{".idx"},
		IdxDialect:    api.DialectWgrib2,
		LocalFilename: basename,
	}, nil
}

// nbm is the National Blend of Models. The core product publishes no
// analysis file, so a zero lead is substituted with the smallest valid
// lead and a warning.
type nbm struct{}

func (n *nbm) Name() string { return "nbm" }

var nbmProductOrder = []string{"co", "ak", "hi", "pr"}

var nbmProducts = map[string]string{
	"co": "CONUS grid",
	"ak": "Alaska grid",
	"hi": "Hawaii grid",
	"pr": "Puerto Rico grid",
}

func (n *nbm) Build(req *api.Request) (*api.Template, error) {
	product, err := resolveProduct(req, nbmProductOrder, nbmProducts)
	if err != nil {
		return nil, err
	}

	lead := req.LeadHours()
	if lead == 0 {
		color.New(color.FgYellow).Fprintln(os.Stderr,
			"WARNING: NBM publishes no analysis file; substituting F01 for F00")
		lead = 1
	}

	basename := fmt.Sprintf("blend.t%sz.core.f%03d.%s.grib2", cycle(req), lead, product)
	path := fmt.Sprintf("blend.%s/%s/core/%s", dateDir(req), cycle(req), basename)

	return &api.Template{
		Description:  "National Blend of Models",
		Products:     nbmProducts,
		ProductOrder: nbmProductOrder,
		Sources: []api.Source{
			{Name: "aws", URL: "https://noaa-nbm-grib2-pds.s3.amazonaws.com/" + path},
			{Name: "nomads", URL: "https://nomads.ncep.noaa.gov/pub/data/nccf/com/blend/prod/" + path},
		},
		IdxSuffixes:   []string{".idx"},
		IdxDialect:    api.DialectWgrib2,
		LocalFilename: basename,
	}, nil
}
