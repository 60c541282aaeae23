package model

import (
	"fmt"

	"github.com/agentic-research/gale/api"
)

// hrrr is the High-Resolution Rapid Refresh (CONUS or Alaska domain).
type hrrr struct {
	alaska bool
}

func (h *hrrr) Name() string {
	if h.alaska {
		return "hrrrak"
	}
	return "hrrr"
}

func (h *hrrr) domain() string {
	if h.alaska {
		return "alaska"
	}
	return "conus"
}

var hrrrProductOrder = []string{"sfc", "prs", "nat", "subh"}

var hrrrProducts = map[string]string{
	"sfc":  "2D surface level fields; 3-km resolution",
	"prs":  "3D pressure level fields; 3-km resolution",
	"nat":  "Native level fields; 3-km resolution",
	"subh": "Sub-hourly surface fields; 3-km resolution",
}

func (h *hrrr) Build(req *api.Request) (*api.Template, error) {
	product, err := resolveProduct(req, hrrrProductOrder, hrrrProducts)
	if err != nil {
		return nil, err
	}

	basename := fmt.Sprintf("hrrr.t%sz.wrf%sf%02d.grib2", cycle(req), product, req.LeadHours())
	path := fmt.Sprintf("hrrr.%s/%s/%s", dateDir(req), h.domain(), basename)

	desc := "High-Resolution Rapid Refresh"
	if h.alaska {
		desc += " - Alaska"
	}

	return &api.Template{
		Description:  desc,
		Details:      "NOAA's hourly-updating, 3-km, convection-allowing model",
		Products:     hrrrProducts,
		ProductOrder: hrrrProductOrder,
		Sources: []api.Source{
			{Name: "aws", URL: "https://noaa-hrrr-bdp-pds.s3.amazonaws.com/" + path},
			{Name: "nomads", URL: "https://nomads.ncep.noaa.gov/pub/data/nccf/com/hrrr/prod/" + path},
			{Name: "google", URL: "https://storage.googleapis.com/high-resolution-rapid-refresh/" + path},
			{Name: "azure", URL: "https://noaahrrr.blob.core.windows.net/hrrr/" + path},
			{Name: "pando", URL: fmt.Sprintf("https://pando-rgw01.chpc.utah.edu/hrrr/%s/%s/%s", product, dateDir(req), basename)},
			{Name: "pando2", URL: fmt.Sprintf("https://pando-rgw02.chpc.utah.edu/hrrr/%s/%s/%s", product, dateDir(req), basename)},
		},
		IdxSuffixes:   []string{".idx", ".grib2.idx"},
		IdxDialect:    api.DialectWgrib2,
		LocalFilename: basename,
	}, nil
}
