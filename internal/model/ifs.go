package model

import (
	"fmt"
	"time"

	"github.com/agentic-research/gale/api"
)

// ifsResolutionCutover is when ECMWF open data moved from the 0.4-degree
// beta grid to 0.25 degrees, changing the directory layout with it.
var ifsResolutionCutover = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

// ifs is ECMWF's Integrated Forecasting System open data.
type ifs struct{}

func (i *ifs) Name() string { return "ifs" }

var ifsProductOrder = []string{"oper", "enfo", "wave", "waef"}

var ifsProducts = map[string]string{
	"oper": "High-resolution forecast, atmospheric fields",
	"enfo": "Ensemble forecast, atmospheric fields",
	"wave": "Wave forecast",
	"waef": "Ensemble wave forecast",
}

func (i *ifs) Build(req *api.Request) (*api.Template, error) {
	product, err := resolveProduct(req, ifsProductOrder, ifsProducts)
	if err != nil {
		return nil, err
	}

	stamp := req.InitTime.Format("2006010215")
	basename := fmt.Sprintf("%s0000-%dh-%s-fc.grib2", stamp, req.LeadHours(), product)

	var path string
	if req.InitTime.Before(ifsResolutionCutover) {
		path = fmt.Sprintf("%s/%sz/0p4-beta/%s/%s", dateDir(req), cycle(req), product, basename)
	} else {
		path = fmt.Sprintf("%s/%sz/ifs/0p25/%s/%s", dateDir(req), cycle(req), product, basename)
	}

	return &api.Template{
		Description:  "ECMWF Integrated Forecasting System open data",
		Details:      "ECMWF's open-data subset of the IFS, eccodes-style index files",
		Products:     ifsProducts,
		ProductOrder: ifsProductOrder,
		Sources: []api.Source{
			{Name: "ecmwf", URL: "https://data.ecmwf.int/forecasts/" + path},
			{Name: "aws", URL: "https://ecmwf-forecasts.s3.eu-central-1.amazonaws.com/" + path},
			{Name: "azure", URL: "https://ai4edataeuwest.blob.core.windows.net/ecmwf/" + path},
		},
		IdxSuffixes:   []string{".index"},
		IdxDialect:    api.DialectEccodes,
		LocalFilename: basename,
	}, nil
}
