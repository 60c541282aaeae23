package model

import (
	"fmt"
	"strings"

	"github.com/agentic-research/gale/api"
)

// hafs is the Hurricane Analysis and Forecast System (HFSA configuration).
// It requires the "storm_id" extra field, e.g. "09l" for the ninth
// Atlantic storm of the season.
type hafs struct{}

func (h *hafs) Name() string { return "hafs" }

var hafsProductOrder = []string{"parent.atm", "storm.atm"}

var hafsProducts = map[string]string{
	"parent.atm": "Parent domain atmospheric fields",
	"storm.atm":  "Storm-following nest atmospheric fields",
}

func (h *hafs) Build(req *api.Request) (*api.Template, error) {
	product, err := resolveProduct(req, hafsProductOrder, hafsProducts)
	if err != nil {
		return nil, err
	}
	storm, err := requireField(req, "storm_id")
	if err != nil {
		return nil, err
	}
	storm = strings.ToLower(storm)

	stamp := req.InitTime.Format("2006010215")
	basename := fmt.Sprintf("%s.%s.hfsa.%s.f%03d.grb2", storm, stamp, product, req.LeadHours())
	path := fmt.Sprintf("hfsa/%s/%s/%s", dateDir(req), cycle(req), basename)

	return &api.Template{
		Description:  "Hurricane Analysis and Forecast System",
		Products:     hafsProducts,
		ProductOrder: hafsProductOrder,
		Sources: []api.Source{
			{Name: "aws", URL: "https://noaa-nws-hafs-pds.s3.amazonaws.com/" + path},
			{Name: "nomads", URL: "https://nomads.ncep.noaa.gov/pub/data/nccf/com/hafs/prod/" + path},
		},
		IdxSuffixes:   []string{".idx", ".grb2.idx"},
		IdxDialect:    api.DialectWgrib2,
		LocalFilename: basename,
	}, nil
}
