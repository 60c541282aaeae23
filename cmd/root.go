// Package cmd is the thin CLI shell over the acquisition engine. Flags
// override the TOML defaults file; every subcommand builds one Request
// and hands it to the library packages.
package cmd

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/agentic-research/gale/api"
	"github.com/agentic-research/gale/internal/cache"
	"github.com/agentic-research/gale/internal/config"
	"github.com/agentic-research/gale/internal/fetch"
	"github.com/agentic-research/gale/internal/model"
	"github.com/spf13/cobra"
)

var (
	flagConfig    string
	flagDate      string
	flagValid     string
	flagModel     string
	flagProduct   string
	flagFxx       int
	flagPriority  []string
	flagSubset    string
	flagSaveDir   string
	flagOverwrite bool
	flagVerbose   bool
	flagMember    string
	flagStormID   string
	flagWarn      bool

	cfg        config.Config
	registry   *model.Registry
	downloader *fetch.Downloader
)

var rootCmd = &cobra.Command{
	Use:   "gale",
	Short: "Download NWP GRIB2 files (or subsets of them) from archive mirrors",
	Long: `gale locates numerical-weather-prediction GRIB2 files across a
prioritized set of archive mirrors, reads their index files, and
downloads whole files or regex-selected subsets using HTTP byte ranges.
Results are cached under a deterministic local layout.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return err
		}

		registry = model.New()
		if cfg.TemplateDir != "" {
			if err := registry.LoadExtensions(cfg.TemplateDir); err != nil {
				return err
			}
		}

		downloader = fetch.New(registry, http.DefaultClient, cache.New())
		downloader.Verbose = flagVerbose || cfg.Verbose
		if flagWarn {
			downloader.Errors = fetch.ErrorsWarn
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file path (default: platform config dir)")
	pf.StringVarP(&flagDate, "date", "d", "", "Model initialization time, e.g. '2023-01-01 06'")
	pf.StringVar(&flagValid, "valid", "", "Forecast valid time (alternative to --date)")
	pf.StringVarP(&flagModel, "model", "m", "", "Model name, e.g. hrrr, gfs, ifs")
	pf.StringVarP(&flagProduct, "product", "p", "", "Model product (default: template's first)")
	pf.IntVarP(&flagFxx, "fxx", "f", -1, "Forecast lead time in hours")
	pf.StringSliceVar(&flagPriority, "priority", nil, "Source priority order, e.g. aws,nomads")
	pf.StringVarP(&flagSubset, "subset", "s", "", "Regex selecting GRIB messages by search key")
	pf.StringVar(&flagSaveDir, "save-dir", "", "Local cache root")
	pf.BoolVar(&flagOverwrite, "overwrite", false, "Ignore cached files when resolving")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Print progress and debug information")
	pf.StringVar(&flagMember, "member", "", "Ensemble member, e.g. c00, p01, avg (gefs)")
	pf.StringVar(&flagStormID, "storm-id", "", "Storm identifier, e.g. 09l (hafs)")
	pf.BoolVar(&flagWarn, "warn", false, "Downgrade unresolvable requests to warnings")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// dateLayouts are the accepted --date/--valid formats.
var dateLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15",
	"2006-01-02T15",
	"2006-01-02",
	"2006010215",
	time.RFC3339,
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, candidate := range []string{s, strings.TrimSuffix(s, "Z")} {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, candidate); err == nil {
				return t.UTC(), nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (try '2023-01-01 06')", s)
}

// buildRequest merges flags over config defaults into one Request.
func buildRequest() (*api.Request, error) {
	req := &api.Request{
		Model:     cfg.Model,
		Product:   cfg.Product,
		Lead:      time.Duration(cfg.Lead) * time.Hour,
		Priority:  cfg.Priority,
		SaveDir:   cfg.SaveDir,
		Overwrite: cfg.Overwrite,
		Extra:     map[string]string{},
	}

	if flagModel != "" {
		req.Model = flagModel
	}
	if flagProduct != "" {
		req.Product = flagProduct
	}
	if flagFxx >= 0 {
		req.Lead = time.Duration(flagFxx) * time.Hour
	}
	if len(flagPriority) > 0 {
		req.Priority = flagPriority
	}
	if flagSaveDir != "" {
		req.SaveDir = config.ExpandPath(flagSaveDir)
	}
	if flagOverwrite {
		req.Overwrite = true
	}
	if flagMember != "" {
		req.Extra["member"] = flagMember
	}
	if flagStormID != "" {
		req.Extra["storm_id"] = flagStormID
	}

	if flagDate != "" {
		t, err := parseDate(flagDate)
		if err != nil {
			return nil, err
		}
		req.InitTime = t
	}
	if flagValid != "" {
		t, err := parseDate(flagValid)
		if err != nil {
			return nil, err
		}
		req.ValidTime = t
	}

	if err := req.Normalize(time.Now()); err != nil {
		return nil, err
	}
	return req, nil
}
