package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/agentic-research/gale/api"
	"github.com/agentic-research/gale/internal/bulk"
	"github.com/spf13/cobra"
)

var (
	flagStart   string
	flagEnd     string
	flagStep    int
	flagLeads   []int
	flagWorkers int
)

var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Download many cycles and leads in one batch",
	Long: `bulk expands a request over a range of initialization times
(--start to --end every --step hours) and a list of lead hours, then
downloads the cross product under a bounded worker pool. Individual
failures are reported at the end and never abort the batch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := buildBulkBase()
		if err != nil {
			return err
		}
		dates, err := bulkDates()
		if err != nil {
			return err
		}
		leads := flagLeads
		if len(leads) == 0 {
			leads = []int{0}
		}

		reqs := bulk.Expand(base, dates, leads)
		for _, r := range reqs {
			if err := r.Normalize(time.Now()); err != nil {
				return err
			}
		}

		op := func(ctx context.Context, req *api.Request) (string, error) {
			return downloader.Download(ctx, req, flagSubset)
		}
		results := bulk.Run(cmd.Context(), reqs, flagWorkers, op)

		var failed int
		for _, res := range results {
			if res.Err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "FAILED %s: %v\n", res.Request, res.Err)
				continue
			}
			if res.Path != "" {
				fmt.Fprintln(cmd.OutOrStdout(), res.Path)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d/%d succeeded\n", len(results)-failed, len(results))
		if failed == len(results) && failed > 0 {
			return fmt.Errorf("all %d requests failed", failed)
		}
		return nil
	},
}

// buildBulkBase is buildRequest without the exactly-one-time-field
// validation; Expand supplies the init times.
func buildBulkBase() (*api.Request, error) {
	base := &api.Request{
		Model:     cfg.Model,
		Product:   cfg.Product,
		Priority:  cfg.Priority,
		SaveDir:   cfg.SaveDir,
		Overwrite: cfg.Overwrite,
		Extra:     map[string]string{},
	}
	if flagModel != "" {
		base.Model = flagModel
	}
	if flagProduct != "" {
		base.Product = flagProduct
	}
	if len(flagPriority) > 0 {
		base.Priority = flagPriority
	}
	if flagSaveDir != "" {
		base.SaveDir = flagSaveDir
	}
	if flagOverwrite {
		base.Overwrite = true
	}
	if flagMember != "" {
		base.Extra["member"] = flagMember
	}
	if flagStormID != "" {
		base.Extra["storm_id"] = flagStormID
	}
	return base, nil
}

func bulkDates() ([]time.Time, error) {
	if flagStart == "" {
		return nil, fmt.Errorf("bulk requires --start")
	}
	start, err := parseDate(flagStart)
	if err != nil {
		return nil, err
	}
	end := start
	if flagEnd != "" {
		if end, err = parseDate(flagEnd); err != nil {
			return nil, err
		}
	}
	if end.Before(start) {
		return nil, fmt.Errorf("--end %s is before --start %s", flagEnd, flagStart)
	}
	step := flagStep
	if step <= 0 {
		step = 1
	}

	var dates []time.Time
	for t := start; !t.After(end); t = t.Add(time.Duration(step) * time.Hour) {
		dates = append(dates, t)
	}
	return dates, nil
}

func init() {
	bulkCmd.Flags().StringVar(&flagStart, "start", "", "First initialization time")
	bulkCmd.Flags().StringVar(&flagEnd, "end", "", "Last initialization time (default: --start)")
	bulkCmd.Flags().IntVar(&flagStep, "step", 1, "Hours between initialization times")
	bulkCmd.Flags().IntSliceVar(&flagLeads, "leads", nil, "Lead hours to fetch per cycle (default: 0)")
	bulkCmd.Flags().IntVar(&flagWorkers, "workers", bulk.DefaultWorkers, "Concurrent downloads")
	rootCmd.AddCommand(bulkCmd)
}
