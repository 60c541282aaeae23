package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/agentic-research/gale/api"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the registered model templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		// A placeholder request lets each template render its description;
		// the extras cover models with mandatory fields.
		probe := &api.Request{
			InitTime: time.Now().UTC().Add(-24 * time.Hour).Truncate(time.Hour),
			Lead:     time.Hour,
			Extra:    map[string]string{"member": "c00", "storm_id": "00l"},
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
		for _, name := range registry.Names() {
			probe.Model = name
			tmpl, err := registry.Build(probe)
			if err != nil {
				fmt.Fprintf(w, "%s\t\n", name)
				continue
			}
			fmt.Fprintf(w, "%s\t%s\n", name, tmpl.Description)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
