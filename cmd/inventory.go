package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/agentic-research/gale/api"
	"github.com/spf13/cobra"
)

var flagFormat string

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Print the request's inventory table",
	Long: `inventory parses the request's index file into a normalized table,
one row per GRIB message, optionally filtered by --subset. The default
output is a human-readable table; --format json emits one JSON object
per line for machine consumption.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := buildRequest()
		if err != nil {
			return err
		}
		rows, err := downloader.Inventory(cmd.Context(), req, flagSubset)
		if err != nil {
			return err
		}

		switch flagFormat {
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			for i := range rows {
				if err := enc.Encode(&rows[i]); err != nil {
					return err
				}
			}
			return nil
		case "", "table":
			printTable(cmd, rows)
			return nil
		default:
			return fmt.Errorf("unknown format %q (want table or json)", flagFormat)
		}
	},
}

func printTable(cmd *cobra.Command, rows []api.Row) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MSG\tSTART\tEND\tSEARCH KEY")
	for i := range rows {
		end := fmt.Sprintf("%d", rows[i].EndByte)
		if rows[i].EndByte == api.OpenEnd {
			end = "eof"
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", rows[i].Message, rows[i].StartByte, end, rows[i].SearchKey)
	}
	_ = w.Flush()
}

func init() {
	inventoryCmd.Flags().StringVar(&flagFormat, "format", "table", "Output format: table or json")
	rootCmd.AddCommand(inventoryCmd)
}
