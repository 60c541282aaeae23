package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Resolve a request to its GRIB source without downloading",
	Long: `data runs source resolution for one request and prints where the
GRIB file was found (mirror name and URL, or a local cache path) along
with the local path a download would produce.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := buildRequest()
		if err != nil {
			return err
		}
		res, _, err := downloader.Resolve(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", req)
		fmt.Fprintf(cmd.OutOrStdout(), "  grib:  %s (%s)\n", res.Grib, res.GribSource)
		local, err := downloader.LocalPath(cmd.Context(), req, flagSubset)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  local: %s\n", local)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dataCmd)
}
