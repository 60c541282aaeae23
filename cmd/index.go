package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Show where the request's index file was found",
	Long: `index resolves the request and prints the index file location and
dialect. The index may come from a different mirror than the GRIB file;
a blank location means no mirror serves one and the inventory would be
synthesized with wgrib2 when a local copy exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := buildRequest()
		if err != nil {
			return err
		}
		res, tmpl, err := downloader.Resolve(cmd.Context(), req)
		if err != nil {
			return err
		}
		if res.Idx == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "no index file found for %s\n", req)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "index:   %s (%s)\n", res.Idx, res.IdxSource)
		fmt.Fprintf(cmd.OutOrStdout(), "dialect: %s\n", tmpl.IdxDialect)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
