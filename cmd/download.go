package cmd

import (
	"fmt"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download a GRIB2 file or a subset of its messages",
	Long: `download fetches the request's GRIB2 data into the local cache and
prints the resulting path. With --subset only the messages whose search
key matches the regex are fetched, via HTTP byte ranges, and written as
a standalone GRIB2 file under a subset name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := buildRequest()
		if err != nil {
			return err
		}
		path, err := downloader.Download(cmd.Context(), req, flagSubset)
		if err != nil {
			return err
		}
		if path == "" {
			// Nothing matched or warn mode swallowed the failure.
			return nil
		}
		if n := downloader.Store.Size(path); n >= 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", path, humanize.Bytes(uint64(n)))
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}
