package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dstvimport/dstv"
	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var configPath string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "run <file.nc>",
		Short: "Import a DSTV NC file and print the normalized profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := dstv.DefaultConfig()
			if configPath != "" {
				loaded, err := dstv.LoadConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("dstvimport: %w", err)
			}

			start := time.Now()
			result, err := dstv.Import(data, cfg)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "profile %s (%s): %s, length %s\n",
				result.Profile.ID, result.Profile.Type, result.Profile.DisplayName,
				humanize.Comma(int64(result.Profile.Dimensions.Length)))
			fmt.Fprintf(cmd.OutOrStdout(), "features: %d, diagnostics: %d, conformity: %.2f\n",
				len(result.Profile.Features), len(result.Diagnostics), result.ConformityScore)
			fmt.Fprintf(cmd.OutOrStdout(), "imported in %s (run %s)\n", humanize.RelTime(start, start.Add(elapsed), "", ""), result.RunID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a dstv.toml configuration file")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the full result as JSON")
	return cmd
}
