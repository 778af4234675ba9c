package main

import (
	"fmt"
	"os"

	"github.com/dstvimport/dstv"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var configPath string
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <file.nc>",
		Short: "Run the pipeline and report diagnostics without printing the profile",
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
			if strict {
				cfg.StrictMode = true
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("dstvimport: %w", err)
			}

			result, err := dstv.Import(data, cfg)
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "FAIL:", err)
				os.Exit(2)
				return nil
			}

			for _, d := range result.Diagnostics {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", d.Severity, d.Code, d.Message)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "conformity score: %.2f\n", result.ConformityScore)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a dstv.toml configuration file")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on mandatory-block violations instead of warning")
	return cmd
}
