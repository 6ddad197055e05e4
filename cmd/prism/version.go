package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prismhq/prism/internal/appupdate"
	"github.com/prismhq/prism/internal/version"
)

func newVersionCommand() *cobra.Command {
	var checkUpdate bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Println("prism " + version.String())
			if !checkUpdate {
				return nil
			}

			result, err := appupdate.Check(cmd.Context(), appupdate.CheckOptions{
				CurrentVersion: version.Version,
			})
			if err != nil {
				return fmt.Errorf("update check: %w", err)
			}
			if result.LatestVersion == "" {
				fmt.Println("update check skipped for dev builds")
				return nil
			}
			if result.UpdateAvailable {
				fmt.Printf("update available: %s (installed %s)\n", result.LatestVersion, result.CurrentVersion)
				fmt.Println("  " + result.UpgradeHint)
			} else {
				fmt.Println("up to date")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkUpdate, "check-update", false, "check GitHub for a newer release")
	return cmd
}
