package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/pgquery/internal/update"
	"github.com/pthm/pgquery/internal/version"
)

var versionCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, version.Info())
		if !versionCheck {
			return nil
		}

		checker, err := update.NewChecker()
		if err != nil {
			return err
		}
		info, err := checker.CheckWithCache(cmd.Context())
		if err != nil {
			logger.Warn("update check failed", "error", err)
			return nil
		}
		if info.UpdateAvailable {
			fmt.Fprintf(out, "A newer release is available: %s (installed %s)\n", info.LatestVersion, info.CurrentVersion)
			if info.ReleaseURL != "" {
				fmt.Fprintln(out, info.ReleaseURL)
			}
		} else {
			fmt.Fprintln(out, "pgquery is up to date")
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check GitHub for a newer release")
}
