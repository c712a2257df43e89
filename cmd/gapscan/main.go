package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gapscan/cmd/gapscan/commands"
	"gapscan/logger"
)

var rootCmd = &cobra.Command{
	Use:   "gapscan",
	Short: "Assess a NIOS database backup for DDI migration blockers",
	Long: `gapscan streams a NIOS database backup (onedb.xml, plain or inside a
.tar.gz grid backup) and reports the configuration elements that are
incompatible with the target DDI platform, or that need manual review
before migration.

Available commands:
  analyze - Run the compatibility analysis over a database backup
  leases  - Fetch the active leases of a network over WAPI
  version - Show version information

Examples:
  gapscan analyze -d backup.tar.gz -c acme -o reports/
  gapscan leases --config gm.ini -n 10.20.0.0/16
  gapscan analyze -d onedb.xml --objects custom_objects.yaml`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("log-json")
		if err := logger.Initialize(verbosity, jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON instead of console output")

	rootCmd.AddCommand(commands.AnalyzeCmd)
	rootCmd.AddCommand(commands.LeasesCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
