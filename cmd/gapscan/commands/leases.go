package commands

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"gapscan/logger"
	"gapscan/wapi"
)

// LeasesCmd fetches the active leases of a network over WAPI.
var LeasesCmd = &cobra.Command{
	Use:   "leases",
	Short: "Fetch the leases of a network from the grid master",
	Long: `Retrieve the lease objects of a network over the WAPI REST interface.

Grid master address and credentials come from an ini file with a [NIOS]
section (gm, api_version, valid_cert, user, pass). Lease objects are
fetched concurrently over a small pool of reusable HTTP sessions.

Examples:
  gapscan leases --config gm.ini -n 10.20.0.0/16
  gapscan leases --config gm.ini -n 10.20.0.0/16 --view internal --threads 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, _ := cmd.Flags().GetString("config")
		network, _ := cmd.Flags().GetString("network")
		view, _ := cmd.Flags().GetString("view")
		threads, _ := cmd.Flags().GetInt("threads")
		sessions, _ := cmd.Flags().GetInt("sessions")

		return runLeases(cmd, config, network, view, threads, sessions)
	},
}

func init() {
	LeasesCmd.Flags().String("config", "gm.ini", "Grid master ini file")
	LeasesCmd.Flags().StringP("network", "n", "", "Network to fetch leases for")
	LeasesCmd.MarkFlagRequired("network")
	LeasesCmd.Flags().String("view", "default", "Network view")
	LeasesCmd.Flags().Int("threads", 5, "Concurrent lease fetches")
	LeasesCmd.Flags().Int("sessions", 1, "HTTP sessions to spread requests over")
}

func runLeases(cmd *cobra.Command, config, network, view string, threads, sessions int) error {
	cfg, err := wapi.LoadConfig(config)
	if err != nil {
		return err
	}
	client := wapi.NewClient(cfg, wapi.Options{
		Sessions: sessions,
		Threads:  threads,
	}, logger.Named("wapi"))

	start := time.Now()
	leases, err := client.GetNetworkLeases(cmd.Context(), network, view)
	if err != nil {
		return err
	}

	data := pterm.TableData{{"ADDRESS", "STATE", "HARDWARE", "HOSTNAME", "ENDS"}}
	for _, lease := range leases {
		data = append(data, []string{
			lease.Address,
			lease.BindingState,
			lease.Hardware,
			lease.ClientHostname,
			formatEpoch(lease.Ends),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}

	pterm.Success.Printf("%d leases retrieved in %s\n", len(leases), time.Since(start).Round(time.Millisecond))
	return nil
}

func formatEpoch(ts int64) string {
	if ts == 0 {
		return ""
	}
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}
