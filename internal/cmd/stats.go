package cmd

import (
	"github.com/spf13/cobra"

	"github.com/forkswap/forkswap/internal/output"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report throttling counters for a protected session",
	Long: `Establish a protected session, let the fork's setup traffic flow
through the rate limiter, and report the limiter's counters.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSession(cmd.Context())
		if err != nil {
			return err
		}

		stats := session.Limiter.Stats()
		result := output.StatsResult{
			TotalCalls:     stats.TotalCalls,
			CallsPerSecond: stats.CallsPerSecond,
			ThrottleDelay:  session.Limiter.MinDelay().String(),
		}

		rendered, err := output.RenderStats(outputFormat, result)
		if err != nil {
			return err
		}
		printResult(rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
