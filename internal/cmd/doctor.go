package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forkswap/forkswap/internal/output"
	"github.com/forkswap/forkswap/internal/rpc"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check provider connectivity and throttling protection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var checks []output.Check

		if _, err := appConfig.EndpointURL(); err != nil {
			checks = append(checks, output.Check{Name: "credentials", Details: err.Error()})
			return renderChecks(checks)
		}
		host, _ := appConfig.ProviderHost()
		checks = append(checks, output.Check{
			Name:    "credentials",
			OK:      true,
			Details: fmt.Sprintf("provider host %s", host),
		})

		session, err := newSession(cmd.Context())
		if err != nil {
			checks = append(checks, output.Check{Name: "connectivity", Details: err.Error()})
			return renderChecks(checks)
		}
		checks = append(checks, output.Check{
			Name:    "connectivity",
			OK:      true,
			Details: fmt.Sprintf("forked at block %d", session.Env.BlockNumber()),
		})

		checks = append(checks, output.Check{
			Name:    "throttling",
			OK:      rpc.Verify(session.Env, session.HTTPClient),
			Details: fmt.Sprintf("min delay %s", session.Limiter.MinDelay()),
		})
		checks = append(checks, output.Check{
			Name:    "fork db throttling",
			OK:      rpc.Verify(session.Env.DB(), nil),
			Details: "state reads routed through the limiter",
		})

		return renderChecks(checks)
	},
}

func renderChecks(checks []output.Check) error {
	rendered, err := output.RenderChecks(outputFormat, checks)
	if err != nil {
		return err
	}
	printResult(rendered)
	return nil
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
