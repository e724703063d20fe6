// Package cmd wires the forkswap CLI: demonstration flows for token swaps
// against a forked mainnet state, with every provider call routed through
// the rate-limiting and retry layer.
package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/forkswap/forkswap/internal/config"
	"github.com/forkswap/forkswap/internal/observability"
	"github.com/forkswap/forkswap/internal/output"
)

var (
	cfgFile      string
	verbose      bool
	rpcURLFlag   string
	outputFlag   string
	appConfig    *config.Config
	outputFormat output.Format
	runID        string

	// Version info set by main package.
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by the main package to set version information.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var rootCmd = &cobra.Command{
	Use:   "forkswap",
	Short: "Token swap demonstrations against a forked mainnet",
	Long: `forkswap runs token swap demonstrations against a forked Ethereum
mainnet state, with all node provider traffic throttled and retried to stay
under rate limits.

Use the subcommands to perform specific operations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
	rootCmd.PersistentFlags().StringVar(&rpcURLFlag, "rpc-url", "", "provider endpoint override")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "output format: table or json")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig loads .env, configuration, and the logger, in that order.
func initConfig() {
	// Credentials commonly live in a local .env during demos; a missing
	// file is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		ExitStderr("Failed to load configuration", err)
	}
	if rpcURLFlag != "" {
		cfg.RPC.URL = rpcURLFlag
	}
	appConfig = cfg

	observability.InitCLILogger("forkswap", verbose || cfg.RPC.Debug)

	format := outputFlag
	if format == "" {
		format = cfg.Output
	}
	outputFormat, err = output.ParseFormat(format)
	if err != nil {
		ExitWithError(observability.CLILogger, "Invalid output format", err)
	}

	runID = uuid.NewString()
	observability.CLILogger.Debug("configuration loaded",
		zap.String("run_id", runID),
		zap.Float64("throttle_delay_sec", cfg.RPC.ThrottleDelay),
		zap.Bool("debug", cfg.RPC.Debug))
}

// printResult writes rendered command output to stdout.
func printResult(rendered string) {
	fmt.Fprintln(os.Stdout, rendered)
}
