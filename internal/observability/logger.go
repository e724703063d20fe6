package observability

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the process-wide logger used by CLI commands. It is
// initialized by the root command before any subcommand runs.
var CLILogger *zap.Logger = zap.NewNop()

// InitCLILogger initializes the CLI logger. Verbose (or RPC_DEBUG) switches
// the level to debug. Output goes to stderr so command output on stdout
// stays clean.
func InitCLILogger(serviceName string, verbose bool) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = !verbose

	logger, err := cfg.Build(zap.Fields(zap.String("service", serviceName)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	CLILogger = logger
}
