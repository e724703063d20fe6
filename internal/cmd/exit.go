package cmd

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// ExitWithError logs the error and exits non-zero.
func ExitWithError(logger *zap.Logger, msg string, err error) {
	if logger != nil {
		logger.Error(msg, zap.Error(err))
	} else {
		ExitStderr(msg, err)
	}
	os.Exit(1)
}

// ExitStderr reports a failure before the logger exists.
func ExitStderr(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "FATAL: %s\n", msg)
	}
	os.Exit(1)
}
