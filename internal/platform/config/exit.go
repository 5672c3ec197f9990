package config

import (
	"fmt"
	"os"
)

// Exit codes for command entry points.
const (
	ExitFailure = 1
	// ExitUsage reports bad flags or environment before any work started.
	ExitUsage = 2
)

// Exitf writes a formatted error message to stderr and exits with ExitFailure.
func Exitf(format string, args ...any) {
	exitf(ExitFailure, format, args...)
}

// UsageExitf writes a formatted error message to stderr and exits with ExitUsage.
func UsageExitf(format string, args ...any) {
	exitf(ExitUsage, format, args...)
}

func exitf(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(code)
}
