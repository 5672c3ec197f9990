// Package main runs the allocation engine command-line tool.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/platform/cmd"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/platform/config"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/tools/allocator"
)

func main() {
	cfg, err := allocator.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.UsageExitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := cmd.RunWithTelemetry(ctx, cmd.ServiceAllocator, func(ctx context.Context) error {
		return allocator.Run(ctx, cfg, os.Stdout, os.Stderr)
	}); err != nil {
		config.Exitf("Error: %s", allocator.Describe(err, os.Getenv("LANG")))
	}
}
