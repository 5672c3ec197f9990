package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/platform/otel"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/platform/timeouts"
)

// ServiceAllocator names the allocator command in traces.
const ServiceAllocator = "allocator"

// ParseArgs parses command-line flags. A nil args slice parses as empty so
// a parser never falls back to os.Args.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// RunWithTelemetry configures tracing for service, calls run, and then
// flushes spans. A flush failure is joined to run's error.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) (err error) {
	service = strings.TrimSpace(service)
	if service == "" {
		return errors.New("service name is required")
	}
	if run == nil {
		return errors.New("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if shutdownErr := shutdown(shutdownCtx); shutdownErr != nil {
			err = errors.Join(err, fmt.Errorf("%s otel shutdown: %w", service, shutdownErr))
		}
	}()
	return run(ctx)
}
