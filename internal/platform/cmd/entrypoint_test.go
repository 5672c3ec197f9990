package cmd

import (
	"context"
	"errors"
	"flag"
	"testing"
)

func TestParseArgs(t *testing.T) {
	fs := flag.NewFlagSet("allocator", flag.ContinueOnError)
	mode := fs.String("mode", "", "mode")
	if err := ParseArgs(fs, []string{"-mode", "grant", "extra"}); err != nil {
		t.Fatalf("parse args: %v", err)
	}
	if *mode != "grant" || fs.NArg() != 1 {
		t.Fatalf("mode = %q, args = %v", *mode, fs.Args())
	}
}

func TestParseArgsNilArgsIsEmpty(t *testing.T) {
	fs := flag.NewFlagSet("allocator", flag.ContinueOnError)
	mode := fs.String("mode", "audit", "mode")
	if err := ParseArgs(fs, nil); err != nil {
		t.Fatalf("parse args: %v", err)
	}
	if *mode != "audit" {
		t.Fatalf("mode = %q, want default", *mode)
	}
}

func TestParseArgsRejectsNilParser(t *testing.T) {
	if err := ParseArgs(nil, []string{}); err == nil {
		t.Fatal("expected parse args to reject nil parser")
	}
}

func TestRunWithTelemetryRejectsMissingInputs(t *testing.T) {
	if err := RunWithTelemetry(nil, " ", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetry(context.Background(), ServiceAllocator, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}

func TestRunWithTelemetryReturnsRunError(t *testing.T) {
	t.Setenv("BLANKWARS_OTEL_ENDPOINT", "")
	boom := errors.New("boom")
	called := false
	err := RunWithTelemetry(context.Background(), ServiceAllocator, func(context.Context) error {
		called = true
		return boom
	})
	if !called {
		t.Fatal("expected run function to be called")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestRunWithTelemetryRejectsBadSettings(t *testing.T) {
	t.Setenv("BLANKWARS_OTEL_SAMPLE_RATIO", "half")
	err := RunWithTelemetry(context.Background(), ServiceAllocator, func(context.Context) error {
		t.Fatal("run should not be called")
		return nil
	})
	if err == nil {
		t.Fatal("expected settings error")
	}
}
