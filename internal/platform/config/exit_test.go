package config_test

import (
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/platform/config"
)

// os.Exit cannot be intercepted in-process, so each case re-runs the test
// binary and inspects the child's exit code and stderr.
func TestExitHelpers(t *testing.T) {
	if mode := os.Getenv("BLANKWARS_EXIT_SUBPROCESS"); mode != "" {
		if mode == "usage" {
			config.UsageExitf("usage: %s", "missing -mode")
		}
		config.Exitf("fatal: %s", "ledger closed")
		return
	}

	cases := []struct {
		mode string
		code int
		want string
	}{
		{mode: "failure", code: config.ExitFailure, want: "fatal: ledger closed"},
		{mode: "usage", code: config.ExitUsage, want: "usage: missing -mode"},
	}
	for _, tc := range cases {
		cmd := exec.Command(os.Args[0], "-test.run=^TestExitHelpers$")
		cmd.Env = append(os.Environ(), "BLANKWARS_EXIT_SUBPROCESS="+tc.mode)

		out, err := cmd.CombinedOutput()
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("%s: expected *exec.ExitError, got %T: %v", tc.mode, err, err)
		}
		if exitErr.ExitCode() != tc.code {
			t.Fatalf("%s: exit code = %d, want %d", tc.mode, exitErr.ExitCode(), tc.code)
		}
		if !strings.Contains(string(out), tc.want) {
			t.Fatalf("%s: output = %q, want %q", tc.mode, out, tc.want)
		}
	}
}
