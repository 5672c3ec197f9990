package allocator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/ledger"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/storage"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		DBPath:    filepath.Join(t.TempDir(), "allocation.db"),
		Provider:  ProviderScripted,
		Seed:      11,
		LogLevel:  "error",
		LogFormat: "json",
		Source:    "test",
		Level:     5,
		Limit:     10,
	}
}

func run(t *testing.T, cfg Config) map[string]any {
	t.Helper()
	var out, errOut bytes.Buffer
	if err := Run(context.Background(), cfg, &out, &errOut); err != nil {
		t.Fatalf("run %s: %v (stderr: %s)", cfg.Mode, err, errOut.String())
	}
	var report map[string]any
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("decode %s output %q: %v", cfg.Mode, out.String(), err)
	}
	return report
}

func seed(t *testing.T, cfg Config, adherence int) {
	t.Helper()
	cfg.Mode = ModeCatalog
	cfg.CatalogPath = filepath.Join("testdata", "powers.yaml")
	if report := run(t, cfg); report["imported"] != float64(4) {
		t.Fatalf("catalog report = %+v", report)
	}

	cfg.Mode = ModeCharacter
	cfg.CatalogPath = ""
	cfg.CharacterID = "achilles-1"
	cfg.Name = "Achilles"
	cfg.Archetype = "warrior"
	cfg.Species = "human"
	cfg.BaseCharacterID = "achilles"
	cfg.Adherence = adherence
	cfg.Bond = 40
	run(t, cfg)
}

func TestRunRequiresMode(t *testing.T) {
	if err := Run(context.Background(), testConfig(t), nil, nil); err == nil || !strings.Contains(err.Error(), "-mode") {
		t.Fatalf("err = %v", err)
	}
}

func TestRunCompliantGrantFollowsPlan(t *testing.T) {
	cfg := testConfig(t)
	seed(t, cfg, 100)

	cfg.Mode = ModeGrant
	cfg.CharacterID = "achilles-1"
	cfg.Points = "skill=2,archetype=2"
	cfg.Plan = "quick_jab,battle_fury"
	report := run(t, cfg)

	allocations, ok := report["allocations"].([]any)
	if !ok || len(allocations) != 2 {
		t.Fatalf("report = %+v", report)
	}
	if report["autonomous"] != false {
		t.Fatalf("expected compliant episode, report = %+v", report)
	}

	cfg.Mode = ModeAudit
	audit := run(t, cfg)
	if decisions, ok := audit["decisions"].([]any); !ok || len(decisions) != 2 {
		t.Fatalf("audit = %+v", audit)
	}
}

func TestRunAutonomousGrantUsesScriptedAnswers(t *testing.T) {
	cfg := testConfig(t)
	seed(t, cfg, 0)

	cfg.Mode = ModeGrant
	cfg.CharacterID = "achilles-1"
	cfg.Points = "skill=3"
	cfg.Answers = "A:I want the guard."
	report := run(t, cfg)

	allocations, ok := report["allocations"].([]any)
	if !ok || len(allocations) != 1 || report["autonomous"] != true {
		t.Fatalf("report = %+v", report)
	}
	first := allocations[0].(map[string]any)
	if first["power_id"] != "iron_guard" || first["trigger"] != "character_rebellion" {
		t.Fatalf("allocation = %+v", first)
	}
}

func TestRunBidAndSettle(t *testing.T) {
	cfg := testConfig(t)
	seed(t, cfg, 100)

	cfg.Mode = ModeBid
	cfg.CharacterID = "achilles-1"
	cfg.AuctionID = "auction-9"
	cfg.CurrentBid = 90
	cfg.TargetMin, cfg.TargetMax, cfg.Cap = 100, 200, 300
	bid := run(t, cfg)
	action, _ := bid["action"].(map[string]any)
	if action["action"] != "bid" || action["amount"] != float64(100) {
		t.Fatalf("bid = %+v", bid)
	}

	cfg.Mode = ModeSettle
	cfg.Branch = "compliant"
	cfg.Won = true
	cfg.Profit = 600
	settled := run(t, cfg)
	if settled["delta"] != float64(3) || settled["after"] != float64(100) {
		t.Fatalf("settle = %+v", settled)
	}
}

func TestRunRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	seed(t, cfg, 50)
	cfg.Mode = ModeAllocate
	cfg.CharacterID = "achilles-1"
	cfg.Provider = "oracle"
	if err := Run(context.Background(), cfg, nil, nil); err == nil || !strings.Contains(err.Error(), "oracle") {
		t.Fatalf("err = %v", err)
	}
}

func TestDescribeLocalizesDomainErrors(t *testing.T) {
	err := fmt.Errorf("grant: %w", ledger.ErrInsufficientFunds.Detail(map[string]string{"pool": "skill", "need": "3", "have": "1"}))
	got := Describe(err, "en-GB")
	if !strings.HasPrefix(got, "Not enough skill points: need 3, have 1. [INSUFFICIENT_FUNDS]") {
		t.Fatalf("describe = %q", got)
	}
	locked := storage.ErrCharacterLocked.Detail(map[string]string{"reason": "coach_lockout", "until": "2026-01-02T03:04:05Z"})
	if got := Describe(locked, ""); !strings.HasPrefix(got, "This character cannot change their powers right now. Locked until 2026-01-02T03:04:05Z. [CHARACTER_LOCKED]") {
		t.Fatalf("describe locked = %q", got)
	}
	if got := Describe(errors.New("disk full"), ""); got != "disk full" {
		t.Fatalf("describe plain = %q", got)
	}
}
