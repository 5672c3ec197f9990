package app

import (
	"testing"
	"time"

	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/catalog"
)

func TestApplyAllocationMirrorsCommit(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	held := catalog.Holdings{"c_power": {PowerID: "c_power", Rank: 1, Trigger: catalog.TriggerAuto}}

	unlocked := applyAllocation(held, Allocation{PowerID: "a_power", Kind: catalog.ActionUnlock, Rank: 1, Trigger: catalog.TriggerRebellion}, now)
	got := unlocked["a_power"]
	if got.Rank != 1 || got.Trigger != catalog.TriggerRebellion || !got.UnlockedAt.Equal(now) {
		t.Fatalf("unlocked instance = %+v", got)
	}

	ranked := applyAllocation(unlocked, Allocation{PowerID: "c_power", Kind: catalog.ActionRankUp, Rank: 2, Trigger: catalog.TriggerCoach}, now)
	if got := ranked["c_power"]; got.Rank != 2 || got.Trigger != catalog.TriggerAuto {
		t.Fatalf("ranked instance = %+v", got)
	}
	if _, ok := held["a_power"]; ok || held["c_power"].Rank != 1 {
		t.Fatalf("input holdings mutated: %+v", held)
	}
}
