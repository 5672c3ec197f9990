package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/ledger"
)

func testPowers() []Power {
	return []Power{
		{ID: "jab", Name: "Jab", Tier: TierSkill, UnlockCost: 2, RankUpCost: 1, RankUpCostRank3: 2, MaxRank: 3},
		{ID: "combo", Name: "Combo", Tier: TierSkill, UnlockCost: 3, RankUpCost: 2, MaxRank: 2, Prerequisite: "jab"},
		{ID: "shield_wall", Name: "Shield Wall", Tier: TierAbility, ScopeKey: "tank", UnlockCost: 2, MaxRank: 1, MinLevel: 5},
		{ID: "hydra_bite", Name: "Hydra Bite", Tier: TierSpecies, ScopeKey: "hydra", UnlockCost: 1, MaxRank: 1},
		{ID: "achilles_heel", Name: "Heel Strike", Tier: TierSignature, ScopeKey: "achilles", UnlockCost: 4, MaxRank: 1},
	}
}

func testCharacter() Character {
	return Character{ID: "c1", Archetype: "tank", Species: "human", BaseCharacterID: "achilles", Level: 3}
}

func mustCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := New(testPowers())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	return cat
}

func TestTierPoolMapping(t *testing.T) {
	cases := map[Tier]ledger.Pool{
		TierSkill:     ledger.PoolSkill,
		TierAbility:   ledger.PoolArchetype,
		TierSpecies:   ledger.PoolSpecies,
		TierSignature: ledger.PoolSignature,
	}
	for tier, want := range cases {
		if got := tier.Pool(); got != want {
			t.Fatalf("%s pool = %s, want %s", tier, got, want)
		}
	}
	if Tier("legendary").Valid() {
		t.Fatal("expected unknown tier to be invalid")
	}
}

func TestCostToRankUp(t *testing.T) {
	p := Power{RankUpCost: 1, RankUpCostRank3: 4}
	if got := p.CostToRankUp(1); got != 1 {
		t.Fatalf("rank 1 cost = %d", got)
	}
	if got := p.CostToRankUp(2); got != 4 {
		t.Fatalf("rank 2 cost = %d", got)
	}
}

func TestCheckUnlockOrder(t *testing.T) {
	cat := mustCatalog(t)
	ch := testCharacter()

	bite, _ := cat.Get("hydra_bite")
	if err := CheckUnlock(ch, bite, nil); !errors.Is(err, ErrOutOfScope) {
		t.Fatalf("expected out of scope, got %v", err)
	}

	wall, _ := cat.Get("shield_wall")
	if err := CheckUnlock(ch, wall, nil); !errors.Is(err, ErrLevelTooLow) {
		t.Fatalf("expected level too low, got %v", err)
	}

	combo, _ := cat.Get("combo")
	if err := CheckUnlock(ch, combo, Holdings{}); !errors.Is(err, ErrPrerequisiteMissing) {
		t.Fatalf("expected prerequisite missing, got %v", err)
	}
	if err := CheckUnlock(ch, combo, Holdings{"combo": {Rank: 1}}); !errors.Is(err, ErrAlreadyUnlocked) {
		t.Fatalf("expected already unlocked, got %v", err)
	}
	if err := CheckUnlock(ch, combo, Holdings{"jab": {Rank: 1}}); err != nil {
		t.Fatalf("expected eligible, got %v", err)
	}
}

func TestCheckRankUp(t *testing.T) {
	cat := mustCatalog(t)
	combo, _ := cat.Get("combo")
	if err := CheckRankUp(combo, Holdings{}); !errors.Is(err, ErrNotUnlocked) {
		t.Fatalf("expected not unlocked, got %v", err)
	}
	if err := CheckRankUp(combo, Holdings{"combo": {Rank: 2}}); !errors.Is(err, ErrMaxRankReached) {
		t.Fatalf("expected max rank, got %v", err)
	}
}

func TestUnlockCandidateRequiresFunds(t *testing.T) {
	cat := mustCatalog(t)
	jab, _ := cat.Get("jab")
	if _, err := UnlockCandidate(testCharacter(), jab, nil, ledger.Pools{Skill: 1}); !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	cand, err := UnlockCandidate(testCharacter(), jab, nil, ledger.Pools{Skill: 2})
	if err != nil {
		t.Fatalf("unlock candidate: %v", err)
	}
	if cand.Cost != 2 || cand.Pool != ledger.PoolSkill || cand.Kind != ActionUnlock {
		t.Fatalf("candidate = %+v", cand)
	}
}

func TestCandidatesFiltersByScopeAndBalance(t *testing.T) {
	cat := mustCatalog(t)
	pools := ledger.Pools{Skill: 3, Archetype: 5, Signature: 3}
	holdings := Holdings{"jab": {PowerID: "jab", Rank: 1}}

	got := cat.Candidates(testCharacter(), holdings, pools)
	var ids []string
	for _, c := range got {
		ids = append(ids, string(c.Kind)+":"+c.Power.ID)
	}
	want := "unlock:combo,rank_up:jab"
	if strings.Join(ids, ",") != want {
		t.Fatalf("candidates = %v, want %s", ids, want)
	}
}

func TestCandidateApply(t *testing.T) {
	cat := mustCatalog(t)
	jab, _ := cat.Get("jab")
	unlock := Candidate{Power: jab, Kind: ActionUnlock, Cost: 2, Pool: ledger.PoolSkill}
	held := unlock.Apply(nil, Instance{Trigger: TriggerAuto})
	if held["jab"].Rank != 1 || held["jab"].Trigger != TriggerAuto {
		t.Fatalf("holdings = %+v", held)
	}
	rankUp := Candidate{Power: jab, Kind: ActionRankUp, Cost: 1, Pool: ledger.PoolSkill, FromRank: 1}
	next := rankUp.Apply(held, Instance{})
	if next["jab"].Rank != 2 || held["jab"].Rank != 1 {
		t.Fatalf("expected copy-on-apply, got %+v / %+v", next, held)
	}
}

func TestNewRejectsInvalidEntries(t *testing.T) {
	cases := map[string][]Power{
		"missing id":        {{Tier: TierSkill, UnlockCost: 1, MaxRank: 1}},
		"duplicate":         {{ID: "a", Tier: TierSkill, UnlockCost: 1, MaxRank: 1}, {ID: "a", Tier: TierSkill, UnlockCost: 1, MaxRank: 1}},
		"unknown tier":      {{ID: "a", Tier: "mythic", UnlockCost: 1, MaxRank: 1}},
		"scope missing":     {{ID: "a", Tier: TierSpecies, UnlockCost: 1, MaxRank: 1}},
		"zero cost":         {{ID: "a", Tier: TierSkill, MaxRank: 1}},
		"rank3 missing":     {{ID: "a", Tier: TierSkill, UnlockCost: 1, RankUpCost: 1, MaxRank: 3}},
		"unknown prereq":    {{ID: "a", Tier: TierSkill, UnlockCost: 1, MaxRank: 1, Prerequisite: "b"}},
		"self prereq":       {{ID: "a", Tier: TierSkill, UnlockCost: 1, MaxRank: 1, Prerequisite: "a"}},
		"rank up cost zero": {{ID: "a", Tier: TierSkill, UnlockCost: 1, MaxRank: 2}},
	}
	for name, powers := range cases {
		if _, err := New(powers); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: expected invalid catalog, got %v", name, err)
		}
	}
}

func TestResolvePicksRankUpForHeldPower(t *testing.T) {
	cat := mustCatalog(t)
	cand, err := cat.Resolve(testCharacter(), "jab", Holdings{"jab": {Rank: 2}}, ledger.Pools{Skill: 5})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cand.Kind != ActionRankUp || cand.Cost != 2 {
		t.Fatalf("candidate = %+v", cand)
	}
	if _, err := cat.Resolve(testCharacter(), "nope", nil, ledger.Pools{}); !errors.Is(err, ErrPowerNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
