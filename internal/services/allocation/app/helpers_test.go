package app

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/catalog"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/decision"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/ledger"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/storage"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/storage/sqlite"
	"go.uber.org/zap"
)

const testCharacter = "achilles-1"

// stubRoller returns fixed gate rolls and coin flips.
type stubRoller struct {
	mu    sync.Mutex
	roll  int
	coin  bool
	rolls int
}

func (r *stubRoller) D100() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rolls++
	return r.roll
}

func (r *stubRoller) Coin() bool {
	return r.coin
}

func (r *stubRoller) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rolls
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Power{
		{ID: "a_power", Name: "Alpha Strike", Tier: catalog.TierSkill, UnlockCost: 2, MaxRank: 1},
		{ID: "b_power", Name: "Bulwark", Tier: catalog.TierSkill, UnlockCost: 3, MaxRank: 1},
		{ID: "c_power", Name: "Counter", Tier: catalog.TierSkill, UnlockCost: 1, RankUpCost: 1, MaxRank: 2},
		{ID: "war_cry", Name: "War Cry", Tier: catalog.TierAbility, ScopeKey: "warrior", UnlockCost: 2, MaxRank: 1},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

type fixture struct {
	store   *sqlite.Store
	catalog *catalog.Catalog
	roller  *stubRoller
	now     time.Time
}

func newFixture(t *testing.T, adherence int, pools ledger.Pools) *fixture {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "allocation.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})

	cat := testCatalog(t)
	if err := store.PutPowers(ctx, cat.Powers()); err != nil {
		t.Fatalf("put powers: %v", err)
	}
	if err := store.PutCharacter(ctx, storage.CharacterRecord{
		Character: catalog.Character{
			ID:              testCharacter,
			Name:            "Achilles",
			Archetype:       "warrior",
			Species:         "human",
			BaseCharacterID: "achilles",
			Level:           5,
			Personality:     []string{"proud", "impulsive"},
		},
		Pools:     pools,
		Adherence: adherence,
		Bond:      50,
	}); err != nil {
		t.Fatalf("put character: %v", err)
	}
	return &fixture{store: store, catalog: cat, roller: &stubRoller{roll: 50}, now: time.Now().UTC()}
}

func (f *fixture) deps(p decision.Provider, logger *zap.Logger) Dependencies {
	return Dependencies{
		Store:    f.store,
		Catalog:  f.catalog,
		Provider: p,
		Roller:   f.roller,
		Logger:   logger,
		Clock:    func() time.Time { return f.now },
	}
}

func (f *fixture) progression(t *testing.T, p decision.Provider) *Progression {
	t.Helper()
	svc, err := NewProgression(f.deps(p, nil))
	if err != nil {
		t.Fatalf("new progression: %v", err)
	}
	return svc
}

func (f *fixture) hold(t *testing.T, powerID string) {
	t.Helper()
	ctx := context.Background()
	err := f.store.WithCharacterLock(ctx, testCharacter, func(tx storage.LedgerTx) error {
		return tx.CreateInstance(ctx, catalog.Instance{PowerID: powerID, Rank: 1, Trigger: catalog.TriggerAuto})
	})
	if err != nil {
		t.Fatalf("hold %s: %v", powerID, err)
	}
}

func (f *fixture) record(t *testing.T) storage.CharacterRecord {
	t.Helper()
	rec, err := f.store.GetCharacter(context.Background(), testCharacter)
	if err != nil {
		t.Fatalf("get character: %v", err)
	}
	return rec
}

func (f *fixture) audit(t *testing.T) []storage.AuditRecord {
	t.Helper()
	records, err := f.store.ListAudit(context.Background(), testCharacter, 0)
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	return records
}
