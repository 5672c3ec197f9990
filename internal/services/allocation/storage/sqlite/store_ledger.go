package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/adherence"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/catalog"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/ledger"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/storage"
)

var poolColumns = map[ledger.Pool]string{
	ledger.PoolSkill:     "skill_points",
	ledger.PoolArchetype: "archetype_points",
	ledger.PoolSpecies:   "species_points",
	ledger.PoolSignature: "signature_points",
}

// WithCharacterLock runs fn inside one transaction holding characterID's lock.
// The character row and holdings are re-read after the lock is taken.
func (s *Store) WithCharacterLock(ctx context.Context, characterID string, fn func(storage.LedgerTx) error) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(characterID) == "" {
		return fmt.Errorf("character id is required")
	}

	unlock, err := s.locks.lock(ctx, characterID)
	if err != nil {
		return fmt.Errorf("lock character: %w", err)
	}
	defer unlock()

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rec, err := getCharacter(ctx, tx, characterID)
	if err != nil {
		return err
	}
	holdings, err := getHoldings(ctx, tx, characterID)
	if err != nil {
		return err
	}

	ltx := &ledgerTx{tx: tx, rec: rec, holdings: holdings, now: s.now()}
	if err := fn(ltx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger: %w", err)
	}
	return nil
}

type ledgerTx struct {
	tx       *sql.Tx
	rec      storage.CharacterRecord
	holdings catalog.Holdings
	now      time.Time
}

func (t *ledgerTx) Record() storage.CharacterRecord {
	return t.rec
}

func (t *ledgerTx) Holdings() catalog.Holdings {
	return t.holdings.Clone()
}

func (t *ledgerTx) guard() error {
	if t.rec.InBattle {
		return storage.ErrCharacterLocked.Detail(map[string]string{
			"character": t.rec.Character.ID,
			"reason":    "in_battle",
		})
	}
	return nil
}

func (t *ledgerTx) touch(ctx context.Context) error {
	if _, err := t.tx.ExecContext(ctx,
		`UPDATE character_progression SET updated_at = ? WHERE id = ?`,
		toMillis(t.now), t.rec.Character.ID,
	); err != nil {
		return fmt.Errorf("touch character: %w", err)
	}
	t.rec.UpdatedAt = t.now
	return nil
}

func (t *ledgerTx) Debit(ctx context.Context, pool ledger.Pool, amount int) error {
	if err := t.guard(); err != nil {
		return err
	}
	next, err := t.rec.Pools.Debit(pool, amount)
	if err != nil {
		return err
	}
	column := poolColumns[pool]
	res, err := t.tx.ExecContext(ctx,
		`UPDATE character_progression SET `+column+` = `+column+` - ? WHERE id = ? AND `+column+` >= ?`,
		amount, t.rec.Character.ID, amount,
	)
	if err != nil {
		return fmt.Errorf("debit %s: %w", pool, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("debit %s rows: %w", pool, err)
	}
	if affected != 1 {
		return ledger.ErrInsufficientFunds.Detail(map[string]string{
			"pool": string(pool),
			"need": strconv.Itoa(amount),
			"have": strconv.Itoa(t.rec.Pools.Balance(pool)),
		})
	}
	t.rec.Pools = next
	return t.touch(ctx)
}

func (t *ledgerTx) Credit(ctx context.Context, grant ledger.Pools) error {
	if err := t.guard(); err != nil {
		return err
	}
	next, err := t.rec.Pools.Credit(grant)
	if err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(ctx, `
UPDATE character_progression
SET skill_points = skill_points + ?,
    archetype_points = archetype_points + ?,
    species_points = species_points + ?,
    signature_points = signature_points + ?
WHERE id = ?`,
		grant.Skill, grant.Archetype, grant.Species, grant.Signature, t.rec.Character.ID,
	); err != nil {
		return fmt.Errorf("credit points: %w", err)
	}
	t.rec.Pools = next
	return t.touch(ctx)
}

func (t *ledgerTx) CreateInstance(ctx context.Context, inst catalog.Instance) error {
	if err := t.guard(); err != nil {
		return err
	}
	if _, held := t.holdings[inst.PowerID]; held {
		return catalog.ErrAlreadyUnlocked.Detail(map[string]string{"power": inst.PowerID})
	}
	if inst.Rank < 1 {
		inst.Rank = 1
	}
	if inst.UnlockedAt.IsZero() {
		inst.UnlockedAt = t.now
	}
	res, err := t.tx.ExecContext(ctx, `
INSERT INTO character_powers (character_id, power_id, current_rank, triggered_by, unlocked_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(character_id, power_id) DO NOTHING`,
		t.rec.Character.ID, inst.PowerID, inst.Rank, string(inst.Trigger), toMillis(inst.UnlockedAt), toMillis(t.now),
	)
	if err != nil {
		return fmt.Errorf("create power instance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create power instance rows: %w", err)
	}
	if affected != 1 {
		return catalog.ErrAlreadyUnlocked.Detail(map[string]string{"power": inst.PowerID})
	}
	t.holdings[inst.PowerID] = inst
	return nil
}

func (t *ledgerTx) IncrementRank(ctx context.Context, powerID string, maxRank int) (int, error) {
	if err := t.guard(); err != nil {
		return 0, err
	}
	inst, held := t.holdings[powerID]
	if !held {
		return 0, catalog.ErrNotUnlocked.Detail(map[string]string{"power": powerID})
	}
	maxRankErr := catalog.ErrMaxRankReached.Detail(map[string]string{
		"power":    powerID,
		"max_rank": strconv.Itoa(maxRank),
	})
	if inst.Rank >= maxRank {
		return 0, maxRankErr
	}
	res, err := t.tx.ExecContext(ctx, `
UPDATE character_powers
SET current_rank = current_rank + 1, updated_at = ?
WHERE character_id = ? AND power_id = ? AND current_rank < ?`,
		toMillis(t.now), t.rec.Character.ID, powerID, maxRank,
	)
	if err != nil {
		return 0, fmt.Errorf("increment rank: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("increment rank rows: %w", err)
	}
	if affected != 1 {
		return 0, maxRankErr
	}
	inst.Rank++
	t.holdings[powerID] = inst
	return inst.Rank, nil
}

func (t *ledgerTx) AdjustAdherence(ctx context.Context, delta int) (int, error) {
	next := adherence.Adjust(t.rec.Adherence, delta)
	if _, err := t.tx.ExecContext(ctx,
		`UPDATE character_progression SET adherence = ? WHERE id = ?`,
		next, t.rec.Character.ID,
	); err != nil {
		return 0, fmt.Errorf("adjust adherence: %w", err)
	}
	t.rec.Adherence = next
	if err := t.touch(ctx); err != nil {
		return 0, err
	}
	return next, nil
}

func (t *ledgerTx) SetBattleLock(ctx context.Context, inBattle bool) error {
	if _, err := t.tx.ExecContext(ctx,
		`UPDATE character_progression SET in_battle = ? WHERE id = ?`,
		boolInt(inBattle), t.rec.Character.ID,
	); err != nil {
		return fmt.Errorf("set battle lock: %w", err)
	}
	t.rec.InBattle = inBattle
	return t.touch(ctx)
}

func (t *ledgerTx) SetCoachLockout(ctx context.Context, until time.Time) error {
	if _, err := t.tx.ExecContext(ctx,
		`UPDATE character_progression SET lockout_until = ? WHERE id = ?`,
		toMillis(until), t.rec.Character.ID,
	); err != nil {
		return fmt.Errorf("set coach lockout: %w", err)
	}
	t.rec.LockoutUntil = until.UTC()
	if until.IsZero() {
		t.rec.LockoutUntil = time.Time{}
	}
	return t.touch(ctx)
}
