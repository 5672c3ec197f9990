package sqlite

import (
	"context"
	"fmt"

	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/catalog"
)

// PutPowers upserts power definitions in one transaction.
func (s *Store) PutPowers(ctx context.Context, powers []catalog.Power) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, p := range powers {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO power_definitions (
    id, name, description, tier, scope_key, unlock_cost, rank_up_cost,
    rank_up_cost_rank3, max_rank, prerequisite_id, min_level
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    description = excluded.description,
    tier = excluded.tier,
    scope_key = excluded.scope_key,
    unlock_cost = excluded.unlock_cost,
    rank_up_cost = excluded.rank_up_cost,
    rank_up_cost_rank3 = excluded.rank_up_cost_rank3,
    max_rank = excluded.max_rank,
    prerequisite_id = excluded.prerequisite_id,
    min_level = excluded.min_level`,
			p.ID, p.Name, p.Description, string(p.Tier), p.ScopeKey, p.UnlockCost, p.RankUpCost,
			p.RankUpCostRank3, p.MaxRank, p.Prerequisite, p.MinLevel,
		); err != nil {
			return fmt.Errorf("put power %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit powers: %w", err)
	}
	return nil
}

// ListPowers returns every stored power definition ordered by id.
func (s *Store) ListPowers(ctx context.Context) ([]catalog.Power, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, name, description, tier, scope_key, unlock_cost, rank_up_cost,
       rank_up_cost_rank3, max_rank, prerequisite_id, min_level
FROM power_definitions
ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list powers: %w", err)
	}
	defer rows.Close()

	var powers []catalog.Power
	for rows.Next() {
		var (
			p    catalog.Power
			tier string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &tier, &p.ScopeKey, &p.UnlockCost,
			&p.RankUpCost, &p.RankUpCostRank3, &p.MaxRank, &p.Prerequisite, &p.MinLevel); err != nil {
			return nil, fmt.Errorf("scan power: %w", err)
		}
		p.Tier = catalog.Tier(tier)
		powers = append(powers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate powers: %w", err)
	}
	return powers, nil
}
