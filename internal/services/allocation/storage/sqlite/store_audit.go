package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/decision"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/storage"
)

const defaultListLimit = 50

func (t *ledgerTx) AppendAudit(ctx context.Context, rec storage.AuditRecord) error {
	if strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("audit id is required")
	}
	options := ""
	if len(rec.Options) > 0 {
		encoded, err := json.Marshal(rec.Options)
		if err != nil {
			return fmt.Errorf("marshal audit options: %w", err)
		}
		options = string(encoded)
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = t.now
	}
	if _, err := t.tx.ExecContext(ctx, `
INSERT INTO decision_audit (
    id, episode_id, character_id, variant, roll, threshold, passed, autonomous,
    action, power_id, pool, amount, options_json, letter, rationale, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.EpisodeID, t.rec.Character.ID, string(rec.Variant), rec.Roll, rec.Threshold,
		boolInt(rec.Passed), boolInt(rec.Autonomous), rec.Action, rec.PowerID, rec.Pool, rec.Amount,
		options, rec.Letter, rec.Rationale, toMillis(created),
	); err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

func (t *ledgerTx) AppendFeedback(ctx context.Context, rec storage.FeedbackRecord) error {
	if strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("feedback id is required")
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = t.now
	}
	if _, err := t.tx.ExecContext(ctx, `
INSERT INTO adherence_feedback (
    id, character_id, episode_id, branch, won, profit, delta,
    adherence_before, adherence_after, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, t.rec.Character.ID, rec.EpisodeID, rec.Branch, boolInt(rec.Won), rec.Profit,
		rec.Delta, rec.Before, rec.After, toMillis(created),
	); err != nil {
		return fmt.Errorf("append feedback: %w", err)
	}
	return nil
}

// ListAudit returns a character's decision log, newest first.
func (s *Store) ListAudit(ctx context.Context, characterID string, limit int) ([]storage.AuditRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, episode_id, character_id, variant, roll, threshold, passed, autonomous,
       action, power_id, pool, amount, options_json, letter, rationale, created_at
FROM decision_audit
WHERE character_id = ?
ORDER BY created_at DESC, rowid DESC
LIMIT ?`, characterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()

	var out []storage.AuditRecord
	for rows.Next() {
		var (
			rec        storage.AuditRecord
			variant    string
			passed     int
			autonomous int
			options    string
			createdAt  int64
		)
		if err := rows.Scan(&rec.ID, &rec.EpisodeID, &rec.CharacterID, &variant, &rec.Roll,
			&rec.Threshold, &passed, &autonomous, &rec.Action, &rec.PowerID, &rec.Pool,
			&rec.Amount, &options, &rec.Letter, &rec.Rationale, &createdAt); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		rec.Variant = decision.Variant(variant)
		rec.Passed = passed != 0
		rec.Autonomous = autonomous != 0
		rec.CreatedAt = fromMillis(createdAt)
		if options != "" {
			if err := json.Unmarshal([]byte(options), &rec.Options); err != nil {
				return nil, fmt.Errorf("unmarshal audit options: %w", err)
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit: %w", err)
	}
	return out, nil
}

// ListFeedback returns a character's trust adjustments, newest first.
func (s *Store) ListFeedback(ctx context.Context, characterID string, limit int) ([]storage.FeedbackRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, character_id, episode_id, branch, won, profit, delta,
       adherence_before, adherence_after, created_at
FROM adherence_feedback
WHERE character_id = ?
ORDER BY created_at DESC, rowid DESC
LIMIT ?`, characterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var out []storage.FeedbackRecord
	for rows.Next() {
		var (
			rec       storage.FeedbackRecord
			won       int
			createdAt int64
		)
		if err := rows.Scan(&rec.ID, &rec.CharacterID, &rec.EpisodeID, &rec.Branch, &won,
			&rec.Profit, &rec.Delta, &rec.Before, &rec.After, &createdAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		rec.Won = won != 0
		rec.CreatedAt = fromMillis(createdAt)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}
	return out, nil
}
