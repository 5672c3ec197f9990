package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/adherence"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/catalog"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/storage"
)

const characterColumns = `id, name, archetype, species, base_character_id, personality_json,
	conversation_style, level, skill_points, archetype_points, species_points, signature_points,
	adherence, bond, in_battle, lockout_until, created_at, updated_at`

// PutCharacter creates a character or refreshes its profile and level.
func (s *Store) PutCharacter(ctx context.Context, rec storage.CharacterRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	ch := rec.Character
	if strings.TrimSpace(ch.ID) == "" {
		return fmt.Errorf("character id is required")
	}
	if strings.TrimSpace(ch.Name) == "" {
		return fmt.Errorf("character name is required")
	}
	if ch.Level < 1 {
		ch.Level = 1
	}
	if err := adherence.ValidateScore(rec.Adherence); err != nil {
		return err
	}
	if err := adherence.ValidateScore(rec.Bond); err != nil {
		return err
	}
	if err := rec.Pools.Validate(); err != nil {
		return err
	}
	personality, err := encodeStrings(ch.Personality)
	if err != nil {
		return err
	}

	now := s.now()
	created := rec.CreatedAt
	if created.IsZero() {
		created = now
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO character_progression (`+characterColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    archetype = excluded.archetype,
    species = excluded.species,
    base_character_id = excluded.base_character_id,
    personality_json = excluded.personality_json,
    conversation_style = excluded.conversation_style,
    level = excluded.level,
    updated_at = excluded.updated_at`,
		ch.ID, ch.Name, ch.Archetype, ch.Species, ch.BaseCharacterID, personality,
		ch.ConversationStyle, ch.Level,
		rec.Pools.Skill, rec.Pools.Archetype, rec.Pools.Species, rec.Pools.Signature,
		rec.Adherence, rec.Bond, boolInt(rec.InBattle), toMillis(rec.LockoutUntil),
		toMillis(created), toMillis(now),
	)
	if err != nil {
		return fmt.Errorf("put character: %w", err)
	}
	return nil
}

// GetCharacter fetches one progression row.
func (s *Store) GetCharacter(ctx context.Context, characterID string) (storage.CharacterRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.CharacterRecord{}, err
	}
	return getCharacter(ctx, s.sqlDB, characterID)
}

// GetHoldings fetches every power a character holds.
func (s *Store) GetHoldings(ctx context.Context, characterID string) (catalog.Holdings, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return getHoldings(ctx, s.sqlDB, characterID)
}

func getCharacter(ctx context.Context, q queryer, characterID string) (storage.CharacterRecord, error) {
	if strings.TrimSpace(characterID) == "" {
		return storage.CharacterRecord{}, fmt.Errorf("character id is required")
	}
	row := q.QueryRowContext(ctx, `SELECT `+characterColumns+` FROM character_progression WHERE id = ?`, characterID)

	var (
		rec         storage.CharacterRecord
		personality string
		inBattle    int
		lockout     int64
		createdAt   int64
		updatedAt   int64
	)
	err := row.Scan(
		&rec.Character.ID,
		&rec.Character.Name,
		&rec.Character.Archetype,
		&rec.Character.Species,
		&rec.Character.BaseCharacterID,
		&personality,
		&rec.Character.ConversationStyle,
		&rec.Character.Level,
		&rec.Pools.Skill,
		&rec.Pools.Archetype,
		&rec.Pools.Species,
		&rec.Pools.Signature,
		&rec.Adherence,
		&rec.Bond,
		&inBattle,
		&lockout,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.CharacterRecord{}, storage.ErrNotFound.Detail(map[string]string{"character": characterID})
	}
	if err != nil {
		return storage.CharacterRecord{}, fmt.Errorf("get character: %w", err)
	}
	traits, err := decodeStrings(personality)
	if err != nil {
		return storage.CharacterRecord{}, err
	}
	rec.Character.Personality = traits
	rec.InBattle = inBattle != 0
	rec.LockoutUntil = fromMillis(lockout)
	rec.CreatedAt = fromMillis(createdAt)
	rec.UpdatedAt = fromMillis(updatedAt)
	return rec, nil
}

func getHoldings(ctx context.Context, q queryer, characterID string) (catalog.Holdings, error) {
	rows, err := q.QueryContext(ctx, `
SELECT power_id, current_rank, triggered_by, unlocked_at
FROM character_powers
WHERE character_id = ?`, characterID)
	if err != nil {
		return nil, fmt.Errorf("list character powers: %w", err)
	}
	defer rows.Close()

	holdings := catalog.Holdings{}
	for rows.Next() {
		var (
			inst       catalog.Instance
			trigger    string
			unlockedAt int64
		)
		if err := rows.Scan(&inst.PowerID, &inst.Rank, &trigger, &unlockedAt); err != nil {
			return nil, fmt.Errorf("scan character power: %w", err)
		}
		inst.Trigger = catalog.Trigger(trigger)
		inst.UnlockedAt = fromMillis(unlockedAt)
		holdings[inst.PowerID] = inst
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate character powers: %w", err)
	}
	return holdings, nil
}
