// Package catalog defines the allocatable power catalog and the eligibility
// rules that decide whether a character may unlock or rank up a power.
package catalog

import (
	"time"

	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/ledger"
)

// Tier scopes a power to a set of characters.
type Tier string

const (
	// TierSkill powers are universal.
	TierSkill Tier = "skill"
	// TierAbility powers belong to one archetype.
	TierAbility Tier = "ability"
	// TierSpecies powers belong to one species.
	TierSpecies Tier = "species"
	// TierSignature powers belong to one base character.
	TierSignature Tier = "signature"
)

// Pool returns the point pool that pays for powers of this tier.
func (t Tier) Pool() ledger.Pool {
	switch t {
	case TierSkill:
		return ledger.PoolSkill
	case TierAbility:
		return ledger.PoolArchetype
	case TierSpecies:
		return ledger.PoolSpecies
	case TierSignature:
		return ledger.PoolSignature
	default:
		return ""
	}
}

// Valid reports whether t is one of the four tiers.
func (t Tier) Valid() bool {
	return t.Pool() != ""
}

func (t Tier) rank() int {
	switch t {
	case TierSkill:
		return 0
	case TierAbility:
		return 1
	case TierSpecies:
		return 2
	case TierSignature:
		return 3
	default:
		return 4
	}
}

// Power is one immutable catalog entry.
type Power struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description,omitempty"`
	Tier        Tier   `yaml:"tier" json:"tier"`
	// ScopeKey is the archetype, species, or base character id for scoped tiers.
	ScopeKey        string `yaml:"scope" json:"scope,omitempty"`
	UnlockCost      int    `yaml:"unlock_cost" json:"unlock_cost"`
	RankUpCost      int    `yaml:"rank_up_cost" json:"rank_up_cost"`
	RankUpCostRank3 int    `yaml:"rank_up_cost_rank3" json:"rank_up_cost_rank3,omitempty"`
	MaxRank         int    `yaml:"max_rank" json:"max_rank"`
	Prerequisite    string `yaml:"prerequisite" json:"prerequisite,omitempty"`
	MinLevel        int    `yaml:"min_level" json:"min_level,omitempty"`
}

// Pool returns the pool that pays for this power.
func (p Power) Pool() ledger.Pool {
	return p.Tier.Pool()
}

// CostToRankUp returns the price of moving from currentRank to currentRank+1.
// Rank 1 to 2 uses RankUpCost; every later step uses RankUpCostRank3.
func (p Power) CostToRankUp(currentRank int) int {
	if currentRank <= 1 {
		return p.RankUpCost
	}
	return p.RankUpCostRank3
}

// Character is the subset of a progression row that eligibility depends on.
type Character struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Archetype         string   `json:"archetype"`
	Species           string   `json:"species"`
	BaseCharacterID   string   `json:"base_character_id"`
	Level             int      `json:"level"`
	Personality       []string `json:"personality,omitempty"`
	ConversationStyle string   `json:"conversation_style,omitempty"`
}

// InScope reports whether the character may ever hold p.
func (p Power) InScope(c Character) bool {
	switch p.Tier {
	case TierSkill:
		return true
	case TierAbility:
		return p.ScopeKey == c.Archetype
	case TierSpecies:
		return p.ScopeKey == c.Species
	case TierSignature:
		return p.ScopeKey == c.BaseCharacterID
	default:
		return false
	}
}

// Trigger records what caused an unlock or rank up.
type Trigger string

const (
	TriggerCoach     Trigger = "coach_suggestion"
	TriggerRebellion Trigger = "character_rebellion"
	TriggerAuto      Trigger = "auto"
)

// Instance is a power held by a character.
type Instance struct {
	PowerID    string    `json:"power_id"`
	Rank       int       `json:"rank"`
	UnlockedAt time.Time `json:"unlocked_at"`
	Trigger    Trigger   `json:"trigger"`
}

// Holdings indexes a character's instances by power id.
type Holdings map[string]Instance

// Clone returns an independent copy.
func (h Holdings) Clone() Holdings {
	out := make(Holdings, len(h))
	for id, inst := range h {
		out[id] = inst
	}
	return out
}
