package catalog

import (
	"strconv"

	apperrors "github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/platform/errors"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/ledger"
)

var (
	ErrAlreadyUnlocked     = apperrors.New(apperrors.CodeAlreadyUnlocked, "power already unlocked")
	ErrMaxRankReached      = apperrors.New(apperrors.CodeMaxRankReached, "power at max rank")
	ErrPrerequisiteMissing = apperrors.New(apperrors.CodePrerequisiteMissing, "prerequisite power missing")
	ErrLevelTooLow         = apperrors.New(apperrors.CodeLevelTooLow, "character level too low")
	ErrNotUnlocked         = apperrors.New(apperrors.CodePowerNotUnlocked, "power not unlocked")
	ErrOutOfScope          = apperrors.New(apperrors.CodePowerOutOfScope, "power not available to character")
	ErrPowerNotFound       = apperrors.New(apperrors.CodeNotFound, "power not found")
)

// ActionKind distinguishes the two ways points buy power.
type ActionKind string

const (
	ActionUnlock ActionKind = "unlock"
	ActionRankUp ActionKind = "rank_up"
)

// Candidate is one concrete spend: unlocking a power or ranking it up once.
type Candidate struct {
	Power Power       `json:"power"`
	Kind  ActionKind  `json:"kind"`
	Cost  int         `json:"cost"`
	Pool  ledger.Pool `json:"pool"`
	// FromRank is the rank held before the action; zero for unlocks.
	FromRank int `json:"from_rank"`
}

// CheckUnlock validates everything except cost for unlocking p.
// Checks run in order: scope, already unlocked, level, prerequisite.
func CheckUnlock(c Character, p Power, holdings Holdings) error {
	if !p.InScope(c) {
		return ErrOutOfScope.Detail(map[string]string{"power": p.ID})
	}
	if _, ok := holdings[p.ID]; ok {
		return ErrAlreadyUnlocked.Detail(map[string]string{"power": p.ID})
	}
	if p.MinLevel > 0 && c.Level < p.MinLevel {
		return ErrLevelTooLow.Detail(map[string]string{
			"power":    p.ID,
			"required": strconv.Itoa(p.MinLevel),
			"level":    strconv.Itoa(c.Level),
		})
	}
	if p.Prerequisite != "" {
		if _, ok := holdings[p.Prerequisite]; !ok {
			return ErrPrerequisiteMissing.Detail(map[string]string{
				"power":        p.ID,
				"prerequisite": p.Prerequisite,
			})
		}
	}
	return nil
}

// CheckRankUp validates everything except cost for ranking p up once.
func CheckRankUp(p Power, holdings Holdings) error {
	inst, ok := holdings[p.ID]
	if !ok {
		return ErrNotUnlocked.Detail(map[string]string{"power": p.ID})
	}
	if inst.Rank >= p.MaxRank {
		return ErrMaxRankReached.Detail(map[string]string{
			"power":    p.ID,
			"max_rank": strconv.Itoa(p.MaxRank),
		})
	}
	return nil
}

// UnlockCandidate builds the unlock action for p after checking eligibility and cost.
func UnlockCandidate(c Character, p Power, holdings Holdings, pools ledger.Pools) (Candidate, error) {
	if err := CheckUnlock(c, p, holdings); err != nil {
		return Candidate{}, err
	}
	cand := Candidate{Power: p, Kind: ActionUnlock, Cost: p.UnlockCost, Pool: p.Pool()}
	if err := cand.affordable(pools); err != nil {
		return Candidate{}, err
	}
	return cand, nil
}

// RankUpCandidate builds the rank-up action for p after checking eligibility and cost.
func RankUpCandidate(p Power, holdings Holdings, pools ledger.Pools) (Candidate, error) {
	if err := CheckRankUp(p, holdings); err != nil {
		return Candidate{}, err
	}
	rank := holdings[p.ID].Rank
	cand := Candidate{Power: p, Kind: ActionRankUp, Cost: p.CostToRankUp(rank), Pool: p.Pool(), FromRank: rank}
	if err := cand.affordable(pools); err != nil {
		return Candidate{}, err
	}
	return cand, nil
}

func (c Candidate) affordable(pools ledger.Pools) error {
	_, err := pools.Debit(c.Pool, c.Cost)
	return err
}

// Apply returns the holdings after the candidate takes effect.
func (c Candidate) Apply(holdings Holdings, inst Instance) Holdings {
	out := holdings.Clone()
	switch c.Kind {
	case ActionUnlock:
		inst.PowerID = c.Power.ID
		inst.Rank = 1
		out[c.Power.ID] = inst
	case ActionRankUp:
		cur := out[c.Power.ID]
		cur.Rank = c.FromRank + 1
		out[c.Power.ID] = cur
	}
	return out
}
