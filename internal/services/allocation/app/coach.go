package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/adherence"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/catalog"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/decision"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/ledger"
	"go.uber.org/zap"
)

// CoachUnlockRequest asks the character to unlock a specific power.
type CoachUnlockRequest struct {
	CharacterID string
	PowerID     string
}

// CoachUnlockResult reports how the character answered the coach.
type CoachUnlockResult struct {
	EpisodeID   string         `json:"episode_id"`
	CharacterID string         `json:"character_id"`
	Requested   string         `json:"requested"`
	Roll        adherence.Roll `json:"roll"`
	Autonomous  bool           `json:"autonomous"`
	// Reluctant is set when the character failed the gate but had nothing
	// else to pick, so the coach's choice went through anyway.
	Reluctant    bool       `json:"reluctant"`
	Allocation   Allocation `json:"allocation"`
	LockoutUntil time.Time  `json:"lockout_until,omitempty"`
}

// CoachUnlock runs a coach-directed unlock through the adherence gate. On a
// failed gate the character may pick another power of the same tier, which
// locks the coach out for the configured duration.
func (p *Progression) CoachUnlock(ctx context.Context, req CoachUnlockRequest) (result CoachUnlockResult, err error) {
	ctx, span := p.start(ctx, "allocation.CoachUnlock", req.CharacterID)
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(req.CharacterID) == "" {
		return CoachUnlockResult{}, fmt.Errorf("character id is required")
	}
	rec, holdings, err := p.snapshot(ctx, req.CharacterID)
	if err != nil {
		return CoachUnlockResult{}, err
	}
	if rec.InBattle {
		return CoachUnlockResult{}, battleLocked(req.CharacterID)
	}
	now := p.now()
	if rec.LockedOut(now) {
		return CoachUnlockResult{}, coachLockedOut(req.CharacterID, rec.LockoutUntil)
	}
	power, err := p.deps.Catalog.Get(req.PowerID)
	if err != nil {
		return CoachUnlockResult{}, err
	}
	suggested, err := catalog.UnlockCandidate(rec.Character, power, holdings, rec.Pools)
	if err != nil {
		return CoachUnlockResult{}, err
	}

	episodeID, err := p.newID()
	if err != nil {
		return CoachUnlockResult{}, err
	}
	roll, err := adherence.Evaluate(p.deps.Roller, rec.Adherence)
	if err != nil {
		return CoachUnlockResult{}, err
	}
	recordGate(ctx, string(decision.VariantProgression), roll.Passed)

	log := p.log(ctx).With(
		zap.String("character_id", req.CharacterID),
		zap.String("episode_id", episodeID),
		zap.String("power_id", req.PowerID),
	)
	result = CoachUnlockResult{
		EpisodeID:   episodeID,
		CharacterID: req.CharacterID,
		Requested:   req.PowerID,
		Roll:        roll,
		Autonomous:  !roll.Passed,
	}
	in := commitInput{
		episodeID:     episodeID,
		roll:          roll,
		cand:          suggested,
		trigger:       catalog.TriggerCoach,
		autonomous:    !roll.Passed,
		coachDirected: true,
	}

	if !roll.Passed {
		alternatives := sameTierUnlocks(p.deps.Catalog, rec.Character, holdings, rec.Pools, power)
		if len(alternatives) == 0 {
			in.action = actionReluctantUnlock
			result.Reluctant = true
			log.Info("no alternatives, complying reluctantly")
		} else {
			decReq := decision.Request{
				Variant:  decision.VariantProgression,
				Persona:  persona(rec),
				Balances: rec.Pools,
				Scenario: fmt.Sprintf("Your coach wants you to unlock %s. You may pick something else instead.", power.Name),
				Options:  candidateOptions(alternatives),
			}
			choice, err := decision.Decide(ctx, p.deps.Provider, decReq)
			recordDecision(ctx, string(decision.VariantProgression), decisionOutcome(err))
			if err != nil {
				log.Warn("autonomous decision rejected", zap.Error(err))
				return result, err
			}
			result.LockoutUntil = now.Add(p.deps.LockoutDuration)
			in.cand = alternatives[optionIndex(choice.Option)]
			in.trigger = catalog.TriggerRebellion
			in.choice, in.offered = &choice, decReq.Options
			in.coachDirected = false
			in.lockoutUntil = result.LockoutUntil
		}
	}

	alloc, err := p.commit(ctx, req.CharacterID, in)
	if err != nil {
		log.Warn("coach unlock rejected by ledger", zap.Error(err))
		return result, err
	}
	result.Allocation = alloc
	log.Info("coach unlock resolved",
		zap.String("unlocked", alloc.PowerID),
		zap.String("trigger", string(alloc.Trigger)),
		zap.Bool("reluctant", result.Reluctant),
	)
	return result, nil
}

// sameTierUnlocks lists affordable unlocks in the suggested power's tier,
// excluding the suggestion itself.
func sameTierUnlocks(cat *catalog.Catalog, ch catalog.Character, holdings catalog.Holdings, pools ledger.Pools, suggested catalog.Power) []catalog.Candidate {
	var out []catalog.Candidate
	for _, cand := range cat.Candidates(ch, holdings, pools) {
		if cand.Kind != catalog.ActionUnlock || cand.Power.Tier != suggested.Tier || cand.Power.ID == suggested.ID {
			continue
		}
		out = append(out, cand)
	}
	return out
}
