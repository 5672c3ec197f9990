package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/adherence"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/catalog"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/decision"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/ledger"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/strategy"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/storage"
	"go.uber.org/zap"
)

const progressionScenario = "You just earned progression points. Spend them on the powers you want."

// Progression spends progression points on powers.
type Progression struct {
	runtime
}

// NewProgression builds the progression service.
func NewProgression(deps Dependencies) (*Progression, error) {
	rt, err := newRuntime(deps)
	if err != nil {
		return nil, err
	}
	return &Progression{runtime: rt}, nil
}

// EpisodeResult reports one points-earned episode.
type EpisodeResult struct {
	EpisodeID   string         `json:"episode_id"`
	CharacterID string         `json:"character_id"`
	Source      string         `json:"source,omitempty"`
	Granted     ledger.Pools   `json:"granted"`
	Roll        adherence.Roll `json:"roll"`
	Autonomous  bool           `json:"autonomous"`
	Allocations []Allocation   `json:"allocations"`
	Spent       int            `json:"spent"`
	Remaining   ledger.Pools   `json:"remaining"`
}

// GrantRequest credits points and then runs one allocation episode.
type GrantRequest struct {
	CharacterID string
	Source      string
	Points      ledger.Pools
	// Plan is the coach's ordered list of power ids, used when the character complies.
	Plan []string
}

// GrantPoints credits the grant and spends it in one episode. The credit
// commits on its own, so an episode failure leaves the points banked.
func (p *Progression) GrantPoints(ctx context.Context, req GrantRequest) (result EpisodeResult, err error) {
	ctx, span := p.start(ctx, "allocation.GrantPoints", req.CharacterID)
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(req.CharacterID) == "" {
		return EpisodeResult{}, fmt.Errorf("character id is required")
	}
	if err := req.Points.Validate(); err != nil {
		return EpisodeResult{}, err
	}
	if req.Points.IsZero() {
		return EpisodeResult{}, ledger.ErrInvalidAmount.Detail(map[string]string{"reason": "empty grant"})
	}

	if err := p.inLedger(ctx, req.CharacterID, func(tx storage.LedgerTx) error {
		return tx.Credit(ctx, req.Points)
	}); err != nil {
		return EpisodeResult{}, err
	}
	p.log(ctx).Info("points granted",
		zap.String("character_id", req.CharacterID),
		zap.String("source", req.Source),
		zap.Int("total", req.Points.Total()),
	)

	result, err = p.runEpisode(ctx, req.CharacterID, req.Plan)
	result.CharacterID = req.CharacterID
	result.Source = req.Source
	result.Granted = req.Points
	return result, err
}

// Allocate runs one episode against points already banked.
func (p *Progression) Allocate(ctx context.Context, characterID string, plan []string) (result EpisodeResult, err error) {
	ctx, span := p.start(ctx, "allocation.Allocate", characterID)
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(characterID) == "" {
		return EpisodeResult{}, fmt.Errorf("character id is required")
	}
	return p.runEpisode(ctx, characterID, plan)
}

// runEpisode gates once, then spends from the snapshot until no candidate
// remains. Each spend is its own ledger transaction; the provider is only
// ever called between them.
func (p *Progression) runEpisode(ctx context.Context, characterID string, plan []string) (EpisodeResult, error) {
	rec, holdings, err := p.snapshot(ctx, characterID)
	if err != nil {
		return EpisodeResult{}, err
	}
	if rec.InBattle {
		return EpisodeResult{}, battleLocked(characterID)
	}
	episodeID, err := p.newID()
	if err != nil {
		return EpisodeResult{}, err
	}
	roll, err := adherence.Evaluate(p.deps.Roller, rec.Adherence)
	if err != nil {
		return EpisodeResult{}, err
	}
	recordGate(ctx, string(decision.VariantProgression), roll.Passed)

	log := p.log(ctx).With(zap.String("character_id", characterID), zap.String("episode_id", episodeID))
	log.Info("adherence gate",
		zap.Int("roll", roll.Value),
		zap.Int("threshold", roll.Threshold),
		zap.Bool("passed", roll.Passed),
	)

	result := EpisodeResult{
		EpisodeID:   episodeID,
		CharacterID: characterID,
		Roll:        roll,
		Autonomous:  !roll.Passed,
		Allocations: []Allocation{},
		Remaining:   rec.Pools,
	}

	snap := rec
	for {
		in := commitInput{episodeID: episodeID, roll: roll, autonomous: !roll.Passed}
		if roll.Passed {
			cand, ok := strategy.NextAllocation(p.deps.Catalog, snap.Character, holdings, snap.Pools, plan)
			if !ok {
				break
			}
			in.cand, in.trigger = cand, catalog.TriggerCoach
		} else {
			cands := p.deps.Catalog.Candidates(snap.Character, holdings, snap.Pools)
			if len(cands) == 0 {
				break
			}
			req := decision.Request{
				Variant:  decision.VariantProgression,
				Persona:  persona(snap),
				Balances: snap.Pools,
				Scenario: progressionScenario,
				Options:  candidateOptions(cands),
			}
			choice, err := decision.Decide(ctx, p.deps.Provider, req)
			recordDecision(ctx, string(decision.VariantProgression), decisionOutcome(err))
			if err != nil {
				log.Warn("autonomous decision rejected", zap.Error(err))
				return result, err
			}
			in.cand, in.trigger = cands[optionIndex(choice.Option)], catalog.TriggerRebellion
			in.choice, in.offered = &choice, req.Options
		}

		alloc, err := p.commit(ctx, characterID, in)
		if err != nil {
			log.Warn("allocation rejected by ledger", zap.String("power_id", in.cand.Power.ID), zap.Error(err))
			return result, err
		}
		log.Info("power allocated",
			zap.String("power_id", alloc.PowerID),
			zap.String("kind", string(alloc.Kind)),
			zap.Int("cost", alloc.Cost),
			zap.String("trigger", string(alloc.Trigger)),
		)
		result.Allocations = append(result.Allocations, alloc)
		result.Spent += alloc.Cost

		snap.Pools = alloc.Remaining
		holdings = applyAllocation(holdings, alloc, p.now())
		result.Remaining = snap.Pools
	}

	if len(result.Allocations) == 0 {
		if err := p.audit(ctx, characterID, storage.AuditRecord{
			EpisodeID:  episodeID,
			Variant:    decision.VariantProgression,
			Roll:       roll.Value,
			Threshold:  roll.Threshold,
			Passed:     roll.Passed,
			Autonomous: !roll.Passed,
			Action:     actionBank,
		}); err != nil {
			return result, err
		}
	}
	log.Info("episode finished", zap.Int("allocations", len(result.Allocations)), zap.Int("spent", result.Spent))
	return result, nil
}

// SetBattleLock marks whether the character is mid-battle.
func (p *Progression) SetBattleLock(ctx context.Context, characterID string, inBattle bool) (err error) {
	ctx, span := p.start(ctx, "allocation.SetBattleLock", characterID)
	defer func() { endSpan(span, err) }()

	if err := p.inLedger(ctx, characterID, func(tx storage.LedgerTx) error {
		return tx.SetBattleLock(ctx, inBattle)
	}); err != nil {
		return err
	}
	p.log(ctx).Info("battle lock changed", zap.String("character_id", characterID), zap.Bool("in_battle", inBattle))
	return nil
}

// SettleRequest reports how a progression episode worked out.
type SettleRequest struct {
	CharacterID string
	EpisodeID   string
	Branch      adherence.Branch
	Outcome     adherence.Outcome
}

// SettleEpisode adjusts adherence for a finished progression episode.
func (p *Progression) SettleEpisode(ctx context.Context, req SettleRequest) (result FeedbackResult, err error) {
	ctx, span := p.start(ctx, "allocation.SettleEpisode", req.CharacterID)
	defer func() { endSpan(span, err) }()

	return p.settle(ctx, req.CharacterID, req.EpisodeID, req.Branch, req.Outcome)
}
