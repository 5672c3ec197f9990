package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/adherence"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/decision"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/strategy"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/storage"
	"go.uber.org/zap"
)

const (
	styleCoach    = "coach"
	styleFallback = "fallback"
)

// Auction decides bids on the character's behalf.
type Auction struct {
	runtime
}

// NewAuction builds the auction service.
func NewAuction(deps Dependencies) (*Auction, error) {
	rt, err := newRuntime(deps)
	if err != nil {
		return nil, err
	}
	return &Auction{runtime: rt}, nil
}

// BidRequest is one bidding moment.
type BidRequest struct {
	AuctionID   string
	CharacterID string
	CurrentBid  int
	Strategy    strategy.BidStrategy
}

// BidResult is the move taken at a bidding moment.
type BidResult struct {
	AuctionID   string             `json:"auction_id"`
	CharacterID string             `json:"character_id"`
	Roll        adherence.Roll     `json:"roll"`
	Autonomous  bool               `json:"autonomous"`
	Action      strategy.BidAction `json:"action"`
	Style       string             `json:"style"`
	Letter      string             `json:"letter,omitempty"`
	Rationale   string             `json:"rationale,omitempty"`
	// Fallback is set when the provider failed and the character walked away.
	Fallback bool `json:"fallback"`
}

// ProcessBid gates once and returns the next move. A compliant character
// follows the coach's ladder; a rogue one picks from fixed styles, and any
// provider failure or bad answer becomes an abandon.
func (a *Auction) ProcessBid(ctx context.Context, req BidRequest) (result BidResult, err error) {
	ctx, span := a.start(ctx, "allocation.ProcessBid", req.CharacterID)
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(req.CharacterID) == "" {
		return BidResult{}, fmt.Errorf("character id is required")
	}
	if err := req.Strategy.Validate(); err != nil {
		return BidResult{}, err
	}
	if req.CurrentBid < 0 {
		return BidResult{}, strategy.ErrInvalidStrategy.Detail(map[string]string{"reason": "negative current bid"})
	}
	rec, _, err := a.snapshot(ctx, req.CharacterID)
	if err != nil {
		return BidResult{}, err
	}
	roll, err := adherence.Evaluate(a.deps.Roller, rec.Adherence)
	if err != nil {
		return BidResult{}, err
	}
	recordGate(ctx, string(decision.VariantAuction), roll.Passed)

	log := a.log(ctx).With(zap.String("character_id", req.CharacterID), zap.String("auction_id", req.AuctionID))
	result = BidResult{
		AuctionID:   req.AuctionID,
		CharacterID: req.CharacterID,
		Roll:        roll,
		Autonomous:  !roll.Passed,
	}

	var offered []decision.Option
	if roll.Passed {
		result.Action = strategy.NextBid(req.Strategy, req.CurrentBid, a.deps.Roller.Coin)
		result.Style = styleCoach
	} else {
		bids := strategy.RogueBids(req.Strategy, req.CurrentBid)
		decReq := decision.Request{
			Variant:  decision.VariantAuction,
			Persona:  persona(rec),
			Balances: rec.Pools,
			Auction: &decision.AuctionContext{
				CurrentBid:  req.CurrentBid,
				TargetMin:   req.Strategy.TargetMin,
				TargetMax:   req.Strategy.TargetMax,
				AbsoluteCap: req.Strategy.AbsoluteCap,
			},
			Scenario: "You are bidding in an auction. Decide your next move.",
			Options:  bidOptions(bids),
		}
		offered = decReq.Options
		choice, err := decision.Decide(ctx, a.deps.Provider, decReq)
		recordDecision(ctx, string(decision.VariantAuction), decisionOutcome(err))
		if err != nil {
			log.Warn("autonomous bid failed, abandoning", zap.Error(err))
			result.Action = strategy.BidAction{Kind: strategy.BidAbandon, Reason: "no decision"}
			result.Style = styleFallback
			result.Fallback = true
		} else {
			bid := bids[optionIndex(choice.Option)]
			result.Action = bid.Action
			result.Style = bid.Style
			result.Letter, result.Rationale = choice.Letter, choice.Rationale
		}
	}

	if err := a.audit(ctx, req.CharacterID, storage.AuditRecord{
		EpisodeID:  req.AuctionID,
		Variant:    decision.VariantAuction,
		Roll:       roll.Value,
		Threshold:  roll.Threshold,
		Passed:     roll.Passed,
		Autonomous: !roll.Passed,
		Action:     string(result.Action.Kind),
		Amount:     result.Action.Amount,
		Options:    offered,
		Letter:     result.Letter,
		Rationale:  result.Rationale,
	}); err != nil {
		return result, err
	}
	log.Info("bid decided",
		zap.String("action", string(result.Action.Kind)),
		zap.Int("amount", result.Action.Amount),
		zap.String("style", result.Style),
		zap.Bool("autonomous", result.Autonomous),
	)
	return result, nil
}

// AuctionOutcome reports how an auction ended for the character.
type AuctionOutcome struct {
	AuctionID   string
	CharacterID string
	Branch      adherence.Branch
	Won         bool
	Profit      int
}

// Settle adjusts adherence after an auction.
func (a *Auction) Settle(ctx context.Context, outcome AuctionOutcome) (result FeedbackResult, err error) {
	ctx, span := a.start(ctx, "allocation.SettleAuction", outcome.CharacterID)
	defer func() { endSpan(span, err) }()

	return a.settle(ctx, outcome.CharacterID, outcome.AuctionID, outcome.Branch,
		adherence.Outcome{Won: outcome.Won, Profit: outcome.Profit})
}
