package app

import (
	"context"
	"errors"
	"testing"

	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/adherence"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/decision"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/ledger"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/strategy"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/provider"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testStrategy = strategy.BidStrategy{TargetMin: 100, TargetMax: 200, AbsoluteCap: 300}

func newAuction(t *testing.T, f *fixture, p decision.Provider, logger *zap.Logger) *Auction {
	t.Helper()
	svc, err := NewAuction(f.deps(p, logger))
	if err != nil {
		t.Fatalf("new auction: %v", err)
	}
	return svc
}

func TestProcessBidCompliantFollowsLadder(t *testing.T) {
	f := newFixture(t, 30, ledger.Pools{})
	f.roller.roll = 5
	svc := newAuction(t, f, provider.NewScripted(), nil)

	result, err := svc.ProcessBid(context.Background(), BidRequest{
		AuctionID:   "auction-1",
		CharacterID: testCharacter,
		CurrentBid:  90,
		Strategy:    testStrategy,
	})
	if err != nil {
		t.Fatalf("process bid: %v", err)
	}
	if result.Autonomous || result.Style != styleCoach {
		t.Fatalf("result = %+v", result)
	}
	if result.Action.Kind != strategy.BidRaise || result.Action.Amount != 100 {
		t.Fatalf("action = %+v, want raise to 100", result.Action)
	}
	records := f.audit(t)
	if len(records) != 1 || records[0].Variant != decision.VariantAuction || records[0].EpisodeID != "auction-1" || records[0].Amount != 100 {
		t.Fatalf("audit = %+v", records)
	}
}

func TestProcessBidCompliantUsesCoinInUpperRange(t *testing.T) {
	f := newFixture(t, 30, ledger.Pools{})
	f.roller.roll = 5
	svc := newAuction(t, f, provider.NewScripted(), nil)
	req := BidRequest{AuctionID: "auction-1", CharacterID: testCharacter, CurrentBid: 175, Strategy: testStrategy}

	f.roller.coin = true
	raised, err := svc.ProcessBid(context.Background(), req)
	if err != nil {
		t.Fatalf("process bid: %v", err)
	}
	if raised.Action.Kind != strategy.BidRaise || raised.Action.Amount != 200 {
		t.Fatalf("heads action = %+v", raised.Action)
	}

	f.roller.coin = false
	dropped, err := svc.ProcessBid(context.Background(), req)
	if err != nil {
		t.Fatalf("process bid: %v", err)
	}
	if dropped.Action.Kind != strategy.BidAbandon {
		t.Fatalf("tails action = %+v", dropped.Action)
	}
}

func TestProcessBidRoguePicksStyle(t *testing.T) {
	f := newFixture(t, 30, ledger.Pools{})
	f.roller.roll = 77
	scripted := provider.NewScripted(provider.Answer{Letter: "c", Rationale: "Scare them off."})
	svc := newAuction(t, f, scripted, nil)

	result, err := svc.ProcessBid(context.Background(), BidRequest{
		AuctionID:   "auction-1",
		CharacterID: testCharacter,
		CurrentBid:  90,
		Strategy:    testStrategy,
	})
	if err != nil {
		t.Fatalf("process bid: %v", err)
	}
	if !result.Autonomous || result.Fallback || result.Style != "all_in" {
		t.Fatalf("result = %+v", result)
	}
	if result.Action.Kind != strategy.BidRaise || result.Action.Amount != 390 {
		t.Fatalf("action = %+v", result.Action)
	}
	requests := scripted.Requests()
	if len(requests) != 1 || len(requests[0].Options) != 5 || requests[0].Auction == nil || requests[0].Auction.CurrentBid != 90 {
		t.Fatalf("requests = %+v", requests)
	}
	if requests[0].Options[4].Amount != testStrategy.TargetMax {
		t.Fatalf("follow coach option = %+v", requests[0].Options[4])
	}
}

func TestProcessBidFallsBackToAbandon(t *testing.T) {
	cases := map[string]provider.Answer{
		"provider error": {Err: errors.New("connection reset")},
		"invalid letter": {Letter: "Q", Rationale: "?"},
		"no rationale":   {Letter: "A"},
	}
	for name, answer := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, 30, ledger.Pools{})
			f.roller.roll = 77
			core, logs := observer.New(zapcore.WarnLevel)
			svc := newAuction(t, f, provider.NewScripted(answer), zap.New(core))

			result, err := svc.ProcessBid(context.Background(), BidRequest{
				AuctionID:   "auction-1",
				CharacterID: testCharacter,
				CurrentBid:  150,
				Strategy:    testStrategy,
			})
			if err != nil {
				t.Fatalf("process bid: %v", err)
			}
			if !result.Fallback || result.Action.Kind != strategy.BidAbandon {
				t.Fatalf("result = %+v", result)
			}
			if logs.FilterMessage("autonomous bid failed, abandoning").Len() != 1 {
				t.Fatalf("warn logs = %+v", logs.All())
			}
		})
	}
}

func TestProcessBidValidatesRequest(t *testing.T) {
	f := newFixture(t, 30, ledger.Pools{})
	svc := newAuction(t, f, provider.NewScripted(), nil)
	ctx := context.Background()

	_, err := svc.ProcessBid(ctx, BidRequest{
		CharacterID: testCharacter,
		Strategy:    strategy.BidStrategy{TargetMin: 200, TargetMax: 100, AbsoluteCap: 300},
	})
	if !errors.Is(err, strategy.ErrInvalidStrategy) {
		t.Fatalf("err = %v, want invalid strategy", err)
	}
	_, err = svc.ProcessBid(ctx, BidRequest{CharacterID: testCharacter, CurrentBid: -1, Strategy: testStrategy})
	if !errors.Is(err, strategy.ErrInvalidStrategy) {
		t.Fatalf("err = %v, want invalid strategy", err)
	}
	if f.roller.count() != 0 {
		t.Fatal("expected no gate roll for invalid requests")
	}
}

func TestAuctionSettleRewardsCompliance(t *testing.T) {
	f := newFixture(t, 30, ledger.Pools{})
	svc := newAuction(t, f, provider.NewScripted(), nil)

	result, err := svc.Settle(context.Background(), AuctionOutcome{
		AuctionID:   "auction-1",
		CharacterID: testCharacter,
		Branch:      adherence.BranchCompliant,
		Won:         true,
		Profit:      1200,
	})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if result.Delta != 5 || result.After != 35 {
		t.Fatalf("result = %+v", result)
	}
}
