package strategy

import (
	"errors"
	"testing"
)

func heads() bool { return true }
func tails() bool { return false }

func TestNextBidLadder(t *testing.T) {
	s := BidStrategy{TargetMin: 100, TargetMax: 200, AbsoluteCap: 300}
	cases := []struct {
		name    string
		current int
		coin    func() bool
		want    BidAction
	}{
		{"clamped to target min", 90, tails, BidAction{Kind: BidRaise, Amount: 100}},
		{"full increment below min", 50, tails, BidAction{Kind: BidRaise, Amount: 75}},
		{"below midpoint", 120, tails, BidAction{Kind: BidRaise, Amount: 145}},
		{"at midpoint heads", 150, heads, BidAction{Kind: BidRaise, Amount: 175}},
		{"at midpoint tails", 150, tails, BidAction{Kind: BidAbandon}},
		{"above range with headroom", 200, tails, BidAction{Kind: BidRaise, Amount: 225}},
		{"headroom exactly 50", 250, heads, BidAction{Kind: BidAbandon}},
		{"at cap", 300, heads, BidAction{Kind: BidAbandon}},
		{"over cap", 900, heads, BidAction{Kind: BidAbandon}},
	}
	for _, tc := range cases {
		got := NextBid(s, tc.current, tc.coin)
		if got.Kind != tc.want.Kind || got.Amount != tc.want.Amount {
			t.Fatalf("%s: got %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestNextBidCoinOnlyInUpperRange(t *testing.T) {
	s := BidStrategy{TargetMin: 100, TargetMax: 200, AbsoluteCap: 300}
	calls := 0
	counting := func() bool { calls++; return true }
	for _, current := range []int{0, 99, 100, 149, 200, 260, 300} {
		NextBid(s, current, counting)
	}
	if calls != 0 {
		t.Fatalf("coin consulted %d times outside the upper range", calls)
	}
	NextBid(s, 199, counting)
	if calls != 1 {
		t.Fatalf("coin calls = %d, want 1", calls)
	}
}

func TestNextBidOddMidpoint(t *testing.T) {
	// midpoint 100.5: 100 is below it.
	s := BidStrategy{TargetMin: 100, TargetMax: 101, AbsoluteCap: 500}
	got := NextBid(s, 100, tails)
	if got.Kind != BidRaise || got.Amount != 125 {
		t.Fatalf("got %+v", got)
	}
}

func TestBidStrategyValidate(t *testing.T) {
	if err := (BidStrategy{TargetMin: 10, TargetMax: 20, AbsoluteCap: 30}).Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := (BidStrategy{TargetMin: 30, TargetMax: 20, AbsoluteCap: 40}).Validate(); !errors.Is(err, ErrInvalidStrategy) {
		t.Fatalf("expected invalid strategy, got %v", err)
	}
	if err := (BidStrategy{TargetMin: 10, TargetMax: 50, AbsoluteCap: 40}).Validate(); !errors.Is(err, ErrInvalidStrategy) {
		t.Fatalf("expected invalid strategy, got %v", err)
	}
}

func TestRogueBids(t *testing.T) {
	bids := RogueBids(BidStrategy{TargetMin: 100, TargetMax: 200, AbsoluteCap: 300}, 150)
	want := []int{175, 250, 450, 0, 200}
	if len(bids) != len(want) {
		t.Fatalf("len = %d", len(bids))
	}
	for i, b := range bids {
		if b.Action.Amount != want[i] {
			t.Fatalf("option %d amount = %d, want %d", i, b.Action.Amount, want[i])
		}
	}
	if bids[3].Action.Kind != BidAbandon {
		t.Fatal("expected fourth option to drop out")
	}
}
