package strategy

import "fmt"

// Raises offered to a character bidding on their own.
const (
	ConservativeRaise = 25
	AggressiveRaise   = 100
	AllInRaise        = 300
)

// RogueBid is one of the fixed moves a character may pick when ignoring the coach.
type RogueBid struct {
	Style   string
	Action  BidAction
	Summary string
}

// RogueBids lists the self-directed moves in presentation order.
func RogueBids(s BidStrategy, current int) []RogueBid {
	return []RogueBid{
		{
			Style:   "conservative",
			Action:  raise(current+ConservativeRaise, "raise conservatively"),
			Summary: fmt.Sprintf("Raise to %d, a small safe increment", current+ConservativeRaise),
		},
		{
			Style:   "aggressive",
			Action:  raise(current+AggressiveRaise, "raise aggressively"),
			Summary: fmt.Sprintf("Raise to %d, jump the bid", current+AggressiveRaise),
		},
		{
			Style:   "all_in",
			Action:  raise(current+AllInRaise, "go all in"),
			Summary: fmt.Sprintf("Raise to %d, scare off the competition", current+AllInRaise),
		},
		{
			Style:   "drop_out",
			Action:  abandon("walk away"),
			Summary: "Stop bidding",
		},
		{
			Style:   "follow_coach",
			Action:  raise(s.TargetMax, "follow the coach after all"),
			Summary: fmt.Sprintf("Bid to the coach's target of %d", s.TargetMax),
		},
	}
}
