// Package strategy computes the coach-directed next action. Everything here is
// pure: the same state, strategy, and coin yield the same action.
package strategy

import (
	"strconv"

	apperrors "github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/platform/errors"
)

const (
	// BidIncrement is the standard raise.
	BidIncrement = 25
	// CapHeadroom is the remaining room under the cap needed to keep raising
	// once the target range is passed.
	CapHeadroom = 50
)

// ErrInvalidStrategy indicates a bid strategy whose bounds are out of order.
var ErrInvalidStrategy = apperrors.New(apperrors.CodeInvalidStrategy, "invalid bid strategy")

// BidStrategy is the coach's plan for one auction.
type BidStrategy struct {
	TargetMin   int `json:"target_min"`
	TargetMax   int `json:"target_max"`
	AbsoluteCap int `json:"absolute_cap"`
}

// Validate requires 0 <= TargetMin <= TargetMax <= AbsoluteCap.
func (s BidStrategy) Validate() error {
	if s.TargetMin < 0 || s.TargetMin > s.TargetMax || s.TargetMax > s.AbsoluteCap {
		return ErrInvalidStrategy.Detail(map[string]string{
			"target_min":   strconv.Itoa(s.TargetMin),
			"target_max":   strconv.Itoa(s.TargetMax),
			"absolute_cap": strconv.Itoa(s.AbsoluteCap),
		})
	}
	return nil
}

// BidKind is either a raise or walking away.
type BidKind string

const (
	BidRaise   BidKind = "bid"
	BidAbandon BidKind = "drop_out"
)

// BidAction is one bidding decision. Amount is the new total bid for raises.
type BidAction struct {
	Kind   BidKind `json:"action"`
	Amount int     `json:"amount,omitempty"`
	Reason string  `json:"reason"`
}

func raise(amount int, reason string) BidAction {
	return BidAction{Kind: BidRaise, Amount: amount, Reason: reason}
}

func abandon(reason string) BidAction {
	return BidAction{Kind: BidAbandon, Reason: reason}
}

// NextBid walks the coach's priority ladder. coin is consulted only in the
// upper half of the target range, where the coach raises half the time.
func NextBid(s BidStrategy, current int, coin func() bool) BidAction {
	switch {
	case current >= s.AbsoluteCap:
		return abandon("exceeded coach maximum")
	case current < s.TargetMin:
		return raise(min(current+BidIncrement, s.TargetMin), "entering target range")
	case current < s.TargetMax:
		// current < (min+max)/2 without losing the half.
		if 2*current < s.TargetMin+s.TargetMax {
			return raise(current+BidIncrement, "staying competitive")
		}
		if coin() {
			return raise(current+BidIncrement, "final push")
		}
		return abandon("target range exceeded")
	case s.AbsoluteCap-current > CapHeadroom:
		return raise(current+BidIncrement, "using remaining cap")
	default:
		return abandon("approaching cap")
	}
}
