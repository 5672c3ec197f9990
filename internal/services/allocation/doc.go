// Package allocation hosts the adherence-gated allocation engine.
//
// A character's progression points and auction bids are spent either by the
// coach's deterministic strategy or, when the adherence roll fails, by an
// external decision provider choosing from a bounded lettered option list.
// Every spend is one ledger transaction under the character lock; episodes
// are sequences of such transactions followed by a trust adjustment.
package allocation
