package app

import (
	"errors"
	"fmt"

	apperrors "github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/platform/errors"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/catalog"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/decision"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/strategy"
)

// candidateOptions labels at most decision.MaxOptions candidates, keeping
// candidate order so option i maps back to cands[i].
func candidateOptions(cands []catalog.Candidate) []decision.Option {
	options := make([]decision.Option, 0, len(cands))
	for _, cand := range cands {
		options = append(options, decision.Option{
			Action:  string(cand.Kind),
			PowerID: cand.Power.ID,
			Name:    cand.Power.Name,
			Tier:    string(cand.Power.Tier),
			Pool:    string(cand.Pool),
			Cost:    cand.Cost,
			Summary: candidateSummary(cand),
		})
	}
	return decision.LabelOptions(options)
}

func candidateSummary(cand catalog.Candidate) string {
	if cand.Kind == catalog.ActionRankUp {
		return fmt.Sprintf("Rank %s up to %d for %d %s points", cand.Power.Name, cand.FromRank+1, cand.Cost, cand.Pool)
	}
	return fmt.Sprintf("Unlock %s for %d %s points", cand.Power.Name, cand.Cost, cand.Pool)
}

func bidOptions(bids []strategy.RogueBid) []decision.Option {
	options := make([]decision.Option, 0, len(bids))
	for _, bid := range bids {
		options = append(options, decision.Option{
			Action:  string(bid.Action.Kind),
			Amount:  bid.Action.Amount,
			Summary: bid.Summary,
		})
	}
	return decision.LabelOptions(options)
}

// optionIndex maps a label back to its position in the offered slice.
func optionIndex(opt decision.Option) int {
	return int(opt.Label[0] - 'A')
}

func decisionOutcome(err error) string {
	switch {
	case err == nil:
		return "chosen"
	case errors.Is(err, decision.ErrInvalidDecision):
		return "invalid"
	case apperrors.IsCode(err, apperrors.CodeProviderUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
