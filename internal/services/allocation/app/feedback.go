package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/adherence"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/storage"
	"go.uber.org/zap"
)

// FeedbackResult reports an adherence adjustment.
type FeedbackResult struct {
	CharacterID string           `json:"character_id"`
	EpisodeID   string           `json:"episode_id"`
	Branch      adherence.Branch `json:"branch"`
	Delta       int              `json:"delta"`
	Before      int              `json:"before"`
	After       int              `json:"after"`
}

func (r runtime) settle(ctx context.Context, characterID, episodeID string, branch adherence.Branch, outcome adherence.Outcome) (FeedbackResult, error) {
	if strings.TrimSpace(characterID) == "" {
		return FeedbackResult{}, fmt.Errorf("character id is required")
	}
	if branch != adherence.BranchCompliant && branch != adherence.BranchRogue {
		return FeedbackResult{}, fmt.Errorf("unknown branch %q", branch)
	}
	feedbackID, err := r.newID()
	if err != nil {
		return FeedbackResult{}, err
	}

	delta := adherence.Delta(branch, outcome)
	result := FeedbackResult{CharacterID: characterID, EpisodeID: episodeID, Branch: branch, Delta: delta}
	err = r.inLedger(ctx, characterID, func(tx storage.LedgerTx) error {
		result.Before = tx.Record().Adherence
		after, err := tx.AdjustAdherence(ctx, delta)
		if err != nil {
			return err
		}
		result.After = after
		return tx.AppendFeedback(ctx, storage.FeedbackRecord{
			ID:        feedbackID,
			EpisodeID: episodeID,
			Branch:    string(branch),
			Won:       outcome.Won,
			Profit:    outcome.Profit,
			Delta:     delta,
			Before:    result.Before,
			After:     after,
		})
	})
	if err != nil {
		return FeedbackResult{}, err
	}
	recordFeedback(ctx, string(branch), delta)
	r.log(ctx).Info("adherence adjusted",
		zap.String("character_id", characterID),
		zap.String("episode_id", episodeID),
		zap.String("branch", string(branch)),
		zap.Int("delta", delta),
		zap.Int("adherence", result.After),
	)
	return result, nil
}
