package app

import (
	"context"
	"time"

	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/adherence"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/catalog"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/decision"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/ledger"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/storage"
)

// Audit actions beyond the candidate kinds.
const (
	actionBank            = "bank"
	actionReluctantUnlock = "reluctant_unlock"
)

// Allocation is one committed spend.
type Allocation struct {
	PowerID    string             `json:"power_id"`
	Name       string             `json:"name"`
	Kind       catalog.ActionKind `json:"kind"`
	Pool       ledger.Pool        `json:"pool"`
	Cost       int                `json:"cost"`
	Rank       int                `json:"rank"`
	Trigger    catalog.Trigger    `json:"trigger"`
	Autonomous bool               `json:"autonomous"`
	Letter     string             `json:"letter,omitempty"`
	Rationale  string             `json:"rationale,omitempty"`
	// Remaining is the balance left after the spend, from the locked row.
	Remaining ledger.Pools `json:"remaining"`
}

type commitInput struct {
	episodeID  string
	roll       adherence.Roll
	cand       catalog.Candidate
	trigger    catalog.Trigger
	autonomous bool
	// action overrides the audit action, which defaults to the candidate kind.
	action  string
	choice  *decision.Choice
	offered []decision.Option
	// coachDirected rejects the spend while a coach lockout is active.
	coachDirected bool
	// lockoutUntil, when set, starts a coach lockout in the same transaction.
	lockoutUntil time.Time
}

// commit re-validates the snapshot candidate against the locked row and
// applies it with its audit record in one transaction.
func (r runtime) commit(ctx context.Context, characterID string, in commitInput) (Allocation, error) {
	auditID, err := r.newID()
	if err != nil {
		return Allocation{}, err
	}

	var alloc Allocation
	err = r.inLedger(ctx, characterID, func(tx storage.LedgerTx) error {
		rec := tx.Record()
		if rec.InBattle {
			return battleLocked(characterID)
		}
		if in.coachDirected && rec.LockedOut(r.now()) {
			return coachLockedOut(characterID, rec.LockoutUntil)
		}
		cand, err := revalidate(rec.Character, in.cand, tx.Holdings(), rec.Pools)
		if err != nil {
			return err
		}
		if err := tx.Debit(ctx, cand.Pool, cand.Cost); err != nil {
			return err
		}
		remaining, err := rec.Pools.Debit(cand.Pool, cand.Cost)
		if err != nil {
			return err
		}

		rank := 1
		switch cand.Kind {
		case catalog.ActionUnlock:
			if err := tx.CreateInstance(ctx, catalog.Instance{
				PowerID:    cand.Power.ID,
				Rank:       1,
				UnlockedAt: r.now(),
				Trigger:    in.trigger,
			}); err != nil {
				return err
			}
		case catalog.ActionRankUp:
			if rank, err = tx.IncrementRank(ctx, cand.Power.ID, cand.Power.MaxRank); err != nil {
				return err
			}
		}
		if !in.lockoutUntil.IsZero() {
			if err := tx.SetCoachLockout(ctx, in.lockoutUntil); err != nil {
				return err
			}
		}

		action := in.action
		if action == "" {
			action = string(cand.Kind)
		}
		audit := storage.AuditRecord{
			ID:         auditID,
			EpisodeID:  in.episodeID,
			Variant:    decision.VariantProgression,
			Roll:       in.roll.Value,
			Threshold:  in.roll.Threshold,
			Passed:     in.roll.Passed,
			Autonomous: in.autonomous,
			Action:     action,
			PowerID:    cand.Power.ID,
			Pool:       string(cand.Pool),
			Amount:     cand.Cost,
			Options:    in.offered,
		}
		alloc = Allocation{
			PowerID:    cand.Power.ID,
			Name:       cand.Power.Name,
			Kind:       cand.Kind,
			Pool:       cand.Pool,
			Cost:       cand.Cost,
			Rank:       rank,
			Trigger:    in.trigger,
			Autonomous: in.autonomous,
			Remaining:  remaining,
		}
		if in.choice != nil {
			audit.Letter, audit.Rationale = in.choice.Letter, in.choice.Rationale
			alloc.Letter, alloc.Rationale = in.choice.Letter, in.choice.Rationale
		}
		return tx.AppendAudit(ctx, audit)
	})
	if err != nil {
		return Allocation{}, err
	}
	recordSpend(ctx, string(alloc.Pool), alloc.Cost)
	return alloc, nil
}

// revalidate rebuilds the candidate from locked state so that drift since
// the snapshot surfaces as a precondition error.
func revalidate(ch catalog.Character, cand catalog.Candidate, holdings catalog.Holdings, pools ledger.Pools) (catalog.Candidate, error) {
	if cand.Kind == catalog.ActionRankUp {
		return catalog.RankUpCandidate(cand.Power, holdings, pools)
	}
	return catalog.UnlockCandidate(ch, cand.Power, holdings, pools)
}

// audit appends a record that carries no ledger mutation.
func (r runtime) audit(ctx context.Context, characterID string, rec storage.AuditRecord) error {
	auditID, err := r.newID()
	if err != nil {
		return err
	}
	rec.ID = auditID
	return r.inLedger(ctx, characterID, func(tx storage.LedgerTx) error {
		return tx.AppendAudit(ctx, rec)
	})
}

// applyAllocation mirrors a committed spend onto the episode snapshot.
func applyAllocation(holdings catalog.Holdings, alloc Allocation, now time.Time) catalog.Holdings {
	cand := catalog.Candidate{
		Power:    catalog.Power{ID: alloc.PowerID},
		Kind:     alloc.Kind,
		FromRank: alloc.Rank - 1,
	}
	return cand.Apply(holdings, catalog.Instance{UnlockedAt: now, Trigger: alloc.Trigger})
}

func coachLockedOut(characterID string, until time.Time) error {
	return storage.ErrCharacterLocked.Detail(map[string]string{
		"character": characterID,
		"reason":    "coach_lockout",
		"until":     until.UTC().Format(time.RFC3339),
	})
}
