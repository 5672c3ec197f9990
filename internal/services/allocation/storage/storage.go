package storage

import (
	"context"
	"time"

	apperrors "github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/platform/errors"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/catalog"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/decision"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/ledger"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")
	// ErrCharacterLocked indicates the character may not change powers right now.
	ErrCharacterLocked = apperrors.New(apperrors.CodeCharacterLocked, "character locked")
)

// CharacterRecord is one character's progression row.
type CharacterRecord struct {
	Character catalog.Character
	Pools     ledger.Pools
	Adherence int
	Bond      int
	InBattle  bool
	// LockoutUntil blocks coach-directed spends until it passes; zero means none.
	LockoutUntil time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LockedOut reports whether a coach lockout is active at now.
func (r CharacterRecord) LockedOut(now time.Time) bool {
	return !r.LockoutUntil.IsZero() && now.Before(r.LockoutUntil)
}

// AuditRecord is one append-only decision log entry.
type AuditRecord struct {
	ID          string
	EpisodeID   string
	CharacterID string
	Variant     decision.Variant
	Roll        int
	Threshold   int
	Passed      bool
	Autonomous  bool
	Action      string
	PowerID     string
	Pool        string
	Amount      int
	Options     []decision.Option
	Letter      string
	Rationale   string
	CreatedAt   time.Time
}

// FeedbackRecord is one append-only trust adjustment.
type FeedbackRecord struct {
	ID          string
	CharacterID string
	EpisodeID   string
	Branch      string
	Won         bool
	Profit      int
	Delta       int
	Before      int
	After       int
	CreatedAt   time.Time
}

// LedgerTx is the view of one character inside a locked transaction.
// Record and Holdings reflect every mutation already made through the tx.
// Mutations other than SetBattleLock fail with ErrCharacterLocked while the
// character is in battle.
type LedgerTx interface {
	Record() CharacterRecord
	Holdings() catalog.Holdings

	Debit(ctx context.Context, pool ledger.Pool, amount int) error
	Credit(ctx context.Context, grant ledger.Pools) error
	CreateInstance(ctx context.Context, inst catalog.Instance) error
	// IncrementRank raises the held power one rank and returns the new rank.
	IncrementRank(ctx context.Context, powerID string, maxRank int) (int, error)
	// AdjustAdherence applies delta clamped to [0, 100] and returns the new score.
	AdjustAdherence(ctx context.Context, delta int) (int, error)
	SetBattleLock(ctx context.Context, inBattle bool) error
	SetCoachLockout(ctx context.Context, until time.Time) error

	AppendAudit(ctx context.Context, rec AuditRecord) error
	AppendFeedback(ctx context.Context, rec FeedbackRecord) error
}

// LedgerStore runs work against one character under its exclusive lock.
// fn returning an error rolls back every change it made.
type LedgerStore interface {
	WithCharacterLock(ctx context.Context, characterID string, fn func(LedgerTx) error) error
}

// CharacterStore reads and registers characters.
type CharacterStore interface {
	// PutCharacter creates a character or refreshes its profile and level.
	// Balances and scores of an existing row change only through the ledger.
	PutCharacter(ctx context.Context, rec CharacterRecord) error
	GetCharacter(ctx context.Context, characterID string) (CharacterRecord, error)
	GetHoldings(ctx context.Context, characterID string) (catalog.Holdings, error)
}

// CatalogStore persists power definitions.
type CatalogStore interface {
	PutPowers(ctx context.Context, powers []catalog.Power) error
	ListPowers(ctx context.Context) ([]catalog.Power, error)
}

// AuditStore reads the append-only logs, newest first.
type AuditStore interface {
	ListAudit(ctx context.Context, characterID string, limit int) ([]AuditRecord, error)
	ListFeedback(ctx context.Context, characterID string, limit int) ([]FeedbackRecord, error)
}

// Store is the full persistence surface of the allocation service.
type Store interface {
	LedgerStore
	CharacterStore
	CatalogStore
	AuditStore
	Close() error
}
