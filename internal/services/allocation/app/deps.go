package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/platform/id"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/platform/logging"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/platform/timeouts"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/adherence"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/catalog"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/decision"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/app"

// Dependencies wires the allocation services.
type Dependencies struct {
	Store    storage.Store
	Catalog  *catalog.Catalog
	Provider decision.Provider
	Roller   adherence.Roller
	Logger   *zap.Logger

	// Clock defaults to time.Now.
	Clock func() time.Time
	// NewID defaults to id.NewID.
	NewID func() (string, error)
	// LockoutDuration defaults to timeouts.CoachLockout.
	LockoutDuration time.Duration
}

func (d Dependencies) validate() error {
	switch {
	case d.Store == nil:
		return errors.New("store is required")
	case d.Catalog == nil:
		return errors.New("catalog is required")
	case d.Provider == nil:
		return errors.New("decision provider is required")
	case d.Roller == nil:
		return errors.New("roller is required")
	}
	return nil
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.NewID == nil {
		d.NewID = id.NewID
	}
	if d.LockoutDuration <= 0 {
		d.LockoutDuration = timeouts.CoachLockout
	}
	return d
}

// runtime is shared by Progression and Auction.
type runtime struct {
	deps   Dependencies
	tracer trace.Tracer
}

func newRuntime(deps Dependencies) (runtime, error) {
	if err := deps.validate(); err != nil {
		return runtime{}, err
	}
	return runtime{deps: deps.withDefaults(), tracer: otel.Tracer(instrumentationName)}, nil
}

func (r runtime) now() time.Time {
	return r.deps.Clock().UTC()
}

func (r runtime) newID() (string, error) {
	value, err := r.deps.NewID()
	if err != nil {
		return "", fmt.Errorf("new id: %w", err)
	}
	return value, nil
}

func (r runtime) log(ctx context.Context) *zap.Logger {
	return logging.For(ctx, r.deps.Logger)
}

func (r runtime) start(ctx context.Context, name, characterID string) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("character.id", characterID)))
}

// inLedger runs fn under the character lock with the ledger transaction timeout.
func (r runtime) inLedger(ctx context.Context, characterID string, fn func(storage.LedgerTx) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.LedgerTransaction)
	defer cancel()
	return r.deps.Store.WithCharacterLock(ctx, characterID, fn)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
	}
	span.End()
}

// snapshot reads a character outside any lock for phase-one decisions.
func (r runtime) snapshot(ctx context.Context, characterID string) (storage.CharacterRecord, catalog.Holdings, error) {
	rec, err := r.deps.Store.GetCharacter(ctx, characterID)
	if err != nil {
		return storage.CharacterRecord{}, nil, err
	}
	holdings, err := r.deps.Store.GetHoldings(ctx, characterID)
	if err != nil {
		return storage.CharacterRecord{}, nil, err
	}
	return rec, holdings, nil
}

func persona(rec storage.CharacterRecord) decision.Persona {
	ch := rec.Character
	return decision.Persona{
		CharacterID:       ch.ID,
		Name:              ch.Name,
		Archetype:         ch.Archetype,
		Species:           ch.Species,
		Level:             ch.Level,
		Personality:       ch.Personality,
		ConversationStyle: ch.ConversationStyle,
		Adherence:         rec.Adherence,
		Bond:              rec.Bond,
	}
}

func battleLocked(characterID string) error {
	return storage.ErrCharacterLocked.Detail(map[string]string{"character": characterID, "reason": "in_battle"})
}
