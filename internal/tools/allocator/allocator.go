// Package allocator implements the allocation engine command-line tool.
package allocator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/platform/errors"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/platform/logging"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/random"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/app"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/adherence"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/catalog"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/decision"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/strategy"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/provider"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/storage"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/storage/sqlite"
	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

// Run executes one allocator operation and writes its JSON report to out.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if strings.TrimSpace(cfg.Mode) == "" {
		return errors.New("-mode is required")
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open allocation store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(errOut, "Warning: close allocation store: %v\n", err)
		}
	}()

	switch cfg.Mode {
	case ModeCatalog:
		return runCatalog(ctx, cfg, store, out)
	case ModeCharacter:
		return runCharacter(ctx, cfg, store, out)
	case ModeAudit:
		return runAudit(ctx, cfg, store, out)
	}

	deps, err := buildDependencies(ctx, cfg, store, logger)
	if err != nil {
		return err
	}
	if strings.TrimSpace(cfg.CharacterID) == "" {
		return errors.New("-character-id is required")
	}

	switch cfg.Mode {
	case ModeGrant, ModeAllocate, ModeUnlock, ModeBattle:
		return runProgression(ctx, cfg, deps, out)
	case ModeBid:
		return runBid(ctx, cfg, deps, out)
	case ModeSettle:
		return runSettle(ctx, cfg, deps, out)
	default:
		return fmt.Errorf("unknown mode %q", cfg.Mode)
	}
}

func buildDependencies(ctx context.Context, cfg Config, store storage.Store, logger *zap.Logger) (app.Dependencies, error) {
	powers, err := store.ListPowers(ctx)
	if err != nil {
		return app.Dependencies{}, err
	}
	cat, err := catalog.New(powers)
	if err != nil {
		return app.Dependencies{}, err
	}
	decider, err := buildProvider(cfg)
	if err != nil {
		return app.Dependencies{}, err
	}
	seed, err := random.ResolveSeed(cfg.Seed)
	if err != nil {
		return app.Dependencies{}, err
	}
	logger.Debug("allocator ready", zap.Int("powers", cat.Len()), zap.Int64("seed", seed), zap.String("provider", cfg.Provider))
	return app.Dependencies{
		Store:    store,
		Catalog:  cat,
		Provider: decider,
		Roller:   adherence.NewRoller(seed),
		Logger:   logger,
	}, nil
}

func buildProvider(cfg Config) (decision.Provider, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		if strings.TrimSpace(cfg.OpenAIKey) == "" {
			return nil, errors.New("BLANKWARS_OPENAI_API_KEY is required for the openai provider")
		}
		return provider.NewOpenAI(provider.OpenAIConfig{
			ChatURL: cfg.OpenAIURL,
			APIKey:  cfg.OpenAIKey,
			Model:   cfg.OpenAIModel,
		}), nil
	case ProviderScripted, "":
		answers, err := parseAnswers(cfg.Answers)
		if err != nil {
			return nil, err
		}
		if len(answers) == 0 {
			return provider.FirstOption("scripted first choice"), nil
		}
		return provider.NewScripted(answers...), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

func runCatalog(ctx context.Context, cfg Config, store storage.Store, out io.Writer) error {
	if strings.TrimSpace(cfg.CatalogPath) == "" {
		powers, err := store.ListPowers(ctx)
		if err != nil {
			return err
		}
		return writeJSON(out, map[string]any{"powers": powers})
	}

	f, err := os.Open(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	cat, err := catalog.Load(f)
	if err != nil {
		return err
	}
	if err := store.PutPowers(ctx, cat.Powers()); err != nil {
		return err
	}
	return writeJSON(out, map[string]any{"imported": cat.Len()})
}

func runCharacter(ctx context.Context, cfg Config, store storage.Store, out io.Writer) error {
	if strings.TrimSpace(cfg.CharacterID) == "" {
		return errors.New("-character-id is required")
	}
	if strings.TrimSpace(cfg.Name) != "" {
		for _, score := range []int{cfg.Adherence, cfg.Bond} {
			if err := adherence.ValidateScore(score); err != nil {
				return err
			}
		}
		if err := store.PutCharacter(ctx, storage.CharacterRecord{
			Character: catalog.Character{
				ID:              cfg.CharacterID,
				Name:            cfg.Name,
				Archetype:       cfg.Archetype,
				Species:         cfg.Species,
				BaseCharacterID: cfg.BaseCharacterID,
				Level:           cfg.Level,
			},
			Adherence: cfg.Adherence,
			Bond:      cfg.Bond,
		}); err != nil {
			return err
		}
	}
	rec, err := store.GetCharacter(ctx, cfg.CharacterID)
	if err != nil {
		return err
	}
	holdings, err := store.GetHoldings(ctx, cfg.CharacterID)
	if err != nil {
		return err
	}
	return writeJSON(out, map[string]any{"character": rec, "powers": holdings})
}

func runAudit(ctx context.Context, cfg Config, store storage.Store, out io.Writer) error {
	if strings.TrimSpace(cfg.CharacterID) == "" {
		return errors.New("-character-id is required")
	}
	records, err := store.ListAudit(ctx, cfg.CharacterID, cfg.Limit)
	if err != nil {
		return err
	}
	feedback, err := store.ListFeedback(ctx, cfg.CharacterID, cfg.Limit)
	if err != nil {
		return err
	}
	return writeJSON(out, map[string]any{"decisions": records, "feedback": feedback})
}

func runProgression(ctx context.Context, cfg Config, deps app.Dependencies, out io.Writer) error {
	svc, err := app.NewProgression(deps)
	if err != nil {
		return err
	}
	switch cfg.Mode {
	case ModeGrant:
		points, err := parsePoints(cfg.Points)
		if err != nil {
			return err
		}
		result, err := svc.GrantPoints(ctx, app.GrantRequest{
			CharacterID: cfg.CharacterID,
			Source:      cfg.Source,
			Points:      points,
			Plan:        splitList(cfg.Plan),
		})
		return reportPartial(out, result, err)
	case ModeAllocate:
		result, err := svc.Allocate(ctx, cfg.CharacterID, splitList(cfg.Plan))
		return reportPartial(out, result, err)
	case ModeUnlock:
		if strings.TrimSpace(cfg.PowerID) == "" {
			return errors.New("-power-id is required")
		}
		result, err := svc.CoachUnlock(ctx, app.CoachUnlockRequest{CharacterID: cfg.CharacterID, PowerID: cfg.PowerID})
		if err != nil {
			return err
		}
		return writeJSON(out, result)
	default:
		if err := svc.SetBattleLock(ctx, cfg.CharacterID, cfg.InBattle); err != nil {
			return err
		}
		return writeJSON(out, map[string]any{"character_id": cfg.CharacterID, "in_battle": cfg.InBattle})
	}
}

func runBid(ctx context.Context, cfg Config, deps app.Dependencies, out io.Writer) error {
	svc, err := app.NewAuction(deps)
	if err != nil {
		return err
	}
	result, err := svc.ProcessBid(ctx, app.BidRequest{
		AuctionID:   cfg.AuctionID,
		CharacterID: cfg.CharacterID,
		CurrentBid:  cfg.CurrentBid,
		Strategy: strategy.BidStrategy{
			TargetMin:   cfg.TargetMin,
			TargetMax:   cfg.TargetMax,
			AbsoluteCap: cfg.Cap,
		},
	})
	if err != nil {
		return err
	}
	return writeJSON(out, result)
}

func runSettle(ctx context.Context, cfg Config, deps app.Dependencies, out io.Writer) error {
	branch := adherence.Branch(strings.ToLower(strings.TrimSpace(cfg.Branch)))
	if cfg.AuctionID != "" {
		svc, err := app.NewAuction(deps)
		if err != nil {
			return err
		}
		result, err := svc.Settle(ctx, app.AuctionOutcome{
			AuctionID:   cfg.AuctionID,
			CharacterID: cfg.CharacterID,
			Branch:      branch,
			Won:         cfg.Won,
			Profit:      cfg.Profit,
		})
		if err != nil {
			return err
		}
		return writeJSON(out, result)
	}

	svc, err := app.NewProgression(deps)
	if err != nil {
		return err
	}
	result, err := svc.SettleEpisode(ctx, app.SettleRequest{
		CharacterID: cfg.CharacterID,
		EpisodeID:   cfg.EpisodeID,
		Branch:      branch,
		Outcome:     adherence.Outcome{Won: cfg.Won, Profit: cfg.Profit},
	})
	if err != nil {
		return err
	}
	return writeJSON(out, result)
}

// reportPartial prints what an episode committed before failing, then
// returns the failure.
func reportPartial(out io.Writer, result app.EpisodeResult, runErr error) error {
	if result.EpisodeID != "" {
		if err := writeJSON(out, result); err != nil {
			return err
		}
	}
	return runErr
}

func writeJSON(out io.Writer, value any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// Describe renders err for a player from the same status a remote caller
// would receive: the localized message and code for domain errors, the raw
// error otherwise.
func Describe(err error, locale string) string {
	st := status.Convert(apperrors.HandleError(err, locale))
	var (
		code  string
		msg   string
		until string
	)
	for _, detail := range st.Details() {
		switch d := detail.(type) {
		case *errdetails.ErrorInfo:
			code = d.Reason
			until = d.Metadata["until"]
		case *errdetails.LocalizedMessage:
			msg = d.Message
		}
	}
	if code == "" || msg == "" {
		return err.Error()
	}
	if until != "" {
		msg += " Locked until " + until + "."
	}
	return fmt.Sprintf("%s [%s] (%v)", msg, code, err)
}
