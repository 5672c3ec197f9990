package allocator

import (
	"flag"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	platformcmd "github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/platform/cmd"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/platform/config"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/ledger"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/provider"
)

// Modes accepted by -mode.
const (
	ModeCatalog   = "catalog"
	ModeCharacter = "character"
	ModeGrant     = "grant"
	ModeAllocate  = "allocate"
	ModeUnlock    = "unlock"
	ModeBid       = "bid"
	ModeSettle    = "settle"
	ModeBattle    = "battle"
	ModeAudit     = "audit"
)

// Decision providers accepted by -provider.
const (
	ProviderOpenAI   = "openai"
	ProviderScripted = "scripted"
)

// Config holds allocator command configuration.
type Config struct {
	DBPath      string        `env:"BLANKWARS_ALLOCATOR_DB_PATH"`
	CatalogPath string        `env:"BLANKWARS_ALLOCATOR_CATALOG_PATH"`
	Provider    string        `env:"BLANKWARS_ALLOCATOR_PROVIDER" envDefault:"scripted"`
	Seed        int64         `env:"BLANKWARS_ALLOCATOR_SEED"`
	Timeout     time.Duration `env:"BLANKWARS_ALLOCATOR_TIMEOUT" envDefault:"2m"`
	LogLevel    string        `env:"BLANKWARS_LOG_LEVEL" envDefault:"info"`
	LogFormat   string        `env:"BLANKWARS_LOG_FORMAT" envDefault:"json"`

	OpenAIURL   string `env:"BLANKWARS_OPENAI_CHAT_URL"`
	OpenAIKey   string `env:"BLANKWARS_OPENAI_API_KEY"`
	OpenAIModel string `env:"BLANKWARS_OPENAI_MODEL"`

	Mode        string
	CharacterID string
	PowerID     string
	Plan        string
	Points      string
	Source      string
	Answers     string

	Name            string
	Archetype       string
	Species         string
	BaseCharacterID string
	Level           int
	Adherence       int
	Bond            int

	AuctionID  string
	CurrentBid int
	TargetMin  int
	TargetMax  int
	Cap        int

	EpisodeID string
	Branch    string
	Won       bool
	Profit    int

	InBattle bool
	Limit    int
}

// ParseConfig loads environment defaults and then parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "allocation.db")
	}
	cfg.Level = 1
	cfg.Adherence = 50
	cfg.Bond = 50
	cfg.Limit = 20

	fs.StringVar(&cfg.Mode, "mode", "", "operation: catalog|character|grant|allocate|unlock|bid|settle|battle|audit")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to allocation sqlite database (default: BLANKWARS_ALLOCATOR_DB_PATH or data/allocation.db)")
	fs.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "power catalog YAML file to import (catalog mode)")
	fs.StringVar(&cfg.Provider, "provider", cfg.Provider, "decision provider: openai|scripted")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "gate roller seed (0 = random)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug|info|warn|error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: json|console")

	fs.StringVar(&cfg.CharacterID, "character-id", "", "character ID")
	fs.StringVar(&cfg.PowerID, "power-id", "", "power the coach wants unlocked (unlock mode)")
	fs.StringVar(&cfg.Plan, "plan", "", "comma-separated power IDs the coach wants, in order")
	fs.StringVar(&cfg.Points, "points", "", "points to grant, e.g. skill=3,archetype=1")
	fs.StringVar(&cfg.Source, "source", "cli", "where the granted points came from")
	fs.StringVar(&cfg.Answers, "answers", "", "scripted answers as LETTER:rationale separated by |")

	fs.StringVar(&cfg.Name, "name", "", "character name (character mode)")
	fs.StringVar(&cfg.Archetype, "archetype", "", "character archetype (character mode)")
	fs.StringVar(&cfg.Species, "species", "", "character species (character mode)")
	fs.StringVar(&cfg.BaseCharacterID, "base-character-id", "", "base character for signature powers (character mode)")
	fs.IntVar(&cfg.Level, "level", cfg.Level, "character level (character mode)")
	fs.IntVar(&cfg.Adherence, "adherence", cfg.Adherence, "initial adherence score 0-100 (character mode)")
	fs.IntVar(&cfg.Bond, "bond", cfg.Bond, "initial bond score 0-100 (character mode)")

	fs.StringVar(&cfg.AuctionID, "auction-id", "", "auction ID (bid and settle modes)")
	fs.IntVar(&cfg.CurrentBid, "current-bid", 0, "current highest bid")
	fs.IntVar(&cfg.TargetMin, "target-min", 0, "coach target range minimum")
	fs.IntVar(&cfg.TargetMax, "target-max", 0, "coach target range maximum")
	fs.IntVar(&cfg.Cap, "cap", 0, "coach absolute bid cap")

	fs.StringVar(&cfg.EpisodeID, "episode-id", "", "progression episode ID (settle mode)")
	fs.StringVar(&cfg.Branch, "branch", "", "branch taken: compliant|rogue (settle mode)")
	fs.BoolVar(&cfg.Won, "won", false, "whether the outcome was a win (settle mode)")
	fs.IntVar(&cfg.Profit, "profit", 0, "profit of the outcome (settle mode)")

	fs.BoolVar(&cfg.InBattle, "in-battle", false, "battle lock value (battle mode)")
	fs.IntVar(&cfg.Limit, "limit", cfg.Limit, "max audit rows to print")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parsePoints reads "pool=amount" pairs separated by commas.
func parsePoints(value string) (ledger.Pools, error) {
	var pools ledger.Pools
	for _, part := range splitList(value) {
		name, amount, ok := strings.Cut(part, "=")
		if !ok {
			return ledger.Pools{}, fmt.Errorf("points entry %q must be pool=amount", part)
		}
		pool, err := ledger.ParsePool(strings.TrimSpace(name))
		if err != nil {
			return ledger.Pools{}, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(amount))
		if err != nil {
			return ledger.Pools{}, fmt.Errorf("points entry %q: %w", part, err)
		}
		pools, err = pools.Credit(ledger.Of(pool, n))
		if err != nil {
			return ledger.Pools{}, err
		}
	}
	return pools, nil
}

// parseAnswers reads scripted answers as LETTER:rationale separated by "|".
func parseAnswers(value string) ([]provider.Answer, error) {
	var answers []provider.Answer
	for _, part := range strings.Split(value, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		letter, rationale, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("answer %q must be LETTER:rationale", part)
		}
		answers = append(answers, provider.Answer{
			Letter:    strings.TrimSpace(letter),
			Rationale: strings.TrimSpace(rationale),
		})
	}
	return answers, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
