// Package decision defines the multiple-choice contract used when a character
// makes their own call: a bounded, lettered option list goes out and exactly one
// offered letter plus a rationale must come back.
package decision

import (
	"context"
	"strings"

	apperrors "github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/platform/errors"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/ledger"
)

// MaxOptions bounds the option list; labels run A through F.
const MaxOptions = 6

const labels = "ABCDEF"

var (
	// ErrInvalidDecision indicates a response whose letter was not offered
	// or that carried no rationale.
	ErrInvalidDecision = apperrors.New(apperrors.CodeInvalidDecision, "invalid decision")
	// ErrNoOptions indicates a request built with an empty option list.
	ErrNoOptions = apperrors.New(apperrors.CodeInvalidDecision, "no options to decide between")
)

// Variant names the allocation flow asking for a decision.
type Variant string

const (
	VariantProgression Variant = "progression"
	VariantAuction     Variant = "auction"
)

// Option is one labeled choice.
type Option struct {
	Label   string `json:"label"`
	Action  string `json:"action"`
	PowerID string `json:"power_id,omitempty"`
	Name    string `json:"name,omitempty"`
	Tier    string `json:"tier,omitempty"`
	Pool    string `json:"pool,omitempty"`
	Cost    int    `json:"cost,omitempty"`
	Amount  int    `json:"amount,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// LabelOptions keeps at most MaxOptions entries and letters them in order.
func LabelOptions(options []Option) []Option {
	n := min(len(options), MaxOptions)
	out := make([]Option, n)
	for i := 0; i < n; i++ {
		out[i] = options[i]
		out[i].Label = labels[i : i+1]
	}
	return out
}

// Persona carries the character attributes a provider may use.
type Persona struct {
	CharacterID       string   `json:"character_id"`
	Name              string   `json:"name"`
	Archetype         string   `json:"archetype,omitempty"`
	Species           string   `json:"species,omitempty"`
	Level             int      `json:"level"`
	Personality       []string `json:"personality,omitempty"`
	ConversationStyle string   `json:"conversation_style,omitempty"`
	Adherence         int      `json:"adherence"`
	Bond              int      `json:"bond"`
}

// AuctionContext describes the bid moment for auction requests.
type AuctionContext struct {
	CurrentBid  int `json:"current_bid"`
	TargetMin   int `json:"target_min"`
	TargetMax   int `json:"target_max"`
	AbsoluteCap int `json:"absolute_cap"`
}

// Request is everything sent to a provider.
type Request struct {
	Variant  Variant         `json:"variant"`
	Persona  Persona         `json:"persona"`
	Balances ledger.Pools    `json:"balances"`
	Auction  *AuctionContext `json:"auction,omitempty"`
	Scenario string          `json:"scenario,omitempty"`
	Options  []Option        `json:"options"`
}

// Response is the raw provider answer.
type Response struct {
	Letter    string `json:"choice"`
	Rationale string `json:"rationale"`
}

// Provider makes a choice on the character's behalf. Implementations may block
// on the network and must honor ctx.
type Provider interface {
	Decide(ctx context.Context, req Request) (Response, error)
}

// Choice is a validated response bound to the option it names.
type Choice struct {
	Option    Option `json:"option"`
	Letter    string `json:"letter"`
	Rationale string `json:"rationale"`
}

// Validate checks a request before it is sent.
func (r Request) Validate() error {
	if len(r.Options) == 0 {
		return ErrNoOptions
	}
	if len(r.Options) > MaxOptions {
		return ErrInvalidDecision.Detail(map[string]string{"reason": "too many options"})
	}
	return nil
}

// Resolve validates resp against the options offered in req. Surrounding
// whitespace and letter case are forgiven; anything else is rejected.
func Resolve(req Request, resp Response) (Choice, error) {
	letter := strings.ToUpper(strings.TrimSpace(resp.Letter))
	rationale := strings.TrimSpace(resp.Rationale)
	if letter == "" {
		return Choice{}, ErrInvalidDecision.Detail(map[string]string{"reason": "missing letter"})
	}
	if rationale == "" {
		return Choice{}, ErrInvalidDecision.Detail(map[string]string{"reason": "missing rationale", "letter": letter})
	}
	for _, opt := range req.Options {
		if opt.Label == letter {
			return Choice{Option: opt, Letter: letter, Rationale: rationale}, nil
		}
	}
	return Choice{}, ErrInvalidDecision.Detail(map[string]string{"reason": "letter not offered", "letter": resp.Letter})
}

// Decide sends req to p and resolves the answer.
func Decide(ctx context.Context, p Provider, req Request) (Choice, error) {
	if err := req.Validate(); err != nil {
		return Choice{}, err
	}
	resp, err := p.Decide(ctx, req)
	if err != nil {
		return Choice{}, apperrors.Wrap(apperrors.CodeProviderUnavailable, "decision provider failed", err)
	}
	return Resolve(req, resp)
}
