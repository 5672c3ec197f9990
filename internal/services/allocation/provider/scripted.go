package provider

import (
	"context"
	"errors"
	"sync"

	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/decision"
)

// ErrScriptExhausted is returned once every queued answer was used.
var ErrScriptExhausted = errors.New("scripted provider has no answers left")

// Answer is one queued provider reply. Err, when set, is returned instead.
type Answer struct {
	Letter    string
	Rationale string
	Err       error
}

// Scripted replays queued answers in order and records every request.
type Scripted struct {
	mu       sync.Mutex
	answers  []Answer
	requests []decision.Request
}

var _ decision.Provider = (*Scripted)(nil)

// NewScripted returns a provider that answers with answers, in order.
func NewScripted(answers ...Answer) *Scripted {
	return &Scripted{answers: answers}
}

// FirstOption returns a provider that always picks option A.
func FirstOption(rationale string) decision.Provider {
	return firstOption(rationale)
}

type firstOption string

func (f firstOption) Decide(_ context.Context, req decision.Request) (decision.Response, error) {
	if len(req.Options) == 0 {
		return decision.Response{}, decision.ErrNoOptions
	}
	return decision.Response{Letter: req.Options[0].Label, Rationale: string(f)}, nil
}

func (s *Scripted) Decide(ctx context.Context, req decision.Request) (decision.Response, error) {
	if err := ctx.Err(); err != nil {
		return decision.Response{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if len(s.answers) == 0 {
		return decision.Response{}, ErrScriptExhausted
	}
	next := s.answers[0]
	s.answers = s.answers[1:]
	if next.Err != nil {
		return decision.Response{}, next.Err
	}
	return decision.Response{Letter: next.Letter, Rationale: next.Rationale}, nil
}

// Requests returns a copy of every request seen so far.
func (s *Scripted) Requests() []decision.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]decision.Request, len(s.requests))
	copy(out, s.requests)
	return out
}
