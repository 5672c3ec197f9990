package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/platform/timeouts"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/decision"
)

const (
	defaultChatURL = "https://api.openai.com/v1/chat/completions"
	defaultModel   = "gpt-4o-mini"
)

// OpenAIConfig configures the chat completions endpoint and HTTP behavior.
type OpenAIConfig struct {
	ChatURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// OpenAI asks an OpenAI-compatible chat model to pick one lettered option.
type OpenAI struct {
	cfg OpenAIConfig
}

var _ decision.Provider = (*OpenAI)(nil)

// NewOpenAI builds an OpenAI decision provider.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if strings.TrimSpace(cfg.ChatURL) == "" {
		cfg.ChatURL = defaultChatURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = timeouts.DecisionProvider
	}
	return &OpenAI{cfg: cfg}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Decide sends the request as a JSON instruction block and parses a
// {"choice": "...", "rationale": "..."} object back. It does not validate the
// letter; decision.Resolve does.
func (p *OpenAI) Decide(ctx context.Context, req decision.Request) (decision.Response, error) {
	apiKey := strings.TrimSpace(p.cfg.APIKey)
	if apiKey == "" {
		return decision.Response{}, fmt.Errorf("api key is required")
	}
	brief, err := json.Marshal(req)
	if err != nil {
		return decision.Response{}, fmt.Errorf("marshal decision request: %w", err)
	}

	body := map[string]any{
		"model": p.cfg.Model,
		"messages": []chatMessage{
			{Role: "system", Content: systemInstruction(req.Variant)},
			{Role: "user", Content: string(brief)},
		},
		"response_format": map[string]string{"type": "json_object"},
	}
	if p.cfg.Temperature > 0 {
		body["temperature"] = p.cfg.Temperature
	}
	requestBody, err := json.Marshal(body)
	if err != nil {
		return decision.Response{}, fmt.Errorf("marshal chat request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.ChatURL, bytes.NewReader(requestBody))
	if err != nil {
		return decision.Response{}, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	res, err := p.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		return decision.Response{}, fmt.Errorf("chat request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		errBody, err := io.ReadAll(io.LimitReader(res.Body, 4096))
		if err != nil {
			return decision.Response{}, fmt.Errorf("read chat error body: %w", err)
		}
		return decision.Response{}, fmt.Errorf("chat request status %d: %s", res.StatusCode, strings.TrimSpace(string(errBody)))
	}

	var payload struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return decision.Response{}, fmt.Errorf("decode chat response: %w", err)
	}
	if len(payload.Choices) == 0 || strings.TrimSpace(payload.Choices[0].Message.Content) == "" {
		return decision.Response{}, fmt.Errorf("chat response missing content")
	}
	return parseAnswer(payload.Choices[0].Message.Content)
}

func parseAnswer(content string) (decision.Response, error) {
	var answer struct {
		Choice    string `json:"choice"`
		Rationale string `json:"rationale"`
		Dialogue  string `json:"dialogue"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &answer); err != nil {
		return decision.Response{}, fmt.Errorf("decode decision answer: %w", err)
	}
	rationale := answer.Rationale
	if strings.TrimSpace(rationale) == "" {
		rationale = answer.Dialogue
	}
	return decision.Response{Letter: answer.Choice, Rationale: rationale}, nil
}

func systemInstruction(variant decision.Variant) string {
	var situation string
	switch variant {
	case decision.VariantAuction:
		situation = "You are bidding in a storage locker auction and ignoring your coach's plan."
	default:
		situation = "You are spending your own progression points and ignoring your coach's plan."
	}
	return situation + " The user message is a JSON brief with your persona, balances, and a lettered option list. " +
		`Pick exactly one option label and reply with a JSON object {"choice": "<label>", "rationale": "<one or two sentences to your coach>"}.`
}
