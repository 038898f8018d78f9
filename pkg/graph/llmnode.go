package graph

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/llm"
	"github.com/aretw0/lattice/pkg/ports"
)

// DefaultMaxRetries bounds the rate-limit retry loop when MaxRetries is unset.
const DefaultMaxRetries = 3

// defaultBackoff is the initial retry delay; it doubles per attempt.
const defaultBackoff = time.Second

// LLMNode renders a prompt template against the state and calls the
// external completion service.
//
// Rate-limit-class failures (llm.IsRateLimit) are retried up to MaxRetries
// with exponential backoff; exhausting the retries is fatal. Any other
// failure is fatal immediately and is not retried. On success the text
// result is written to OutputKey and token usage is emitted through the
// reserved metering key for the executor to fold into the run summary.
type LLMNode struct {
	Model          string
	PromptTemplate string
	OutputKey      string
	SystemPrompt   string
	MaxRetries     int
	Params         map[string]any

	Client ports.CompletionClient
	Next   Node

	// Backoff overrides the initial retry delay. Zero means one second.
	Backoff time.Duration
	Logger  *slog.Logger
}

// NewLLM creates an LLMNode with the default retry bound.
func NewLLM(client ports.CompletionClient, model, promptTemplate, outputKey string, next Node) *LLMNode {
	return &LLMNode{
		Client:         client,
		Model:          model,
		PromptTemplate: promptTemplate,
		OutputKey:      outputKey,
		MaxRetries:     DefaultMaxRetries,
		Next:           next,
	}
}

func (n *LLMNode) Execute(ctx context.Context, state *domain.State) (Node, error) {
	log := orNop(n.Logger)

	prompt := RenderTemplate(n.PromptTemplate, state, log)

	messages := []ports.Message{}
	if n.SystemPrompt != "" {
		messages = append(messages, ports.Message{Role: ports.RoleSystem, Content: n.SystemPrompt})
	}
	messages = append(messages, ports.Message{Role: ports.RoleUser, Content: prompt})

	req := ports.CompletionRequest{
		Model:    n.Model,
		Messages: messages,
		Params:   n.Params,
	}

	maxRetries := n.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	delay := n.Backoff
	if delay <= 0 {
		delay = defaultBackoff
	}

	var resp *ports.CompletionResponse
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err = n.Client.Complete(ctx, req)
		if err == nil {
			break
		}
		if !llm.IsRateLimit(err) {
			return nil, fmt.Errorf("completion failed for model %q: %w", n.Model, err)
		}
		log.Warn("rate limit hit, backing off",
			"model", n.Model, "attempt", attempt+1, "max_retries", maxRetries, "delay", delay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	if err != nil {
		return nil, fmt.Errorf("completion failed after %d retries for model %q: %w", maxRetries, n.Model, err)
	}
	if resp.Text == "" {
		return nil, fmt.Errorf("completion for model %q returned empty text", n.Model)
	}

	state.Set(n.OutputKey, resp.Text)
	state.Set(domain.KeyRunMetadata, map[string]any{
		"prompt_tokens": resp.PromptTokens,
		"output_tokens": resp.CompletionTokens,
		"total_tokens":  resp.PromptTokens + resp.CompletionTokens,
		"model":         n.Model,
	})
	log.Debug("completion stored",
		"model", n.Model, "output_key", n.OutputKey,
		"total_tokens", resp.PromptTokens+resp.CompletionTokens)

	return n.Next, nil
}

func (n *LLMNode) Kind() string { return KindLLM }
func (n *LLMNode) sealed()      {}

var placeholderRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// RenderTemplate substitutes {key} placeholders with current state values.
// Double-brace syntax ({{key}}) is normalized to single braces first. A
// placeholder whose key is missing from the state is left literal and
// logged, rather than aborting the run.
func RenderTemplate(template string, state *domain.State, log *slog.Logger) string {
	normalized := strings.ReplaceAll(strings.ReplaceAll(template, "{{", "{"), "}}", "}")

	return placeholderRe.ReplaceAllStringFunc(normalized, func(match string) string {
		key := match[1 : len(match)-1]
		value, ok := state.Lookup(key)
		if !ok {
			orNop(log).Warn("missing key for prompt template, leaving placeholder", "key", key)
			return match
		}
		return fmt.Sprintf("%v", value)
	})
}
