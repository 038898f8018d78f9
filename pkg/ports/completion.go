package ports

import "context"

// Message is one role/content entry in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Standard message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// CompletionRequest is the input to the external completion service.
type CompletionRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Params   map[string]any `json:"params,omitempty"`
}

// CompletionResponse is the output of the external completion service.
type CompletionResponse struct {
	Text             string `json:"text"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
}

// CompletionClient is the contract the LLM node consumes. Implementations
// wrap an arbitrary network service returning generated text and token
// counts. Calls are synchronous and may block; the runtime imposes no
// timeout beyond the node's own bounded retry loop.
//
// Failure modes matter: rate-limit-class errors must satisfy
// llm.IsRateLimit so the node can retry them; any other error is treated
// as fatal and ends the run.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
