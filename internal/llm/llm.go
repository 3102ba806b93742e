package llm

import (
	"context"
	"errors"
	"strings"
)

// Chat roles understood by every provider.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one chat turn sent to a provider.
type Message struct {
	Role    string
	Content string
}

// CompleteOptions tunes a single completion.
type CompleteOptions struct {
	// JSON asks the provider for a JSON object response.
	JSON bool
}

// Completer abstracts chat completion providers.
type Completer interface {
	Complete(ctx context.Context, messages []Message, opts CompleteOptions) (string, error)
}

var (
	// ErrRateLimited is returned when the provider answers HTTP 429.
	ErrRateLimited = errors.New("llm rate limited")
	// ErrCreditsExhausted is returned when the provider answers HTTP 402.
	ErrCreditsExhausted = errors.New("llm credits exhausted")
	// ErrNotConfigured is returned by the placeholder completer.
	ErrNotConfigured = errors.New("llm provider not configured")
	// ErrEmptyContent is returned when the provider produced no text.
	ErrEmptyContent = errors.New("llm returned no content")
)

// PlaceholderCompleter is used when no provider is configured.
type PlaceholderCompleter struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderCompleter) Complete(ctx context.Context, messages []Message, opts CompleteOptions) (string, error) {
	_ = ctx
	_ = messages
	_ = opts
	return "", ErrNotConfigured
}

// CleanJSONBlock removes markdown code fences around a JSON payload.
func CleanJSONBlock(text string) string {
	text = strings.ReplaceAll(text, "```json\n", "")
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```\n", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
