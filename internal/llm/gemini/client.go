package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"resume-builder/internal/llm"
)

// DefaultModel is used when LLM_MODEL is empty.
const DefaultModel = "gemini-2.5-flash"

// Client implements llm.Completer for Google Gemini.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini completer.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

// Complete sends the user turns as one prompt with system turns as the system instruction.
func (c *Client) Complete(ctx context.Context, messages []llm.Message, opts llm.CompleteOptions) (string, error) {
	system, user := splitMessages(messages)

	model := c.client.GenerativeModel(c.model)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if opts.JSON {
		model.SetTemperature(0)
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", mapError(err)
	}
	text, err := extractText(resp)
	if err != nil {
		return "", err
	}
	if opts.JSON {
		text = llm.CleanJSONBlock(text)
	}
	return text, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func splitMessages(messages []llm.Message) (string, string) {
	var system, user []string
	for _, m := range messages {
		if m.Role == llm.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		user = append(user, m.Content)
	}
	return strings.Join(system, "\n\n"), strings.Join(user, "\n\n")
}

type httpCoder interface {
	HTTPCode() int
}

func mapError(err error) error {
	code := 0
	var gerr *googleapi.Error
	var coder httpCoder
	switch {
	case errors.As(err, &gerr):
		code = gerr.Code
	case errors.As(err, &coder):
		code = coder.HTTPCode()
	}
	switch code {
	case http.StatusTooManyRequests:
		return llm.ErrRateLimited
	case http.StatusPaymentRequired:
		return llm.ErrCreditsExhausted
	}
	return fmt.Errorf("failed to generate content: %w", err)
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", llm.ErrEmptyContent
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", llm.ErrEmptyContent
	}
	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	text := strings.TrimSpace(strings.Join(parts, ""))
	if text == "" {
		return "", llm.ErrEmptyContent
	}
	return text, nil
}

var _ llm.Completer = (*Client)(nil)
