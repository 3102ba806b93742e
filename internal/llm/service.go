package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"resume-builder/internal/shared/telemetry"
)

// Generation types.
const (
	TypeSummary  = "summary"
	TypeBullets  = "bullets"
	TypeOptimize = "optimize"
)

var (
	// ErrInvalidRequest wraps validation failures of a GenerateRequest.
	ErrInvalidRequest = errors.New("invalid generation request")
	// ErrNoFileContent is returned when a parse request carries no text.
	ErrNoFileContent = errors.New("no file content provided")
	// ErrUnparseable is returned when the parse response is not a JSON object.
	ErrUnparseable = errors.New("parse response is not valid JSON")
)

// MissingFieldError reports a field the chosen generation type needs. It
// matches ErrInvalidRequest under errors.Is.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrInvalidRequest, e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrInvalidRequest }

// GenerateRequest is the content generation contract.
type GenerateRequest struct {
	Type               string `json:"type" validate:"required,oneof=summary bullets optimize"`
	JobRole            string `json:"jobRole" validate:"required_if=Type summary"`
	ExperienceLevel    string `json:"experienceLevel"`
	Company            string `json:"company"`
	Position           string `json:"position" validate:"required_if=Type bullets"`
	CurrentDescription string `json:"currentDescription" validate:"required_if=Type optimize"`
	TargetRole         string `json:"targetRole" validate:"required_if=Type optimize"`
}

// Service runs generation and parse requests against a Completer.
type Service struct {
	completer Completer
	validate  *validator.Validate
}

// NewService wraps completer; a nil completer behaves like PlaceholderCompleter.
func NewService(completer Completer) *Service {
	if completer == nil {
		completer = PlaceholderCompleter{}
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Service{completer: completer, validate: v}
}

// Generate returns model-written text for req.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "required_if" {
			return "", &MissingFieldError{Field: verrs[0].Field()}
		}
		return "", fmt.Errorf("%w: %s", ErrInvalidRequest, validationMessage(err))
	}
	messages, ok := BuildGeneratePrompt(req)
	if !ok {
		return "", fmt.Errorf("%w: unknown type %q", ErrInvalidRequest, req.Type)
	}
	subject := req.JobRole
	if subject == "" {
		subject = req.Position
	}
	telemetry.Info("llm.generate.start", map[string]any{
		"type":    req.Type,
		"subject": subject,
	})
	content, err := s.completer.Complete(ctx, messages, CompleteOptions{})
	if err != nil {
		telemetry.Error("llm.generate.failed", map[string]any{
			"type":  req.Type,
			"error": err,
		})
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}
	telemetry.Info("llm.generate.ok", map[string]any{"type": req.Type})
	return content, nil
}

// Parse asks the provider to turn résumé text into a Document-shaped JSON object.
func (s *Service) Parse(ctx context.Context, fileContent, fileName string) (json.RawMessage, error) {
	if strings.TrimSpace(fileContent) == "" {
		return nil, ErrNoFileContent
	}
	telemetry.Info("llm.parse.start", map[string]any{"file_name": fileName})
	content, err := s.completer.Complete(ctx, BuildParsePrompt(fileContent), CompleteOptions{JSON: true})
	if err != nil {
		telemetry.Error("llm.parse.failed", map[string]any{
			"file_name": fileName,
			"error":     err,
		})
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	cleaned := CleanJSONBlock(content)
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &probe); err != nil {
		telemetry.Warn("llm.parse.unparseable", map[string]any{
			"file_name": fileName,
			"bytes":     len(content),
		})
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	telemetry.Info("llm.parse.ok", map[string]any{"file_name": fileName})
	return json.RawMessage(cleaned), nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		ve := verrs[0]
		return fmt.Sprintf("%s - %s", ve.Field(), ve.Tag())
	}
	return "invalid request"
}
