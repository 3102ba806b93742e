// Package export turns a rendered resume page into a downloadable PDF or PNG.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
	"resume-builder/resume/render"
)

// Format is an export output type.
type Format string

const (
	FormatPDF Format = "pdf"
	FormatPNG Format = "png"
)

// ErrUnknownFormat is returned for formats other than pdf and png.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts "pdf" or "png" in any case.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatPDF, FormatPNG:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
}

// ContentType is the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "application/pdf"
}

// FileName is the download name offered to the browser.
func (f Format) FileName() string {
	return "resume." + string(f)
}

// Renderer converts a complete HTML page to bytes of the given format.
type Renderer interface {
	Render(ctx context.Context, html []byte, format Format) ([]byte, error)
}

// Service renders a Document with a template and hands the page to a Renderer.
type Service struct {
	renderer Renderer
}

func NewService(renderer Renderer) *Service {
	return &Service{renderer: renderer}
}

// Export returns the exported bytes and the template actually used.
func (s *Service) Export(ctx context.Context, id model.TemplateID, doc model.Document, format Format) ([]byte, model.TemplateID, error) {
	resolved := render.Resolve(id)
	page, err := render.HTML(resolved, doc)
	if err != nil {
		metrics.IncExport(string(format), "error")
		return nil, resolved, fmt.Errorf("render %s: %w", resolved, err)
	}
	start := time.Now()
	out, err := s.renderer.Render(ctx, page, format)
	if err != nil {
		metrics.IncExport(string(format), "error")
		telemetry.Error("export.failed", map[string]any{
			"template": string(resolved),
			"format":   string(format),
			"error":    err,
		})
		return nil, resolved, err
	}
	metrics.IncExport(string(format), "ok")
	telemetry.Info("export.ok", map[string]any{
		"template":    string(resolved),
		"format":      string(format),
		"bytes":       len(out),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return out, resolved, nil
}
