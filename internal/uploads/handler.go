package uploads

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resume-builder/internal/extract"
	"resume-builder/internal/llm"
	"resume-builder/internal/sessions"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/importer"
	"resume-builder/resume/store"
)

// MaxUploadBytes is the largest accepted resume file.
const MaxUploadBytes = 5 << 20

const (
	msgUnsupportedType = "Please upload a PDF, DOC, DOCX, or TXT file"
	msgTooLarge        = "File size must be less than 5MB"
)

// Parser turns extracted résumé text into a Document-shaped JSON object.
type Parser interface {
	Parse(ctx context.Context, fileContent, fileName string) (json.RawMessage, error)
}

// Archiver keeps a copy of an upload and returns the text extracted from it.
type Archiver interface {
	Archive(ctx context.Context, userID, fileName, mimeType string, data []byte) (string, error)
}

// Charger takes one AI credit per parse; refund returns it after a failure.
type Charger interface {
	Charge(ctx context.Context, userID string) (refund func(), err error)
}

// Handler accepts resume files and imports them into the caller's Store.
type Handler struct {
	sessions *sessions.Registry
	parser   Parser
	archive  Archiver
	credits  Charger
	newID    func() string
}

// NewHandler constructs a Handler. archive may be nil, in which case
// uploads are extracted in memory and not kept.
func NewHandler(reg *sessions.Registry, parser Parser, archive Archiver) *Handler {
	return &Handler{
		sessions: reg,
		parser:   parser,
		archive:  archive,
		newID:    uuid.NewString,
	}
}

// UseCredits meters the parse step against ch.
func (h *Handler) UseCredits(ch Charger) *Handler {
	h.credits = ch
	return h
}

// RegisterRoutes attaches the upload route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, mw...), h.upload)
	rg.POST("/resume/upload", handlers...)
}

type uploadResponse struct {
	State    store.State     `json:"state"`
	Report   importer.Report `json:"report"`
	FileName string          `json:"fileName"`
	MimeType string          `json:"mimeType"`
}

func (h *Handler) upload(c *gin.Context) {
	c.Set("operation", "import")
	userID := middleware.UserIDFromContext(c)
	// Multipart framing adds a little on top of the file itself.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+(64<<10))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.reject(c, http.StatusBadRequest, "file_too_large", msgTooLarge)
			return
		}
		h.reject(c, http.StatusBadRequest, "validation_error", "file is required")
		return
	}
	if fileHeader.Size > MaxUploadBytes {
		h.reject(c, http.StatusBadRequest, "file_too_large", msgTooLarge)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.reject(c, http.StatusBadRequest, "validation_error", "unable to read file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		h.reject(c, http.StatusBadRequest, "validation_error", "unable to read file")
		return
	}
	if len(data) > MaxUploadBytes {
		h.reject(c, http.StatusBadRequest, "file_too_large", msgTooLarge)
		return
	}

	mimeType := extract.DetectType(fileHeader.Header.Get("Content-Type"), fileHeader.Filename, data)
	if mimeType == "" {
		h.reject(c, http.StatusBadRequest, "unsupported_type", msgUnsupportedType)
		return
	}

	ctx := c.Request.Context()
	text, err := h.extract(ctx, userID, fileHeader.Filename, mimeType, data)
	if err != nil {
		telemetry.Warn("uploads.extract.failed", map[string]any{
			"file_name":  fileHeader.Filename,
			"mime_type":  mimeType,
			"error":      err,
			"request_id": c.GetString("requestId"),
		})
		h.reject(c, http.StatusUnprocessableEntity, "extraction_failed", "Failed to read file content")
		return
	}

	refund := func() {}
	if h.credits != nil {
		refund, err = h.credits.Charge(ctx, userID)
		if err != nil {
			status, msg := llm.Describe(err, "Failed to check AI credits")
			h.reject(c, status, "parse_failed", msg)
			return
		}
	}
	start := time.Now()
	parsed, err := h.parser.Parse(ctx, text, fileHeader.Filename)
	if err != nil {
		refund()
		metrics.ObserveAI("parse", "error", time.Since(start))
		status, msg := llm.Describe(err, "Failed to parse resume")
		h.reject(c, status, "parse_failed", msg)
		return
	}
	metrics.ObserveAI("parse", "ok", time.Since(start))

	st, err := h.sessions.Get(ctx, userID)
	if err != nil {
		h.reject(c, http.StatusInternalServerError, "internal_error", "failed to load resume")
		return
	}
	report, err := importer.Import(ctx, st, parsed, h.newID)
	switch {
	case errors.Is(err, importer.ErrMalformedPayload):
		h.reject(c, http.StatusUnprocessableEntity, "parse_failed", "Failed to parse resume data")
		return
	case errors.Is(err, store.ErrPersist):
		h.reject(c, http.StatusInternalServerError, "persist_failed", "failed to save resume")
		return
	case err != nil:
		h.reject(c, http.StatusInternalServerError, "internal_error", "failed to import resume")
		return
	}
	metrics.IncImport("ok")

	telemetry.Info("uploads.imported", map[string]any{
		"file_name":       fileHeader.Filename,
		"mime_type":       mimeType,
		"work_experience": report.WorkExperience,
		"projects":        report.Projects,
		"education":       report.Education,
		"certifications":  report.Certifications,
		"request_id":      c.GetString("requestId"),
	})
	respond.JSON(c, http.StatusOK, uploadResponse{
		State:    st.State(),
		Report:   report,
		FileName: fileHeader.Filename,
		MimeType: mimeType,
	})
}

// extract keeps a copy of the upload when an archive store is configured.
func (h *Handler) extract(ctx context.Context, userID, fileName, mimeType string, data []byte) (string, error) {
	if h.archive == nil {
		return extract.ExtractTextFromBytes(ctx, data, mimeType, fileName)
	}
	return h.archive.Archive(ctx, userID, fileName, mimeType, data)
}

func (h *Handler) reject(c *gin.Context, status int, code, msg string) {
	if status != http.StatusBadRequest {
		metrics.IncImport("error")
	} else {
		metrics.IncImport("rejected")
	}
	respond.Error(c, status, code, msg, nil)
}
