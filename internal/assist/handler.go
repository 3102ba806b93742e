// Package assist serves the AI content generation and resume parse routes.
// Both answer with the flat {"content"}/{"data"} or {"error"} contract the
// builder UI expects rather than the structured error envelope.
package assist

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"resume-builder/internal/llm"
	"resume-builder/internal/sessions"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
	"resume-builder/resume/store"
)

// Apply targets.
const (
	TargetSummary        = "summary"
	TargetWorkExperience = "workExperience"
	TargetProject        = "project"
)

// Service is the subset of llm.Service the handlers use.
type Service interface {
	Generate(ctx context.Context, req llm.GenerateRequest) (string, error)
	Parse(ctx context.Context, fileContent, fileName string) (json.RawMessage, error)
}

// Charger takes one AI credit per call; refund returns it after a failure.
type Charger interface {
	Charge(ctx context.Context, userID string) (refund func(), err error)
}

// Handler serves /ai routes.
type Handler struct {
	svc      Service
	sessions *sessions.Registry
	credits  Charger
	validate *validator.Validate
}

func NewHandler(svc Service, reg *sessions.Registry) *Handler {
	return &Handler{svc: svc, sessions: reg, validate: validator.New()}
}

// UseCredits meters every AI call against ch.
func (h *Handler) UseCredits(ch Charger) *Handler {
	h.credits = ch
	return h
}

// charge takes a credit for the caller. It writes the error response and
// returns false when the call must not proceed.
func (h *Handler) charge(c *gin.Context) (func(), bool) {
	if h.credits == nil {
		return func() {}, true
	}
	refund, err := h.credits.Charge(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		status, msg := llm.Describe(err, "Failed to check AI credits")
		fail(c, status, msg)
		return nil, false
	}
	return refund, true
}

// RegisterRoutes attaches the AI routes; mw runs before each of them.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	with := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, mw...), fn)
	}
	rg.POST("/ai/generate", with(h.generate)...)
	rg.POST("/ai/parse", with(h.parse)...)
}

type applyTarget struct {
	Target string `json:"target" validate:"required,oneof=summary workExperience project"`
	ID     string `json:"id" validate:"required_unless=Target summary"`
}

func (a applyTarget) key() string {
	if a.Target == TargetSummary {
		return TargetSummary
	}
	return a.Target + ":" + a.ID
}

type generateRequest struct {
	llm.GenerateRequest
	Apply *applyTarget `json:"apply,omitempty"`
}

type generateResponse struct {
	Content string `json:"content"`
	Applied *bool  `json:"applied,omitempty"`
	Saved   *bool  `json:"saved,omitempty"`
}

type parseRequest struct {
	FileContent string `json:"fileContent"`
	FileName    string `json:"fileName"`
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func (h *Handler) generate(c *gin.Context) {
	c.Set("section", "ai")
	c.Set("operation", "generate")

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	var (
		st     *store.Store
		ticket uint64
	)
	if req.Apply != nil {
		if err := h.validate.Struct(req.Apply); err != nil {
			fail(c, http.StatusBadRequest, "Invalid apply target")
			return
		}
		var err error
		st, err = h.sessions.Get(ctx, middleware.UserIDFromContext(c))
		if err != nil {
			fail(c, http.StatusInternalServerError, "Failed to load resume")
			return
		}
		c.Set("entityId", req.Apply.ID)
		ticket = st.Generations().Begin(req.Apply.key())
	}

	refund, ok := h.charge(c)
	if !ok {
		return
	}
	start := time.Now()
	content, err := h.svc.Generate(ctx, req.GenerateRequest)
	if err != nil {
		refund()
		metrics.ObserveAI("generate", "error", time.Since(start))
		status, msg := llm.Describe(err, "AI generation failed")
		fail(c, status, msg)
		return
	}
	metrics.ObserveAI("generate", "ok", time.Since(start))

	resp := generateResponse{Content: content}
	if req.Apply != nil {
		applied, err := st.Generations().Commit(req.Apply.key(), ticket, func() error {
			return applyContent(ctx, st, *req.Apply, content)
		})
		resp.Applied = &applied
		if applied {
			saved := err == nil
			resp.Saved = &saved
		} else {
			telemetry.Info("assist.generate.stale", map[string]any{
				"target":     req.Apply.Target,
				"entity_id":  req.Apply.ID,
				"request_id": c.GetString("requestId"),
			})
		}
		if err != nil && !errors.Is(err, store.ErrPersist) {
			fail(c, http.StatusInternalServerError, "Failed to apply generated content")
			return
		}
		if applied {
			metrics.IncStoreMutation("generate:" + req.Apply.Target)
		}
	}
	c.JSON(http.StatusOK, resp)
}

// applyContent writes generated text to its target. Unknown entity ids are a
// silent no-op, like any other update.
func applyContent(ctx context.Context, st *store.Store, target applyTarget, content string) error {
	switch target.Target {
	case TargetSummary:
		return st.SetSummary(ctx, content)
	case TargetWorkExperience:
		return st.UpdateWorkExperience(ctx, target.ID, model.WorkExperiencePatch{Description: &content})
	case TargetProject:
		return st.UpdateProject(ctx, target.ID, model.ProjectPatch{Description: &content})
	}
	return nil
}

func (h *Handler) parse(c *gin.Context) {
	c.Set("section", "ai")
	c.Set("operation", "parse")

	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	refund, ok := h.charge(c)
	if !ok {
		return
	}
	start := time.Now()
	data, err := h.svc.Parse(c.Request.Context(), req.FileContent, req.FileName)
	if err != nil {
		refund()
		metrics.ObserveAI("parse", "error", time.Since(start))
		status, msg := llm.Describe(err, "Failed to parse resume")
		fail(c, status, msg)
		return
	}
	metrics.ObserveAI("parse", "ok", time.Since(start))
	c.JSON(http.StatusOK, gin.H{"data": data})
}
