// Package builder exposes a caller's resume Store over HTTP.
package builder

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"resume-builder/internal/export"
	"resume-builder/internal/sessions"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/ats"
	"resume-builder/resume/model"
	"resume-builder/resume/render"
	"resume-builder/resume/store"
)

// Handler wires HTTP handlers to the caller's Store.
type Handler struct {
	sessions *sessions.Registry
	exporter *export.Service
	validate *validator.Validate
	newID    func() string
}

// NewHandler constructs a Handler. exporter may be nil, which disables the
// export routes.
func NewHandler(reg *sessions.Registry, exporter *export.Service) *Handler {
	return &Handler{
		sessions: reg,
		exporter: exporter,
		validate: validator.New(),
		newID:    uuid.NewString,
	}
}

// RegisterRoutes attaches the builder routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/templates", h.templates)

	r := rg.Group("/resume")
	r.GET("", h.get)
	r.PUT("", h.replace)
	r.PATCH("/personal-details", h.setPersonalDetails)
	r.PUT("/summary", h.setSummary)
	r.PATCH("/skills", h.setSkills)
	r.PUT("/template", h.setTemplate)
	r.PUT("/step", h.setStep)
	r.POST("/step/next", h.moveStep("next", model.BuilderStep.Next))
	r.POST("/step/prev", h.moveStep("prev", model.BuilderStep.Prev))
	r.POST("/reset", h.reset)
	r.POST("/ats", h.score)
	r.GET("/preview", h.preview)
	r.GET("/export.pdf", h.export(export.FormatPDF))
	r.GET("/export.png", h.export(export.FormatPNG))
	r.GET("/events", h.events)

	h.registerCollections(r)
}

// storeFor loads the caller's Store and tags the request for logging.
func (h *Handler) storeFor(c *gin.Context, section, operation string) (*store.Store, bool) {
	c.Set("section", section)
	c.Set("operation", operation)
	st, err := h.sessions.Get(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		telemetry.Error("builder.session_load_failed", map[string]any{
			"error":      err,
			"request_id": c.GetString("requestId"),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load resume", nil)
		return nil, false
	}
	return st, true
}

// bind decodes the JSON body into dst and runs struct validation.
func (h *Handler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", validationMessage(err), nil)
		return false
	}
	return true
}

// done reports the outcome of a mutation. A persistence failure still leaves
// the change applied in memory, so the state is returned with the error.
func (h *Handler) done(c *gin.Context, st *store.Store, operation string, err error, status int, body func(store.State) any) {
	state := st.State()
	if err != nil {
		if errors.Is(err, store.ErrPersist) {
			metrics.IncStoreMutation(operation)
			respond.Error(c, http.StatusInternalServerError, "persist_failed", "changes were applied but could not be saved", newResumeResponse(state))
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update resume", nil)
		return
	}
	metrics.IncStoreMutation(operation)
	if body == nil {
		respond.JSON(c, status, newResumeResponse(state))
		return
	}
	respond.JSON(c, status, body(state))
}

func (h *Handler) get(c *gin.Context) {
	st, ok := h.storeFor(c, "resume", "get")
	if !ok {
		return
	}
	respond.JSON(c, http.StatusOK, newResumeResponse(st.State()))
}

func (h *Handler) replace(c *gin.Context) {
	st, ok := h.storeFor(c, "resume", "replace")
	if !ok {
		return
	}
	var req store.State
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.SelectedTemplate == "" {
		req.SelectedTemplate = model.DefaultTemplate
	}
	if !req.CurrentStep.Valid() {
		req.CurrentStep = model.FirstStep()
	}
	err := st.Replace(c.Request.Context(), req)
	h.done(c, st, "replace", err, http.StatusOK, nil)
}

func (h *Handler) setPersonalDetails(c *gin.Context) {
	st, ok := h.storeFor(c, "personalDetails", "update")
	if !ok {
		return
	}
	var patch model.PersonalDetailsPatch
	if !h.bind(c, &patch) {
		return
	}
	err := st.SetPersonalDetails(c.Request.Context(), patch)
	h.done(c, st, "setPersonalDetails", err, http.StatusOK, nil)
}

func (h *Handler) setSummary(c *gin.Context) {
	st, ok := h.storeFor(c, "summary", "update")
	if !ok {
		return
	}
	var req summaryRequest
	if !h.bind(c, &req) {
		return
	}
	err := st.SetSummary(c.Request.Context(), *req.Summary)
	h.done(c, st, "setSummary", err, http.StatusOK, nil)
}

func (h *Handler) setSkills(c *gin.Context) {
	st, ok := h.storeFor(c, "skills", "update")
	if !ok {
		return
	}
	var patch model.SkillsPatch
	if !h.bind(c, &patch) {
		return
	}
	err := st.SetSkills(c.Request.Context(), patch)
	h.done(c, st, "setSkills", err, http.StatusOK, nil)
}

func (h *Handler) setTemplate(c *gin.Context) {
	st, ok := h.storeFor(c, "template", "update")
	if !ok {
		return
	}
	var req templateRequest
	if !h.bind(c, &req) {
		return
	}
	err := st.SetSelectedTemplate(c.Request.Context(), model.TemplateID(strings.TrimSpace(req.Template)))
	h.done(c, st, "setSelectedTemplate", err, http.StatusOK, nil)
}

func (h *Handler) setStep(c *gin.Context) {
	st, ok := h.storeFor(c, "step", "update")
	if !ok {
		return
	}
	var req stepRequest
	if !h.bind(c, &req) {
		return
	}
	err := st.SetCurrentStep(c.Request.Context(), model.BuilderStep(req.Step))
	h.done(c, st, "setCurrentStep", err, http.StatusOK, nil)
}

// moveStep walks the builder one step. At either end the state is returned
// unchanged and nothing is written.
func (h *Handler) moveStep(name string, move func(model.BuilderStep) (model.BuilderStep, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := h.storeFor(c, "step", name)
		if !ok {
			return
		}
		target, moved := move(st.State().CurrentStep)
		if !moved {
			respond.JSON(c, http.StatusOK, newResumeResponse(st.State()))
			return
		}
		err := st.SetCurrentStep(c.Request.Context(), target)
		h.done(c, st, "setCurrentStep", err, http.StatusOK, nil)
	}
}

func (h *Handler) reset(c *gin.Context) {
	st, ok := h.storeFor(c, "resume", "reset")
	if !ok {
		return
	}
	err := st.ResetResume(c.Request.Context())
	h.done(c, st, "resetResume", err, http.StatusOK, nil)
}

func (h *Handler) score(c *gin.Context) {
	st, ok := h.storeFor(c, "resume", "ats")
	if !ok {
		return
	}
	var req atsRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}
	respond.JSON(c, http.StatusOK, ats.Score(st.Document(), req.TargetRole))
}

func (h *Handler) templates(c *gin.Context) {
	respond.JSON(c, http.StatusOK, gin.H{"templates": render.Catalog()})
}

// templateParam returns ?template= when given, else the stored selection.
func templateParam(c *gin.Context, state store.State) model.TemplateID {
	if raw := strings.TrimSpace(c.Query("template")); raw != "" {
		return model.TemplateID(raw)
	}
	return state.SelectedTemplate
}

func (h *Handler) preview(c *gin.Context) {
	st, ok := h.storeFor(c, "resume", "preview")
	if !ok {
		return
	}
	state := st.State()
	id := render.Resolve(templateParam(c, state))
	page, err := render.HTML(id, state.ResumeData)
	if err != nil {
		telemetry.Error("builder.preview_failed", map[string]any{"template": string(id), "error": err})
		respond.Error(c, http.StatusInternalServerError, "render_failed", "failed to render preview", nil)
		return
	}
	c.Header("X-Resume-Template", string(id))
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (h *Handler) export(format export.Format) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := h.storeFor(c, "resume", "export")
		if !ok {
			return
		}
		if h.exporter == nil {
			respond.Error(c, http.StatusServiceUnavailable, "export_unavailable", "export is not configured", nil)
			return
		}
		state := st.State()
		out, used, err := h.exporter.Export(c.Request.Context(), templateParam(c, state), state.ResumeData, format)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "export_failed", "failed to export resume", nil)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+format.FileName()+`"`)
		c.Header("X-Resume-Template", string(used))
		c.Data(http.StatusOK, format.ContentType(), out)
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		ve := verrs[0]
		return "validation error: " + ve.Field() + " - " + ve.Tag()
	}
	return "validation error: invalid request"
}
