package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/resume/ats"
	"resume-builder/resume/model"
	"resume-builder/resume/store"
)

// Resumes loads the builder store owned by a user.
type Resumes interface {
	Get(ctx context.Context, userID string) (*store.Store, error)
}

type Handler struct {
	Svc     *Service
	Resumes Resumes
}

func NewHandler(svc *Service, resumes Resumes) *Handler {
	return &Handler{Svc: svc, Resumes: resumes}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/account", h.account)
}

type resumeSummary struct {
	SelectedTemplate model.TemplateID  `json:"selectedTemplate"`
	CurrentStep      model.BuilderStep `json:"currentStep"`
	Progress         float64           `json:"progress"`
	ATSScore         int               `json:"atsScore"`
}

func (h *Handler) account(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	if middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	ctx := c.Request.Context()
	user, err := h.Svc.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
		return
	}

	body := gin.H{
		"id":          user.ID,
		"email":       user.Email,
		"fullName":    user.FullName,
		"pictureUrl":  user.PictureURL,
		"lastLoginAt": user.LastLoginAt,
	}
	if h.Resumes != nil {
		st, err := h.Resumes.Get(ctx, userID)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load resume", nil)
			return
		}
		state := st.State()
		body["resume"] = resumeSummary{
			SelectedTemplate: state.SelectedTemplate,
			CurrentStep:      state.CurrentStep,
			Progress:         model.Progress(state.CurrentStep),
			ATSScore:         ats.Score(state.ResumeData, "").Score,
		}
	}
	respond.JSON(c, http.StatusOK, body)
}
