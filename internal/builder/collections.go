package builder

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/resume/model"
	"resume-builder/resume/store"
)

// collection binds one entity list of the Document to add/update/remove routes.
type collection[T any, P any] struct {
	path    string
	section string
	setID   func(*T, string)
	getID   func(T) string
	add     func(*store.Store, context.Context, T) error
	update  func(*store.Store, context.Context, string, P) error
	remove  func(*store.Store, context.Context, string) error
}

func (h *Handler) registerCollections(r *gin.RouterGroup) {
	mount(h, r, collection[model.WorkExperience, model.WorkExperiencePatch]{
		path:    "/work-experience",
		section: "workExperience",
		setID:   func(w *model.WorkExperience, id string) { w.ID = id },
		getID:   func(w model.WorkExperience) string { return w.ID },
		add:     (*store.Store).AddWorkExperience,
		update:  (*store.Store).UpdateWorkExperience,
		remove:  (*store.Store).RemoveWorkExperience,
	})
	mount(h, r, collection[model.Project, model.ProjectPatch]{
		path:    "/projects",
		section: "projects",
		setID:   func(p *model.Project, id string) { p.ID = id },
		getID:   func(p model.Project) string { return p.ID },
		add:     (*store.Store).AddProject,
		update:  (*store.Store).UpdateProject,
		remove:  (*store.Store).RemoveProject,
	})
	mount(h, r, collection[model.Education, model.EducationPatch]{
		path:    "/education",
		section: "education",
		setID:   func(e *model.Education, id string) { e.ID = id },
		getID:   func(e model.Education) string { return e.ID },
		add:     (*store.Store).AddEducation,
		update:  (*store.Store).UpdateEducation,
		remove:  (*store.Store).RemoveEducation,
	})
	mount(h, r, collection[model.Certification, model.CertificationPatch]{
		path:    "/certifications",
		section: "certifications",
		setID:   func(c *model.Certification, id string) { c.ID = id },
		getID:   func(c model.Certification) string { return c.ID },
		add:     (*store.Store).AddCertification,
		update:  (*store.Store).UpdateCertification,
		remove:  (*store.Store).RemoveCertification,
	})
}

func mount[T any, P any](h *Handler, r *gin.RouterGroup, col collection[T, P]) {
	r.POST(col.path, func(c *gin.Context) {
		st, ok := h.storeFor(c, col.section, "add")
		if !ok {
			return
		}
		var entity T
		if !h.bind(c, &entity) {
			return
		}
		// Ids are caller-generated; the server fills one in when the client did not.
		id := strings.TrimSpace(col.getID(entity))
		if id == "" {
			id = h.newID()
		}
		col.setID(&entity, id)
		c.Set("entityId", id)

		err := col.add(st, c.Request.Context(), entity)
		h.done(c, st, "add:"+col.section, err, http.StatusCreated, func(state store.State) any {
			return createdResponse{ID: id, resumeResponse: newResumeResponse(state)}
		})
	})

	r.PATCH(col.path+"/:id", func(c *gin.Context) {
		st, ok := h.storeFor(c, col.section, "update")
		if !ok {
			return
		}
		id := c.Param("id")
		c.Set("entityId", id)
		var patch P
		if !h.bind(c, &patch) {
			return
		}
		err := col.update(st, c.Request.Context(), id, patch)
		h.done(c, st, "update:"+col.section, err, http.StatusOK, nil)
	})

	r.DELETE(col.path+"/:id", func(c *gin.Context) {
		st, ok := h.storeFor(c, col.section, "remove")
		if !ok {
			return
		}
		id := c.Param("id")
		c.Set("entityId", id)
		err := col.remove(st, c.Request.Context(), id)
		h.done(c, st, "remove:"+col.section, err, http.StatusOK, nil)
	})
}

