package builder

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/export"
	"resume-builder/internal/sessions"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/snapshots"
	"resume-builder/resume/ats"
	"resume-builder/resume/model"
	"resume-builder/resume/store"
)

const guest = "guest-abc"

type fakeRenderer struct{}

func (fakeRenderer) Render(ctx context.Context, html []byte, format export.Format) ([]byte, error) {
	return []byte("rendered:" + string(format)), nil
}

type failingRepo struct {
	*snapshots.MemoryRepo
}

func (failingRepo) Save(ctx context.Context, userID string, state store.State) error {
	return errors.New("disk full")
}

func newTestRouter(t *testing.T, repo snapshots.Repo) (*gin.Engine, *sessions.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg := sessions.NewRegistry(repo)
	h := NewHandler(reg, export.NewService(fakeRenderer{}))
	n := 0
	h.newID = func() string {
		n++
		return "gen-" + string(rune('0'+n))
	}
	r := gin.New()
	r.Use(middleware.Auth("dev"))
	h.RegisterRoutes(r.Group("/api/v1"))
	return r, reg
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	} else {
		buf = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Guest-Id", guest)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

type stateBody struct {
	store.State
	Progress         float64          `json:"progress"`
	StepLabel        string           `json:"stepLabel"`
	RenderedTemplate model.TemplateID `json:"renderedTemplate"`
	ID               string           `json:"id"`
}

func decodeState(t *testing.T, resp *httptest.ResponseRecorder) stateBody {
	t.Helper()
	var out stateBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	return out
}

func TestGetReturnsDefaultState(t *testing.T) {
	r, _ := newTestRouter(t, snapshots.NewMemoryRepo())

	resp := do(t, r, http.MethodGet, "/api/v1/resume", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	got := decodeState(t, resp)
	assert.Equal(t, model.DefaultTemplate, got.SelectedTemplate)
	assert.Equal(t, model.StepPersonal, got.CurrentStep)
	assert.InDelta(t, 100.0/7.0, got.Progress, 0.001)
	assert.Equal(t, "Personal", got.StepLabel)
	assert.Equal(t, model.Empty(), got.ResumeData)
}

func TestRequiresIdentity(t *testing.T) {
	r, _ := newTestRouter(t, snapshots.NewMemoryRepo())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/resume", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestScalarSettersMerge(t *testing.T) {
	r, _ := newTestRouter(t, snapshots.NewMemoryRepo())

	resp := do(t, r, http.MethodPatch, "/api/v1/resume/personal-details", map[string]any{"fullName": "Jane", "email": "j@x.io"})
	require.Equal(t, http.StatusOK, resp.Code)
	resp = do(t, r, http.MethodPatch, "/api/v1/resume/personal-details", map[string]any{"phone": "555"})
	require.Equal(t, http.StatusOK, resp.Code)
	got := decodeState(t, resp).ResumeData.PersonalDetails
	assert.Equal(t, "Jane", got.FullName)
	assert.Equal(t, "j@x.io", got.Email)
	assert.Equal(t, "555", got.Phone)

	resp = do(t, r, http.MethodPut, "/api/v1/resume/summary", map[string]any{"summary": "Builds things."})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Builds things.", decodeState(t, resp).ResumeData.Summary)

	resp = do(t, r, http.MethodPut, "/api/v1/resume/summary", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = do(t, r, http.MethodPatch, "/api/v1/resume/skills", map[string]any{"technical": []string{"Go", "SQL"}})
	require.Equal(t, http.StatusOK, resp.Code)
	skills := decodeState(t, resp).ResumeData.Skills
	assert.Equal(t, []string{"Go", "SQL"}, skills.Technical)
	assert.Equal(t, []string{}, skills.Soft)
}

func TestCollectionLifecycle(t *testing.T) {
	r, _ := newTestRouter(t, snapshots.NewMemoryRepo())

	resp := do(t, r, http.MethodPost, "/api/v1/resume/work-experience", map[string]any{"company": "Acme", "position": "Dev"})
	require.Equal(t, http.StatusCreated, resp.Code)
	first := decodeState(t, resp)
	assert.Equal(t, "gen-1", first.ID)

	resp = do(t, r, http.MethodPost, "/api/v1/resume/work-experience", map[string]any{"id": "client-id", "company": "Globex"})
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "client-id", decodeState(t, resp).ID)

	resp = do(t, r, http.MethodPatch, "/api/v1/resume/work-experience/gen-1", map[string]any{"position": "Lead"})
	require.Equal(t, http.StatusOK, resp.Code)
	jobs := decodeState(t, resp).ResumeData.WorkExperience
	require.Len(t, jobs, 2)
	assert.Equal(t, "Acme", jobs[0].Company)
	assert.Equal(t, "Lead", jobs[0].Position)
	assert.Equal(t, "Globex", jobs[1].Company)

	resp = do(t, r, http.MethodPatch, "/api/v1/resume/work-experience/missing", map[string]any{"position": "X"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, jobs, decodeState(t, resp).ResumeData.WorkExperience)

	resp = do(t, r, http.MethodDelete, "/api/v1/resume/work-experience/gen-1", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	jobs = decodeState(t, resp).ResumeData.WorkExperience
	require.Len(t, jobs, 1)
	assert.Equal(t, "client-id", jobs[0].ID)

	resp = do(t, r, http.MethodPost, "/api/v1/resume/certifications", map[string]any{"name": "CKA", "issuer": "CNCF", "date": "2024"})
	require.Equal(t, http.StatusCreated, resp.Code)
	resp = do(t, r, http.MethodPost, "/api/v1/resume/projects", map[string]any{"name": "Tool"})
	require.Equal(t, http.StatusCreated, resp.Code)
	resp = do(t, r, http.MethodPost, "/api/v1/resume/education", map[string]any{"institution": "MIT"})
	require.Equal(t, http.StatusCreated, resp.Code)
	doc := decodeState(t, resp).ResumeData
	assert.Len(t, doc.Certifications, 1)
	assert.Len(t, doc.Projects, 1)
	assert.Equal(t, []string{}, doc.Projects[0].Technologies)
	assert.Len(t, doc.Education, 1)
}

func TestTemplateStepAndReset(t *testing.T) {
	r, _ := newTestRouter(t, snapshots.NewMemoryRepo())

	resp := do(t, r, http.MethodPut, "/api/v1/resume/template", map[string]any{"template": "executive"})
	require.Equal(t, http.StatusOK, resp.Code)
	got := decodeState(t, resp)
	assert.Equal(t, model.TemplateExecutive, got.SelectedTemplate)
	assert.Equal(t, model.TemplateModern, got.RenderedTemplate)

	resp = do(t, r, http.MethodPut, "/api/v1/resume/step", map[string]any{"step": "education"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.InDelta(t, 600.0/7.0, decodeState(t, resp).Progress, 0.001)

	resp = do(t, r, http.MethodPut, "/api/v1/resume/step", map[string]any{"step": "review"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	do(t, r, http.MethodPut, "/api/v1/resume/summary", map[string]any{"summary": "x"})
	resp = do(t, r, http.MethodPost, "/api/v1/resume/reset", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	got = decodeState(t, resp)
	assert.Equal(t, model.Empty(), got.ResumeData)
	assert.Equal(t, model.StepPersonal, got.CurrentStep)
	assert.Equal(t, model.TemplateExecutive, got.SelectedTemplate)
}

func TestStepNextAndPrevStopAtEnds(t *testing.T) {
	r, _ := newTestRouter(t, snapshots.NewMemoryRepo())

	resp := do(t, r, http.MethodPost, "/api/v1/resume/step/prev", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, model.StepPersonal, decodeState(t, resp).CurrentStep)

	resp = do(t, r, http.MethodPost, "/api/v1/resume/step/next", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, model.StepSummary, decodeState(t, resp).CurrentStep)

	do(t, r, http.MethodPut, "/api/v1/resume/step", map[string]any{"step": "certifications"})
	resp = do(t, r, http.MethodPost, "/api/v1/resume/step/next", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, model.StepCertifications, decodeState(t, resp).CurrentStep)

	resp = do(t, r, http.MethodPost, "/api/v1/resume/step/prev", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, model.StepEducation, decodeState(t, resp).CurrentStep)
}

func TestReplaceNormalizesState(t *testing.T) {
	r, _ := newTestRouter(t, snapshots.NewMemoryRepo())

	resp := do(t, r, http.MethodPut, "/api/v1/resume", map[string]any{
		"resumeData":  map[string]any{"summary": "Imported"},
		"currentStep": "bogus",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	got := decodeState(t, resp)
	assert.Equal(t, "Imported", got.ResumeData.Summary)
	assert.Equal(t, []model.WorkExperience{}, got.ResumeData.WorkExperience)
	assert.Equal(t, model.StepPersonal, got.CurrentStep)
	assert.Equal(t, model.DefaultTemplate, got.SelectedTemplate)
}

func TestPersistFailureStillApplies(t *testing.T) {
	r, reg := newTestRouter(t, failingRepo{snapshots.NewMemoryRepo()})

	resp := do(t, r, http.MethodPut, "/api/v1/resume/summary", map[string]any{"summary": "unsaved"})
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "persist_failed")

	st, err := reg.Get(context.Background(), "guest:"+guest)
	require.NoError(t, err)
	assert.Equal(t, "unsaved", st.Document().Summary)
}

func TestATSScoresCurrentDocument(t *testing.T) {
	r, _ := newTestRouter(t, snapshots.NewMemoryRepo())

	resp := do(t, r, http.MethodPost, "/api/v1/resume/ats", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var res ats.Result
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &res))
	assert.Equal(t, 0, res.Score)
	assert.Len(t, res.Suggestions, 7)

	do(t, r, http.MethodPatch, "/api/v1/resume/personal-details", map[string]any{"fullName": "J", "email": "j@x", "phone": "1"})
	resp = do(t, r, http.MethodPost, "/api/v1/resume/ats", map[string]any{"targetRole": "Go Developer"})
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &res))
	assert.Equal(t, 20, res.Score)
	assert.Contains(t, res.Suggestions, `Include "Go Developer" in your summary`)
}

func TestPreviewRendersSelectedOrRequestedTemplate(t *testing.T) {
	r, _ := newTestRouter(t, snapshots.NewMemoryRepo())
	do(t, r, http.MethodPatch, "/api/v1/resume/personal-details", map[string]any{"fullName": "Jane Doe"})

	resp := do(t, r, http.MethodGet, "/api/v1/resume/preview", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "modern", resp.Header().Get("X-Resume-Template"))
	assert.True(t, strings.HasPrefix(resp.Header().Get("Content-Type"), "text/html"))
	page, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "modern", page.Find("#resume").AttrOr("data-template", ""))
	assert.Contains(t, page.Find("#resume").Text(), "Jane Doe")

	resp = do(t, r, http.MethodGet, "/api/v1/resume/preview?template=classic", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "classic", resp.Header().Get("X-Resume-Template"))
}

func TestExportRoutes(t *testing.T) {
	r, _ := newTestRouter(t, snapshots.NewMemoryRepo())

	resp := do(t, r, http.MethodGet, "/api/v1/resume/export.pdf", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/pdf", resp.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="resume.pdf"`, resp.Header().Get("Content-Disposition"))
	assert.Equal(t, "rendered:pdf", resp.Body.String())

	resp = do(t, r, http.MethodGet, "/api/v1/resume/export.png", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "image/png", resp.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="resume.png"`, resp.Header().Get("Content-Disposition"))
}

func TestTemplatesCatalog(t *testing.T) {
	r, _ := newTestRouter(t, snapshots.NewMemoryRepo())

	resp := do(t, r, http.MethodGet, "/api/v1/templates", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var out struct {
		Templates []struct {
			ID      string `json:"id"`
			Premium bool   `json:"premium"`
		} `json:"templates"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	assert.Len(t, out.Templates, 8)
}

func TestEventsStreamState(t *testing.T) {
	r, _ := newTestRouter(t, snapshots.NewMemoryRepo())
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/resume/events?guestId="+guest, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reader := bufio.NewReader(resp.Body)
	nextData := func() stateBody {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data:") {
				var out stateBody
				require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &out))
				return out
			}
		}
	}

	initial := nextData()
	assert.Equal(t, "", initial.ResumeData.Summary)

	patch := do(t, r, http.MethodPut, "/api/v1/resume/summary", map[string]any{"summary": "live"})
	require.Equal(t, http.StatusOK, patch.Code)

	updated := nextData()
	assert.Equal(t, "live", updated.ResumeData.Summary)
}
