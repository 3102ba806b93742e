package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/documents"
	"resume-builder/internal/sessions"
	"resume-builder/internal/snapshots"
	"resume-builder/resume/model"
)

func newRouter(svc *Service, userID string, guest bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Set("isGuest", guest)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func claim(t *testing.T, router *gin.Engine, guestID string) (int, ClaimResult) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	if guestID != "" {
		req.Header.Set("X-Guest-Id", guestID)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	var result ClaimResult
	if resp.Code == http.StatusOK {
		if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return resp.Code, result
}

func TestClaimGuestMigratesResumeAndDocuments(t *testing.T) {
	ctx := context.Background()
	reg := sessions.NewRegistry(snapshots.NewMemoryRepo())
	docRepo := documents.NewMemoryRepo()
	router := newRouter(NewService(reg, docRepo), "user-1", false)

	guestID := "11111111-1111-1111-1111-111111111111"
	guestUserID := "guest:" + guestID

	guest, err := reg.Get(ctx, guestUserID)
	if err != nil {
		t.Fatalf("guest store: %v", err)
	}
	name := "Ada Lovelace"
	if err := guest.SetPersonalDetails(ctx, model.PersonalDetailsPatch{FullName: &name}); err != nil {
		t.Fatalf("set details: %v", err)
	}
	doc := documents.Document{
		ID:        "doc-1",
		UserID:    guestUserID,
		FileName:  "resume.pdf",
		MimeType:  "application/pdf",
		SizeBytes: 123,
		CreatedAt: time.Now().UTC(),
	}
	if err := docRepo.Create(ctx, doc); err != nil {
		t.Fatalf("create document: %v", err)
	}

	code, result := claim(t, router, guestID)
	if code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", code)
	}
	if !result.ClaimedResume || result.MigratedDocuments != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	user, err := reg.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("user store: %v", err)
	}
	if got := user.State().ResumeData.PersonalDetails.FullName; got != name {
		t.Fatalf("expected claimed name, got %q", got)
	}
	docs, err := docRepo.ListByUser(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("list docs: %v", err)
	}
	if len(docs) != 1 || docs[0].UserID != "user-1" {
		t.Fatalf("expected 1 migrated doc, got %+v", docs)
	}
}

func TestClaimGuestIsIdempotent(t *testing.T) {
	ctx := context.Background()
	reg := sessions.NewRegistry(snapshots.NewMemoryRepo())
	docRepo := documents.NewMemoryRepo()
	router := newRouter(NewService(reg, docRepo), "user-1", false)

	guestID := "22222222-2222-2222-2222-222222222222"
	if err := docRepo.Create(ctx, documents.Document{ID: "doc-2", UserID: "guest:" + guestID, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("create document: %v", err)
	}

	if code, _ := claim(t, router, guestID); code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", code)
	}
	code, result := claim(t, router, guestID)
	if code != http.StatusOK {
		t.Fatalf("expected status 200 on repeat call, got %d", code)
	}
	if result.MigratedDocuments != 0 {
		t.Fatalf("expected nothing left to migrate, got %+v", result)
	}

	docs, err := docRepo.ListByUser(ctx, "user-2", 10)
	if err != nil {
		t.Fatalf("list docs: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected no docs for other user, got %d", len(docs))
	}
}

func TestClaimGuestRequiresSignedInUser(t *testing.T) {
	reg := sessions.NewRegistry(snapshots.NewMemoryRepo())
	router := newRouter(NewService(reg, nil), "guest:abc", true)

	if code, _ := claim(t, router, "abc"); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for guest caller, got %d", code)
	}
}

func TestClaimGuestRequiresHeader(t *testing.T) {
	reg := sessions.NewRegistry(snapshots.NewMemoryRepo())
	router := newRouter(NewService(reg, nil), "user-1", false)

	if code, _ := claim(t, router, ""); code != http.StatusBadRequest {
		t.Fatalf("expected 400 without guest id, got %d", code)
	}
}
