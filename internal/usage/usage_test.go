package usage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"resume-builder/internal/llm"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newMemoryService(limit int, clk *clock) *Service {
	policy := normalize(Policy{Limit: limit, Period: time.Hour})
	return &Service{store: newMemoryStore(policy, clk.now), policy: policy}
}

func TestChargeConsumesUntilLimit(t *testing.T) {
	clk := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newMemoryService(2, clk)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Charge(ctx, "guest:1"); err != nil {
			t.Fatalf("charge %d: %v", i, err)
		}
	}
	_, err := svc.Charge(ctx, "guest:1")
	if !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
	if !errors.Is(err, llm.ErrCreditsExhausted) {
		t.Fatalf("expected limit to map to credits exhausted")
	}
	if status, _ := llm.Describe(err, ""); status != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", status)
	}

	if _, err := svc.Charge(ctx, "guest:2"); err != nil {
		t.Fatalf("other users keep their own budget: %v", err)
	}
}

func TestRefundReturnsCredit(t *testing.T) {
	clk := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newMemoryService(1, clk)
	ctx := context.Background()

	refund, err := svc.Charge(ctx, "u")
	if err != nil {
		t.Fatalf("charge: %v", err)
	}
	refund()
	u, _ := svc.EnsurePeriod(ctx, "u")
	if u.Used != 0 || u.Remaining() != 1 {
		t.Fatalf("expected refunded credit, got %+v", u)
	}
}

func TestWindowRollsOver(t *testing.T) {
	clk := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newMemoryService(1, clk)
	ctx := context.Background()

	if _, err := svc.Charge(ctx, "u"); err != nil {
		t.Fatalf("charge: %v", err)
	}
	if _, err := svc.Charge(ctx, "u"); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected limit, got %v", err)
	}
	clk.t = clk.t.Add(time.Hour)
	if _, err := svc.Charge(ctx, "u"); err != nil {
		t.Fatalf("expected fresh window, got %v", err)
	}
}

func TestDisabledServiceNeverLimits(t *testing.T) {
	svc := NewService(Policy{})
	if svc.Enabled() {
		t.Fatalf("expected disabled service")
	}
	for i := 0; i < 5; i++ {
		refund, err := svc.Charge(context.Background(), "u")
		if err != nil {
			t.Fatalf("charge: %v", err)
		}
		refund()
	}
	var nilSvc *Service
	if _, err := nilSvc.Charge(context.Background(), "u"); err != nil {
		t.Fatalf("nil service should not meter: %v", err)
	}
}

func TestPGStoreConsumeLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewPGStore(db)
	store.now = func() time.Time { return now }
	svc := NewPostgresService(store, Policy{Limit: 1, Period: time.Hour})

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM ai_usage WHERE user_id = $1 FOR UPDATE")).
		WithArgs("u").
		WillReturnRows(sqlmock.NewRows([]string{"plan", "limit_amount", "used", "resets_at"}).
			AddRow("Free", 1, 1, now.Add(30*time.Minute)))
	mock.ExpectRollback()

	if _, err := svc.Charge(context.Background(), "u"); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGStoreInsertsFirstWindow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewPGStore(db)
	store.now = func() time.Time { return now }
	svc := NewPostgresService(store, Policy{Limit: 3, Period: time.Hour})

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("u").
		WillReturnRows(sqlmock.NewRows([]string{"plan", "limit_amount", "used", "resets_at"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ai_usage")).
		WithArgs("u", "Free", 3, 0, now.Add(time.Hour)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE ai_usage SET used = $1 WHERE user_id = $2")).
		WithArgs(1, "u").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if _, err := svc.Charge(context.Background(), "u"); err != nil {
		t.Fatalf("charge: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestHandlerReportsUsage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := NewService(Policy{Limit: 5, Period: time.Hour})
	if _, err := svc.Charge(context.Background(), "guest:1"); err != nil {
		t.Fatalf("charge: %v", err)
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", "guest:1")
		c.Next()
	})
	h := NewHandler(svc)
	h.RegisterRoutes(r.Group("/api/v1"))
	h.RegisterDevRoutes(r.Group("/api/v1"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/usage", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"used":1`) || !strings.Contains(w.Body.String(), `"remaining":4`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/usage/reset", nil))
	if !strings.Contains(w.Body.String(), `"used":0`) {
		t.Fatalf("expected reset usage, got %s", w.Body.String())
	}
}
