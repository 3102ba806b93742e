package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/account"
	"resume-builder/internal/assist"
	googleauth "resume-builder/internal/auth"
	"resume-builder/internal/builder"
	"resume-builder/internal/documents"
	"resume-builder/internal/export"
	"resume-builder/internal/llm"
	"resume-builder/internal/llm/gemini"
	openai "resume-builder/internal/llm/openai"
	"resume-builder/internal/sessions"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/storage/object"
	localstore "resume-builder/internal/shared/storage/object/local"
	s3store "resume-builder/internal/shared/storage/object/s3"
	"resume-builder/internal/snapshots"
	"resume-builder/internal/uploads"
	"resume-builder/internal/usage"
	"resume-builder/internal/users"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	DB             *sql.DB
	Store          object.ObjectStore
	Snapshots      snapshots.Repo
	Sessions       *sessions.Registry
	LLM            *llm.Service
	Exporter       *export.Service
	Documents      *documents.Service
	Account        *account.Service
	AccountHandler *account.Handler
	BuilderHandler *builder.Handler
	AssistHandler  *assist.Handler
	UploadsHandler *uploads.Handler
	DocsHandler    *documents.Handler
	Users          *users.Service
	Usage          *usage.Service
	UsageHandler   *usage.Handler
	UsersHandler   *users.Handler
	GoogleAuth     *googleauth.GoogleService

	closers []func() error
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.StateStore) == "" {
		cfg.StateStore = "local"
	}
	ctx := context.Background()

	app := &App{Config: cfg}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB
	if sqlDB != nil {
		app.closers = append(app.closers, sqlDB.Close)
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Store = store
	app.Snapshots = buildSnapshots(app)

	completer, closeFn, err := buildCompleter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if closeFn != nil {
		app.closers = append(app.closers, closeFn)
	}

	if err := buildServices(app, completer); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:     app.Config,
		Builder:    app.BuilderHandler,
		Assist:     app.AssistHandler,
		Uploads:    app.UploadsHandler,
		Documents:  app.DocsHandler,
		Users:      app.UsersHandler,
		Usage:      app.UsageHandler,
		GoogleAuth: app.GoogleAuth,
	})

	return app, nil
}

// Close releases the database pool and provider clients.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if cfg.StateStore != "postgres" {
		return nil, nil
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; keeping resume state in memory")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required for STATE_STORE=postgres")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; keeping resume state in memory: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.StateStore {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("STATE_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "memory":
		return nil, nil
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildSnapshots(app *App) snapshots.Repo {
	switch {
	case app.DB != nil:
		return &snapshots.PGRepo{DB: app.DB}
	case app.Store != nil && app.Config.StateStore != "postgres":
		return &snapshots.ObjectRepo{Store: app.Store}
	default:
		return snapshots.NewMemoryRepo()
	}
}

// NewCompleter builds the chat completion client for cfg.LLMProvider. A nil
// completer with no error means AI features are switched off.
func NewCompleter(ctx context.Context, cfg config.Config) (llm.Completer, func() error, error) {
	switch cfg.LLMProvider {
	case "none":
		return nil, nil, nil
	case "gemini":
		model := cfg.LLMModel
		if strings.TrimSpace(model) == "" {
			model = gemini.DefaultModel
		}
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, model)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	default:
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.LLMBaseURL)
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil
	}
}

func buildCompleter(ctx context.Context, cfg config.Config) (llm.Completer, func() error, error) {
	completer, closeFn, err := NewCompleter(ctx, cfg)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: %s provider unavailable; AI endpoints disabled: %v", cfg.LLMProvider, err)
			return nil, nil, nil
		}
		return nil, nil, err
	}
	return completer, closeFn, nil
}

func buildServices(app *App, completer llm.Completer) error {
	app.Sessions = sessions.NewRegistry(app.Snapshots)
	app.LLM = llm.NewService(completer)
	app.Exporter = export.NewService(export.NewChrome(app.Config.ChromePath))

	var archive uploads.Archiver
	var docClaims account.DocumentClaimer
	if app.Store != nil {
		var docRepo documents.DocumentsRepo = documents.NewMemoryRepo()
		if app.DB != nil {
			docRepo = &documents.PGRepo{DB: app.DB}
		}
		app.Documents = documents.NewService(app.Store, docRepo)
		app.DocsHandler = documents.NewHandler(app.Documents)
		archive = app.Documents
		docClaims = docRepo
	}
	app.Account = account.NewService(app.Sessions, docClaims)
	app.AccountHandler = account.NewHandler(app.Account)

	var userRepo users.Repo = users.NewMemoryRepo()
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
	}
	app.Users = users.NewService(userRepo)

	policy := usage.Policy{
		Limit:  app.Config.AICreditLimit,
		Period: time.Duration(app.Config.AICreditPeriodHrs) * time.Hour,
	}
	if app.DB != nil {
		app.Usage = usage.NewPostgresService(usage.NewPGStore(app.DB), policy)
	} else {
		app.Usage = usage.NewService(policy)
	}
	app.UsageHandler = usage.NewHandler(app.Usage)

	app.BuilderHandler = builder.NewHandler(app.Sessions, app.Exporter)
	app.AssistHandler = assist.NewHandler(app.LLM, app.Sessions).UseCredits(app.Usage)
	app.UploadsHandler = uploads.NewHandler(app.Sessions, app.LLM, archive).UseCredits(app.Usage)
	app.UsersHandler = users.NewHandler(app.Users, app.Sessions)
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		app.Account,
		app.Users,
	)

	if app.BuilderHandler == nil || app.AssistHandler == nil || app.UploadsHandler == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
