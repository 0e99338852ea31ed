// Package bootstrap builds the application object graph from configuration.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	googleauth "seoblog-backend/internal/auth"
	"seoblog-backend/internal/blogs"
	"seoblog-backend/internal/documents"
	"seoblog-backend/internal/generate"
	"seoblog-backend/internal/grammar"
	"seoblog-backend/internal/llm"
	openai "seoblog-backend/internal/llm/openai"
	"seoblog-backend/internal/shared/config"
	"seoblog-backend/internal/shared/server"
	"seoblog-backend/internal/shared/storage/db"
	"seoblog-backend/internal/shared/storage/object"
	localstore "seoblog-backend/internal/shared/storage/object/local"
	s3store "seoblog-backend/internal/shared/storage/object/s3"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	DocumentsRepo    documents.DocumentsRepo
	BlogsRepo        blogs.BlogsRepo
	DocumentsService *documents.Service
	BlogsService     *blogs.Service
	Pipeline         *generate.Pipeline

	DocumentsHandler *documents.Handler
	BlogsHandler     *blogs.Handler
	GrammarHandler   *grammar.Handler
	GoogleAuth       *googleauth.GoogleService
}

// Options tweak construction, mainly for tests.
type Options struct {
	// LLM overrides the provider client; tests inject fakes here.
	LLM llm.Client
	// GrammarChecker overrides the grammar client.
	GrammarChecker grammar.Checker
}

// Build prepares the full application from configuration.
func Build(cfg config.Config, opts ...Options) (*App, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}

	if err := buildServices(app, opt); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		DocumentHandler: app.DocumentsHandler,
		BlogHandler:     app.BlogsHandler,
		GrammarHandler:  app.GrammarHandler,
		GoogleAuth:      app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
			_ = sqlDB.Close()
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App, opt Options) error {
	var docRepo documents.DocumentsRepo
	var blogRepo blogs.BlogsRepo
	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		blogRepo = &blogs.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		blogRepo = blogs.NewMemoryRepo()
	}

	docSvc := &documents.Service{
		Store:          app.Store,
		Repo:           docRepo,
		MaxUploadBytes: app.Config.MaxUploadBytes,
	}

	llmClient := opt.LLM
	if llmClient == nil {
		llmClient = llm.Client(llm.PlaceholderClient{})
		if app.Config.LLMProvider == "openai" {
			timeout := time.Duration(app.Config.LLMTimeoutSeconds) * time.Second
			openaiClient, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), app.Config.LLMModel, timeout)
			if err != nil {
				if isDevLike(app.Config.Env) {
					log.Printf("bootstrap: openai client unavailable; generation disabled: %v", err)
				} else {
					return err
				}
			} else {
				llmClient = openaiClient
			}
		}
	}

	pipeline := &generate.Pipeline{
		LLM:           llmClient,
		SummaryBudget: app.Config.SummaryBudgetChars,
		Timeout:       time.Duration(app.Config.LLMTimeoutSeconds) * time.Second,
	}

	blogSvc := blogs.NewService(blogRepo, docRepo, pipeline)

	checker := opt.GrammarChecker
	if checker == nil {
		if strings.TrimSpace(app.Config.GrammarAPIURL) != "" {
			grammarClient, err := grammar.NewClient(app.Config.GrammarAPIURL, 30*time.Second)
			if err != nil {
				return err
			}
			checker = grammarClient
		} else {
			log.Printf("bootstrap: GRAMMAR_API_URL empty; grammar checks disabled")
			checker = grammar.UnconfiguredChecker{}
		}
	}
	grammarHandler := grammar.NewHandler(checker)

	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
	)

	app.DocumentsRepo = docRepo
	app.BlogsRepo = blogRepo
	app.DocumentsService = docSvc
	app.BlogsService = blogSvc
	app.Pipeline = pipeline
	app.DocumentsHandler = documents.NewHandler(docSvc, app.Config.MaxUploadBytes)
	app.BlogsHandler = blogs.NewHandler(blogSvc)
	app.GrammarHandler = grammarHandler
	app.GoogleAuth = googleAuthSvc

	return nil
}
