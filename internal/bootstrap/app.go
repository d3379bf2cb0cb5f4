package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"promotore-backend/internal/auth"
	"promotore-backend/internal/documents"
	"promotore-backend/internal/extraction"
	"promotore-backend/internal/ingestion"
	"promotore-backend/internal/llm"
	"promotore-backend/internal/llm/openai"
	"promotore-backend/internal/processes"
	"promotore-backend/internal/reports"
	"promotore-backend/internal/services/health"
	sharedauth "promotore-backend/internal/shared/auth"
	"promotore-backend/internal/shared/config"
	"promotore-backend/internal/shared/server"
	"promotore-backend/internal/shared/storage/db"
	"promotore-backend/internal/shared/storage/object"
	localstore "promotore-backend/internal/shared/storage/object/local"
	s3store "promotore-backend/internal/shared/storage/object/s3"
	"promotore-backend/internal/shared/telemetry"
	"promotore-backend/internal/users"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config  config.Config
	Router  *gin.Engine
	DB      *sql.DB
	Dialect db.Dialect
	Store   object.ObjectStore

	UsersRepo     users.Repo
	ProcessesRepo processes.Repo
	DocumentsRepo documents.DocumentsRepo

	Sessions          *sharedauth.SessionSigner
	UsersService      *users.Service
	ProcessesService  *processes.Service
	DocumentsService  *documents.Service
	ReportsService    *reports.Service
	Extractor         extraction.Extractor
	IngestionPipeline *ingestion.Pipeline
}

// Build connects storage, seeds the administrator and wires every handler.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, dialect, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sessions, err := sharedauth.NewSessionSigner(cfg.SecretKey, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}

	vision, err := buildVision(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Dialect:  dialect,
		Store:    store,
		Sessions: sessions,
	}
	buildServices(app, vision)

	if err := app.UsersService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:   cfg,
		Sessions: sessions,
		Pages:    auth.NewHandler(app.UsersService, sessions, cfg.Env == "production"),
		API: []server.RouteRegistrar{
			users.NewHandler(app.UsersService),
			processes.NewHandler(app.ProcessesService),
			documents.NewHandler(app.DocumentsService, cfg.MaxUploadBytes),
			ingestion.NewHandler(app.IngestionPipeline),
			reports.NewHandler(app.ReportsService),
		},
		Health:    health.NewService(pinger(sqlDB)),
		LoginPath: auth.LoginPath,
	})

	return app, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, db.Dialect, error) {
	var (
		dialect db.Dialect
		dsn     string
		opts    db.Options
	)
	switch cfg.DatabaseDriver {
	case config.DriverMemory:
		telemetry.Info("bootstrap.db", map[string]any{"driver": config.DriverMemory})
		return nil, "", nil
	case config.DriverSQLite:
		dialect, dsn, opts = db.SQLite, cfg.SQLitePath, db.OptionsFromEnv(db.DefaultSQLiteOptions())
	case config.DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, "", fmt.Errorf("DATABASE_URL is required for driver %q", cfg.DatabaseDriver)
		}
		dialect, dsn, opts = db.Postgres, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions())
	default:
		return nil, "", fmt.Errorf("unknown DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	sqlDB, err := db.Connect(ctx, dialect, dsn, opts)
	if err != nil {
		return nil, "", err
	}
	if err := db.RunMigrations(ctx, sqlDB, dialect); err != nil {
		sqlDB.Close()
		return nil, "", err
	}
	return sqlDB, dialect, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.FileStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.UploadDir), nil
	}
}

func buildVision(cfg config.Config) (llm.VisionClient, error) {
	if cfg.OpenAIAPIKey == "" {
		if cfg.IsDevLike() || cfg.Env == "test" {
			telemetry.Warn("bootstrap.llm_placeholder", map[string]any{"env": cfg.Env})
			return llm.PlaceholderClient{}, nil
		}
		return nil, fmt.Errorf("OPENAI_API_KEY is required in %s", cfg.Env)
	}
	return openai.NewVisionClient(openai.Options{
		APIKey:    cfg.OpenAIAPIKey,
		BaseURL:   cfg.OpenAIBaseURL,
		Model:     cfg.LLMModel,
		MaxTokens: cfg.LLMMaxTokens,
		Timeout:   cfg.OpenAITimeout,
	})
}

func buildServices(app *App, vision llm.VisionClient) {
	if app.DB != nil {
		app.UsersRepo = users.NewSQLRepo(app.DB, app.Dialect)
		app.ProcessesRepo = processes.NewSQLRepo(app.DB, app.Dialect)
		app.DocumentsRepo = documents.NewSQLRepo(app.DB, app.Dialect)
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.ProcessesRepo = processes.NewMemoryRepo()
		app.DocumentsRepo = documents.NewMemoryRepo()
	}

	app.UsersService = users.NewService(app.UsersRepo)
	app.ProcessesService = processes.NewService(app.ProcessesRepo, app.DocumentsRepo)
	app.DocumentsService = &documents.Service{
		Store:     app.Store,
		Repo:      app.DocumentsRepo,
		Processes: app.ProcessesService,
	}
	app.ReportsService = reports.NewService(app.ProcessesService, app.ProcessesRepo, app.Store)

	rasterizer := extraction.NewRasterizer(nil, app.Config.PdftoppmPath, app.Config.RasterDPI)
	app.Extractor = extraction.NewClient(app.Store, rasterizer, vision)
	app.IngestionPipeline = ingestion.NewPipeline(app.ProcessesRepo, app.DocumentsRepo, app.Extractor)
}

func pinger(sqlDB *sql.DB) health.Pinger {
	if sqlDB == nil {
		return nil
	}
	return sqlDB
}
