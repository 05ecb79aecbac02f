package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"ui-feedback-backend/internal/analyses"
	googleauth "ui-feedback-backend/internal/auth"
	"ui-feedback-backend/internal/collaborator"
	"ui-feedback-backend/internal/findings"
	"ui-feedback-backend/internal/sessions"
	"ui-feedback-backend/internal/shared/config"
	"ui-feedback-backend/internal/shared/server"
	"ui-feedback-backend/internal/shared/storage/db"
	"ui-feedback-backend/internal/shared/storage/object"
	localstore "ui-feedback-backend/internal/shared/storage/object/local"
	s3store "ui-feedback-backend/internal/shared/storage/object/s3"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Store           object.ObjectStore
	Collaborator    collaborator.Client
	Catalog         *findings.Catalog
	SessionsRepo    sessions.Repo
	AnalysesRepo    analyses.Repo
	SessionsService *sessions.Service
	AnalysesService *analyses.Service
	SessionsHandler *sessions.Handler
	AnalysisHandler *analyses.Handler
	GoogleAuth      *googleauth.GoogleService
}

// Build prepares dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
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

	collab, err := buildCollaborator(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:       cfg,
		DB:           sqlDB,
		Store:        store,
		Collaborator: collab,
		Catalog:      findings.DefaultCatalog(),
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		DB:              app.DB,
		Resolver:        app.SessionsService.Resolve,
		Catalog:         app.Catalog,
		SessionHandler:  app.SessionsHandler,
		AnalysisHandler: app.AnalysisHandler,
		GoogleAuth:      app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			sqlDB.Close()
		}
	}
	if err != nil {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: database unavailable; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildCollaborator(cfg config.Config) (collaborator.Client, error) {
	if strings.TrimSpace(cfg.CollaboratorURL) == "" {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: COLLABORATOR_URL empty; analyses will fail until it is set")
			return collaborator.PlaceholderClient{}, nil
		}
		return nil, fmt.Errorf("COLLABORATOR_URL is required")
	}
	return collaborator.NewHTTPClient(cfg.CollaboratorURL, cfg.CollaboratorTimeout)
}

func buildServices(app *App) {
	if app.DB != nil {
		app.SessionsRepo = &sessions.PGRepo{DB: app.DB}
		app.AnalysesRepo = &analyses.PGRepo{DB: app.DB}
	} else {
		app.SessionsRepo = sessions.NewMemoryRepo()
		app.AnalysesRepo = analyses.NewMemoryRepo()
	}

	app.AnalysesService = &analyses.Service{
		Repo:           app.AnalysesRepo,
		Store:          app.Store,
		Collaborator:   app.Collaborator,
		Catalog:        app.Catalog,
		MaxUploadBytes: app.Config.MaxUploadBytes,
	}
	app.SessionsService = sessions.NewService(app.SessionsRepo, app.Config.SessionTTL)
	app.SessionsService.OnEnd = append(app.SessionsService.OnEnd, app.AnalysesService.EndSession)

	app.SessionsHandler = sessions.NewHandler(app.SessionsService)
	app.AnalysisHandler = analyses.NewHandler(app.AnalysesService)
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		app.SessionsService,
	)
}
