package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/templui/postline/internal/config"
	"github.com/templui/postline/internal/db"
	"github.com/templui/postline/internal/middleware"
	"github.com/templui/postline/internal/repository"
	"github.com/templui/postline/internal/service"
	"github.com/templui/postline/internal/staging"
	"github.com/templui/postline/internal/storage"
)

type App struct {
	Cfg           *config.Config
	DB            *sqlx.DB
	PostService   *service.PostService
	UploadLimiter *middleware.RateLimiter
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		_ = db.Close(database)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Storage
	mediaStorage, err := storage.New(ctx, cfg)
	if err != nil {
		_ = db.Close(database)
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return NewWithUploader(cfg, database, mediaStorage), nil
}

// NewWithUploader wires the app around an open database and a media uploader.
func NewWithUploader(cfg *config.Config, database *sqlx.DB, uploader storage.MediaUploader) *App {
	postRepository := repository.NewPostRepository(database)
	stager := staging.New(cfg.StagingDir)

	return &App{
		Cfg:           cfg,
		DB:            database,
		PostService:   service.NewPostService(postRepository, uploader, stager),
		UploadLimiter: middleware.NewRateLimiter(cfg.UploadRateLimit, cfg.UploadRateWindow, cfg.TrustProxy),
	}
}

func (a *App) Close() error {
	return db.Close(a.DB)
}
