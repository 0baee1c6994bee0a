package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/artblossom/artblossom/internal/config"
	"github.com/artblossom/artblossom/internal/db"
	"github.com/artblossom/artblossom/internal/encoder"
	"github.com/artblossom/artblossom/internal/repository"
	"github.com/artblossom/artblossom/internal/service"
	"github.com/artblossom/artblossom/internal/storage"
	"github.com/artblossom/artblossom/internal/store"
)

type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	AuthService     *service.AuthService
	ImageService    *service.ImageService
	GenerateService *service.GenerateService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	imageRepository := repository.NewImageRepository(database)

	// Gallery store: one strategy per deployment
	var galleryStore store.GalleryStore
	switch cfg.ImageStorage {
	case config.StorageS3:
		blobStorage, err := storage.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %v", err)
		}
		galleryStore = store.NewS3Store(imageRepository, blobStorage)
	default:
		galleryStore = store.NewInlineStore(imageRepository)
	}

	// Services
	imageEncoder := encoder.New(cfg.FetchTimeout, cfg.MaxUploadSize, cfg.ImageMaxDim, cfg.ImageMaxBytes)
	imageService := service.NewImageService(imageEncoder, galleryStore)
	authService := service.NewAuthService(cfg.JWTSecret, cfg.JWTExpiry)
	generateService := service.NewGenerateService(
		cfg.CloudflareAccountID,
		cfg.CloudflareAPIToken,
		cfg.CloudflareModel,
		cfg.GenerateTimeout,
	)

	return &App{
		Cfg:             cfg,
		DB:              database,
		AuthService:     authService,
		ImageService:    imageService,
		GenerateService: generateService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
