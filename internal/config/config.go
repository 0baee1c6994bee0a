package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageInline = "inline"
	StorageS3     = "s3"
)

type Config struct {
	// Application
	AppName        string
	AppEnv         string
	Port           string
	FrontendOrigin string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string
	JWTExpiry time.Duration

	// Image generation (Cloudflare Workers AI)
	CloudflareAccountID string
	CloudflareAPIToken  string
	CloudflareModel     string
	GenerateTimeout     time.Duration

	// Image persistence
	ImageStorage  string // "inline" (payload in DB) or "s3" (blob store + metadata)
	MaxUploadSize int64
	FetchTimeout  time.Duration
	ImageMaxDim   int
	ImageMaxBytes int64

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, etc.)
	// Only required when ImageStorage is "s3".
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string
	S3PresignExpiry time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:        envString("APP_NAME", "ArtBlossom AI"),
		AppEnv:         envRequired("APP_ENV"), // Required: 'development' or 'production'
		Port:           envString("PORT", "5000"),
		FrontendOrigin: envString("FRONTEND_ORIGIN", "http://localhost:8080"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/artblossom.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		JWTSecret: envRequired("JWT_SECRET"),
		JWTExpiry: envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days

		// Image generation
		CloudflareAccountID: envString("CLOUDFLARE_ACCOUNT_ID", ""),
		CloudflareAPIToken:  envString("CLOUDFLARE_API_TOKEN", ""),
		CloudflareModel:     envString("CLOUDFLARE_MODEL", "@cf/stabilityai/stable-diffusion-xl-base-1.0"),
		GenerateTimeout:     envDuration("GENERATE_TIMEOUT", 60*time.Second),

		// Image persistence
		ImageStorage:  envString("IMAGE_STORAGE", StorageInline),
		MaxUploadSize: envInt64("MAX_UPLOAD_SIZE", 50<<20), // 50MB
		FetchTimeout:  envDuration("FETCH_TIMEOUT", 30*time.Second),
		ImageMaxDim:   envInt("IMAGE_MAX_DIMENSION", 1920),
		ImageMaxBytes: envInt64("IMAGE_MAX_BYTES", 1<<20), // ~1MB target after re-encode

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage (S3-compatible - only used with IMAGE_STORAGE=s3)
		S3Region:        envString("S3_REGION", ""),
		S3Bucket:        envString("S3_BUCKET", ""),
		S3AccessKey:     envString("S3_ACCESS_KEY", ""),
		S3SecretKey:     envString("S3_SECRET_KEY", ""),
		S3Endpoint:      envString("S3_ENDPOINT", ""),
		S3PresignExpiry: envDuration("S3_PRESIGN_EXPIRY", 168*time.Hour),
	}

	if cfg.ImageStorage != StorageInline && cfg.ImageStorage != StorageS3 {
		slog.Error("config invalid IMAGE_STORAGE", "value", cfg.ImageStorage, "allowed", []string{StorageInline, StorageS3})
		os.Exit(1)
	}

	if cfg.ImageStorage == StorageS3 {
		validateS3(cfg)
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateS3 ensures the blob store is fully configured when the reference
// strategy is selected. The inline strategy needs no S3 credentials at all.
func validateS3(cfg *Config) {
	for key, value := range map[string]string{
		"S3_REGION":     cfg.S3Region,
		"S3_BUCKET":     cfg.S3Bucket,
		"S3_ACCESS_KEY": cfg.S3AccessKey,
		"S3_SECRET_KEY": cfg.S3SecretKey,
	} {
		if value == "" {
			slog.Error("config IMAGE_STORAGE=s3 requires env var", "key", key)
			os.Exit(1)
		}
	}
}

// validateProduction ensures all required services are configured for production
// deployments. Development allows the generation proxy to stay unconfigured so the
// persistence endpoints can be exercised on their own.
func validateProduction(cfg *Config) {
	if cfg.CloudflareAccountID == "" || cfg.CloudflareAPIToken == "" {
		slog.Error("production deployment requires CLOUDFLARE_ACCOUNT_ID and CLOUDFLARE_API_TOKEN",
			"hint", "set APP_ENV=development to run without the generation proxy")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Sanitized returns a copy of the config with only public/safe fields.
// All secrets and credentials are excluded. Safe to expose in request contexts.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:        c.AppName,
		AppEnv:         c.AppEnv,
		Port:           c.Port,
		FrontendOrigin: c.FrontendOrigin,

		ImageStorage:  c.ImageStorage,
		MaxUploadSize: c.MaxUploadSize,

		S3Endpoint: c.S3Endpoint,
	}
}
