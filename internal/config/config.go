package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName     string
	AppEnv      string
	Port        string
	DebugErrors bool // Return wrapped error text to clients (development only)

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, DigitalOcean Spaces, etc.)
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)
	S3PublicURL string // Optional: CDN base URL used for post media links

	// Upload pipeline
	UploadPrefix     string        // Object key prefix, e.g. "posts"
	UploadTag        string        // Provenance tag attached to every uploaded object
	UploadTimeout    time.Duration // Upper bound for a single PutObject call
	StagingDir       string        // Where incoming files are staged before upload
	MaxUploadSize    int64
	UploadRateLimit  int
	UploadRateWindow time.Duration
	TrustProxy       bool // Key the upload limiter on X-Forwarded-For (only behind a trusted proxy)

	ShutdownTimeout time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	appEnv := envString("APP_ENV", "development") // 'development' or 'production'

	cfg := &Config{
		// Application
		AppName:     envString("APP_NAME", "postline"),
		AppEnv:      appEnv,
		Port:        envString("PORT", "8090"),
		DebugErrors: envBool("DEBUG_ERRORS", appEnv == "development"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/postline.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage (S3-compatible - required for media posts)
		S3Region:    envString("S3_REGION", "us-east-1"),
		S3Bucket:    envString("S3_BUCKET", ""), // Checked when storage is initialized
		S3AccessKey: envString("S3_ACCESS_KEY", ""), // Empty: default AWS credential chain
		S3SecretKey: envString("S3_SECRET_KEY", ""),
		S3Endpoint:  envString("S3_ENDPOINT", ""),
		S3PublicURL: envString("S3_PUBLIC_URL", ""),

		// Upload pipeline
		UploadPrefix:     envString("UPLOAD_PREFIX", "posts"),
		UploadTag:        envString("UPLOAD_TAG", "postline"),
		UploadTimeout:    envDuration("UPLOAD_TIMEOUT", 30*time.Second),
		StagingDir:       envString("STAGING_DIR", os.TempDir()),
		MaxUploadSize:    envInt64("MAX_UPLOAD_SIZE", 50<<20), // 50MB
		UploadRateLimit:  envInt("UPLOAD_RATE_LIMIT", 30),
		UploadRateWindow: envDuration("UPLOAD_RATE_WINDOW", time.Minute),
		TrustProxy:       envBool("TRUST_PROXY", false),

		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures the deployment does not silently run on
// development defaults.
func validateProduction(cfg *Config) {
	if cfg.DBDriver == "sqlite" {
		slog.Warn("production deployment is using sqlite",
			"hint", "set DB_DRIVER=pgx and DB_CONNECTION to a postgres DSN")
	}
	if cfg.DebugErrors {
		slog.Error("production deployment must not expose internal errors",
			"hint", "unset DEBUG_ERRORS")
		os.Exit(1)
	}
	if cfg.S3PublicURL == "" {
		slog.Warn("production deployment has no S3_PUBLIC_URL, media links will point at the bucket endpoint")
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
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
		slog.Warn("config invalid int64, using default", "key", key, "value", v, "default", def)
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

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
