package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultSecretKey = "promotore-secret-key-change-in-production"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	DatabaseDriver string
	DatabaseURL    string
	SQLitePath     string

	FileStoreType string
	UploadDir     string
	AWSRegion     string
	S3Bucket      string
	S3Prefix      string
	SSEKMSKeyID   string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAITimeout time.Duration
	LLMModel      string
	LLMMaxTokens  int
	RasterDPI     int
	PdftoppmPath  string

	SecretKey      string
	SessionTTL     time.Duration
	MaxUploadBytes int64

	AdminUsername string
	AdminPassword string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	for _, path := range []string{".env", "cmd/.env"} {
		_ = godotenv.Load(path)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "5000")
	v.SetDefault("ENV", "dev")
	v.SetDefault("CORS_ALLOW_ORIGINS", "")
	v.SetDefault("DATABASE_DRIVER", DriverSQLite)
	v.SetDefault("SQLITE_PATH", "promotore.db")
	v.SetDefault("FILE_STORE", "local")
	v.SetDefault("UPLOAD_DIR", "static/uploads")
	v.SetDefault("OPENAI_BASE_URL", "")
	v.SetDefault("LLM_MODEL", "gpt-4o-mini")
	v.SetDefault("LLM_MAX_TOKENS", 4096)
	v.SetDefault("RASTER_DPI", 300)
	v.SetDefault("PDFTOPPM_PATH", "pdftoppm")
	v.SetDefault("SECRET_KEY", defaultSecretKey)
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("MAX_UPLOAD_BYTES", 50<<20)
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "admin123")
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) Config {
	env := normalizeEnv(v.GetString("ENV"))
	cfg := Config{
		Port:            v.GetString("PORT"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		DatabaseDriver:  normalizeDriver(v.GetString("DATABASE_DRIVER")),
		DatabaseURL:     strings.TrimSpace(v.GetString("DATABASE_URL")),
		SQLitePath:      v.GetString("SQLITE_PATH"),
		FileStoreType:   normalizeStoreType(v.GetString("FILE_STORE")),
		UploadDir:       v.GetString("UPLOAD_DIR"),
		AWSRegion:       v.GetString("AWS_REGION"),
		S3Bucket:        v.GetString("S3_BUCKET"),
		S3Prefix:        v.GetString("S3_PREFIX"),
		SSEKMSKeyID:     v.GetString("SSE_KMS_KEY_ID"),
		OpenAIAPIKey:    strings.TrimSpace(v.GetString("OPENAI_API_KEY")),
		OpenAIBaseURL:   strings.TrimSpace(v.GetString("OPENAI_BASE_URL")),
		OpenAITimeout:   time.Duration(v.GetInt("OPENAI_TIMEOUT_SECONDS")) * time.Second,
		LLMModel:        v.GetString("LLM_MODEL"),
		LLMMaxTokens:    v.GetInt("LLM_MAX_TOKENS"),
		RasterDPI:       v.GetInt("RASTER_DPI"),
		PdftoppmPath:    v.GetString("PDFTOPPM_PATH"),
		SecretKey:       v.GetString("SECRET_KEY"),
		SessionTTL:      v.GetDuration("SESSION_TTL"),
		MaxUploadBytes:  v.GetInt64("MAX_UPLOAD_BYTES"),
		AdminUsername:   v.GetString("ADMIN_USERNAME"),
		AdminPassword:   v.GetString("ADMIN_PASSWORD"),
	}

	if env == "production" && cfg.DatabaseDriver == DriverPostgres && cfg.DatabaseURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}
	if env == "production" && cfg.SecretKey == defaultSecretKey {
		log.Printf("SECRET_KEY is using the development default")
	}
	return cfg
}

// IsDevLike reports whether the environment tolerates missing credentials.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeDriver(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "postgresql", "pg":
		return DriverPostgres
	case "memory":
		return DriverMemory
	default:
		return DriverSQLite
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
