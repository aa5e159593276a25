package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything main needs to wire the service.
type Config struct {
	Port           string
	AllowedOrigins string
	LogMode        string

	DBDriver    string // postgres | sqlite
	DatabaseURL string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string
	R2Bucket          string
	CDNBaseURL        string

	QuizInviteDelay time.Duration
	SessionIdleTTL  time.Duration
	ReapInterval    time.Duration
	AIRatePerMinute int
}

// R2Enabled reports whether scan images should be archived.
func (c Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2AccessKeySecret != "" && c.R2Bucket != ""
}

// Load reads .env (if present) and then the process environment.
// The returned bool is false when no .env file was found.
func Load() (Config, bool, error) {
	fromFile := godotenv.Load() == nil

	cfg := Config{
		Port:              getenv("PORT", "5200"),
		AllowedOrigins:    normalizeOrigins(getenv("ALLOWED_ORIGINS", "http://localhost:3000")),
		LogMode:           getenv("LOG_MODE", "dev"),
		DBDriver:          strings.ToLower(getenv("DB_DRIVER", "postgres")),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getenv("GEMINI_MODEL", "gemini-3-pro-preview"),
		GeminiBaseURL:     strings.TrimRight(getenv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"), "/"),
		R2AccountID:       os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2AccessKeySecret: os.Getenv("R2_ACCESS_KEY_SECRET"),
		R2Bucket:          os.Getenv("R2_BUCKET_NAME"),
		CDNBaseURL:        os.Getenv("CDN_BASE_URL"),
	}

	var err error
	if cfg.QuizInviteDelay, err = millis("QUIZ_INVITE_DELAY_MS", 2000); err != nil {
		return cfg, fromFile, err
	}
	if cfg.SessionIdleTTL, err = duration("SESSION_IDLE_TTL", 2*time.Hour); err != nil {
		return cfg, fromFile, err
	}
	if cfg.ReapInterval, err = duration("SESSION_REAP_INTERVAL", time.Minute); err != nil {
		return cfg, fromFile, err
	}
	// 0 disables the per-session AI limit.
	if cfg.AIRatePerMinute, err = nonNegative("AI_RATE_PER_MINUTE", 20); err != nil {
		return cfg, fromFile, err
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return cfg, fromFile, fmt.Errorf("DATABASE_URL environment variable not set")
		}
	case "sqlite":
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = "focargo.db"
		}
	default:
		return cfg, fromFile, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.GeminiAPIKey == "" {
		return cfg, fromFile, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	return cfg, fromFile, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// normalizeOrigins trims spaces around each comma-separated origin.
func normalizeOrigins(raw string) string {
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, ",")
}

func integer(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

func nonNegative(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, v)
	}
	return n, nil
}

func millis(key string, def int) (time.Duration, error) {
	n, err := integer(key, def)
	return time.Duration(n) * time.Millisecond, err
}

func duration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return d, nil
}
