package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Session
	SessionTTL             time.Duration
	SessionCleanupInterval time.Duration

	// Agenda (completion API)
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	AgendaModel      string
	AgendaMaxTokens  int
	AgendaTimeout    time.Duration
	AgendaRatePerMin int

	// Seed
	SeedAdminEmail string

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigins string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.SessionTTL = getEnvDuration("SESSION_TTL", 24*time.Hour)
	cfg.SessionCleanupInterval = getEnvDuration("SESSION_CLEANUP_INTERVAL", 1*time.Hour)
	cfg.OpenAIBaseURL = getEnvString("OPENAI_BASE_URL", "https://api.openai.com/v1")
	cfg.AgendaModel = getEnvString("AGENDA_MODEL", "gpt-4o-mini")
	cfg.AgendaMaxTokens = getEnvInt("AGENDA_MAX_TOKENS", 500)
	cfg.AgendaTimeout = getEnvDuration("AGENDA_TIMEOUT", 30*time.Second)
	cfg.AgendaRatePerMin = getEnvInt("AGENDA_RATE_PER_MIN", 60)
	cfg.SeedAdminEmail = getEnvString("SEED_ADMIN_EMAIL", "")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigins = getEnvString("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
