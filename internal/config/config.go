package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database（空の場合は計算履歴を永続化しない）
	DatabaseURL string

	// Calculation
	StrictValidation bool
	CacheTTL         time.Duration

	// History
	HistoryRetentionDays int
	CleanupInterval      time.Duration

	// Rate Limit（req/min/client）
	RateLimitGeneral int

	// Logging
	LogLevel slog.Level

	// Server
	ServerPort string

	// CORS（カンマ区切りで複数指定可、"*"で全許可）
	CORSAllowedOrigin string
}

// HistoryEnabled は計算履歴の永続化が有効かを返す。
func (c *Config) HistoryEnabled() bool {
	return c.DatabaseURL != ""
}

// Load は環境変数からConfigを読み込む。
// 値が不正な環境変数がある場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.DatabaseURL = getEnvString("DATABASE_URL", "")
	cfg.StrictValidation = getEnvBool("STRICT_VALIDATION", false)
	cfg.CacheTTL = getEnvDuration("CACHE_TTL", 10*time.Minute)
	cfg.HistoryRetentionDays = getEnvInt("HISTORY_RETENTION_DAYS", 30)
	cfg.CleanupInterval = getEnvDuration("CLEANUP_INTERVAL", 24*time.Hour)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.LogLevel = parseLogLevel(getEnvString("LOG_LEVEL", "info"))
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	var invalid []string

	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		invalid = append(invalid, "SERVER_PORT")
	}
	if cfg.HistoryRetentionDays < 1 {
		invalid = append(invalid, "HISTORY_RETENTION_DAYS")
	}
	if cfg.RateLimitGeneral < 1 {
		invalid = append(invalid, "RATE_LIMIT_GENERAL")
	}
	// 0はメモ化無効を意味する
	if cfg.CacheTTL < 0 {
		invalid = append(invalid, "CACHE_TTL")
	}
	if cfg.CleanupInterval <= 0 {
		invalid = append(invalid, "CLEANUP_INTERVAL")
	}

	if len(invalid) > 0 {
		return nil, fmt.Errorf("invalid environment variables: %v", invalid)
	}

	return cfg, nil
}

func parseLogLevel(v string) slog.Level {
	switch strings.ToLower(v) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
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

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
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
