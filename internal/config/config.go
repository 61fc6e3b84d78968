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
	// 未設定の場合はインメモリストアで動作する。
	DatabaseURL string

	// Auth
	JWTSecret   string
	TokenExpiry time.Duration

	// Game
	TargetTime          time.Duration
	AcceptableDeviation time.Duration
	SessionTTL          time.Duration

	// Leaderboard
	LeaderboardLimit int

	// Rate Limit（req/min/user）
	RateLimitGeneral   int
	RateLimitGameStart int

	// Cleanup
	SessionRetention time.Duration

	// Server
	ServerPort string
	LogLevel   string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.TokenExpiry = getEnvDuration("TOKEN_EXPIRY", 1*time.Hour)
	cfg.TargetTime = getEnvDuration("TARGET_TIME", 10*time.Second)
	cfg.AcceptableDeviation = getEnvDuration("ACCEPTABLE_DEVIATION", 500*time.Millisecond)
	cfg.SessionTTL = getEnvDuration("SESSION_TTL", 30*time.Minute)
	cfg.LeaderboardLimit = getEnvInt("LEADERBOARD_LIMIT", 10)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitGameStart = getEnvInt("RATE_LIMIT_GAME_START", 30)
	cfg.SessionRetention = getEnvDuration("SESSION_RETENTION", 24*time.Hour)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

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
