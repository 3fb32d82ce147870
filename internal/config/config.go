// Package config provides configuration loaded from environment variables.
// Shared by cmd/trumps, cmd/web and cmd/trumps-mcp.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/peterkuimelis/crictrumps/internal/game"
)

type Config struct {
	// Cards
	CardsFile string // empty means the embedded set

	// Servers
	HTTPAddr string
	TCPPort  int

	// Game pacing
	Delays    game.Delays
	MaxRounds int

	LogLevel slog.Level

	// Player assets
	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiRPM     int
	RedisURL      string
	AssetCacheTTL time.Duration

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	level, err := parseLevel(envOr("TRUMPS_LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		CardsFile: envOr("TRUMPS_CARDS_FILE", ""),

		HTTPAddr: envOr("TRUMPS_HTTP_ADDR", ":8080"),
		TCPPort:  envInt("TRUMPS_TCP_PORT", 9999),

		Delays: game.Delays{
			Computer:  envDuration("TRUMPS_COMPUTER_DELAY", game.DefaultDelays.Computer),
			Reveal:    envDuration("TRUMPS_REVEAL_DELAY", game.DefaultDelays.Reveal),
			NextRound: envDuration("TRUMPS_NEXT_ROUND_DELAY", game.DefaultDelays.NextRound),
		},
		MaxRounds: envInt("TRUMPS_MAX_ROUNDS", 0),

		LogLevel: level,

		GeminiAPIKey:  envOr("GEMINI_API_KEY", ""),
		GeminiBaseURL: envOr("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiRPM:     envInt("GEMINI_RPM", 30),
		RedisURL:      envOr("REDIS_URL", ""),
		AssetCacheTTL: envDuration("ASSET_CACHE_TTL", 24*time.Hour),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 120),
		RateLimitWindow:   envDuration("RATE_LIMIT_WINDOW", time.Minute),
	}

	if cfg.TCPPort <= 0 || cfg.TCPPort > 65535 {
		return nil, fmt.Errorf("TRUMPS_TCP_PORT out of range: %d", cfg.TCPPort)
	}
	if cfg.MaxRounds < 0 {
		return nil, fmt.Errorf("TRUMPS_MAX_ROUNDS must not be negative: %d", cfg.MaxRounds)
	}
	return cfg, nil
}

// AssetsEnabled reports whether a Gemini key is configured.
func (c *Config) AssetsEnabled() bool {
	return c.GeminiAPIKey != ""
}

// Logger builds the text slog logger used by every command.
func (c *Config) Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel}))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("TRUMPS_LOG_LEVEL: %w", err)
	}
	return level, nil
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envDuration accepts Go durations ("1500ms") or a bare number of seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
