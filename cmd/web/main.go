// Command web serves the browser UI and HTTP API.
//
// Usage:
//
//	trumps-web
//	TRUMPS_HTTP_ADDR=:9090 GEMINI_API_KEY=... REDIS_URL=redis://localhost:6379/0 trumps-web
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/peterkuimelis/crictrumps/internal/assets"
	"github.com/peterkuimelis/crictrumps/internal/catalog"
	"github.com/peterkuimelis/crictrumps/internal/config"
	"github.com/peterkuimelis/crictrumps/internal/web"
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := cfg.Logger()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cards, err := catalog.Open(cfg.CardsFile)
	if err != nil {
		logger.Error("Failed to load cards", "error", err)
		os.Exit(1)
	}
	logger.Info("Cards loaded", "count", cards.Len(), "file", cfg.CardsFile)

	svc, closeAssets := buildAssets(ctx, cfg, logger)
	defer closeAssets()

	srv := web.NewServer(web.Options{
		Catalog:           cards,
		Assets:            svc,
		Delays:            cfg.Delays,
		MaxRounds:         cfg.MaxRounds,
		MaxGames:          1000,
		GameTTL:           6 * time.Hour,
		Logger:            logger,
		CORSAllowOrigins:  cfg.CORSAllowOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
	})

	logger.Info("Web UI listening", "addr", cfg.HTTPAddr)
	if err := srv.ListenAndServe(ctx, cfg.HTTPAddr); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

// buildAssets wires the details endpoint. Without a Gemini key the endpoint
// is disabled; without Redis the cache lives in memory.
func buildAssets(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*assets.Service, func()) {
	if !cfg.AssetsEnabled() {
		logger.Info("Player details disabled (no GEMINI_API_KEY)")
		return nil, func() {}
	}
	gen := assets.NewGeminiGenerator(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiRPM, logger)

	if cfg.RedisURL != "" {
		rc, err := assets.NewRedisCache(ctx, cfg.RedisURL, cfg.AssetCacheTTL)
		if err == nil {
			logger.Info("Asset cache initialized", "backend", "redis", "ttl", cfg.AssetCacheTTL)
			return assets.NewService(gen, rc, logger), func() { rc.Close() }
		}
		logger.Warn("Redis unavailable, falling back to memory cache", "error", err)
	}
	logger.Info("Asset cache initialized", "backend", "memory", "ttl", cfg.AssetCacheTTL)
	return assets.NewService(gen, assets.NewMemoryCache(cfg.AssetCacheTTL), logger), func() {}
}
