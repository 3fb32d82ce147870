// Command trumps-mcp serves Cricket Top Trumps as MCP tools over stdio.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/crictrumps/internal/catalog"
	"github.com/peterkuimelis/crictrumps/internal/config"
	"github.com/peterkuimelis/crictrumps/internal/mcp"
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	// stdout carries the protocol; logs go to stderr.
	logger := cfg.Logger()

	cards, err := catalog.Open(cfg.CardsFile)
	if err != nil {
		logger.Error("Failed to load cards", "error", err)
		os.Exit(1)
	}

	maxRounds := cfg.MaxRounds
	if maxRounds == 0 {
		maxRounds = 500
	}

	s := server.NewMCPServer("crictrumps", "1.0.0", server.WithToolCapabilities(false))
	mcp.NewTools(cards.AllCards(), maxRounds, logger).Register(s)

	if err := server.ServeStdio(s); err != nil {
		logger.Error("MCP server error", "error", err)
		os.Exit(1)
	}
}
