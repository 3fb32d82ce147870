package mcp

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/crictrumps/internal/game"
	tnet "github.com/peterkuimelis/crictrumps/internal/net"
)

// Tools exposes one game to an MCP client. The client plays the human side
// against the computer.
type Tools struct {
	cards     []*game.PlayerCard
	maxRounds int
	logger    *slog.Logger

	mu      sync.Mutex
	session *GameSession
}

// NewTools creates the tool set for a card catalog.
func NewTools(cards []*game.PlayerCard, maxRounds int, logger *slog.Logger) *Tools {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tools{cards: cards, maxRounds: maxRounds, logger: logger}
}

// Register adds all game tools to the MCP server.
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(startGameTool(), t.handleStartGame)
	s.AddTool(selectStatTool(), t.handleSelectStat)
	s.AddTool(restartGameTool(), t.handleRestartGame)
	s.AddTool(getGameStateTool(), t.handleGetGameState)
}

// --- Tool definitions ---

func startGameTool() mcp.Tool {
	return mcp.NewTool("start_game",
		mcp.WithDescription("Deal a new game of Cricket Top Trumps against the computer. You hold the first card in play and choose first. "+
			"Returns the events so far and the game state with your card face-up. Starting after a finished game deals a fresh one."),
		mcp.WithNumber("seed", mcp.Description("Optional shuffle seed for a reproducible deal")),
	)
}

func selectStatTool() mcp.Tool {
	formats := make([]string, len(game.Formats))
	for i, f := range game.Formats {
		formats[i] = string(f)
	}
	stats := make([]string, len(game.StatNames))
	var lower []string
	for i, s := range game.StatNames {
		stats[i] = string(s)
		if s.LowerIsBetter() {
			lower = append(lower, string(s))
		}
	}
	return mcp.NewTool("select_stat",
		mcp.WithDescription("Choose a stat from your card in play when it is your turn. The round is then revealed and resolved, "+
			"and any computer turns that follow are played out until you choose again or the game ends. "+
			strings.Join(lower, " and ")+" wins when lower; every other stat wins when higher."),
		mcp.WithString("stat", mcp.Required(), mcp.Enum(stats...), mcp.Description("Stat name")),
		mcp.WithString("format", mcp.Required(), mcp.Enum(formats...), mcp.Description("Match format")),
	)
}

func restartGameTool() mcp.Tool {
	return mcp.NewTool("restart_game",
		mcp.WithDescription("Abandon the current game and return to the menu."),
	)
}

func getGameStateTool() mcp.Tool {
	return mcp.NewTool("get_game_state",
		mcp.WithDescription("Get the current game state and any events not yet returned. Read-only."),
	)
}

// --- Tool handlers ---

func (t *Tools) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session != nil && t.session.Game().State() == game.StateActive {
		return mcp.NewToolResultError("A game is already running. Use restart_game to abandon it."), nil
	}

	seed := int64(request.GetInt("seed", 0))
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sess := NewGameSession(t.cards, seed, t.maxRounds)
	resp, err := sess.Apply(tnet.ClientMessage{Type: tnet.TypeStart})
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start game: %v", err), nil
	}
	t.session = sess
	t.logger.Info("mcp game started", "seed", seed, "cards", len(t.cards))
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (t *Tools) handleSelectStat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	msg := tnet.ClientMessage{
		Type:   tnet.TypeSelect,
		Stat:   strings.TrimSpace(request.GetString("stat", "")),
		Format: strings.TrimSpace(request.GetString("format", "")),
	}
	resp, err := t.session.Apply(msg)
	if err != nil {
		return mcp.NewToolResultErrorf("Selection rejected: %v", err), nil
	}
	if resp.State.GameOver {
		t.logger.Info("mcp game over", "winner", resp.State.Winner, "result", resp.State.Result)
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (t *Tools) handleRestartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	resp, err := t.session.Apply(tnet.ClientMessage{Type: tnet.TypeRestart})
	if err != nil {
		return mcp.NewToolResultErrorf("Restart failed: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (t *Tools) handleGetGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	return mcp.NewToolResultText(respondJSON(t.session.Peek())), nil
}
