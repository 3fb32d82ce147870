package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/peterkuimelis/crictrumps/internal/game"
)

func testCards(n int) []*game.PlayerCard {
	cards := make([]*game.PlayerCard, n)
	for i := range cards {
		cards[i] = &game.PlayerCard{
			Name:  fmt.Sprintf("Player %d", i+1),
			Stats: game.Stats{ODI: game.StatLine{game.StatRuns: game.Number(float64((i + 1) * 100))}},
		}
	}
	return cards
}

type handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func call(t *testing.T, h handler, args map[string]any) (*ToolResponse, *mcp.CallToolResult) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if res.IsError {
		return nil, res
	}
	var resp ToolResponse
	if err := json.Unmarshal([]byte(resultText(t, res)), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return &resp, res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	default:
		t.Fatalf("unexpected content %T", c)
		return ""
	}
}

func TestToolsRequireGame(t *testing.T) {
	tools := NewTools(testCards(6), 0, nil)
	for name, h := range map[string]handler{
		"select_stat":    tools.handleSelectStat,
		"restart_game":   tools.handleRestartGame,
		"get_game_state": tools.handleGetGameState,
	} {
		_, res := call(t, h, map[string]any{"stat": "runs", "format": "odi"})
		if !res.IsError {
			t.Errorf("%s without a game should fail", name)
		}
	}
}

func TestStartGame(t *testing.T) {
	tools := NewTools(testCards(6), 0, nil)
	resp, _ := call(t, tools.handleStartGame, map[string]any{"seed": 7})
	if resp == nil {
		t.Fatal("start_game failed")
	}
	if resp.Seed != 7 {
		t.Errorf("seed = %d, want 7", resp.Seed)
	}
	sv := resp.State
	if sv.State != "active" || !sv.IsYourTurn || sv.Round != 1 {
		t.Errorf("unexpected state %+v", sv)
	}
	if sv.You.DeckCount != 3 || sv.Computer.DeckCount != 3 {
		t.Errorf("deck counts %d/%d, want 3/3", sv.You.DeckCount, sv.Computer.DeckCount)
	}
	if sv.Computer.Card != nil {
		t.Error("computer card visible before reveal")
	}
	if len(resp.Events) == 0 || resp.Events[0].Type != "GameStart" {
		t.Errorf("expected GameStart first, got %+v", resp.Events)
	}
	round, _ := tools.session.Game().CurrentRound()
	for _, ev := range resp.Events {
		if ev.Card == round.ComputerCard.Name || strings.Contains(ev.Details, round.ComputerCard.Name) {
			t.Errorf("%s event shows the face-down card: %q", ev.Type, ev.Details)
		}
	}

	if _, res := call(t, tools.handleStartGame, nil); !res.IsError {
		t.Error("second start_game during a game should fail")
	}
}

func TestSelectStatPlaysToGameOver(t *testing.T) {
	const n = 8
	tools := NewTools(testCards(n), 200, nil)
	resp, _ := call(t, tools.handleStartGame, map[string]any{"seed": 42})

	for i := 0; i < 300 && !resp.State.GameOver; i++ {
		if !resp.State.IsYourTurn {
			t.Fatalf("call %d: settled into a state that is not the player's turn: %+v", i, resp.State)
		}
		var res *mcp.CallToolResult
		resp, res = call(t, tools.handleSelectStat, map[string]any{"stat": "runs", "format": "odi"})
		if resp == nil {
			t.Fatalf("select_stat failed: %s", resultText(t, res))
		}
		if len(resp.Events) == 0 {
			t.Fatal("select_stat returned no events")
		}
		if resp.Events[0].Type != "StatSelected" {
			t.Errorf("first event = %s, want StatSelected", resp.Events[0].Type)
		}
		if resp.Unsettled != 0 {
			t.Fatalf("unsettled effects: %d", resp.Unsettled)
		}
		if got := resp.State.You.DeckCount + resp.State.Computer.DeckCount; got != n {
			t.Fatalf("card count = %d, want %d", got, n)
		}
	}
	if !resp.State.GameOver {
		t.Fatal("game did not finish")
	}
	if resp.State.Winner == "" {
		t.Error("winner not reported")
	}

	// A finished game can be dealt again.
	resp, _ = call(t, tools.handleStartGame, map[string]any{"seed": 43})
	if resp == nil || resp.State.State != "active" {
		t.Fatal("start_game after game over should deal a new game")
	}
}

func TestSelectStatRejectsBadInput(t *testing.T) {
	tools := NewTools(testCards(6), 0, nil)
	call(t, tools.handleStartGame, map[string]any{"seed": 1})

	for _, args := range []map[string]any{
		{"stat": "ducks", "format": "odi"},
		{"stat": "runs", "format": "ipl"},
		{"stat": "", "format": ""},
	} {
		if _, res := call(t, tools.handleSelectStat, args); !res.IsError {
			t.Errorf("select_stat(%v) should fail", args)
		}
	}

	resp, _ := call(t, tools.handleGetGameState, nil)
	if resp == nil || !resp.State.IsYourTurn || resp.State.Selection != nil {
		t.Errorf("rejected selections changed the game: %+v", resp)
	}
}

func TestRestartAndGetState(t *testing.T) {
	tools := NewTools(testCards(6), 0, nil)
	call(t, tools.handleStartGame, map[string]any{"seed": 3})

	resp, _ := call(t, tools.handleGetGameState, nil)
	if len(resp.Events) != 0 {
		t.Errorf("get_game_state repeated %d events already returned", len(resp.Events))
	}

	resp, _ = call(t, tools.handleRestartGame, nil)
	if resp.State.State != "menu" {
		t.Errorf("state after restart = %s, want menu", resp.State.State)
	}
	if resp.State.You.DeckCount != 0 || resp.State.Computer.DeckCount != 0 {
		t.Error("decks not cleared by restart")
	}
	if len(resp.Events) == 0 || resp.Events[len(resp.Events)-1].Type != "Restart" {
		t.Errorf("expected Restart event, got %+v", resp.Events)
	}

	resp, _ = call(t, tools.handleStartGame, map[string]any{"seed": 4})
	if resp == nil || resp.State.State != "active" {
		t.Fatal("start_game after restart failed")
	}
}

func TestSelectStatToolDescribesDirections(t *testing.T) {
	desc := strings.ToLower(selectStatTool().Description)
	for _, s := range game.StatNames {
		if s.LowerIsBetter() && !strings.Contains(desc, strings.ToLower(string(s))+" wins when lower") {
			t.Errorf("description does not say %s wins when lower", s)
		}
	}
	for _, absent := range []string{"economy", "strike rate"} {
		if strings.Contains(desc, absent) {
			t.Errorf("description mentions %q, which is not a stat", absent)
		}
	}
}
