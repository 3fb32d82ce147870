package mcp

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/peterkuimelis/crictrumps/internal/game"
	"github.com/peterkuimelis/crictrumps/internal/log"
	tnet "github.com/peterkuimelis/crictrumps/internal/net"
)

// settleLimit caps how many delayed effects one tool call may run. A long
// run of drawn rounds on the computer's turn could otherwise keep a call
// busy indefinitely.
const settleLimit = 2000

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	Events    []tnet.EventView `json:"events"`
	State     *tnet.StateView  `json:"state"`
	Unsettled int              `json:"unsettled,omitempty"` // effects left queued after settleLimit
	Seed      int64            `json:"seed,omitempty"`
}

// GameSession is one game played through MCP tools. The game runs on a
// manual scheduler: every call applies its command and then runs queued
// effects until the game waits for the player again.
type GameSession struct {
	game  *game.Game
	sched *game.ManualScheduler
	seed  int64

	mu     sync.Mutex
	events []log.GameEvent
}

// NewGameSession creates a session sitting at the menu.
func NewGameSession(cards []*game.PlayerCard, seed int64, maxRounds int) *GameSession {
	sched := game.NewManualScheduler()
	sess := &GameSession{sched: sched, seed: seed}
	sess.game = game.New(game.Config{
		Catalog:   cards,
		Delays:    game.DefaultDelays,
		Scheduler: sched,
		Seed:      seed,
		MaxRounds: maxRounds,
	})
	sess.game.Subscribe(sess.appendEvent)
	return sess
}

// Game returns the underlying game.
func (s *GameSession) Game() *game.Game {
	return s.game
}

// Apply runs a client command and settles the game.
func (s *GameSession) Apply(msg tnet.ClientMessage) (*ToolResponse, error) {
	if err := tnet.Apply(s.game, msg); err != nil {
		return nil, err
	}
	return s.settle(), nil
}

// Peek returns accumulated events and the current state without running
// anything.
func (s *GameSession) Peek() *ToolResponse {
	return s.response()
}

func (s *GameSession) settle() *ToolResponse {
	s.sched.Drain(settleLimit)
	return s.response()
}

func (s *GameSession) response() *ToolResponse {
	resp := &ToolResponse{
		Events:    []tnet.EventView{},
		State:     tnet.BuildStateView(s.game.Snapshot()),
		Unsettled: s.sched.Pending(),
		Seed:      s.seed,
	}
	for _, e := range s.drainEvents() {
		resp.Events = append(resp.Events, *tnet.BuildEventView(e))
	}
	return resp
}

// appendEvent runs under the game lock and only touches the session buffer.
func (s *GameSession) appendEvent(e log.GameEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

// drainEvents returns all accumulated events and clears the buffer.
func (s *GameSession) drainEvents() []log.GameEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	return events
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
