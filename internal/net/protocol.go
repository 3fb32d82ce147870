package net

// Message types for the JSON protocol over TCP. Each message is one JSON
// object per line.

// Server → client message types.
const (
	TypeNotify = "notify"
	TypeState  = "state"
	TypeError  = "error"
)

// Client → server message types.
const (
	TypeStart   = "start"
	TypeSelect  = "select"
	TypeRestart = "restart"
	TypeQuit    = "quit"
)

// --- Server → Client messages ---

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "notify"
	Event *EventView `json:"event,omitempty"`

	// For "state" (and alongside "error")
	State *StateView `json:"state,omitempty"`

	// For "error"
	Error string `json:"error,omitempty"`
}

// EventView is a simplified game event for the client.
type EventView struct {
	Round   int    `json:"round"`
	Phase   string `json:"phase"`
	Player  int    `json:"player"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Details string `json:"details"`
}

// StateView is the game as the human sees it. The computer's card is only
// filled in once the round is revealed.
type StateView struct {
	State      string         `json:"state"` // menu, active, game-over
	Phase      string         `json:"phase,omitempty"`
	Round      int            `json:"round"`
	Turn       string         `json:"turn,omitempty"` // "you" or "computer"
	IsYourTurn bool           `json:"is_your_turn"`
	You        SideView       `json:"you"`
	Computer   SideView       `json:"computer"`
	Selection  *SelectionView `json:"selection,omitempty"`
	Message    string         `json:"message"`

	// Set once the round is compared.
	RoundWinner string `json:"round_winner,omitempty"` // "you", "computer" or "draw"

	// Set once the game is over.
	GameOver bool   `json:"game_over,omitempty"`
	Winner   string `json:"winner,omitempty"`
	Result   string `json:"result,omitempty"`
}

// SideView shows one hand.
type SideView struct {
	DeckCount int       `json:"deck_count"`
	Card      *CardView `json:"card,omitempty"`
}

// CardView is a face-up card.
type CardView struct {
	Name    string     `json:"name"`
	Country string     `json:"country,omitempty"`
	Span    string     `json:"span,omitempty"`
	Image   string     `json:"image,omitempty"`
	Stats   []StatView `json:"stats"`
}

// StatView is one cell of a card's stat table. Index is the number a
// client can type to select it.
type StatView struct {
	Index   int    `json:"index"`
	Stat    string `json:"stat"`
	Format  string `json:"format"`
	Label   string `json:"label"`
	Value   string `json:"value"`
	Present bool   `json:"present"`
}

// SelectionView describes the chosen stat for the round.
type SelectionView struct {
	By     string `json:"by"` // "you" or "computer"
	Stat   string `json:"stat"`
	Format string `json:"format"`
	Label  string `json:"label"`
}

// --- Client → Server messages ---

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "select"
	Stat   string `json:"stat,omitempty"`
	Format string `json:"format,omitempty"`
}
