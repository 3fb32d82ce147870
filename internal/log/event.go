package log

// EventType enumerates all observable game events.
type EventType int

const (
	EventGameStart EventType = iota
	EventNewRound
	EventStatSelected
	EventReveal
	EventRoundResult
	EventCardsTransferred
	EventTurnChange
	EventWin
	EventRoundLimit
	EventRestart
)

func (e EventType) String() string {
	switch e {
	case EventGameStart:
		return "GameStart"
	case EventNewRound:
		return "NewRound"
	case EventStatSelected:
		return "StatSelected"
	case EventReveal:
		return "Reveal"
	case EventRoundResult:
		return "RoundResult"
	case EventCardsTransferred:
		return "CardsTransferred"
	case EventTurnChange:
		return "TurnChange"
	case EventWin:
		return "Win"
	case EventRoundLimit:
		return "RoundLimit"
	case EventRestart:
		return "Restart"
	default:
		return "Unknown"
	}
}

// Sides as they appear in events. They match the engine's side indices.
const (
	SidePlayer   = 0
	SideComputer = 1
	SideNone     = -1
)

// GameEvent represents a single observable event in a game.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Round   int       // which round (1-based, 0 before the first round)
	Phase   string    // engine phase when the event was emitted
	Player  int       // acting side (SidePlayer, SideComputer or SideNone)
	Type    EventType // event type
	Card    string    // card name (if applicable)
	Details string    // human-readable detail string
}
