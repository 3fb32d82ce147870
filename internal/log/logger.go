package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// EventLogger is the interface for logging game events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	mu     sync.Mutex
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

// Events returns a copy of all logged events.
func (l *MemoryLogger) Events() []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]GameEvent, len(l.events))
	copy(out, l.events)
	return out
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- Formatting ---

// SideName returns "You", "Computer" or "-" for display.
func SideName(side int) string {
	switch side {
	case SidePlayer:
		return "You"
	case SideComputer:
		return "Computer"
	default:
		return "-"
	}
}

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	phase := e.Phase
	for len(phase) < 18 {
		phase += " "
	}
	return fmt.Sprintf("R%-3d %s| %s", e.Round, phase, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewGameStartEvent(playerCards, computerCards int) GameEvent {
	return GameEvent{
		Player:  SideNone,
		Type:    EventGameStart,
		Details: fmt.Sprintf("New game: you hold %d cards, computer holds %d", playerCards, computerCards),
	}
}

// NewRoundEvent names only the player's card; the computer's card stays
// face-down until the reveal.
func NewRoundEvent(round int, phase string, turn int, playerCard string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  turn,
		Type:    EventNewRound,
		Card:    playerCard,
		Details: fmt.Sprintf("=== Round %d (%s to choose): you hold %s ===", round, SideName(turn), playerCard),
	}
}

func NewStatSelectedEvent(round int, phase string, side int, cardName, stat, format string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  side,
		Type:    EventStatSelected,
		Card:    cardName,
		Details: fmt.Sprintf("%s chose %s (%s)", SideName(side), stat, format),
	}
}

func NewRevealEvent(round int, phase string, playerCard, playerValue, computerCard, computerValue string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  SideNone,
		Type:    EventReveal,
		Details: fmt.Sprintf("Reveal: %s %s vs %s %s", playerCard, playerValue, computerCard, computerValue),
	}
}

func NewRoundResultEvent(round int, phase string, winner int, message string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  winner,
		Type:    EventRoundResult,
		Details: message,
	}
}

func NewCardsTransferredEvent(round int, phase string, winner int, cards []string, playerCount, computerCount int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  winner,
		Type:    EventCardsTransferred,
		Details: fmt.Sprintf("%s takes %s (you %d, computer %d)", SideName(winner), strings.Join(cards, ", "), playerCount, computerCount),
	}
}

func NewTurnChangeEvent(round int, phase string, turn int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  turn,
		Type:    EventTurnChange,
		Details: fmt.Sprintf("Turn passes to %s", SideName(turn)),
	}
}

func NewWinEvent(round int, phase string, winner int, reason string) GameEvent {
	details := fmt.Sprintf("%s won the game! (%s)", SideName(winner), reason)
	if winner == SideNone {
		details = fmt.Sprintf("The game is drawn (%s)", reason)
	}
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  winner,
		Type:    EventWin,
		Details: details,
	}
}

func NewRoundLimitEvent(round int, phase string, limit int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   phase,
		Player:  SideNone,
		Type:    EventRoundLimit,
		Details: fmt.Sprintf("Round limit reached (%d rounds)", limit),
	}
}

func NewRestartEvent() GameEvent {
	return GameEvent{
		Player:  SideNone,
		Type:    EventRestart,
		Details: "Game torn down, back to the menu",
	}
}
