package game

import (
	"errors"
	"fmt"

	"github.com/peterkuimelis/crictrumps/internal/log"
)

var (
	ErrCatalogTooSmall = errors.New("catalog needs at least 2 cards")
	ErrUnknownFormat   = errors.New("unknown format")
	ErrUnknownStat     = errors.New("unknown stat")
)

// --- Enums ---

// Side identifies one of the two hands. The values double as deck indices.
type Side int

const (
	SidePlayer   Side = log.SidePlayer
	SideComputer Side = log.SideComputer
	SideNone     Side = log.SideNone
)

func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideComputer:
		return "computer"
	default:
		return "none"
	}
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	switch s {
	case SidePlayer:
		return SideComputer
	case SideComputer:
		return SidePlayer
	default:
		return SideNone
	}
}

// Outcome is the result of a single stat comparison.
type Outcome int

const (
	OutcomeDraw Outcome = iota
	OutcomePlayer
	OutcomeComputer
)

func (o Outcome) String() string {
	switch o {
	case OutcomePlayer:
		return "player"
	case OutcomeComputer:
		return "computer"
	default:
		return "draw"
	}
}

// Invert swaps the winner, leaving a draw unchanged.
func (o Outcome) Invert() Outcome {
	switch o {
	case OutcomePlayer:
		return OutcomeComputer
	case OutcomeComputer:
		return OutcomePlayer
	default:
		return OutcomeDraw
	}
}

// Side returns the winning side, or SideNone for a draw.
func (o Outcome) Side() Side {
	switch o {
	case OutcomePlayer:
		return SidePlayer
	case OutcomeComputer:
		return SideComputer
	default:
		return SideNone
	}
}

// Format is one of the three cricket match types.
type Format string

const (
	FormatTest Format = "test"
	FormatODI  Format = "odi"
	FormatT20  Format = "t20"
)

// Formats lists the formats in display order.
var Formats = []Format{FormatTest, FormatODI, FormatT20}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// StatName is a named statistic within a format.
type StatName string

const (
	StatMatches        StatName = "matches"
	StatRuns           StatName = "runs"
	StatHighestScore   StatName = "highestScore"
	StatBattingAverage StatName = "battingAverage"
	StatCenturies      StatName = "centuries"
	StatFours          StatName = "fours"
	StatSixes          StatName = "sixes"
	StatWickets        StatName = "wickets"
	StatBowlingAverage StatName = "bowlingAverage"
	StatFiveWickets    StatName = "fiveWickets"
)

// StatNames is the canonical stat order. Anything iterating a stat bundle
// goes through this slice so results are reproducible.
var StatNames = []StatName{
	StatMatches,
	StatRuns,
	StatHighestScore,
	StatBattingAverage,
	StatCenturies,
	StatFours,
	StatSixes,
	StatWickets,
	StatBowlingAverage,
	StatFiveWickets,
}

// ParseStatName validates a stat name.
func ParseStatName(s string) (StatName, error) {
	for _, n := range StatNames {
		if string(n) == s {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStat, s)
}

// Label returns the card label for the stat.
func (n StatName) Label() string {
	switch n {
	case StatMatches:
		return "Matches"
	case StatRuns:
		return "Runs"
	case StatHighestScore:
		return "Highest Score"
	case StatBattingAverage:
		return "Batting Avg"
	case StatCenturies:
		return "100s"
	case StatFours:
		return "4s"
	case StatSixes:
		return "6s"
	case StatWickets:
		return "Wickets"
	case StatBowlingAverage:
		return "Bowling Avg"
	case StatFiveWickets:
		return "5-Wicket Hauls"
	default:
		return string(n)
	}
}

// LowerIsBetter reports whether a smaller value wins for this stat.
func (n StatName) LowerIsBetter() bool {
	return n == StatBowlingAverage
}

// Selection is the (stat, format) pair chosen for a round.
type Selection struct {
	Stat   StatName
	Format Format
}

func (s Selection) String() string {
	return fmt.Sprintf("%s (%s)", s.Stat.Label(), s.Format)
}

// Phase is the round engine's state.
type Phase int

const (
	PhaseAwaitingSelection Phase = iota
	PhaseRevealing
	PhaseResolved
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingSelection:
		return "awaiting-selection"
	case PhaseRevealing:
		return "revealing"
	case PhaseResolved:
		return "resolved"
	case PhaseGameOver:
		return "game-over"
	default:
		return "unknown"
	}
}

// LifecycleState is the outer game state seen by a UI.
type LifecycleState int

const (
	StateMenu LifecycleState = iota
	StateActive
	StateGameOver
)

func (s LifecycleState) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StateActive:
		return "active"
	case StateGameOver:
		return "game-over"
	default:
		return "unknown"
	}
}
