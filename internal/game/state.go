package game

import (
	"fmt"

	"github.com/peterkuimelis/crictrumps/internal/log"
)

// Status messages outside of round results.
const (
	MsgPlayerTurn   = "Your turn! Select a stat."
	MsgComputerTurn = "Computer's turn..."
	MsgPlayerWon    = "You won the game!"
	MsgComputerWon  = "The Computer won the game!"
	MsgGameDrawn    = "The game is drawn."
)

// Round is the ephemeral state of one comparison cycle.
type Round struct {
	Number       int
	Turn         Side // side choosing this round
	PlayerCard   *PlayerCard
	ComputerCard *PlayerCard
	Selection    *Selection   // nil until a side has chosen
	Revealed     bool         // both cards face-up
	Result       *RoundResult // nil until compared
}

// Winner returns the round's winning side, SideNone for a draw or while
// undecided.
func (r Round) Winner() Side {
	if r.Result == nil {
		return SideNone
	}
	return r.Result.Outcome.Side()
}

// EngineConfig holds everything needed to start a round engine.
type EngineConfig struct {
	Player    []*PlayerCard
	Computer  []*PlayerCard
	FirstTurn Side // side choosing in round 1 (SidePlayer by default)
	MaxRounds int  // end the game after this many rounds (0 = no limit)
	Logger    log.EventLogger
}

// Engine owns the two decks, turn ownership and the current round. It is
// not safe for concurrent use; Game serializes access to it.
type Engine struct {
	Decks   [2][]*PlayerCard // indexed by Side; index 0 is the card in play
	Turn    Side
	Phase   Phase
	Round   *Round
	Winner  Side   // valid once Phase is PhaseGameOver
	Result  string // why the game ended
	Message string // status line for the UI

	total     int
	maxRounds int
	logger    log.EventLogger
}

// NewEngine deals the given decks and opens round 1.
func NewEngine(cfg EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	turn := cfg.FirstTurn
	if turn != SideComputer {
		turn = SidePlayer
	}

	e := &Engine{
		Turn:      turn,
		Winner:    SideNone,
		maxRounds: cfg.MaxRounds,
		logger:    logger,
	}
	e.Decks[SidePlayer] = append([]*PlayerCard(nil), cfg.Player...)
	e.Decks[SideComputer] = append([]*PlayerCard(nil), cfg.Computer...)
	e.total = len(e.Decks[SidePlayer]) + len(e.Decks[SideComputer])

	e.log(log.NewGameStartEvent(len(e.Decks[SidePlayer]), len(e.Decks[SideComputer])))
	if !e.checkGameOver() {
		e.beginRound(1)
	}
	return e
}

// Head returns the card a side has in play, or nil for an empty deck.
func (e *Engine) Head(side Side) *PlayerCard {
	if side != SidePlayer && side != SideComputer {
		return nil
	}
	if len(e.Decks[side]) == 0 {
		return nil
	}
	return e.Decks[side][0]
}

// DeckSizes returns the number of cards each side holds.
func (e *Engine) DeckSizes() (player, computer int) {
	return len(e.Decks[SidePlayer]), len(e.Decks[SideComputer])
}

// TotalCards returns the number of cards dealt at the start.
func (e *Engine) TotalCards() int {
	return e.total
}

// Over reports whether the game has reached its terminal phase.
func (e *Engine) Over() bool {
	return e.Phase == PhaseGameOver
}

// CurrentRound returns a copy of the round in progress.
func (e *Engine) CurrentRound() (Round, bool) {
	if e.Round == nil {
		return Round{}, false
	}
	r := *e.Round
	if r.Selection != nil {
		sel := *r.Selection
		r.Selection = &sel
	}
	if r.Result != nil {
		res := *r.Result
		r.Result = &res
	}
	return r, true
}

// CheckInvariants verifies that no card was lost, duplicated or shared
// between decks. A non-nil error means the engine has a bug.
func (e *Engine) CheckInvariants() error {
	p, c := e.DeckSizes()
	if p+c != e.total {
		return fmt.Errorf("card count %d+%d != %d", p, c, e.total)
	}
	seen := make(map[*PlayerCard]Side, e.total)
	for _, side := range []Side{SidePlayer, SideComputer} {
		for _, card := range e.Decks[side] {
			if prev, ok := seen[card]; ok {
				return fmt.Errorf("card %s held by %s and %s", card.Name, prev, side)
			}
			seen[card] = side
		}
	}
	return nil
}

func (e *Engine) beginRound(n int) {
	e.Phase = PhaseAwaitingSelection
	e.Round = &Round{
		Number:       n,
		Turn:         e.Turn,
		PlayerCard:   e.Head(SidePlayer),
		ComputerCard: e.Head(SideComputer),
	}
	if e.Turn == SidePlayer {
		e.Message = MsgPlayerTurn
	} else {
		e.Message = MsgComputerTurn
	}
	e.log(log.NewRoundEvent(n, e.Phase.String(), int(e.Turn), e.Round.PlayerCard.Name))
}

// checkGameOver ends the game when a deck is empty. Card count is conserved
// every round, so both decks cannot be empty at once.
func (e *Engine) checkGameOver() bool {
	p, c := e.DeckSizes()
	switch {
	case p > 0 && c > 0:
		return false
	case p == 0 && c == 0:
		e.endGame(SideNone, "no cards dealt")
	case p > 0:
		e.endGame(SidePlayer, "computer is out of cards")
	default:
		e.endGame(SideComputer, "you are out of cards")
	}
	return true
}

func (e *Engine) endGame(winner Side, reason string) {
	e.Phase = PhaseGameOver
	e.Winner = winner
	switch winner {
	case SidePlayer:
		e.Message = MsgPlayerWon
	case SideComputer:
		e.Message = MsgComputerWon
	default:
		e.Message = MsgGameDrawn
	}
	e.Result = reason
	e.log(log.NewWinEvent(e.roundNumber(), e.Phase.String(), int(winner), reason))
}

func (e *Engine) roundNumber() int {
	if e.Round == nil {
		return 0
	}
	return e.Round.Number
}

func (e *Engine) log(event log.GameEvent) {
	e.logger.Log(event)
}
