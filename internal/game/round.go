package game

import (
	"fmt"

	"github.com/peterkuimelis/crictrumps/internal/log"
)

// Select records the stat for the current round and moves to revealing.
// It is a no-op returning false unless the engine is awaiting a selection,
// side owns the turn and nothing has been chosen yet this round.
func (e *Engine) Select(side Side, sel Selection) bool {
	if e.Phase != PhaseAwaitingSelection || e.Round == nil {
		return false
	}
	if side != e.Turn || e.Round.Selection != nil {
		return false
	}
	if _, err := ParseFormat(string(sel.Format)); err != nil {
		return false
	}
	if _, err := ParseStatName(string(sel.Stat)); err != nil {
		return false
	}

	e.Round.Selection = &sel
	e.Phase = PhaseRevealing
	if side == SidePlayer {
		e.Message = fmt.Sprintf("You chose %s.", sel)
	} else {
		e.Message = fmt.Sprintf("Computer chose %s.", sel)
	}
	card := ""
	if side == SidePlayer {
		card = e.Head(side).Name // the computer's card is still face-down
	}
	e.log(log.NewStatSelectedEvent(e.Round.Number, e.Phase.String(), int(side), card, string(sel.Stat), string(sel.Format)))
	return true
}

// SelectForComputer runs the selector on the computer's card in play and
// submits its choice. It returns false when it is not the computer's turn.
func (e *Engine) SelectForComputer() bool {
	if e.Phase != PhaseAwaitingSelection || e.Turn != SideComputer {
		return false
	}
	return e.Select(SideComputer, ChooseStat(e.Head(SideComputer)))
}

// Resolve reveals both cards and compares the chosen stat.
func (e *Engine) Resolve() bool {
	if e.Phase != PhaseRevealing {
		return false
	}
	r := e.Round
	sel := *r.Selection
	pv, cv := r.PlayerCard.Value(sel), r.ComputerCard.Value(sel)

	r.Revealed = true
	result := Compare(pv, cv, sel.Stat)
	r.Result = &result
	e.Phase = PhaseResolved
	e.Message = result.Message

	e.log(log.NewRevealEvent(r.Number, e.Phase.String(), r.PlayerCard.Name, pv.String(), r.ComputerCard.Name, cv.String()))
	e.log(log.NewRoundResultEvent(r.Number, e.Phase.String(), int(result.Outcome.Side()), result.Message))
	return true
}

// Advance moves both cards in play according to the round result, hands
// the turn to the round winner and opens the next round or ends the game.
func (e *Engine) Advance() bool {
	if e.Phase != PhaseResolved {
		return false
	}
	r := e.Round

	pCard, cCard := e.Decks[SidePlayer][0], e.Decks[SideComputer][0]
	e.Decks[SidePlayer] = e.Decks[SidePlayer][1:]
	e.Decks[SideComputer] = e.Decks[SideComputer][1:]

	winner := r.Result.Outcome.Side()
	var taken []string
	switch winner {
	case SidePlayer:
		e.Decks[SidePlayer] = append(e.Decks[SidePlayer], pCard, cCard)
		taken = []string{cCard.Name}
	case SideComputer:
		e.Decks[SideComputer] = append(e.Decks[SideComputer], cCard, pCard)
		taken = []string{pCard.Name}
	default:
		e.Decks[SidePlayer] = append(e.Decks[SidePlayer], pCard)
		e.Decks[SideComputer] = append(e.Decks[SideComputer], cCard)
	}

	p, c := e.DeckSizes()
	if winner != SideNone {
		e.log(log.NewCardsTransferredEvent(r.Number, e.Phase.String(), int(winner), taken, p, c))
		if winner != e.Turn {
			e.Turn = winner
			e.log(log.NewTurnChangeEvent(r.Number, e.Phase.String(), int(e.Turn)))
		}
	}

	if e.checkGameOver() {
		return true
	}
	if e.maxRounds > 0 && r.Number >= e.maxRounds {
		e.log(log.NewRoundLimitEvent(r.Number, e.Phase.String(), e.maxRounds))
		switch {
		case p > c:
			e.endGame(SidePlayer, "round limit, you hold more cards")
		case c > p:
			e.endGame(SideComputer, "round limit, computer holds more cards")
		default:
			e.endGame(SideNone, "round limit, equal cards")
		}
		return true
	}
	e.beginRound(r.Number + 1)
	return true
}

// Step performs the next transition that needs no human input. It returns
// false when the engine waits for the player or the game is over.
func (e *Engine) Step() bool {
	switch e.Phase {
	case PhaseAwaitingSelection:
		return e.SelectForComputer()
	case PhaseRevealing:
		return e.Resolve()
	case PhaseResolved:
		return e.Advance()
	default:
		return false
	}
}
