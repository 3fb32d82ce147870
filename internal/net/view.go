package net

import (
	"github.com/peterkuimelis/crictrumps/internal/game"
	"github.com/peterkuimelis/crictrumps/internal/log"
)

// Selections lists every (stat, format) pair in the order cards display
// them. StatView.Index is the 1-based position in this list.
func Selections() []game.Selection {
	out := make([]game.Selection, 0, len(game.Formats)*len(game.StatNames))
	for _, f := range game.Formats {
		for _, s := range game.StatNames {
			out = append(out, game.Selection{Stat: s, Format: f})
		}
	}
	return out
}

// SelectionByIndex resolves a 1-based stat number.
func SelectionByIndex(n int) (game.Selection, bool) {
	all := Selections()
	if n < 1 || n > len(all) {
		return game.Selection{}, false
	}
	return all[n-1], true
}

func sideName(s game.Side) string {
	switch s {
	case game.SidePlayer:
		return "you"
	case game.SideComputer:
		return "computer"
	default:
		return ""
	}
}

// BuildStateView creates the human's view of a snapshot.
func BuildStateView(s game.Snapshot) *StateView {
	sv := &StateView{
		State:    s.State.String(),
		Message:  s.Message,
		You:      SideView{DeckCount: s.PlayerCards},
		Computer: SideView{DeckCount: s.ComputerCards},
	}
	if s.State == game.StateMenu {
		return sv
	}

	sv.Phase = s.Phase.String()
	sv.Turn = sideName(s.Turn)
	sv.IsYourTurn = s.Turn == game.SidePlayer && s.Phase == game.PhaseAwaitingSelection

	if s.HasRound {
		r := s.Round
		sv.Round = r.Number
		sv.You.Card = BuildCardView(r.PlayerCard)
		if r.Revealed {
			sv.Computer.Card = BuildCardView(r.ComputerCard)
		}
		if r.Selection != nil {
			sv.Selection = &SelectionView{
				By:     sideName(r.Turn),
				Stat:   string(r.Selection.Stat),
				Format: string(r.Selection.Format),
				Label:  r.Selection.String(),
			}
		}
		if r.Result != nil {
			sv.RoundWinner = sideName(r.Winner())
			if sv.RoundWinner == "" {
				sv.RoundWinner = "draw"
			}
		}
	}

	if s.State == game.StateGameOver || s.Phase == game.PhaseGameOver {
		sv.GameOver = true
		sv.IsYourTurn = false
		sv.Winner = sideName(s.Winner)
		if sv.Winner == "" {
			sv.Winner = "draw"
		}
		sv.Result = s.Result
	}
	return sv
}

// BuildCardView renders a card with its full stat table.
func BuildCardView(card *game.PlayerCard) *CardView {
	if card == nil {
		return nil
	}
	cv := &CardView{
		Name:    card.Name,
		Country: card.Country,
		Span:    card.Span,
		Image:   card.ImagePath,
	}
	for i, sel := range Selections() {
		v := card.Value(sel)
		cv.Stats = append(cv.Stats, StatView{
			Index:   i + 1,
			Stat:    string(sel.Stat),
			Format:  string(sel.Format),
			Label:   sel.Stat.Label(),
			Value:   v.String(),
			Present: v.Present,
		})
	}
	return cv
}

// BuildEventView converts a log event for the wire.
func BuildEventView(e log.GameEvent) *EventView {
	return &EventView{
		Round:   e.Round,
		Phase:   e.Phase,
		Player:  e.Player,
		Type:    e.Type.String(),
		Card:    e.Card,
		Details: e.Details,
	}
}
