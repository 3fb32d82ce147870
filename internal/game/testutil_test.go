package game

import (
	"fmt"
	"testing"

	"github.com/peterkuimelis/crictrumps/internal/log"
)

var selRuns = Selection{Stat: StatRuns, Format: FormatODI}

// line builds a stat bundle where every listed stat is present.
func line(m map[StatName]float64) StatLine {
	l := make(StatLine, len(m))
	for k, v := range m {
		l[k] = Number(v)
	}
	return l
}

func newCard(name string, odi map[StatName]float64) *PlayerCard {
	return &PlayerCard{Name: name, Country: "Testland", Stats: Stats{ODI: line(odi)}}
}

// runsCard is a card whose only stat is ODI runs.
func runsCard(name string, runs float64) *PlayerCard {
	return newCard(name, map[StatName]float64{StatRuns: runs})
}

// makeCatalog returns n cards with distinct ODI runs.
func makeCatalog(n int) []*PlayerCard {
	cards := make([]*PlayerCard, n)
	for i := range cards {
		cards[i] = runsCard(fmt.Sprintf("Player %02d", i+1), float64((i+1)*100))
	}
	return cards
}

func names(cards []*PlayerCard) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Name
	}
	return out
}

func assertDeck(t *testing.T, e *Engine, side Side, want ...string) {
	t.Helper()
	got := names(e.Decks[side])
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("%s deck = %v, want %v", side, got, want)
	}
}

// playOut drives an engine to game over, the human always choosing sel.
// Invariants are checked after every transition.
func playOut(t *testing.T, e *Engine, sel Selection, maxSteps int) {
	t.Helper()
	for steps := 0; !e.Over(); steps++ {
		if steps >= maxSteps {
			t.Fatalf("game not over after %d steps", maxSteps)
		}
		if e.Phase == PhaseAwaitingSelection && e.Turn == SidePlayer {
			if !e.Select(SidePlayer, sel) {
				t.Fatalf("player selection rejected in round %d", e.Round.Number)
			}
		} else if !e.Step() {
			t.Fatalf("engine stuck in %s", e.Phase)
		}
		if err := e.CheckInvariants(); err != nil {
			t.Fatalf("invariant broken: %v", err)
		}
	}
}

// playRound runs one full round with the human choosing sel on their turn.
func playRound(t *testing.T, e *Engine, sel Selection) {
	t.Helper()
	if e.Turn == SidePlayer {
		if !e.Select(SidePlayer, sel) {
			t.Fatalf("selection %s rejected", sel)
		}
	} else if !e.SelectForComputer() {
		t.Fatal("computer selection rejected")
	}
	if !e.Resolve() {
		t.Fatal("resolve rejected")
	}
	if !e.Advance() {
		t.Fatal("advance rejected")
	}
}

func dumpLog(t *testing.T, logger *log.MemoryLogger) {
	t.Helper()
	t.Logf("\n%s", log.FormatAll(logger.Events()))
}
