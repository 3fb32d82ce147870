package game

import (
	"math/rand"

	"github.com/peterkuimelis/crictrumps/internal/log"
)

// SimResult summarizes one self-played game.
type SimResult struct {
	Winner Side
	Rounds int
	Result string
}

// Simulate deals catalog with rng and plays a whole game with no delays,
// both sides choosing through ChooseStat. maxRounds should be positive:
// two identical selectors can draw forever. logger may be nil.
func Simulate(catalog []*PlayerCard, rng *rand.Rand, maxRounds int, logger log.EventLogger) (SimResult, error) {
	player, computer, err := Partition(catalog, rng)
	if err != nil {
		return SimResult{}, err
	}
	e := NewEngine(EngineConfig{Player: player, Computer: computer, MaxRounds: maxRounds, Logger: logger})
	for !e.Over() {
		if e.Phase == PhaseAwaitingSelection && e.Turn == SidePlayer {
			e.Select(SidePlayer, ChooseStat(e.Head(SidePlayer)))
			continue
		}
		if !e.Step() {
			break
		}
	}
	return SimResult{Winner: e.Winner, Rounds: e.roundNumber(), Result: e.Result}, nil
}
