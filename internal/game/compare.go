package game

// Round result messages shown to the human.
const (
	MsgNeitherHasStat    = "Neither player has this stat. It's a draw."
	MsgPlayerLacksStat   = "You don't have this stat. Computer wins."
	MsgComputerLacksStat = "Computer doesn't have this stat. You win."
	MsgDraw              = "It's a draw! Cards are returned to the back of the deck."
	MsgPlayerWinsRound   = "You win the round!"
	MsgComputerWinsRound = "Computer wins the round!"
)

// RoundResult is the comparator's verdict.
type RoundResult struct {
	Outcome Outcome
	Message string
}

// Compare decides a round from the two values recorded for the chosen stat.
// A missing value loses to any recorded value whichever way the stat runs.
func Compare(player, computer StatValue, stat StatName) RoundResult {
	p, c := player.Comparable(), computer.Comparable()

	switch {
	case p == NoValue && c == NoValue:
		return RoundResult{Outcome: OutcomeDraw, Message: MsgNeitherHasStat}
	case p == NoValue:
		return RoundResult{Outcome: OutcomeComputer, Message: MsgPlayerLacksStat}
	case c == NoValue:
		return RoundResult{Outcome: OutcomePlayer, Message: MsgComputerLacksStat}
	case p == c:
		return RoundResult{Outcome: OutcomeDraw, Message: MsgDraw}
	}

	playerAhead := p > c
	if stat.LowerIsBetter() {
		playerAhead = p < c
	}
	if playerAhead {
		return RoundResult{Outcome: OutcomePlayer, Message: MsgPlayerWinsRound}
	}
	return RoundResult{Outcome: OutcomeComputer, Message: MsgComputerWinsRound}
}

// better reports whether candidate strictly improves on best for the stat.
func better(stat StatName, candidate, best float64) bool {
	if stat.LowerIsBetter() {
		return candidate < best
	}
	return candidate > best
}
