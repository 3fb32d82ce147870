package game

// selectorFormats is the order the computer scans formats in.
var selectorFormats = []Format{FormatODI, FormatTest, FormatT20}

// FallbackSelection is played when a card has no numeric stat at all. The
// card may not actually carry it; the comparator then treats it as missing.
var FallbackSelection = Selection{Stat: StatMatches, Format: FormatODI}

// ChooseStat picks the computer's stat for a card. It walks formats in
// selectorFormats order and stats in canonical order, keeps the first
// recorded value as the running best and only replaces it on a strict
// improvement under the candidate stat's own direction.
func ChooseStat(card *PlayerCard) Selection {
	if card == nil {
		return FallbackSelection
	}

	var (
		best      Selection
		bestValue float64
		found     bool
	)
	for _, format := range selectorFormats {
		line := card.Stats.Line(format)
		if len(line) == 0 {
			continue
		}
		for _, stat := range StatNames {
			v, ok := line[stat]
			if !ok || !v.Present {
				continue
			}
			value := v.Comparable()
			if !found {
				best, bestValue, found = Selection{Stat: stat, Format: format}, value, true
				continue
			}
			if better(stat, value, bestValue) {
				best, bestValue = Selection{Stat: stat, Format: format}, value
			}
		}
	}

	if !found {
		return FallbackSelection
	}
	return best
}
