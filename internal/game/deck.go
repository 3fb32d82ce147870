package game

import (
	"fmt"
	"math/rand"
)

// Partition shuffles a copy of the catalog and splits it at the midpoint.
// The player gets the first half (the smaller one when the size is odd),
// the computer the rest. The catalog slice itself is left untouched.
func Partition(catalog []*PlayerCard, rng *rand.Rand) (player, computer []*PlayerCard, err error) {
	if len(catalog) < 2 {
		return nil, nil, fmt.Errorf("partition %d cards: %w", len(catalog), ErrCatalogTooSmall)
	}

	shuffled := make([]*PlayerCard, len(catalog))
	copy(shuffled, catalog)
	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	mid := len(shuffled) / 2
	player = append([]*PlayerCard(nil), shuffled[:mid]...)
	computer = append([]*PlayerCard(nil), shuffled[mid:]...)
	return player, computer, nil
}
