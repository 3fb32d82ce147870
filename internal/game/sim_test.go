package game

import (
	"errors"
	"math/rand"
	"testing"
)

func TestSimulateFinishes(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		res, err := Simulate(makeCatalog(10), rand.New(rand.NewSource(seed)), 100, nil)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if res.Rounds < 1 || res.Rounds > 100 {
			t.Errorf("seed %d: rounds = %d", seed, res.Rounds)
		}
		if res.Result == "" {
			t.Errorf("seed %d: no result", seed)
		}
	}
}

func TestSimulateDeterministic(t *testing.T) {
	a, _ := Simulate(makeCatalog(12), rand.New(rand.NewSource(99)), 200, nil)
	b, _ := Simulate(makeCatalog(12), rand.New(rand.NewSource(99)), 200, nil)
	if a != b {
		t.Errorf("same seed gave %+v and %+v", a, b)
	}
}

func TestSimulateRoundLimitOnEndlessDraws(t *testing.T) {
	// Identical cards draw every round.
	cards := []*PlayerCard{runsCard("A", 50), runsCard("B", 50)}
	res, err := Simulate(cards, rand.New(rand.NewSource(1)), 5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Rounds != 5 || res.Winner != SideNone {
		t.Errorf("got %+v, want a drawn game after 5 rounds", res)
	}
}

func TestSimulateTooSmall(t *testing.T) {
	if _, err := Simulate(makeCatalog(1), nil, 10, nil); !errors.Is(err, ErrCatalogTooSmall) {
		t.Errorf("err = %v, want ErrCatalogTooSmall", err)
	}
}
