package web

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/peterkuimelis/crictrumps/internal/game"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrTooManyGames = errors.New("too many active games")
)

type session struct {
	game     *game.Game
	lastUsed time.Time // refreshed by every lookup
}

// Registry holds the games created over HTTP, keyed by uuid.
type Registry struct {
	mu       sync.Mutex
	games    map[string]*session
	maxGames int
	newGame  func() *game.Game
	now      func() time.Time
}

// NewRegistry creates a registry. maxGames <= 0 means no limit.
func NewRegistry(maxGames int, newGame func() *game.Game) *Registry {
	return &Registry{
		games:    make(map[string]*session),
		maxGames: maxGames,
		newGame:  newGame,
		now:      time.Now,
	}
}

// Create makes a game at the menu and returns its id.
func (r *Registry) Create() (string, *game.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.maxGames > 0 && len(r.games) >= r.maxGames {
		return "", nil, ErrTooManyGames
	}
	id := uuid.NewString()
	g := r.newGame()
	now := r.now()
	r.games[id] = &session{game: g, lastUsed: now}
	return id, g, nil
}

// Get looks up a game and marks it as used. Ids that are not valid uuids
// are never found.
func (r *Registry) Get(id string) (*game.Game, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrGameNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	s.lastUsed = r.now()
	return s.game, nil
}

// Delete removes a game and cancels its pending effects.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.games[id]
	delete(r.games, id)
	r.mu.Unlock()
	if !ok {
		return ErrGameNotFound
	}
	s.game.Restart()
	return nil
}

// Len returns the number of live games.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.games)
}

// Prune deletes games not looked up since cutoff and returns how many went.
func (r *Registry) Prune(cutoff time.Time) int {
	r.mu.Lock()
	var stale []*session
	for id, s := range r.games {
		if s.lastUsed.Before(cutoff) {
			stale = append(stale, s)
			delete(r.games, id)
		}
	}
	r.mu.Unlock()
	for _, s := range stale {
		s.game.Restart()
	}
	return len(stale)
}
