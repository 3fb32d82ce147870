package game

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/peterkuimelis/crictrumps/internal/log"
)

// ErrGameInProgress is returned by StartGame while a game is being played.
var ErrGameInProgress = errors.New("game already in progress")

// MsgMenu is the status line before a game is dealt.
const MsgMenu = "Press start to deal the cards."

// Config holds configuration for creating a game instance.
type Config struct {
	Catalog   []*PlayerCard
	Delays    Delays
	Scheduler Scheduler // nil means TimerScheduler
	Logger    log.EventLogger
	Seed      int64 // RNG seed (0 for random)
	MaxRounds int   // forwarded to each engine (0 = no limit)
}

// Snapshot is a consistent copy of everything a UI shows.
type Snapshot struct {
	State         LifecycleState
	Phase         Phase
	Turn          Side
	Round         Round
	HasRound      bool
	PlayerCards   int
	ComputerCards int
	Message       string
	Winner        Side
	Result        string
}

// Game is one player-vs-computer session: menu, active game, game over.
// All methods are safe for concurrent use. Delayed effects run through the
// scheduler and are dropped if the game they belong to has been torn down.
type Game struct {
	mu        sync.Mutex
	catalog   []*PlayerCard
	delays    Delays
	sched     Scheduler
	logger    log.EventLogger
	rng       *rand.Rand
	maxRounds int

	state   LifecycleState
	engine  *Engine
	epoch   uint64 // bumped on every start and restart
	pending uint64 // id of the single outstanding effect
	cancel  func()

	obsMu     sync.Mutex
	observers map[int]func(log.GameEvent)
	nextObs   int
}

// New creates a game instance sitting at the menu.
func New(cfg Config) *Game {
	sched := cfg.Scheduler
	if sched == nil {
		sched = TimerScheduler{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Game{
		catalog:   append([]*PlayerCard(nil), cfg.Catalog...),
		delays:    cfg.Delays,
		sched:     sched,
		logger:    logger,
		rng:       rand.New(rand.NewSource(seed)),
		maxRounds: cfg.MaxRounds,
		state:     StateMenu,
		observers: make(map[int]func(log.GameEvent)),
	}
}

// Subscribe registers fn for every event the game emits. fn runs while the
// game is locked, so it must not call back into the game. The returned func
// removes the subscription.
func (g *Game) Subscribe(fn func(log.GameEvent)) func() {
	g.obsMu.Lock()
	defer g.obsMu.Unlock()
	id := g.nextObs
	g.nextObs++
	g.observers[id] = fn
	return func() {
		g.obsMu.Lock()
		defer g.obsMu.Unlock()
		delete(g.observers, id)
	}
}

// StartGame deals a fresh random split of the catalog. Starting from the
// game-over screen implies a restart.
func (g *Game) StartGame() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == StateActive {
		return ErrGameInProgress
	}
	if g.state == StateGameOver {
		g.teardown()
	}

	player, computer, err := Partition(g.catalog, g.rng)
	if err != nil {
		return err
	}
	g.epoch++
	g.engine = NewEngine(EngineConfig{
		Player:    player,
		Computer:  computer,
		MaxRounds: g.maxRounds,
		Logger:    gameLogger{g},
	})
	g.state = StateActive
	g.scheduleNext()
	return nil
}

// SelectStat submits the human's choice for the current round. Out-of-turn
// or repeated selections are ignored and reported as false. The computer
// only ever selects through ChooseStat, so SideComputer is always rejected.
func (g *Game) SelectStat(side Side, stat StatName, format Format) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if side != SidePlayer || g.state != StateActive || g.engine == nil {
		return false
	}
	if !g.engine.Select(side, Selection{Stat: stat, Format: format}) {
		return false
	}
	g.scheduleNext()
	return true
}

// Restart tears down both decks and returns to the menu. Effects still
// pending from the old game are discarded.
func (g *Game) Restart() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.teardown()
}

func (g *Game) teardown() {
	g.cancelPending()
	g.epoch++
	g.engine = nil
	g.state = StateMenu
	g.emit(log.NewRestartEvent())
}

// --- Observers ---

// State returns the lifecycle state.
func (g *Game) State() LifecycleState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// CurrentRound returns a copy of the round in play.
func (g *Game) CurrentRound() (Round, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.engine == nil {
		return Round{}, false
	}
	return g.engine.CurrentRound()
}

// DeckSizes returns how many cards each side holds (zeros at the menu).
func (g *Game) DeckSizes() (player, computer int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.engine == nil {
		return 0, 0
	}
	return g.engine.DeckSizes()
}

// IsGameOver reports whether the game reached its terminal state.
func (g *Game) IsGameOver() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == StateGameOver
}

// StatusMessage returns the line a UI shows above the cards.
func (g *Game) StatusMessage() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.engine == nil {
		return MsgMenu
	}
	return g.engine.Message
}

// Snapshot returns a consistent copy of the whole visible state.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := Snapshot{
		State:   g.state,
		Turn:    SideNone,
		Winner:  SideNone,
		Message: MsgMenu,
	}
	if g.engine == nil {
		return s
	}
	e := g.engine
	s.Phase = e.Phase
	s.Turn = e.Turn
	s.Round, s.HasRound = e.CurrentRound()
	s.PlayerCards, s.ComputerCards = e.DeckSizes()
	s.Message = e.Message
	s.Winner = e.Winner
	s.Result = e.Result
	return s
}

// Cards returns the catalog this game deals from.
func (g *Game) Cards() []*PlayerCard {
	return append([]*PlayerCard(nil), g.catalog...)
}

// --- Scheduling ---

// scheduleNext replaces the outstanding effect with the one the engine's
// current phase calls for. Must be called with mu held.
func (g *Game) scheduleNext() {
	g.cancelPending()
	e := g.engine
	if e == nil {
		return
	}

	var (
		delay time.Duration
		step  func() bool
	)
	switch e.Phase {
	case PhaseAwaitingSelection:
		if e.Turn != SideComputer {
			return // waiting for the human
		}
		delay, step = g.delays.Computer, e.SelectForComputer
	case PhaseRevealing:
		delay, step = g.delays.Reveal, e.Resolve
	case PhaseResolved:
		delay, step = g.delays.NextRound, e.Advance
	default:
		g.state = StateGameOver
		return
	}

	g.pending++
	epoch, id := g.epoch, g.pending
	g.cancel = g.sched.After(delay, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if epoch != g.epoch || id != g.pending || g.engine != e {
			return
		}
		g.cancel = nil
		if step() {
			g.scheduleNext()
		}
	})
}

func (g *Game) cancelPending() {
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.pending++
}

func (g *Game) emit(event log.GameEvent) {
	g.logger.Log(event)
	g.obsMu.Lock()
	fns := make([]func(log.GameEvent), 0, len(g.observers))
	for _, fn := range g.observers {
		fns = append(fns, fn)
	}
	g.obsMu.Unlock()
	for _, fn := range fns {
		fn(event)
	}
}

// gameLogger routes engine events through the game so subscribers see them.
type gameLogger struct {
	g *Game
}

func (l gameLogger) Log(event log.GameEvent) { l.g.emit(event) }

func (l gameLogger) Events() []log.GameEvent { return l.g.logger.Events() }
