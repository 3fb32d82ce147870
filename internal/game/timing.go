package game

import (
	"sort"
	"sync"
	"time"
)

// Scheduler runs delayed effects. The returned func cancels the effect if
// it has not started yet; it is safe to call more than once.
type Scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
}

// Delays are the pauses between the steps of a round. They only exist so a
// UI can show what happened; zero delays are valid.
type Delays struct {
	Computer  time.Duration // computer "thinking" before it picks a stat
	Reveal    time.Duration // selection to reveal and compare
	NextRound time.Duration // comparison to card transfer and next round
}

// DefaultDelays are the pauses used by interactive surfaces.
var DefaultDelays = Delays{
	Computer:  2 * time.Second,
	Reveal:    1 * time.Second,
	NextRound: 4 * time.Second,
}

// --- TimerScheduler: wall clock ---

// TimerScheduler runs effects on their own goroutine via time.AfterFunc.
type TimerScheduler struct{}

func (TimerScheduler) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// --- ManualScheduler: logical ticks ---

type manualTask struct {
	at        time.Duration
	seq       int
	fn        func()
	cancelled bool
}

// ManualScheduler queues effects on a logical clock and runs them only when
// asked. Delays order the queue but never block.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	queue []*manualTask
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) After(d time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	task := &manualTask{at: s.now + d, seq: s.seq, fn: fn}
	s.queue = append(s.queue, task)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		task.cancelled = true
	}
}

// Pending returns the number of queued effects that have not been cancelled.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.queue {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// Now returns the logical time of the last effect run.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// RunNext runs the earliest queued effect. The effect runs without the
// scheduler lock held so it may schedule more effects.
func (s *ManualScheduler) RunNext() bool {
	s.mu.Lock()
	live := s.queue[:0]
	for _, t := range s.queue {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	s.queue = live
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return false
	}
	sort.Slice(s.queue, func(i, j int) bool {
		if s.queue[i].at != s.queue[j].at {
			return s.queue[i].at < s.queue[j].at
		}
		return s.queue[i].seq < s.queue[j].seq
	})
	task := s.queue[0]
	s.queue = s.queue[1:]
	if task.at > s.now {
		s.now = task.at
	}
	s.mu.Unlock()

	task.fn()
	return true
}

// Drain runs queued effects until none are left or max have run
// (max <= 0 means no limit). It returns how many ran.
func (s *ManualScheduler) Drain(max int) int {
	ran := 0
	for max <= 0 || ran < max {
		if !s.RunNext() {
			break
		}
		ran++
	}
	return ran
}
