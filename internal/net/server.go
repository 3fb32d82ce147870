package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/peterkuimelis/crictrumps/internal/game"
)

// Server hosts games over TCP. Every connection plays its own game against
// the computer.
type Server struct {
	Catalog   []*game.PlayerCard
	Delays    game.Delays
	MaxRounds int
	Port      string
	Logger    *slog.Logger
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Run listens on Port and serves connections until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", ":"+s.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled or ln fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.logger().Info("serving games", "addr", ln.Addr().String())

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			remote := conn.RemoteAddr().String()
			s.logger().Info("player connected", "remote", remote)
			if err := s.ServeConn(ctx, conn); err != nil {
				s.logger().Warn("session ended with error", "remote", remote, "error", err)
				return
			}
			s.logger().Info("player left", "remote", remote)
		}()
	}
}

// ServeConn runs one game session on conn and closes it when done.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) error {
	g := game.New(game.Config{
		Catalog:   s.Catalog,
		Delays:    s.Delays,
		MaxRounds: s.MaxRounds,
	})
	sess := newSession(conn, g)
	return sess.run(ctx)
}

// session couples one connection to one game. Events are queued by the game
// observer and written by a separate goroutine.
type session struct {
	conn  net.Conn
	game  *game.Game
	enc   *json.Encoder
	dec   *json.Decoder
	mu    sync.Mutex // guards enc
	queue *EventQueue
}

func newSession(conn net.Conn, g *game.Game) *session {
	return &session{
		conn:  conn,
		game:  g,
		enc:   json.NewEncoder(conn),
		dec:   json.NewDecoder(conn),
		queue: NewEventQueue(),
	}
}

func (s *session) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.conn.Close()

	unsubscribe := s.game.Subscribe(s.queue.Push)
	defer func() {
		unsubscribe()
		s.game.Restart() // cancels pending effects
	}()

	go func() {
		<-ctx.Done()
		s.conn.Close()
	}()

	writeErr := make(chan error, 1)
	go func() { writeErr <- s.writeLoop(ctx) }()

	if err := s.sendState(); err != nil {
		return fmt.Errorf("send state: %w", err)
	}

	for {
		var msg ClientMessage
		if err := s.dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			select {
			case werr := <-writeErr:
				return werr
			default:
			}
			return fmt.Errorf("read message: %w", err)
		}
		if msg.Type == TypeQuit {
			return nil
		}
		if err := s.handle(msg); err != nil {
			return err
		}
	}
}

func (s *session) handle(msg ClientMessage) error {
	if err := Apply(s.game, msg); err != nil {
		return s.sendError(err.Error())
	}
	return nil
}

// ErrSelectionIgnored reports a well-formed selection the game did not
// accept, because it is not the human's turn to choose.
var ErrSelectionIgnored = errors.New("selection ignored: not your turn to choose")

// Apply performs a client command on a game. Quit is left to the caller.
func Apply(g *game.Game, msg ClientMessage) error {
	switch msg.Type {
	case TypeStart:
		return g.StartGame()
	case TypeRestart:
		g.Restart()
		return nil
	case TypeSelect:
		stat, err := game.ParseStatName(msg.Stat)
		if err != nil {
			return err
		}
		format, err := game.ParseFormat(msg.Format)
		if err != nil {
			return err
		}
		if !g.SelectStat(game.SidePlayer, stat, format) {
			return ErrSelectionIgnored
		}
		return nil
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// writeLoop sends each queued event followed by a fresh state.
func (s *session) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.queue.Ready():
		}
		for _, e := range s.queue.Drain() {
			if err := s.send(ServerMessage{Type: TypeNotify, Event: BuildEventView(e)}); err != nil {
				return fmt.Errorf("send notify: %w", err)
			}
		}
		if err := s.sendState(); err != nil {
			return fmt.Errorf("send state: %w", err)
		}
	}
}

func (s *session) send(msg ServerMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(msg)
}

func (s *session) sendState() error {
	return s.send(ServerMessage{Type: TypeState, State: BuildStateView(s.game.Snapshot())})
}

func (s *session) sendError(text string) error {
	return s.send(ServerMessage{
		Type:  TypeError,
		Error: text,
		State: BuildStateView(s.game.Snapshot()),
	})
}
