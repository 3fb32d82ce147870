package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/peterkuimelis/crictrumps/internal/assets"
	"github.com/peterkuimelis/crictrumps/internal/catalog"
	"github.com/peterkuimelis/crictrumps/internal/game"
	tnet "github.com/peterkuimelis/crictrumps/internal/net"
)

//go:embed static
var staticFiles embed.FS

// Options configures a Server.
type Options struct {
	Catalog   catalog.Source
	Assets    *assets.Service // nil disables the details endpoint
	Delays    game.Delays
	MaxRounds int
	MaxGames  int           // 0 means no limit
	GameTTL   time.Duration // games older than this are pruned (0 keeps them)
	Logger    *slog.Logger

	CORSAllowOrigins  []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Server is the HTTP API and browser UI.
type Server struct {
	opts     Options
	cards    []*game.PlayerCard
	registry *Registry
	logger   *slog.Logger
	router   *chi.Mux
}

// GameResponse is returned by every game endpoint.
type GameResponse struct {
	ID    string          `json:"id"`
	State *tnet.StateView `json:"state"`
}

// SelectRequest is the body of POST /api/games/{id}/select.
type SelectRequest struct {
	Stat   string `json:"stat"`
	Format string `json:"format"`
}

// SelectResponse reports whether the game took the selection.
type SelectResponse struct {
	Accepted bool            `json:"accepted"`
	Reason   string          `json:"reason,omitempty"`
	State    *tnet.StateView `json:"state"`
}

// NewServer creates a server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		opts:   opts,
		cards:  opts.Catalog.AllCards(),
		logger: logger,
	}
	s.registry = NewRegistry(opts.MaxGames, func() *game.Game {
		return game.New(game.Config{
			Catalog:   s.cards,
			Delays:    opts.Delays,
			MaxRounds: opts.MaxRounds,
		})
	})
	s.router = s.newRouter()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Registry exposes the live games.
func (s *Server) Registry() *Registry {
	return s.registry
}

func (s *Server) newRouter() *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	c := cors.New(cors.Options{
		AllowedOrigins: s.opts.CORSAllowOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})
	r.Use(c.Handler)

	// --- Browser UI ---
	staticFS, _ := fs.Sub(staticFiles, "static")
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.Copy(w, f)
	})
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	r.Get("/health", s.handleHealth)

	// --- API ---
	r.Route("/api", func(r chi.Router) {
		r.Use(RateLimitMiddleware(s.opts.RateLimitRequests, s.opts.RateLimitWindow))

		r.Get("/cards", s.handleCards)
		r.Get("/players/{name}/details", s.handlePlayerDetails)

		r.Post("/games", s.handleCreateGame)
		r.Route("/games/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetGame)
			r.Delete("/", s.handleDeleteGame)
			r.Post("/start", s.handleStart)
			r.Post("/select", s.handleSelect)
			r.Post("/restart", s.handleRestart)
			r.Get("/ws", s.handleWebSocket)
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.opts.GameTTL > 0 {
		go s.pruneLoop(ctx)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("web server listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) pruneLoop(ctx context.Context) {
	ticker := time.NewTicker(s.opts.GameTTL / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.registry.Prune(now.Add(-s.opts.GameTTL)); n > 0 {
				s.logger.Info("pruned idle games", "count", n)
			}
		}
	}
}

// --- Handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"cards":  len(s.cards),
		"games":  s.registry.Len(),
		"assets": s.opts.Assets != nil,
	})
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	cards := make([]*tnet.CardView, 0, len(s.cards))
	for _, c := range s.cards {
		cards = append(cards, tnet.BuildCardView(c))
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handlePlayerDetails(w http.ResponseWriter, r *http.Request) {
	if s.opts.Assets == nil {
		writeError(w, http.StatusServiceUnavailable, "ASSETS_DISABLED", "Player details are not configured")
		return
	}
	name := chi.URLParam(r, "name")
	card := s.findCard(name)
	if card == nil {
		writeError(w, http.StatusNotFound, "PLAYER_NOT_FOUND", "No card for "+name)
		return
	}
	writeJSON(w, http.StatusOK, s.opts.Assets.GenerateDetails(r.Context(), card.Name, card.Country))
}

func (s *Server) findCard(name string) *game.PlayerCard {
	want := strings.Join(strings.Fields(name), " ")
	for _, c := range s.cards {
		if strings.EqualFold(c.Name, want) {
			return c
		}
	}
	return nil
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	id, g, err := s.registry.Create()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "TOO_MANY_GAMES", err.Error())
		return
	}
	s.logger.Info("game created", "id", id)
	writeJSON(w, http.StatusCreated, GameResponse{ID: id, State: tnet.BuildStateView(g.Snapshot())})
}

// withGame resolves {id} or writes a 404.
func (s *Server) withGame(w http.ResponseWriter, r *http.Request) (string, *game.Game, bool) {
	id := chi.URLParam(r, "id")
	g, err := s.registry.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "GAME_NOT_FOUND", "No game with id "+id)
		return id, nil, false
	}
	return id, g, true
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id, g, ok := s.withGame(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, GameResponse{ID: id, State: tnet.BuildStateView(g.Snapshot())})
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.registry.Delete(id); err != nil {
		writeError(w, http.StatusNotFound, "GAME_NOT_FOUND", "No game with id "+id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	id, g, ok := s.withGame(w, r)
	if !ok {
		return
	}
	if err := g.StartGame(); err != nil {
		if errors.Is(err, game.ErrGameInProgress) {
			writeError(w, http.StatusConflict, "GAME_IN_PROGRESS", err.Error())
			return
		}
		s.logger.Error("start game failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "START_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, GameResponse{ID: id, State: tnet.BuildStateView(g.Snapshot())})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	_, g, ok := s.withGame(w, r)
	if !ok {
		return
	}
	var req SelectRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Body must be {\"stat\":...,\"format\":...}")
		return
	}

	err := tnet.Apply(g, tnet.ClientMessage{Type: tnet.TypeSelect, Stat: req.Stat, Format: req.Format})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, SelectResponse{Accepted: true, State: tnet.BuildStateView(g.Snapshot())})
	case errors.Is(err, tnet.ErrSelectionIgnored):
		writeJSON(w, http.StatusOK, SelectResponse{Reason: err.Error(), State: tnet.BuildStateView(g.Snapshot())})
	default:
		writeError(w, http.StatusBadRequest, "INVALID_SELECTION", err.Error())
	}
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	id, g, ok := s.withGame(w, r)
	if !ok {
		return
	}
	g.Restart()
	writeJSON(w, http.StatusOK, GameResponse{ID: id, State: tnet.BuildStateView(g.Snapshot())})
}

// handleWebSocket streams events and state for one game. The browser may
// send the same commands as the TCP protocol.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id, g, ok := s.withGame(w, r)
	if !ok {
		return
	}
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(s.opts.CORSAllowOrigins),
	})
	if err != nil {
		s.logger.Warn("websocket accept failed", "id", id, "error", err)
		return
	}
	defer wsConn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	queue := tnet.NewEventQueue()
	unsubscribe := g.Subscribe(queue.Push)
	defer unsubscribe()

	write := func(msg tnet.ServerMessage) error {
		data, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		return wsConn.Write(ctx, websocket.MessageText, data)
	}
	state := func() *tnet.StateView { return tnet.BuildStateView(g.Snapshot()) }

	// Browser → game
	go func() {
		defer cancel()
		for {
			_, data, err := wsConn.Read(ctx)
			if err != nil {
				return
			}
			var msg tnet.ClientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				s.logger.Debug("dropping malformed websocket frame", "id", id, "error", err)
				continue
			}
			if msg.Type == tnet.TypeQuit {
				return
			}
			if _, err := s.registry.Get(id); err != nil {
				return // deleted or pruned
			}
			if err := tnet.Apply(g, msg); err != nil {
				s.logger.Debug("websocket command rejected", "id", id, "type", msg.Type, "error", err)
			}
		}
	}()

	// Game → browser
	if err := write(tnet.ServerMessage{Type: tnet.TypeState, State: state()}); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			wsConn.Close(websocket.StatusNormalClosure, "bye")
			return
		case <-queue.Ready():
		}
		for _, e := range queue.Drain() {
			if err := write(tnet.ServerMessage{Type: tnet.TypeNotify, Event: tnet.BuildEventView(e)}); err != nil {
				return
			}
		}
		if err := write(tnet.ServerMessage{Type: tnet.TypeState, State: state()}); err != nil {
			return
		}
	}
}

// originPatterns converts CORS origins to websocket host patterns.
func originPatterns(origins []string) []string {
	var out []string
	for _, o := range origins {
		if o == "*" {
			return []string{"*"}
		}
		o = strings.TrimPrefix(o, "https://")
		o = strings.TrimPrefix(o, "http://")
		out = append(out, o)
	}
	return out
}
