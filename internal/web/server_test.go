package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/peterkuimelis/crictrumps/internal/assets"
	"github.com/peterkuimelis/crictrumps/internal/game"
	tnet "github.com/peterkuimelis/crictrumps/internal/net"
)

type cardList []*game.PlayerCard

func (c cardList) AllCards() []*game.PlayerCard { return c }

func testCards(n int) cardList {
	cards := make(cardList, n)
	for i := range cards {
		cards[i] = &game.PlayerCard{
			Name:    fmt.Sprintf("Player %d", i+1),
			Country: "Testland",
			Stats:   game.Stats{ODI: game.StatLine{game.StatRuns: game.Number(float64(i + 1))}},
		}
	}
	return cards
}

// slowDelays keep the game parked after each human action.
var slowDelays = game.Delays{Computer: time.Hour, Reveal: time.Hour, NextRound: time.Hour}

type fakeGenerator struct{}

func (fakeGenerator) Generate(_ context.Context, name, country string) (assets.Details, error) {
	return assets.Details{ImageURL: "data:image/png;base64,AA==", Bio: name + " of " + country}, nil
}

func newTestServer(t *testing.T, mutate func(*Options)) *Server {
	t.Helper()
	opts := Options{Catalog: testCards(10), Delays: slowDelays}
	if mutate != nil {
		mutate(&opts)
	}
	return NewServer(opts)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (%s)", rec.Code, status, rec.Body.String())
	}
	if got := decode[ErrorResponse](t, rec); got.Error.Code != code {
		t.Errorf("error code = %q, want %q", got.Error.Code, code)
	}
}

func TestHealthAndCards(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := do(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("health = %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/cards", "")
	cards := decode[[]tnet.CardView](t, rec)
	if len(cards) != 10 || cards[0].Name != "Player 1" {
		t.Errorf("cards = %d", len(cards))
	}

	rec = do(t, h, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Cricket Top Trumps") {
		t.Errorf("index = %d", rec.Code)
	}
}

func TestGameLifecycleAPI(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := do(t, h, http.MethodPost, "/api/games", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d", rec.Code)
	}
	created := decode[GameResponse](t, rec)
	if created.ID == "" || created.State.State != "menu" {
		t.Fatalf("created = %+v", created)
	}
	base := "/api/games/" + created.ID

	rec = do(t, h, http.MethodPost, base+"/start", "")
	started := decode[GameResponse](t, rec)
	if rec.Code != http.StatusOK || started.State.State != "active" || !started.State.IsYourTurn {
		t.Fatalf("start = %d %+v", rec.Code, started.State)
	}
	if started.State.You.DeckCount != 5 || started.State.Computer.Card != nil {
		t.Errorf("started state = %+v", started.State)
	}

	assertError(t, do(t, h, http.MethodPost, base+"/start", ""), http.StatusConflict, "GAME_IN_PROGRESS")
	assertError(t, do(t, h, http.MethodPost, base+"/select", "not json"), http.StatusBadRequest, "BAD_REQUEST")
	assertError(t, do(t, h, http.MethodPost, base+"/select", `{"stat":"ducks","format":"odi"}`), http.StatusBadRequest, "INVALID_SELECTION")

	rec = do(t, h, http.MethodPost, base+"/select", `{"stat":"runs","format":"odi"}`)
	sel := decode[SelectResponse](t, rec)
	if !sel.Accepted || sel.State.Phase != game.PhaseRevealing.String() {
		t.Fatalf("select = %+v", sel)
	}

	rec = do(t, h, http.MethodPost, base+"/select", `{"stat":"matches","format":"test"}`)
	again := decode[SelectResponse](t, rec)
	if rec.Code != http.StatusOK || again.Accepted || again.Reason == "" {
		t.Errorf("second select = %d %+v", rec.Code, again)
	}
	if again.State.Selection == nil || again.State.Selection.Stat != "runs" {
		t.Errorf("selection changed: %+v", again.State.Selection)
	}

	rec = do(t, h, http.MethodGet, base, "")
	if got := decode[GameResponse](t, rec); got.ID != created.ID || got.State.Round != 1 {
		t.Errorf("get = %+v", got)
	}

	rec = do(t, h, http.MethodPost, base+"/restart", "")
	if got := decode[GameResponse](t, rec); got.State.State != "menu" {
		t.Errorf("restart state = %s", got.State.State)
	}

	rec = do(t, h, http.MethodDelete, base, "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete = %d", rec.Code)
	}
	assertError(t, do(t, h, http.MethodGet, base, ""), http.StatusNotFound, "GAME_NOT_FOUND")
	assertError(t, do(t, h, http.MethodDelete, base, ""), http.StatusNotFound, "GAME_NOT_FOUND")
	assertError(t, do(t, h, http.MethodGet, "/api/games/not-a-uuid", ""), http.StatusNotFound, "GAME_NOT_FOUND")
}

func TestPlayerDetails(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	assertError(t, do(t, h, http.MethodGet, "/api/players/Player%201/details", ""), http.StatusServiceUnavailable, "ASSETS_DISABLED")

	h = newTestServer(t, func(o *Options) {
		o.Assets = assets.NewService(fakeGenerator{}, assets.NewMemoryCache(0), nil)
	}).Handler()
	rec := do(t, h, http.MethodGet, "/api/players/player%203/details", "")
	d := decode[assets.Details](t, rec)
	if rec.Code != http.StatusOK || d.Bio != "Player 3 of Testland" || d.ImageURL == "" {
		t.Errorf("details = %d %+v", rec.Code, d)
	}
	assertError(t, do(t, h, http.MethodGet, "/api/players/Nobody/details", ""), http.StatusNotFound, "PLAYER_NOT_FOUND")
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, func(o *Options) {
		o.RateLimitRequests = 2
		o.RateLimitWindow = time.Minute
	}).Handler()

	if rec := do(t, h, http.MethodGet, "/api/cards", ""); rec.Code != http.StatusOK {
		t.Fatalf("first request = %d", rec.Code)
	}
	rec := do(t, h, http.MethodGet, "/api/cards", "")
	assertError(t, rec, http.StatusTooManyRequests, "RATE_LIMITED")
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
	// Health checks are not limited.
	if rec := do(t, h, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("health = %d", rec.Code)
	}
}

func TestTooManyGames(t *testing.T) {
	h := newTestServer(t, func(o *Options) { o.MaxGames = 1 }).Handler()
	if rec := do(t, h, http.MethodPost, "/api/games", ""); rec.Code != http.StatusCreated {
		t.Fatalf("create = %d", rec.Code)
	}
	assertError(t, do(t, h, http.MethodPost, "/api/games", ""), http.StatusServiceUnavailable, "TOO_MANY_GAMES")
}

func TestRegistryPrune(t *testing.T) {
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(0, func() *game.Game { return game.New(game.Config{Catalog: testCards(4)}) })
	r.now = func() time.Time { return clock }

	idle, _, _ := r.Create()
	busy, g, _ := r.Create()
	if err := g.StartGame(); err != nil {
		t.Fatal(err)
	}
	if n := r.Prune(clock.Add(-time.Hour)); n != 0 {
		t.Errorf("pruned %d fresh games", n)
	}

	// Both games are old; only busy is played after the cutoff.
	clock = clock.Add(2 * time.Hour)
	if _, err := r.Get(busy); err != nil {
		t.Fatal(err)
	}
	if n := r.Prune(clock.Add(-time.Hour)); n != 1 {
		t.Errorf("pruned %d, want 1", n)
	}
	if _, err := r.Get(idle); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("Get(idle) after prune = %v", err)
	}
	if bg, err := r.Get(busy); err != nil || bg.State() != game.StateActive {
		t.Errorf("game in use was pruned: %v", err)
	}
}

func TestWebSocketStream(t *testing.T) {
	srv := newTestServer(t, func(o *Options) {
		o.Delays = game.Delays{NextRound: time.Hour}
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/games", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	var created GameResponse
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/api/games/"+created.ID+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	readUntil := func(match func(tnet.ServerMessage) bool) tnet.ServerMessage {
		t.Helper()
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			var msg tnet.ServerMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if match(msg) {
				return msg
			}
		}
	}
	writeMsg := func(msg tnet.ClientMessage) {
		t.Helper()
		data, _ := json.Marshal(msg)
		if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	first := readUntil(func(tnet.ServerMessage) bool { return true })
	if first.Type != tnet.TypeState || first.State.State != "menu" {
		t.Fatalf("first = %+v", first)
	}

	writeMsg(tnet.ClientMessage{Type: tnet.TypeStart})
	readUntil(func(m tnet.ServerMessage) bool { return m.Type == tnet.TypeNotify && m.Event.Type == "GameStart" })
	readUntil(func(m tnet.ServerMessage) bool { return m.Type == tnet.TypeState && m.State.IsYourTurn })

	// Moves over HTTP are pushed to the socket too.
	resp, err = http.Post(ts.URL+"/api/games/"+created.ID+"/select", "application/json", strings.NewReader(`{"stat":"runs","format":"odi"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	msg := readUntil(func(m tnet.ServerMessage) bool { return m.Type == tnet.TypeState && m.State.RoundWinner != "" })
	if msg.State.Computer.Card == nil {
		t.Error("computer card hidden after reveal")
	}

	conn.Close(websocket.StatusNormalClosure, "done")
}
