package assets

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeGenerator struct {
	calls   atomic.Int32
	details Details
	err     error
	block   chan struct{}
}

func (f *fakeGenerator) Generate(ctx context.Context, name, country string) (Details, error) {
	f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	return f.details, f.err
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (Details, bool, error) {
	return Details{}, false, errors.New("down")
}

func (brokenCache) Put(context.Context, string, Details) error {
	return errors.New("down")
}

func TestCacheKey(t *testing.T) {
	tests := map[string]string{
		"Sachin Tendulkar":      "player_Sachin_Tendulkar",
		"AB  de\tVilliers":      "player_AB_de_Villiers",
		"Muttiah Muralitharan ": "player_Muttiah_Muralitharan_",
	}
	for in, want := range tests {
		if got := CacheKey(in); got != want {
			t.Errorf("CacheKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestServiceCachesSuccess(t *testing.T) {
	gen := &fakeGenerator{details: Details{ImageURL: "data:image/png;base64,AA==", Bio: "A batsman."}}
	cache := NewMemoryCache(time.Hour)
	svc := NewService(gen, cache, nil)

	for i := 0; i < 3; i++ {
		d := svc.GenerateDetails(context.Background(), "Brian Lara", "West Indies")
		if d != gen.details {
			t.Fatalf("call %d: got %+v", i, d)
		}
	}
	if n := gen.calls.Load(); n != 1 {
		t.Errorf("generator called %d times, want 1", n)
	}
	if _, ok, _ := cache.Get(context.Background(), "player_Brian_Lara"); !ok {
		t.Error("details not cached under player_Brian_Lara")
	}
}

func TestServiceFailureReturnsPlaceholderUncached(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"error", &fakeGenerator{err: errors.New("quota")}},
		{"missing image", &fakeGenerator{details: Details{Bio: "only text"}}},
		{"missing bio", &fakeGenerator{details: Details{ImageURL: "data:x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewMemoryCache(0)
			svc := NewService(tt.gen, cache, nil)
			d := svc.GenerateDetails(context.Background(), "Kapil Dev", "India")
			if d != Placeholder() || d.Bio != "Could not load biography." || d.ImageURL != "" {
				t.Errorf("got %+v, want placeholder", d)
			}
			if cache.Len() != 0 {
				t.Error("failure was cached")
			}
			svc.GenerateDetails(context.Background(), "Kapil Dev", "India")
			if n := tt.gen.calls.Load(); n != 2 {
				t.Errorf("generator called %d times, want a retry", n)
			}
		})
	}
}

func TestServiceIgnoresCacheErrors(t *testing.T) {
	gen := &fakeGenerator{details: Details{ImageURL: "data:x", Bio: "bio"}}
	svc := NewService(gen, brokenCache{}, nil)
	if d := svc.GenerateDetails(context.Background(), "Don Bradman", "Australia"); d != gen.details {
		t.Errorf("got %+v", d)
	}
}

func TestServiceSharesConcurrentGeneration(t *testing.T) {
	gen := &fakeGenerator{details: Details{ImageURL: "data:x", Bio: "bio"}, block: make(chan struct{})}
	svc := NewService(gen, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.GenerateDetails(context.Background(), "Shane Warne", "Australia")
		}()
	}
	for gen.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(gen.block)
	wg.Wait()
	if n := gen.calls.Load(); n > 5 || n < 1 {
		t.Errorf("generator called %d times", n)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	now := time.Unix(1000, 0)
	c := NewMemoryCache(time.Minute)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_ = c.Put(ctx, "k", Details{Bio: "b"})
	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Fatal("fresh entry missing")
	}
	now = now.Add(time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("expired entry returned")
	}
	if c.Len() != 0 {
		t.Error("expired entry not evicted")
	}
}

func TestGeminiGenerator(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]generateRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "secret" {
			http.Error(w, "no key", http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		var req generateRequest
		_ = json.Unmarshal(body, &req)
		mu.Lock()
		seen[r.URL.Path] = req
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, DefaultImageModel+":") {
			_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"here"},{"inlineData":{"mimeType":"image/jpeg","data":"QUJD"}}]}}]}`)
			return
		}
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"  Great all-rounder. "}]}}]}`)
	}))
	defer srv.Close()

	g := NewGeminiGenerator(srv.URL+"/", "secret", 6000, nil)
	d, err := g.Generate(context.Background(), "Jacques Kallis", "South Africa")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if d.ImageURL != "data:image/jpeg;base64,QUJD" {
		t.Errorf("image = %q", d.ImageURL)
	}
	if d.Bio != "Great all-rounder." {
		t.Errorf("bio = %q", d.Bio)
	}

	img := seen["/v1beta/models/"+DefaultImageModel+":generateContent"]
	if img.GenerationConfig == nil || img.GenerationConfig.ResponseModalities[0] != "IMAGE" {
		t.Errorf("image request missing IMAGE modality: %+v", img)
	}
	bio := seen["/v1beta/models/"+DefaultTextModel+":generateContent"]
	if len(bio.Contents) != 1 || !strings.Contains(bio.Contents[0].Parts[0].Text, "Jacques Kallis from South Africa") {
		t.Errorf("bio prompt = %+v", bio)
	}
}

func TestGeminiGeneratorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGeminiGenerator(srv.URL, "k", 6000, nil)
	if _, err := g.Generate(context.Background(), "X", "Y"); err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("expected 429 error, got %v", err)
	}

	svc := NewService(g, NewMemoryCache(0), nil)
	if d := svc.GenerateDetails(context.Background(), "X", "Y"); d != Placeholder() {
		t.Errorf("got %+v, want placeholder", d)
	}
}
