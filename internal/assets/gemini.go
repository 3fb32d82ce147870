package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	DefaultImageModel = "gemini-2.5-flash-image"
	DefaultTextModel  = "gemini-2.5-flash"
)

// GeminiGenerator calls the Gemini generateContent REST endpoint for a
// portrait and a biography in parallel.
type GeminiGenerator struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	logger     *slog.Logger

	ImageModel string
	TextModel  string
}

// NewGeminiGenerator creates a rate-limited client. requestsPerMinute counts
// individual calls, so one player costs two.
func NewGeminiGenerator(baseURL, apiKey string, requestsPerMinute int, logger *slog.Logger) *GeminiGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	rps := float64(requestsPerMinute) / 60.0
	return &GeminiGenerator{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(rps), 2),
		logger:     logger,
		ImageModel: DefaultImageModel,
		TextModel:  DefaultTextModel,
	}
}

func (g *GeminiGenerator) Generate(ctx context.Context, name, country string) (Details, error) {
	var d Details
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		resp, err := g.generate(ctx, g.ImageModel, portraitPrompt(name, country), []string{"IMAGE"})
		if err != nil {
			return fmt.Errorf("portrait: %w", err)
		}
		d.ImageURL = resp.imageURL()
		return nil
	})
	eg.Go(func() error {
		resp, err := g.generate(ctx, g.TextModel, bioPrompt(name, country), nil)
		if err != nil {
			return fmt.Errorf("biography: %w", err)
		}
		d.Bio = strings.TrimSpace(resp.text())
		return nil
	})

	if err := eg.Wait(); err != nil {
		return Details{}, err
	}
	if !d.Complete() {
		return Details{}, ErrIncomplete
	}
	g.logger.Debug("generated player details", "player", name, "bio_len", len(d.Bio))
	return d, nil
}

func portraitPrompt(name, country string) string {
	return fmt.Sprintf("Generate a realistic, high-quality, portrait-style color photograph of the famous cricketer %s from %s in his prime, wearing his national team's jersey from his era. The image should be chest-up, with a neutral, slightly blurred background suitable for a sports trading card.", name, country)
}

func bioPrompt(name, country string) string {
	return fmt.Sprintf("Write a short, engaging, one-paragraph biography (around 50-60 words) for the cricketer %s from %s, highlighting their primary role (e.g., batsman, bowler, all-rounder) and their most significant career achievements in ODI cricket.", name, country)
}

// --- Wire types ---

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (r *generateResponse) parts() []part {
	if len(r.Candidates) == 0 {
		return nil
	}
	return r.Candidates[0].Content.Parts
}

// imageURL returns the last inline image as a data URL.
func (r *generateResponse) imageURL() string {
	url := ""
	for _, p := range r.parts() {
		if p.InlineData == nil || p.InlineData.Data == "" {
			continue
		}
		mime := p.InlineData.MimeType
		if mime == "" {
			mime = "image/png"
		}
		url = "data:" + mime + ";base64," + p.InlineData.Data
	}
	return url
}

func (r *generateResponse) text() string {
	var sb strings.Builder
	for _, p := range r.parts() {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// generate performs one rate-limited generateContent call.
func (g *GeminiGenerator) generate(ctx context.Context, model, prompt string, modalities []string) (*generateResponse, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqBody := generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}}
	if len(modalities) > 0 {
		reqBody.GenerationConfig = &generationConfig{ResponseModalities: modalities}
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	u := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", model, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini %s returned %d: %s", model, resp.StatusCode, truncate(body, 200))
	}

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
