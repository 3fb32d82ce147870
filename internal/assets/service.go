// Package assets generates and caches the portrait and short biography shown
// on a player card. Generation is best effort: any failure yields the
// placeholder and is never cached.
package assets

import (
	"context"
	"errors"
	"log/slog"
	"regexp"

	"golang.org/x/sync/singleflight"
)

// ErrIncomplete is returned by generators that produced only part of the
// details.
var ErrIncomplete = errors.New("incomplete player details")

// PlaceholderBio is shown when generation fails.
const PlaceholderBio = "Could not load biography."

// Details is what a card shows besides its stats. ImageURL is usually a
// data: URL.
type Details struct {
	ImageURL string `json:"imageUrl"`
	Bio      string `json:"bio"`
}

// Placeholder returns the details used when generation fails.
func Placeholder() Details {
	return Details{Bio: PlaceholderBio}
}

// Complete reports whether both parts are present.
func (d Details) Complete() bool {
	return d.ImageURL != "" && d.Bio != ""
}

// Generator produces details for one player.
type Generator interface {
	Generate(ctx context.Context, name, country string) (Details, error)
}

// Cache stores generated details by key.
type Cache interface {
	Get(ctx context.Context, key string) (Details, bool, error)
	Put(ctx context.Context, key string, d Details) error
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CacheKey derives the cache key for a player name.
func CacheKey(name string) string {
	return "player_" + whitespaceRun.ReplaceAllString(name, "_")
}

// Service serves details from the cache, generating on a miss. Concurrent
// requests for the same player share one generation.
type Service struct {
	gen    Generator
	cache  Cache
	logger *slog.Logger
	group  singleflight.Group
}

// NewService creates a service. A nil cache disables caching.
func NewService(gen Generator, cache Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gen: gen, cache: cache, logger: logger}
}

// GenerateDetails never fails: errors are logged and the placeholder is
// returned instead.
func (s *Service) GenerateDetails(ctx context.Context, name, country string) Details {
	key := CacheKey(name)

	if s.cache != nil {
		d, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("asset cache read failed", "key", key, "error", err)
		} else if ok {
			return d
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		d, err := s.gen.Generate(ctx, name, country)
		if err != nil {
			return nil, err
		}
		if !d.Complete() {
			return nil, ErrIncomplete
		}
		if s.cache != nil {
			if err := s.cache.Put(ctx, key, d); err != nil {
				s.logger.Warn("asset cache write failed", "key", key, "error", err)
			}
		}
		return d, nil
	})
	if err != nil {
		s.logger.Error("failed to generate player details", "player", name, "error", err)
		return Placeholder()
	}
	return v.(Details)
}
