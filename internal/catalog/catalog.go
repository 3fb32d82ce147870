// Package catalog loads the cricketer card set from YAML.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/peterkuimelis/crictrumps/internal/game"
)

//go:embed cards.yaml
var defaultCards []byte

var ErrDuplicateCard = errors.New("duplicate card")

// Source provides the full card list. Implementations are read-only.
type Source interface {
	AllCards() []*game.PlayerCard
}

// File represents the top-level YAML structure.
type File struct {
	Players []Entry `yaml:"players"`
}

// Entry represents a single card in the YAML file.
type Entry struct {
	Name    string    `yaml:"name"`
	Country string    `yaml:"country"`
	Span    string    `yaml:"span"`
	Image   string    `yaml:"image"`
	Stats   StatsYAML `yaml:"stats"`
}

// StatsYAML maps format name to stat name to value.
type StatsYAML map[string]map[string]RawStat

// RawStat is a stat as written in YAML: a number, a numeric-like string
// such as "248*", or null.
type RawStat struct {
	game.StatValue
}

// UnmarshalYAML normalizes the scalar at load time.
func (r *RawStat) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: stat must be a scalar", value.Line)
	}
	switch value.Tag {
	case "!!null":
		r.StatValue = game.Absent()
	case "!!int", "!!float":
		var f float64
		if err := value.Decode(&f); err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("line %d: stat %q is not a finite number", value.Line, value.Value)
		}
		r.StatValue = game.Number(f)
	default:
		r.StatValue = game.ParseStat(value.Value)
	}
	return nil
}

// Catalog is an immutable, validated card list.
type Catalog struct {
	cards  []*game.PlayerCard
	byName map[string]*game.PlayerCard
}

// AllCards returns the cards in file order. The slice is a copy; the cards
// are shared.
func (c *Catalog) AllCards() []*game.PlayerCard {
	return append([]*game.PlayerCard(nil), c.cards...)
}

// Len returns the number of cards.
func (c *Catalog) Len() int {
	return len(c.cards)
}

// Lookup finds a card by name, ignoring case and surrounding space.
func (c *Catalog) Lookup(name string) (*game.PlayerCard, bool) {
	card, ok := c.byName[normalizeName(name)]
	return card, ok
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return cat, nil
}

// Default returns the embedded card set.
func Default() *Catalog {
	cat, err := Parse(defaultCards)
	if err != nil {
		panic(fmt.Sprintf("embedded cards.yaml: %v", err))
	}
	return cat
}

// Open loads path, or the embedded set when path is empty.
func Open(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}

	cat := &Catalog{byName: make(map[string]*game.PlayerCard)}
	for i, entry := range f.Players {
		card, err := entry.toCard()
		if err != nil {
			return nil, fmt.Errorf("player %d: %w", i+1, err)
		}
		key := normalizeName(card.Name)
		if _, dup := cat.byName[key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCard, card.Name)
		}
		cat.byName[key] = card
		cat.cards = append(cat.cards, card)
	}

	if len(cat.cards) < 2 {
		return nil, fmt.Errorf("%d cards: %w", len(cat.cards), game.ErrCatalogTooSmall)
	}
	return cat, nil
}

func (e Entry) toCard() (*game.PlayerCard, error) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return nil, errors.New("missing name")
	}
	card := &game.PlayerCard{
		Name:      name,
		Country:   strings.TrimSpace(e.Country),
		Span:      strings.TrimSpace(e.Span),
		ImagePath: e.Image,
	}

	for formatName, raw := range e.Stats {
		format, err := game.ParseFormat(formatName)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		line := make(game.StatLine, len(raw))
		for statName, v := range raw {
			stat, err := game.ParseStatName(statName)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", name, format, err)
			}
			if v.Raw == "" && !v.Present {
				// null: leave the key out so it reads as absent
				continue
			}
			line[stat] = v.StatValue
		}
		switch format {
		case game.FormatTest:
			card.Stats.Test = line
		case game.FormatODI:
			card.Stats.ODI = line
		case game.FormatT20:
			card.Stats.T20 = line
		}
	}
	return card, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
