package game

import (
	"strconv"
	"strings"
)

// NoValue is the comparable value of an absent or unparseable stat.
const NoValue = -1.0

// StatValue is a normalized statistic. Raw keeps the text the catalog
// recorded (e.g. "55*") for display; comparisons only look at Value.
type StatValue struct {
	Raw     string
	Value   float64
	Present bool
}

// Number returns a present stat with the given value.
func Number(v float64) StatValue {
	return StatValue{Value: v, Present: true}
}

// Absent returns a stat with no recorded value.
func Absent() StatValue {
	return StatValue{}
}

// ParseStat normalizes a numeric-like string. Every character other than a
// digit or a decimal point is dropped before parsing; an empty or
// unparseable remainder yields an absent value that still carries Raw.
func ParseStat(raw string) StatValue {
	stripped := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, raw)
	if stripped == "" {
		return StatValue{Raw: raw}
	}
	v, err := strconv.ParseFloat(stripped, 64)
	if err != nil {
		return StatValue{Raw: raw}
	}
	return StatValue{Raw: raw, Value: v, Present: true}
}

// Comparable returns the value used by the comparator and the selector.
func (v StatValue) Comparable() float64 {
	if !v.Present {
		return NoValue
	}
	return v.Value
}

// String returns the display text for the value.
func (v StatValue) String() string {
	if v.Raw != "" {
		return v.Raw
	}
	if !v.Present {
		return "-"
	}
	return strconv.FormatFloat(v.Value, 'f', -1, 64)
}

// StatLine is one format's stat bundle. A missing key means the player has
// no recorded value for that stat.
type StatLine map[StatName]StatValue

// Get returns the value for a stat, absent when not recorded.
func (l StatLine) Get(name StatName) StatValue {
	if l == nil {
		return Absent()
	}
	return l[name]
}

// Stats holds the per-format bundles.
type Stats struct {
	Test StatLine
	ODI  StatLine
	T20  StatLine
}

// Line returns the bundle for a format.
func (s Stats) Line(f Format) StatLine {
	switch f {
	case FormatTest:
		return s.Test
	case FormatODI:
		return s.ODI
	case FormatT20:
		return s.T20
	default:
		return nil
	}
}

// PlayerCard is one cricketer card. Cards are shared by pointer between the
// catalog and the decks and are never mutated after load.
type PlayerCard struct {
	Name      string
	Country   string
	Span      string
	ImagePath string
	Stats     Stats
}

func (c *PlayerCard) String() string {
	if c == nil {
		return "(none)"
	}
	return c.Name
}

// Value looks up the stat a selection refers to.
func (c *PlayerCard) Value(sel Selection) StatValue {
	if c == nil {
		return Absent()
	}
	return c.Stats.Line(sel.Format).Get(sel.Stat)
}
