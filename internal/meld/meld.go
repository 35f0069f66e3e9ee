// Package meld defines melds and the finders that build them from an
// inventory.
package meld

import (
	"strings"

	"github.com/icheered/RummikubBot/internal/tile"
)

type Kind string

const (
	KindGroup   Kind = "GROUP"
	KindRun     Kind = "RUN"
	KindInvalid Kind = "INVALID"
)

// Meld is an ordered tile sequence. Whether it is a group or a run is
// always derived from its tiles.
type Meld struct {
	Tiles []tile.Tile `json:"tiles"`
}

func New(ts ...tile.Tile) Meld {
	return Meld{Tiles: ts}
}

func (m Meld) Len() int { return len(m.Tiles) }

// IsRun reports whether every tile shares one color.
func (m Meld) IsRun() bool {
	if len(m.Tiles) == 0 {
		return false
	}
	for _, t := range m.Tiles[1:] {
		if t.Color != m.Tiles[0].Color {
			return false
		}
	}
	return true
}

func (m Meld) IsGroup() bool {
	return len(m.Tiles) > 0 && !m.IsRun()
}

func (m Meld) Kind() Kind {
	switch {
	case !m.Valid():
		return KindInvalid
	case m.IsRun():
		return KindRun
	default:
		return KindGroup
	}
}

// Valid checks the meld rules: a group is 3 or 4 tiles of one number in
// distinct colors, a run is 3+ tiles of one color with consecutive numbers.
func (m Meld) Valid() bool {
	if len(m.Tiles) < 3 {
		return false
	}
	for _, t := range m.Tiles {
		if !t.Valid() {
			return false
		}
	}
	if m.IsRun() {
		for i := 1; i < len(m.Tiles); i++ {
			if m.Tiles[i].Number != m.Tiles[i-1].Number+1 {
				return false
			}
		}
		return true
	}
	if len(m.Tiles) > 4 {
		return false
	}
	var seen [tile.NumColors]bool
	for _, t := range m.Tiles {
		if t.Number != m.Tiles[0].Number || seen[t.Color] {
			return false
		}
		seen[t.Color] = true
	}
	return true
}

func (m Meld) JokerCount() int {
	n := 0
	for _, t := range m.Tiles {
		if t.Joker {
			n++
		}
	}
	return n
}

func (m Meld) RealCount() int {
	return len(m.Tiles) - m.JokerCount()
}

// Sum is the face value of the meld, jokers counted as the tile they
// replace.
func (m Meld) Sum() int {
	s := 0
	for _, t := range m.Tiles {
		s += int(t.Number)
	}
	return s
}

func (m Meld) IDs() []string {
	out := make([]string, len(m.Tiles))
	for i, t := range m.Tiles {
		out[i] = t.ID()
	}
	return out
}

func (m Meld) String() string {
	parts := make([]string, len(m.Tiles))
	for i, t := range m.Tiles {
		parts[i] = t.String()
	}
	return string(m.Kind()) + "{" + strings.Join(parts, ",") + "}"
}
