// Package tile holds the value types the solver works on: a single tile,
// the inventory (a hand or a supply) and the packed key of an inventory.
package tile

import (
	"errors"
	"fmt"
	"strings"
)

// Color is one of the four tile colors, in the fixed scan order.
type Color uint8

const (
	Red Color = iota
	Blue
	Yellow
	Black
)

const (
	NumColors = 4
	MinNumber = 1
	MaxNumber = 13
)

var ErrBadTile = errors.New("bad tile id")

var colorLetters = [NumColors]string{"R", "B", "Y", "K"}
var colorNames = [NumColors]string{"Red", "Blue", "Yellow", "Black"}

func (c Color) Letter() string {
	if int(c) >= NumColors {
		return "?"
	}
	return colorLetters[c]
}

func (c Color) String() string {
	if int(c) >= NumColors {
		return fmt.Sprintf("Color(%d)", uint8(c))
	}
	return colorNames[c]
}

// ParseColor accepts a color letter (R, B, Y, K) or a full color name.
func ParseColor(s string) (Color, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i := 0; i < NumColors; i++ {
		if s == colorLetters[i] || s == strings.ToUpper(colorNames[i]) {
			return Color(i), true
		}
	}
	return 0, false
}

// Tile is a single tile. A joker placed inside a meld keeps the number and
// color it stands for; a joker still in hand is only counted by Inventory.
type Tile struct {
	Color  Color `json:"color"`
	Number uint8 `json:"number"`
	Joker  bool  `json:"joker,omitempty"`
}

func New(number int, c Color) Tile {
	return Tile{Color: c, Number: uint8(number)}
}

// JokerAs returns a joker standing in for (number, color).
func JokerAs(number int, c Color) Tile {
	return Tile{Color: c, Number: uint8(number), Joker: true}
}

func (t Tile) Valid() bool {
	return int(t.Color) < NumColors && t.Number >= MinNumber && t.Number <= MaxNumber
}

// ID renders the tile in the wire form used by ParseTile: "R07", or
// "JOKER@R07" for a placed joker.
func (t Tile) ID() string {
	base := fmt.Sprintf("%s%02d", t.Color.Letter(), t.Number)
	if t.Joker {
		return "JOKER@" + base
	}
	return base
}

func (t Tile) String() string {
	if t.Joker {
		return fmt.Sprintf("joker@%d-%s", t.Number, t.Color)
	}
	return fmt.Sprintf("%d-%s", t.Number, t.Color)
}

func parseNum2(s string) int {
	if len(s) < 2 {
		return 0
	}
	a := s[0] - '0'
	b := s[1] - '0'
	if a > 9 || b > 9 {
		return 0
	}
	return int(a)*10 + int(b)
}

// ParseTile reads a tile id such as "R07", "k13", "B09-2" (copy suffix is
// ignored) or "JOKER" / "JOKER-1". The second result reports a hand joker.
func ParseTile(id string) (Tile, bool, error) {
	s := strings.ToUpper(strings.TrimSpace(id))
	if strings.HasPrefix(s, "JOKER") {
		return Tile{}, true, nil
	}
	if i := strings.IndexByte(s, '-'); i >= 0 {
		s = s[:i]
	}
	if len(s) != 3 {
		return Tile{}, false, fmt.Errorf("%w: %q", ErrBadTile, id)
	}
	c, ok := ParseColor(s[:1])
	if !ok {
		return Tile{}, false, fmt.Errorf("%w: unknown color in %q", ErrBadTile, id)
	}
	n := parseNum2(s[1:3])
	if n < MinNumber || n > MaxNumber {
		return Tile{}, false, fmt.Errorf("%w: number out of range in %q", ErrBadTile, id)
	}
	return New(n, c), false, nil
}
