package tile

import (
	"errors"
	"fmt"
)

const (
	// MaxCopies bounds a single cell so that it fits the 3-bit key field.
	MaxCopies = 7
	// MaxJokers bounds the joker count so that it fits the 8-bit key field.
	MaxJokers = 255
)

var (
	ErrCellFull      = errors.New("tile cell full")
	ErrTooManyJokers = errors.New("too many jokers")
)

// Inventory is a multiset of tiles plus a joker count. It is a comparable
// value: assigning it copies it, and == is structural equality.
type Inventory struct {
	counts [MaxNumber][NumColors]uint8
	jokers uint8
}

// FullSet returns copies of every (number, color) tile plus jokers, the
// supply a game starts from.
func FullSet(copies, jokers int) (Inventory, error) {
	var inv Inventory
	if copies < 0 || copies > MaxCopies {
		return inv, fmt.Errorf("%w: %d copies", ErrCellFull, copies)
	}
	if jokers < 0 || jokers > MaxJokers {
		return inv, fmt.Errorf("%w: %d", ErrTooManyJokers, jokers)
	}
	for n := range inv.counts {
		for c := range inv.counts[n] {
			inv.counts[n][c] = uint8(copies)
		}
	}
	inv.jokers = uint8(jokers)
	return inv, nil
}

// FromIDs builds an inventory from tile ids accepted by ParseTile.
func FromIDs(ids []string) (Inventory, error) {
	var inv Inventory
	for _, id := range ids {
		t, joker, err := ParseTile(id)
		if err != nil {
			return Inventory{}, err
		}
		if joker {
			err = inv.AddJoker()
		} else {
			err = inv.Add(t)
		}
		if err != nil {
			return Inventory{}, err
		}
	}
	return inv, nil
}

func (inv Inventory) Count(number int, c Color) int {
	return int(inv.counts[number-1][c])
}

func (inv Inventory) Has(number int, c Color) bool {
	return inv.counts[number-1][c] > 0
}

func (inv Inventory) Jokers() int {
	return int(inv.jokers)
}

// RealCount is the number of non-joker tiles.
func (inv Inventory) RealCount() int {
	n := 0
	for _, row := range inv.counts {
		for _, v := range row {
			n += int(v)
		}
	}
	return n
}

// Size is RealCount plus Jokers.
func (inv Inventory) Size() int {
	return inv.RealCount() + int(inv.jokers)
}

func (inv Inventory) Empty() bool {
	return inv.Size() == 0
}

// Add puts one real tile into the inventory. A joker tile is counted as a
// hand joker.
func (inv *Inventory) Add(t Tile) error {
	if t.Joker {
		return inv.AddJoker()
	}
	if !t.Valid() {
		return fmt.Errorf("%w: %v", ErrBadTile, t)
	}
	cell := &inv.counts[t.Number-1][t.Color]
	if *cell >= MaxCopies {
		return fmt.Errorf("%w: %v", ErrCellFull, t)
	}
	*cell++
	return nil
}

func (inv *Inventory) AddJoker() error {
	if inv.jokers >= MaxJokers {
		return ErrTooManyJokers
	}
	inv.jokers++
	return nil
}

// Remove takes one unit out. Callers prove availability first; removing a
// tile that is not there is a programming error and panics.
func (inv *Inventory) Remove(t Tile) {
	if t.Joker {
		inv.RemoveJoker()
		return
	}
	cell := &inv.counts[t.Number-1][t.Color]
	if *cell == 0 {
		panic(fmt.Sprintf("tile: remove %v from empty cell", t))
	}
	*cell--
}

func (inv *Inventory) RemoveJoker() {
	if inv.jokers == 0 {
		panic("tile: remove joker from empty inventory")
	}
	inv.jokers--
}

// Without returns a copy with every tile of ts removed. Placed jokers are
// removed from the joker count.
func (inv Inventory) Without(ts []Tile) Inventory {
	out := inv
	for _, t := range ts {
		out.Remove(t)
	}
	return out
}

// Tiles lists the real tiles in (number, color) order, then one JOKER
// placeholder per hand joker (a zero-valued joker tile).
func (inv Inventory) Tiles() []Tile {
	out := make([]Tile, 0, inv.Size())
	for n := MinNumber; n <= MaxNumber; n++ {
		for c := Color(0); c < NumColors; c++ {
			for i := 0; i < inv.Count(n, c); i++ {
				out = append(out, New(n, c))
			}
		}
	}
	for i := 0; i < int(inv.jokers); i++ {
		out = append(out, Tile{Joker: true})
	}
	return out
}

// IDs renders the inventory as tile ids, jokers last.
func (inv Inventory) IDs() []string {
	ts := inv.Tiles()
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		if t.Joker {
			out = append(out, "JOKER")
			continue
		}
		out = append(out, t.ID())
	}
	return out
}
