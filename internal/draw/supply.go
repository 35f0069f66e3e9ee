// Package draw moves tiles from a shared supply into a hand.
package draw

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/icheered/RummikubBot/internal/tile"
)

var ErrSupplyEmpty = errors.New("draw from empty supply")

// Supply is the bag tiles are drawn from. Not safe for concurrent use; each
// session owns its own.
type Supply struct {
	inv tile.Inventory
	rng *rand.Rand
}

// NewSupply fills a bag with copies of every tile plus jokers. A nil rng
// gets a time-seeded one.
func NewSupply(copies, jokers int, rng *rand.Rand) (*Supply, error) {
	inv, err := tile.FullSet(copies, jokers)
	if err != nil {
		return nil, fmt.Errorf("build supply: %w", err)
	}
	return FromInventory(inv, rng), nil
}

func FromInventory(inv tile.Inventory, rng *rand.Rand) *Supply {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Supply{inv: inv, rng: rng}
}

func (s *Supply) Remaining() int { return s.inv.Size() }

func (s *Supply) Inventory() tile.Inventory { return s.inv }

// Draw removes one unit picked uniformly from what is left, so a joker
// comes out with probability jokers/remaining. The returned tile has Joker
// set when a joker was drawn.
func (s *Supply) Draw() (tile.Tile, error) {
	total := s.inv.Size()
	if total == 0 {
		return tile.Tile{}, ErrSupplyEmpty
	}
	idx := s.rng.Intn(total)
	if idx < s.inv.Jokers() {
		s.inv.RemoveJoker()
		return tile.Tile{Joker: true}, nil
	}
	idx -= s.inv.Jokers()
	for n := tile.MinNumber; n <= tile.MaxNumber; n++ {
		for c := tile.Color(0); c < tile.NumColors; c++ {
			k := s.inv.Count(n, c)
			if idx < k {
				t := tile.New(n, c)
				s.inv.Remove(t)
				return t, nil
			}
			idx -= k
		}
	}
	// Size and the cell walk disagree only if the inventory is corrupt.
	panic("draw: supply count mismatch")
}

// DrawInto draws one unit and adds it to hand.
func (s *Supply) DrawInto(hand *tile.Inventory) (tile.Tile, error) {
	t, err := s.Draw()
	if err != nil {
		return tile.Tile{}, err
	}
	if err := hand.Add(t); err != nil {
		return tile.Tile{}, fmt.Errorf("add %v to hand: %w", t, err)
	}
	return t, nil
}

// Deal draws n units into hand.
func (s *Supply) Deal(hand *tile.Inventory, n int) ([]tile.Tile, error) {
	out := make([]tile.Tile, 0, n)
	for i := 0; i < n; i++ {
		t, err := s.DrawInto(hand)
		if err != nil {
			return out, fmt.Errorf("deal tile %d of %d: %w", i+1, n, err)
		}
		out = append(out, t)
	}
	return out, nil
}
