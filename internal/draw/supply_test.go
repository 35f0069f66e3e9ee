package draw

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/icheered/RummikubBot/internal/tile"
)

func TestDrawExhaustsSupply(t *testing.T) {
	s, err := NewSupply(2, 2, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	if s.Remaining() != 106 {
		t.Fatalf("remaining = %d, want 106", s.Remaining())
	}

	var hand tile.Inventory
	jokers := 0
	for i := 0; i < 106; i++ {
		x, err := s.DrawInto(&hand)
		if err != nil {
			t.Fatalf("draw %d: %v", i, err)
		}
		if x.Joker {
			jokers++
		}
	}

	full, _ := tile.FullSet(2, 2)
	if hand != full {
		t.Error("drawing everything did not reproduce the full set")
	}
	if jokers != 2 {
		t.Errorf("drew %d jokers, want 2", jokers)
	}

	if _, err := s.Draw(); !errors.Is(err, ErrSupplyEmpty) {
		t.Errorf("expected ErrSupplyEmpty, got %v", err)
	}
}

func TestDealFailsFast(t *testing.T) {
	var small tile.Inventory
	_ = small.Add(tile.New(1, tile.Red))
	_ = small.AddJoker()
	s := FromInventory(small, rand.New(rand.NewSource(3)))

	var hand tile.Inventory
	got, err := s.Deal(&hand, 3)
	if !errors.Is(err, ErrSupplyEmpty) {
		t.Fatalf("expected ErrSupplyEmpty, got %v", err)
	}
	if len(got) != 2 || hand.Size() != 2 {
		t.Errorf("dealt %d tiles, hand size %d; want 2", len(got), hand.Size())
	}
}

func TestDrawIsRoughlyUniform(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	jokerFirst := 0
	const trials = 5000
	for i := 0; i < trials; i++ {
		var inv tile.Inventory
		_ = inv.Add(tile.New(2, tile.Blue))
		_ = inv.AddJoker()
		s := FromInventory(inv, rng)
		x, _ := s.Draw()
		if x.Joker {
			jokerFirst++
		}
	}
	// One joker of two units: expect about half.
	if jokerFirst < trials*4/10 || jokerFirst > trials*6/10 {
		t.Errorf("joker drawn first %d/%d times", jokerFirst, trials)
	}
}
