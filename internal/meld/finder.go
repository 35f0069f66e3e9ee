package meld

import "github.com/icheered/RummikubBot/internal/tile"

// FindGroup scans the colors in order at number and takes a real tile
// where there is one, otherwise a joker while the inventory's joker count
// allows. It stops at three tiles, so a fourth available color is never
// added. A group made only of jokers is rejected.
//
// Greedy: only one group per number is ever proposed.
func FindGroup(inv tile.Inventory, number int) (Meld, bool) {
	budget := inv.Jokers()
	ts := make([]tile.Tile, 0, 3)
	reals := 0
	for c := tile.Color(0); c < tile.NumColors && len(ts) < 3; c++ {
		switch {
		case inv.Has(number, c):
			ts = append(ts, tile.New(number, c))
			reals++
		case budget > 0:
			ts = append(ts, tile.JokerAs(number, c))
			budget--
		}
	}
	if len(ts) < 3 || reals == 0 {
		return Meld{}, false
	}
	return Meld{Tiles: ts}, true
}

// FindRun extends a run of color upward from start, filling gaps with
// jokers while the budget lasts and stopping at the first gap it cannot
// fill. The run is as long as possible; shorter prefixes are never tried.
func FindRun(inv tile.Inventory, start int, color tile.Color) (Meld, bool) {
	budget := inv.Jokers()
	var ts []tile.Tile
	reals := 0
	for n := start; n <= tile.MaxNumber; n++ {
		if inv.Has(n, color) {
			ts = append(ts, tile.New(n, color))
			reals++
			continue
		}
		if budget == 0 {
			break
		}
		ts = append(ts, tile.JokerAs(n, color))
		budget--
	}
	if len(ts) < 3 || reals == 0 {
		return Meld{}, false
	}
	return Meld{Tiles: ts}, true
}
