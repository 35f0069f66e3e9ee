package meld

import (
	"golang.org/x/exp/slices"

	"github.com/icheered/RummikubBot/internal/tile"
)

// Candidates lists every meld that contains one real tile at (number,
// color) and can be built from inv: groups of 3 and 4 colors and runs of
// any length, with a joker allowed in any slot (even where a real tile is
// available) as long as the joker count allows. Runs may start with
// jokers below number.
//
// Unlike FindGroup/FindRun this is exhaustive, so a solver that tries each
// candidate for the lowest remaining tile decides partition existence
// exactly. The caller must pass a cell with a real tile.
func Candidates(inv tile.Inventory, number int, color tile.Color) []Meld {
	if !inv.Has(number, color) {
		return nil
	}
	var out []Meld
	out = appendGroups(out, inv, number, color)
	out = appendRuns(out, inv, number, color)
	return out
}

func appendGroups(out []Meld, inv tile.Inventory, number int, seed tile.Color) []Meld {
	budget := inv.Jokers()
	var others []tile.Color
	for c := tile.Color(0); c < tile.NumColors; c++ {
		if c != seed {
			others = append(others, c)
		}
	}

	// Pick 2 or all 3 of the other colors.
	for mask := 1; mask < 1<<len(others); mask++ {
		var picked []tile.Color
		for i, c := range others {
			if mask&(1<<i) != 0 {
				picked = append(picked, c)
			}
		}
		if len(picked) < 2 {
			continue
		}
		out = fillGroup(out, inv, number, seed, picked, 0, budget, nil)
	}
	return out
}

// fillGroup chooses real-or-joker for picked[i:] and emits complete groups
// in color order.
func fillGroup(out []Meld, inv tile.Inventory, number int, seed tile.Color, picked []tile.Color, i, budget int, chosen []tile.Tile) []Meld {
	if i == len(picked) {
		ts := make([]tile.Tile, 0, len(chosen)+1)
		ts = append(ts, tile.New(number, seed))
		ts = append(ts, chosen...)
		sortByColor(ts)
		return append(out, Meld{Tiles: ts})
	}
	c := picked[i]
	if inv.Has(number, c) {
		out = fillGroup(out, inv, number, seed, picked, i+1, budget, append(chosen, tile.New(number, c)))
	}
	if budget > 0 {
		out = fillGroup(out, inv, number, seed, picked, i+1, budget-1, append(chosen, tile.JokerAs(number, c)))
	}
	return out
}

func sortByColor(ts []tile.Tile) {
	slices.SortFunc(ts, func(a, b tile.Tile) int {
		return int(a.Color) - int(b.Color)
	})
}

func appendRuns(out []Meld, inv tile.Inventory, number int, color tile.Color) []Meld {
	budget := inv.Jokers()
	for lead := 0; lead <= budget && number-lead >= tile.MinNumber; lead++ {
		start := number - lead
		prefix := make([]tile.Tile, 0, tile.MaxNumber)
		for n := start; n < number; n++ {
			prefix = append(prefix, tile.JokerAs(n, color))
		}
		prefix = append(prefix, tile.New(number, color))
		out = extendRun(out, inv, color, number+1, budget-lead, prefix)
	}
	return out
}

// extendRun emits run as a meld once it is long enough, then tries to
// extend it by one more number with a real tile or a joker.
func extendRun(out []Meld, inv tile.Inventory, color tile.Color, next, budget int, run []tile.Tile) []Meld {
	if len(run) >= 3 {
		ts := make([]tile.Tile, len(run))
		copy(ts, run)
		out = append(out, Meld{Tiles: ts})
	}
	if next > tile.MaxNumber {
		return out
	}
	if inv.Has(next, color) {
		out = extendRun(out, inv, color, next+1, budget, append(run, tile.New(next, color)))
	}
	if budget > 0 {
		out = extendRun(out, inv, color, next+1, budget-1, append(run, tile.JokerAs(next, color)))
	}
	return out
}

// Coverable reports whether any meld at all could hold the tile at
// (number, color): three colors at number counting jokers, or a window of
// three numbers around it whose gaps the jokers can fill. A hand with an
// uncoverable tile has no partition.
func Coverable(inv tile.Inventory, number int, color tile.Color) bool {
	jokers := inv.Jokers()
	colors := 0
	for c := tile.Color(0); c < tile.NumColors; c++ {
		if inv.Has(number, c) {
			colors++
		}
	}
	if colors+jokers >= 3 {
		return true
	}
	for start := number - 2; start <= number; start++ {
		if start < tile.MinNumber || start+2 > tile.MaxNumber {
			continue
		}
		missing := 0
		for n := start; n <= start+2; n++ {
			if !inv.Has(n, color) {
				missing++
			}
		}
		if missing <= jokers {
			return true
		}
	}
	return false
}
