// Package render formats hands and melds for terminal output.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/icheered/RummikubBot/internal/meld"
	"github.com/icheered/RummikubBot/internal/session"
	"github.com/icheered/RummikubBot/internal/solver"
	"github.com/icheered/RummikubBot/internal/tile"
)

// Grid prints the count table, one row per number and one column per
// color, followed by the joker count.
func Grid(w io.Writer, inv tile.Inventory) {
	fmt.Fprintln(w, "    |  Red | Blue | Yellow | Black")
	for n := tile.MinNumber; n <= tile.MaxNumber; n++ {
		fmt.Fprintf(w, " %2d |  %2d  |  %2d  |   %2d   |  %2d\n",
			n,
			inv.Count(n, tile.Red),
			inv.Count(n, tile.Blue),
			inv.Count(n, tile.Yellow),
			inv.Count(n, tile.Black),
		)
	}
	fmt.Fprintf(w, " jokers: %d\n", inv.Jokers())
}

func Meld(m meld.Meld) string {
	ids := m.IDs()
	for i, t := range m.Tiles {
		if t.Joker {
			ids[i] = "*" + ids[i][len("JOKER@"):]
		}
	}
	return fmt.Sprintf("%-5s %s", m.Kind(), strings.Join(ids, " "))
}

// Result prints one meld per line, or a single "no partition" line.
func Result(w io.Writer, res solver.Result) {
	if !res.Found {
		fmt.Fprintln(w, "no partition")
		return
	}
	for i, m := range res.Melds {
		fmt.Fprintf(w, "%3d. %s\n", i+1, Meld(m))
	}
}

// Event prints a one-line summary of a session event.
func Event(w io.Writer, e session.Event) {
	short := e.SessionID
	if len(short) > 8 {
		short = short[len(short)-8:]
	}
	switch p := e.Payload.(type) {
	case session.HandDealtPayload:
		fmt.Fprintf(w, "[%s] dealt %d: %s\n", short, len(p.Tiles), strings.Join(p.Tiles, " "))
	case session.TileDrawnPayload:
		fmt.Fprintf(w, "[%s] drew %s (%d left in supply)\n", short, p.Tile, p.Remaining)
	case session.SolveAttemptedPayload:
		verdict := "no partition"
		if p.Report.Found {
			verdict = fmt.Sprintf("found %d melds", len(p.Report.Melds))
		}
		fmt.Fprintf(w, "[%s] %2d tiles: %s\n", short, p.TileCount, verdict)
	case session.SessionSolvedPayload:
		fmt.Fprintf(w, "[%s] solved after %d draws with %d tiles\n", short, p.Draws, p.TileCount)
	default:
		fmt.Fprintf(w, "[%s] %s\n", short, e.Kind)
	}
}
