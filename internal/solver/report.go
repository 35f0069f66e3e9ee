package solver

import (
	"github.com/icheered/RummikubBot/internal/meld"
	"github.com/icheered/RummikubBot/internal/tile"
)

type ReportMeld struct {
	Type  meld.Kind `json:"type"`
	Tiles []string  `json:"tiles"`
	Sum   int       `json:"sum"`
}

// Report is the wire/JSON view of one solve.
type Report struct {
	Found          bool         `json:"found"`
	Melds          []ReportMeld `json:"melds"`
	TileCount      int          `json:"tileCount"`
	UsedTilesCount int          `json:"usedTilesCount"`
	JokersUsed     int          `json:"jokersUsed"`
	UnusedTiles    []string     `json:"unusedTiles"`
	ModeUsed       Mode         `json:"modeUsed"`
}

// BuildReport describes res as a solve of inv. When a partition exists the
// only unused tiles can be leftover jokers; otherwise every tile is unused.
func BuildReport(inv tile.Inventory, res Result, mode Mode) Report {
	rep := Report{
		Found:     res.Found,
		Melds:     make([]ReportMeld, 0, len(res.Melds)),
		TileCount: inv.Size(),
		ModeUsed:  mode,
	}
	if !res.Found {
		rep.UnusedTiles = inv.IDs()
		return rep
	}

	for _, m := range res.Melds {
		rep.Melds = append(rep.Melds, ReportMeld{Type: m.Kind(), Tiles: m.IDs(), Sum: m.Sum()})
		rep.UsedTilesCount += m.Len()
		rep.JokersUsed += m.JokerCount()
	}

	rep.UnusedTiles = make([]string, 0, inv.Jokers()-rep.JokersUsed)
	for i := rep.JokersUsed; i < inv.Jokers(); i++ {
		rep.UnusedTiles = append(rep.UnusedTiles, "JOKER")
	}
	return rep
}
