package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/icheered/RummikubBot/internal/solver"
	"github.com/icheered/RummikubBot/internal/store"
)

var historyLimit int

func init() {
	cmd := &cobra.Command{
		Use:   "history [session-id]",
		Short: "List journaled sessions, or show one with its steps",
		Args:  cobra.MaximumNArgs(1),
		Run:   runHistory,
	}
	cmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "Max sessions to list (0 for all)")

	RootCmd.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if len(args) == 1 {
		rec, err := s.GetSession(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			exitErr("history", fmt.Errorf("%s: %w", args[0], err))
		}
		if err != nil {
			exitErr("history", err)
		}
		if formatFlag == "json" {
			printJSON(rec)
			return
		}
		printRecord(*rec)
		for _, st := range rec.Steps {
			drawn := st.Drawn
			if drawn == "" {
				drawn = "-"
			}
			fmt.Printf("  %3d  drew %-5s  %3d tiles  found=%v\n", st.Seq, drawn, st.TileCount, st.Found)
		}
		for _, m := range rec.Melds {
			fmt.Printf("  %-5s %s\n", m.Type, strings.Join(m.Tiles, " "))
		}
		return
	}

	// An explicit --mode filters the listing; the config default does not.
	var mode solver.Mode
	if modeFlag != "" {
		mode = solver.Mode(cfg.Mode)
	}
	recs, err := s.ListSessions(cmd.Context(), store.ListParams{Mode: mode, Limit: historyLimit})
	if err != nil {
		exitErr("history", err)
	}
	if formatFlag == "json" {
		printJSON(recs)
		return
	}
	if len(recs) == 0 {
		fmt.Println("no sessions recorded")
		return
	}
	for _, r := range recs {
		printRecord(r)
	}
}

func printRecord(r store.SessionRecord) {
	fmt.Printf("%s  %s  %-10s seed=%-20d draws=%-3d tiles=%-3d %dms\n",
		r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Mode, r.Seed, r.Draws, r.TileCount, r.DurationMS)
}
