package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show journal statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), cfg.DBPath)
	if err != nil {
		exitErr("stats", err)
	}

	if formatFlag == "json" {
		printJSON(stats)
		return
	}
	fmt.Printf("%s (%d bytes): %d sessions in %d runs\n", stats.DBPath, stats.DBSizeBytes, stats.Sessions, stats.Runs)
	for _, m := range stats.Modes {
		fmt.Printf("  %-10s %4d sessions  draws avg %.1f (min %d, max %d)  tiles avg %.1f  %.0fms avg\n",
			m.Mode, m.Sessions, m.AvgDraws, m.MinDraws, m.MaxDraws, m.AvgTileCount, m.AvgDurationMS)
	}
}
