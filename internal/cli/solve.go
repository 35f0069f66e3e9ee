package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/icheered/RummikubBot/internal/render"
	"github.com/icheered/RummikubBot/internal/solver"
	"github.com/icheered/RummikubBot/internal/tile"
)

func init() {
	cmd := &cobra.Command{
		Use:   "solve <tile>...",
		Short: "Partition a given hand into melds",
		Long:  "Tiles are color letter plus two-digit number (R07, B13, Y01, K10), optionally with a copy suffix (R07-2), or JOKER.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSolve,
	}

	RootCmd.AddCommand(cmd)
}

func runSolve(cmd *cobra.Command, args []string) {
	hand, err := tile.FromIDs(args)
	if err != nil {
		exitErr("parse hand", err)
	}

	s := newSolver()
	res := s.Solve(hand)

	if formatFlag == "json" {
		printJSON(solver.BuildReport(hand, res, s.Mode()))
		return
	}
	render.Grid(os.Stdout, hand)
	fmt.Println()
	render.Result(os.Stdout, res)
}
