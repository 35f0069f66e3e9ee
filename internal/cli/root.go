// Package cli implements the rummisim CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/icheered/RummikubBot/internal/config"
	"github.com/icheered/RummikubBot/internal/solver"
	"github.com/icheered/RummikubBot/internal/store"
)

var (
	configPath   string
	dbPath       string
	formatFlag   string
	modeFlag     string
	logLevelFlag string

	cfg config.Config
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "rummisim",
	Short: "Draw Rummikub tiles until the hand splits into melds",
	Long: "rummisim deals a hand from a Rummikub tile set, draws one tile at a time and, " +
		"after every draw, searches for a way to lay the whole hand down as groups and runs.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $RUMMISIM_CONFIG)")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $RUMMISIM_DB or ~/.rummisim/sessions.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: json or text")
	RootCmd.PersistentFlags().StringVarP(&modeFlag, "mode", "m", "", "Solve mode: exhaustive (default) or greedy (small hands only)")
	RootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: trace, debug, info, warn, error, disabled")
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if modeFlag != "" {
		cfg.Mode = modeFlag
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	if cfg, err = cfg.Normalize(); err != nil {
		return err
	}
	if formatFlag != "json" && formatFlag != "text" {
		return fmt.Errorf("invalid --format %q", formatFlag)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	return nil
}

func newSolver() *solver.Solver {
	return solver.New(cfg.SolverOptions())
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.DBPath)
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
