package cli

import (
	"github.com/spf13/cobra"

	"github.com/icheered/RummikubBot/internal/solver"
	"github.com/icheered/RummikubBot/server"
)

var (
	serveAddr   string
	serveRecord bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve solve requests and simulations over WebSocket",
		Run:   runServe,
	}
	cmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Listen address (default: :$PORT or :8080)")
	cmd.Flags().BoolVar(&serveRecord, "record", false, "Journal simulated sessions to the database")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	opts := server.Options{
		Mode:         solver.Mode(cfg.Mode),
		Session:      cfg.Session(),
		MemoCapacity: cfg.MemoCapacity,
	}
	if serveRecord {
		s, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer s.Close()
		opts.Store = s
	}

	if err := server.New(opts).ListenAndServe(cmd.Context(), cfg.Addr); err != nil {
		exitErr("serve", err)
	}
}
