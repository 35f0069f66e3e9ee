// Package config loads simulator settings from an optional JSON file and
// the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/icheered/RummikubBot/internal/session"
	"github.com/icheered/RummikubBot/internal/solver"
	"github.com/icheered/RummikubBot/internal/tile"
)

type Config struct {
	InitialHand  int    `json:"initial_hand"`
	Copies       int    `json:"copies"`
	Jokers       int    `json:"jokers"`
	Sessions     int    `json:"sessions"`
	Workers      int    `json:"workers"`
	Mode         string `json:"mode"`
	MemoCapacity int    `json:"memo_capacity"`
	Seed         int64  `json:"seed"`
	Addr         string `json:"addr"`
	DBPath       string `json:"db_path"`
	LogLevel     string `json:"log_level"`
}

func Default() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return Config{
		InitialHand: 14,
		Copies:      2,
		Jokers:      2,
		Sessions:    1,
		Workers:     runtime.NumCPU(),
		Mode:        string(solver.ModeExhaustive),
		Addr:        ":" + port,
		DBPath:      defaultDBPath(),
		LogLevel:    "info",
	}
}

func defaultDBPath() string {
	if env := os.Getenv("RUMMISIM_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".rummisim", "sessions.db")
}

// Load reads path over the defaults. An empty path falls back to
// $RUMMISIM_CONFIG; if that is empty too, the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("RUMMISIM_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}
	return cfg.Normalize()
}

// Normalize fills zero values with defaults and rejects out-of-range ones.
func (c Config) Normalize() (Config, error) {
	def := Default()
	if c.InitialHand == 0 {
		c.InitialHand = def.InitialHand
	}
	if c.Copies == 0 {
		c.Copies = def.Copies
	}
	if c.Sessions == 0 {
		c.Sessions = def.Sessions
	}
	if c.Workers == 0 {
		c.Workers = def.Workers
	}
	if c.Addr == "" {
		c.Addr = def.Addr
	}
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}

	mode, err := solver.ParseMode(c.Mode)
	if err != nil {
		return c, err
	}
	c.Mode = string(mode)

	switch {
	case c.Copies < 1 || c.Copies > tile.MaxCopies:
		return c, fmt.Errorf("copies must be 1..%d", tile.MaxCopies)
	case c.Jokers < 0 || c.Jokers > tile.MaxJokers:
		return c, fmt.Errorf("jokers must be 0..%d", tile.MaxJokers)
	case c.InitialHand < 1 || c.InitialHand > c.Copies*tile.MaxNumber*tile.NumColors+c.Jokers:
		return c, errors.New("initial_hand must be at least 1 and fit in the supply")
	case c.Sessions < 1:
		return c, errors.New("sessions must be at least 1")
	case c.Workers < 1:
		return c, errors.New("workers must be at least 1")
	case c.MemoCapacity < 0:
		return c, errors.New("memo_capacity must not be negative")
	}

	switch strings.ToLower(c.LogLevel) {
	case "trace", "debug", "info", "warn", "error", "disabled":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		return c, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return c, nil
}

func (c Config) SolverOptions() solver.Options {
	return solver.Options{Mode: solver.Mode(c.Mode), MemoCapacity: c.MemoCapacity}
}

func (c Config) Session() session.Config {
	return session.Config{
		InitialHand: c.InitialHand,
		Copies:      c.Copies,
		Jokers:      c.Jokers,
		Seed:        c.Seed,
	}
}
