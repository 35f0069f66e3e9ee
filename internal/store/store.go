// Package store journals finished sessions to SQLite.
package store

import (
	"context"
	"time"

	"github.com/icheered/RummikubBot/internal/session"
	"github.com/icheered/RummikubBot/internal/solver"
)

// SessionRecord is one journaled session.
type SessionRecord struct {
	ID         string              `json:"id"`
	RunID      string              `json:"run_id"`
	StartedAt  time.Time           `json:"started_at"`
	Seed       int64               `json:"seed"`
	Mode       solver.Mode         `json:"mode"`
	Draws      int                 `json:"draws"`
	TileCount  int                 `json:"tile_count"`
	Found      bool                `json:"found"`
	Melds      []solver.ReportMeld `json:"melds,omitempty"`
	DurationMS int64               `json:"duration_ms"`
	Steps      []session.Step      `json:"steps,omitempty"`
}

// ListParams filters ListSessions.
type ListParams struct {
	Mode  solver.Mode
	Limit int
}

// Store defines the session journal.
type Store interface {
	// SaveOutcome writes a finished session and its steps under runID.
	SaveOutcome(ctx context.Context, runID string, o *session.Outcome) error

	// ListSessions returns sessions newest first, without steps.
	ListSessions(ctx context.Context, p ListParams) ([]SessionRecord, error)

	// GetSession returns one session with its steps.
	GetSession(ctx context.Context, id string) (*SessionRecord, error)

	// Stats aggregates over every journaled session.
	Stats(ctx context.Context, dbPath string) (*Stats, error)

	// NewRunID returns a fresh id that groups the sessions of one run.
	NewRunID() string

	Close() error
}
