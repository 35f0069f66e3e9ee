package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/icheered/RummikubBot/internal/session"
	"github.com/icheered/RummikubBot/internal/solver"
)

var ErrNotFound = errors.New("session not found")

// timeLayout is fixed-width so started_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) NewRunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id          TEXT PRIMARY KEY,
		run_id      TEXT NOT NULL,
		started_at  TEXT NOT NULL,
		seed        INTEGER NOT NULL,
		mode        TEXT NOT NULL,
		draws       INTEGER NOT NULL,
		tile_count  INTEGER NOT NULL,
		found       INTEGER NOT NULL,
		melds       TEXT,
		duration_ms INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at DESC);
	CREATE INDEX IF NOT EXISTS idx_sessions_run ON sessions(run_id);

	CREATE TABLE IF NOT EXISTS steps (
		session_id  TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		seq         INTEGER NOT NULL,
		drawn       TEXT,
		tile_count  INTEGER NOT NULL,
		found       INTEGER NOT NULL,
		PRIMARY KEY (session_id, seq)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) SaveOutcome(ctx context.Context, runID string, o *session.Outcome) error {
	rep := o.Report()
	melds, err := json.Marshal(rep.Melds)
	if err != nil {
		return fmt.Errorf("marshal melds: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, run_id, started_at, seed, mode, draws, tile_count, found, melds, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, runID, o.StartedAt.UTC().Format(timeLayout), o.Seed, string(o.Mode),
		o.Draws, rep.TileCount, rep.Found, string(melds), o.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO steps (session_id, seq, drawn, tile_count, found) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare steps: %w", err)
	}
	defer stmt.Close()
	for _, st := range o.Steps {
		if _, err := stmt.ExecContext(ctx, o.ID, st.Seq, st.Drawn, st.TileCount, st.Found); err != nil {
			return fmt.Errorf("insert step %d: %w", st.Seq, err)
		}
	}

	return tx.Commit()
}

const sessionColumns = `id, run_id, started_at, seed, mode, draws, tile_count, found, melds, duration_ms`

func (s *SQLiteStore) ListSessions(ctx context.Context, p ListParams) ([]SessionRecord, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions`
	var args []any
	if p.Mode != "" {
		query += ` WHERE mode = ?`
		args = append(args, string(p.Mode))
	}
	query += ` ORDER BY started_at DESC`
	if p.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, p.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*SessionRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	rec, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, drawn, tile_count, found FROM steps WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var st session.Step
		var drawn sql.NullString
		if err := rows.Scan(&st.Seq, &drawn, &st.TileCount, &st.Found); err != nil {
			return nil, err
		}
		st.Drawn = drawn.String
		rec.Steps = append(rec.Steps, st)
	}
	return rec, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(sc scanner) (*SessionRecord, error) {
	var (
		rec       SessionRecord
		startedAt string
		mode      string
		melds     sql.NullString
	)
	err := sc.Scan(&rec.ID, &rec.RunID, &startedAt, &rec.Seed, &mode,
		&rec.Draws, &rec.TileCount, &rec.Found, &melds, &rec.DurationMS)
	if err != nil {
		return nil, err
	}
	rec.Mode = solver.Mode(mode)
	if rec.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return nil, fmt.Errorf("decode started_at of %s: %w", rec.ID, err)
	}
	if melds.Valid && melds.String != "" {
		if err := json.Unmarshal([]byte(melds.String), &rec.Melds); err != nil {
			return nil, fmt.Errorf("decode melds of %s: %w", rec.ID, err)
		}
	}
	return &rec, nil
}
