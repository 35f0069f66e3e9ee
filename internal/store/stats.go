package store

import (
	"context"
	"fmt"
	"os"
)

// Stats holds journal statistics.
type Stats struct {
	DBPath      string      `json:"db_path"`
	DBSizeBytes int64       `json:"db_size_bytes"`
	Sessions    int         `json:"sessions"`
	Runs        int         `json:"runs"`
	Modes       []ModeStats `json:"modes"`
}

// ModeStats holds per-mode aggregates.
type ModeStats struct {
	Mode          string  `json:"mode"`
	Sessions      int     `json:"sessions"`
	AvgDraws      float64 `json:"avg_draws"`
	MinDraws      int     `json:"min_draws"`
	MaxDraws      int     `json:"max_draws"`
	AvgTileCount  float64 `json:"avg_tile_count"`
	AvgDurationMS float64 `json:"avg_duration_ms"`
}

// Stats returns journal statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COUNT(DISTINCT run_id) FROM sessions`).
		Scan(&st.Sessions, &st.Runs)
	if err != nil {
		return st, fmt.Errorf("count sessions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT mode, COUNT(*), AVG(draws), MIN(draws), MAX(draws), AVG(tile_count), AVG(duration_ms)
		FROM sessions GROUP BY mode ORDER BY mode`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var m ModeStats
		if err := rows.Scan(&m.Mode, &m.Sessions, &m.AvgDraws, &m.MinDraws, &m.MaxDraws, &m.AvgTileCount, &m.AvgDurationMS); err != nil {
			return st, err
		}
		st.Modes = append(st.Modes, m)
	}

	return st, rows.Err()
}
