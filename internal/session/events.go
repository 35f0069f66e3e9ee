package session

import "github.com/icheered/RummikubBot/internal/solver"

// EventKind identifies what happened in a session.
type EventKind string

const (
	EventHandDealt      EventKind = "hand_dealt"
	EventTileDrawn      EventKind = "tile_drawn"
	EventSolveAttempted EventKind = "solve_attempted"
	EventSessionSolved  EventKind = "session_solved"
)

// Event is emitted in order for one session. Seq counts solve attempts.
type Event struct {
	SessionID string    `json:"sessionId"`
	Kind      EventKind `json:"kind"`
	Seq       int       `json:"seq"`
	Payload   any       `json:"payload"`
}

type HandDealtPayload struct {
	Tiles []string `json:"tiles"`
}

type TileDrawnPayload struct {
	Tile      string `json:"tile"`
	Remaining int    `json:"remaining"`
}

type SolveAttemptedPayload struct {
	TileCount int           `json:"tileCount"`
	Report    solver.Report `json:"report"`
}

type SessionSolvedPayload struct {
	Draws     int           `json:"draws"`
	TileCount int           `json:"tileCount"`
	Report    solver.Report `json:"report"`
}

// Emitter receives events. Emitters passed to RunMany are called from
// several goroutines.
type Emitter func(Event)
