package server

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/icheered/RummikubBot/internal/solver"
)

// Client → server message types.
const (
	MsgPing     = "PING"
	MsgSolve    = "SOLVE"
	MsgSimulate = "SIMULATE"
)

// Server → client message types.
const (
	MsgPong         = "PONG"
	MsgSolved       = "SOLVED"
	MsgSessionEvent = "SESSION_EVENT"
	MsgSessionDone  = "SESSION_DONE"
	MsgError        = "ERROR"
)

// Error codes.
const (
	ErrBadJSON     = "BAD_JSON"
	ErrBadRequest  = "BAD_REQUEST"
	ErrBadTile     = "BAD_TILE"
	ErrBadMode     = "BAD_MODE"
	ErrSimFailed   = "SIM_FAILED"
	ErrUnknownType = "UNKNOWN_TYPE"
)

type InMsg struct {
	T     string          `json:"t"`
	ReqID string          `json:"reqId,omitempty"`
	P     json.RawMessage `json:"p,omitempty"`
}

type OutMsg struct {
	T     string `json:"t"`
	ReqID string `json:"reqId,omitempty"`
	P     any    `json:"p,omitempty"`
}

type ErrPayload struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

type SolvePayload struct {
	Hand []string `json:"hand"`
	Mode string   `json:"mode,omitempty"`
}

type SolvedPayload struct {
	HandHash string        `json:"handHash"`
	Cached   bool          `json:"cached"`
	Result   solver.Report `json:"result"`
}

type SimulatePayload struct {
	Seed        int64  `json:"seed,omitempty"`
	InitialHand int    `json:"initialHand,omitempty"`
	Mode        string `json:"mode,omitempty"`
}

type SessionDonePayload struct {
	SessionID string        `json:"sessionId"`
	Seed      int64         `json:"seed"`
	Draws     int           `json:"draws"`
	Result    solver.Report `json:"result"`
}

// handHash identifies a hand regardless of tile order.
func handHash(hand []string) string {
	cp := append([]string(nil), hand...)
	sort.Strings(cp)
	h := sha1.Sum([]byte(strings.Join(cp, "|")))
	return hex.EncodeToString(h[:])
}
