package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/icheered/RummikubBot/internal/session"
	"github.com/icheered/RummikubBot/internal/solver"
	"github.com/icheered/RummikubBot/internal/store"
)

type reply struct {
	T     string          `json:"t"`
	ReqID string          `json:"reqId"`
	P     json.RawMessage `json:"p"`
}

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	if opts.Session.Copies == 0 {
		opts.Session = session.DefaultConfig()
	}
	ts := httptest.NewServer(New(opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func request(t *testing.T, ws *websocket.Conn, typ, reqID string, p any) {
	t.Helper()
	msg := map[string]any{"t": typ, "reqId": reqID}
	if p != nil {
		msg["p"] = p
	}
	if err := ws.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func next(t *testing.T, ws *websocket.Conn) reply {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(30 * time.Second))
	var r reply
	if err := ws.ReadJSON(&r); err != nil {
		t.Fatalf("read: %v", err)
	}
	return r
}

func errCode(t *testing.T, r reply) string {
	t.Helper()
	if r.T != MsgError {
		t.Fatalf("expected ERROR, got %s", r.T)
	}
	var p ErrPayload
	if err := json.Unmarshal(r.P, &p); err != nil {
		t.Fatal(err)
	}
	return p.Code
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "OK" {
		t.Errorf("health = %d %q", resp.StatusCode, body)
	}
}

func TestPing(t *testing.T) {
	ws := dial(t, newTestServer(t, Options{}))
	request(t, ws, MsgPing, "1", nil)
	if r := next(t, ws); r.T != MsgPong || r.ReqID != "1" {
		t.Errorf("got %+v", r)
	}
}

func TestSolveCachesByHand(t *testing.T) {
	ws := dial(t, newTestServer(t, Options{}))

	request(t, ws, MsgSolve, "a", SolvePayload{Hand: []string{"R05", "B05", "Y05", "K01", "K02", "K03"}})
	first := next(t, ws)
	if first.T != MsgSolved || first.ReqID != "a" {
		t.Fatalf("got %+v", first)
	}
	var p1 SolvedPayload
	if err := json.Unmarshal(first.P, &p1); err != nil {
		t.Fatal(err)
	}
	if p1.Cached || !p1.Result.Found || len(p1.Result.Melds) != 2 {
		t.Errorf("unexpected first answer %+v", p1)
	}
	if p1.Result.ModeUsed != solver.ModeExhaustive {
		t.Errorf("default mode = %s", p1.Result.ModeUsed)
	}

	// Same tiles, different order and copy suffixes.
	request(t, ws, MsgSolve, "b", SolvePayload{Hand: []string{"K03", "K02-2", "K01", "Y05", "B05", "R05-1"}})
	var p2 SolvedPayload
	if err := json.Unmarshal(next(t, ws).P, &p2); err != nil {
		t.Fatal(err)
	}
	if !p2.Cached || p2.HandHash != p1.HandHash {
		t.Errorf("expected a cache hit on %s, got %+v", p1.HandHash, p2)
	}

	request(t, ws, MsgSolve, "c", SolvePayload{Hand: []string{"K03", "K02", "K01", "Y05", "B05", "R05"}, Mode: "greedy"})
	var p3 SolvedPayload
	if err := json.Unmarshal(next(t, ws).P, &p3); err != nil {
		t.Fatal(err)
	}
	if p3.Cached || p3.Result.ModeUsed != solver.ModeGreedy {
		t.Errorf("mode should be part of the cache key: %+v", p3)
	}
}

func TestSolveNotFound(t *testing.T) {
	ws := dial(t, newTestServer(t, Options{}))
	request(t, ws, MsgSolve, "x", SolvePayload{Hand: []string{"R05", "B05"}})
	var p SolvedPayload
	if err := json.Unmarshal(next(t, ws).P, &p); err != nil {
		t.Fatal(err)
	}
	if p.Result.Found || len(p.Result.UnusedTiles) != 2 {
		t.Errorf("expected not found with two unused tiles, got %+v", p.Result)
	}
}

func TestErrors(t *testing.T) {
	ws := dial(t, newTestServer(t, Options{}))

	tests := []struct {
		name string
		send func()
		code string
	}{
		{"bad json", func() { ws.WriteMessage(websocket.TextMessage, []byte("{nope")) }, ErrBadJSON},
		{"unknown type", func() { request(t, ws, "DANCE", "1", nil) }, ErrUnknownType},
		{"bad tile", func() { request(t, ws, MsgSolve, "2", SolvePayload{Hand: []string{"Z99"}}) }, ErrBadTile},
		{"bad mode", func() { request(t, ws, MsgSolve, "3", SolvePayload{Hand: []string{"R01"}, Mode: "psychic"}) }, ErrBadMode},
		{"empty hand", func() { request(t, ws, MsgSolve, "4", SolvePayload{}) }, ErrBadRequest},
		{"hand bigger than the set", func() { request(t, ws, MsgSolve, "6", SolvePayload{Hand: fullSetPlusOne()}) }, ErrBadRequest},
		{"huge initial hand", func() { request(t, ws, MsgSimulate, "5", SimulatePayload{InitialHand: 500}) }, ErrBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.send()
			if got := errCode(t, next(t, ws)); got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestSimulateStreamsAndJournals(t *testing.T) {
	db, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	ws := dial(t, newTestServer(t, Options{Session: session.DefaultConfig(), Store: db}))
	request(t, ws, MsgSimulate, "sim", SimulatePayload{Seed: 99})

	var kinds []session.EventKind
	var done SessionDonePayload
	deadline := time.Now().Add(time.Minute)
	for {
		if time.Now().After(deadline) {
			t.Fatal("session did not finish in time")
		}
		r := next(t, ws)
		if r.ReqID != "sim" {
			t.Fatalf("unexpected reqId %q", r.ReqID)
		}
		if r.T == MsgSessionDone {
			if err := json.Unmarshal(r.P, &done); err != nil {
				t.Fatal(err)
			}
			break
		}
		if r.T != MsgSessionEvent {
			t.Fatalf("unexpected message %s: %s", r.T, r.P)
		}
		var e session.Event
		if err := json.Unmarshal(r.P, &e); err != nil {
			t.Fatal(err)
		}
		kinds = append(kinds, e.Kind)
	}

	if len(kinds) == 0 || kinds[0] != session.EventHandDealt || kinds[len(kinds)-1] != session.EventSessionSolved {
		t.Errorf("unexpected event order %v", kinds)
	}
	if !done.Result.Found || done.Seed != 99 {
		t.Errorf("unexpected done payload %+v", done)
	}

	rec, err := db.GetSession(context.Background(), done.SessionID)
	if err != nil {
		t.Fatalf("session not journaled: %v", err)
	}
	if rec.Draws != done.Draws {
		t.Errorf("journal draws %d, streamed %d", rec.Draws, done.Draws)
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	s := New(Options{Session: session.DefaultConfig()})
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("ListenAndServe: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

func fullSetPlusOne() []string {
	ids := make([]string, 0, 107)
	for len(ids) < 107 {
		ids = append(ids, "R01")
	}
	return ids
}

func TestMemoBoundedByDefault(t *testing.T) {
	s := New(Options{Session: session.DefaultConfig()})
	if s.opts.MemoCapacity != DefaultMemoCapacity {
		t.Errorf("memo capacity = %d, want %d", s.opts.MemoCapacity, DefaultMemoCapacity)
	}
	if s.opts.MemoCapacity <= 0 {
		t.Error("server memo must be bounded")
	}
	custom := New(Options{Session: session.DefaultConfig(), MemoCapacity: 10})
	if custom.opts.MemoCapacity != 10 {
		t.Errorf("explicit capacity overridden: %d", custom.opts.MemoCapacity)
	}
}

func TestNextSeed(t *testing.T) {
	cfg := session.DefaultConfig()
	clock := New(Options{Session: cfg})
	if got := clock.nextSeed(0); got != 0 {
		t.Errorf("no configured seed should defer to the clock, got %d", got)
	}

	cfg.Seed = 500
	s := New(Options{Session: cfg})
	if got := s.nextSeed(42); got != 42 {
		t.Errorf("requested seed ignored: %d", got)
	}
	for want := int64(500); want < 503; want++ {
		if got := s.nextSeed(0); got != want {
			t.Errorf("nextSeed = %d, want %d", got, want)
		}
	}
}

func TestSolveAfterDisconnectDoesNotBlock(t *testing.T) {
	ts := newTestServer(t, Options{})
	ws := dial(t, ts)
	request(t, ws, MsgSolve, "bye", SolvePayload{Hand: []string{"R01", "R02", "R03", "B07", "Y07", "K07", "JOKER"}})
	ws.Close()

	// The server must keep serving new connections.
	other := dial(t, ts)
	request(t, other, MsgPing, "still-up", nil)
	if r := next(t, other); r.T != MsgPong {
		t.Errorf("got %+v", r)
	}
}
