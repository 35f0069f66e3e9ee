package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/icheered/RummikubBot/internal/draw"
	"github.com/icheered/RummikubBot/internal/session"
	"github.com/icheered/RummikubBot/internal/solver"
	"github.com/icheered/RummikubBot/internal/tile"
)

const (
	readTimeout  = 120 * time.Second
	writeTimeout = 10 * time.Second
	pingEvery    = 30 * time.Second
	sendBuffer   = 64
)

type Conn struct {
	srv  *Server
	ws   *websocket.Conn
	send chan []byte

	ctx    context.Context
	cancel context.CancelFunc
	// work tracks SOLVE and SIMULATE goroutines.
	work sync.WaitGroup
}

func newConn(srv *Server, ws *websocket.Conn) *Conn {
	ctx, cancel := context.WithCancel(context.Background())
	return &Conn{
		srv:    srv,
		ws:     ws,
		send:   make(chan []byte, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *Conn) readPump() {
	defer func() {
		c.cancel()
		c.work.Wait()
		_ = c.ws.Close()
	}()

	_ = c.ws.SetReadDeadline(time.Now().Add(readTimeout))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Msg("WS read error")
			}
			return
		}

		var in InMsg
		if err := json.Unmarshal(data, &in); err != nil {
			c.sendErr("", ErrBadJSON, "invalid json")
			continue
		}

		switch in.T {
		case MsgPing:
			c.sendMsg(OutMsg{T: MsgPong, ReqID: in.ReqID})

		case MsgSolve:
			var p SolvePayload
			if err := json.Unmarshal(in.P, &p); err != nil || len(p.Hand) == 0 {
				c.sendErr(in.ReqID, ErrBadRequest, "hand required")
				continue
			}
			c.solve(in.ReqID, p)

		case MsgSimulate:
			var p SimulatePayload
			if len(in.P) > 0 {
				if err := json.Unmarshal(in.P, &p); err != nil {
					c.sendErr(in.ReqID, ErrBadRequest, "invalid simulate payload")
					continue
				}
			}
			c.simulate(in.ReqID, p)

		default:
			c.sendErr(in.ReqID, ErrUnknownType, "unknown message type: "+in.T)
		}
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingEvery)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

// solve validates the request on the read loop, then searches in the
// background so a long solve neither blocks the connection nor outlives it.
func (c *Conn) solve(reqID string, p SolvePayload) {
	s, err := c.srv.solverFor(p.Mode)
	if err != nil {
		c.sendErr(reqID, ErrBadMode, err.Error())
		return
	}
	if limit := c.srv.maxHand(); len(p.Hand) > limit {
		c.sendErr(reqID, ErrBadRequest, fmt.Sprintf("hand has %d tiles, the full set has %d", len(p.Hand), limit))
		return
	}
	hand, err := tile.FromIDs(p.Hand)
	if err != nil {
		c.sendErr(reqID, ErrBadTile, err.Error())
		return
	}

	hh := handHash(hand.IDs())
	cacheKey := hh + ":" + string(s.Mode())
	if rep, ok := c.srv.cached(cacheKey); ok {
		c.sendMsg(OutMsg{T: MsgSolved, ReqID: reqID, P: SolvedPayload{HandHash: hh, Cached: true, Result: rep}})
		return
	}

	c.work.Add(1)
	go func() {
		defer c.work.Done()
		res, err := s.SolveContext(c.ctx, hand)
		if err != nil {
			return
		}
		rep := solver.BuildReport(hand, res, s.Mode())
		c.srv.remember(cacheKey, rep)
		c.sendWait(OutMsg{T: MsgSolved, ReqID: reqID, P: SolvedPayload{HandHash: hh, Cached: false, Result: rep}})
	}()
}

// simulate runs one session in the background and streams its events.
// Events are never dropped; the session stops if the connection closes.
func (c *Conn) simulate(reqID string, p SimulatePayload) {
	s, err := c.srv.solverFor(p.Mode)
	if err != nil {
		c.sendErr(reqID, ErrBadMode, err.Error())
		return
	}
	cfg := c.srv.opts.Session
	if p.InitialHand != 0 {
		if p.InitialHand < 1 || p.InitialHand > cfg.Copies*tile.MaxNumber*tile.NumColors+cfg.Jokers {
			c.sendErr(reqID, ErrBadRequest, "initialHand out of range")
			return
		}
		cfg.InitialHand = p.InitialHand
	}
	runner := session.NewRunner(s, cfg)

	seed := c.srv.nextSeed(p.Seed)

	c.work.Add(1)
	go func() {
		defer c.work.Done()

		emit := func(e session.Event) {
			c.sendWait(OutMsg{T: MsgSessionEvent, ReqID: reqID, P: e})
		}
		out, err := runner.Run(c.ctx, seed, emit)
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			msg := err.Error()
			if errors.Is(err, draw.ErrSupplyEmpty) {
				msg = fmt.Sprintf("supply ran out: %v", err)
			}
			c.sendErr(reqID, ErrSimFailed, msg)
			return
		}

		if st := c.srv.opts.Store; st != nil {
			if err := st.SaveOutcome(context.Background(), c.srv.runID, out); err != nil {
				log.Error().Err(err).Str("session", out.ID).Msg("failed to journal session")
			}
		}
		c.sendWait(OutMsg{T: MsgSessionDone, ReqID: reqID, P: SessionDonePayload{
			SessionID: out.ID,
			Seed:      out.Seed,
			Draws:     out.Draws,
			Result:    out.Report(),
		}})
	}()
}

// sendMsg drops the message if the client is not keeping up.
func (c *Conn) sendMsg(out OutMsg) {
	b, _ := json.Marshal(out)
	select {
	case c.send <- b:
	default:
	}
}

// sendWait blocks until the message is queued or the connection is gone.
func (c *Conn) sendWait(out OutMsg) {
	b, _ := json.Marshal(out)
	select {
	case c.send <- b:
	case <-c.ctx.Done():
	}
}

func (c *Conn) sendErr(reqID, code, msg string) {
	c.sendMsg(OutMsg{T: MsgError, ReqID: reqID, P: ErrPayload{Code: code, Msg: msg}})
}
