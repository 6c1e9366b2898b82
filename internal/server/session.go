package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/buckshot/internal/env"
	"github.com/lox/buckshot/internal/game"
	"github.com/lox/buckshot/internal/gameid"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096
)

// ErrSessionClosed is returned when sending on a closed session.
var ErrSessionClosed = errors.New("session closed")

// Session is one client connection driving its own environment.
type Session struct {
	id     string
	conn   *websocket.Conn
	server *Server
	env    *env.Env
	send   chan *Message
	logger *log.Logger
	ctx    context.Context
	cancel context.CancelFunc

	idle      *quartz.Timer
	closeOnce sync.Once
}

func newSession(s *Server, conn *websocket.Conn, id string) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	logger := s.logger.With("session", id)

	opts := append([]env.Option{
		env.WithLogger(logger),
		env.WithIDs(s.ids),
	}, s.cfg.EnvOptions...)

	sess := &Session{
		id:     id,
		conn:   conn,
		server: s,
		env:    env.New(opts...),
		send:   make(chan *Message, 16),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
	sess.idle = s.clock.AfterFunc(s.cfg.IdleTimeout, func() {
		sess.logger.Info("Closing idle session", "timeout", s.cfg.IdleTimeout)
		// the pumps notice and finish the close
		sess.cancel()
	}, "idle")
	return sess
}

// ID returns the session identifier.
func (c *Session) ID() string { return c.id }

// Start begins handling the connection.
func (c *Session) Start() {
	go c.writePump()
	go c.readPump()
}

// Close ends the session. It is safe to call more than once.
func (c *Session) Close() error {
	c.closeOnce.Do(func() {
		c.idle.Stop()
		c.cancel()
		c.server.remove(c)
	})
	return nil
}

// SendMessage queues msg for the writer.
func (c *Session) SendMessage(msg *Message) error {
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrSessionClosed
	}
}

func (c *Session) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("WebSocket error", "error", err)
			}
			return
		}
		if c.ctx.Err() != nil {
			return
		}
		c.idle.Reset(c.server.cfg.IdleTimeout, "idle")

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendError("", "invalid_message", "Malformed JSON")
			continue
		}
		if err := c.server.validator.Validate(raw); err != nil {
			c.logger.Debug("Rejected message", "type", msg.Type, "error", err)
			c.sendError(msg.RequestID, "invalid_message", err.Error())
			continue
		}
		c.handleMessage(&msg)
	}
}

func (c *Session) writePump() {
	ticker := c.server.clock.NewTicker(pingPeriod, "ping")
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Warn("Failed to write message", "error", err)
				_ = c.Close()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

func (c *Session) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypeReset:
		var data ResetData
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				c.sendError(msg.RequestID, "invalid_message", "Failed to parse reset data")
				return
			}
		}
		c.handleReset(msg.RequestID, data)

	case MessageTypeStep:
		var data StepData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg.RequestID, "invalid_message", "Failed to parse step data")
			return
		}
		c.handleStep(msg.RequestID, data)

	case MessageTypeObserve:
		if !c.env.Started() {
			c.sendError(msg.RequestID, "not_reset", env.ErrNotReset.Error())
			return
		}
		c.reply(msg.RequestID, MessageTypeObservation, observationData(c.env.Observe(), c.env.Episode()))

	case MessageTypeEpisode:
		var data EpisodeRequestData
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				c.sendError(msg.RequestID, "invalid_message", "Failed to parse episode data")
				return
			}
		}
		c.handleEpisode(msg.RequestID, data)

	default:
		c.sendError(msg.RequestID, "unknown_message", fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

func (c *Session) handleEpisode(requestID string, data EpisodeRequestData) {
	ep := c.env.Episode()
	if data.GameID != "" {
		if err := gameid.Validate(data.GameID); err != nil {
			c.sendError(requestID, "invalid_message", err.Error())
			return
		}
		if data.GameID != ep.GameID {
			c.sendError(requestID, "unknown_game", fmt.Sprintf("Game %s is not the session's current game", data.GameID))
			return
		}
	}
	c.reply(requestID, MessageTypeEpisodeData, &ep)
}

func (c *Session) handleReset(requestID string, data ResetData) {
	seed := c.server.nextSeed()
	if data.Seed != nil {
		seed = *data.Seed
	}
	obs := c.env.Reset(seed)
	c.server.gamesStarted.Add(1)
	c.logger.Info("Game reset", "game", c.env.Episode().GameID, "seed", seed)
	c.reply(requestID, MessageTypeObservation, observationData(obs, c.env.Episode()))
}

func (c *Session) handleStep(requestID string, data StepData) {
	var action game.Action
	switch {
	case data.Index != nil:
		if *data.Index < 0 || *data.Index >= game.NumActions {
			c.sendError(requestID, "invalid_action", fmt.Sprintf("action index %d out of range", *data.Index))
			return
		}
		action = game.Action(*data.Index)
	default:
		a, err := game.ParseAction(data.Action)
		if err != nil {
			c.sendError(requestID, "invalid_action", err.Error())
			return
		}
		action = a
	}

	obs, reward, done, res, err := c.env.Step(action)
	if err != nil {
		switch {
		case errors.Is(err, env.ErrNotReset):
			c.sendError(requestID, "not_reset", err.Error())
		case errors.Is(err, game.ErrGameOver):
			c.sendError(requestID, "game_over", err.Error())
		default:
			c.logger.Error("Step failed", "action", action, "error", err)
			c.sendError(requestID, "step_failed", err.Error())
		}
		return
	}

	out := StepResultData{
		Observation: observationData(obs, c.env.Episode()),
		Reward:      reward,
		Done:        done,
		Result:      resultData(res),
	}
	if done {
		ep := c.env.Episode()
		out.Episode = &ep
		c.server.gamesFinished.Add(1)
		c.logger.Info("Game finished", "game", ep.GameID, "winner", ep.Winner, "reward", ep.Reward)
	}
	c.reply(requestID, MessageTypeStepResult, out)
}

func (c *Session) reply(requestID string, t MessageType, data any) {
	msg, err := NewMessage(t, data, c.server.clock.Now())
	if err != nil {
		c.logger.Error("Failed to encode message", "type", t, "error", err)
		return
	}
	msg.RequestID = requestID
	_ = c.SendMessage(msg)
}

func (c *Session) sendError(requestID, code, message string) {
	c.reply(requestID, MessageTypeError, ErrorData{Code: code, Message: message})
}
