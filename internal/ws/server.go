// Package ws bridges WebSocket connections onto session actors. Each
// connection gets a Client with a buffered outbound channel; the session
// actor writes frames through the session.Conn interface and never blocks on
// a slow peer.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"diamond-duel/internal/game"
	"diamond-duel/internal/observability"
	"diamond-duel/internal/session"
)

const sendBuffer = 32

type Server struct {
	coord    *session.Coordinator
	metrics  *observability.Metrics
	upgrader websocket.Upgrader
}

func NewServer(coord *session.Coordinator, metrics *observability.Metrics, allowAnyOrigin bool) *Server {
	s := &Server{coord: coord, metrics: metrics}
	if allowAnyOrigin {
		s.upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}
	return s
}

type Client struct {
	conn     *websocket.Conn
	send     chan []byte
	playerID string
	sess     *session.Session
	metrics  *observability.Metrics
}

// Send implements session.Conn. A full buffer drops the frame instead of
// stalling the session actor.
func (c *Client) Send(frame any) {
	msg, err := json.Marshal(frame)
	if err != nil {
		return
	}
	c.metrics.WSMessage("out", session.FrameType(frame))
	safeSend(c.send, msg)
}

// Close implements session.Conn. Safe to call more than once.
func (c *Client) Close() error {
	safeClose(c.send)
	return c.conn.Close()
}

func (c *Client) sendError(code string) {
	c.Send(session.ErrorFrame{Type: session.FrameError, Message: code})
}

func safeSend(ch chan []byte, msg []byte) {
	defer func() {
		_ = recover()
	}()
	select {
	case ch <- msg:
	default:
	}
}

func safeClose(ch chan []byte) {
	defer func() {
		_ = recover()
	}()
	close(ch)
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	playerID := r.URL.Query().Get("playerId")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	if playerID == "" {
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "playerId required")
		_ = conn.WriteMessage(websocket.CloseMessage, msg)
		_ = conn.Close()
		return
	}

	client := &Client{
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		playerID: playerID,
		sess:     s.coord.GetOrCreate(sessionID),
		metrics:  s.metrics,
	}
	go client.writeLoop()

	if err := client.sess.Connect(r.Context(), playerID, client); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("ws attach failed")
		client.sendError(mapError(err))
		_ = client.Close()
		return
	}
	s.metrics.WSOpened()
	log.Info().Str("session_id", sessionID).Str("player_id", playerID).Msg("ws connected")

	client.readLoop()
	s.metrics.WSClosed()
}

func (c *Client) writeLoop() {
	for msg := range c.send {
		_ = c.conn.WriteMessage(websocket.TextMessage, msg)
	}
	_ = c.conn.Close()
}

func (c *Client) readLoop() {
	defer func() {
		c.sess.Disconnect(c.playerID, c)
		_ = c.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &base); err != nil {
			c.sendError("malformed_frame")
			continue
		}
		c.metrics.WSMessage("in", base.Type)
		switch base.Type {
		case "ping":
			c.Send(session.PongFrame{Type: session.FramePong, Timestamp: time.Now().UnixMilli()})
		case "chat":
			var chat ChatSend
			if err := json.Unmarshal(msg, &chat); err != nil {
				c.sendError("malformed_frame")
				continue
			}
			c.submit(session.Action{
				Type:     game.ActionChat,
				PlayerID: c.playerID,
				Data:     mustJSON(map[string]string{"message": chat.Text}),
			})
		case "action":
			var action ActionMessage
			if err := json.Unmarshal(msg, &action); err != nil {
				c.sendError("malformed_frame")
				continue
			}
			var kind struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(action.Data, &kind); err != nil {
				c.sendError("malformed_frame")
				continue
			}
			c.submit(session.Action{
				Type:     game.ActionType(kind.Type),
				PlayerID: c.playerID,
				Data:     action.Data,
			})
		default:
			c.sendError("unknown_frame_type")
		}
	}
}

func (c *Client) submit(a session.Action) {
	if err := c.sess.SubmitAction(context.Background(), a); err != nil {
		c.sendError(mapError(err))
	}
}

func mustJSON(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}
