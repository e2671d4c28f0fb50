package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"diamond-duel/internal/game"
	"diamond-duel/internal/session"
	"diamond-duel/internal/store"
)

func newWSServer(t *testing.T) (*httptest.Server, *session.Coordinator) {
	t.Helper()
	coord := session.NewCoordinator(store.NewMemory(), nil, session.Options{
		ReconnectGrace:   30 * time.Millisecond,
		CleanupDelay:     40 * time.Millisecond,
		ChatHistoryLimit: 50,
	})
	srv := NewServer(coord, nil, true)
	r := chi.NewRouter()
	r.Get("/api/sessions/{session_id}/ws", srv.HandleWS)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, coord
}

func dial(t *testing.T, ts *httptest.Server, sessionID, playerID string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/sessions/" + sessionID + "/ws"
	if playerID != "" {
		u += "?playerId=" + playerID
	}
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

// readUntil discards frames until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, frameType string) map[string]any {
	t.Helper()
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %q frame: %v", frameType, err)
		}
		var frame map[string]any
		if err := json.Unmarshal(msg, &frame); err != nil {
			t.Fatalf("bad frame %q: %v", msg, err)
		}
		if frame["type"] == frameType {
			return frame
		}
	}
}

func TestMissingPlayerIDClosesPolicyViolation(t *testing.T) {
	ts, _ := newWSServer(t)
	conn := dial(t, ts, "some-session", "")

	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("read err = %v, want close 1008", err)
	}
}

func TestConnectReplaysStateSync(t *testing.T) {
	ts, coord := newWSServer(t)
	sess, err := coord.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	conn := dial(t, ts, sess.ID(), "p1")
	frame := readUntil(t, conn, session.FrameStateSync)
	data, ok := frame["data"].(map[string]any)
	if !ok {
		t.Fatalf("state_sync data = %T", frame["data"])
	}
	if data["id"] != sess.ID() {
		t.Fatalf("state_sync id = %v, want %s", data["id"], sess.ID())
	}
	if data["status"] != string(game.StatusWaiting) {
		t.Fatalf("status = %v, want waiting", data["status"])
	}
}

func TestPingGetsPong(t *testing.T) {
	ts, coord := newWSServer(t)
	sess, err := coord.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	conn := dial(t, ts, sess.ID(), "p1")
	readUntil(t, conn, session.FrameStateSync)
	if err := conn.WriteJSON(map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	frame := readUntil(t, conn, session.FramePong)
	if frame["timestamp"] == nil {
		t.Fatal("pong missing timestamp")
	}
}

func TestSwingActionBroadcastsStateUpdate(t *testing.T) {
	ts, coord := newWSServer(t)
	ctx := context.Background()
	sess, err := coord.CreateSession(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := sess.Join(ctx, session.JoinParams{PlayerID: "p-home", Side: game.SideHome}); err != nil {
		t.Fatalf("join home: %v", err)
	}
	if _, err := sess.Join(ctx, session.JoinParams{PlayerID: "p-away", Side: game.SideAway}); err != nil {
		t.Fatalf("join away: %v", err)
	}

	conn := dial(t, ts, sess.ID(), "p-away")
	readUntil(t, conn, session.FrameStateSync)

	swing := map[string]any{
		"type": "action",
		"data": map[string]any{"type": "swing", "outcome": "strike"},
	}
	if err := conn.WriteJSON(swing); err != nil {
		t.Fatalf("write action: %v", err)
	}
	frame := readUntil(t, conn, session.FrameStateUpdate)
	data := frame["data"].(map[string]any)
	if data["strikes"] != float64(1) {
		t.Fatalf("strikes = %v, want 1", data["strikes"])
	}
	if _, ok := data["winProbHome"]; !ok {
		t.Fatal("state_update missing winProbHome")
	}
}

func TestIllegalActionReturnsErrorFrame(t *testing.T) {
	ts, coord := newWSServer(t)
	ctx := context.Background()
	sess, err := coord.CreateSession(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := sess.Join(ctx, session.JoinParams{PlayerID: "p-home", Side: game.SideHome}); err != nil {
		t.Fatalf("join home: %v", err)
	}
	if _, err := sess.Join(ctx, session.JoinParams{PlayerID: "p-away", Side: game.SideAway}); err != nil {
		t.Fatalf("join away: %v", err)
	}

	// Home fields in the top half, so a home swing is out of turn.
	conn := dial(t, ts, sess.ID(), "p-home")
	readUntil(t, conn, session.FrameStateSync)
	swing := map[string]any{
		"type": "action",
		"data": map[string]any{"type": "swing", "outcome": "strike"},
	}
	if err := conn.WriteJSON(swing); err != nil {
		t.Fatalf("write action: %v", err)
	}
	frame := readUntil(t, conn, session.FrameError)
	if frame["message"] != "illegal_action" {
		t.Fatalf("error code = %v, want illegal_action", frame["message"])
	}
}

func TestChatFrameBroadcastToBothPlayers(t *testing.T) {
	ts, coord := newWSServer(t)
	ctx := context.Background()
	sess, err := coord.CreateSession(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := sess.Join(ctx, session.JoinParams{PlayerID: "p-home", Side: game.SideHome}); err != nil {
		t.Fatalf("join home: %v", err)
	}
	if _, err := sess.Join(ctx, session.JoinParams{PlayerID: "p-away", Side: game.SideAway}); err != nil {
		t.Fatalf("join away: %v", err)
	}

	homeConn := dial(t, ts, sess.ID(), "p-home")
	awayConn := dial(t, ts, sess.ID(), "p-away")
	readUntil(t, homeConn, session.FrameStateSync)
	readUntil(t, awayConn, session.FrameStateSync)

	if err := awayConn.WriteJSON(map[string]string{"type": "chat", "text": "nice curveball"}); err != nil {
		t.Fatalf("write chat: %v", err)
	}
	frame := readUntil(t, homeConn, session.FrameChat)
	if frame["message"] != "nice curveball" || frame["playerId"] != "p-away" {
		t.Fatalf("chat frame = %v", frame)
	}
}
