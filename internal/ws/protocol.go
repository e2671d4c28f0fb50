package ws

import (
	"encoding/json"
	"errors"

	"diamond-duel/internal/game"
	"diamond-duel/internal/session"
)

// Client-to-server frames. The playerId is taken from the connection's
// query parameter, never from the frame body. An action's kind rides inside
// its data object alongside the kind-specific payload.

type ActionMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type ChatSend struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func mapError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, session.ErrSlotTaken):
		return "slot_taken"
	case errors.Is(err, session.ErrUnknownPlayer):
		return "unknown_player"
	case errors.Is(err, session.ErrNotActive):
		return "session_not_active"
	case errors.Is(err, session.ErrCompleted):
		return "session_completed"
	case errors.Is(err, session.ErrClosed), errors.Is(err, session.ErrUninitialized):
		return "session_unavailable"
	case errors.Is(err, game.ErrInvalidResult):
		return "invalid_result"
	case errors.Is(err, game.ErrIllegalAction):
		return "illegal_action"
	}
	return "internal_error"
}
