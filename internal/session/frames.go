package session

import (
	"encoding/json"

	"diamond-duel/internal/game"
)

// Server-to-client frame types.
const (
	FrameStateSync          = "state_sync"
	FrameStateUpdate        = "state_update"
	FrameGameStart          = "game_start"
	FrameInningChange       = "inning_change"
	FrameGameEnd            = "game_end"
	FramePitchThrown        = "pitch_thrown"
	FrameStealAttempt       = "steal_attempt"
	FrameSubstitution       = "substitution"
	FramePlayerDisconnected = "player_disconnected"
	FrameChat               = "chat"
	FramePong               = "pong"
	FrameError              = "error"
)

type SessionFrame struct {
	Type string            `json:"type"`
	Data *game.GameSession `json:"data"`
}

// StatePayload is the game state annotated with the live win probability
// model outputs.
type StatePayload struct {
	game.GameState
	WinProbHome float64 `json:"winProbHome"`
	Leverage    float64 `json:"leverage"`
}

type StateFrame struct {
	Type string       `json:"type"`
	Data StatePayload `json:"data"`
}

type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

type GameEndData struct {
	Winner     game.Side `json:"winner,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	FinalScore Score     `json:"finalScore"`
}

type GameEndFrame struct {
	Type string      `json:"type"`
	Data GameEndData `json:"data"`
}

// AdvisoryFrame relays non-state-affecting actions (pitch_thrown,
// steal_attempt, substitution) with their payload untouched.
type AdvisoryFrame struct {
	Type     string          `json:"type"`
	PlayerID string          `json:"playerId"`
	Data     json.RawMessage `json:"data,omitempty"`
}

type DisconnectFrame struct {
	Type      string `json:"type"`
	PlayerID  string `json:"playerId"`
	Timestamp int64  `json:"timestamp"`
}

type ChatFrame struct {
	Type      string `json:"type"`
	PlayerID  string `json:"playerId"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type PongFrame struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

type ErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// FrameType reports the wire type of any server frame.
func FrameType(frame any) string {
	switch fr := frame.(type) {
	case SessionFrame:
		return fr.Type
	case StateFrame:
		return fr.Type
	case GameEndFrame:
		return fr.Type
	case AdvisoryFrame:
		return fr.Type
	case DisconnectFrame:
		return fr.Type
	case ChatFrame:
		return fr.Type
	case PongFrame:
		return fr.Type
	case ErrorFrame:
		return fr.Type
	}
	return "unknown"
}
