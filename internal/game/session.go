package game

import (
	"encoding/json"
	"time"
)

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// PlayerInfo identifies one occupant of a session slot. Team is the opaque
// roster blob supplied by the joining caller; the server never inspects it.
type PlayerInfo struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Team json.RawMessage `json:"team,omitempty"`
}

type Players struct {
	Home *PlayerInfo `json:"home,omitempty"`
	Away *PlayerInfo `json:"away,omitempty"`
}

type ChatMessage struct {
	ID        string `json:"id"`
	PlayerID  string `json:"playerId"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// GameSession is the durable record for one match. Live connections are
// tracked separately and never serialized.
type GameSession struct {
	ID           string        `json:"id"`
	Players      Players       `json:"players"`
	State        GameState     `json:"gameState"`
	Status       Status        `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	LastActivity time.Time     `json:"lastActivity"`
	Chat         []ChatMessage `json:"chat,omitempty"`
	Winner       Side          `json:"winner,omitempty"`
	EndReason    string        `json:"endReason,omitempty"`
}

func NewGameSession(id string, now time.Time) *GameSession {
	return &GameSession{
		ID:           id,
		State:        NewGameState(),
		Status:       StatusWaiting,
		CreatedAt:    now,
		LastActivity: now,
	}
}

func (s *GameSession) Player(side Side) *PlayerInfo {
	if side == SideHome {
		return s.Players.Home
	}
	return s.Players.Away
}

func (s *GameSession) SetPlayer(side Side, p *PlayerInfo) {
	if side == SideHome {
		s.Players.Home = p
	} else {
		s.Players.Away = p
	}
}

// PlayerSide resolves which slot a player occupies.
func (s *GameSession) PlayerSide(playerID string) (Side, bool) {
	if s.Players.Home != nil && s.Players.Home.ID == playerID {
		return SideHome, true
	}
	if s.Players.Away != nil && s.Players.Away.ID == playerID {
		return SideAway, true
	}
	return "", false
}

func (s *GameSession) BothSlotsFilled() bool {
	return s.Players.Home != nil && s.Players.Away != nil
}

// Clone returns a deep copy suitable for handing outside the owning
// goroutine.
func (s *GameSession) Clone() *GameSession {
	raw, err := json.Marshal(s)
	if err != nil {
		// GameSession contains nothing unmarshalable.
		panic(err)
	}
	out := new(GameSession)
	if err := json.Unmarshal(raw, out); err != nil {
		panic(err)
	}
	return out
}

// SyncLineup keeps the derived batter/pitcher bookkeeping aligned with the
// half-inning: the batting side's player is at the plate.
func (s *GameSession) SyncLineup() {
	batter := s.Player(s.State.BattingSide())
	pitcher := s.Player(s.State.FieldingSide())
	if batter != nil {
		s.State.CurrentBatter = batter.ID
	}
	if pitcher != nil {
		s.State.CurrentPitcher = pitcher.ID
	}
}
