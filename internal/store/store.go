// Package store is the durable persistence layer: one record per session
// keyed by session ID, plus one pending cleanup wake per session. Writes are
// read-your-writes from the owning coordinator instance.
package store

import (
	"context"
	"errors"
	"time"

	"diamond-duel/internal/game"
)

var ErrNotFound = errors.New("not found")

type Store interface {
	GetSession(ctx context.Context, id string) (*game.GameSession, error)
	PutSession(ctx context.Context, sess *game.GameSession) error
	DeleteSession(ctx context.Context, id string) error

	// ScheduleWake arms a one-shot wake for the session; scheduling again
	// replaces the previous timestamp.
	ScheduleWake(ctx context.Context, id string, at time.Time) error
	CancelWake(ctx context.Context, id string) error
	// DueWakes returns and disarms every wake at or before now.
	DueWakes(ctx context.Context, now time.Time) ([]string, error)

	Ping(ctx context.Context) error
	Close()
}
