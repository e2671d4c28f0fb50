package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"diamond-duel/internal/observability"
	"diamond-duel/internal/store"
)

// janitorInterval is how often the coordinator polls for due cleanup wakes.
// Overridable in tests.
var janitorInterval = 500 * time.Millisecond

// Coordinator is the registry of live session actors. It spawns an actor on
// first touch of a session ID and retires it when the actor stops.
type Coordinator struct {
	store   store.Store
	metrics *observability.Metrics
	opts    Options

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewCoordinator(st store.Store, metrics *observability.Metrics, opts Options) *Coordinator {
	return &Coordinator{
		store:    st,
		metrics:  metrics,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// CreateSession mints a new session ID and spins up its actor.
func (c *Coordinator) CreateSession(ctx context.Context) (*Session, error) {
	sess := c.GetOrCreate(store.NewID())
	// Force the initial record into the store so the ID is immediately
	// joinable from another process.
	if _, err := sess.Snapshot(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}

// GetOrCreate returns the live actor for id, starting one if needed. The
// actor restores its durable record lazily on first use.
func (c *Coordinator) GetOrCreate(id string) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sess, ok := c.sessions[id]; ok {
		return sess
	}
	sess := newSession(id, c.store, c.metrics, c.opts, c.remove)
	c.sessions[id] = sess
	c.metrics.ActorUp()
	return sess
}

// Lookup returns the live actor for id without creating one.
func (c *Coordinator) Lookup(id string) (*Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sess, ok := c.sessions[id]
	return sess, ok
}

func (c *Coordinator) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sessions[id]; ok {
		delete(c.sessions, id)
		c.metrics.ActorDown()
	}
}

// StartJanitor polls the store for due cleanup wakes until ctx is done.
// Wakes for sessions with a live actor are routed through the actor so open
// connections get closed; the rest are deleted directly. This backstops the
// in-process cleanup timers across restarts.
func (c *Coordinator) StartJanitor(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(janitorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				c.sweepWakes(ctx, now.UTC())
			}
		}
	}()
}

func (c *Coordinator) sweepWakes(ctx context.Context, now time.Time) {
	due, err := c.store.DueWakes(ctx, now)
	if err != nil {
		log.Warn().Err(err).Msg("wake sweep failed")
		return
	}
	for _, id := range due {
		if sess, ok := c.Lookup(id); ok {
			sess.HandleWake()
			continue
		}
		if err := c.store.DeleteSession(ctx, id); err != nil && err != store.ErrNotFound {
			log.Error().Err(err).Str("session_id", id).Msg("stale session delete failed")
			continue
		}
		c.metrics.Cleanup()
		log.Info().Str("session_id", id).Msg("stale session purged")
	}
}
