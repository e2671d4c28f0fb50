// Package session hosts the per-match actors that own all mutable game
// state. Every operation on a match funnels through its actor's mailbox, so
// actions, joins, disconnects and timer wakes are applied one at a time in
// arrival order. Separate matches run fully in parallel.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"diamond-duel/internal/game"
	"diamond-duel/internal/observability"
	"diamond-duel/internal/store"
	"diamond-duel/internal/winprob"
)

// Persist retry knobs, overridable in tests.
var (
	persistAttempts = 3
	persistBackoff  = 50 * time.Millisecond
)

const mailboxDepth = 64

// Options carries the tunables a Session needs from configuration.
type Options struct {
	// ReconnectGrace is how long a disconnected player has to come back
	// before the match is forfeited to the opponent.
	ReconnectGrace time.Duration
	// CleanupDelay is how long a completed session stays queryable before
	// it is purged.
	CleanupDelay time.Duration
	// ChatHistoryLimit caps the persisted chat backlog; oldest entries are
	// dropped first.
	ChatHistoryLimit int
}

// JoinParams is a request to occupy one side of a match.
type JoinParams struct {
	PlayerID string          `json:"playerId"`
	Name     string          `json:"playerName"`
	Side     game.Side       `json:"side"`
	Team     json.RawMessage `json:"team,omitempty"`
}

// Action is a game move submitted over WebSocket or the REST fallback.
// Data carries the kind-specific payload, e.g. the resolved swing result.
type Action struct {
	Type      game.ActionType `json:"type"`
	PlayerID  string          `json:"playerId"`
	Timestamp int64           `json:"timestamp,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Session is the actor for one match. All fields below the mailbox are
// owned by the run loop and must not be touched from outside it.
type Session struct {
	id      string
	store   store.Store
	metrics *observability.Metrics
	opts    Options
	onStop  func(id string)
	log     zerolog.Logger

	mailbox chan func()
	stopped chan struct{}

	record       *game.GameSession
	loaded       bool
	stopping     bool
	conns        *connSet
	graceTimers  map[string]*time.Timer
	cleanupTimer *time.Timer
}

func newSession(id string, st store.Store, metrics *observability.Metrics, opts Options, onStop func(string)) *Session {
	s := &Session{
		id:          id,
		store:       st,
		metrics:     metrics,
		opts:        opts,
		onStop:      onStop,
		log:         log.With().Str("session_id", id).Logger(),
		mailbox:     make(chan func(), mailboxDepth),
		stopped:     make(chan struct{}),
		conns:       newConnSet(),
		graceTimers: make(map[string]*time.Timer),
	}
	go s.run()
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) run() {
	for {
		select {
		case job := <-s.mailbox:
			job()
		case <-s.stopped:
			return
		}
	}
}

// call runs fn inside the actor and waits for it to finish.
func (s *Session) call(fn func()) error {
	done := make(chan struct{})
	job := func() {
		fn()
		close(done)
	}
	select {
	case s.mailbox <- job:
	case <-s.stopped:
		return ErrClosed
	}
	select {
	case <-done:
		return nil
	case <-s.stopped:
		return ErrClosed
	}
}

// enqueue posts fn without waiting. Used by timer callbacks.
func (s *Session) enqueue(fn func()) {
	select {
	case s.mailbox <- fn:
	case <-s.stopped:
	}
}

// ensureLoaded restores the durable record, or creates a fresh waiting
// session when none exists. A store failure leaves the actor unloaded so the
// next operation retries.
func (s *Session) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	rec, err := s.store.GetSession(ctx, s.id)
	switch {
	case err == nil:
		s.record = rec
	case err == store.ErrNotFound:
		s.record = game.NewGameSession(s.id, time.Now().UTC())
		if err := s.persist(ctx); err != nil {
			s.record = nil
			return fmt.Errorf("%w: %v", ErrUninitialized, err)
		}
		s.metrics.SessionCreated()
	default:
		return fmt.Errorf("%w: %v", ErrUninitialized, err)
	}
	s.loaded = true
	if s.record.Status == game.StatusCompleted {
		// Restored after a restart mid-retention: re-arm the purge from
		// the last recorded activity.
		s.armCleanup(time.Until(s.record.LastActivity.Add(s.opts.CleanupDelay)))
	}
	return nil
}

func (s *Session) persist(ctx context.Context) error {
	var err error
	for attempt := 1; attempt <= persistAttempts; attempt++ {
		if err = s.store.PutSession(ctx, s.record); err == nil {
			return nil
		}
		s.log.Warn().Err(err).Int("attempt", attempt).Msg("persist failed")
		if attempt < persistAttempts {
			time.Sleep(time.Duration(attempt) * persistBackoff)
		}
	}
	return fmt.Errorf("persist session %s: %w", s.id, err)
}

// Snapshot returns a deep copy of the current session record.
func (s *Session) Snapshot(ctx context.Context) (*game.GameSession, error) {
	var (
		snap *game.GameSession
		err  error
	)
	callErr := s.call(func() {
		if err = s.ensureLoaded(ctx); err != nil {
			return
		}
		snap = s.record.Clone()
	})
	if callErr != nil {
		return nil, callErr
	}
	return snap, err
}

// Join places a player in the requested slot. Filling the second slot
// activates the match and broadcasts game_start.
func (s *Session) Join(ctx context.Context, p JoinParams) (*game.GameSession, error) {
	var (
		snap *game.GameSession
		err  error
	)
	callErr := s.call(func() {
		if err = s.ensureLoaded(ctx); err != nil {
			return
		}
		err = s.doJoin(ctx, p)
		if err == nil {
			snap = s.record.Clone()
		}
	})
	if callErr != nil {
		return nil, callErr
	}
	return snap, err
}

func (s *Session) doJoin(ctx context.Context, p JoinParams) error {
	if p.Side != game.SideHome && p.Side != game.SideAway {
		return fmt.Errorf("%w: side %q", game.ErrIllegalAction, p.Side)
	}
	if s.record.Status == game.StatusCompleted {
		return ErrCompleted
	}
	if cur := s.record.Player(p.Side); cur != nil {
		if cur.ID == p.PlayerID {
			return nil // idempotent rejoin
		}
		return ErrSlotTaken
	}
	if other := s.record.Player(p.Side.Opponent()); other != nil && other.ID == p.PlayerID {
		return ErrSlotTaken
	}
	s.record.SetPlayer(p.Side, &game.PlayerInfo{ID: p.PlayerID, Name: p.Name, Team: p.Team})
	s.record.LastActivity = time.Now().UTC()
	started := false
	if s.record.Status == game.StatusWaiting && s.record.BothSlotsFilled() {
		s.record.Status = game.StatusActive
		s.record.SyncLineup()
		started = true
	}
	if err := s.persist(ctx); err != nil {
		return err
	}
	if started {
		s.conns.broadcast(SessionFrame{Type: FrameGameStart, Data: s.record.Clone()})
		s.log.Info().Str("player_id", p.PlayerID).Msg("game started")
	}
	return nil
}

// SubmitAction validates and applies one player action.
func (s *Session) SubmitAction(ctx context.Context, a Action) error {
	var err error
	callErr := s.call(func() {
		if err = s.ensureLoaded(ctx); err != nil {
			return
		}
		err = s.doAction(ctx, a)
		if err != nil {
			s.metrics.Action(string(a.Type), "rejected")
		} else {
			s.metrics.Action(string(a.Type), "ok")
		}
	})
	if callErr != nil {
		return callErr
	}
	return err
}

func (s *Session) doAction(ctx context.Context, a Action) error {
	side, member := s.record.PlayerSide(a.PlayerID)
	if !member {
		return ErrUnknownPlayer
	}
	if a.Type == game.ActionChat {
		return s.doChat(ctx, a)
	}
	switch s.record.Status {
	case game.StatusCompleted:
		return ErrCompleted
	case game.StatusWaiting:
		return ErrNotActive
	}
	if err := game.ValidateTurn(&s.record.State, a.Type, side); err != nil {
		return err
	}
	switch a.Type {
	case game.ActionPitch:
		s.conns.broadcast(AdvisoryFrame{Type: FramePitchThrown, PlayerID: a.PlayerID, Data: a.Data})
	case game.ActionSteal:
		s.conns.broadcast(AdvisoryFrame{Type: FrameStealAttempt, PlayerID: a.PlayerID, Data: a.Data})
	case game.ActionSubstitution:
		s.conns.broadcast(AdvisoryFrame{Type: FrameSubstitution, PlayerID: a.PlayerID, Data: a.Data})
	case game.ActionSwing:
		return s.doSwing(ctx, a)
	default:
		return fmt.Errorf("%w: action %q", game.ErrIllegalAction, a.Type)
	}
	s.record.LastActivity = time.Now().UTC()
	return nil
}

func (s *Session) doSwing(ctx context.Context, a Action) error {
	var res game.SwingResult
	if err := json.Unmarshal(a.Data, &res); err != nil {
		return fmt.Errorf("%w: %v", game.ErrInvalidResult, err)
	}
	tr, err := game.Apply(&s.record.State, res)
	if err != nil {
		return err
	}
	s.record.SyncLineup()
	s.record.LastActivity = time.Now().UTC()
	if tr.GameEnded {
		// The final pitch still gets its state frames before the result.
		s.conns.broadcast(StateFrame{Type: FrameStateUpdate, Data: s.statePayload()})
		if tr.InningChanged {
			s.conns.broadcast(StateFrame{Type: FrameInningChange, Data: s.statePayload()})
		}
		return s.endGame(ctx, s.record.State.Winner(), "")
	}
	if err := s.persist(ctx); err != nil {
		return err
	}
	s.conns.broadcast(StateFrame{Type: FrameStateUpdate, Data: s.statePayload()})
	if tr.InningChanged {
		s.conns.broadcast(StateFrame{Type: FrameInningChange, Data: s.statePayload()})
	}
	return nil
}

func (s *Session) doChat(ctx context.Context, a Action) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(a.Data, &body); err != nil || body.Message == "" {
		return fmt.Errorf("%w: empty chat message", game.ErrIllegalAction)
	}
	ts := a.Timestamp
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	msg := game.ChatMessage{ID: store.NewID(), PlayerID: a.PlayerID, Message: body.Message, Timestamp: ts}
	s.record.Chat = append(s.record.Chat, msg)
	if limit := s.opts.ChatHistoryLimit; limit > 0 && len(s.record.Chat) > limit {
		s.record.Chat = s.record.Chat[len(s.record.Chat)-limit:]
	}
	s.record.LastActivity = time.Now().UTC()
	if err := s.persist(ctx); err != nil {
		return err
	}
	s.conns.broadcast(ChatFrame{Type: FrameChat, PlayerID: a.PlayerID, Message: body.Message, Timestamp: ts})
	return nil
}

func (s *Session) statePayload() StatePayload {
	return StatePayload{
		GameState:   s.record.State,
		WinProbHome: winprob.Home(&s.record.State),
		Leverage:    winprob.Leverage(&s.record.State),
	}
}

// endGame marks the session completed, announces the result and schedules
// the retention purge.
func (s *Session) endGame(ctx context.Context, winner game.Side, reason string) error {
	s.record.Status = game.StatusCompleted
	s.record.Winner = winner
	s.record.EndReason = reason
	s.record.LastActivity = time.Now().UTC()
	if err := s.persist(ctx); err != nil {
		return err
	}
	s.conns.broadcast(GameEndFrame{Type: FrameGameEnd, Data: GameEndData{
		Winner: winner,
		Reason: reason,
		FinalScore: Score{
			Home: s.record.State.HomeScore,
			Away: s.record.State.AwayScore,
		},
	}})
	if err := s.store.ScheduleWake(ctx, s.id, time.Now().UTC().Add(s.opts.CleanupDelay)); err != nil {
		s.log.Warn().Err(err).Msg("schedule cleanup wake failed")
	}
	s.armCleanup(s.opts.CleanupDelay)
	s.log.Info().Str("winner", string(winner)).Str("reason", reason).Msg("game over")
	return nil
}

func (s *Session) armCleanup(in time.Duration) {
	if in < 0 {
		in = 0
	}
	if s.cleanupTimer != nil {
		s.cleanupTimer.Stop()
	}
	s.cleanupTimer = time.AfterFunc(in, func() {
		s.enqueue(func() { s.wake(context.Background()) })
	})
}

// Connect attaches a live connection and replays the full session state to
// it. The newest connection for a player supersedes any previous one.
func (s *Session) Connect(ctx context.Context, playerID string, conn Conn) error {
	var err error
	callErr := s.call(func() {
		if err = s.ensureLoaded(ctx); err != nil {
			return
		}
		s.conns.attach(playerID, conn)
		conn.Send(SessionFrame{Type: FrameStateSync, Data: s.record.Clone()})
	})
	if callErr != nil {
		return callErr
	}
	return err
}

// Disconnect detaches conn and, for a running match, starts the reconnect
// grace countdown for that player. The countdown callback re-checks
// connectivity rather than being cancelled on reconnect.
func (s *Session) Disconnect(playerID string, conn Conn) {
	s.enqueue(func() {
		if !s.conns.detach(playerID, conn) {
			return
		}
		s.conns.broadcast(DisconnectFrame{
			Type:      FramePlayerDisconnected,
			PlayerID:  playerID,
			Timestamp: time.Now().UnixMilli(),
		})
		if s.record == nil || s.record.Status != game.StatusActive {
			// Only a running match can be forfeited; a lone waiting player
			// leaving just frees the slot's connection.
			return
		}
		if _, member := s.record.PlayerSide(playerID); !member {
			return
		}
		if old, ok := s.graceTimers[playerID]; ok {
			old.Stop()
		}
		s.graceTimers[playerID] = time.AfterFunc(s.opts.ReconnectGrace, func() {
			s.enqueue(func() { s.forfeitCheck(context.Background(), playerID) })
		})
		s.log.Info().Str("player_id", playerID).Dur("grace", s.opts.ReconnectGrace).Msg("player disconnected")
	})
}

func (s *Session) forfeitCheck(ctx context.Context, playerID string) {
	delete(s.graceTimers, playerID)
	if s.record == nil || s.record.Status != game.StatusActive {
		return
	}
	if s.conns.connected(playerID) {
		return // made it back in time
	}
	side, member := s.record.PlayerSide(playerID)
	if !member {
		return
	}
	name := playerID
	if p := s.record.Player(side); p != nil && p.Name != "" {
		name = p.Name
	}
	s.metrics.Forfeit()
	if err := s.endGame(ctx, side.Opponent(), fmt.Sprintf("%s forfeited by disconnect", name)); err != nil {
		s.log.Error().Err(err).Msg("forfeit completion failed")
	}
}

// HandleWake runs the retention purge for this session: close connections,
// drop the durable record and retire the actor.
func (s *Session) HandleWake() {
	s.enqueue(func() { s.wake(context.Background()) })
}

func (s *Session) wake(ctx context.Context) {
	if s.stopping {
		// The in-process timer and the janitor sweep can both deliver the
		// same retention wake; the second one finds the purge already done.
		return
	}
	if s.record != nil && s.record.Status != game.StatusCompleted {
		// Stale wake for a session that is still in play; disarm any
		// durable copy of it.
		if err := s.store.CancelWake(ctx, s.id); err != nil {
			s.log.Warn().Err(err).Msg("cancel stale wake failed")
		}
		return
	}
	s.conns.closeAll()
	if err := s.store.DeleteSession(ctx, s.id); err != nil && err != store.ErrNotFound {
		s.log.Error().Err(err).Msg("session cleanup delete failed")
	}
	s.metrics.Cleanup()
	s.stop()
	s.log.Info().Msg("session purged")
}

func (s *Session) stop() {
	if s.stopping {
		return
	}
	s.stopping = true
	for id, t := range s.graceTimers {
		t.Stop()
		delete(s.graceTimers, id)
	}
	if s.cleanupTimer != nil {
		s.cleanupTimer.Stop()
	}
	close(s.stopped)
	if s.onStop != nil {
		s.onStop(s.id)
	}
}
