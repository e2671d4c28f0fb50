package store

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"diamond-duel/internal/game"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	sess := game.NewGameSession("sess-1", now)
	sess.Players.Home = &game.PlayerInfo{ID: "p1", Name: "Ace", Team: json.RawMessage(`{"roster":["a","b"]}`)}
	sess.Players.Away = &game.PlayerInfo{ID: "p2", Name: "Slugger"}
	sess.Status = game.StatusActive
	sess.State.Inning = 4
	sess.State.Bases = [3]bool{true, false, true}
	sess.State.HomeScore = 2
	sess.Chat = []game.ChatMessage{{ID: "m1", PlayerID: "p1", Message: "gl", Timestamp: now.UnixMilli()}}

	if err := st.PutSession(ctx, sess); err != nil {
		t.Fatalf("put: %v", err)
	}
	restored, err := st.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(sess, restored) {
		t.Fatalf("round trip mismatch:\n put %+v\n got %+v", sess, restored)
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	st := NewMemory()
	if _, err := st.GetSession(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreWakes(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()
	now := time.Now()

	if err := st.ScheduleWake(ctx, "ghost", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("wake for missing session: err = %v, want ErrNotFound", err)
	}

	for _, id := range []string{"a", "b", "c"} {
		if err := st.PutSession(ctx, game.NewGameSession(id, now)); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}
	if err := st.ScheduleWake(ctx, "a", now.Add(-time.Minute)); err != nil {
		t.Fatalf("schedule a: %v", err)
	}
	if err := st.ScheduleWake(ctx, "b", now.Add(time.Hour)); err != nil {
		t.Fatalf("schedule b: %v", err)
	}
	if err := st.ScheduleWake(ctx, "c", now.Add(-time.Second)); err != nil {
		t.Fatalf("schedule c: %v", err)
	}

	due, err := st.DueWakes(ctx, now)
	if err != nil {
		t.Fatalf("due wakes: %v", err)
	}
	if !reflect.DeepEqual(due, []string{"a", "c"}) {
		t.Fatalf("due = %v, want [a c]", due)
	}

	// A fired wake is disarmed.
	due, err = st.DueWakes(ctx, now)
	if err != nil {
		t.Fatalf("due wakes again: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("due = %v, want empty", due)
	}
}

func TestMemoryStoreDeleteClearsWake(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()
	now := time.Now()

	if err := st.PutSession(ctx, game.NewGameSession("a", now)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := st.ScheduleWake(ctx, "a", now.Add(-time.Minute)); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := st.DeleteSession(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	due, err := st.DueWakes(ctx, now)
	if err != nil {
		t.Fatalf("due wakes: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("due = %v, want empty after delete", due)
	}
}
