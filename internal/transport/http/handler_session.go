package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"diamond-duel/internal/game"
	"diamond-duel/internal/session"
	"diamond-duel/internal/winprob"
)

// mapSessionError translates the session and rules sentinels into an HTTP
// status and wire code.
func mapSessionError(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrSlotTaken):
		return http.StatusConflict, "slot_taken"
	case errors.Is(err, session.ErrUnknownPlayer):
		return http.StatusBadRequest, "unknown_player"
	case errors.Is(err, session.ErrNotActive):
		return http.StatusBadRequest, "session_not_active"
	case errors.Is(err, session.ErrCompleted):
		return http.StatusBadRequest, "session_completed"
	case errors.Is(err, game.ErrInvalidResult):
		return http.StatusBadRequest, "invalid_result"
	case errors.Is(err, game.ErrIllegalAction):
		return http.StatusBadRequest, "illegal_action"
	case errors.Is(err, session.ErrClosed):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, session.ErrUninitialized):
		return http.StatusInternalServerError, "session_uninitialized"
	}
	return http.StatusInternalServerError, "internal_error"
}

func SessionCreateHandler(coord *session.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := coord.CreateSession(r.Context())
		if err != nil {
			status, code := mapSessionError(err)
			WriteHTTPError(w, status, code)
			return
		}
		snap, err := sess.Snapshot(r.Context())
		if err != nil {
			status, code := mapSessionError(err)
			WriteHTTPError(w, status, code)
			return
		}
		writeJSON(w, map[string]any{"sessionId": sess.ID(), "session": snap})
	}
}

func SessionJoinHandler(coord *session.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "session_id")
		var req session.JoinParams
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if req.PlayerID == "" {
			WriteHTTPError(w, http.StatusBadRequest, "player_id_required")
			return
		}
		snap, err := coord.GetOrCreate(sessionID).Join(r.Context(), req)
		if err != nil {
			status, code := mapSessionError(err)
			WriteHTTPError(w, status, code)
			return
		}
		writeJSON(w, map[string]any{"success": true, "session": snap})
	}
}

// stateResponse is the session record annotated with the live win
// probability model outputs.
type stateResponse struct {
	*game.GameSession
	WinProbHome float64 `json:"winProbHome"`
	Leverage    float64 `json:"leverage"`
}

func SessionStateHandler(coord *session.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "session_id")
		snap, err := coord.GetOrCreate(sessionID).Snapshot(r.Context())
		if err != nil {
			status, code := mapSessionError(err)
			WriteHTTPError(w, status, code)
			return
		}
		writeJSON(w, stateResponse{
			GameSession: snap,
			WinProbHome: winprob.Home(&snap.State),
			Leverage:    winprob.Leverage(&snap.State),
		})
	}
}

// SessionActionHandler is the REST fallback for clients without a live
// WebSocket. Broadcasts still go out over whatever connections are open.
func SessionActionHandler(coord *session.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "session_id")
		var req session.Action
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if req.PlayerID == "" {
			WriteHTTPError(w, http.StatusBadRequest, "player_id_required")
			return
		}
		if err := coord.GetOrCreate(sessionID).SubmitAction(r.Context(), req); err != nil {
			status, code := mapSessionError(err)
			WriteHTTPError(w, status, code)
			return
		}
		writeJSON(w, map[string]any{"success": true})
	}
}
