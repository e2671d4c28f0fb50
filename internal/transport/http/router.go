package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"diamond-duel/internal/observability"
	"diamond-duel/internal/session"
	"diamond-duel/internal/store"
	"diamond-duel/internal/ws"
)

func NewRouter(coord *session.Coordinator, wsServer *ws.Server, st store.Store) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", HealthHandler(st))
	r.Handle("/metrics", observability.Handler())

	r.Route("/api", func(r chi.Router) {
		// The WebSocket upgrade stays outside the request logger;
		// long-lived connections log through their own lifecycle events.
		r.Get("/sessions/{session_id}/ws", wsServer.HandleWS)

		r.Group(func(r chi.Router) {
			r.Use(APILogMiddleware())
			r.Post("/sessions", SessionCreateHandler(coord))
			r.Post("/sessions/{session_id}/join", SessionJoinHandler(coord))
			r.Get("/sessions/{session_id}/state", SessionStateHandler(coord))
			r.Post("/sessions/{session_id}/action", SessionActionHandler(coord))
		})
	})

	return r
}

func LogRoutes(r chi.Router) {
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		log.Info().Str("method", method).Str("route", route).Msg("route registered")
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Msg("route walk failed")
	}
}
