package httptransport

import (
	"net/http"

	"diamond-duel/internal/store"
)

func HealthHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			WriteHTTPError(w, http.StatusServiceUnavailable, "store_unavailable")
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	}
}
