package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"diamond-duel/internal/config"
	"diamond-duel/internal/logging"
	"diamond-duel/internal/observability"
	"diamond-duel/internal/session"
	"diamond-duel/internal/store"
	httptransport "diamond-duel/internal/transport/http"
	"diamond-duel/internal/ws"
)

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load server config failed")
	}

	st, err := newStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer st.Close()
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("store ping failed")
	}

	metrics := observability.New(cfg.MetricsNamespace)
	coord := session.NewCoordinator(st, metrics, session.Options{
		ReconnectGrace:   cfg.ReconnectGrace(),
		CleanupDelay:     cfg.CleanupDelay(),
		ChatHistoryLimit: cfg.ChatHistoryLimit,
	})
	coord.StartJanitor(context.Background())

	wsServer := ws.NewServer(coord, metrics, cfg.AllowAnyOrigin)
	r := httptransport.NewRouter(coord, wsServer, st)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}

// newStore picks the backend from configuration: Postgres when a DSN is
// set, otherwise an in-process store for local play and tests.
func newStore(cfg config.ServerConfig) (store.Store, error) {
	if cfg.PostgresDSN == "" {
		log.Warn().Msg("no postgres dsn configured, using in-memory store")
		return store.NewMemory(), nil
	}
	return store.NewPostgres(context.Background(), cfg.PostgresDSN)
}
