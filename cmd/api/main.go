package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "reviewdesk/internal/adapters/http_server"
	"reviewdesk/internal/adapters/observability"
	"reviewdesk/internal/app"
	"reviewdesk/internal/shared"
	"reviewdesk/internal/wiring"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// deps
	repo, repoCloser, err := wiring.Repository(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer repoCloser.Close()

	assistant, aiCloser, err := wiring.Assistant(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("AI client init failed")
	}
	defer aiCloser.Close()

	store := app.NewStore(repo)
	if _, err := store.Load(ctx); err != nil {
		// the dashboard reports it; POST /v1/reload retries
		log.Warn().Err(err).Msg("initial load failed, serving connection error")
	}
	ctl := app.NewController(store, repo, assistant)

	// http
	srv := server.New(cfg.HTTPTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Ctl: ctl, Batch: app.NewBatch(ctl)})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreBackend).Str("ai", cfg.AIProvider).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
