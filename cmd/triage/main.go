package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"reviewdesk/internal/adapters/observability"
	"reviewdesk/internal/app"
	"reviewdesk/internal/shared"
	"reviewdesk/internal/wiring"
)

func main() {
	business := flag.String("business", "", "triage a single business (default: all)")
	flag.Parse()
	os.Exit(run(*business))
}

// run returns the process exit code: 1 when setup or the load fails, 2 when
// any business finished with failed items.
func run(business string) int {
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("store", cfg.StoreBackend).
		Str("ai", cfg.AIProvider).
		Int("workers", cfg.Workers).
		Msg("triage starting")

	repo, repoCloser, err := wiring.Repository(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("store init failed")
		return 1
	}
	defer repoCloser.Close()

	assistant, aiCloser, err := wiring.Assistant(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("AI client init failed")
		return 1
	}
	defer aiCloser.Close()

	store := app.NewStore(repo)
	if _, err := store.Load(ctx); err != nil {
		log.Error().Err(err).Msg("load failed")
		return 1
	}
	tri := app.NewTriage(app.NewController(store, repo, assistant))

	var results []app.TriageResult
	if business != "" {
		results = []app.TriageResult{tri.Business(ctx, business)}
	} else {
		results = tri.Run(ctx, cfg.Workers)
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil || len(r.Analyze.Failed)+len(r.Generate.Failed) > 0 {
			failed++
		}
	}
	log.Info().Int("businesses", len(results)).Int("with_failures", failed).Msg("triage completed")
	if failed > 0 {
		return 2
	}
	return 0
}
