// Package wiring builds the adapters selected by configuration. Both binaries
// share it so they talk to the same store and model.
package wiring

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"reviewdesk/internal/adapters/ai"
	"reviewdesk/internal/adapters/discovery"
	redisad "reviewdesk/internal/adapters/redis"
	"reviewdesk/internal/adapters/sheets"
	"reviewdesk/internal/app"
	"reviewdesk/internal/domain"
	"reviewdesk/internal/shared"
	mysqlrepo "reviewdesk/internal/storage/mysql"
	"reviewdesk/internal/storage/memory"
)

type closer func() error

func (c closer) Close() error { return c() }

// Repository returns the configured review store and a closer for its resources.
func Repository(ctx context.Context, cfg shared.Config) (domain.ReviewRepository, io.Closer, error) {
	disc := discovery.Sample{}
	switch strings.ToLower(cfg.StoreBackend) {
	case "", "memory":
		return memory.New(disc), closer(func() error { return nil }), nil

	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("sql.Open: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			// keep serving; the first load reports the connection error
			log.Error().Err(err).Msg("db.Ping failed")
		} else {
			log.Info().Msg("database connection ok")
		}
		return mysqlrepo.New(db, cfg.MySQLDSN, disc), db, nil

	case "sheets":
		c, err := sheets.NewClient(cfg.SheetsBase, cfg.SheetID, cfg.SheetsKey, cfg.SheetsToken, 5)
		if err != nil {
			return nil, nil, err
		}
		return sheets.New(c, disc), closer(func() error { return nil }), nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
}

// Assistant returns the configured AI client, behind the Redis analysis cache
// when REDIS_ADDR is set and reachable.
func Assistant(ctx context.Context, cfg shared.Config) (domain.Assistant, io.Closer, error) {
	client, err := ai.New(ctx, ai.Config{
		Provider: cfg.AIProvider,
		Model:    cfg.AIModel,
		APIKey:   cfg.AIKey,
		BaseURL:  cfg.AIBaseURL,
		RPS:      cfg.AIRPS,
	})
	if err != nil {
		return nil, nil, err
	}
	if cfg.RedisAddr == "" {
		return client, closer(func() error { return nil }), nil
	}

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, analysis cache disabled")
		_ = cache.Close()
		return client, closer(func() error { return nil }), nil
	}
	log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).Msg("analysis cache enabled")
	return app.NewCachedAssistant(client, cache, cfg.CacheTTL), cache, nil
}
