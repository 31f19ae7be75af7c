package shared

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	HTTPTimeout time.Duration

	StoreBackend string // memory|mysql|sheets
	MySQLDSN     string
	SheetsBase   string
	SheetID      string
	SheetsKey    string
	SheetsToken  string

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	AIProvider string
	AIModel    string
	AIKey      string
	AIBaseURL  string
	AIRPS      float64

	Workers int
}

// Load reads an optional .env file, then the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("could not read .env")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not a number, using default")
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),
		HTTPTimeout: time.Duration(atoi("HTTP_TIMEOUT_SECONDS", 90)) * time.Second,

		StoreBackend: env("STORE_BACKEND", "memory"),
		MySQLDSN:     env("MYSQL_DSN", "root:root@tcp(localhost:3306)/reviewdesk?parseTime=true&charset=utf8mb4&loc=UTC"),
		SheetsBase:   env("SHEETS_BASE_URL", "https://sheets.googleapis.com/v4"),
		SheetID:      env("SPREADSHEET_ID", ""),
		SheetsKey:    env("SHEETS_API_KEY", ""),
		SheetsToken:  env("SHEETS_ACCESS_TOKEN", ""),

		RedisAddr: env("REDIS_ADDR", ""),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),
		CacheTTL:  time.Duration(atoi("ANALYSIS_CACHE_TTL_SECONDS", 86400)) * time.Second,

		AIProvider: env("AI_PROVIDER", "gemini"),
		AIModel:    env("AI_MODEL", ""),
		AIKey:      env("AI_API_KEY", ""),
		AIBaseURL:  env("AI_BASE_URL", ""),
		AIRPS:      atof("AI_RPS", 2),

		Workers: atoi("TRIAGE_WORKERS", 4),
	}

	if c.AIKey == "" && c.AIProvider != "ollama" {
		log.Warn().Str("provider", c.AIProvider).Msg("AI_API_KEY is empty")
	}
	if c.StoreBackend == "sheets" && c.SheetID == "" {
		log.Warn().Msg("SPREADSHEET_ID is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
