package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"reviewdesk/internal/adapters/observability"
	"reviewdesk/internal/domain"
)

type Config struct {
	Provider string // gemini|openai|anthropic|ollama
	Model    string
	APIKey   string
	BaseURL  string
	RPS      float64
}

// completer is one provider's single-turn text completion.
type completer interface {
	complete(ctx context.Context, prompt string, jsonOut bool) (string, error)
}

// Client implements domain.Assistant on top of an LLM provider.
type Client struct {
	provider string
	llm      completer
	lim      *rate.Limiter
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.RPS <= 0 {
		cfg.RPS = 2
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = "gemini"
	}

	var (
		llm completer
		err error
	)
	switch provider {
	case "gemini":
		llm, err = newGemini(ctx, cfg)
	case "openai":
		llm = newOpenAI(cfg)
	case "anthropic":
		llm = newAnthropic(cfg)
	case "ollama":
		llm, err = newOllama(cfg, http.DefaultClient)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%s client: %w", provider, err)
	}
	log.Info().Str("provider", provider).Str("model", cfg.Model).Msg("ai client ready")

	return &Client{
		provider: provider,
		llm:      llm,
		lim:      rate.NewLimiter(rate.Limit(cfg.RPS), 1),
	}, nil
}

func (c *Client) Analyze(ctx context.Context, text string) (domain.Analysis, error) {
	out, err := c.call(ctx, "analyze", analysisPrompt(text), true)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
	}
	a, err := parseAnalysis(out)
	if err != nil {
		log.Warn().Err(err).Str("provider", c.provider).Msg("unparseable analysis")
		return domain.Analysis{}, fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
	}
	return a, nil
}

func (c *Client) GenerateReply(ctx context.Context, r domain.Review, a domain.Analysis) (string, error) {
	out, err := c.call(ctx, "reply", replyPrompt(r, a), false)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, errEmptyOutput)
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, endpoint, prompt string, jsonOut bool) (string, error) {
	if err := c.lim.Wait(ctx); err != nil {
		return "", err
	}
	start := time.Now()
	out, err := c.llm.complete(ctx, prompt, jsonOut)
	status := http.StatusOK
	if err != nil {
		status = http.StatusBadGateway
	}
	observability.ObserveExternal("ai:"+c.provider, endpoint, status, time.Since(start))
	if err != nil {
		log.Error().Err(err).Str("provider", c.provider).Str("endpoint", endpoint).Msg("ai call failed")
	}
	return out, err
}
