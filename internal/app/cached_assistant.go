package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"reviewdesk/internal/domain"
)

// CachedAssistant remembers analysis results per review text so retries and
// repeated texts do not call the model again. Replies are never cached.
type CachedAssistant struct {
	next     domain.Assistant
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewCachedAssistant(next domain.Assistant, c domain.Cache, ttl time.Duration) *CachedAssistant {
	return &CachedAssistant{next: next, cache: c, cacheTTL: ttl}
}

func analysisKey(text string) string {
	sum := sha1.Sum([]byte(strings.TrimSpace(text)))
	return "analysis:" + hex.EncodeToString(sum[:])
}

func (s *CachedAssistant) Analyze(ctx context.Context, text string) (domain.Analysis, error) {
	key := analysisKey(text)
	var a domain.Analysis
	if ok, err := s.cache.Get(ctx, key, &a); ok && err == nil {
		return a, nil
	} else if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("analysis cache read failed")
	}

	a, err := s.next.Analyze(ctx, text)
	if err != nil {
		return domain.Analysis{}, err
	}
	if err := s.cache.Set(ctx, key, a, int(s.cacheTTL.Seconds())); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("analysis cache write failed")
	}
	return a, nil
}

func (s *CachedAssistant) GenerateReply(ctx context.Context, r domain.Review, a domain.Analysis) (string, error) {
	return s.next.GenerateReply(ctx, r, a)
}
