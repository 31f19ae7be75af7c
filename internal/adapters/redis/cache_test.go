package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "reviewdesk/internal/adapters/redis"
	"reviewdesk/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_SetGet(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	var miss domain.Analysis
	ok, err := c.Get(ctx, "analysis:abc", &miss)
	if err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	in := domain.Analysis{Sentiment: domain.SentimentNegative, Intent: "Slow service"}
	if err := c.Set(ctx, "analysis:abc", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("reviewdesk:analysis:abc") {
		t.Fatalf("key not prefixed")
	}

	var out domain.Analysis
	ok, err = c.Get(ctx, "analysis:abc", &out)
	if err != nil || !ok || out != in {
		t.Fatalf("get: ok=%v err=%v out=%+v", ok, err, out)
	}
}

func TestCache_TTLExpires(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	if err := c.Set(ctx, "k", map[string]int{"a": 1}, 10); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(11 * time.Second)
	var v map[string]int
	if ok, _ := c.Get(ctx, "k", &v); ok {
		t.Fatalf("expected expiry")
	}
}

func TestCache_Ping(t *testing.T) {
	c, mr := newCache(t)
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	mr.Close()
	if err := c.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping error after shutdown")
	}
}
