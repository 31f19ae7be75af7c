package discovery_test

import (
	"context"
	"testing"
	"time"

	"reviewdesk/internal/adapters/discovery"
	"reviewdesk/internal/domain"
)

func TestSample_Discover(t *testing.T) {
	d := discovery.Sample{Now: func() time.Time { return time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC) }}
	got, err := d.Discover(context.Background(), "New Cafe")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 reviews, got %d", len(got))
	}
	if got[0].Author != "Chris Green" || got[0].Rating != 5 || got[0].Source != domain.SourceGoogle {
		t.Fatalf("unexpected first review: %+v", got[0])
	}
	for _, r := range got {
		if r.Date != "2024-03-09" {
			t.Fatalf("date: %s", r.Date)
		}
	}
}

func TestSample_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (discovery.Sample{}).Discover(ctx, "x"); err == nil {
		t.Fatalf("expected error on canceled context")
	}
}
