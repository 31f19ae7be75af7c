package app_test

import (
	"context"
	"errors"
	"testing"

	"reviewdesk/internal/adapters/discovery"
	"reviewdesk/internal/app"
	"reviewdesk/internal/domain"
	"reviewdesk/internal/storage/memory"
)

func TestStore_LoadSeed_FilterByBusiness(t *testing.T) {
	s := app.NewStore(memory.New(discovery.Sample{}))
	snap, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Reviews) != 4 || len(snap.Businesses) != 2 {
		t.Fatalf("want 4 reviews / 2 businesses, got %d / %d", len(snap.Reviews), len(snap.Businesses))
	}
	for _, r := range snap.Reviews {
		switch r.Status {
		case domain.StatusPendingAnalysis, domain.StatusPendingResponse, domain.StatusApproved:
		default:
			t.Fatalf("unexpected seeded status %s", r.Status)
		}
	}

	cafe := s.Filter(domain.Filter{Business: "The Local Cafe"})
	if len(cafe) != 3 {
		t.Fatalf("want 3 cafe reviews, got %d", len(cafe))
	}
	for _, r := range cafe {
		if r.BusinessName != "The Local Cafe" {
			t.Fatalf("filter leaked %+v", r)
		}
	}

	neg := s.Filter(domain.Filter{Business: "The Local Cafe", Sentiment: domain.SentimentNegative})
	if len(neg) != 1 || neg[0].Author != "Bob Brown" {
		t.Fatalf("combined filter: %+v", neg)
	}
}

func TestStore_LoadFailure_ConnectionError(t *testing.T) {
	repo := &fakeRepo{fetchErr: errors.New("The caller does not have permission")}
	s := app.NewStore(repo)

	_, err := s.Load(context.Background())
	var cerr *domain.ConnectionError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConnectionError, got %T %v", err, err)
	}
	if cerr.Message != "The caller does not have permission" {
		t.Fatalf("message: %q", cerr.Message)
	}
	if cerr.StoreID != "TEST_SHEET" || cerr.CredentialHint != "AIza...1234" {
		t.Fatalf("diagnostics: %+v", cerr)
	}
	if s.LoadErr() == nil {
		t.Fatalf("load error should be retained")
	}

	repo.fetchErr = nil
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if s.LoadErr() != nil {
		t.Fatalf("successful load should clear the error")
	}
}

func TestStore_ApplyPatchRoundTrip(t *testing.T) {
	s := app.NewStore(memory.New(discovery.Sample{}))
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, st := range domain.Statuses {
		if _, err := s.ApplyPatch(1, domain.Patch{Status: domain.Set(st)}); err != nil {
			t.Fatalf("apply: %v", err)
		}
		got, err := s.Review(1)
		if err != nil || got.Status != st {
			t.Fatalf("round trip %s: got %s (%v)", st, got.Status, err)
		}
	}
	if _, err := s.ApplyPatch(404, domain.Patch{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing id: %v", err)
	}
}

func TestStore_ReadsAreCopies(t *testing.T) {
	s := app.NewStore(memory.New(discovery.Sample{}))
	_, _ = s.Load(context.Background())
	r, _ := s.Review(3)
	r.Analysis.Intent = "mutated"
	r.Response = "mutated"
	again, _ := s.Review(3)
	if again.Analysis.Intent == "mutated" || again.Response == "mutated" {
		t.Fatalf("store state leaked through a read")
	}
}

func TestStore_HasBusinessIgnoresCase(t *testing.T) {
	s := app.NewStore(memory.New(discovery.Sample{}))
	_, _ = s.Load(context.Background())
	if !s.HasBusiness("the local cafe") {
		t.Fatalf("case-insensitive match expected")
	}
	if s.HasBusiness("Other") {
		t.Fatalf("unexpected match")
	}
}
