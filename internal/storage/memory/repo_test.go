package memory_test

import (
	"context"
	"errors"
	"testing"

	"reviewdesk/internal/adapters/discovery"
	"reviewdesk/internal/domain"
	"reviewdesk/internal/storage/memory"
)

func TestRepo_SeedAndUpdate(t *testing.T) {
	ctx := context.Background()
	repo := memory.New(discovery.Sample{})

	snap, err := repo.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(snap.Reviews) != 4 || len(snap.Businesses) != 2 {
		t.Fatalf("seed: %d reviews, %d businesses", len(snap.Reviews), len(snap.Businesses))
	}

	if err := repo.UpdateAt(ctx, 5, domain.Patch{Status: domain.Set(domain.StatusGenerating)}); err != nil {
		t.Fatalf("UpdateAt: %v", err)
	}
	snap, _ = repo.FetchAll(ctx)
	if snap.Reviews[3].Status != domain.StatusGenerating {
		t.Fatalf("row 5 not updated: %+v", snap.Reviews[3])
	}

	if err := repo.UpdateAt(ctx, 99, domain.Patch{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown row should fail with ErrNotFound, got %v", err)
	}
}

func TestRepo_FetchReturnsCopies(t *testing.T) {
	repo := memory.New(discovery.Sample{})
	snap, _ := repo.FetchAll(context.Background())
	snap.Reviews[2].Analysis.Intent = "changed"

	again, _ := repo.FetchAll(context.Background())
	if again.Reviews[2].Analysis.Intent != "Praise for atmosphere" {
		t.Fatalf("caller mutation leaked into repo")
	}
}

func TestRepo_CreateBusinessAndDiscover(t *testing.T) {
	ctx := context.Background()
	repo := memory.New(discovery.Sample{})
	cur, _ := repo.FetchAll(ctx)

	b, rs, err := repo.CreateBusinessAndDiscover(ctx, "New Cafe", cur)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.ID != 3 || b.RowIndex == nil || *b.RowIndex != 4 {
		t.Fatalf("business: %+v", b)
	}
	if len(rs) != 3 {
		t.Fatalf("want 3 discovered, got %d", len(rs))
	}
	for i, r := range rs {
		if r.Status != domain.StatusPendingAnalysis || r.BusinessName != "New Cafe" {
			t.Fatalf("review %d: %+v", i, r)
		}
		if r.RowIndex == nil || *r.RowIndex != len(cur.Reviews)+i+2 {
			t.Fatalf("row index %d: %v", i, r.RowIndex)
		}
	}
	if rs[0].ID != 5 {
		t.Fatalf("ids continue after seed, got %d", rs[0].ID)
	}

	after, _ := repo.FetchAll(ctx)
	if len(after.Reviews) != 7 || len(after.Businesses) != 3 {
		t.Fatalf("repo not updated: %d/%d", len(after.Reviews), len(after.Businesses))
	}
}

func TestRepo_CreateIgnoresStaleSnapshotRows(t *testing.T) {
	ctx := context.Background()
	repo := memory.New(discovery.Sample{})

	_, rs, err := repo.CreateBusinessAndDiscover(ctx, "New Cafe", domain.Snapshot{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	taken := map[int]bool{2: true, 3: true, 4: true, 5: true}
	for i, r := range rs {
		if r.RowIndex == nil || taken[*r.RowIndex] {
			t.Fatalf("review %d reuses a seeded row: %v", i, r.RowIndex)
		}
		taken[*r.RowIndex] = true
	}

	if err := repo.UpdateAt(ctx, *rs[0].RowIndex, domain.Patch{Status: domain.Set(domain.StatusAnalyzing)}); err != nil {
		t.Fatalf("UpdateAt: %v", err)
	}
	snap, _ := repo.FetchAll(ctx)
	if snap.Reviews[0].Status != domain.StatusPendingAnalysis {
		t.Fatalf("seed review 1 touched: %+v", snap.Reviews[0])
	}
}
