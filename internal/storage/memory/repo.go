// Package memory is an in-process review store seeded with demo data. Each
// Repo owns its own collections.
package memory

import (
	"context"
	"fmt"
	"sync"

	"reviewdesk/internal/domain"
)

const StoreID = "MOCK_SPREADSHEET_ID"

type Repo struct {
	disc domain.Discoverer

	mu             sync.Mutex
	reviews        []domain.Review
	businesses     []domain.Business
	nextReviewID   int64
	nextBusinessID int64
}

// New returns a Repo holding the seed snapshot.
func New(d domain.Discoverer) *Repo {
	r := NewEmpty(d)
	seed := Seed()
	r.reviews = seed.Reviews
	r.businesses = seed.Businesses
	r.nextReviewID = int64(len(seed.Reviews)) + 1
	r.nextBusinessID = int64(len(seed.Businesses)) + 1
	return r
}

func NewEmpty(d domain.Discoverer) *Repo {
	return &Repo{disc: d, nextReviewID: 1, nextBusinessID: 1}
}

func (r *Repo) Describe() domain.StoreInfo {
	return domain.StoreInfo{ID: StoreID, Credential: "in-memory"}
}

func (r *Repo) FetchAll(ctx context.Context) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := domain.Snapshot{
		Reviews:    make([]domain.Review, 0, len(r.reviews)),
		Businesses: append([]domain.Business(nil), r.businesses...),
	}
	for _, rv := range r.reviews {
		out.Reviews = append(out.Reviews, rv.Clone())
	}
	return out, nil
}

func (r *Repo) UpdateAt(ctx context.Context, rowIndex int, p domain.Patch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.reviews {
		if ri := r.reviews[i].RowIndex; ri != nil && *ri == rowIndex {
			p.Apply(&r.reviews[i])
			return nil
		}
	}
	return fmt.Errorf("row %d: %w", rowIndex, domain.ErrNotFound)
}

func (r *Repo) CreateBusinessAndDiscover(ctx context.Context, name string, _ domain.Snapshot) (domain.Business, []domain.Review, error) {
	found, err := r.disc.Discover(ctx, name)
	if err != nil {
		return domain.Business{}, nil, fmt.Errorf("discover %q: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// rows are allocated from this repo's own collections, header in row 1
	brow := len(r.businesses) + 2
	b := domain.Business{ID: r.nextBusinessID, Name: name, RowIndex: &brow}
	r.nextBusinessID++
	r.businesses = append(r.businesses, b)

	out := make([]domain.Review, 0, len(found))
	for _, d := range found {
		row := len(r.reviews) + 2
		rv := domain.Review{
			ID:           r.nextReviewID,
			Author:       d.Author,
			Rating:       d.Rating,
			Text:         d.Text,
			Date:         d.Date,
			Source:       d.Source,
			Status:       domain.StatusPendingAnalysis,
			BusinessName: name,
			RowIndex:     &row,
		}
		r.nextReviewID++
		r.reviews = append(r.reviews, rv)
		out = append(out, rv.Clone())
	}
	return b, out, nil
}
