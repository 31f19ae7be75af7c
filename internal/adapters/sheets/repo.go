package sheets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"reviewdesk/internal/domain"
)

const (
	reviewsSheet    = "Reviews"
	businessesSheet = "Businesses"
	reviewsRange    = reviewsSheet + "!A:M"
	businessesRange = businessesSheet + "!A:C"
)

// Repo keeps reviews and businesses in a spreadsheet. Row 1 of each sheet is
// the header; a record's row index is its sheet row.
type Repo struct {
	c    *Client
	disc domain.Discoverer
	now  func() time.Time

	mu      sync.RWMutex
	reviewL layout
	bizL    layout
}

func New(c *Client, d domain.Discoverer) *Repo {
	return &Repo{
		c:       c,
		disc:    d,
		now:     time.Now,
		reviewL: defaultLayout(reviewColumns),
		bizL:    defaultLayout(businessColumns),
	}
}

func (r *Repo) Describe() domain.StoreInfo {
	cred := r.c.key
	if cred == "" {
		cred = r.c.token
	}
	return domain.StoreInfo{ID: r.c.sheetID, Credential: cred}
}

func (r *Repo) FetchAll(ctx context.Context) (domain.Snapshot, error) {
	brows, err := r.c.Get(ctx, businessesRange)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("read businesses: %w", err)
	}
	rrows, err := r.c.Get(ctx, reviewsRange)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("read reviews: %w", err)
	}

	bl, rl := defaultLayout(businessColumns), defaultLayout(reviewColumns)
	if len(brows) > 0 {
		bl = resolveLayout(brows[0], businessAliases, businessColumns)
	}
	if len(rrows) > 0 {
		rl = resolveLayout(rrows[0], reviewAliases, reviewColumns)
	}
	r.mu.Lock()
	r.bizL, r.reviewL = bl, rl
	r.mu.Unlock()

	var snap domain.Snapshot
	for i := 1; i < len(brows); i++ {
		if b, ok := businessFromRow(brows[i], bl, i+1); ok {
			snap.Businesses = append(snap.Businesses, b)
		}
	}
	skipped := 0
	for i := 1; i < len(rrows); i++ {
		rev, ok := reviewFromRow(rrows[i], rl, i+1)
		if !ok {
			skipped++
			continue
		}
		snap.Reviews = append(snap.Reviews, rev)
	}
	if skipped > 0 {
		log.Debug().Int("rows", skipped).Msg("skipped blank review rows")
	}
	return snap, nil
}

func (r *Repo) UpdateAt(ctx context.Context, row int, p domain.Patch) error {
	if row < 2 {
		return fmt.Errorf("row %d: %w", row, domain.ErrIntegrity)
	}
	r.mu.RLock()
	l := r.reviewL
	r.mu.RUnlock()

	data := patchRanges(p, l, row, r.stamp())
	if len(data) == 0 {
		return nil
	}
	if err := r.c.BatchUpdate(ctx, data); err != nil {
		return fmt.Errorf("update row %d: %w", row, err)
	}
	return nil
}

// CreateBusinessAndDiscover discovers first so a discovery failure writes
// nothing. New ids continue from the largest id in current.
func (r *Repo) CreateBusinessAndDiscover(ctx context.Context, name string, current domain.Snapshot) (domain.Business, []domain.Review, error) {
	found, err := r.disc.Discover(ctx, name)
	if err != nil {
		return domain.Business{}, nil, fmt.Errorf("discover: %w", err)
	}

	r.mu.RLock()
	bl, rl := r.bizL, r.reviewL
	r.mu.RUnlock()
	stamp := r.stamp()

	b := domain.Business{ID: maxBusinessID(current) + 1, Name: name}
	brow, err := r.c.Append(ctx, businessesRange, [][]any{businessToRow(b, bl, stamp)})
	if err != nil {
		return domain.Business{}, nil, fmt.Errorf("append business: %w", err)
	}
	b.RowIndex = &brow

	if len(found) == 0 {
		return b, nil, nil
	}
	next := maxReviewID(current) + 1
	reviews := make([]domain.Review, len(found))
	rows := make([][]any, len(found))
	for i, d := range found {
		reviews[i] = domain.Review{
			ID: next + int64(i), Author: d.Author, Rating: d.Rating, Text: d.Text,
			Date: d.Date, Source: d.Source, Status: domain.StatusPendingAnalysis,
			BusinessName: name,
		}
		rows[i] = reviewToRow(reviews[i], rl, stamp)
	}
	start, err := r.c.Append(ctx, reviewsRange, rows)
	if err != nil {
		log.Error().Err(err).Str("business", name).Int("row", brow).Msg("business appended but reviews were not")
		return domain.Business{}, nil, fmt.Errorf("append reviews: %w", err)
	}
	for i := range reviews {
		idx := start + i
		reviews[i].RowIndex = &idx
	}
	return b, reviews, nil
}

func (r *Repo) stamp() string { return r.now().UTC().Format(time.RFC3339) }

func maxBusinessID(s domain.Snapshot) int64 {
	var m int64
	for _, b := range s.Businesses {
		m = max(m, b.ID)
	}
	return m
}

func maxReviewID(s domain.Snapshot) int64 {
	var m int64
	for _, r := range s.Reviews {
		m = max(m, r.ID)
	}
	return m
}
