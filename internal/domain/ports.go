package domain

import "context"

// ReviewRepository is the remote review/business store.
type ReviewRepository interface {
	FetchAll(ctx context.Context) (Snapshot, error)
	// UpdateAt writes the set fields of p to the review at rowIndex.
	UpdateAt(ctx context.Context, rowIndex int, p Patch) error
	CreateBusinessAndDiscover(ctx context.Context, name string, current Snapshot) (Business, []Review, error)
	Describe() StoreInfo
}

// StoreInfo identifies a backing store for troubleshooting.
type StoreInfo struct {
	ID         string
	Credential string
}

// Assistant is the AI collaborator.
type Assistant interface {
	Analyze(ctx context.Context, text string) (Analysis, error)
	GenerateReply(ctx context.Context, r Review, a Analysis) (string, error)
}

// Discoverer finds reviews for a newly tracked business.
type Discoverer interface {
	Discover(ctx context.Context, business string) ([]Discovered, error)
}

type Discovered struct {
	Author string
	Rating int
	Text   string
	Date   string
	Source ReviewSource
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
}
