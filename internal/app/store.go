package app

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"reviewdesk/internal/domain"
)

// Store is the operator's local copy of reviews and businesses. All reads see
// the latest committed local state; remote calls never run under its lock.
type Store struct {
	repo domain.ReviewRepository

	mu         sync.RWMutex
	reviews    []domain.Review
	index      map[int64]int
	businesses []domain.Business
	loadErr    error
}

func NewStore(repo domain.ReviewRepository) *Store {
	return &Store{repo: repo, index: map[int64]int{}}
}

// Load replaces local state with a full read of the repository. A failure is
// kept until the next successful load.
func (s *Store) Load(ctx context.Context) (domain.Snapshot, error) {
	snap, err := s.repo.FetchAll(ctx)
	if err != nil {
		info := s.repo.Describe()
		cerr := &domain.ConnectionError{
			Message:        err.Error(),
			StoreID:        info.ID,
			CredentialHint: domain.Redact(info.Credential),
			Err:            err,
		}
		s.mu.Lock()
		s.loadErr = cerr
		s.mu.Unlock()
		log.Error().Err(err).Str("store", info.ID).Msg("load failed")
		return domain.Snapshot{}, cerr
	}

	s.mu.Lock()
	s.reviews = make([]domain.Review, 0, len(snap.Reviews))
	s.index = make(map[int64]int, len(snap.Reviews))
	for _, r := range snap.Reviews {
		s.index[r.ID] = len(s.reviews)
		s.reviews = append(s.reviews, r.Clone())
	}
	s.businesses = append([]domain.Business(nil), snap.Businesses...)
	s.loadErr = nil
	s.mu.Unlock()

	log.Info().Int("reviews", len(snap.Reviews)).Int("businesses", len(snap.Businesses)).Msg("store loaded")
	return s.Snapshot(), nil
}

// LoadErr returns the *domain.ConnectionError of the last failed load, or nil.
func (s *Store) LoadErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// ApplyPatch merges p into the review with the given id.
func (s *Store) ApplyPatch(id int64, p domain.Patch) (domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	p.Apply(&s.reviews[i])
	return s.reviews[i].Clone(), nil
}

// Update runs fn against the current review and applies the patch it returns,
// all under one lock. It returns the review as it was before the patch.
func (s *Store) Update(id int64, fn func(r domain.Review) (domain.Patch, error)) (domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	before := s.reviews[i].Clone()
	p, err := fn(before.Clone())
	if err != nil {
		return before, err
	}
	p.Apply(&s.reviews[i])
	return before, nil
}

func (s *Store) AddBusiness(b domain.Business) {
	s.mu.Lock()
	s.businesses = append(s.businesses, b)
	s.mu.Unlock()
}

func (s *Store) AddReviews(list []domain.Review) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range list {
		s.index[r.ID] = len(s.reviews)
		s.reviews = append(s.reviews, r.Clone())
	}
}

func (s *Store) Review(id int64) (domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	return s.reviews[i].Clone(), nil
}

func (s *Store) Reviews() []domain.Review {
	return s.Filter(domain.Filter{})
}

func (s *Store) Businesses() []domain.Business {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Business(nil), s.businesses...)
}

// Filter returns the reviews matching f in store order.
func (s *Store) Filter(f domain.Filter) []domain.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Review, 0, len(s.reviews))
	for _, r := range s.reviews {
		if f.Match(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}

// HasBusiness reports whether a business with this name exists, ignoring case.
func (s *Store) HasBusiness(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.businesses {
		if strings.EqualFold(b.Name, name) {
			return true
		}
	}
	return false
}

// Snapshot copies the whole local state.
func (s *Store) Snapshot() domain.Snapshot {
	return domain.Snapshot{Reviews: s.Reviews(), Businesses: s.Businesses()}
}
