package app_test

import (
	"context"
	"errors"
	"sync"

	"reviewdesk/internal/domain"
)

// ---- fakes ----

type update struct {
	row   int
	patch domain.Patch
}

type fakeRepo struct {
	mu         sync.Mutex
	snap       domain.Snapshot
	fetchErr   error
	updateErr  error
	createErr  error
	updates    []update
	createHits int
}

func (f *fakeRepo) FetchAll(ctx context.Context) (domain.Snapshot, error) {
	if f.fetchErr != nil {
		return domain.Snapshot{}, f.fetchErr
	}
	return f.snap, nil
}

func (f *fakeRepo) UpdateAt(ctx context.Context, row int, p domain.Patch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, update{row: row, patch: p})
	return f.updateErr
}

func (f *fakeRepo) CreateBusinessAndDiscover(ctx context.Context, name string, cur domain.Snapshot) (domain.Business, []domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createHits++
	if f.createErr != nil {
		return domain.Business{}, nil, f.createErr
	}
	row := len(cur.Businesses) + 2
	b := domain.Business{ID: int64(len(cur.Businesses) + 1), Name: name, RowIndex: &row}
	rrow := len(cur.Reviews) + 2
	r := domain.Review{
		ID: int64(len(cur.Reviews) + 1), Author: "Pat Kim", Rating: 3, Text: "ok",
		Source: domain.SourceYelp, BusinessName: name, RowIndex: &rrow,
	}
	return b, []domain.Review{r}, nil
}

func (f *fakeRepo) Describe() domain.StoreInfo {
	return domain.StoreInfo{ID: "TEST_SHEET", Credential: "AIzaSyTESTKEY1234"}
}

func (f *fakeRepo) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

type fakeAI struct {
	mu          sync.Mutex
	analysis    domain.Analysis
	analyzeErr  error
	reply       string
	generateErr error
	analyzed    []string
	generated   []int64
	onAnalyze   func()
}

func (f *fakeAI) Analyze(ctx context.Context, text string) (domain.Analysis, error) {
	f.mu.Lock()
	f.analyzed = append(f.analyzed, text)
	hook := f.onAnalyze
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if f.analyzeErr != nil {
		return domain.Analysis{}, f.analyzeErr
	}
	return f.analysis, nil
}

func (f *fakeAI) GenerateReply(ctx context.Context, r domain.Review, a domain.Analysis) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generated = append(f.generated, r.ID)
	if f.generateErr != nil {
		return "", f.generateErr
	}
	return f.reply, nil
}

var errUpstream = errors.New("upstream exploded")

func row(i int) *int { return &i }
