package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"reviewdesk/internal/domain"
)

// Triage runs unattended analysis and reply drafting, one batch per business.
// Replies still wait for an operator's approval.
type Triage struct {
	ctl *Controller
}

func NewTriage(c *Controller) *Triage { return &Triage{ctl: c} }

type TriageResult struct {
	Business string
	Analyze  BatchReport
	Generate BatchReport
	Err      error
}

// Business analyzes every PendingAnalysis review of one business, then drafts
// replies for everything left in PendingResponse.
func (t *Triage) Business(ctx context.Context, name string) TriageResult {
	res := TriageResult{Business: name}
	f := domain.Filter{Business: name}
	b := NewBatch(t.ctl)

	b.SelectAll(f)
	if res.Analyze, res.Err = b.AnalyzeSelected(ctx); res.Err != nil {
		return res
	}
	b.SelectAll(f)
	res.Generate, res.Err = b.GenerateSelected(ctx)
	return res
}

// Run triages every known business with at most workers in flight.
func (t *Triage) Run(ctx context.Context, workers int) []TriageResult {
	if workers <= 0 {
		workers = 1
	}
	businesses := t.ctl.store.Businesses()
	out := make([]TriageResult, len(businesses))
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	for i, biz := range businesses {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			out[i] = TriageResult{Business: biz.Name, Err: err}
			continue
		}
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			defer sem.Release(1)

			out[i] = t.Business(ctx, name)
			if out[i].Err != nil {
				log.Warn().Str("business", name).Err(out[i].Err).Msg("triage failed")
				return
			}
			log.Info().
				Str("business", name).
				Int("analyzed", len(out[i].Analyze.Processed)).
				Int("drafted", len(out[i].Generate.Processed)).
				Msg("triage ok")
		}(i, biz.Name)
	}

	wg.Wait()
	return out
}
