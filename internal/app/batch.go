package app

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"reviewdesk/internal/adapters/observability"
	"reviewdesk/internal/domain"
)

// Batch replays single-review triggers over the operator's selection.
// Items run strictly one after another on a single worker.
type Batch struct {
	ctl *Controller

	mu       sync.Mutex
	selected []int64
	running  bool
}

func NewBatch(c *Controller) *Batch { return &Batch{ctl: c} }

type BatchReport struct {
	Action    domain.Trigger `json:"action"`
	Processed []int64        `json:"processed"`
	Skipped   []int64        `json:"skipped"`
	Failed    []int64        `json:"failed"`
}

// BatchSummary backs the batch bar of the dashboard.
type BatchSummary struct {
	Selectable  int     `json:"selectable"`
	Selected    []int64 `json:"selected"`
	ToAnalyze   int     `json:"toAnalyze"`
	ToGenerate  int     `json:"toGenerate"`
	AllSelected bool    `json:"allSelected"`
}

func (b *Batch) Select(id int64) error {
	if _, err := b.ctl.store.Review(id); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.selected {
		if s == id {
			return nil
		}
	}
	b.selected = append(b.selected, id)
	return nil
}

func (b *Batch) Deselect(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.selected {
		if s == id {
			b.selected = append(b.selected[:i], b.selected[i+1:]...)
			return
		}
	}
}

func (b *Batch) Clear() {
	b.mu.Lock()
	b.selected = nil
	b.mu.Unlock()
}

// Selected returns the selection in the order it was made.
func (b *Batch) Selected() []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int64(nil), b.selected...)
}

// SelectAll replaces the selection with every review in the filtered view
// that some batch action can currently run on.
func (b *Batch) SelectAll(f domain.Filter) []int64 {
	var ids []int64
	for _, r := range b.ctl.store.Filter(f) {
		if r.Selectable() {
			ids = append(ids, r.ID)
		}
	}
	b.mu.Lock()
	b.selected = ids
	b.mu.Unlock()
	return append([]int64(nil), ids...)
}

func (b *Batch) Summary(f domain.Filter) BatchSummary {
	sel := b.Selected()
	in := make(map[int64]bool, len(sel))
	for _, id := range sel {
		in[id] = true
	}
	out := BatchSummary{Selected: sel}
	for _, r := range b.ctl.store.Filter(f) {
		if r.Selectable() {
			out.Selectable++
		}
		if !in[r.ID] {
			continue
		}
		switch r.Status {
		case domain.StatusPendingAnalysis:
			out.ToAnalyze++
		case domain.StatusPendingResponse:
			out.ToGenerate++
		}
	}
	out.AllSelected = out.Selectable > 0 && len(sel) == out.Selectable
	return out
}

func (b *Batch) AnalyzeSelected(ctx context.Context) (BatchReport, error) {
	return b.run(ctx, domain.TriggerAnalyze)
}

func (b *Batch) GenerateSelected(ctx context.Context) (BatchReport, error) {
	return b.run(ctx, domain.TriggerGenerate)
}

type workItem struct {
	id     int64
	action domain.Trigger
}

func (b *Batch) run(ctx context.Context, action domain.Trigger) (BatchReport, error) {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return BatchReport{}, domain.ErrBatchInProgress
	}
	b.running = true
	queued := make(map[int64]bool, len(b.selected))
	queue := make(chan workItem, len(b.selected))
	for _, id := range b.selected {
		queued[id] = true
		queue <- workItem{id: id, action: action}
	}
	close(queue)
	b.mu.Unlock()

	// only the queued ids leave the selection; picks made during the run stay
	defer func() {
		b.mu.Lock()
		kept := b.selected[:0]
		for _, id := range b.selected {
			if !queued[id] {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			kept = nil
		}
		b.selected = kept
		b.running = false
		b.mu.Unlock()
	}()

	rep := BatchReport{Action: action}
	for it := range queue {
		r, err := b.ctl.store.Review(it.id)
		if err != nil || !domain.Allowed(r, it.action) {
			rep.Skipped = append(rep.Skipped, it.id)
			observability.ObserveBatchItem(string(action), "skipped")
			continue
		}

		switch it.action {
		case domain.TriggerAnalyze:
			_, err = b.ctl.Analyze(ctx, it.id)
		case domain.TriggerGenerate:
			_, err = b.ctl.Generate(ctx, it.id)
		}
		if errors.Is(err, domain.ErrIllegalTransition) {
			// status moved between the check and the call
			rep.Skipped = append(rep.Skipped, it.id)
			observability.ObserveBatchItem(string(action), "skipped")
			continue
		}
		if err != nil {
			log.Warn().Err(err).Int64("review_id", it.id).Str("action", string(action)).Msg("batch item failed")
			rep.Failed = append(rep.Failed, it.id)
			observability.ObserveBatchItem(string(action), "failed")
			continue
		}
		rep.Processed = append(rep.Processed, it.id)
		observability.ObserveBatchItem(string(action), "processed")
	}

	log.Info().
		Str("action", string(action)).
		Int("processed", len(rep.Processed)).
		Int("skipped", len(rep.Skipped)).
		Int("failed", len(rep.Failed)).
		Msg("batch finished")
	return rep, nil
}
