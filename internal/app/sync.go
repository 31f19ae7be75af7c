package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"reviewdesk/internal/adapters/observability"
	"reviewdesk/internal/domain"
)

// syncTx is one optimistic write against a single review: the local change is
// committed first, then pushed to the repository, and reverted to the values
// captured at begin if the push fails.
type syncTx struct {
	c       *Controller
	id      int64
	row     int
	trigger domain.Trigger
	undo    domain.Patch
}

// begin checks and applies the local step of a trigger atomically. fields names
// every review field the whole trigger may touch; their current values become
// the revert payload. step returns the local patch or an error to refuse.
func (c *Controller) begin(id int64, t domain.Trigger, fields domain.Patch,
	step func(r domain.Review) (domain.Patch, error)) (*syncTx, error) {

	var tx *syncTx
	_, err := c.store.Update(id, func(r domain.Review) (domain.Patch, error) {
		local, err := step(r)
		if err != nil {
			return domain.Patch{}, err
		}
		if r.RowIndex == nil {
			return domain.Patch{}, domain.ErrIntegrity
		}
		tx = &syncTx{c: c, id: id, row: *r.RowIndex, trigger: t, undo: fields.Merge(local).Capture(r)}
		return local, nil
	})
	switch {
	case errors.Is(err, domain.ErrIntegrity):
		log.Error().Int64("review_id", id).Str("trigger", string(t)).Msg("cannot update review without a row index")
		observability.ObserveTransition(string(t), "integrity")
	case errors.Is(err, domain.ErrIllegalTransition):
		observability.ObserveTransition(string(t), "illegal")
	}
	return tx, err
}

// commit applies p locally and syncs it. On a failed sync the captured values
// are restored and the returned error matches domain.ErrSyncFailed.
func (tx *syncTx) commit(ctx context.Context, p domain.Patch) (domain.Review, error) {
	if _, err := tx.c.store.ApplyPatch(tx.id, p); err != nil {
		return domain.Review{}, err
	}

	start := time.Now()
	err := tx.c.repo.UpdateAt(ctx, tx.row, p)
	observability.ObserveSync(err, time.Since(start))
	if err != nil {
		r, rerr := tx.c.store.ApplyPatch(tx.id, tx.undo)
		if rerr != nil {
			return domain.Review{}, rerr
		}
		log.Warn().Err(err).
			Int64("review_id", tx.id).
			Int("row", tx.row).
			Str("trigger", string(tx.trigger)).
			Strs("fields", p.Fields()).
			Msg("sync failed, change reverted")
		observability.ObserveRollback(string(tx.trigger))
		return r, fmt.Errorf("%w: %v", domain.ErrSyncFailed, err)
	}
	return tx.c.store.Review(tx.id)
}
