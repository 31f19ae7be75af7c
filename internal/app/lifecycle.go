package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"reviewdesk/internal/adapters/observability"
	"reviewdesk/internal/domain"
)

// Controller drives reviews through the analysis -> reply -> approval pipeline.
// Every mutating trigger goes through begin/commit so local state is updated
// before the remote write and reverted if that write fails.
type Controller struct {
	store *Store
	repo  domain.ReviewRepository
	ai    domain.Assistant

	addMu sync.Mutex
}

func NewController(s *Store, repo domain.ReviewRepository, ai domain.Assistant) *Controller {
	return &Controller{store: s, repo: repo, ai: ai}
}

func (c *Controller) Store() *Store { return c.store }

// aiStepFields names every field an AI step may write; only the Set flags matter.
var aiStepFields = domain.Patch{
	Status:       domain.Set(domain.Status("")),
	Analysis:     domain.Set[*domain.Analysis](nil),
	Response:     domain.Set(""),
	ErrorMessage: domain.Set(""),
}

// Analyze classifies a PendingAnalysis review.
func (c *Controller) Analyze(ctx context.Context, id int64) (domain.Review, error) {
	return c.analyze(ctx, id, false)
}

// Generate drafts a reply for a PendingResponse review that has an analysis.
func (c *Controller) Generate(ctx context.Context, id int64) (domain.Review, error) {
	return c.generate(ctx, id, false)
}

// Retry re-runs whichever AI step of a failed review has no output yet.
func (c *Controller) Retry(ctx context.Context, id int64) (domain.Review, error) {
	r, err := c.store.Review(id)
	if err != nil {
		return domain.Review{}, err
	}
	if !domain.Allowed(r, domain.TriggerRetry) {
		observability.ObserveTransition(string(domain.TriggerRetry), "illegal")
		return r, domain.ErrIllegalTransition
	}
	if domain.RetryStep(r) == domain.TriggerAnalyze {
		return c.analyze(ctx, id, true)
	}
	return c.generate(ctx, id, true)
}

// stepGuard admits the AI step either directly or, for a retry, out of Error.
func stepGuard(r domain.Review, step domain.Trigger, retry bool) error {
	if retry {
		if r.Status != domain.StatusError || domain.RetryStep(r) != step {
			return domain.ErrIllegalTransition
		}
		return nil
	}
	if !domain.Allowed(r, step) {
		return domain.ErrIllegalTransition
	}
	return nil
}

func (c *Controller) analyze(ctx context.Context, id int64, retry bool) (domain.Review, error) {
	var text string
	tx, err := c.begin(id, domain.TriggerAnalyze, aiStepFields, func(r domain.Review) (domain.Patch, error) {
		if err := stepGuard(r, domain.TriggerAnalyze, retry); err != nil {
			return domain.Patch{}, err
		}
		next, _ := domain.Next(r.Status, domain.TriggerAnalyze)
		text = r.Text
		return domain.Patch{Status: domain.Set(next), ErrorMessage: domain.Set("")}, nil
	})
	if err != nil {
		return c.current(id), err
	}

	a, aerr := c.ai.Analyze(ctx, text)
	var result domain.Patch
	if aerr != nil {
		log.Error().Err(aerr).Int64("review_id", id).Msg("analysis failed")
		to, _ := domain.Next(domain.StatusAnalyzing, domain.TriggerFail)
		result = domain.Patch{Status: domain.Set(to), ErrorMessage: domain.Set(domain.MsgAnalysisFailed)}
	} else {
		to, _ := domain.Next(domain.StatusAnalyzing, domain.TriggerSucceed)
		result = domain.Patch{Status: domain.Set(to), Analysis: domain.Set(&a), ErrorMessage: domain.Set("")}
	}
	r, serr := tx.commit(ctx, result)
	return r, c.outcome(domain.TriggerAnalyze, id, aerr, domain.ErrAnalysisFailed, serr)
}

func (c *Controller) generate(ctx context.Context, id int64, retry bool) (domain.Review, error) {
	var cur domain.Review
	tx, err := c.begin(id, domain.TriggerGenerate, aiStepFields, func(r domain.Review) (domain.Patch, error) {
		if err := stepGuard(r, domain.TriggerGenerate, retry); err != nil {
			return domain.Patch{}, err
		}
		next, _ := domain.Next(r.Status, domain.TriggerGenerate)
		cur = r
		return domain.Patch{Status: domain.Set(next), ErrorMessage: domain.Set("")}, nil
	})
	if err != nil {
		return c.current(id), err
	}

	reply, gerr := c.ai.GenerateReply(ctx, cur, *cur.Analysis)
	var result domain.Patch
	if gerr != nil {
		log.Error().Err(gerr).Int64("review_id", id).Msg("reply generation failed")
		to, _ := domain.Next(domain.StatusGenerating, domain.TriggerFail)
		result = domain.Patch{Status: domain.Set(to), ErrorMessage: domain.Set(domain.MsgGenerationFailed)}
	} else {
		to, _ := domain.Next(domain.StatusGenerating, domain.TriggerSucceed)
		result = domain.Patch{Status: domain.Set(to), Response: domain.Set(reply), ErrorMessage: domain.Set("")}
	}
	r, serr := tx.commit(ctx, result)
	return r, c.outcome(domain.TriggerGenerate, id, gerr, domain.ErrGenerationFailed, serr)
}

// outcome folds the AI error and the sync error of one step into the returned error.
func (c *Controller) outcome(t domain.Trigger, id int64, aiErr, kind, syncErr error) error {
	var stepErr error
	switch {
	case aiErr == nil:
	case errors.Is(aiErr, kind):
		stepErr = aiErr
	default:
		stepErr = fmt.Errorf("%w: %v", kind, aiErr)
	}
	switch {
	case syncErr != nil:
		observability.ObserveTransition(string(t), "sync_failed")
		return errors.Join(stepErr, syncErr)
	case stepErr != nil:
		observability.ObserveTransition(string(t), "ai_failed")
		return stepErr
	}
	observability.ObserveTransition(string(t), "ok")
	log.Info().Int64("review_id", id).Str("trigger", string(t)).Msg("review advanced")
	return nil
}

// Approve marks a drafted reply as final.
func (c *Controller) Approve(ctx context.Context, id int64) (domain.Review, error) {
	return c.simple(ctx, id, domain.TriggerApprove, func(r domain.Review) (domain.Patch, error) {
		next, _ := domain.Next(r.Status, domain.TriggerApprove)
		return domain.Patch{Status: domain.Set(next)}, nil
	})
}

// Discard drops the drafted reply and sends the review back to PendingResponse.
func (c *Controller) Discard(ctx context.Context, id int64) (domain.Review, error) {
	return c.simple(ctx, id, domain.TriggerDiscard, func(r domain.Review) (domain.Patch, error) {
		next, _ := domain.Next(r.Status, domain.TriggerDiscard)
		return domain.Patch{Status: domain.Set(next), Response: domain.Set("")}, nil
	})
}

// Edit replaces the reply text of any review that has one. The status is kept.
func (c *Controller) Edit(ctx context.Context, id int64, text string) (domain.Review, error) {
	if strings.TrimSpace(text) == "" {
		return c.current(id), domain.ErrInvalidInput
	}
	return c.simple(ctx, id, domain.TriggerEdit, func(domain.Review) (domain.Patch, error) {
		return domain.Patch{Response: domain.Set(text)}, nil
	})
}

// simple runs a trigger with no AI step: guard, optimistic write, sync.
func (c *Controller) simple(ctx context.Context, id int64, t domain.Trigger,
	build func(r domain.Review) (domain.Patch, error)) (domain.Review, error) {

	var p domain.Patch
	tx, err := c.begin(id, t, domain.Patch{}, func(r domain.Review) (domain.Patch, error) {
		if !domain.Allowed(r, t) {
			return domain.Patch{}, domain.ErrIllegalTransition
		}
		var err error
		p, err = build(r)
		return p, err
	})
	if err != nil {
		return c.current(id), err
	}
	r, serr := tx.commit(ctx, p)
	return r, c.outcome(t, id, nil, nil, serr)
}

// AddBusiness registers a business and pulls in its discovered reviews.
// Names are unique ignoring case; a duplicate is refused before any remote call.
// While the last load failed the call returns that *domain.ConnectionError.
func (c *Controller) AddBusiness(ctx context.Context, name string) (domain.Business, []domain.Review, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Business{}, nil, domain.ErrInvalidInput
	}

	c.addMu.Lock()
	defer c.addMu.Unlock()

	// without a loaded snapshot the duplicate check below cannot be trusted
	if err := c.store.LoadErr(); err != nil {
		log.Warn().Err(err).Str("business", name).Msg("add business refused, store not loaded")
		return domain.Business{}, nil, err
	}
	if c.store.HasBusiness(name) {
		log.Warn().Str("business", name).Msg("business already exists")
		return domain.Business{}, nil, domain.ErrDuplicateBusiness
	}

	b, rs, err := c.repo.CreateBusinessAndDiscover(ctx, name, c.store.Snapshot())
	if err != nil {
		log.Error().Err(err).Str("business", name).Msg("add business failed")
		return domain.Business{}, nil, fmt.Errorf("%w: %v", domain.ErrAddBusiness, err)
	}
	for i := range rs {
		if rs[i].Status == "" {
			rs[i].Status = domain.StatusPendingAnalysis
		}
	}
	c.store.AddBusiness(b)
	c.store.AddReviews(rs)

	log.Info().Str("business", b.Name).Int("reviews", len(rs)).Msg("business added")
	return b, rs, nil
}

func (c *Controller) current(id int64) domain.Review {
	r, _ := c.store.Review(id)
	return r
}
