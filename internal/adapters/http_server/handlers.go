package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"reviewdesk/internal/app"
	"reviewdesk/internal/domain"
)

type Handlers struct {
	Ctl   *app.Controller
	Batch *app.Batch
}

type problem struct {
	Type           string `json:"type"`
	Title          string `json:"title"`
	Status         int    `json:"status"`
	Detail         string `json:"detail,omitempty"`
	StoreID        string `json:"storeId,omitempty"`
	CredentialHint string `json:"credentialHint,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/view", h.view)
		r.Get("/dashboard", h.dashboard)
		r.Get("/admin", h.admin)
		r.Post("/admin/businesses", h.addBusiness)
		r.Post("/reload", h.reload)

		r.Get("/reviews/{id}", h.getReview)
		r.Post("/reviews/{id}/{action}", h.trigger)
		r.Put("/reviews/{id}/response", h.editResponse)

		r.Get("/selection", h.selection)
		r.Delete("/selection", h.clearSelection)
		r.Post("/selection/all", h.selectAll)
		r.Post("/selection/{id}", h.selectOne)
		r.Delete("/selection/{id}", h.deselectOne)

		r.Post("/batch/{action}", h.runBatch)
	})
}

/********** responses **********/

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeProblem(w http.ResponseWriter, p problem) {
	if p.Type == "" {
		p.Type = "about:blank"
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// problemFor maps domain errors onto HTTP problems.
func problemFor(err error) problem {
	var cerr *domain.ConnectionError
	switch {
	case errors.As(err, &cerr):
		return problem{
			Title: "Connection Error", Status: http.StatusServiceUnavailable, Detail: cerr.Message,
			StoreID: cerr.StoreID, CredentialHint: cerr.CredentialHint,
		}
	case errors.Is(err, domain.ErrSyncFailed):
		return problem{Title: "Change reverted", Status: http.StatusBadGateway, Detail: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return problem{Title: "Not Found", Status: http.StatusNotFound, Detail: err.Error()}
	case errors.Is(err, domain.ErrIllegalTransition):
		return problem{Title: "Action not allowed", Status: http.StatusConflict, Detail: err.Error()}
	case errors.Is(err, domain.ErrDuplicateBusiness):
		return problem{Title: "Business already exists", Status: http.StatusConflict, Detail: err.Error()}
	case errors.Is(err, domain.ErrBatchInProgress):
		return problem{Title: "Batch in progress", Status: http.StatusConflict, Detail: err.Error()}
	case errors.Is(err, domain.ErrInvalidInput):
		return problem{Title: "Invalid input", Status: http.StatusBadRequest, Detail: err.Error()}
	case errors.Is(err, domain.ErrAddBusiness):
		return problem{Title: "Failed to add new business", Status: http.StatusBadGateway, Detail: err.Error()}
	}
	log.Error().Err(err).Msg("unmapped error")
	return problem{Title: "Internal Server Error", Status: http.StatusInternalServerError}
}

// writeReviewResult reports the outcome of a single-review trigger. AI failures
// and integrity aborts still answer 200 with the review as it now stands.
func writeReviewResult(w http.ResponseWriter, r domain.Review, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, r)
	case errors.Is(err, domain.ErrSyncFailed):
		writeProblem(w, problemFor(err))
	case errors.Is(err, domain.ErrAnalysisFailed), errors.Is(err, domain.ErrGenerationFailed),
		errors.Is(err, domain.ErrIntegrity):
		writeJSON(w, http.StatusOK, r)
	default:
		writeProblem(w, problemFor(err))
	}
}

/********** request parsing **********/

func reviewID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidInput
	}
	return id, nil
}

func filterFrom(r *http.Request) (domain.Filter, error) {
	q := r.URL.Query()
	return domain.ParseFilter(q.Get("business"), q.Get("source"), q.Get("rating"), q.Get("sentiment"))
}

// detached keeps a trigger running to completion if the client goes away.
func detached(r *http.Request) context.Context { return context.WithoutCancel(r.Context()) }

/********** views **********/

type filterOptions struct {
	Businesses []string              `json:"businesses"`
	Sources    []domain.ReviewSource `json:"sources"`
	Ratings    []int                 `json:"ratings"`
	Sentiments []domain.Sentiment    `json:"sentiments"`
}

type dashboardView struct {
	Reviews    []domain.Review   `json:"reviews"`
	Businesses []domain.Business `json:"businesses"`
	Options    filterOptions     `json:"options"`
	Batch      app.BatchSummary  `json:"batch"`
	Filter     domain.Filter     `json:"filter"`
}

type adminView struct {
	Businesses []domain.Business `json:"businesses"`
}

func (h *Handlers) dashboardData(f domain.Filter) dashboardView {
	s := h.Ctl.Store()
	bs := s.Businesses()
	names := make([]string, 0, len(bs))
	for _, b := range bs {
		names = append(names, b.Name)
	}
	return dashboardView{
		Reviews:    s.Filter(f),
		Businesses: bs,
		Options: filterOptions{
			Businesses: names,
			Sources:    domain.Sources,
			Ratings:    []int{5, 4, 3, 2, 1},
			Sentiments: []domain.Sentiment{domain.SentimentPositive, domain.SentimentNegative, domain.SentimentNeutral},
		},
		Batch:  h.Batch.Summary(f),
		Filter: f,
	}
}

// view resolves a navigation token to its screen.
func (h *Handlers) view(w http.ResponseWriter, r *http.Request) {
	if err := h.Ctl.Store().LoadErr(); err != nil {
		writeProblem(w, problemFor(err))
		return
	}
	route := domain.ParseRoute(r.URL.Query().Get("route"))
	out := map[string]any{"route": route}
	if route == domain.RouteAdmin {
		out["admin"] = adminView{Businesses: h.Ctl.Store().Businesses()}
	} else {
		out["dashboard"] = h.dashboardData(domain.Filter{})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	if err := h.Ctl.Store().LoadErr(); err != nil {
		writeProblem(w, problemFor(err))
		return
	}
	f, err := filterFrom(r)
	if err != nil {
		writeProblem(w, problem{Title: "Invalid filter", Status: http.StatusBadRequest, Detail: "rating must be All or 1..5"})
		return
	}
	writeJSON(w, http.StatusOK, h.dashboardData(f))
}

func (h *Handlers) admin(w http.ResponseWriter, r *http.Request) {
	if err := h.Ctl.Store().LoadErr(); err != nil {
		writeProblem(w, problemFor(err))
		return
	}
	writeJSON(w, http.StatusOK, adminView{Businesses: h.Ctl.Store().Businesses()})
}

func (h *Handlers) addBusiness(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeProblem(w, problem{Title: "Invalid body", Status: http.StatusBadRequest, Detail: "expected {\"name\": \"...\"}"})
		return
	}
	b, rs, err := h.Ctl.AddBusiness(detached(r), body.Name)
	if err != nil {
		writeProblem(w, problemFor(err))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"business": b, "reviews": rs})
}

func (h *Handlers) reload(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Ctl.Store().Load(r.Context())
	if err != nil {
		writeProblem(w, problemFor(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"reviews": len(snap.Reviews), "businesses": len(snap.Businesses)})
}

/********** single review **********/

func (h *Handlers) getReview(w http.ResponseWriter, r *http.Request) {
	id, err := reviewID(r)
	if err != nil {
		writeProblem(w, problemFor(err))
		return
	}
	rev, err := h.Ctl.Store().Review(id)
	if err != nil {
		writeProblem(w, problemFor(err))
		return
	}
	writeJSON(w, http.StatusOK, rev)
}

func (h *Handlers) trigger(w http.ResponseWriter, r *http.Request) {
	id, err := reviewID(r)
	if err != nil {
		writeProblem(w, problemFor(err))
		return
	}
	var run func(context.Context, int64) (domain.Review, error)
	switch domain.Trigger(chi.URLParam(r, "action")) {
	case domain.TriggerAnalyze:
		run = h.Ctl.Analyze
	case domain.TriggerGenerate:
		run = h.Ctl.Generate
	case domain.TriggerApprove:
		run = h.Ctl.Approve
	case domain.TriggerDiscard:
		run = h.Ctl.Discard
	case domain.TriggerRetry:
		run = h.Ctl.Retry
	default:
		writeProblem(w, problem{Title: "Not Found", Status: http.StatusNotFound, Detail: "unknown action"})
		return
	}
	rev, err := run(detached(r), id)
	writeReviewResult(w, rev, err)
}

func (h *Handlers) editResponse(w http.ResponseWriter, r *http.Request) {
	id, err := reviewID(r)
	if err != nil {
		writeProblem(w, problemFor(err))
		return
	}
	var body struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeProblem(w, problem{Title: "Invalid body", Status: http.StatusBadRequest, Detail: "expected {\"response\": \"...\"}"})
		return
	}
	rev, err := h.Ctl.Edit(detached(r), id, body.Response)
	writeReviewResult(w, rev, err)
}

/********** selection & batch **********/

func (h *Handlers) selection(w http.ResponseWriter, r *http.Request) {
	f, err := filterFrom(r)
	if err != nil {
		writeProblem(w, problemFor(err))
		return
	}
	writeJSON(w, http.StatusOK, h.Batch.Summary(f))
}

func (h *Handlers) selectOne(w http.ResponseWriter, r *http.Request) {
	id, err := reviewID(r)
	if err == nil {
		err = h.Batch.Select(id)
	}
	if err != nil {
		writeProblem(w, problemFor(err))
		return
	}
	h.selection(w, r)
}

func (h *Handlers) deselectOne(w http.ResponseWriter, r *http.Request) {
	id, err := reviewID(r)
	if err != nil {
		writeProblem(w, problemFor(err))
		return
	}
	h.Batch.Deselect(id)
	h.selection(w, r)
}

func (h *Handlers) clearSelection(w http.ResponseWriter, r *http.Request) {
	h.Batch.Clear()
	h.selection(w, r)
}

func (h *Handlers) selectAll(w http.ResponseWriter, r *http.Request) {
	f, err := filterFrom(r)
	if err != nil {
		writeProblem(w, problemFor(err))
		return
	}
	h.Batch.SelectAll(f)
	writeJSON(w, http.StatusOK, h.Batch.Summary(f))
}

func (h *Handlers) runBatch(w http.ResponseWriter, r *http.Request) {
	var (
		rep app.BatchReport
		err error
	)
	switch domain.Trigger(chi.URLParam(r, "action")) {
	case domain.TriggerAnalyze:
		rep, err = h.Batch.AnalyzeSelected(detached(r))
	case domain.TriggerGenerate:
		rep, err = h.Batch.GenerateSelected(detached(r))
	default:
		writeProblem(w, problem{Title: "Not Found", Status: http.StatusNotFound, Detail: "unknown batch action"})
		return
	}
	if err != nil {
		writeProblem(w, problemFor(err))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
