package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/hr-engine/hr"
)

// =============================================================================
// SCORE HANDLERS
// =============================================================================

// ListScores returns one page of score events.
// GET /api/scores?employeeId=&behaviorType=&startDate=&endDate=&sortBy=&sortOrder=&page=&limit=
func (h *Handler) ListScores(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, okFrom := queryDate(r, "startDate")
	to, okTo := queryDate(r, "endDate")
	if !okFrom || !okTo {
		writeError(w, http.StatusBadRequest, "Invalid date range", nil)
		return
	}

	filter := hr.ScoreFilter{
		EmployeeID: q.Get("employeeId"),
		Behavior:   hr.Behavior(q.Get("behaviorType")),
		From:       from,
		To:         to,
		SortBy:     hr.ScoreSort(q.Get("sortBy")),
		Ascending:  q.Get("sortOrder") == "asc",
		Page:       pageFromQuery(r),
	}
	if filter.SortBy != "" && filter.SortBy != hr.SortByRecordDate && filter.SortBy != hr.SortByScoreChange {
		writeError(w, http.StatusBadRequest, "Invalid sortBy", nil)
		return
	}

	records, total, err := h.Store.ListScores(r.Context(), filter)
	if err != nil {
		h.writeDomainError(w, r, "Failed to list scores", err)
		return
	}
	dtos := make([]ScoreDTO, len(records))
	for i, rec := range records {
		dtos[i] = toScoreDTO(rec)
	}
	writeJSON(w, http.StatusOK, newListResponse(dtos, total, filter.Page))
}

// CreateScore records a behavior event. The score change comes from the
// behavior catalog.
// POST /api/scores
func (h *Handler) CreateScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.writeDomainError(w, r, "Invalid score record", err)
		return
	}
	rec, err := hr.NewScoreRecord(in, h.now())
	if err != nil {
		h.writeDomainError(w, r, "Invalid score record", err)
		return
	}

	if err := h.Store.CreateScore(r.Context(), rec); err != nil {
		h.writeDomainError(w, r, "Failed to create score record", err)
		return
	}
	if def, ok := hr.LookupBehavior(rec.Behavior); ok {
		h.Metrics.RecordScoreEvent(string(def.Kind))
	}
	h.invalidate(r.Context(), keyScores, keyEmployees, keyDashboard)

	writeJSON(w, http.StatusCreated, toScoreDTO(rec))
}

// GetScore returns a single score event.
// GET /api/scores/{id}
func (h *Handler) GetScore(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.GetScore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get score record", err)
		return
	}
	writeJSON(w, http.StatusOK, toScoreDTO(rec))
}

// UpdateScore rewrites an event. Changing the behavior re-derives the score.
// PUT /api/scores/{id}
func (h *Handler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	existing, err := h.Store.GetScore(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get score record", err)
		return
	}

	// Omitted fields keep their stored values.
	if req.EmployeeID == "" {
		req.EmployeeID = existing.EmployeeID
	}
	if req.RecordDate == "" {
		req.RecordDate = hr.FormatDate(existing.RecordDate)
	}
	if req.Behavior == "" {
		req.Behavior = string(existing.Behavior)
	}
	if req.Reason == "" {
		req.Reason = existing.Reason
	}
	if req.RecordedBy == "" {
		req.RecordedBy = existing.RecordedBy
	}

	in, err := req.input()
	if err != nil {
		h.writeDomainError(w, r, "Invalid score record", err)
		return
	}
	now := h.now()
	rec, err := hr.NewScoreRecord(in, now)
	if err != nil {
		h.writeDomainError(w, r, "Invalid score record", err)
		return
	}
	rec.ID = existing.ID
	rec.CreatedAt = existing.CreatedAt

	if err := h.Store.UpdateScore(ctx, rec); err != nil {
		h.writeDomainError(w, r, "Failed to update score record", err)
		return
	}
	h.invalidate(ctx, keyScores, keyEmployees, keyDashboard)

	writeJSON(w, http.StatusOK, toScoreDTO(rec))
}

// DeleteScore removes an event and recomputes the employee's total.
// DELETE /api/scores/{id} (admin)
func (h *Handler) DeleteScore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteScore(r.Context(), id, h.now()); err != nil {
		h.writeDomainError(w, r, "Failed to delete score record", err)
		return
	}
	h.invalidate(r.Context(), keyScores, keyEmployees, keyDashboard)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// ListBehaviors returns the behavior catalog.
// GET /api/scores/behaviors
func (h *Handler) ListBehaviors(w http.ResponseWriter, r *http.Request) {
	deductions, additions := hr.Behaviors()
	writeJSON(w, http.StatusOK, BehaviorsResponse{Deductions: deductions, Additions: additions})
}

// GetScoreStatistics returns the score statistics page.
// GET /api/scores/statistics
func (h *Handler) GetScoreStatistics(w http.ResponseWriter, r *http.Request) {
	report, err := cached(r.Context(), h, keyScores+"statistics", func(ctx context.Context) (*hr.ScoreReport, error) {
		return h.Store.ScoreReport(ctx, h.now())
	})
	if err != nil {
		h.writeDomainError(w, r, "Failed to compute score statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
