package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/hr-engine/hr"
)

// =============================================================================
// RECRUITMENT HANDLERS
// =============================================================================

// ListRecruitment returns one page of recruitment records.
// GET /api/recruitment?status=&search=&startDate=&endDate=&page=&limit=
func (h *Handler) ListRecruitment(w http.ResponseWriter, r *http.Request) {
	from, okFrom := queryDate(r, "startDate")
	to, okTo := queryDate(r, "endDate")
	if !okFrom || !okTo {
		writeError(w, http.StatusBadRequest, "Invalid date range", nil)
		return
	}
	q := r.URL.Query()
	filter := hr.RecruitmentFilter{
		Status:  hr.RecruitmentStatus(q.Get("status")),
		Keyword: strings.TrimSpace(q.Get("search")),
		From:    from,
		To:      to,
		Page:    pageFromQuery(r),
	}

	records, total, err := h.Store.ListRecruitment(r.Context(), filter)
	if err != nil {
		h.writeDomainError(w, r, "Failed to list recruitment records", err)
		return
	}
	dtos := make([]RecruitmentDTO, len(records))
	for i, rec := range records {
		dtos[i] = toRecruitmentDTO(rec)
	}
	writeJSON(w, http.StatusOK, newListResponse(dtos, total, filter.Page))
}

// CreateRecruitment records an interview.
// POST /api/recruitment
func (h *Handler) CreateRecruitment(w http.ResponseWriter, r *http.Request) {
	var req RecruitmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rec, err := req.record()
	if err != nil {
		h.writeDomainError(w, r, "Invalid recruitment record", err)
		return
	}
	now := h.now()
	rec.Normalize()
	if err := hr.ValidateRecruitment(rec, now); err != nil {
		h.writeDomainError(w, r, "Invalid recruitment record", err)
		return
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt, rec.UpdatedAt = now, now

	if err := h.Store.CreateRecruitment(r.Context(), rec); err != nil {
		h.writeDomainError(w, r, "Failed to create recruitment record", err)
		return
	}
	h.invalidate(r.Context(), keyRecruitment, keyDashboard)
	writeJSON(w, http.StatusCreated, toRecruitmentDTO(rec))
}

// GetRecruitment returns a single record.
// GET /api/recruitment/{id}
func (h *Handler) GetRecruitment(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.GetRecruitment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get recruitment record", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecruitmentDTO(rec))
}

// UpdateRecruitment replaces a record. A masked id card in the body keeps
// the stored number.
// PUT /api/recruitment/{id}
func (h *Handler) UpdateRecruitment(w http.ResponseWriter, r *http.Request) {
	var req RecruitmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	existing, err := h.Store.GetRecruitment(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get recruitment record", err)
		return
	}
	if strings.Contains(req.IDCard, "*") {
		req.IDCard = existing.IDCard
	}

	rec, err := req.record()
	if err != nil {
		h.writeDomainError(w, r, "Invalid recruitment record", err)
		return
	}
	now := h.now()
	rec.Normalize()
	if err := hr.ValidateRecruitment(rec, now); err != nil {
		h.writeDomainError(w, r, "Invalid recruitment record", err)
		return
	}
	rec.ID = existing.ID
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = now

	if err := h.Store.UpdateRecruitment(ctx, rec); err != nil {
		h.writeDomainError(w, r, "Failed to update recruitment record", err)
		return
	}
	h.invalidate(ctx, keyRecruitment, keyDashboard)
	writeJSON(w, http.StatusOK, toRecruitmentDTO(rec))
}

// DeleteRecruitment removes a record.
// DELETE /api/recruitment/{id} (admin)
func (h *Handler) DeleteRecruitment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteRecruitment(r.Context(), id); err != nil {
		h.writeDomainError(w, r, "Failed to delete recruitment record", err)
		return
	}
	h.invalidate(r.Context(), keyRecruitment, keyDashboard)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// GetRecruitmentStatistics returns the recruitment statistics page.
// GET /api/recruitment/statistics
func (h *Handler) GetRecruitmentStatistics(w http.ResponseWriter, r *http.Request) {
	report, err := cached(r.Context(), h, keyRecruitment+"statistics", func(ctx context.Context) (*hr.RecruitmentReport, error) {
		return h.Store.RecruitmentReport(ctx, h.now())
	})
	if err != nil {
		h.writeDomainError(w, r, "Failed to compute recruitment statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
