package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/hr-engine/award"
	"github.com/warp/hr-engine/hr"
)

// =============================================================================
// AWARD GENERATION
// =============================================================================

// GenerateAwards runs the annual award generation for a year. Replacing an
// already generated year (force) requires an admin token.
// POST /api/awards/generate
func (h *Handler) GenerateAwards(w http.ResponseWriter, r *http.Request) {
	var req GenerateAwardsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	force := req.Force || req.ForceRegenerate
	if force && !h.Auth.Authorized(r) {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: "Forced regeneration requires an admin token",
			Code:  CodeUnauthorized,
		})
		return
	}

	res, err := h.Generator.Generate(r.Context(), award.GenerateRequest{Year: req.Year, Force: force})
	if err != nil {
		h.writeDomainError(w, r, "Failed to generate awards", err)
		return
	}
	h.requestLogger(r).Info("awards generated via api",
		zap.Int("year", res.Year),
		zap.Bool("force", force),
		zap.Int("awarded", len(res.Records)),
	)

	awards := make([]AwardDTO, len(res.Records))
	for i, rec := range res.Records {
		awards[i] = toAwardDTO(rec)
	}
	writeJSON(w, http.StatusCreated, GenerateAwardsResponse{
		Year:       res.Year,
		Awards:     awards,
		Candidates: res.Candidates,
		Statistics: res.Statistics,
		Replaced:   res.Replaced,
	})
}

// GetTiers returns the active tier table with the rank range of each level.
// GET /api/awards/tiers
func (h *Handler) GetTiers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toTierDTOs(h.tiers()))
}

// =============================================================================
// AWARD ADMINISTRATION
// =============================================================================

// ListAwards returns one page of awards.
// GET /api/awards?year=&awardLevel=&department=&sortBy=&sortOrder=&page=&limit=
func (h *Handler) ListAwards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := award.Filter{
		Year:       queryInt(q.Get("year"), 0),
		Level:      award.Level(q.Get("awardLevel")),
		Department: q.Get("department"),
		SortBy:     award.SortField(q.Get("sortBy")),
		Descending: q.Get("sortOrder") == "desc",
		Page:       pageFromQuery(r),
	}
	if filter.Level != "" && !filter.Level.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid awardLevel", nil)
		return
	}
	if filter.SortBy != "" && !filter.SortBy.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid sortBy", nil)
		return
	}

	listings, total, err := h.Store.ListAwards(r.Context(), filter)
	if err != nil {
		h.writeDomainError(w, r, "Failed to list awards", err)
		return
	}
	dtos := make([]AwardDTO, len(listings))
	for i, l := range listings {
		dtos[i] = toListingDTO(l)
	}
	writeJSON(w, http.StatusOK, newListResponse(dtos, total, filter.Page))
}

// CreateAward enters an award by hand. The bonus follows from the level.
// POST /api/awards
func (h *Handler) CreateAward(w http.ResponseWriter, r *http.Request) {
	var req AwardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rec, err := h.tiers().NewManualRecord(req.input(), h.now())
	if err != nil {
		h.writeDomainError(w, r, "Invalid award", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.CreateAward(ctx, rec); err != nil {
		h.writeDomainError(w, r, "Failed to create award", err)
		return
	}
	h.Metrics.AddAwardsCreated(1)
	h.invalidate(ctx, keyAwards, keyDashboard)
	h.writeListing(w, r, http.StatusCreated, rec)
}

// GetAward returns a single award with the winner's employee data.
// GET /api/awards/{id}
func (h *Handler) GetAward(w http.ResponseWriter, r *http.Request) {
	l, err := h.Store.GetAward(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get award", err)
		return
	}
	writeJSON(w, http.StatusOK, toListingDTO(l))
}

// UpdateAward edits an award by hand.
// PUT /api/awards/{id}
func (h *Handler) UpdateAward(w http.ResponseWriter, r *http.Request) {
	var req AwardRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	existing, err := h.Store.GetAward(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get award", err)
		return
	}
	rec, err := h.tiers().ApplyManual(existing.Record, req.input(), h.now())
	if err != nil {
		h.writeDomainError(w, r, "Invalid award", err)
		return
	}

	if err := h.Store.UpdateAward(ctx, rec); err != nil {
		h.writeDomainError(w, r, "Failed to update award", err)
		return
	}
	h.invalidate(ctx, keyAwards, keyDashboard)
	h.writeListing(w, r, http.StatusOK, rec)
}

// DeleteAward removes one award.
// DELETE /api/awards/{id} (admin)
func (h *Handler) DeleteAward(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.DeleteAward(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to delete award", err)
		return
	}
	h.invalidate(r.Context(), keyAwards, keyDashboard)
	h.requestLogger(r).Info("award deleted",
		zap.String("award_id", rec.ID),
		zap.Int("year", rec.Year),
		zap.String("employee_id", rec.EmployeeID),
	)
	writeJSON(w, http.StatusOK, toAwardDTO(rec))
}

// writeListing answers with the stored record joined to its employee.
func (h *Handler) writeListing(w http.ResponseWriter, r *http.Request, status int, rec award.Record) {
	l, err := h.Store.GetAward(r.Context(), rec.ID)
	if err != nil {
		writeJSON(w, status, toAwardDTO(rec))
		return
	}
	writeJSON(w, status, toListingDTO(l))
}

// GetCertificate returns the data printed on an award certificate.
// GET /api/awards/{id}/certificate
func (h *Handler) GetCertificate(w http.ResponseWriter, r *http.Request) {
	l, err := h.Store.GetAward(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get award", err)
		return
	}
	writeJSON(w, http.StatusOK, CertificateDTO{
		AwardID:     l.ID,
		Year:        l.Year,
		Name:        l.EmployeeName,
		Department:  l.Department,
		Position:    l.Position,
		Level:       string(l.Level),
		LevelLabel:  l.Level.Label(),
		Rank:        l.Rank,
		BonusAmount: l.BonusAmount,
		IssuedOn:    hr.FormatDate(l.CreatedAt),
	})
}

// =============================================================================
// AWARD STATISTICS
// =============================================================================

// GetAwardStatistics returns the award statistics page for one year, or for
// every year when year is omitted.
// GET /api/awards/statistics?year=
func (h *Handler) GetAwardStatistics(w http.ResponseWriter, r *http.Request) {
	year := queryInt(r.URL.Query().Get("year"), 0)
	if year < 0 {
		writeError(w, http.StatusBadRequest, "Invalid year", nil)
		return
	}
	key := keyAwards + "statistics:all"
	if year != 0 {
		key = keyAwards + "statistics:" + strconv.Itoa(year)
	}

	report, err := cached(r.Context(), h, key, func(ctx context.Context) (*award.Report, error) {
		return award.BuildReport(ctx, h.Store, year)
	})
	if err != nil {
		h.writeDomainError(w, r, "Failed to compute award statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
