package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// healthTimeout bounds the database probe.
const healthTimeout = 3 * time.Second

// Health reports service status, database latency and table sizes.
// The status is 503 when the database can't be reached.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	now := h.now()
	resp := HealthDTO{
		Status:    "healthy",
		Timestamp: formatTimestamp(now),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
	}

	start := time.Now()
	err := h.Store.Ping(ctx)
	var counts map[string]int
	if err == nil {
		counts, err = h.Store.TableCounts(ctx)
	}
	elapsed := time.Since(start)
	resp.DBResponseTime = elapsed.Round(time.Microsecond).String()

	if err != nil {
		h.requestLogger(r).Error("health check failed", errField(err))
		resp.Status = "unhealthy"
		resp.Error = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp.Counts = counts
	if elapsed > time.Second {
		resp.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, resp)
}

// Dashboard returns the headline numbers of the home page.
// GET /api/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dto, err := cached(r.Context(), h, keyDashboard+"summary", h.buildDashboard)
	if err != nil {
		h.writeDomainError(w, r, "Failed to build dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) buildDashboard(ctx context.Context) (DashboardDTO, error) {
	var dto DashboardDTO
	now := h.now()

	overview, err := h.Store.EmployeeOverview(ctx, now)
	if err != nil {
		return dto, err
	}
	avg, err := h.Store.AverageActiveScore(ctx)
	if err != nil {
		return dto, err
	}
	rec, err := h.Store.RecruitmentReport(ctx, now)
	if err != nil {
		return dto, err
	}
	trend, err := h.Store.YearlyTrend(ctx)
	if err != nil {
		return dto, err
	}

	dto = DashboardDTO{
		TotalInterviews: rec.Total,
		InterviewsMonth: rec.ThisMonth,
		ActiveEmployees: overview.Active,
		AverageScore:    avg,
		TrialPassRate:   rec.TrialPassRate,
	}
	if n := len(trend); n > 0 {
		latest := trend[n-1]
		dto.LatestAwardYear = latest.Year
		dto.LatestAwardsTotal = latest.TotalBonus
	}
	h.Logger.Debug("dashboard rebuilt", zap.Int("active", overview.Active), zap.Int("interviews", rec.Total))
	return dto, nil
}
