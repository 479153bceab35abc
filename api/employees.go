package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/hr-engine/award"
	"github.com/warp/hr-engine/hr"
)

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns one page of employees.
// GET /api/employees?search=&department=&position=&workStatus=&page=&limit=
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := hr.EmployeeFilter{
		Keyword:    strings.TrimSpace(q.Get("search")),
		Department: hr.Department(q.Get("department")),
		Position:   hr.Position(q.Get("position")),
		WorkStatus: hr.WorkStatus(q.Get("workStatus")),
		Page:       pageFromQuery(r),
	}

	employees, total, err := h.Store.ListEmployees(r.Context(), filter)
	if err != nil {
		h.writeDomainError(w, r, "Failed to list employees", err)
		return
	}

	now := h.now()
	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e, now)
	}
	writeJSON(w, http.StatusOK, newListResponse(dtos, total, filter.Page))
}

// CreateEmployee registers an employee. Department and position default to
// unassigned, work status to active.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	now := h.now()
	e := hr.Employee{
		ID:         hr.NewEmployeeID(now),
		WorkStatus: hr.StatusActive,
		Department: hr.DeptUnassigned,
		Position:   hr.PositionUnassigned,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := req.applyTo(&e); err != nil {
		h.writeDomainError(w, r, "Invalid employee", err)
		return
	}
	e.Name = strings.TrimSpace(e.Name)
	if err := hr.ValidateEmployee(e, now); err != nil {
		h.writeDomainError(w, r, "Invalid employee", err)
		return
	}

	if err := h.Store.CreateEmployee(r.Context(), e); err != nil {
		h.writeDomainError(w, r, "Failed to create employee", err)
		return
	}
	h.invalidate(r.Context(), keyEmployees, keyDashboard)

	writeJSON(w, http.StatusCreated, toEmployeeDTO(e, now))
}

// GetEmployee returns a single employee.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	e, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(e, h.now()))
}

// UpdateEmployee applies the fields present in the body.
// PUT /api/employees/{id}
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	e, err := h.Store.GetEmployee(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get employee", err)
		return
	}
	if err := req.applyTo(&e); err != nil {
		h.writeDomainError(w, r, "Invalid employee", err)
		return
	}
	now := h.now()
	if err := hr.ValidateEmployee(e, now); err != nil {
		h.writeDomainError(w, r, "Invalid employee", err)
		return
	}
	e.UpdatedAt = now

	if err := h.Store.UpdateEmployee(ctx, e); err != nil {
		h.writeDomainError(w, r, "Failed to update employee", err)
		return
	}
	// Award and score statistics group by the current department.
	h.invalidate(ctx, keyEmployees, keyScores, keyAwards, keyDashboard)

	writeJSON(w, http.StatusOK, toEmployeeDTO(e, now))
}

// DeleteEmployee removes an employee with their score events and awards.
// DELETE /api/employees/{id} (admin)
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteEmployee(r.Context(), id); err != nil {
		h.writeDomainError(w, r, "Failed to delete employee", err)
		return
	}
	h.invalidate(r.Context(), keyEmployees, keyScores, keyAwards, keyDashboard)
	h.requestLogger(r).Info("employee deleted", zap.String("employee_id", id))

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "employeeId": id})
}

// GetEmployeeIDCard returns the unmasked id card number.
// GET /api/employees/{id}/id-card (admin)
func (h *Handler) GetEmployeeIDCard(w http.ResponseWriter, r *http.Request) {
	e, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, IDCardDTO{EmployeeID: e.ID, IDCard: e.IDCard})
}

// ListEmployeeScores returns the employee's score events, newest first.
// GET /api/employees/{id}/scores?page=&limit=
func (h *Handler) ListEmployeeScores(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if _, err := h.Store.GetEmployee(ctx, id); err != nil {
		h.writeDomainError(w, r, "Failed to get employee", err)
		return
	}

	filter := hr.ScoreFilter{EmployeeID: id, Page: pageFromQuery(r)}
	records, total, err := h.Store.ListScores(ctx, filter)
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

// ListEmployeeAwards returns every award the employee has won, newest first.
// GET /api/employees/{id}/awards
func (h *Handler) ListEmployeeAwards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if _, err := h.Store.GetEmployee(ctx, id); err != nil {
		h.writeDomainError(w, r, "Failed to get employee", err)
		return
	}

	listings, _, err := h.Store.ListAwards(ctx, award.Filter{
		EmployeeID: id,
		SortBy:     award.SortByYear,
		Descending: true,
		Page:       hr.Page{Number: 1, Size: hr.MaxPageSize},
	})
	if err != nil {
		h.writeDomainError(w, r, "Failed to list awards", err)
		return
	}
	dtos := make([]AwardDTO, len(listings))
	for i, l := range listings {
		dtos[i] = toListingDTO(l)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployeeOverview returns headcounts, average working days, the top
// scorer and the per-department breakdown.
// GET /api/employees/overview
func (h *Handler) GetEmployeeOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := cached(r.Context(), h, keyEmployees+"overview", func(ctx context.Context) (EmployeeOverviewDTO, error) {
		now := h.now()
		o, err := h.Store.EmployeeOverview(ctx, now)
		if err != nil {
			return EmployeeOverviewDTO{}, err
		}
		depts, err := h.Store.DepartmentHeadcounts(ctx)
		if err != nil {
			return EmployeeOverviewDTO{}, err
		}
		dto := EmployeeOverviewDTO{EmployeeOverview: o, Departments: depts}
		if o.TopScorer != nil {
			dto.TopScorer = &TopScorerDTO{
				EmployeeID: o.TopScorer.ID,
				Name:       o.TopScorer.Name,
				Score:      o.TopScorer.TotalScore,
				Department: string(o.TopScorer.Department),
				Position:   string(o.TopScorer.Position),
			}
		}
		if dto.Departments == nil {
			dto.Departments = []hr.DepartmentHeadcount{}
		}
		return dto, nil
	})
	if err != nil {
		h.writeDomainError(w, r, "Failed to compute employee overview", err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}
