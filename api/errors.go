package api

import (
	"errors"
	"net/http"

	"github.com/warp/hr-engine/award"
	"github.com/warp/hr-engine/hr"
)

// Error codes carried in ErrorResponse.Code.
const (
	CodeValidation       = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeAlreadyGenerated = "ALREADY_GENERATED"
	CodeNoEligible       = "NO_ELIGIBLE_CANDIDATES"
	CodePersistence      = "PERSISTENCE_FAILED"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeInternal         = "INTERNAL"
	CodeUnavailable      = "UNAVAILABLE"
)

// classify maps a domain error to its HTTP status and code.
//
//	400 validation, invalid year / tiers / award input
//	404 missing employee, score, recruitment or award record
//	409 already generated, duplicate id card / phone / (year, employee)
//	422 no eligible candidates
//	500 persistence and everything else
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, award.ErrPersistence):
		return http.StatusInternalServerError, CodePersistence
	case hr.IsClientError(err), award.IsClientError(err):
		return http.StatusBadRequest, CodeValidation
	case hr.IsNotFound(err), errors.Is(err, award.ErrAwardNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, award.ErrAlreadyGenerated):
		return http.StatusConflict, CodeAlreadyGenerated
	case hr.IsConflict(err), award.IsConflict(err):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, award.ErrNoEligibleCandidates):
		return http.StatusUnprocessableEntity, CodeNoEligible
	}
	return http.StatusInternalServerError, CodeInternal
}

// errorDetails extracts the structured part of err for the response body.
func errorDetails(err error) any {
	var verr *hr.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	var gen *award.AlreadyGeneratedError
	if errors.As(err, &gen) {
		return map[string]int{"year": gen.Year, "existing": gen.Existing}
	}
	var none *award.NoEligibleError
	if errors.As(err, &none) {
		return map[string]int{"year": none.Year, "employees": none.Employees, "selected": none.Selected}
	}
	var perr *award.PersistenceError
	if errors.As(err, &perr) {
		return map[string]any{"op": perr.Op, "priorSetLost": perr.PriorSetLost, "cause": perr.Err.Error()}
	}
	return err.Error()
}

// writeDomainError writes err with the status its kind maps to. Server-side
// failures are logged; client errors are not.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		h.requestLogger(r).Error(message, errField(err))
	}
	writeJSON(w, status, ErrorResponse{Error: message, Code: code, Details: errorDetails(err)})
}
