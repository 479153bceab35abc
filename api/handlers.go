/*
handlers.go - HTTP API handlers for the HR engine

PURPOSE:
  Exposes employees, the behavior score ledger, recruitment and annual
  awards via REST API. Handles HTTP request/response, JSON serialization,
  and delegates to the domain packages (hr, award) and the SQLite store.

ENDPOINTS:
  See server.go for the full route table. Handlers are split by resource:
    employees.go    /api/employees
    scores.go       /api/scores
    recruitment.go  /api/recruitment
    awards.go       /api/awards
    dashboard.go    /api/health, /api/dashboard
    auth.go         /api/auth/verify and the admin gate
    scenarios.go    /api/scenarios

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Generator: Annual award generation (serialized per year)
  - Cache: Statistics pages, invalidated on writes
  - Auth: Admin token issue/verify
  - Logger, Metrics: Observability

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (domain constructors return hr.ValidationError)
  3. Call the store or the generator
  4. Invalidate affected cache keys after a successful write
  5. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status (errors.go):
  - 400: Validation errors, invalid input
  - 401: Missing or invalid admin token
  - 404: Resource not found
  - 409: Conflict (already generated, duplicate)
  - 422: No eligible candidates
  - 500: Internal and persistence errors

SEE ALSO:
  - dto.go: Request/response data structures
  - errors.go: Error classification
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/warp/hr-engine/award"
	"github.com/warp/hr-engine/cache"
	"github.com/warp/hr-engine/hr"
	"github.com/warp/hr-engine/metrics"
	"github.com/warp/hr-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Cache key families. Writes invalidate by prefix.
const (
	keyEmployees   = "employees:"
	keyScores      = "scores:"
	keyRecruitment = "recruitment:"
	keyAwards      = "awards:"
	keyDashboard   = "dashboard:"
)

// DefaultCacheTTL bounds cached statistics when the handler isn't configured.
const DefaultCacheTTL = 5 * time.Minute

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Generator *award.Generator
	Cache     cache.Cache
	CacheTTL  time.Duration
	Auth      *Auth
	Logger    *zap.Logger
	Metrics   *metrics.Manager

	// Now is the clock for timestamps, working days and default years.
	Now func() time.Time

	started time.Time

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler around store and gen. The generator's
// OnReplace hook is pointed at the award cache so scheduled runs also
// invalidate it.
func NewHandler(store *sqlite.Store, gen *award.Generator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		Store:     store,
		Generator: gen,
		Cache:     cache.NewMemory(),
		CacheTTL:  DefaultCacheTTL,
		Logger:    logger.Named("api"),
		Now:       time.Now,
		started:   time.Now(),
	}
	if gen.OnReplace == nil {
		gen.OnReplace = func(int) {
			h.invalidate(context.Background(), keyAwards, keyDashboard)
		}
	}
	return h
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) tiers() award.TierTable {
	return h.Generator.Tiers
}

// requestLogger tags the handler logger with the chi request id.
func (h *Handler) requestLogger(r *http.Request) *zap.Logger {
	return h.Logger.With(zap.String("request_id", middleware.GetReqID(r.Context())))
}

func errField(err error) zap.Field { return zap.Error(err) }

// =============================================================================
// CACHE
// =============================================================================

// cached returns the value under key, computing and storing it on a miss.
// Cache failures degrade to computing the value.
func cached[T any](ctx context.Context, h *Handler, key string, fill func(context.Context) (T, error)) (T, error) {
	var out T
	if h.Cache != nil {
		hit, err := h.Cache.Get(ctx, key, &out)
		switch {
		case err != nil:
			h.Logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		case hit:
			h.Metrics.RecordCacheLookup(true)
			return out, nil
		default:
			h.Metrics.RecordCacheLookup(false)
		}
	}

	out, err := fill(ctx)
	if err != nil {
		return out, err
	}
	if h.Cache != nil {
		if err := h.Cache.Set(ctx, key, out, h.CacheTTL); err != nil {
			h.Logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}

// invalidate drops every cached value under the given prefixes.
func (h *Handler) invalidate(ctx context.Context, prefixes ...string) {
	if h.Cache == nil {
		return
	}
	for _, p := range prefixes {
		if err := h.Cache.InvalidatePrefix(ctx, p); err != nil {
			h.Logger.Warn("cache invalidation failed", zap.String("prefix", p), zap.Error(err))
		}
	}
}

// =============================================================================
// REQUEST HELPERS
// =============================================================================

// decodeJSON reads the body into dst, answering 400 on malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// pageFromQuery reads ?page=&limit=.
func pageFromQuery(r *http.Request) hr.Page {
	q := r.URL.Query()
	return hr.Page{
		Number: queryInt(q.Get("page"), 1),
		Size:   queryInt(q.Get("limit"), hr.DefaultPageSize),
	}.Normalize()
}

func queryInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

// queryDate parses an optional date parameter. ok is false when the value
// is present but malformed.
func queryDate(r *http.Request, name string) (t time.Time, ok bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return time.Time{}, true
	}
	t, err := hr.ParseDate(s)
	return t, err == nil
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
