/*
auth.go - Admin gate

PURPOSE:
  A single shared admin password unlocks destructive and sensitive
  operations. POST /api/auth/verify exchanges the password for a short-lived
  HS256 token; RequireAdmin checks "Authorization: Bearer <token>".

GUARDED OPERATIONS:
  - DELETE on employees, scores, recruitment and awards
  - GET /api/employees/{id}/id-card (unmasked id card)
  - POST /api/awards/generate with force
  - POST /api/scenarios/reset

RATE LIMIT:
  The verify endpoint is limited per client IP (default "5-M", five
  attempts a minute) with an in-memory limiter store.

SEE ALSO:
  - server.go: Where the gate is mounted
*/
package api

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// AdminRole is the only role tokens carry.
const AdminRole = "admin"

// ErrInvalidToken is returned for malformed, expired or foreign tokens.
var ErrInvalidToken = errors.New("invalid token")

// AuthOptions configures NewAuth.
type AuthOptions struct {
	// Password is the admin password. Empty disables token issuing.
	Password string
	Secret   string
	TTL      time.Duration

	// Rate is the verify attempt limit in limiter notation, e.g. "5-M".
	Rate string
}

// AdminClaims are the claims of an admin token.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Auth issues and checks admin tokens.
type Auth struct {
	password string
	secret   []byte
	ttl      time.Duration
	limiter  *limiter.Limiter

	// Now stamps issued tokens.
	Now func() time.Time
}

// NewAuth builds the gate. It fails on an empty secret or a malformed rate.
func NewAuth(opts AuthOptions) (*Auth, error) {
	if opts.Secret == "" {
		return nil, errors.New("auth: secret must not be empty")
	}
	if opts.TTL <= 0 {
		opts.TTL = 2 * time.Hour
	}
	if opts.Rate == "" {
		opts.Rate = "5-M"
	}
	rate, err := limiter.NewRateFromFormatted(opts.Rate)
	if err != nil {
		return nil, fmt.Errorf("auth: rate %q: %w", opts.Rate, err)
	}
	return &Auth{
		password: opts.Password,
		secret:   []byte(opts.Secret),
		ttl:      opts.TTL,
		limiter:  limiter.New(memory.NewStore(), rate),
		Now:      time.Now,
	}, nil
}

// Enabled reports whether a password is configured.
func (a *Auth) Enabled() bool { return a != nil && a.password != "" }

// CheckPassword compares in constant time.
func (a *Auth) CheckPassword(password string) bool {
	if !a.Enabled() {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
}

// Issue signs a new admin token.
func (a *Auth) Issue() (string, time.Time, error) {
	now := a.Now()
	exp := now.Add(a.ttl)
	claims := &AdminClaims{
		Role: AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   AdminRole,
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(a.secret)
	return s, exp, err
}

// Parse validates a token and returns its claims.
func (a *Auth) Parse(token string) (*AdminClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &AdminClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*AdminClaims)
	if !ok || !parsed.Valid || claims.Role != AdminRole {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authorized reports whether r carries a valid admin token.
func (a *Auth) Authorized(r *http.Request) bool {
	if a == nil {
		return false
	}
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return false
	}
	_, err := a.Parse(strings.TrimSpace(token))
	return err == nil
}

// RequireAdmin rejects requests without a valid admin token.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Authorized(r) {
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{
				Error: "Admin token required",
				Code:  CodeUnauthorized,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit limits requests per client IP.
func (a *Auth) RateLimit(next http.Handler) http.Handler {
	mw := stdlib.NewMiddleware(a.limiter, stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusTooManyRequests, "Too many attempts, try again later", nil)
	}))
	return mw.Handler(next)
}

// =============================================================================
// HANDLER
// =============================================================================

// VerifyPassword exchanges the admin password for a token.
// POST /api/auth/verify
func (h *Handler) VerifyPassword(w http.ResponseWriter, r *http.Request) {
	if !h.Auth.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error: "Admin password is not configured",
			Code:  CodeUnavailable,
		})
		return
	}

	var req VerifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.Auth.CheckPassword(req.Password) {
		h.requestLogger(r).Warn("admin password rejected")
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Wrong password", Code: CodeUnauthorized})
		return
	}

	token, exp, err := h.Auth.Issue()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: token, ExpiresAt: formatTimestamp(exp)})
}
