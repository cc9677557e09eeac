package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Pab1o16/turing-chat/internal/audit"
	apperrors "github.com/Pab1o16/turing-chat/internal/errors"
	"github.com/Pab1o16/turing-chat/internal/httputil"
	"github.com/Pab1o16/turing-chat/internal/util"
)

type contextKey string

const OperatorContextKey contextKey = "operator"

// GetOperator returns the authenticated operator name, or "" when the gate is
// open.
func GetOperator(ctx context.Context) string {
	if name, ok := ctx.Value(OperatorContextKey).(string); ok {
		return name
	}
	return ""
}

type OperatorAuthConfig struct {
	Token        string
	User         string
	PasswordHash string
}

// OperatorAuth guards export and every operator route. It accepts a bearer
// token or HTTP Basic credentials checked against a bcrypt hash.
type OperatorAuth struct {
	cfg      OperatorAuthConfig
	failures *AuthFailureLimiter
}

func NewOperatorAuth(cfg OperatorAuthConfig, failures *AuthFailureLimiter) *OperatorAuth {
	return &OperatorAuth{cfg: cfg, failures: failures}
}

func (m *OperatorAuth) enabled() bool {
	return m.cfg.Token != "" || m.cfg.PasswordHash != ""
}

func (m *OperatorAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled() {
			next.ServeHTTP(w, r)
			return
		}

		ip := httputil.ClientIP(r)
		if m.failures != nil && m.failures.Blocked(ip) {
			audit.LogFromRequest(r, audit.Event{Type: audit.EventAuthLockout})
			w.Header().Set("Retry-After", "60")
			writeError(w, apperrors.RateLimitExceeded())
			return
		}

		name, ok := m.authenticate(r)
		if !ok {
			if m.failures != nil {
				m.failures.RecordFailure(ip)
			}
			audit.LogFromRequest(r, audit.Event{
				Type:    audit.EventAuthFailure,
				Details: map[string]any{"path": r.URL.Path},
			})
			w.Header().Set("WWW-Authenticate", `Basic realm="operator"`)
			writeError(w, apperrors.Unauthorized("Invalid operator credentials"))
			return
		}

		ctx := context.WithValue(r.Context(), OperatorContextKey, name)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *OperatorAuth) authenticate(r *http.Request) (string, bool) {
	if m.cfg.Token != "" {
		if token := extractToken(r); token != "" && util.ConstantTimeEqual(token, m.cfg.Token) {
			return "token", true
		}
	}

	if m.cfg.PasswordHash != "" {
		user, password, ok := r.BasicAuth()
		if ok && util.ConstantTimeEqual(user, m.cfg.User) && util.CheckPasswordHash(password, m.cfg.PasswordHash) {
			return user, true
		}
	}

	log.Debug().Str("path", r.URL.Path).Msg("operator auth rejected")
	return "", false
}

func extractToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}
