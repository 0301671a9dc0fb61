package gateway

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/flemzord/careerai/internal/security"
)

// ErrStudentMismatch is returned when a student-scoped credential is used
// on behalf of another student.
var ErrStudentMismatch = errors.New("gateway: credential does not belong to this student")

// principal is the authenticated caller. An empty studentID means the
// operator credential, which may act for any student.
type principal struct {
	studentID string
}

func (p principal) admin() bool { return p.studentID == "" }

type principalKey struct{}

func withPrincipal(ctx context.Context, p principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// principalFrom returns the caller, or false when auth is not configured.
func principalFrom(ctx context.Context) (principal, bool) {
	p, ok := ctx.Value(principalKey{}).(principal)
	return p, ok
}

// scopeStudent reconciles the student named by a request with the caller.
// A student credential fills an empty id and rejects a foreign one.
func scopeStudent(ctx context.Context, requested string) (string, error) {
	p, ok := principalFrom(ctx)
	if !ok || p.admin() {
		return requested, nil
	}
	if requested == "" || requested == p.studentID {
		return p.studentID, nil
	}
	return "", ErrStudentMismatch
}

// authenticate resolves the Authorization header against cfg using
// constant-time comparisons.
func authenticate(cfg AuthConfig, r *http.Request) (principal, bool) {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		if cfg.BearerToken != "" && constantTimeEqual(token, cfg.BearerToken) {
			return principal{}, true
		}
		// Every entry is compared so timing does not reveal a match position.
		var found string
		for t, student := range cfg.StudentTokens {
			if constantTimeEqual(token, t) {
				found = student
			}
		}
		if found != "" {
			return principal{studentID: found}, true
		}
		return principal{}, false
	}
	if cfg.BasicUser != "" && cfg.BasicPass != "" {
		user, pass, ok := r.BasicAuth()
		if ok && constantTimeEqual(user, cfg.BasicUser) && constantTimeEqual(pass, cfg.BasicPass) {
			return principal{}, true
		}
	}
	return principal{}, false
}

// authMiddleware rejects unauthenticated requests and stores the caller on
// the request context. Failures are audited; auditLogger may be nil.
func authMiddleware(cfg AuthConfig, auditLogger *security.AuditLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				emitAuthFailure(auditLogger, r, "", "missing authorization header")
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			p, ok := authenticate(cfg, r)
			if !ok {
				emitAuthFailure(auditLogger, r, "", "invalid credentials")
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
		})
	}
}

// requireAdmin lets only the operator credential through.
func requireAdmin(auditLogger *security.AuditLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, ok := principalFrom(r.Context()); ok && !p.admin() {
				emitAuthFailure(auditLogger, r, p.studentID, "student credential on admin route")
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func emitAuthFailure(logger *security.AuditLogger, r *http.Request, studentID, detail string) {
	logger.Log(security.AuditEvent{
		Type:      security.EventAuthFailure,
		StudentID: studentID,
		Detail:    detail,
		Metadata: map[string]string{
			"remote_addr": r.RemoteAddr,
			"method":      r.Method,
			"path":        r.URL.Path,
		},
	})
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
