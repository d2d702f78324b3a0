package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// AdminAuth guards the admin surface with HTTP basic auth and an optional IP
// allowlist. Credential comparison is constant-time over SHA-256 digests so
// length differences leak nothing.
type AdminAuth struct {
	userHash  [32]byte
	passHash  [32]byte
	enabled   bool
	allowlist []string
	log       *zap.Logger
}

// NewAdminAuth configures the guard. An empty password disables the admin
// surface entirely rather than accepting `admin:` with no password.
func NewAdminAuth(user, pass string, allowlist []string, log *zap.Logger) *AdminAuth {
	if pass == "" {
		log.Warn("ADMIN_PASS is not set, admin routes are disabled")
	}
	return &AdminAuth{
		userHash:  sha256.Sum256([]byte(user)),
		passHash:  sha256.Sum256([]byte(pass)),
		enabled:   pass != "",
		allowlist: allowlist,
		log:       log,
	}
}

func (a *AdminAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.enabled {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		ip := clientIP(r)
		if !a.ipAllowed(ip) {
			a.log.Warn("admin request from disallowed IP", zap.String("ip", ip))
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		user, pass, ok := r.BasicAuth()
		if !ok || !a.credentialsMatch(user, pass) {
			a.log.Warn("admin auth failed", zap.String("ip", ip))
			w.Header().Set("WWW-Authenticate", `Basic realm="DANVERSE Admin"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *AdminAuth) credentialsMatch(user, pass string) bool {
	if pass == "" {
		return false
	}
	uh := sha256.Sum256([]byte(user))
	ph := sha256.Sum256([]byte(pass))
	userOK := subtle.ConstantTimeCompare(uh[:], a.userHash[:]) == 1
	passOK := subtle.ConstantTimeCompare(ph[:], a.passHash[:]) == 1
	return userOK && passOK
}

func (a *AdminAuth) ipAllowed(ip string) bool {
	if len(a.allowlist) == 0 {
		return true
	}
	for _, allowed := range a.allowlist {
		if strings.TrimSpace(allowed) == ip {
			return true
		}
	}
	return false
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
