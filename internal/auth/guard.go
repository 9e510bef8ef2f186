package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"vitrina.dev/internal/obs"
)

// Guard is the single authorization entry point for admin route handlers.
// It composes the session manager and the CSRF guard; handlers never touch
// the token codec directly.
type Guard struct {
	sessions *Sessions
	csrf     *CSRF
}

// NewGuard builds the admin auth guard.
func NewGuard(sessions *Sessions, csrf *CSRF) *Guard {
	return &Guard{sessions: sessions, csrf: csrf}
}

// Authorize validates the session (renewing it when near expiry) and, for
// state-changing methods, the CSRF token. On failure it writes 401 or 403 and
// returns ok=false. CSRF is a second gate: an unauthenticated request is
// rejected before CSRF is evaluated.
func (g *Guard) Authorize(w http.ResponseWriter, r *http.Request) (Claims, bool) {
	claims, ok := g.sessions.Read(r)
	if !ok || claims.Role != "admin" {
		denyJSON(w, http.StatusUnauthorized, "unauthorized")
		return Claims{}, false
	}
	if r.Method != http.MethodGet {
		if !g.csrf.Check(r) && !sameOrigin(r) {
			obs.ObserveCSRFRejection()
			denyJSON(w, http.StatusForbidden, "csrf token invalid")
			return Claims{}, false
		}
	}
	g.sessions.MaybeRenew(w, r)
	return claims, true
}

// sameOrigin matches Origin/Referer against the request Host. It tolerates
// first-party fetches that predate CSRF token issuance; cross-origin
// requests always need a valid token. Assumes the front proxy does not
// forward a client-controlled Host header.
func sameOrigin(r *http.Request) bool {
	host := r.Host
	if host == "" {
		return false
	}
	httpOrigin := "http://" + host
	httpsOrigin := "https://" + host
	if origin := r.Header.Get("Origin"); origin != "" {
		if origin == httpOrigin || origin == httpsOrigin {
			return true
		}
	}
	if referer := r.Header.Get("Referer"); referer != "" {
		if strings.HasPrefix(referer, httpOrigin+"/") || strings.HasPrefix(referer, httpsOrigin+"/") {
			return true
		}
	}
	return false
}

func denyJSON(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
