package auth

import (
	"net/http"
	"time"

	"vitrina.dev/internal/obs"
)

const (
	// SessionCookie carries the signed session token.
	SessionCookie = "admin_session"

	// SessionTTL is the fixed session lifetime.
	SessionTTL = 8 * time.Hour

	// renewThreshold is the remaining lifetime below which a valid session
	// is transparently reissued. Evaluated lazily on reads, never by timer.
	renewThreshold = 30 * time.Minute
)

// Sessions owns the session cookie lifecycle: issue, read, renew, clear.
type Sessions struct {
	codec  *Codec
	secure bool
	now    func() time.Time
}

// NewSessions builds the session manager. secure controls the cookie Secure
// attribute and must be true in production.
func NewSessions(codec *Codec, secure bool) *Sessions {
	return &Sessions{codec: codec, secure: secure, now: time.Now}
}

// Issue signs a fresh admin session token and sets the session cookie.
// http.SetCookie appends to Set-Cookie, so a CSRF cookie queued on the same
// response is preserved.
func (s *Sessions) Issue(w http.ResponseWriter, id, username string) error {
	token, err := s.codec.Sign(Claims{Subject: id, Username: username, Role: "admin"}, SessionTTL)
	if err != nil {
		return err
	}
	s.setCookie(w, token)
	return nil
}

// Read returns the verified session claims, or ok=false when the cookie is
// absent, malformed, forged or expired. Callers must treat all of those as
// "not logged in".
func (s *Sessions) Read(r *http.Request) (Claims, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return Claims{}, false
	}
	return s.codec.Verify(cookie.Value)
}

// MaybeRenew reissues the session cookie when the remaining lifetime has
// fallen below the renewal threshold. Reports whether a new token was set.
func (s *Sessions) MaybeRenew(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := s.Read(r)
	if !ok {
		return false
	}
	if time.Duration(claims.ExpiresAt-s.now().Unix())*time.Second >= renewThreshold {
		return false
	}
	token, err := s.codec.Sign(Claims{
		Subject:  claims.Subject,
		Username: claims.Username,
		Role:     claims.Role,
	}, SessionTTL)
	if err != nil {
		return false
	}
	s.setCookie(w, token)
	obs.ObserveSessionRenewal()
	return true
}

// Clear expires the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   s.secure,
	})
}

func (s *Sessions) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   s.secure,
	})
}
