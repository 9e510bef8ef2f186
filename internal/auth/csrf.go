package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
)

const (
	// CSRFCookie holds the double-submit token. It is deliberately not
	// HttpOnly: client script must read it back into the request header.
	CSRFCookie = "admin_csrf"

	// CSRFHeader is the canonical header name; the X-XSRF-Token alias is
	// accepted for clients that follow the angular convention.
	CSRFHeader    = "X-CSRF-Token"
	csrfAltHeader = "X-XSRF-Token"

	csrfTokenBytes = 16
	csrfCookieTTL  = 3600
)

// CSRF implements double-submit protection: a random token lives in a
// readable cookie and must be echoed in a request header.
type CSRF struct {
	secure bool
}

// NewCSRF builds the guard. secure controls the cookie Secure attribute.
func NewCSRF(secure bool) *CSRF {
	return &CSRF{secure: secure}
}

// Issue generates a fresh token, sets the CSRF cookie and returns the token.
func (c *CSRF) Issue(w http.ResponseWriter) (string, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	token := hex.EncodeToString(buf)
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   csrfCookieTTL,
		SameSite: http.SameSiteStrictMode,
		Secure:   c.secure,
	})
	return token, nil
}

// Clear expires the CSRF cookie.
func (c *CSRF) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		SameSite: http.SameSiteStrictMode,
		Secure:   c.secure,
	})
}

// Check reports whether the cookie token and the header token are both
// present, equal length and byte-equal under constant-time comparison.
func (c *CSRF) Check(r *http.Request) bool {
	cookie, err := r.Cookie(CSRFCookie)
	if err != nil || cookie.Value == "" {
		return false
	}
	header := r.Header.Get(CSRFHeader)
	if header == "" {
		header = r.Header.Get(csrfAltHeader)
	}
	if header == "" {
		return false
	}
	if len(cookie.Value) != len(header) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) == 1
}
