package httpapi

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"time"

	"vitrina.dev/internal/audit"
	"vitrina.dev/internal/auth"
	"vitrina.dev/internal/obs"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleLogin runs the full login pipeline: rate limit, lockout check,
// credential verification, then cookie issuance. Failure responses are
// uniform so the caller learns nothing about which step rejected.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	ip := clientIP(r)
	if ip == "" {
		ip = "unknown"
	}
	decision, err := a.limiter.Attempt(r.Context(), "login:"+ip, loginRateMax, loginRateWindow*time.Second)
	if err != nil {
		obs.ObserveLogin("error")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !decision.Allowed {
		obs.ObserveLogin("rate_limited")
		retry := time.Until(decision.ResetAt) / time.Second
		if retry < 1 {
			retry = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(int(retry)))
		writeError(w, http.StatusTooManyRequests, "too many attempts, try again later")
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	user, err := a.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrAccountLocked):
			obs.ObserveLogin("locked")
			_ = audit.LogEvent(r.Context(), "auth.login.locked", map[string]any{"username": req.Username})
			writeError(w, http.StatusLocked, "account temporarily locked")
		case errors.Is(err, auth.ErrInvalidCredentials):
			obs.ObserveLogin("invalid")
			_ = audit.LogEvent(r.Context(), "auth.login.failed", map[string]any{"username": req.Username})
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		default:
			obs.ObserveLogin("error")
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	if err := a.sessions.Issue(w, user.ID, user.Username); err != nil {
		obs.ObserveLogin("error")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if _, err := a.csrf.Issue(w); err != nil {
		obs.ObserveLogin("error")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	obs.ObserveLogin("ok")
	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{"username": user.Username})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	a.sessions.Clear(w)
	a.csrf.Clear(w)
	if claims, ok := a.sessions.Read(r); ok {
		ctx := auth.ContextWithClaims(r.Context(), claims)
		_ = audit.LogEvent(ctx, "auth.logout", nil)
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleMe reports whether a valid session exists and returns minimal
// identity claims, never the raw token. Sessions near expiry are renewed
// here as a side effect.
func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	a.sessions.MaybeRenew(w, r)
	claims, ok := a.sessions.Read(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user": map[string]string{
			"id":       claims.Subject,
			"username": claims.Username,
		},
	})
}

// handleCSRF rotates the CSRF cookie for client-side fetches.
func (a *API) handleCSRF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	token, err := a.csrf.Issue(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

type initRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleInit creates the first admin account. Guarded by a configured init
// token; disabled entirely when no token is set.
func (a *API) handleInit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if a.initToken == "" {
		writeError(w, http.StatusForbidden, "bootstrap disabled")
		return
	}
	provided := r.Header.Get("X-Init-Token")
	if provided == "" {
		provided = r.URL.Query().Get("token")
	}
	if subtle.ConstantTimeCompare([]byte(provided), []byte(a.initToken)) != 1 {
		writeError(w, http.StatusForbidden, "invalid token")
		return
	}

	var req initRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "username and password required")
		return
	}
	user, err := a.svc.Bootstrap(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "an admin already exists")
		case errors.Is(err, auth.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "username and password required")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.bootstrap", map[string]any{"username": user.Username})
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "username": user.Username})
}

type passwordChangeRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// handlePassword is reached only through RequireAdmin.
func (a *API) handlePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req passwordChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	err := a.svc.ChangePassword(r.Context(), claims.Username, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, auth.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "password too short")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.password.changed", nil)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
