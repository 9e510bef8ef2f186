package httpapi

import (
	"net/http"

	"vitrina.dev/internal/auth"
	"vitrina.dev/internal/obs"
	"vitrina.dev/internal/ratelimit"
)

// Login throttle: fixed window per client IP, independent of account state.
const (
	loginRateMax    = 10
	loginRateWindow = 5 * 60 // seconds
)

// Options wires the API's collaborators.
type Options struct {
	ReadyProbe ReadyProbe
	Version    string
	Auth       *auth.Service
	Sessions   *auth.Sessions
	CSRF       *auth.CSRF
	Limiter    ratelimit.Limiter
	InitToken  string
}

// API is the HTTP layer. Route handlers depend on the admin guard only; none
// of them touch the token codec or session internals.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	svc       *auth.Service
	sessions  *auth.Sessions
	csrf      *auth.CSRF
	guard     *auth.Guard
	limiter   ratelimit.Limiter
	initToken string

	// Global per-IP throttle, tuned down in tests.
	rateBurst  int
	ratePerSec int
}

// New builds the route table.
func New(opts Options) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: opts.ReadyProbe,
		version:    opts.Version,
		svc:        opts.Auth,
		sessions:   opts.Sessions,
		csrf:       opts.CSRF,
		guard:      auth.NewGuard(opts.Sessions, opts.CSRF),
		limiter:    opts.Limiter,
		initToken:  opts.InitToken,
		rateBurst:  50,
		ratePerSec: 25,
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/api/admin/init", a.handleInit)
	a.mux.HandleFunc("/api/admin/login", a.handleLogin)
	a.mux.HandleFunc("/api/admin/logout", a.handleLogout)
	a.mux.HandleFunc("/api/admin/me", a.handleMe)
	a.mux.HandleFunc("/api/admin/csrf", a.handleCSRF)
	a.mux.HandleFunc("/api/admin/password", a.RequireAdmin(a.handlePassword))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	h := MaxBodyBytes(a.mux, 1<<20)
	h = LoggingJSON(h)
	h = SecurityHeaders(h)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = RequestID(h)
	return obs.Instrument(h)
}

// RequireAdmin authorizes the request through the admin guard and, on
// success, exposes the session claims via the request context.
func (a *API) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := a.guard.Authorize(w, r)
		if !ok {
			return
		}
		next(w, r.WithContext(auth.ContextWithClaims(r.Context(), claims)))
	}
}
