package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func requestWithCookie(name, value string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	r.AddCookie(&http.Cookie{Name: name, Value: value})
	return r
}

func TestSessionsIssueSetsCookie(t *testing.T) {
	sessions := NewSessions(newTestCodec(t), false)
	rr := httptest.NewRecorder()

	if err := sessions.Issue(rr, "adm-1", "root"); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != SessionCookie {
		t.Fatalf("unexpected cookie name: %s", c.Name)
	}
	if !c.HttpOnly {
		t.Fatal("session cookie must be HttpOnly")
	}
	if c.SameSite != http.SameSiteStrictMode {
		t.Fatalf("unexpected SameSite: %v", c.SameSite)
	}
	if c.MaxAge != int(SessionTTL/time.Second) {
		t.Fatalf("unexpected Max-Age: %d", c.MaxAge)
	}
	if c.Path != "/" {
		t.Fatalf("unexpected Path: %s", c.Path)
	}

	claims, ok := sessions.Read(requestWithCookie(SessionCookie, c.Value))
	if !ok {
		t.Fatal("issued session did not read back")
	}
	if claims.Subject != "adm-1" || claims.Username != "root" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestSessionsReadInvalidToken(t *testing.T) {
	sessions := NewSessions(newTestCodec(t), false)

	if _, ok := sessions.Read(httptest.NewRequest(http.MethodGet, "/", nil)); ok {
		t.Fatal("read succeeded without a cookie")
	}
	if _, ok := sessions.Read(requestWithCookie(SessionCookie, "garbage")); ok {
		t.Fatal("read succeeded with a malformed token")
	}
}

func TestMaybeRenewAboveThreshold(t *testing.T) {
	codec := newTestCodec(t)
	sessions := NewSessions(codec, false)
	rr := httptest.NewRecorder()
	if err := sessions.Issue(rr, "adm-1", "root"); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	token := rr.Result().Cookies()[0].Value

	// Just above the threshold: remaining lifetime 31m.
	later := time.Now().Add(SessionTTL - renewThreshold - time.Minute)
	codec.now = func() time.Time { return later }
	sessions.now = codec.now

	rr2 := httptest.NewRecorder()
	if renewed := sessions.MaybeRenew(rr2, requestWithCookie(SessionCookie, token)); renewed {
		t.Fatal("session renewed above the threshold")
	}
	if len(rr2.Result().Cookies()) != 0 {
		t.Fatal("cookie rewritten without renewal")
	}
}

func TestMaybeRenewBelowThreshold(t *testing.T) {
	codec := newTestCodec(t)
	sessions := NewSessions(codec, false)
	issued := time.Now()
	codec.now = func() time.Time { return issued }
	sessions.now = codec.now

	rr := httptest.NewRecorder()
	if err := sessions.Issue(rr, "adm-1", "root"); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	token := rr.Result().Cookies()[0].Value

	// Just below the threshold: remaining lifetime 29m.
	later := issued.Add(SessionTTL - renewThreshold + time.Minute)
	codec.now = func() time.Time { return later }
	sessions.now = codec.now

	rr2 := httptest.NewRecorder()
	if renewed := sessions.MaybeRenew(rr2, requestWithCookie(SessionCookie, token)); !renewed {
		t.Fatal("session not renewed below the threshold")
	}
	cookies := rr2.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected replacement cookie, got %d", len(cookies))
	}
	claims, ok := codec.Verify(cookies[0].Value)
	if !ok {
		t.Fatal("replacement token invalid")
	}
	if claims.Subject != "adm-1" || claims.Username != "root" {
		t.Fatalf("identity not preserved across renewal: %+v", claims)
	}
	if want := later.Unix() + int64(SessionTTL/time.Second); claims.ExpiresAt != want {
		t.Fatalf("replacement expiry not now+TTL: got %d want %d", claims.ExpiresAt, want)
	}
}

func TestClearExpiresCookie(t *testing.T) {
	sessions := NewSessions(newTestCodec(t), false)
	rr := httptest.NewRecorder()
	sessions.Clear(rr)

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	if cookies[0].MaxAge >= 0 {
		t.Fatalf("expected negative Max-Age, got %d", cookies[0].MaxAge)
	}
}

func TestCookieWritesAreAdditive(t *testing.T) {
	sessions := NewSessions(newTestCodec(t), false)
	csrf := NewCSRF(false)
	rr := httptest.NewRecorder()

	if err := sessions.Issue(rr, "adm-1", "root"); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := csrf.Issue(rr); err != nil {
		t.Fatalf("csrf Issue: %v", err)
	}

	names := map[string]bool{}
	for _, c := range rr.Result().Cookies() {
		names[c.Name] = true
	}
	if !names[SessionCookie] || !names[CSRFCookie] {
		t.Fatalf("expected both cookies queued, got %v", names)
	}
}
