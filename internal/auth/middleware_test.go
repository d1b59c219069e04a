package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// echoOpenID is a handler that reports what identity the middleware put in
// the context.
func echoOpenID(t *testing.T, gotOpenID *string, gotOK *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotOpenID, *gotOK = OpenIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthValidCookie(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Generate("open-id-9")

	var openID string
	var ok bool
	handler := RequireAuth(ts)(echoOpenID(t, &openID, &ok))

	req := httptest.NewRequest(http.MethodGet, "/api/analyses", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !ok || openID != "open-id-9" {
		t.Errorf("context openId = %q/%v, want open-id-9/true", openID, ok)
	}
}

func TestRequireAuthMissingCookie(t *testing.T) {
	ts := newTestTokenService(t)

	handler := RequireAuth(ts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a session")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/analyses", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	ts := newTestTokenService(t)

	handler := RequireAuth(ts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run with a bad token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/analyses", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "tampered"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

// OptionalAuth lets anonymous requests through with no identity set.
func TestOptionalAuthAnonymous(t *testing.T) {
	ts := newTestTokenService(t)

	var openID string
	var ok bool
	handler := OptionalAuth(ts)(echoOpenID(t, &openID, &ok))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if ok {
		t.Errorf("anonymous request should carry no identity, got %q", openID)
	}
}

func TestOptionalAuthWithSession(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Generate("open-id-11")

	var openID string
	var ok bool
	handler := OptionalAuth(ts)(echoOpenID(t, &openID, &ok))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if !ok || openID != "open-id-11" {
		t.Errorf("context openId = %q/%v, want open-id-11/true", openID, ok)
	}
}
