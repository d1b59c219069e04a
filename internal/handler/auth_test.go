package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gamnamu1/python-code-explainer/internal/auth"
	"github.com/gamnamu1/python-code-explainer/internal/handler"
	"github.com/gamnamu1/python-code-explainer/internal/model"
	"github.com/gamnamu1/python-code-explainer/internal/repository"
	"github.com/gamnamu1/python-code-explainer/internal/service"
)

func newAuthTestEnv(t *testing.T) (*handler.AuthHandler, *fakeUserRepo, *auth.TokenService) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	users := newFakeUserRepo()
	authSvc := service.NewAuthService(users, tokens, logger)
	provider := auth.NewProvider(auth.ProviderConfig{Name: "test"})

	return handler.NewAuthHandler(provider, authSvc, logger), users, tokens
}

// /api/auth/me sits behind OptionalAuth: anonymous callers get JSON null,
// not a 401.
func TestHandleMeAnonymous(t *testing.T) {
	h, _, tokens := newAuthTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rr := httptest.NewRecorder()
	auth.OptionalAuth(tokens)(http.HandlerFunc(h.HandleMe)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `null`, rr.Body.String())
}

func TestHandleMeSignedIn(t *testing.T) {
	h, users, tokens := newAuthTestEnv(t)

	name := "김철수"
	users.Upsert(context.Background(), repository.UserUpsert{OpenID: "open-id-me", Name: &name})
	token, _ := tokens.Generate("open-id-me")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	rr := httptest.NewRecorder()
	auth.OptionalAuth(tokens)(http.HandlerFunc(h.HandleMe)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got model.User
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, "open-id-me", got.OpenID)
	assert.Equal(t, name, got.Name)
}

// A valid session with no backing row (degraded store) still answers null.
func TestHandleMeNoRow(t *testing.T) {
	h, _, tokens := newAuthTestEnv(t)
	token, _ := tokens.Generate("open-id-ghost")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	rr := httptest.NewRecorder()
	auth.OptionalAuth(tokens)(http.HandlerFunc(h.HandleMe)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `null`, rr.Body.String())
}

// Logout succeeds unconditionally and expires the session cookie.
func TestHandleLogout(t *testing.T) {
	h, _, _ := newAuthTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rr := httptest.NewRecorder()
	h.HandleLogout(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())

	cookies := rr.Result().Cookies()
	var cleared bool
	for _, c := range cookies {
		if c.Name == auth.SessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "logout must expire the session cookie")
}

// Login redirects to the provider and plants the single-use state cookie.
func TestHandleLogin(t *testing.T) {
	h, _, _ := newAuthTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	rr := httptest.NewRecorder()
	h.HandleLogin(rr, req)

	assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)

	var state string
	for _, c := range rr.Result().Cookies() {
		if c.Name == "oauth_state" {
			state = c.Value
		}
	}
	assert.NotEmpty(t, state, "login must set the oauth_state cookie")
	assert.Contains(t, rr.Header().Get("Location"), "state="+state)
}

func TestHandleCallbackStateMismatch(t *testing.T) {
	h, _, _ := newAuthTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state=forged", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "legit"})
	rr := httptest.NewRecorder()
	h.HandleCallback(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleCallbackMissingState(t *testing.T) {
	h, _, _ := newAuthTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state=x", nil)
	rr := httptest.NewRecorder()
	h.HandleCallback(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
