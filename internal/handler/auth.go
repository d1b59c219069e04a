// Package handler contains the HTTP request handlers. Handlers parse the
// request, call a service, and write the response — no business logic and
// no SQL live here.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/gamnamu1/python-code-explainer/internal/auth"
	"github.com/gamnamu1/python-code-explainer/internal/model"
	"github.com/gamnamu1/python-code-explainer/internal/service"
)

// AuthHandler manages the OAuth login flow and session endpoints.
//
//   - HandleLogin    → redirect the browser to the provider
//   - HandleCallback → verify state, exchange the code, upsert, set cookie
//   - HandleLogout   → clear the session cookie
//   - HandleMe       → current user, or null for anonymous callers
type AuthHandler struct {
	provider *auth.Provider
	authSvc  *service.AuthService
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler with injected dependencies.
func NewAuthHandler(provider *auth.Provider, authSvc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		provider: provider,
		authSvc:  authSvc,
		logger:   logger,
	}
}

// HandleLogin redirects the user to the identity provider.
//
// HTTP: GET /auth/login
//
// A random state nonce goes into a short-lived HttpOnly cookie; the
// callback verifies the provider echoed it back before accepting the code.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.provider.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleCallback completes the OAuth login flow.
//
// HTTP: GET /auth/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization",
			slog.String("error", errParam),
		)
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	profile, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	token, err := h.authSvc.Login(r.Context(), profile, h.provider.Name())
	if err != nil {
		h.logger.Error("auth callback: login failed",
			slog.String("openId", profile.OpenID),
			slog.String("error", err.Error()),
		)
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	// HttpOnly keeps the token out of reach of page scripts; SameSite=Lax
	// keeps it off cross-site POSTs.
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionDuration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // enable in production behind HTTPS
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout clears the session cookie unconditionally and reports
// success, whether or not a session existed.
//
// HTTP: POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleMe returns the current session's user, or JSON null when the caller
// is anonymous or no row backs the session.
//
// HTTP: GET /api/auth/me (public, OptionalAuth)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	openID, ok := auth.OpenIDFromContext(r.Context())
	if !ok {
		// anonymous — a typed nil pointer encodes as JSON null
		writeJSON(w, http.StatusOK, (*model.User)(nil))
		return
	}

	user, err := h.authSvc.CurrentUser(r.Context(), openID)
	if err != nil {
		h.logger.Error("HandleMe: lookup failed", slog.String("openId", openID))
		writeError(w, err)
		return
	}

	// user may be nil (valid session, no row) — still encodes as null
	writeJSON(w, http.StatusOK, user)
}
