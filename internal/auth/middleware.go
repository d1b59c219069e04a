package auth

import (
	"context"
	"net/http"
)

// SessionCookie is the name of the HttpOnly cookie carrying the JWT.
const SessionCookie = "session"

// contextKey is an unexported type for this package's context keys, so no
// other package can read or shadow the openId we store on the request.
type contextKey string

const openIDKey contextKey = "openID"

// RequireAuth enforces a valid session on protected routes.
//
// It reads the JWT from the session cookie, validates it, and stores the
// openId in the request context. Missing or invalid tokens end the chain
// with 401 Unauthorized.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			openID, err := extractOpenID(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), openIDKey, openID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth extracts the identity when a valid session is present but
// never blocks the request. Used on public routes like /api/auth/me, where
// an anonymous caller gets a null user rather than a 401.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if openID, err := extractOpenID(r, tokens); err == nil && openID != "" {
				r = r.WithContext(context.WithValue(r.Context(), openIDKey, openID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OpenIDFromContext returns the authenticated caller's identity token.
// ("", false) means the request is anonymous.
func OpenIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(openIDKey).(string)
	return id, ok && id != ""
}

// extractOpenID reads and validates the session cookie.
func extractOpenID(r *http.Request, tokens *TokenService) (string, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		// http.ErrNoCookie — no session, an anonymous request
		return "", err
	}
	return tokens.Validate(cookie.Value)
}
