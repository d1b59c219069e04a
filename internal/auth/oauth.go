// Package auth provides the OAuth login flow and JWT session tokens.
//
// FLOW:
//  1. GET /auth/login redirects the browser to the identity provider
//  2. The provider calls back /auth/callback with a short-lived code
//  3. The server exchanges the code for the user's profile, upserts the
//     user, and issues a JWT session cookie whose subject is the openId
//  4. Middleware validates the cookie on later requests and puts the
//     openId in the request context
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// Profile is the slice of the provider's userinfo response we consume.
// Providers return much more; we only unmarshal what the user table stores.
type Profile struct {
	OpenID string `json:"sub"`   // stable unique identifier, never changes
	Name   string `json:"name"`  // display name (may be empty)
	Email  string `json:"email"` // primary email (may be empty)
}

// ProviderConfig configures one OAuth 2.0 identity provider. All endpoints
// come from the environment so the same binary works against any provider
// that speaks the authorization-code flow and serves an OIDC-style
// userinfo document.
type ProviderConfig struct {
	Name         string // login-method label stored on the user, e.g. "manus"
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	CallbackURL  string
	Scopes       []string
}

// Provider wraps golang.org/x/oauth2 for the authorization-code flow.
//
// The code-for-token exchange happens server-to-server using the client
// secret; the access token never reaches the browser.
type Provider struct {
	name        string
	userInfoURL string
	config      *oauth2.Config
}

// NewProvider creates a Provider from the given config.
// CallbackURL must exactly match the redirect URI registered with the
// provider, e.g. "http://localhost:8080/auth/callback".
func NewProvider(cfg ProviderConfig) *Provider {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"openid", "profile", "email"}
	}
	return &Provider{
		name:        cfg.Name,
		userInfoURL: cfg.UserInfoURL,
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
	}
}

// Name returns the provider label recorded as the user's login method.
func (p *Provider) Name() string {
	return p.name
}

// AuthURL returns the provider URL to redirect the user to.
//
// The state is a random nonce stored in a short-lived cookie before the
// redirect; the callback handler verifies the provider echoed it back.
// That ties the callback to a flow this server started (CSRF protection).
func (p *Provider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange completes the login: trades the authorization code for an access
// token, then fetches the userinfo document with it.
//
// oauth2.Config.Client returns an *http.Client that attaches the bearer
// token to every request, so the userinfo call is a plain GET.
func (p *Provider) Exchange(ctx context.Context, code string) (*Profile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	client := p.config.Client(ctx, token)

	resp, err := client.Get(p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("auth: calling userinfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: userinfo endpoint returned status %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("auth: decoding userinfo response: %w", err)
	}

	if profile.OpenID == "" {
		return nil, fmt.Errorf("auth: provider returned a profile with no subject")
	}

	return &profile, nil
}
