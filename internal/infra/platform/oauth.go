package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"
)

// OAuthConfig contains configuration for an OAuth2 token endpoint.
type OAuthConfig struct {
	// TokenURL is the provider's token endpoint
	TokenURL string

	// ClientID identifies this application to the provider
	ClientID string

	// ClientSecret authenticates this application to the provider
	ClientSecret string

	// Scope is the space-separated scope list requested with each grant
	Scope string
}

// oauthService keys the token endpoint circuit breaker in the registry.
const oauthService = "oauth"

// expirySkew is subtracted from the reported token lifetime so a token is
// refreshed before the provider actually rejects it.
const expirySkew = 30 * time.Second

// TokenSource exchanges and refreshes OAuth2 access tokens against a provider
// token endpoint. Token requests are dispatched through the shared Client, so
// a rate-limited identity provider is paced and queued like any other host.
//
// The zero value is not usable; create instances with NewTokenSource.
// All methods are safe for concurrent use.
type TokenSource struct {
	config OAuthConfig
	client *Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	expiry       time.Time // zero means the token does not expire
}

// NewTokenSource creates a TokenSource for the given provider configuration.
func NewTokenSource(config OAuthConfig, client *Client) *TokenSource {
	return &TokenSource{
		config: config,
		client: client,
	}
}

// tokenResponse represents the provider's token endpoint reply.
// Error fields cover providers that report failures with a 200 status.
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"` // In seconds
	RefreshToken     string `json:"refresh_token"`
	Scope            string `json:"scope"`
	ErrorCode        string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Token returns a valid access token, requesting or refreshing one as needed.
//
// A cached token is reused until 30 seconds before its reported expiry. When
// a refresh token is held the refresh_token grant is used; otherwise the
// client_credentials grant obtains a fresh token.
//
// Returns the bearer token string, or an error when the provider rejects the
// grant or the endpoint is unreachable.
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.valid() {
		return t.accessToken, nil
	}

	form := url.Values{}
	if t.refreshToken != "" {
		form.Set("grant_type", "refresh_token")
		form.Set("refresh_token", t.refreshToken)
	} else {
		form.Set("grant_type", "client_credentials")
	}

	if err := t.requestToken(ctx, form); err != nil {
		return "", err
	}
	return t.accessToken, nil
}

// Exchange trades an authorization code for an access token and stores the
// result, including any refresh token, for later Token calls.
func (t *TokenSource) Exchange(ctx context.Context, code, redirectURI string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)

	return t.requestToken(ctx, form)
}

// Invalidate drops the cached tokens so the next Token call hits the
// provider again. Used after an endpoint rejects a bearer token early.
func (t *TokenSource) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.accessToken = ""
	t.refreshToken = ""
	t.expiry = time.Time{}
}

// valid reports whether the cached access token can still be used.
// Caller must hold t.mu.
func (t *TokenSource) valid() bool {
	if t.accessToken == "" {
		return false
	}
	if t.expiry.IsZero() {
		return true
	}
	return time.Now().Before(t.expiry.Add(-expirySkew))
}

// requestToken posts the grant to the token endpoint and stores the issued
// token. Caller must hold t.mu.
func (t *TokenSource) requestToken(ctx context.Context, form url.Values) error {
	grantType := form.Get("grant_type")
	form.Set("client_id", t.config.ClientID)
	form.Set("client_secret", t.config.ClientSecret)
	if t.config.Scope != "" {
		form.Set("scope", t.config.Scope)
	}

	body, err := t.client.PostForm(ctx, oauthService, t.config.TokenURL, form)
	if err != nil {
		return fmt.Errorf("token request (%s): %w", grantType, err)
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return fmt.Errorf("parse token response: %w", err)
	}
	if token.ErrorCode != "" {
		return fmt.Errorf("token request (%s) rejected: %s: %s", grantType, token.ErrorCode, token.ErrorDescription)
	}
	if token.AccessToken == "" {
		return fmt.Errorf("token response (%s) carries no access_token", grantType)
	}

	t.accessToken = token.AccessToken
	if token.RefreshToken != "" {
		t.refreshToken = token.RefreshToken
	}
	if token.ExpiresIn > 0 {
		t.expiry = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	} else {
		t.expiry = time.Time{}
	}

	slog.Info("OAuth token obtained",
		slog.String("grant_type", grantType),
		slog.Int64("expires_in", token.ExpiresIn),
		slog.Bool("refresh_token", t.refreshToken != ""))

	return nil
}
