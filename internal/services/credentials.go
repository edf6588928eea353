package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/audiobox/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultTokenLifetime is assumed when the token endpoint omits expires_in.
const DefaultTokenLifetime = 3600 * time.Second

// CredentialCache hands out a bearer token for the catalog provider.
type CredentialCache interface {
	// Token returns the cached token, exchanging for a new one when it is stale or absent.
	Token(ctx context.Context) (string, error)
	// Refresh unconditionally exchanges for a new token and stores it.
	Refresh(ctx context.Context) (string, error)
}

// Grant is the result of a single credential exchange.
type Grant struct {
	AccessToken string
	ExpiresIn   time.Duration
}

// Exchanger performs the client-credentials exchange against the provider's token endpoint.
type Exchanger interface {
	Exchange(ctx context.Context) (Grant, error)
}

// ExchangerFunc adapts a function to [Exchanger].
type ExchangerFunc func(ctx context.Context) (Grant, error)

func (f ExchangerFunc) Exchange(ctx context.Context) (Grant, error) { return f(ctx) }

// ClientCredentialsExchanger implements [Exchanger] with [clientcredentials.Config].
//
// The client id and secret are sent as a Basic auth header and the grant type in a form-encoded body.
type ClientCredentialsExchanger struct {
	config     *clientcredentials.Config
	httpClient *http.Client
	timeout    time.Duration
}

// NewClientCredentialsExchanger creates a [ClientCredentialsExchanger] for the given credentials and token URL.
func NewClientCredentialsExchanger(clientID, clientSecret, tokenURL string, timeout time.Duration, client *http.Client) (*ClientCredentialsExchanger, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: client_id and client_secret are required", shared.ErrMissingCredentials)
	}
	if tokenURL == "" {
		tokenURL = spotifyTokenURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &ClientCredentialsExchanger{
		config: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		httpClient: client,
		timeout:    timeout,
	}, nil
}

// Exchange requests a new access token.
func (e *ClientCredentialsExchanger) Exchange(ctx context.Context) (Grant, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)

	tok, err := e.config.Token(ctx)
	if err != nil {
		return Grant{}, fmt.Errorf("%w: %w", shared.ErrAuthExchange, err)
	}

	grant := Grant{AccessToken: tok.AccessToken}
	if !tok.Expiry.IsZero() {
		grant.ExpiresIn = time.Until(tok.Expiry).Round(time.Second)
	}
	return grant, nil
}

// TokenCache implements [CredentialCache] around a single token and its expiry.
//
// The mutex guards only the stored credential. Concurrent callers that find the
// token stale may each exchange, and the last one to finish wins.
type TokenCache struct {
	exchanger Exchanger
	clock     func() time.Time
	logger    *log.Logger

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// TokenCacheOption configures a [TokenCache].
type TokenCacheOption func(*TokenCache)

// WithClock replaces [time.Now] as the cache's time source.
func WithClock(clock func() time.Time) TokenCacheOption {
	return func(c *TokenCache) { c.clock = clock }
}

// WithTokenLogger sets the logger used to report refreshes.
func WithTokenLogger(l *log.Logger) TokenCacheOption {
	return func(c *TokenCache) { c.logger = l }
}

// NewTokenCache creates an empty [TokenCache]. The first call to Token performs the exchange.
func NewTokenCache(exchanger Exchanger, opts ...TokenCacheOption) *TokenCache {
	c := &TokenCache{exchanger: exchanger, clock: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = shared.NewLogger(nil)
	}
	return c
}

// Token returns the cached token while the clock is before its expiry.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	token, expiresAt := c.token, c.expiresAt
	c.mu.Unlock()

	if token != "" && c.clock().Before(expiresAt) {
		return token, nil
	}
	return c.Refresh(ctx)
}

// Refresh exchanges for a new token and replaces the stored credential.
func (c *TokenCache) Refresh(ctx context.Context) (string, error) {
	grant, err := c.exchanger.Exchange(ctx)
	if err != nil {
		if !errors.Is(err, shared.ErrAuthExchange) {
			err = fmt.Errorf("%w: %w", shared.ErrAuthExchange, err)
		}
		return "", err
	}
	if grant.AccessToken == "" {
		return "", fmt.Errorf("%w: response missing access token", shared.ErrAuthExchange)
	}

	lifetime := grant.ExpiresIn
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}
	expiresAt := c.clock().Add(lifetime)

	c.mu.Lock()
	c.token, c.expiresAt = grant.AccessToken, expiresAt
	c.mu.Unlock()

	c.logger.Debug("refreshed catalog token", "expires_at", expiresAt.Format(time.RFC3339))
	return grant.AccessToken, nil
}

// Expiry reports when the stored token expires. Zero when nothing is cached.
func (c *TokenCache) Expiry() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expiresAt
}
