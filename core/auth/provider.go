package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Provider hands out bearer tokens for sync requests.
// An empty token means no user is signed in.
type Provider struct {
	cfg    Config
	logger *zap.Logger
	now    func() time.Time

	mu     sync.Mutex
	source oauth2.TokenSource
}

// NewProvider builds a provider from static credentials.
// When a refresh token and token URL are configured, expired tokens are refreshed via OAuth2.
func NewProvider(cfg Config, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Provider{cfg: cfg, logger: logger, now: time.Now}
	p.source = p.newSource(context.Background())
	return p
}

func (p *Provider) newSource(ctx context.Context) oauth2.TokenSource {
	if p.cfg.AccessToken == "" && !p.cfg.CanRefresh() {
		return nil
	}

	tok := &oauth2.Token{
		AccessToken:  p.cfg.AccessToken,
		RefreshToken: p.cfg.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       expiryOf(p.cfg.AccessToken),
	}
	if !p.cfg.CanRefresh() {
		return oauth2.StaticTokenSource(tok)
	}

	oc := &oauth2.Config{
		ClientID:     p.cfg.ClientID,
		ClientSecret: p.cfg.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: p.cfg.TokenURL},
	}
	if tok.AccessToken == "" {
		// Force a refresh on first use.
		tok.Expiry = time.Unix(1, 0)
	}
	return oauth2.ReuseTokenSource(tok, oc.TokenSource(ctx, tok))
}

// AccessToken returns the current bearer token, refreshing it when possible.
// It returns an empty string when signed out or when the token expired and cannot be refreshed.
func (p *Provider) AccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	source := p.source
	p.mu.Unlock()

	if source == nil {
		return "", nil
	}

	tok, err := source.Token()
	if err != nil {
		return "", fmt.Errorf("failed to obtain access token: %w", err)
	}

	if exp := expiryOf(tok.AccessToken); !exp.IsZero() && !p.now().Add(p.cfg.ExpiryLeeway).Before(exp) {
		p.logger.Warn("Access token expired", zap.Time("expires_at", exp))
		return "", nil
	}
	return tok.AccessToken, nil
}

// Logout forgets every credential. Later AccessToken calls return an empty token.
func (p *Provider) Logout() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.source = nil
	p.logger.Info("Signed out")
}

// expiryOf reads the exp claim of a JWT without verifying it.
// Opaque tokens have no known expiry.
func expiryOf(token string) time.Time {
	if token == "" {
		return time.Time{}
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
