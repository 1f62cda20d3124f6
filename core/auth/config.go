package auth

import "time"

// Config holds the credentials used to authenticate against the sync server.
type Config struct {
	// AccessToken is the bearer token. Empty means the user is signed out.
	AccessToken string `mapstructure:"access_token" default:""`
	// RefreshToken enables refreshing expired access tokens through TokenURL.
	RefreshToken string `mapstructure:"refresh_token" default:""`
	// TokenURL is the OAuth2 token endpoint.
	TokenURL     string `mapstructure:"token_url" default:""`
	ClientID     string `mapstructure:"client_id" default:""`
	ClientSecret string `mapstructure:"client_secret" default:""`
	// ExpiryLeeway treats tokens expiring within this window as expired.
	ExpiryLeeway time.Duration `mapstructure:"expiry_leeway" default:"30s"`
}

// CanRefresh reports whether expired tokens can be refreshed.
func (c Config) CanRefresh() bool {
	return c.RefreshToken != "" && c.TokenURL != ""
}
