// Package auth supplies bearer tokens to the reconciliation engine.
//
// Provider wraps an oauth2.TokenSource. With only an access token configured the token is
// served as is until its JWT exp claim passes, after which the user counts as signed out.
// With a refresh token and token URL, expired tokens are exchanged through the OAuth2
// refresh flow. Logout drops every credential.
//
// Token signatures are never verified here; the sync server does that.
package auth
