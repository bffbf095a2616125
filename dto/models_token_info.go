package dto

import (
	"net/http"
	"time"
)

// TokenInfo holds the active credential for the storefront session. The
// primary mode is a server-set session cookie; bearer tokens are supported for
// integrations that authenticate out of band.
type TokenInfo struct {
	// Authorization token, e.g. "Bearer abc123". Empty for cookie sessions.
	AccessToken string
	// TokenType is inferred if not provided (default "Bearer").
	TokenType string
	// Expiry time. Optional; zero for cookie-only sessions.
	Expiry  time.Time
	Cookies []*http.Cookie
}

// HasCredentials reports whether any credential material is present.
func (t *TokenInfo) HasCredentials() bool {
	return t.AccessToken != "" || len(t.Cookies) > 0
}

// IsExpired returns true if the token is close to or past expiry.
func (t *TokenInfo) IsExpired(buffer time.Duration) bool {
	if !t.HasCredentials() {
		return true
	}
	if t.Expiry.IsZero() {
		// Sessions with no expiry are considered indefinitely valid
		return false
	}
	return time.Now().After(t.Expiry.Add(-buffer))
}

// Clear drops all credential material, severing the local session.
func (t *TokenInfo) Clear() {
	t.AccessToken = ""
	t.TokenType = ""
	t.Expiry = time.Time{}
	t.Cookies = nil
}
