package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/joy-dx/storefront/dto"
)

// normalizeAuthType ensures proper "Bearer", "Basic", or custom capitalization.
func normalizeAuthType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "bearer":
		return "Bearer"
	case "basic":
		return "Basic"
	default:
		if t == "" {
			return "Bearer"
		}
		return t
	}
}

// ensureToken verifies if an active credential is valid, auto-refreshing if
// necessary. Cookie-only sessions never trigger a refresh here; their renewal
// is driven by the needs-refresh handler.
func (c *HTTPClient) ensureToken(ctx context.Context) error {
	if c.cfg.OAuthSource == nil && c.cfg.AuthProvider == nil {
		return nil
	}
	c.tokenMu.RLock()
	valid := !c.token.IsExpired(c.cfg.RefreshBuffer)
	c.tokenMu.RUnlock()
	if valid {
		return nil
	}
	return c.refreshToken(ctx)
}

// refreshToken retrieves a new credential using OAuth2 or AuthProvider.
// OAuth2 takes precedence when both are configured.
func (c *HTTPClient) refreshToken(ctx context.Context) error {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if !c.token.IsExpired(c.cfg.RefreshBuffer) {
		return nil
	}

	if c.cfg.OAuthSource != nil {
		oauthTok, err := c.cfg.OAuthSource.Token()
		if err != nil {
			return fmt.Errorf("oauth2 token fetch: %w", dto.NewUnknownError(err))
		}
		c.token.AccessToken = oauthTok.AccessToken
		c.token.TokenType = normalizeAuthType(oauthTok.TokenType)
		c.token.Expiry = oauthTok.Expiry
		return nil
	}

	var newTok dto.TokenInfo
	var err error

	if !c.token.HasCredentials() {
		newTok, err = c.cfg.AuthProvider.Authenticate(ctx)
	} else {
		newTok, err = c.cfg.AuthProvider.Refresh(ctx, c.token)
		if err != nil {
			newTok, err = c.cfg.AuthProvider.Authenticate(ctx)
		}
	}
	if err != nil {
		return fmt.Errorf("auth provider refresh: %w", err)
	}

	newTok.TokenType = normalizeAuthType(newTok.TokenType)
	c.token = newTok
	return nil
}

// -----------------------------------------------------------------------------
// HEADER + COOKIE MANAGEMENT
// -----------------------------------------------------------------------------

// attachAuth injects auth credentials or session cookies into the request.
// Callers hold tokenMu.
func (c *HTTPClient) attachAuth(cfg *HTTPRequest) {
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}

	if c.token.AccessToken != "" {
		authHeader := fmt.Sprintf("%s %s", normalizeAuthType(c.token.TokenType), c.token.AccessToken)
		cfg.Headers["Authorization"] = authHeader
		return
	}

	if len(c.token.Cookies) > 0 {
		merged := ""
		for _, ck := range c.token.Cookies {
			merged += ck.Name + "=" + ck.Value + "; "
		}
		cfg.Headers["Cookie"] = merged
	}
}

// captureCookiesFromResponse stores updated cookies from Set-Cookie headers.
func (c *HTTPClient) captureCookiesFromResponse(resp dto.Response) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	for _, set := range resp.Headers["Set-Cookie"] {
		cookies := parseSetCookieHeader(set)
		for _, cookie := range cookies {
			c.storeOrReplaceCookie(cookie)
		}
	}
}

// storeOrReplaceCookie updates or appends a cookie by its name.
func (c *HTTPClient) storeOrReplaceCookie(cookie *http.Cookie) {
	for i, existing := range c.token.Cookies {
		if existing.Name == cookie.Name {
			c.token.Cookies[i] = cookie
			return
		}
	}
	c.token.Cookies = append(c.token.Cookies, cookie)
}

// parseSetCookieHeader safely extracts cookies from a raw Set-Cookie header line.
func parseSetCookieHeader(v string) []*http.Cookie {
	resp := &http.Response{Header: http.Header{"Set-Cookie": []string{v}}}
	return resp.Cookies()
}
