package httpclient

import "context"

// Configure installs the session handlers consumed by ProcessRequest:
// onUnauthorized fires once per terminally-unauthorized response (no return
// contract), onNeedsRefresh is awaited when a response marks the credential as
// refreshable. The first Configure wins and later calls are ignored, so
// re-wiring during UI re-renders cannot stack duplicate handlers.
func (c *HTTPClient) Configure(onUnauthorized func(), onNeedsRefresh func(ctx context.Context) error) {
	c.configureOnce.Do(func() {
		c.onUnauthorized = onUnauthorized
		c.onNeedsRefresh = onNeedsRefresh
	})
}

// ClearSession drops all local credential material (cookies and tokens).
// Server-side session state is untouched.
func (c *HTTPClient) ClearSession() {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	c.token.Clear()
}
