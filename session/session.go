package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	relayDTO "github.com/joy-dx/relay/dto"

	"github.com/joy-dx/storefront/dto"
	"github.com/joy-dx/storefront/relays"
)

type Status string

const (
	// StatusBooting holds from construction until the first Bootstrap probe
	// settles. Auth-gated UI should render neither state while booting.
	StatusBooting         Status = "booting"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
)

// Caller is the slice of the store service the coordinator needs.
type Caller interface {
	Get(ctx context.Context, path string, withRetry bool) (dto.Response, error)
	Post(ctx context.Context, path string, payload map[string]interface{}, withRetry bool) (dto.Response, error)
	// PostWithoutAuthHooks posts with the transport's session hooks disabled.
	// Refresh must renew through this path: a rejected renewal on the hooked
	// path would re-enter the needs-refresh handler without bound.
	PostWithoutAuthHooks(ctx context.Context, path string, payload map[string]interface{}) (dto.Response, error)
}

// clientConfigurer installs the session hooks on the transport client.
type clientConfigurer interface {
	Configure(onUnauthorized func(), onNeedsRefresh func(ctx context.Context) error)
	ClearSession()
}

// Coordinator owns the auth session state machine. It is the only writer of
// session status; the transport layer reports auth failures through the hooks
// registered at construction and never mutates state itself.
type Coordinator struct {
	caller Caller
	client clientConfigurer
	relay  relayDTO.RelayInterface

	mu     sync.RWMutex
	status Status
	user   dto.UserRecord

	bootOnce sync.Once
}

func New(caller Caller, client clientConfigurer, relay relayDTO.RelayInterface) *Coordinator {
	c := &Coordinator{
		caller: caller,
		client: client,
		relay:  relay,
		status: StatusBooting,
	}
	if client != nil {
		client.Configure(c.handleUnauthorized, c.handleRefresh)
	}
	return c
}

func (c *Coordinator) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// IsInitialized reports whether the initial probe has settled. Until then the
// session is neither authenticated nor unauthenticated.
func (c *Coordinator) IsInitialized() bool {
	return c.Status() != StatusBooting
}

func (c *Coordinator) IsAuthenticated() bool {
	return c.Status() == StatusAuthenticated
}

// User returns the current account record, nil when unauthenticated.
func (c *Coordinator) User() dto.UserRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// Bootstrap probes the server for an existing session (a cookie surviving a
// reload) and resolves Booting exactly once. A failed probe is a benign
// outcome, not an error: the session settles Unauthenticated and the app
// proceeds logged out.
func (c *Coordinator) Bootstrap(ctx context.Context) {
	c.bootOnce.Do(func() {
		resp, err := c.caller.Get(ctx, "/auth/me", false)
		if err != nil {
			c.setUnauthenticated("no existing session")
			return
		}
		user, parseErr := parseUser(resp.Body)
		if parseErr != nil {
			c.setUnauthenticated("session probe unreadable")
			return
		}
		c.setAuthenticated(user, "session restored")
	})
}

// Login exchanges credentials for a session. A rejected login keeps the
// session Unauthenticated and returns the server's error untouched.
func (c *Coordinator) Login(ctx context.Context, email, password string) (dto.UserRecord, error) {
	if email == "" || password == "" {
		return nil, dto.NewValidationError("email and password are required")
	}

	resp, err := c.caller.Post(ctx, "/auth/login", map[string]interface{}{
		"email":    email,
		"password": password,
	}, false)
	if err != nil {
		c.setUnauthenticated("login rejected")
		return nil, err
	}

	user, parseErr := parseUser(resp.Body)
	if parseErr != nil {
		c.setUnauthenticated("login response unreadable")
		return nil, fmt.Errorf("parse login response: %w", parseErr)
	}
	c.setAuthenticated(user, "logged in")
	return user, nil
}

// Register creates an account and, like Login, establishes the session on
// success.
func (c *Coordinator) Register(ctx context.Context, payload map[string]interface{}) (dto.UserRecord, error) {
	if payload == nil {
		return nil, dto.NewValidationError("registration payload is required")
	}

	resp, err := c.caller.Post(ctx, "/auth/register", payload, false)
	if err != nil {
		return nil, err
	}

	user, parseErr := parseUser(resp.Body)
	if parseErr != nil {
		return nil, fmt.Errorf("parse register response: %w", parseErr)
	}
	c.setAuthenticated(user, "registered")
	return user, nil
}

// Logout ends the session. The server call is best-effort: local state is
// torn down whether or not the server acknowledged, so a dead backend can
// never trap a user in a logged-in UI.
func (c *Coordinator) Logout(ctx context.Context) error {
	_, err := c.caller.Post(ctx, "/auth/logout", nil, false)
	c.forceLocalLogout("logged out")
	return err
}

// Refresh renews the session server-side. On failure the session is closed
// locally and the error is returned so in-flight work can settle. A renewal
// body carrying a user record replaces the current one; a bodyless renewal
// keeps it.
func (c *Coordinator) Refresh(ctx context.Context) error {
	resp, err := c.caller.PostWithoutAuthHooks(ctx, "/auth/refresh", nil)
	if err != nil {
		c.forceLocalLogout("refresh failed")
		return err
	}
	if user, parseErr := parseUser(resp.Body); parseErr == nil {
		c.setAuthenticated(user, "session renewed")
	}
	return nil
}

// UpdateUser shallow-merges server-confirmed fields into the account record.
func (c *Coordinator) UpdateUser(partial map[string]any) dto.UserRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusAuthenticated {
		return nil
	}
	c.user = c.user.Merge(partial)
	return c.user
}

func (c *Coordinator) handleUnauthorized() {
	c.forceLocalLogout("session no longer valid")
}

func (c *Coordinator) handleRefresh(ctx context.Context) error {
	return c.Refresh(ctx)
}

func (c *Coordinator) setAuthenticated(user dto.UserRecord, msg string) {
	c.mu.Lock()
	c.status = StatusAuthenticated
	c.user = user
	c.mu.Unlock()
	c.emit(StatusAuthenticated, msg)
}

func (c *Coordinator) setUnauthenticated(msg string) {
	c.mu.Lock()
	c.status = StatusUnauthenticated
	c.user = nil
	c.mu.Unlock()
	c.emit(StatusUnauthenticated, msg)
}

func (c *Coordinator) forceLocalLogout(msg string) {
	if c.client != nil {
		c.client.ClearSession()
	}
	c.setUnauthenticated(msg)
}

func (c *Coordinator) emit(status Status, msg string) {
	if c.relay != nil {
		c.relay.Info(relays.RlyStoreSession{Status: string(status), Msg: msg})
	}
}

// parseUser accepts both {"user": {...}} envelopes and bare account objects.
// A body whose "user" field is null or empty is an anonymous session, not an
// account.
func parseUser(body []byte) (dto.UserRecord, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("empty session body")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	if raw, isEnvelope := fields["user"]; isEnvelope {
		var user dto.UserRecord
		if err := json.Unmarshal(raw, &user); err != nil {
			return nil, err
		}
		if len(user) == 0 {
			return nil, fmt.Errorf("no account fields in session body")
		}
		return user, nil
	}
	var bare dto.UserRecord
	if err := json.Unmarshal(body, &bare); err != nil {
		return nil, err
	}
	if len(bare) == 0 {
		return nil, fmt.Errorf("no account fields in session body")
	}
	return bare, nil
}
