package httpclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/joy-dx/storefront/dto"
)

// HTTPRequestConfig is immutable input (safe to reuse).
type HTTPRequestConfig struct {
	Method string `json:"method" yaml:"method"`
	// Path is joined onto the service base URL; absolute URLs pass through.
	Path  string     `json:"path" yaml:"path"`
	Query url.Values `json:"query,omitempty" yaml:"query,omitempty"`
	Body  map[string]interface{} `json:"body" yaml:"body"`
	// BodyType application/json, application/x-www-form-urlencoded
	BodyType string            `json:"body_type" yaml:"body_type"`
	Headers  map[string]string `json:"headers" yaml:"headers"`
	// SkipAuthHooks keeps a 401 on this request from firing the configured
	// unauthorized/needs-refresh handlers. The session-renewal request itself
	// must run with this set: its own rejection re-entering the refresh
	// handler would recurse without bound.
	SkipAuthHooks bool `json:"skip_auth_hooks" yaml:"skip_auth_hooks"`
}

func DefaultHTTPRequestConfig() HTTPRequestConfig {
	return HTTPRequestConfig{
		Method:   http.MethodGet,
		Body:     nil,
		BodyType: "application/json",
		Headers:  make(map[string]string),
	}
}

func (c *HTTPRequestConfig) Ref() dto.NetClientType {
	return NetClientHTTPRef
}

func (c *HTTPRequestConfig) WithMethod(method string) *HTTPRequestConfig {
	c.Method = method
	return c
}
func (c *HTTPRequestConfig) WithBody(body map[string]interface{}) *HTTPRequestConfig {
	c.Body = body
	return c
}
func (c *HTTPRequestConfig) WithHeaders(headers map[string]string) *HTTPRequestConfig {
	c.Headers = headers
	return c
}
func (c *HTTPRequestConfig) WithPath(path string) *HTTPRequestConfig {
	c.Path = path
	return c
}
func (c *HTTPRequestConfig) WithQuery(q url.Values) *HTTPRequestConfig {
	c.Query = q
	return c
}
func (c *HTTPRequestConfig) WithoutAuthHooks() *HTTPRequestConfig {
	c.SkipAuthHooks = true
	return c
}

// NewRequest creates a per-call mutable request object.
// This avoids mutating the config and avoids leaks without cloning the config maps.
func (c *HTTPRequestConfig) NewRequest(ctx context.Context) (any, error) {
	r := &HTTPRequest{
		Method:        c.Method,
		Path:          c.Path,
		BodyType:      c.BodyType,
		Headers:       make(map[string]string, len(c.Headers)),
		SkipAuthHooks: c.SkipAuthHooks,
	}
	if c.Body != nil {
		r.Body = make(map[string]any, len(c.Body))
		for k, v := range c.Body {
			r.Body[k] = v
		}
	}
	if len(c.Query) > 0 {
		r.Query = make(url.Values, len(c.Query))
		for k, v := range c.Query {
			r.Query[k] = append([]string(nil), v...)
		}
	}
	for k, v := range c.Headers {
		r.Headers[k] = v
	}
	return r, nil
}

// HTTPRequest is per-call mutable state.
type HTTPRequest struct {
	Method        string
	Path          string
	Query         url.Values
	Body          map[string]any
	BodyType      string
	Headers       map[string]string
	SkipAuthHooks bool
	// Finalized wire body (deterministic for tests and retries)
	BodyBytes   []byte
	ContentType string
}

func (r *HTTPRequest) ClientType() dto.NetClientType { return NetClientHTTPRef }

func (r *HTTPRequest) SetHeader(k, v string) {
	if r.Headers == nil {
		r.Headers = map[string]string{}
	}
	r.Headers[k] = v
}

func (r *HTTPRequest) Header(k string) string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers[k]
}
