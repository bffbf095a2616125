package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/joy-dx/storefront/config"
	"github.com/joy-dx/storefront/dto"
)

// -----------------------------------------------------------------------------
// PERSISTENT CLIENT IMPLEMENTATION
// -----------------------------------------------------------------------------

// HTTPClient is the single egress point for storefront API traffic. It applies
// the base URL, default headers and credential mode uniformly, normalizes every
// failure into a dto.ErrorInfo, and notifies the session layer through the
// handlers installed with Configure.
//
// It supports multiple authentication modes:
//   - Cookie-based sessions (default for the storefront)
//   - OAuth2 TokenSource (golang.org/x/oauth2)
//   - Custom AuthProvider
//
// HTTPClient is safe for concurrent use; credential state is guarded.

const NetClientHTTPRef dto.NetClientType = "net.client.http"

type HTTPClient struct {
	NetClient dto.NetClient `json:"net_client" yaml:"net_client"`
	cfg       *HTTPClientConfig
	svcCfg    *config.SvcConfig
	client    *http.Client
	token     dto.TokenInfo
	tokenMu   sync.RWMutex

	configureOnce  sync.Once
	onUnauthorized func()
	onNeedsRefresh func(ctx context.Context) error
}

func NewHTTPClient(ref string, svcCfg *config.SvcConfig, cfg *HTTPClientConfig) *HTTPClient {
	return &HTTPClient{
		cfg:    cfg,
		svcCfg: svcCfg,
		NetClient: dto.NetClient{
			Name:        "Storefront API Client",
			Ref:         ref,
			ClientType:  NetClientHTTPRef,
			Description: "Performs storefront REST requests including session support",
		},
		client: &http.Client{
			Timeout: svcCfg.RequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        50,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
				DisableKeepAlives:   false,
				Proxy:               http.ProxyFromEnvironment,
			},
		},
	}
}

func (c *HTTPClient) Ref() string {
	return c.NetClient.Ref
}
func (c *HTTPClient) Type() dto.NetClientType {
	return NetClientHTTPRef
}

// -----------------------------------------------------------------------------
// REQUEST EXECUTION
// -----------------------------------------------------------------------------

// ProcessRequest executes one authenticated, middleware-wrapped call. Every
// rejection carries exactly one dto.ErrorInfo in its chain, never a raw
// transport error. The response is returned alongside the error where one was
// received so callers can still inspect status and headers.
func (c *HTTPClient) ProcessRequest(ctx context.Context, inCfg *dto.RequestConfig) (dto.Response, error) {
	cfg, castOk := inCfg.ReqConfig.(*HTTPRequestConfig)
	if !castOk {
		return dto.Response{}, dto.NewUnknownError(errors.New("problem casting to httprequestconfig"))
	}

	reqAny, err := cfg.NewRequest(ctx)
	if err != nil {
		return dto.Response{}, fmt.Errorf("build request: %w", dto.NewUnknownError(err))
	}
	reqCfg, ok := reqAny.(*HTTPRequest)
	if !ok {
		return dto.Response{}, dto.NewUnknownError(errors.New("problem casting built request to httprequest"))
	}

	for _, mw := range c.cfg.Middlewares {
		if err := mw(ctx, reqCfg); err != nil {
			return dto.Response{}, fmt.Errorf("middleware aborted: %w", dto.NewUnknownError(err))
		}
	}

	if err := c.ensureToken(ctx); err != nil {
		return dto.Response{}, fmt.Errorf("ensure token: %w", err)
	}

	if err := reqCfg.FinalizeBody(); err != nil {
		return dto.Response{}, fmt.Errorf("finalize body: %w", dto.NewUnknownError(err))
	}

	// One pass, plus at most one replay after a successful token refresh.
	refreshed := false
	for {
		c.tokenMu.RLock()
		c.attachAuth(reqCfg)
		c.tokenMu.RUnlock()

		response, err := c.doOnce(ctx, reqCfg)
		if err != nil {
			return response, err
		}

		if response.StatusCode >= 200 && response.StatusCode < 300 {
			return response, nil
		}

		errInfo := dto.ErrorFromResponse(response)

		if response.StatusCode == http.StatusUnauthorized && !reqCfg.SkipAuthHooks {
			if errInfo.Code == dto.CodeTokenExpired && c.onNeedsRefresh != nil && !refreshed {
				if refreshErr := c.onNeedsRefresh(ctx); refreshErr == nil {
					refreshed = true
					if c.cfg.RetryAfterRefresh {
						continue
					}
					// Refresh succeeded; replaying is the caller's decision.
					return response, errInfo
				}
			}
			// Terminal unauthorized: fire-and-forget notification.
			if c.onUnauthorized != nil {
				c.onUnauthorized()
			}
		}

		return response, errInfo
	}
}

// doOnce performs a single wire exchange and classifies transport failures.
func (c *HTTPClient) doOnce(ctx context.Context, reqCfg *HTTPRequest) (dto.Response, error) {
	httpReq, err := http.NewRequestWithContext(
		ctx,
		reqCfg.Method,
		c.requestURL(reqCfg),
		bytes.NewReader(reqCfg.BodyBytes),
	)
	if err != nil {
		return dto.Response{}, fmt.Errorf("create request: %w", dto.NewUnknownError(err))
	}

	for k, v := range c.svcCfg.ExtraHeaders {
		httpReq.Header.Set(k, v)
	}
	if c.svcCfg.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.svcCfg.UserAgent)
	}
	for k, v := range reqCfg.Headers {
		if k == "Authorization" && httpReq.Header.Get("Authorization") != "" {
			continue
		}
		httpReq.Header.Set(k, v)
	}
	if reqCfg.ContentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", reqCfg.ContentType)
	}

	// Defensive client.Do handling — httpResp may be non-nil with error
	httpResp, reqErr := c.client.Do(httpReq)
	if httpResp != nil {
		defer func() {
			io.Copy(io.Discard, httpResp.Body) // drain fully for connection reuse
			httpResp.Body.Close()
		}()
	}
	if reqErr != nil {
		return dto.Response{}, classifyTransportErr(ctx, reqErr)
	}

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return dto.Response{}, fmt.Errorf("read body: %w", dto.NewNetworkError(err))
	}

	response := dto.Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header.Clone(),
		Body:       bodyBytes,
	}

	// Capture cookies, prunes if expired
	if c.svcCfg.WithCredentials {
		if setCookies := response.Headers["Set-Cookie"]; len(setCookies) > 0 {
			c.captureCookiesFromResponse(response)
		}
	}

	return response, nil
}

// classifyTransportErr maps a client.Do failure onto the error taxonomy:
// caller abort is a cancellation, everything else (DNS, refused, timeout)
// is the no-response network path.
func classifyTransportErr(ctx context.Context, err error) error {
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return fmt.Errorf("perform request: %w", dto.NewCancelledError())
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("perform request: %w", dto.NewCancelledError())
	}
	return fmt.Errorf("perform request: %w", dto.NewNetworkError(err))
}

// requestURL joins the request path onto the configured base URL; absolute
// URLs are passed through untouched.
func (c *HTTPClient) requestURL(r *HTTPRequest) string {
	target := r.Path
	if !strings.Contains(target, "://") {
		target = strings.TrimRight(c.svcCfg.BaseURL, "/") + "/" + strings.TrimLeft(r.Path, "/")
	}
	if len(r.Query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + r.Query.Encode()
	}
	return target
}
