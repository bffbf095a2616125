package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/joy-dx/storefront/client/httpclient"
	"github.com/joy-dx/storefront/dto"
	"github.com/joy-dx/storefront/utils"
)

// Get performs a GET against the storefront API, path-relative to the
// configured base URL.
func (s *StoreSvc) Get(ctx context.Context, path string, withRetry bool) (dto.Response, error) {
	httpRequestConfig := httpclient.DefaultHTTPRequestConfig()
	httpRequestConfig.WithPath(path)
	cfg := dto.DefaultRequestConfig()
	cfg.WithReqConfig(&httpRequestConfig).
		WithTaskName("GET " + path)

	if withRetry {
		return s.RequestWithRetry(ctx, &cfg)
	}
	return s.RequestOnce(ctx, &cfg)
}

// Post performs a JSON POST against the storefront API.
func (s *StoreSvc) Post(ctx context.Context, path string, payload map[string]interface{}, withRetry bool) (dto.Response, error) {
	httpRequestConfig := httpclient.DefaultHTTPRequestConfig()
	httpRequestConfig.WithPath(path).
		WithBody(payload).
		WithMethod(http.MethodPost)
	cfg := dto.DefaultRequestConfig()
	cfg.WithReqConfig(&httpRequestConfig).
		WithTaskName("POST " + path)

	if withRetry {
		return s.RequestWithRetry(ctx, &cfg)
	}
	return s.RequestOnce(ctx, &cfg)
}

// PostWithoutAuthHooks performs a JSON POST with the client's session hooks
// disabled for this request. The refresh handler renews sessions through this
// path so a rejected renewal cannot re-enter the handler.
func (s *StoreSvc) PostWithoutAuthHooks(ctx context.Context, path string, payload map[string]interface{}) (dto.Response, error) {
	httpRequestConfig := httpclient.DefaultHTTPRequestConfig()
	httpRequestConfig.WithPath(path).
		WithBody(payload).
		WithMethod(http.MethodPost).
		WithoutAuthHooks()
	cfg := dto.DefaultRequestConfig()
	cfg.WithReqConfig(&httpRequestConfig).
		WithTaskName("POST " + path)

	return s.RequestOnce(ctx, &cfg)
}

// RequestWithRetry repeats RequestOnce on transient failures. Only the
// no-response network path and 5xx responses are retried; validation errors,
// other 4xx rejections and caller aborts are returned immediately.
func (s *StoreSvc) RequestWithRetry(ctx context.Context, cfg *dto.RequestConfig) (dto.Response, error) {
	if cfg == nil {
		return dto.Response{}, errors.New("nil RequestConfig provided")
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Delay == nil {
		cfg.Delay = utils.ConstantDelay{Period: 1}
	}
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			cfg.Delay.Wait(cfg.TaskName, attempt)
		}

		resp, err := s.RequestOnce(ctx, cfg)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) {
			return resp, err
		}
		if attempt == cfg.MaxRetries {
			return resp, fmt.Errorf("failed after %d attempts: %w", cfg.MaxRetries+1, lastErr)
		}
	}

	return dto.Response{}, fmt.Errorf("failed after %d attempts: %w", cfg.MaxRetries+1, lastErr)
}

// retryable holds for failures where a later attempt could plausibly succeed.
func retryable(err error) bool {
	if info, ok := dto.AsErrorInfo(err); ok {
		switch info.Kind {
		case dto.ErrKindNetwork:
			return true
		case dto.ErrKindServer:
			return info.Status >= 500
		default:
			return false
		}
	}
	return utils.IsTemporaryErr(err)
}

// RequestOnce resolves the client, applies the per-request timeout and runs a
// single exchange. A failed response is still returned alongside its error so
// callers can inspect status and headers.
func (s *StoreSvc) RequestOnce(ctx context.Context, cfg *dto.RequestConfig) (dto.Response, error) {
	if cfg == nil {
		return dto.Response{}, errors.New("nil RequestConfig provided")
	}
	if cfg.ClientRef == "" {
		return dto.Response{}, errors.New("nil ClientRef provided")
	}
	if cfg.ReqConfig == nil {
		return dto.Response{}, dto.ErrNilReqConfig
	}
	if cfg.TaskName == "" {
		cfg.TaskName = "http_request"
	}

	netClient, isOK := s.clients[cfg.ClientRef]
	if !isOK {
		return dto.Response{}, fmt.Errorf("client not found: %s", cfg.ClientRef)
	}

	// Sanity check that the req config matches the client type to avoid later casting confusion
	if netClient.Type() != cfg.ReqConfig.Ref() {
		return dto.Response{}, fmt.Errorf(
			"client type mismatch: client=%s(%s) req=%s",
			cfg.ClientRef,
			netClient.Type(),
			cfg.ReqConfig.Ref(),
		)
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	response, err := netClient.ProcessRequest(ctx, cfg)
	if err != nil {
		return response, fmt.Errorf("perform request: %w", err)
	}

	if cfg.ResponseObject != nil && len(response.Body) > 0 {
		if unmarshalErr := json.Unmarshal(response.Body, cfg.ResponseObject); unmarshalErr != nil {
			return response, fmt.Errorf("unmarshal response: %w", unmarshalErr)
		}
	}

	return response, nil
}
