package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/joy-dx/storefront/config"
	"github.com/joy-dx/storefront/dto"
)

// --- helpers ----------------------------------------------------------------

func newTestClient(t *testing.T, baseURL string, cfg *HTTPClientConfig) *HTTPClient {
	t.Helper()

	svcCfg := config.DefaultSvcConfig()
	svcCfg.WithBaseURL(baseURL).WithRequestTimeout(2 * time.Second)
	if cfg == nil {
		c := DefaultHTTPClientConfig()
		cfg = &c
	}
	return NewHTTPClient("test", &svcCfg, cfg)
}

func getRequest(path string) *dto.RequestConfig {
	httpCfg := DefaultHTTPRequestConfig()
	httpCfg.WithPath(path)
	cfg := dto.DefaultRequestConfig()
	cfg.WithReqConfig(&httpCfg)
	return &cfg
}

type staticTokenSource struct {
	tok *oauth2.Token
	n   atomic.Int64
}

func (s *staticTokenSource) Token() (*oauth2.Token, error) {
	s.n.Add(1)
	cpy := *s.tok
	return &cpy, nil
}

// --- tests ------------------------------------------------------------------

func TestProcessRequest_Success_Golden(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" || r.URL.Query().Get("page") != "2" {
			t.Errorf("unexpected request: %s", r.URL.String())
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)

	httpCfg := DefaultHTTPRequestConfig()
	httpCfg.WithPath("/products")
	httpCfg.Query = map[string][]string{"page": {"2"}}
	cfg := dto.DefaultRequestConfig()
	cfg.WithReqConfig(&httpCfg)

	resp, err := c.ProcessRequest(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if resp.StatusCode != 200 || string(resp.Body) != `{"ok":true}` {
		t.Fatalf("resp=%d %q", resp.StatusCode, resp.Body)
	}
}

func TestProcessRequest_ServerErrorNormalized(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid quantity","code":"VALIDATION","field":"quantity"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	resp, err := c.ProcessRequest(context.Background(), getRequest("/orders"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if resp.StatusCode != 422 {
		t.Fatalf("response not returned alongside error: %d", resp.StatusCode)
	}

	info, ok := dto.AsErrorInfo(err)
	if !ok {
		t.Fatalf("expected ErrorInfo, got %T %v", err, err)
	}
	if info.Kind != dto.ErrKindServer || info.Status != 422 || info.Code != "VALIDATION" {
		t.Fatalf("info=%+v", info)
	}
	if info.Fields["field"] != "quantity" {
		t.Fatalf("extra server fields lost: %+v", info.Fields)
	}
}

func TestProcessRequest_NetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse all connections

	c := newTestClient(t, srv.URL, nil)
	_, err := c.ProcessRequest(context.Background(), getRequest("/products"))

	info, ok := dto.AsErrorInfo(err)
	if !ok || info.Kind != dto.ErrKindNetwork || info.Code != dto.CodeNetworkError {
		t.Fatalf("want network error, got %v", err)
	}
}

func TestProcessRequest_CancelledIsNotNetworkError(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, srv.URL, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := c.ProcessRequest(ctx, getRequest("/slow"))
	info, ok := dto.AsErrorInfo(err)
	if !ok || info.Kind != dto.ErrKindCancelled {
		t.Fatalf("want cancelled, got %v", err)
	}
}

func TestProcessRequest_UnauthorizedFiresHandlerOnce(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"session invalid"}`))
	}))
	defer srv.Close()

	var unauthorized atomic.Int64
	c := newTestClient(t, srv.URL, nil)
	c.Configure(func() { unauthorized.Add(1) }, nil)
	// Second Configure must be ignored.
	c.Configure(func() { unauthorized.Add(100) }, nil)

	_, err := c.ProcessRequest(context.Background(), getRequest("/auth/me"))
	info, ok := dto.AsErrorInfo(err)
	if !ok || info.Status != 401 {
		t.Fatalf("want 401 ErrorInfo, got %v", err)
	}
	if unauthorized.Load() != 1 {
		t.Fatalf("unauthorized handler calls=%d want 1", unauthorized.Load())
	}
}

func TestProcessRequest_RefreshAndReplayCappedAtOne(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"expired","code":"TOKEN_EXPIRED"}`))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	clientCfg := DefaultHTTPClientConfig()
	clientCfg.WithRetryAfterRefresh(true)
	c := newTestClient(t, srv.URL, &clientCfg)

	var refreshes atomic.Int64
	c.Configure(nil, func(ctx context.Context) error {
		refreshes.Add(1)
		return nil
	})

	resp, err := c.ProcessRequest(context.Background(), getRequest("/orders"))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if refreshes.Load() != 1 || hits.Load() != 2 {
		t.Fatalf("refreshes=%d hits=%d", refreshes.Load(), hits.Load())
	}
}

func TestProcessRequest_RefreshLoopGuard(t *testing.T) {
	t.Parallel()

	// Server keeps answering refreshable 401s; the client must stop after one
	// refresh and surface the unauthorized error.
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"expired","code":"TOKEN_EXPIRED"}`))
	}))
	defer srv.Close()

	clientCfg := DefaultHTTPClientConfig()
	clientCfg.WithRetryAfterRefresh(true)
	c := newTestClient(t, srv.URL, &clientCfg)

	var refreshes, unauthorized atomic.Int64
	c.Configure(
		func() { unauthorized.Add(1) },
		func(ctx context.Context) error { refreshes.Add(1); return nil },
	)

	_, err := c.ProcessRequest(context.Background(), getRequest("/orders"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if refreshes.Load() != 1 {
		t.Fatalf("refreshes=%d want 1", refreshes.Load())
	}
	if hits.Load() != 2 {
		t.Fatalf("hits=%d want 2", hits.Load())
	}
	if unauthorized.Load() != 1 {
		t.Fatalf("unauthorized=%d want 1", unauthorized.Load())
	}
}

func TestProcessRequest_HooklessRefreshDoesNotRecurse(t *testing.T) {
	t.Parallel()

	// Every endpoint, the renewal one included, answers a refreshable 401.
	// The handler renews through the same client with the hooks disabled, so
	// the chain terminates instead of re-entering itself.
	var hits, refreshHits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/auth/refresh" {
			refreshHits.Add(1)
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"expired","code":"TOKEN_EXPIRED"}`))
	}))
	defer srv.Close()

	clientCfg := DefaultHTTPClientConfig()
	clientCfg.WithRetryAfterRefresh(true)
	c := newTestClient(t, srv.URL, &clientCfg)

	var unauthorized atomic.Int64
	c.Configure(
		func() { unauthorized.Add(1) },
		func(ctx context.Context) error {
			refreshCfg := DefaultHTTPRequestConfig()
			refreshCfg.WithPath("/auth/refresh").
				WithMethod(http.MethodPost).
				WithoutAuthHooks()
			cfg := dto.DefaultRequestConfig()
			cfg.WithReqConfig(&refreshCfg)
			_, err := c.ProcessRequest(ctx, &cfg)
			return err
		},
	)

	_, err := c.ProcessRequest(context.Background(), getRequest("/orders"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if hits.Load() != 2 || refreshHits.Load() != 1 {
		t.Fatalf("hits=%d refresh hits=%d", hits.Load(), refreshHits.Load())
	}
	if unauthorized.Load() != 1 {
		t.Fatalf("unauthorized=%d want 1", unauthorized.Load())
	}
}

func TestProcessRequest_CookieSessionCapturedAndReplayed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "s3cret"})
			w.Write([]byte(`{"user":{"id":"u1"}}`))
		case "/auth/me":
			if ck, err := r.Cookie("sid"); err != nil || ck.Value != "s3cret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`{"user":{"id":"u1"}}`))
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)

	if _, err := c.ProcessRequest(context.Background(), getRequest("/auth/login")); err != nil {
		t.Fatalf("login: %v", err)
	}
	resp, err := c.ProcessRequest(context.Background(), getRequest("/auth/me"))
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("cookie not replayed, status=%d", resp.StatusCode)
	}

	// ClearSession severs the local session.
	c.ClearSession()
	if _, err := c.ProcessRequest(context.Background(), getRequest("/auth/me")); err == nil {
		t.Fatalf("expected 401 after ClearSession")
	}
}

func TestProcessRequest_OAuthSourceAttachesBearer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	src := &staticTokenSource{tok: &oauth2.Token{AccessToken: "tok123", TokenType: "bearer"}}
	clientCfg := DefaultHTTPClientConfig()
	clientCfg.WithOAuthSource(src)
	c := newTestClient(t, srv.URL, &clientCfg)

	resp, err := c.ProcessRequest(context.Background(), getRequest("/orders"))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

func TestProcessRequest_PostBodyJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if body["email"] != "a@b.com" {
			t.Errorf("body=%v", body)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type=%q", ct)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)

	httpCfg := DefaultHTTPRequestConfig()
	httpCfg.WithPath("/auth/login").
		WithMethod(http.MethodPost).
		WithBody(map[string]interface{}{"email": "a@b.com"})
	cfg := dto.DefaultRequestConfig()
	cfg.WithReqConfig(&httpCfg)

	resp, err := c.ProcessRequest(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}
