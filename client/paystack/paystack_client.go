package paystack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	relayDTO "github.com/joy-dx/relay/dto"

	"github.com/joy-dx/storefront/dto"
	"github.com/joy-dx/storefront/relays"
)

// gatewayAPI This internal interface abstracts the gateway transport for easier testing
type gatewayAPI interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the Paystack checkout gateway. Readiness is two separate
// gates: Configured (a public key is present) and Loaded (the gateway
// handshake completed). Both must hold before a widget can be set up; callers
// that hit the gap get an immediate error rather than a hung checkout.
type Client struct {
	cfg    *Config
	client gatewayAPI
	relay  relayDTO.RelayInterface
	loaded atomic.Bool
}

func NewClient(cfg *Config, relay relayDTO.RelayInterface) *Client {
	return &Client{
		cfg:   cfg,
		relay: relay,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
				Proxy:               http.ProxyFromEnvironment,
			},
		},
	}
}

// Configured reports whether a public key is present. This is independent of
// Load: a configured client may still be waiting on the handshake.
func (c *Client) Configured() bool {
	return c.cfg.PublicKey != ""
}

// Ready reports whether Setup can succeed right now.
func (c *Client) Ready() bool {
	return c.Configured() && c.loaded.Load()
}

// Load performs the gateway handshake. It is cheap to call repeatedly; once
// loaded it stays loaded.
func (c *Client) Load(ctx context.Context) error {
	if !c.Configured() {
		return errors.New("no public key configured")
	}
	if c.loaded.Load() {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.cfg.GatewayURL, nil)
	if err != nil {
		return fmt.Errorf("build handshake request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway handshake: %w", dto.NewNetworkError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("gateway handshake: unexpected status %d", resp.StatusCode)
	}

	c.loaded.Store(true)
	if c.relay != nil {
		c.relay.Debug(relays.RlyStoreLog{Msg: "Payment gateway loaded"})
	}
	return nil
}

// Setup validates params against the client state and returns a widget handle
// for one payment attempt. It never performs network I/O itself.
func (c *Client) Setup(params dto.WidgetParams) (dto.PaymentWidget, error) {
	if !c.Configured() {
		return nil, errors.New("payment gateway not configured")
	}
	if !c.loaded.Load() {
		return nil, errors.New("payment system is still loading, try again shortly")
	}
	if params.Email == "" {
		return nil, errors.New("email is required")
	}
	if params.Amount <= 0 {
		return nil, errors.New("amount must be positive")
	}
	if params.Reference == "" {
		return nil, errors.New("reference is required")
	}

	if params.Key == "" {
		params.Key = c.cfg.PublicKey
	}
	if params.Currency == "" {
		params.Currency = c.cfg.Currency
	}
	if len(params.Channels) == 0 {
		params.Channels = c.cfg.Channels
	}

	return &Handle{
		cfg:    c.cfg,
		client: c.client,
		relay:  c.relay,
		params: params,
	}, nil
}

func gatewayEndpoint(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
