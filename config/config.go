package config

import (
	"time"

	relayDTO "github.com/joy-dx/relay/dto"

	"github.com/joy-dx/storefront/dto"
	"github.com/joy-dx/storefront/relays"
)

// SvcConfig carries the service-wide settings shared by every registered
// client. Build one with DefaultSvcConfig or FromEnv, then chain With*.
type SvcConfig struct {
	// BaseURL of the storefront REST API; request paths are joined onto it.
	BaseURL        string
	RequestTimeout time.Duration
	UserAgent      string
	ExtraHeaders   dto.ExtraHeaders
	// WithCredentials controls whether session cookies are captured from
	// responses and replayed on later requests.
	WithCredentials bool

	// PaystackPublicKey enables payment initiation; when empty, checkout
	// degrades gracefully and card payments are refused up front.
	PaystackPublicKey  string
	PaystackGatewayURL string
	Currency           string

	// AutofillDBPath locates the optional shipping-autofill store. Empty
	// disables it; it is a convenience cache, never required for checkout.
	AutofillDBPath string

	relay relayDTO.RelayInterface
}

func DefaultSvcConfig() SvcConfig {
	return SvcConfig{
		RequestTimeout:     20 * time.Second,
		UserAgent:          "storefront-client/1.0",
		ExtraHeaders:       dto.ExtraHeaders{},
		WithCredentials:    true,
		PaystackGatewayURL: "https://checkout.paystack.com",
		Currency:           "NGN",
	}
}

func (c *SvcConfig) WithBaseURL(u string) *SvcConfig {
	c.BaseURL = u
	return c
}

func (c *SvcConfig) WithRequestTimeout(d time.Duration) *SvcConfig {
	c.RequestTimeout = d
	return c
}

func (c *SvcConfig) WithUserAgent(ua string) *SvcConfig {
	c.UserAgent = ua
	return c
}

func (c *SvcConfig) WithExtraHeaders(h dto.ExtraHeaders) *SvcConfig {
	c.ExtraHeaders = h
	return c
}

func (c *SvcConfig) WithCredentialsMode(enabled bool) *SvcConfig {
	c.WithCredentials = enabled
	return c
}

func (c *SvcConfig) WithPaystackPublicKey(key string) *SvcConfig {
	c.PaystackPublicKey = key
	return c
}

func (c *SvcConfig) WithPaystackGatewayURL(u string) *SvcConfig {
	c.PaystackGatewayURL = u
	return c
}

func (c *SvcConfig) WithCurrency(cur string) *SvcConfig {
	c.Currency = cur
	return c
}

func (c *SvcConfig) WithAutofillDBPath(path string) *SvcConfig {
	c.AutofillDBPath = path
	return c
}

func (c *SvcConfig) WithRelay(r relayDTO.RelayInterface) *SvcConfig {
	c.relay = r
	return c
}

// Relay returns the configured relay, or a nop-backed one so callers never
// need nil checks before logging.
func (c *SvcConfig) Relay() relayDTO.RelayInterface {
	if c.relay == nil {
		c.relay = relays.NewZapRelay(nil)
	}
	return c.relay
}
