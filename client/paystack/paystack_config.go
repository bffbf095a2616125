package paystack

import "time"

type Config struct {
	// PublicKey identifies the merchant. An empty key means card payments are
	// unavailable and Configured() reports false.
	PublicKey  string
	GatewayURL string
	Currency   string
	// Channels restricts payment methods offered by the widget (card, bank,
	// ussd...). Empty means the gateway default.
	Channels []string
	Timeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		GatewayURL: "https://checkout.paystack.com",
		Currency:   "NGN",
		Timeout:    90 * time.Second,
	}
}

func (c *Config) WithPublicKey(key string) *Config {
	c.PublicKey = key
	return c
}

func (c *Config) WithGatewayURL(u string) *Config {
	c.GatewayURL = u
	return c
}

func (c *Config) WithCurrency(cur string) *Config {
	c.Currency = cur
	return c
}

func (c *Config) WithChannels(channels []string) *Config {
	c.Channels = channels
	return c
}

func (c *Config) WithTimeout(d time.Duration) *Config {
	c.Timeout = d
	return c
}
