package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// FromEnv builds a config from the environment, loading a .env file first when
// one is present. Env values overlay the defaults; chain With* builders after
// for programmatic overrides.
func FromEnv() SvcConfig {
	_ = godotenv.Load()

	cfg := DefaultSvcConfig()
	cfg.BaseURL = getEnv("STOREFRONT_API_BASE_URL", cfg.BaseURL)
	cfg.UserAgent = getEnv("STOREFRONT_USER_AGENT", cfg.UserAgent)
	cfg.Currency = getEnv("STOREFRONT_CURRENCY", cfg.Currency)
	cfg.PaystackPublicKey = getEnv("PAYSTACK_PUBLIC_KEY", "")
	cfg.PaystackGatewayURL = getEnv("PAYSTACK_GATEWAY_URL", cfg.PaystackGatewayURL)
	cfg.AutofillDBPath = getEnv("STOREFRONT_AUTOFILL_DB", "")

	if v := os.Getenv("STOREFRONT_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("STOREFRONT_EXTRA_HEADERS"); v != "" {
		_ = cfg.ExtraHeaders.Set(v)
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
