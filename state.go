package storefront

import (
	"context"
	"errors"

	"github.com/joy-dx/storefront/client/httpclient"
	"github.com/joy-dx/storefront/dto"
	"github.com/joy-dx/storefront/relays"
)

// State returns a point-in-time snapshot of the service, covering both the
// resolved config and the status of every tracked call.
func (s *StoreSvc) State() *dto.StoreState {
	return &dto.StoreState{
		BaseURL:        s.cfg.BaseURL,
		ExtraHeaders:   s.cfg.ExtraHeaders,
		RequestTimeout: s.cfg.RequestTimeout,
		UserAgent:      s.cfg.UserAgent,
		InFlight:       int(s.inFlightCount.Load()),
		CallsStatus:    s.callState.GetAll(),
	}
}

// Hydrate validates the config and registers the default API client. It is
// idempotent; repeat calls are no-ops.
func (s *StoreSvc) Hydrate(ctx context.Context) error {
	if s.cfg == nil {
		return errors.New("no store config")
	}
	if s.relay == nil {
		return errors.New("no relay implementation")
	}
	if s.cfg.BaseURL == "" {
		return errors.New("no base URL configured")
	}
	if !s.hydrated.CompareAndSwap(false, true) {
		return nil
	}

	if s.cfg.PaystackPublicKey == "" {
		s.relay.Warn(relays.RlyStoreLog{Msg: "No payment public key configured, card payments unavailable"})
	}

	defaultClientCfg := httpclient.DefaultHTTPClientConfig()
	defaultClient := httpclient.NewHTTPClient(dto.NET_DEFAULT_CLIENT_REF, s.cfg, &defaultClientCfg)
	s.clients[dto.NET_DEFAULT_CLIENT_REF] = defaultClient
	s.defaultClient = defaultClient

	return nil
}

// DefaultClient exposes the hydrated API client so the session layer can
// install its unauthorized/refresh handlers. Nil before Hydrate.
func (s *StoreSvc) DefaultClient() *httpclient.HTTPClient {
	return s.defaultClient
}
