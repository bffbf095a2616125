package storefront

import (
	"context"
	"fmt"

	"github.com/joy-dx/storefront/catalog"
	"github.com/joy-dx/storefront/checkout"
	"github.com/joy-dx/storefront/client/paystack"
	"github.com/joy-dx/storefront/localstore"
	"github.com/joy-dx/storefront/orders"
	"github.com/joy-dx/storefront/relays"
	"github.com/joy-dx/storefront/session"
)

// referencePrefix tags every payment reference minted by this client.
const referencePrefix = "PSK"

// Shop bundles the fully wired SDK: the call service, the auth session, the
// catalog and order accessors, and the checkout orchestrator with its payment
// gateway. Construct one with OpenShop; fields are ready to use immediately,
// though Session.Bootstrap and Gateway.Load still need to run (both are
// deferred so opening a shop never blocks on the network).
type Shop struct {
	Svc        *StoreSvc
	Session    *session.Coordinator
	Products   *catalog.Products
	Categories *catalog.Categories
	Orders     *orders.Orders
	Checkout   *checkout.Orchestrator
	Gateway    *paystack.Client
	Autofill   *localstore.Store
}

// OpenShop hydrates the service and composes every component around it. The
// autofill store is optional: a missing or unopenable file is logged and
// skipped, never fatal.
func OpenShop(ctx context.Context, svc *StoreSvc, cart checkout.Cart) (*Shop, error) {
	if svc == nil {
		return nil, fmt.Errorf("nil store service")
	}
	if err := svc.Hydrate(ctx); err != nil {
		return nil, fmt.Errorf("hydrate store service: %w", err)
	}

	gatewayCfg := paystack.DefaultConfig()
	gatewayCfg.WithPublicKey(svc.cfg.PaystackPublicKey).
		WithCurrency(svc.cfg.Currency)
	if svc.cfg.PaystackGatewayURL != "" {
		gatewayCfg.WithGatewayURL(svc.cfg.PaystackGatewayURL)
	}
	gateway := paystack.NewClient(&gatewayCfg, svc.relay)

	shop := &Shop{
		Svc:        svc,
		Session:    session.New(svc, svc.DefaultClient(), svc.relay),
		Products:   catalog.NewProducts(svc),
		Categories: catalog.NewCategories(svc),
		Orders:     orders.New(svc),
		Checkout:   checkout.New(svc, gateway, cart, svc.relay, referencePrefix),
		Gateway:    gateway,
	}

	if path := svc.cfg.AutofillDBPath; path != "" {
		store, err := localstore.Open(path)
		if err != nil {
			svc.relay.Warn(relays.RlyStoreLog{
				Msg: fmt.Sprintf("Autofill store unavailable: %v", err),
			})
		} else {
			shop.Autofill = store
		}
	}

	return shop, nil
}

// Close releases local resources. The server session is left alone; use
// Session.Logout for that.
func (s *Shop) Close() error {
	s.Svc.AbortAll()
	if s.Autofill != nil {
		return s.Autofill.Close()
	}
	return nil
}
