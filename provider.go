package storefront

import (
	"sync"

	"github.com/joy-dx/lockablemap"

	"github.com/joy-dx/storefront/config"
	"github.com/joy-dx/storefront/dto"
	"github.com/joy-dx/storefront/relays"
)

var (
	service     *StoreSvc
	serviceOnce sync.Once
)

// ProvideStoreSvc returns the process-wide service instance. The first caller
// wins; later configs are ignored.
func ProvideStoreSvc(cfg *config.SvcConfig) *StoreSvc {
	serviceOnce.Do(func() {
		service = NewStoreSvc(cfg)
		cfg.Relay().Debug(relays.RlyStoreLog{Msg: "Store service started"})
	})
	return service
}

// NewStoreSvc builds an isolated instance, mainly for tests and embedding.
func NewStoreSvc(cfg *config.SvcConfig) *StoreSvc {
	return &StoreSvc{
		cfg:            cfg,
		relay:          cfg.Relay(),
		listenersByKey: make(map[string][]chan dto.CallNotification),
		callState:      *lockablemap.NewLockableMap[string, dto.CallNotification](),
		clients:        make(map[string]dto.NetClientInterface),
		inflight:       make(map[string]*inflightCall),
	}
}
