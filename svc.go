package storefront

import (
	"sync"
	"sync/atomic"

	"github.com/joy-dx/lockablemap"
	relayDTO "github.com/joy-dx/relay/dto"

	"github.com/joy-dx/storefront/client/httpclient"
	"github.com/joy-dx/storefront/config"
	"github.com/joy-dx/storefront/dto"
)

// StoreSvc coordinates storefront API traffic: it owns the registered
// transport clients, the keyed in-flight registry used for cancellation, the
// latest status snapshot per call key, and the shared loading/error state the
// UI layer reads.
type StoreSvc struct {
	cfg     *config.SvcConfig
	relay   relayDTO.RelayInterface
	clients map[string]dto.NetClientInterface

	callState      lockablemap.LockableMap[string, dto.CallNotification]
	muListeners    sync.Mutex
	listenersByKey map[string][]chan dto.CallNotification

	muInflight    sync.Mutex
	inflight      map[string]*inflightCall
	inFlightCount atomic.Int64

	muLastErr sync.Mutex
	lastErr   *dto.ErrorInfo

	defaultClient *httpclient.HTTPClient
	hydrated      atomic.Bool
}

var _ dto.StoreInterface = (*StoreSvc)(nil)

func (s *StoreSvc) RegisterClient(ref string, client dto.NetClientInterface) {
	s.clients[ref] = client
}

// CallListener returns a channel of updates for a particular call key.
// Progress updates may be dropped under pressure; terminal updates are always
// delivered.
func (s *StoreSvc) CallListener(key string) (<-chan dto.CallNotification, func()) {
	s.muListeners.Lock()
	defer s.muListeners.Unlock()

	ch := make(chan dto.CallNotification, 10)
	s.listenersByKey[key] = append(s.listenersByKey[key], ch)

	unsub := func() {
		s.muListeners.Lock()
		defer s.muListeners.Unlock()

		chans := s.listenersByKey[key]
		out := chans[:0]
		for _, c := range chans {
			if c != ch {
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			delete(s.listenersByKey, key)
		} else {
			s.listenersByKey[key] = out
		}
		close(ch)
	}

	return ch, unsub
}

// CallListenerClose closes all channels for a given key manually
func (s *StoreSvc) CallListenerClose(key string) {
	s.muListeners.Lock()
	defer s.muListeners.Unlock()
	if chans, ok := s.listenersByKey[key]; ok {
		for _, c := range chans {
			close(c)
		}
		delete(s.listenersByKey, key)
	}
}

// Loading reports whether any tracked call is still in flight.
func (s *StoreSvc) Loading() bool {
	return s.inFlightCount.Load() > 0
}

// LastError returns the most recent settled failure, or nil. Aborted calls
// never land here.
func (s *StoreSvc) LastError() *dto.ErrorInfo {
	s.muLastErr.Lock()
	defer s.muLastErr.Unlock()
	return s.lastErr
}

func (s *StoreSvc) setLastError(info *dto.ErrorInfo) {
	s.muLastErr.Lock()
	s.lastErr = info
	s.muLastErr.Unlock()
}

// ClearLastError resets the shared error state, typically after the UI has
// surfaced it.
func (s *StoreSvc) ClearLastError() {
	s.setLastError(nil)
}
