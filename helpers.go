package storefront

import (
	"github.com/joy-dx/storefront/dto"
	"github.com/joy-dx/storefront/relays"
)

// publishCallUpdate is the unified notification function
func (s *StoreSvc) publishCallUpdate(state dto.CallNotification) {
	s.callState.Set(state.Key, state)

	s.muListeners.Lock()
	listeners := append([]chan dto.CallNotification(nil), s.listenersByKey[state.Key]...)
	s.muListeners.Unlock()

	for _, ch := range listeners {
		if state.Status.IsTerminal() {
			// Ensure terminal events are delivered.
			// Avoid deadlock: do NOT hold muListeners while sending.
			select {
			case ch <- state:
			default:
				// Buffer full: fall back to blocking send in a goroutine.
				// This guarantees delivery without stalling the publisher.
				go func(c chan dto.CallNotification, n dto.CallNotification) {
					// Best effort: if unsub closed the channel, recover.
					defer func() { _ = recover() }()
					c <- n
				}(ch, state)
			}
		} else {
			// Progress updates can be dropped
			select {
			case ch <- state:
			default:
			}
		}
	}

	if s.relay != nil {
		s.relay.Info(relays.RlyStoreCall{
			Key:    state.Key,
			Task:   state.TaskName,
			Status: state.Status,
			Msg:    state.Message,
		})
	}
}
