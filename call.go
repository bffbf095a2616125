package storefront

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/joy-dx/storefront/dto"
)

// inflightCall pairs a live call's cancel handle with an identity token so a
// superseded call never deregisters its replacement.
type inflightCall struct {
	cancel context.CancelFunc
	id     string
}

// Call is the tracked entry point the UI layer goes through. Each call is
// registered in the in-flight registry under cfg.Key (one is generated when
// empty), bumps the aggregate loading counter for its duration, and publishes
// status updates to listeners on its key.
//
// A call aborted through its key, or whose CancelPrevious successor started,
// settles as a no-op: both results are nil, no error state is set, and the
// call's status is STOPPED rather than ERROR. Only genuine failures set the
// shared last error.
func (s *StoreSvc) Call(ctx context.Context, cfg *dto.RequestConfig) (*dto.Response, error) {
	if cfg == nil {
		return nil, dto.ErrNilReqConfig
	}

	key := cfg.Key
	if key == "" {
		key = uuid.NewString()
	}
	id := uuid.NewString()

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.muInflight.Lock()
	if prev, ok := s.inflight[key]; ok && cfg.CancelPrevious {
		prev.cancel()
	}
	s.inflight[key] = &inflightCall{cancel: cancel, id: id}
	s.muInflight.Unlock()

	s.inFlightCount.Add(1)
	startedAt := time.Now()
	s.publishCallUpdate(dto.CallNotification{
		Key:       key,
		TaskName:  cfg.TaskName,
		Status:    dto.IN_PROGRESS,
		StartedAt: startedAt,
	})

	resp, err := s.RequestWithRetry(callCtx, cfg)

	s.muInflight.Lock()
	if cur, ok := s.inflight[key]; ok && cur.id == id {
		delete(s.inflight, key)
	}
	s.muInflight.Unlock()
	s.inFlightCount.Add(-1)

	settledAt := time.Now()

	if err != nil {
		if dto.IsCancelled(err) || callCtx.Err() == context.Canceled {
			// Aborted or superseded: settle silently.
			s.publishCallUpdate(dto.CallNotification{
				Key:       key,
				TaskName:  cfg.TaskName,
				Status:    dto.STOPPED,
				StartedAt: startedAt,
				SettledAt: settledAt,
			})
			return nil, nil
		}

		notification := dto.CallNotification{
			Key:       key,
			TaskName:  cfg.TaskName,
			Status:    dto.ERROR,
			Message:   err.Error(),
			StartedAt: startedAt,
			SettledAt: settledAt,
		}
		if info, ok := dto.AsErrorInfo(err); ok {
			notification.Message = info.Message
			notification.StatusCode = info.Status
			s.setLastError(info)
		} else {
			s.setLastError(dto.NewUnknownError(err))
		}
		s.publishCallUpdate(notification)
		return nil, err
	}

	s.publishCallUpdate(dto.CallNotification{
		Key:        key,
		TaskName:   cfg.TaskName,
		Status:     dto.COMPLETE,
		StatusCode: resp.StatusCode,
		StartedAt:  startedAt,
		SettledAt:  settledAt,
	})
	return &resp, nil
}

// Abort cancels the live call registered under key, if any. Aborting a key
// with no live call is a no-op.
func (s *StoreSvc) Abort(key string) {
	s.muInflight.Lock()
	defer s.muInflight.Unlock()
	if c, ok := s.inflight[key]; ok {
		c.cancel()
	}
}

// AbortAll cancels every live call, for teardown such as navigation away.
func (s *StoreSvc) AbortAll() {
	s.muInflight.Lock()
	defer s.muInflight.Unlock()
	for _, c := range s.inflight {
		c.cancel()
	}
}
