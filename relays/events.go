package relays

import (
	"fmt"
	"log/slog"

	relayDTO "github.com/joy-dx/relay/dto"

	"github.com/joy-dx/storefront/dto"
)

const ChannelStore relayDTO.EventChannel = "store"

const (
	EventStoreLog     relayDTO.EventRef = "store.log"
	EventStoreCall    relayDTO.EventRef = "store.call"
	EventStoreSession relayDTO.EventRef = "store.session"
	EventStorePayment relayDTO.EventRef = "store.payment"
)

// RlyStoreLog is a free-form service log line.
type RlyStoreLog struct {
	Msg string
}

func (e RlyStoreLog) RelayChannel() relayDTO.EventChannel { return ChannelStore }
func (e RlyStoreLog) RelayType() relayDTO.EventRef        { return EventStoreLog }
func (e RlyStoreLog) Message() string                     { return e.Msg }
func (e RlyStoreLog) ToSlog() []slog.Attr                 { return nil }

// RlyStoreCall reports the lifecycle of one tracked request.
type RlyStoreCall struct {
	Key    string
	Task   string
	Status dto.CallStatus
	Msg    string
}

func (e RlyStoreCall) RelayChannel() relayDTO.EventChannel { return ChannelStore }
func (e RlyStoreCall) RelayType() relayDTO.EventRef        { return EventStoreCall }

func (e RlyStoreCall) Message() string {
	name := e.Task
	if name == "" {
		name = e.Key
	}
	if e.Msg != "" {
		return fmt.Sprintf("%s [%s]: %s", name, e.Status, e.Msg)
	}
	return fmt.Sprintf("%s [%s]", name, e.Status)
}

func (e RlyStoreCall) ToSlog() []slog.Attr {
	return []slog.Attr{
		slog.String("key", e.Key),
		slog.String("task", e.Task),
		slog.String("status", string(e.Status)),
	}
}

// RlyStoreSession reports auth session transitions.
type RlyStoreSession struct {
	Status string
	Msg    string
}

func (e RlyStoreSession) RelayChannel() relayDTO.EventChannel { return ChannelStore }
func (e RlyStoreSession) RelayType() relayDTO.EventRef        { return EventStoreSession }

func (e RlyStoreSession) Message() string {
	if e.Msg != "" {
		return fmt.Sprintf("session %s: %s", e.Status, e.Msg)
	}
	return fmt.Sprintf("session %s", e.Status)
}

func (e RlyStoreSession) ToSlog() []slog.Attr {
	return []slog.Attr{slog.String("status", e.Status)}
}

// RlyStorePayment reports payment attempt transitions.
type RlyStorePayment struct {
	Reference string
	OrderID   string
	Status    dto.AttemptStatus
	Msg       string
}

func (e RlyStorePayment) RelayChannel() relayDTO.EventChannel { return ChannelStore }
func (e RlyStorePayment) RelayType() relayDTO.EventRef        { return EventStorePayment }

func (e RlyStorePayment) Message() string {
	if e.Msg != "" {
		return fmt.Sprintf("payment %s [%s]: %s", e.Reference, e.Status, e.Msg)
	}
	return fmt.Sprintf("payment %s [%s]", e.Reference, e.Status)
}

func (e RlyStorePayment) ToSlog() []slog.Attr {
	return []slog.Attr{
		slog.String("reference", e.Reference),
		slog.String("order_id", e.OrderID),
		slog.String("status", string(e.Status)),
	}
}
