package relays

import (
	relayDTO "github.com/joy-dx/relay/dto"
	"go.uber.org/zap"
)

// ZapRelay adapts a zap logger to the relay interface so the service can log
// structured events without a full relay pipeline attached.
type ZapRelay struct {
	log *zap.Logger
}

func NewZapRelay(log *zap.Logger) *ZapRelay {
	if log == nil {
		log = zap.NewNop()
	}
	return &ZapRelay{log: log}
}

func (r *ZapRelay) fields(e relayDTO.RelayEventInterface) []zap.Field {
	fields := []zap.Field{
		zap.String("channel", string(e.RelayChannel())),
		zap.String("event", string(e.RelayType())),
	}
	for _, attr := range e.ToSlog() {
		fields = append(fields, zap.Any(attr.Key, attr.Value.Any()))
	}
	return fields
}

func (r *ZapRelay) emit(level func(string, ...zap.Field), e relayDTO.RelayEventInterface) {
	if e == nil {
		return
	}
	level(e.Message(), r.fields(e)...)
}

func (r *ZapRelay) Debug(e relayDTO.RelayEventInterface) { r.emit(r.log.Debug, e) }
func (r *ZapRelay) Info(e relayDTO.RelayEventInterface)  { r.emit(r.log.Info, e) }
func (r *ZapRelay) Warn(e relayDTO.RelayEventInterface)  { r.emit(r.log.Warn, e) }
func (r *ZapRelay) Error(e relayDTO.RelayEventInterface) { r.emit(r.log.Error, e) }
func (r *ZapRelay) Fatal(e relayDTO.RelayEventInterface) { r.emit(r.log.Fatal, e) }

// Meta events are routed at info level; the storefront has no separate
// metadata sink.
func (r *ZapRelay) Meta(e relayDTO.RelayEventInterface) { r.emit(r.log.Info, e) }
