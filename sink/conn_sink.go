package sink

import (
	"chat-relay/domain/event"
	"chat-relay/errors"
	"context"
)

// ConnSink is the bounded outbound buffer of a single connection.
// The write pump of the transport adapter drains Events.
type ConnSink struct {
	events chan event.DomainEvent
}

func NewConnSink(bufferSize int) *ConnSink {
	return &ConnSink{events: make(chan event.DomainEvent, bufferSize)}
}

// Consume is called by the fan-out.
// Redirect the event through the concerned owner of the channel;
// the write pump will take it from now. A persistently full buffer means
// the peer is slow or gone: the event is dropped rather than letting one
// recipient stall the coordinator.
func (s *ConnSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.ErrSinkFull
	}
}

// Events exposes the buffered outbound stream for the write pump.
func (s *ConnSink) Events() <-chan event.DomainEvent {
	return s.events
}
