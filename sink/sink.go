package sink

import (
	"context"
	"errors"
	"time"

	"driftway/domain/event"
)

var ErrBufferFull = errors.New("connection buffer full")

// ConnSink is the buffered handoff between the coordinator's fanout and
// one transport connection's write loop. Consume blocks at most
// deliveryTimeout when the buffer is full, then reports the drop; a
// stuck client never stalls a broadcast for the rest of the room.
type ConnSink struct {
	Events          chan event.DomainEvent
	deliveryTimeout time.Duration
}

func NewConnSink(bufferSize int, deliveryTimeout time.Duration) *ConnSink {
	return &ConnSink{
		Events:          make(chan event.DomainEvent, bufferSize),
		deliveryTimeout: deliveryTimeout,
	}
}

func (s *ConnSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	timer := time.NewTimer(s.deliveryTimeout)
	defer timer.Stop()
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrBufferFull
	}
}
