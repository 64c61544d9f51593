package sink

import (
	"context"
	"testing"
	"time"

	"driftway/domain/event"

	"github.com/stretchr/testify/require"
)

func TestConnSink(t *testing.T) {
	t.Run("should buffer events up to capacity", func(t *testing.T) {
		req := require.New(t)
		s := NewConnSink(2, 10*time.Millisecond)

		req.NoError(s.Consume(context.Background(), event.Typing{UserID: "alice"}))
		req.NoError(s.Consume(context.Background(), event.StoppedTyping{UserID: "alice"}))

		first := <-s.Events
		req.IsType(event.Typing{}, first)
	})

	t.Run("should report a drop when the buffer stays full", func(t *testing.T) {
		req := require.New(t)
		s := NewConnSink(1, 20*time.Millisecond)

		req.NoError(s.Consume(context.Background(), event.Typing{UserID: "alice"}))

		start := time.Now()
		err := s.Consume(context.Background(), event.Typing{UserID: "bob"})
		req.ErrorIs(err, ErrBufferFull)
		req.GreaterOrEqual(time.Since(start), 20*time.Millisecond)
	})

	t.Run("should hand off once the consumer drains", func(t *testing.T) {
		req := require.New(t)
		s := NewConnSink(1, 500*time.Millisecond)

		req.NoError(s.Consume(context.Background(), event.Typing{UserID: "alice"}))

		go func() {
			time.Sleep(50 * time.Millisecond)
			<-s.Events
		}()

		req.NoError(s.Consume(context.Background(), event.Typing{UserID: "bob"}))
	})

	t.Run("should stop waiting when the context is canceled", func(t *testing.T) {
		req := require.New(t)
		s := NewConnSink(1, time.Minute)

		req.NoError(s.Consume(context.Background(), event.Typing{UserID: "alice"}))

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		err := s.Consume(ctx, event.Typing{UserID: "bob"})
		req.ErrorIs(err, context.Canceled)
	})
}
