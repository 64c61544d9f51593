package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"driftway/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSessionSweeper(t *testing.T) {
	t.Run("should sweep once at startup then on every tick", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		auth := mocks.NewMockIAuthService(ctrl)
		swept := make(chan struct{}, 8)
		auth.EXPECT().
			SweepExpiredSessions().
			DoAndReturn(func() (int, error) {
				swept <- struct{}{}
				return 1, nil
			}).
			MinTimes(2)

		sweeper := NewSessionSweeper(auth, 50*time.Millisecond, slog.Default())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			req.NoError(sweeper.Run(ctx))
			close(done)
		}()

		// Startup sweep, then at least one tick.
		<-swept
		<-swept
		cancel()

		select {
		case <-done:
		case <-time.After(500 * time.Millisecond):
			req.Fail("Sweeper should have stopped on context cancel")
		}
	})

	t.Run("should survive a failing sweep", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		auth := mocks.NewMockIAuthService(ctrl)
		swept := make(chan struct{}, 8)
		auth.EXPECT().
			SweepExpiredSessions().
			DoAndReturn(func() (int, error) {
				swept <- struct{}{}
				return 0, context.DeadlineExceeded
			}).
			MinTimes(2)

		sweeper := NewSessionSweeper(auth, 50*time.Millisecond, slog.Default())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			req.NoError(sweeper.Run(ctx))
			close(done)
		}()

		<-swept
		<-swept
		cancel()

		select {
		case <-done:
		case <-time.After(500 * time.Millisecond):
			req.Fail("Sweeper should keep running through sweep errors and stop on cancel")
		}
	})
}
