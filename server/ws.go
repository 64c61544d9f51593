package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"driftway/domain"
	"driftway/domain/event"
	"driftway/errors"
	"driftway/server/middleware"
	"driftway/sink"
	"driftway/transport"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// handleWS upgrades an authenticated request to a websocket and runs
// the session until either side closes. The handler blocks for the
// connection's lifetime; cleanup runs exactly once through the
// transport's close hook.
func (a *App) handleWS(w http.ResponseWriter, r *http.Request) {
	meta, ok := middleware.MetadataFrom(r.Context())
	if !ok {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		a.log.Error("Websocket accept failed", slog.Any("error", err))
		return
	}

	session := &wsSession{
		app:      a,
		identity: meta.Identity,
		sink:     sink.NewConnSink(a.cfg.ConnectionBufferSize, a.cfg.DeliveryTimeout),
	}
	session.conn = transport.NewConnection(
		r.Context(),
		wsConn,
		transport.ConnectionConfig{
			ReadTimeout: a.cfg.ReadTimeout,
			SendBuffer:  a.cfg.ConnectionBufferSize,
		},
		session.onFrame,
		session.onClose,
		a.log,
	)

	a.wg.Add(1)
	defer a.wg.Done()

	go session.writeLoop(a.ctx)
	session.conn.Run()
	<-session.conn.Done()
}

// wsSession binds one websocket to the coordinator: inbound frames
// decode into commands, the sink's events encode into outbound frames.
type wsSession struct {
	app      *App
	identity domain.Identity
	sink     *sink.ConnSink
	conn     *transport.Connection
}

func (s *wsSession) onFrame(ctx context.Context, connID uuid.UUID, frame []byte) {
	cmd, err := DecodeCommand(frame)
	if err != nil {
		s.sendError(err.Error(), "BAD_REQUEST")
		return
	}

	if err := s.dispatch(ctx, connID, cmd); err != nil {
		s.sendError(err.Error(), errors.WireCode(err))
	}
}

func (s *wsSession) dispatch(ctx context.Context, connID uuid.UUID, cmd domain.Command) error {
	switch c := cmd.(type) {
	case domain.AuthenticateCommand:
		if err := s.app.chatService.Authenticate(ctx, connID, s.identity, c, s.sink); err != nil {
			return err
		}
		s.push(event.Authenticated{Success: true})
		return nil
	case domain.JoinConversationCommand:
		return s.app.chatService.Join(ctx, connID, c.ConversationID)
	case domain.LeaveConversationCommand:
		return s.app.chatService.Leave(ctx, connID, c.ConversationID)
	case domain.SendMessageCommand:
		if max := s.app.cfg.MaxContentLength; len(c.Content) > max || len(c.EncryptedContent) > max {
			return fmt.Errorf("message exceeds %d bytes", max)
		}
		_, err := s.app.chatService.Send(ctx, connID, c)
		return err
	case domain.TypingStartCommand:
		return s.app.chatService.TypingStart(ctx, connID, c.ConversationID)
	case domain.TypingStopCommand:
		return s.app.chatService.TypingStop(ctx, connID, c.ConversationID)
	case domain.MarkAsReadCommand:
		return s.app.chatService.MarkRead(ctx, connID, c.ConversationID, c.MessageID)
	default:
		return fmt.Errorf("unhandled command %T", cmd)
	}
}

func (s *wsSession) onClose(connID uuid.UUID, _ error) {
	// The request context is gone by now; cleanup gets its own.
	s.app.chatService.Disconnect(context.Background(), connID)
}

// writeLoop drains the session's sink into the transport until the
// connection or the app shuts down.
func (s *wsSession) writeLoop(ctx context.Context) {
	for {
		select {
		case e := <-s.sink.Events:
			frame, err := EncodeEvent(e)
			if err != nil {
				s.app.log.Error("Event encoding failed", slog.Any("error", err))
				continue
			}
			s.conn.Send(frame)
		case <-s.conn.Done():
			return
		case <-ctx.Done():
			s.conn.Close(ctx.Err())
			return
		}
	}
}

// push delivers an event to this session only.
func (s *wsSession) push(e event.DomainEvent) {
	if err := s.sink.Consume(context.Background(), e); err != nil {
		s.app.log.Warn("Local event dropped", slog.Any("error", err))
	}
}

func (s *wsSession) sendError(message, code string) {
	s.push(event.Error{Message: message, Code: code})
}
