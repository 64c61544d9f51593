package transport

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// FrameHandler is invoked for every inbound text frame.
type FrameHandler func(ctx context.Context, connID uuid.UUID, frame []byte)

// CloseHandler is invoked exactly once when the connection terminates.
type CloseHandler func(connID uuid.UUID, err error)

type ConnectionConfig struct {
	ReadTimeout time.Duration
	SendBuffer  int
}

// Connection owns one websocket: a read pump that feeds inbound frames
// to the handler and a write pump that drains the send channel. Send
// and Close are safe for concurrent use.
type Connection struct {
	id     uuid.UUID
	conn   *websocket.Conn
	config ConnectionConfig
	send   chan []byte

	onFrame FrameHandler
	onClose CloseHandler

	done      chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	log *slog.Logger
}

func NewConnection(parentCtx context.Context, conn *websocket.Conn, config ConnectionConfig, onFrame FrameHandler, onClose CloseHandler, log *slog.Logger) *Connection {
	id := uuid.New()
	ctx, cancel := context.WithCancel(parentCtx)
	if config.SendBuffer <= 0 {
		config.SendBuffer = 256
	}

	return &Connection{
		id:      id,
		conn:    conn,
		config:  config,
		send:    make(chan []byte, config.SendBuffer),
		onFrame: onFrame,
		onClose: onClose,
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
		log:     log.With(slog.String("connID", id.String())),
	}
}

func (c *Connection) Run() {
	go c.readPump()
	go c.writePump()

	c.log.Info("connection established")
}

// readPump pumps inbound frames from the websocket to the frame handler.
// Each read is bounded by ReadTimeout so an idle peer is eventually
// reaped.
func (c *Connection) readPump() {
	var readErr error
	defer func() {
		c.Close(readErr)
	}()

	for {
		readCtx, cancelRead := context.WithTimeout(c.ctx, c.config.ReadTimeout)
		typ, r, err := c.conn.Reader(readCtx)
		if err != nil {
			readErr = err
			cancelRead()
			return
		}
		if typ != websocket.MessageText {
			cancelRead()
			continue
		}
		frame, err := io.ReadAll(r)
		cancelRead()
		if err != nil {
			readErr = err
			return
		}
		c.onFrame(c.ctx, c.id, frame)
	}
}

// writePump pumps frames from the send channel to the websocket.
func (c *Connection) writePump() {
	var writeErr error
	defer func() {
		c.Close(writeErr)
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err := c.conn.Write(c.ctx, websocket.MessageText, frame); err != nil {
				writeErr = err
				return
			}
		case <-c.ctx.Done():
			c.conn.Close(websocket.StatusNormalClosure, "shutting down")
			return
		}
	}
}

// Send enqueues an outbound frame. It blocks while the buffer is full
// and drops the frame once the connection is closing.
func (c *Connection) Send(frame []byte) {
	select {
	case c.send <- frame:
	case <-c.ctx.Done():
		c.log.Warn("send on closed connection dropped")
	}
}

// Close tears the connection down once; later calls are no-ops.
func (c *Connection) Close(err error) {
	c.closeOnce.Do(func() {
		c.log.Info("connection closing", slog.Any("reason", err))

		c.cancel()
		c.conn.Close(websocket.StatusNormalClosure, "")
		if c.onClose != nil {
			c.onClose(c.id, err)
		}
		close(c.done)
	})
}

// Done is closed when the connection is fully terminated.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

func (c *Connection) ID() uuid.UUID {
	return c.id
}
