package websocket

import (
	"context"
	"sync"
	"time"

	gws "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBufferSize = 256
)

// Options tunes the per-connection transport.
type Options struct {
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
	SendBuffer     int
}

func DefaultOptions() Options {
	return Options{
		WriteWait:      writeWait,
		PongWait:       pongWait,
		PingPeriod:     pingPeriod,
		MaxMessageSize: maxMessageSize,
		SendBuffer:     sendBufferSize,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.WriteWait <= 0 {
		o.WriteWait = d.WriteWait
	}
	if o.PongWait <= 0 {
		o.PongWait = d.PongWait
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = (o.PongWait * 9) / 10
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = d.MaxMessageSize
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = d.SendBuffer
	}
	return o
}

// Client is one gorilla connection with a bounded outbound queue drained by
// a single writer goroutine.
type Client struct {
	id     string
	conn   *gws.Conn
	opts   Options
	logger *zap.Logger

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

var _ Sink = (*Client)(nil)

func NewClient(id string, conn *gws.Conn, opts Options, logger *zap.Logger) *Client {
	opts = opts.withDefaults()
	return &Client{
		id:     id,
		conn:   conn,
		opts:   opts,
		logger: logger.With(zap.String("connectionId", id)),
		send:   make(chan []byte, opts.SendBuffer),
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) Deliver(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Close stops the writer and closes the socket. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Run starts the write pump and reads frames until the connection ends.
// handle is called sequentially from the read goroutine.
func (c *Client) Run(ctx context.Context, handle func(ctx context.Context, frame []byte)) {
	go c.writePump()
	c.readPump(ctx, handle)
}

func (c *Client) readPump(ctx context.Context, handle func(ctx context.Context, frame []byte)) {
	defer func() {
		c.Close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.opts.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
		return nil
	})

	for {
		messageType, frame, err := c.conn.ReadMessage()
		if err != nil {
			if gws.IsUnexpectedCloseError(err, gws.CloseGoingAway, gws.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}
		if messageType != gws.TextMessage {
			continue
		}
		handle(ctx, frame)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if !ok {
				c.conn.WriteMessage(gws.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(gws.TextMessage, frame); err != nil {
				c.logger.Debug("WebSocket write failed", zap.Error(err))
				c.Close()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(gws.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}
