package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"socket-deva/contract"
	"socket-deva/domain"
	"socket-deva/errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 20 // 1MB
)

var _ contract.ConnectionSink = (*Connection)(nil)

// Connection is one live WebSocket client and the sink the registry emits to.
type Connection struct {
	server  *Server
	conn    *websocket.Conn
	session domain.Session
	send    chan []byte
	done    chan struct{}
	once    sync.Once
}

func newConnection(server *Server, conn *websocket.Conn, session domain.Session, bufferSize int) *Connection {
	return &Connection{
		server:  server,
		conn:    conn,
		session: session,
		send:    make(chan []byte, bufferSize),
		done:    make(chan struct{}),
	}
}

func (c *Connection) ID() string { return c.session.ConnectionID }

func (c *Connection) Session() domain.Session { return c.session }

// Consume queues a frame for the write pump without blocking.
func (c *Connection) Consume(ctx context.Context, frame domain.Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("encoding frame %s: %w", frame.Event, err)
	}
	select {
	case <-c.done:
		return errors.ErrSinkClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return errors.ErrSinkClosed
	default:
		return errors.ErrSinkFull
	}
}

// close signals the write pump, which sends the close frame and then
// closes the socket. That ends the read pump.
func (c *Connection) close() {
	c.once.Do(func() {
		close(c.done)
	})
}

// readPump reads client frames until the connection fails, then disconnects.
func (c *Connection) readPump(ctx context.Context) {
	defer c.server.disconnect(c)

	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.server.log.Warn("WebSocket read error", "connection", c.ID(), "error", err)
			}
			return
		}

		var frame domain.Frame
		if err := json.Unmarshal(message, &frame); err != nil || frame.Event == "" {
			c.server.log.Debug("Invalid client frame", "connection", c.ID(), "error", err)
			continue
		}
		c.server.receive(ctx, c, frame)
	}
}

// writePump writes queued frames and keeps the connection alive with pings.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			// Drain queued messages, each as its own WebSocket frame
			n := len(c.send)
			for i := 0; i < n; i++ {
				if err := c.conn.WriteMessage(websocket.TextMessage, <-c.send); err != nil {
					return
				}
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// inboundPacket turns a client frame into a bus packet. The client is
// always the server-assigned session identity, whatever the frame claims.
func (c *Connection) inboundPacket(frame domain.Frame) domain.Packet {
	id := frame.ID
	if id == "" {
		id = uuid.NewString()
	}
	var data any
	if len(frame.Data) > 0 {
		data = frame.Data
	}
	return domain.Packet{
		ID:     id,
		Event:  string(frame.Event),
		Data:   data,
		Client: domain.ClientRef(c.session.Client.ID.UID),
	}
}
