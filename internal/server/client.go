// Package server exposes the simulation core over its two transports: the
// JSON snapshot endpoints and the bidirectional WebSocket stream.
package server

import (
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/vigorakbar/trading-dashboard-mock/internal/model"
	"github.com/vigorakbar/trading-dashboard-mock/internal/service"
)

const (
	// writeWait is the maximum time allowed for one WebSocket write.
	writeWait = 10 * time.Second

	// pongWait is how long a connection may stay silent before the read
	// side gives up on it.
	pongWait = 60 * time.Second

	// pingPeriod is the keepalive ping interval; it must be shorter than
	// pongWait so healthy clients always refresh the read deadline in time.
	pingPeriod = 50 * time.Second

	// maxMessageSize caps inbound frames; subscribe messages are tiny.
	maxMessageSize = 512 * 1024

	// defaultSendBuffer is the per-connection outbound queue length.
	defaultSendBuffer = 256
)

var validate = validator.New()

// Client wraps one WebSocket connection with the read/write pump pair and a
// bounded outbound queue. It implements service.Sender: broadcasts that find
// the queue full or the connection closed are dropped for this connection
// only, never blocking a broadcast tick.
type Client struct {
	id   string
	conn *websocket.Conn
	svc  *service.MarketService
	send chan []byte
	done chan struct{}
	once sync.Once
}

// newClient builds a Client over an upgraded connection. sendBuffer <= 0
// selects the default queue length.
func newClient(conn *websocket.Conn, svc *service.MarketService, sendBuffer int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	return &Client{
		id:   uuid.NewString(),
		conn: conn,
		svc:  svc,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// Start launches the connection's read and write pumps.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// ID returns the connection's identifier used in logs and the registry.
func (c *Client) ID() string { return c.id }

// Send queues a broadcast payload without blocking. It reports false when
// the payload was dropped because the connection is closing or its queue is
// full (backpressure: slow clients lose ticks, not the whole stream).
func (c *Client) Send(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// readPump consumes inbound frames until the connection dies, handling
// subscribe messages and keepalive pongs. It owns connection teardown.
func (c *Client) readPump() {
	defer c.teardown()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Str("conn", c.id).Msg("websocket read error")
			}
			return
		}
		c.handleMessage(raw)
	}
}

// handleMessage parses and applies one inbound message. Anything malformed
// is logged and ignored; a bad message never closes the connection.
func (c *Client) handleMessage(raw []byte) {
	var req model.SubscribeRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		log.Warn().Err(err).Str("conn", c.id).Msg("ignoring invalid message JSON")
		return
	}
	if err := validate.Struct(&req); err != nil {
		log.Warn().Err(err).Str("conn", c.id).Msg("ignoring malformed subscribe message")
		return
	}
	if req.Symbols == nil {
		log.Warn().Str("conn", c.id).Msg("ignoring subscribe message without symbols list")
		return
	}

	for i, s := range req.Symbols {
		req.Symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}

	c.svc.Subscribe(c, req)
}

// writePump drains the outbound queue and sends keepalive pings. It exits on
// the first write failure or when teardown closes the done channel, closing
// the connection either way so readPump unblocks.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Debug().Err(err).Str("conn", c.id).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// teardown unregisters the connection and releases its resources exactly
// once, regardless of which pump noticed the failure first.
func (c *Client) teardown() {
	c.once.Do(func() {
		c.svc.Disconnect(c)
		close(c.done)
		c.conn.Close()
	})
}
