// Package websocket carries protocol frames over gorilla/websocket text messages.
package websocket

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"
)

const (
	defaultWriteTimeout = 10 * time.Second
	defaultPingInterval = 30 * time.Second
)

// Conn implements ports.Transport over a websocket connection.
type Conn struct {
	ws *ws.Conn

	writeMu      sync.Mutex
	writeTimeout time.Duration
	pingInterval time.Duration

	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a Conn.
type Option func(*Conn)

// WithWriteTimeout bounds how long a single frame write may take.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Conn) {
		c.writeTimeout = d
	}
}

// WithPingInterval sets how often the peer is pinged. A peer that stays silent
// for two intervals is considered gone. Zero disables keepalive.
func WithPingInterval(d time.Duration) Option {
	return func(c *Conn) {
		c.pingInterval = d
	}
}

// NewConn wraps an established websocket connection.
func NewConn(conn *ws.Conn, opts ...Option) *Conn {
	c := &Conn{
		ws:           conn,
		writeTimeout: defaultWriteTimeout,
		pingInterval: defaultPingInterval,
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.pingInterval > 0 {
		c.extendReadDeadline()
		conn.SetPongHandler(func(string) error {
			c.extendReadDeadline()
			return nil
		})
		go c.keepalive()
	}
	return c
}

// Dial connects to a backend at url (ws:// or wss://).
func Dial(ctx context.Context, url string, header http.Header, opts ...Option) (*Conn, error) {
	conn, _, err := ws.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}
	return NewConn(conn, opts...), nil
}

// Upgrader turns HTTP requests into Conns.
type Upgrader struct {
	upgrader ws.Upgrader
	opts     []Option
}

// NewUpgrader creates an Upgrader. checkOrigin may be nil to accept same-host
// origins only.
func NewUpgrader(checkOrigin func(r *http.Request) bool, opts ...Option) *Upgrader {
	return &Upgrader{
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		opts: opts,
	}
}

// Upgrade completes the websocket handshake. On failure an HTTP error has
// already been written.
func (u *Upgrader) Upgrade(w http.ResponseWriter, r *http.Request) (*Conn, error) {
	conn, err := u.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return NewConn(conn, u.opts...), nil
}

// ReadFrame returns the next data message. Control frames are handled internally.
func (c *Conn) ReadFrame() ([]byte, error) {
	for {
		typ, data, err := c.ws.ReadMessage()
		if err != nil {
			return nil, err
		}
		if c.pingInterval > 0 {
			c.extendReadDeadline()
		}
		if typ == ws.TextMessage || typ == ws.BinaryMessage {
			return data, nil
		}
	}
}

// WriteFrame sends one text message.
func (c *Conn) WriteFrame(frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.writeTimeout > 0 {
		_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return c.ws.WriteMessage(ws.TextMessage, frame)
}

// Close sends a close frame (best effort) and closes the connection.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		msg := ws.FormatCloseMessage(ws.CloseNormalClosure, "")
		_ = c.ws.WriteControl(ws.CloseMessage, msg, time.Now().Add(time.Second))
		err = c.ws.Close()
	})
	return err
}

func (c *Conn) extendReadDeadline() {
	_ = c.ws.SetReadDeadline(time.Now().Add(2 * c.pingInterval))
}

func (c *Conn) keepalive() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			timeout := c.writeTimeout
			if timeout <= 0 {
				timeout = defaultWriteTimeout
			}
			if err := c.ws.WriteControl(ws.PingMessage, nil, time.Now().Add(timeout)); err != nil {
				return
			}
		}
	}
}
