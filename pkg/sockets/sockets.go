package sockets

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var ErrClosed = errors.New("closed connection")

type Connection interface {
	Dial(ctx context.Context, url string) error
	Send(body []byte) error
	// Done is closed once the connection has been torn down, locally or by the peer.
	Done() <-chan struct{}
	io.Closer
}

type Conn struct {
	ws               *websocket.Conn
	mu               sync.Mutex
	closed           bool
	done             chan struct{}
	closeOnce        sync.Once
	sslSkipVerify    bool
	handshakeTimeout time.Duration
	pingInterval     time.Duration
	readTimeout      time.Duration
	maxMessageSize   int64
	onError          func(err error)
	onMessage        func([]byte, Connection)
	onConnected      func(Connection)
}

func New(opts ...func(*Conn)) *Conn {
	c := &Conn{
		done:             make(chan struct{}),
		handshakeTimeout: 15 * time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Close sends a close frame to the peer and releases the socket. It is safe to call more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		if c.ws != nil {
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			err = c.ws.Close()
		}
		c.mu.Unlock()
		close(c.done)
	})
	return err
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Conn) Send(body []byte) error {
	c.mu.Lock()
	if c.closed || c.ws == nil {
		c.mu.Unlock()
		return ErrClosed
	}
	err := c.ws.WriteMessage(websocket.TextMessage, body)
	c.mu.Unlock()
	if err != nil {
		c.fail(err)
		return err
	}
	return nil
}

// fail reports err and tears the connection down, unless the connection was already closed locally.
// onError always runs before Done is closed.
func (c *Conn) fail(err error) {
	if c.isClosed() {
		return
	}
	if c.onError != nil {
		c.onError(err)
	}
	_ = c.Close()
}

func (c *Conn) Dial(ctx context.Context, url string) error {
	dialer := &websocket.Dialer{
		HandshakeTimeout: c.handshakeTimeout,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: c.sslSkipVerify,
		},
	}
	conn, res, err := dialer.DialContext(ctx, url, nil)
	if res != nil && res.Body != nil {
		_ = res.Body.Close()
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.ws = conn
	c.closed = false
	c.mu.Unlock()

	if c.maxMessageSize > 0 {
		conn.SetReadLimit(c.maxMessageSize)
	}
	c.extendReadDeadline()
	conn.SetPongHandler(func(string) error {
		c.extendReadDeadline()
		return nil
	})

	if c.onConnected != nil {
		c.onConnected(c)
	}
	go c.readLoop()
	c.setupPing()
	return nil
}

func (c *Conn) extendReadDeadline() {
	if c.readTimeout > 0 {
		_ = c.ws.SetReadDeadline(time.Now().Add(c.readTimeout))
	}
}

// readLoop delivers messages to onMessage one at a time, in arrival order.
func (c *Conn) readLoop() {
	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			c.fail(err)
			return
		}
		c.extendReadDeadline()
		if c.onMessage != nil {
			c.onMessage(msg, c)
		}
	}
}

func (c *Conn) setupPing() {
	if c.pingInterval <= 0 {
		return
	}
	ticker := time.NewTicker(c.pingInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-c.done:
				return
			case <-ticker.C:
				if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
					c.fail(err)
					return
				}
			}
		}
	}()
}
