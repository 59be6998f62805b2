// Package wsconn provides a WebSocket client with automatic reconnection,
// built on github.com/coder/websocket.
package wsconn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// State represents the connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateClosed       State = "closed"
)

// MessageHandler is invoked for every inbound message.
type MessageHandler func(ctx context.Context, msg []byte)

// StateHandler is invoked on every state transition. err is non-nil when the
// transition was caused by a connection failure.
type StateHandler func(state State, err error)

// Config holds WebSocket client configuration.
type Config struct {
	URL            string
	Name           string
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxReconnects  int // 0 = infinite
	PingInterval   time.Duration // 0 disables pings
	MaxMessageSize int64
}

// DefaultConfig returns sensible defaults for a long-lived feed connection.
func DefaultConfig(url, name string) Config {
	return Config{
		URL:            url,
		Name:           name,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		MaxReconnects:  0,
		PingInterval:   30 * time.Second,
		MaxMessageSize: 4 << 20,
	}
}

// Client is a reconnecting WebSocket client. Handlers must be registered
// before Connect is called.
type Client struct {
	config Config

	mu        sync.RWMutex
	state     State
	conn      *websocket.Conn
	onMessage MessageHandler
	onState   StateHandler
	closed    bool

	// writeMu serializes writes; coder/websocket allows one concurrent writer.
	writeMu sync.Mutex

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a new WebSocket client.
func New(config Config) (*Client, error) {
	if config.URL == "" {
		return nil, errors.New("wsconn: URL is required")
	}
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = 4 << 20
	}

	return &Client{
		config: config,
		state:  StateDisconnected,
		done:   make(chan struct{}),
	}, nil
}

// OnMessage registers the inbound message handler.
func (c *Client) OnMessage(h MessageHandler) {
	c.mu.Lock()
	c.onMessage = h
	c.mu.Unlock()
}

// OnStateChange registers the state transition handler.
func (c *Client) OnStateChange(h StateHandler) {
	c.mu.Lock()
	c.onState = h
	c.mu.Unlock()
}

// Connect dials the endpoint and starts the read and ping loops.
func (c *Client) Connect(ctx context.Context) error {
	c.setState(StateConnecting, nil)

	conn, _, err := websocket.Dial(ctx, c.config.URL, nil)
	if err != nil {
		c.setState(StateDisconnected, err)
		return fmt.Errorf("wsconn %s: dial %s: %w", c.config.Name, c.config.URL, err)
	}
	conn.SetReadLimit(c.config.MaxMessageSize)

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.setState(StateConnected, nil)

	go c.readLoop()
	if c.config.PingInterval > 0 {
		go c.pingLoop()
	}

	return nil
}

// Send writes a text message. It is safe for concurrent use.
func (c *Client) Send(ctx context.Context, msg []byte) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return errors.New("wsconn: not connected")
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return conn.Write(ctx, websocket.MessageText, msg)
}

// SendJSON marshals v and sends it as a text message.
func (c *Client) SendJSON(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("wsconn: marshal message: %w", err)
	}
	return c.Send(ctx, data)
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsConnected reports whether the client currently holds a live connection.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Close tears the connection down. It is idempotent.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		conn := c.conn
		c.conn = nil
		c.mu.Unlock()

		close(c.done)

		if conn != nil {
			_ = conn.Close(websocket.StatusNormalClosure, "client shutdown")
		}

		c.setState(StateClosed, nil)
	})
	return nil
}

func (c *Client) readLoop() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-c.done
		cancel()
	}()

	for {
		c.mu.RLock()
		conn := c.conn
		handler := c.onMessage
		closed := c.closed
		c.mu.RUnlock()

		if closed || conn == nil {
			return
		}

		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil || c.isClosed() {
				return
			}
			if !c.reconnect(ctx, err) {
				return
			}
			continue
		}

		if handler != nil {
			handler(ctx, data)
		}
	}
}

// reconnect dials with exponential backoff until it succeeds, the reconnect
// budget is exhausted, or the client is closed.
func (c *Client) reconnect(ctx context.Context, cause error) bool {
	c.setState(StateReconnecting, cause)

	backoff := c.config.InitialBackoff
	attempts := 0

	for {
		if c.config.MaxReconnects > 0 && attempts >= c.config.MaxReconnects {
			c.setState(StateDisconnected, cause)
			return false
		}
		attempts++

		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}

		conn, _, err := websocket.Dial(ctx, c.config.URL, nil)
		if err == nil {
			conn.SetReadLimit(c.config.MaxMessageSize)

			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				_ = conn.Close(websocket.StatusNormalClosure, "client shutdown")
				return false
			}
			c.conn = conn
			c.mu.Unlock()

			c.setState(StateConnected, nil)
			return true
		}

		backoff *= 2
		if backoff > c.config.MaxBackoff {
			backoff = c.config.MaxBackoff
		}
	}
}

func (c *Client) pingLoop() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.RLock()
			conn := c.conn
			c.mu.RUnlock()
			if conn == nil {
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			_ = conn.Ping(ctx)
			cancel()
		}
	}
}

func (c *Client) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Client) setState(s State, err error) {
	c.mu.Lock()
	if c.state == StateClosed && s != StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = s
	handler := c.onState
	c.mu.Unlock()

	if handler != nil {
		handler(s, err)
	}
}
