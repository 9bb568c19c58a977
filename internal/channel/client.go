package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/YourBr0ther/deskmate-sub001/internal/clock"
	"github.com/YourBr0ther/deskmate-sub001/internal/protocol"
	"github.com/gorilla/websocket"
)

const (
	DefaultPingInterval         = 30 * time.Second
	DefaultReconnectBase        = time.Second
	DefaultReconnectMax         = 30 * time.Second
	DefaultMaxReconnectAttempts = 5
	DefaultHandshakeTimeout     = 10 * time.Second

	writeWait      = 10 * time.Second
	maxMessageSize = 1 << 20
)

var (
	ErrNotConnected = errors.New("channel not connected")
	ErrClosed       = errors.New("channel closed")
)

// State is the connection lifecycle state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateOpen         State = "open"
	StateClosed       State = "closed"
)

// Handler receives the raw data payload of one inbound event.
type Handler func(data json.RawMessage) error

// StatusFunc observes lifecycle transitions. err is set when the
// transition was caused by a failure.
type StatusFunc func(state State, err error)

// Client owns the single websocket connection to the backend. Inbound
// frames are dispatched one at a time in arrival order. A lost
// connection is retried with exponential backoff until the attempt
// ceiling is reached or Disconnect is called.
type Client struct {
	url    string
	dialer websocket.Dialer
	clock  clock.Clock

	pingInterval  time.Duration
	reconnectBase time.Duration
	reconnectMax  time.Duration
	maxAttempts   int

	mu        sync.Mutex
	conn      *websocket.Conn
	state     State
	attempts  int
	ceiling   int
	gen       int
	reconnect *clock.Timer
	ping      *clock.Timer

	writeMu    sync.Mutex
	dispatchMu sync.Mutex

	handlersMu sync.RWMutex
	builtin    map[protocol.EventType]Handler
	listeners  map[protocol.EventType]map[int]Handler
	observers  map[int]StatusFunc
	nextID     int
}

func NewClient(url string, opts ...ClientOpt) *Client {
	c := &Client{
		url: url,
		dialer: websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: DefaultHandshakeTimeout,
		},
		clock:         clock.Real(),
		pingInterval:  DefaultPingInterval,
		reconnectBase: DefaultReconnectBase,
		reconnectMax:  DefaultReconnectMax,
		maxAttempts:   DefaultMaxReconnectAttempts,
		state:         StateDisconnected,
		builtin:       make(map[protocol.EventType]Handler),
		listeners:     make(map[protocol.EventType]map[int]Handler),
		observers:     make(map[int]StatusFunc),
	}

	for _, opt := range opts {
		opt(c)
	}
	c.ceiling = c.maxAttempts

	Handle(c, protocol.Pong, c.handlePong)
	return c
}

// BackoffDelay is the wait before reconnect attempt n+1, where n attempts
// have already been made since the last successful open.
func BackoffDelay(n int, base, max time.Duration) time.Duration {
	if n < 0 {
		n = 0
	}
	if n >= 31 {
		return max
	}
	d := base << n
	if d <= 0 || d > max {
		return max
	}
	return d
}

// Connect dials the backend and returns once the connection is open or
// has failed. A failure is returned exactly once; the reconnect loop
// keeps running regardless. Calling Connect while already open or
// connecting is a no-op. Connect re-enables reconnects suppressed by an
// earlier Disconnect.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	c.ceiling = c.maxAttempts
	c.mu.Unlock()
	return c.dial(ctx)
}

func (c *Client) dial(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateOpen || c.state == StateConnecting {
		c.mu.Unlock()
		return nil
	}
	c.reconnect.Stop()
	c.reconnect = nil
	c.state = StateConnecting
	gen := c.gen
	c.mu.Unlock()
	c.emit(StateConnecting, nil)

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)

	c.mu.Lock()
	if c.gen != gen || c.state != StateConnecting {
		c.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return ErrClosed
	}
	if err != nil {
		c.state = StateClosed
		c.scheduleReconnectLocked()
		c.mu.Unlock()

		err = fmt.Errorf("connecting to %s: %w", c.url, err)
		c.emit(StateClosed, err)
		return err
	}

	conn.SetReadLimit(maxMessageSize)
	c.conn = conn
	c.state = StateOpen
	c.attempts = 0
	c.schedulePingLocked(conn)
	c.mu.Unlock()

	slog.InfoContext(ctx, "channel open", "url", c.url)
	c.emit(StateOpen, nil)

	go c.readLoop(conn)
	return nil
}

// Disconnect closes the connection and permanently suppresses reconnects
// until the next Connect.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.ceiling = 0
	c.gen++
	c.reconnect.Stop()
	c.reconnect = nil
	c.ping.Stop()
	c.ping = nil
	conn := c.conn
	c.conn = nil
	prev := c.state
	c.state = StateDisconnected
	c.mu.Unlock()

	if conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = conn.Close()
	}
	if prev != StateDisconnected {
		slog.Info("channel disconnected", "url", c.url)
		c.emit(StateDisconnected, nil)
	}
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ReconnectPending reports whether a reconnect attempt is scheduled.
func (c *Client) ReconnectPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reconnect != nil
}

// Attempts returns the number of reconnects made since the last open.
func (c *Client) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

func (c *Client) scheduleReconnectLocked() {
	if c.attempts >= c.ceiling {
		if c.ceiling > 0 {
			slog.Warn("giving up on reconnecting", "url", c.url, "attempts", c.attempts)
		}
		return
	}

	delay := BackoffDelay(c.attempts, c.reconnectBase, c.reconnectMax)
	c.attempts++
	gen := c.gen
	slog.Info("scheduling reconnect", "url", c.url, "attempt", c.attempts, "delay", delay)

	var t *clock.Timer
	t = c.clock.AfterFunc(delay, func() {
		c.mu.Lock()
		if c.gen != gen || c.reconnect != t {
			c.mu.Unlock()
			return
		}
		c.reconnect = nil
		c.mu.Unlock()

		if err := c.dial(context.Background()); err != nil {
			slog.Debug("reconnect failed", "url", c.url, "error", err)
		}
	})
	c.reconnect = t
}

func (c *Client) schedulePingLocked(conn *websocket.Conn) {
	if c.pingInterval <= 0 {
		return
	}
	var t *clock.Timer
	t = c.clock.AfterFunc(c.pingInterval, func() {
		c.mu.Lock()
		if c.conn != conn || c.ping != t {
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()

		ping := protocol.PingCommand{Timestamp: c.clock.Now().UnixMilli()}
		if err := Send(c, ping); err != nil {
			slog.Debug("keep-alive ping failed", "error", err)
		}

		c.mu.Lock()
		if c.conn == conn {
			c.schedulePingLocked(conn)
		}
		c.mu.Unlock()
	})
	c.ping = t
}

func (c *Client) handlePong(p protocol.PongData) error {
	if p.Timestamp == 0 {
		slog.Debug("pong received")
		return nil
	}
	latency := c.clock.Now().Sub(time.UnixMilli(p.Timestamp))
	slog.Debug("pong received", "latency", latency)
	return nil
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			c.handleClose(conn, err)
			return
		}
		c.dispatch(frame)
	}
}

func (c *Client) handleClose(conn *websocket.Conn, err error) {
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.ping.Stop()
	c.ping = nil
	c.state = StateClosed
	c.scheduleReconnectLocked()
	c.mu.Unlock()

	_ = conn.Close()
	slog.Warn("channel closed", "url", c.url, "error", err)
	c.emit(StateClosed, err)
}

func (c *Client) dispatch(frame []byte) {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	env, err := protocol.Decode(frame)
	if err != nil {
		slog.Warn("dropping malformed frame", "error", err)
		return
	}

	c.handlersMu.RLock()
	h := c.builtin[env.Type]
	ids := make([]int, 0, len(c.listeners[env.Type]))
	for id := range c.listeners[env.Type] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]Handler, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.listeners[env.Type][id])
	}
	c.handlersMu.RUnlock()

	if h != nil {
		if err := safeCall(h, env.Data); err != nil {
			slog.Warn("handling event", "type", env.Type, "error", err)
		}
	}
	for _, fn := range fns {
		if err := safeCall(fn, env.Data); err != nil {
			slog.Warn("event listener failed", "type", env.Type, "error", err)
		}
	}
}

func safeCall(h Handler, data json.RawMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h(data)
}

// Send encodes data under typ and writes it. While the connection is not
// open the message is dropped, logged and ErrNotConnected is returned.
func (c *Client) Send(typ protocol.EventType, data any) error {
	c.mu.Lock()
	conn := c.conn
	open := c.state == StateOpen
	c.mu.Unlock()

	if conn == nil || !open {
		slog.Error("dropping send while not connected", "type", typ)
		return ErrNotConnected
	}

	b, err := protocol.Encode(typ, data)
	if err != nil {
		slog.Error("encoding outbound message", "type", typ, "error", err)
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		slog.Warn("setting write deadline", "error", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		slog.Error("writing message", "type", typ, "error", err)
		return fmt.Errorf("sending %s: %w", typ, err)
	}
	return nil
}

// Send writes a typed outbound message.
func Send[T protocol.Outbound](c *Client, msg T) error {
	return c.Send(msg.EventType(), msg)
}

// Handle installs the built-in handler for typ, decoding the payload into
// T. Each type has at most one built-in handler; a later call replaces
// the earlier one.
func Handle[T any](c *Client, typ protocol.EventType, fn func(T) error) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()

	c.builtin[typ] = func(data json.RawMessage) error {
		v, err := protocol.Payload[T](data)
		if err != nil {
			return err
		}
		return fn(v)
	}
}

// On registers an additional listener for typ. Listeners run after the
// built-in handler, in registration order, and a failing listener does
// not stop the others.
func (c *Client) On(typ protocol.EventType, fn Handler) (unsubscribe func()) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()

	id := c.nextID
	c.nextID++
	if c.listeners[typ] == nil {
		c.listeners[typ] = make(map[int]Handler)
	}
	c.listeners[typ][id] = fn

	return func() {
		c.handlersMu.Lock()
		defer c.handlersMu.Unlock()
		delete(c.listeners[typ], id)
	}
}

// OnStatus registers an observer of lifecycle transitions.
func (c *Client) OnStatus(fn StatusFunc) (unsubscribe func()) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()

	id := c.nextID
	c.nextID++
	c.observers[id] = fn

	return func() {
		c.handlersMu.Lock()
		defer c.handlersMu.Unlock()
		delete(c.observers, id)
	}
}

func (c *Client) emit(state State, err error) {
	c.handlersMu.RLock()
	ids := make([]int, 0, len(c.observers))
	for id := range c.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]StatusFunc, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.observers[id])
	}
	c.handlersMu.RUnlock()

	for _, fn := range fns {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Warn("status observer panicked", "panic", r)
				}
			}()
			fn(state, err)
		}()
	}
}
