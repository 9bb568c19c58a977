package channel

import (
	"time"

	"github.com/YourBr0ther/deskmate-sub001/internal/clock"
)

type ClientOpt func(*Client)

// WithClock sets the time source for reconnect and keep-alive timers.
func WithClock(c clock.Clock) ClientOpt {
	return func(cl *Client) {
		cl.clock = c
	}
}

// WithPingInterval sets how often a keep-alive ping is sent while open.
func WithPingInterval(d time.Duration) ClientOpt {
	return func(c *Client) {
		c.pingInterval = d
	}
}

// WithReconnectBackoff sets the first reconnect delay and its cap.
func WithReconnectBackoff(base, max time.Duration) ClientOpt {
	return func(c *Client) {
		c.reconnectBase = base
		c.reconnectMax = max
	}
}

// WithMaxReconnectAttempts sets how many reconnects are tried after a
// connection is lost before giving up.
func WithMaxReconnectAttempts(n int) ClientOpt {
	return func(c *Client) {
		c.maxAttempts = n
	}
}

// WithHandshakeTimeout bounds each dial.
func WithHandshakeTimeout(d time.Duration) ClientOpt {
	return func(c *Client) {
		c.dialer.HandshakeTimeout = d
	}
}
