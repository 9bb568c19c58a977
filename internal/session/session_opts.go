package session

import (
	"time"

	"github.com/YourBr0ther/deskmate-sub001/internal/clock"
)

type SessionOpt func(*Session)

// WithRetry reconnects after delay whenever the connection closes and the
// channel client has no reconnect of its own left to make.
func WithRetry(delay time.Duration) SessionOpt {
	return func(s *Session) {
		s.retryOnError = true
		s.retryDelay = delay
	}
}

// WithPersona sets the persona chat messages are sent with by default.
func WithPersona(name string) SessionOpt {
	return func(s *Session) {
		s.persona = name
	}
}

func WithClock(c clock.Clock) SessionOpt {
	return func(s *Session) {
		s.clock = c
	}
}

// WithPreload makes Start bulk-load room data before connecting.
func WithPreload() SessionOpt {
	return func(s *Session) {
		s.preload = true
	}
}
