package store

import (
	"time"

	"github.com/YourBr0ther/deskmate-sub001/internal/clock"
)

type StoreOpt func(*Store)

// WithClock sets the time source used to stamp and expire pending operations.
func WithClock(c clock.Clock) StoreOpt {
	return func(s *Store) {
		s.clock = c
	}
}

// WithMaxOperationAge sets how long a pending operation survives the sweep.
func WithMaxOperationAge(d time.Duration) StoreOpt {
	return func(s *Store) {
		s.maxAge = d
	}
}
