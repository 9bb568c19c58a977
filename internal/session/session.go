package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/YourBr0ther/deskmate-sub001/internal/channel"
	"github.com/YourBr0ther/deskmate-sub001/internal/clock"
	"github.com/YourBr0ther/deskmate-sub001/internal/store"
	"github.com/pixil98/go-errors"
)

const DefaultRetryDelay = 5 * time.Second

// Session binds the channel client's lifecycle to an owner and exposes
// typed senders. The channel client stays the only reconnect authority;
// the session observes it and, with WithRetry, only retries once the
// client has given up.
type Session struct {
	client *channel.Client
	store  *store.Store
	clock  clock.Clock

	retryOnError bool
	retryDelay   time.Duration
	persona      string
	preload      bool

	mu     sync.Mutex
	active bool
	gen    int
	retry  *clock.Timer
}

func New(client *channel.Client, st *store.Store, opts ...SessionOpt) *Session {
	s := &Session{
		client:     client,
		store:      st,
		clock:      clock.Real(),
		retryDelay: DefaultRetryDelay,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.retryOnError {
		client.OnStatus(s.observe)
	}
	return s
}

// observe schedules a retry whenever the connection closes and the
// client has no reconnect of its own left to make.
func (s *Session) observe(state channel.State, _ error) {
	if state != channel.StateClosed {
		return
	}

	s.mu.Lock()
	active, gen := s.active, s.gen
	s.mu.Unlock()
	if !active {
		return
	}
	s.scheduleRetry(context.Background(), gen)
}

// Start satisfies service.Worker. It activates the session and
// deactivates it when ctx is done.
func (s *Session) Start(ctx context.Context) error {
	if s.preload {
		if err := s.Preload(ctx); err != nil {
			slog.WarnContext(ctx, "preloading room data", "error", err)
		}
	}
	if err := s.Activate(ctx); err != nil {
		slog.WarnContext(ctx, "initial connection failed", "error", err)
	}

	<-ctx.Done()
	s.Deactivate()
	return nil
}

// Preload bulk-loads objects, the assistant and storage items through the
// store's API. Both loads are attempted even if the first one fails.
func (s *Session) Preload(ctx context.Context) error {
	el := errors.NewErrorList()
	if err := s.store.LoadRoomData(ctx); err != nil {
		el.Add(fmt.Errorf("loading room data: %w", err))
	}
	if err := s.store.LoadStorageItems(ctx); err != nil {
		el.Add(fmt.Errorf("loading storage items: %w", err))
	}
	return el.Err()
}

// Activate connects the channel. Repeated calls while active do nothing,
// so at most one connection attempt is made per activation.
func (s *Session) Activate(ctx context.Context) error {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return nil
	}
	s.active = true
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	return s.connect(ctx, gen)
}

func (s *Session) connect(ctx context.Context, gen int) error {
	err := s.client.Connect(ctx)
	if !s.current(gen) {
		return err
	}

	if err != nil {
		s.store.SetConnectionStatus(store.ConnClosed)
		s.store.SetConnectionError(err.Error())
		return err
	}

	s.store.SetConnectionStatus(store.ConnOpen)
	return nil
}

func (s *Session) current(gen int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active && s.gen == gen
}

func (s *Session) scheduleRetry(ctx context.Context, gen int) {
	if !s.retryOnError || s.client.ReconnectPending() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || s.gen != gen || s.retry != nil {
		return
	}

	slog.InfoContext(ctx, "retrying connection", "delay", s.retryDelay)
	var t *clock.Timer
	t = s.clock.AfterFunc(s.retryDelay, func() {
		s.mu.Lock()
		if s.retry != t {
			s.mu.Unlock()
			return
		}
		s.retry = nil
		s.mu.Unlock()

		if s.current(gen) {
			_ = s.connect(context.Background(), gen)
		}
	})
	s.retry = t
}

// Deactivate disconnects the channel and marks the store disconnected,
// whether or not a connection attempt is still in flight.
func (s *Session) Deactivate() {
	s.mu.Lock()
	s.active = false
	s.gen++
	s.retry.Stop()
	s.retry = nil
	s.mu.Unlock()

	s.client.Disconnect()
	s.store.SetConnectionStatus(store.ConnDisconnected)
}

// Active reports whether the session is activated.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Connected reports the store-visible connected flag.
func (s *Session) Connected() bool {
	return s.store.Connection().Connected
}

// Connection returns the store-visible connection state.
func (s *Session) Connection() store.ConnectionState {
	return s.store.Connection()
}
