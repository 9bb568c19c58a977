// Package store is the client-side source of truth for the room: objects,
// rooms, storage, the assistant, chat, connection and UI state, plus the
// ledger of in-flight optimistic mutations.
//
// All access goes through Store methods. Reads return copies, so callers
// can never observe or cause a torn view of the room.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/YourBr0ther/deskmate-sub001/internal/clock"
	"github.com/YourBr0ther/deskmate-sub001/internal/geometry"
)

const (
	DefaultRoomID   = "main-room"
	DefaultRoomName = "Main Room"

	// DefaultMaxOperationAge is how long a PendingOperation may live before
	// the sweep drops it.
	DefaultMaxOperationAge = 10 * time.Second
)

var (
	ErrObjectNotFound      = errors.New("object not found")
	ErrRoomNotFound        = errors.New("room not found")
	ErrStorageItemNotFound = errors.New("storage item not found")
	ErrOperationPending    = errors.New("another operation is pending for this entity")
	ErrNoAPI               = errors.New("no api configured")
)

type Store struct {
	mu     sync.RWMutex
	api    API
	clock  clock.Clock
	maxAge time.Duration

	objects       map[string]SpatialObject
	rooms         map[string]Room
	currentRoomID string
	storage       map[string]StorageItem
	assistant     Assistant
	chat          ChatState
	conn          ConnectionState
	ui            UIState

	pending         map[string]PendingOperation
	pendingByEntity map[string]string

	subsMu  sync.Mutex
	subs    map[int]func()
	nextSub int
}

// New creates a Store holding the default room and a centered assistant.
// api may be nil when only immediate mutations are used.
func New(api API, opts ...StoreOpt) *Store {
	s := &Store{
		api:    api,
		clock:  clock.Real(),
		maxAge: DefaultMaxOperationAge,
		subs:   make(map[int]func()),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.resetLocked()
	return s
}

// DefaultAssistant returns the assistant's initial state.
func DefaultAssistant() Assistant {
	return Assistant{
		Position:    geometry.DefaultAssistantPosition(),
		Mood:        MoodNeutral,
		Status:      StatusIdle,
		Facing:      FacingDown,
		EnergyLevel: 1.0,
	}
}

func defaultRoom() Room {
	return Room{
		ID:         DefaultRoomID,
		Name:       DefaultRoomName,
		Dimensions: geometry.Size{Width: geometry.RoomWidth, Height: geometry.RoomHeight},
		Objects:    []string{},
	}
}

func defaultUI() UIState {
	return UIState{Viewport: Viewport{Zoom: 1}}
}

func (s *Store) resetLocked() {
	s.objects = make(map[string]SpatialObject)
	s.rooms = map[string]Room{DefaultRoomID: defaultRoom()}
	s.currentRoomID = DefaultRoomID
	s.storage = make(map[string]StorageItem)
	s.assistant = DefaultAssistant()
	s.chat = ChatState{Messages: []ChatMessage{}}
	s.ui = defaultUI()
	s.pending = make(map[string]PendingOperation)
	s.pendingByEntity = make(map[string]string)
	if s.conn.Status == "" {
		s.conn = ConnectionState{Status: ConnDisconnected}
	}
}

// ResetToDefaults restores entities, assistant, chat, UI and the ledger to
// their initial values. Connection state is left alone since it mirrors
// a live transport.
func (s *Store) ResetToDefaults() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
	s.notify()
}

// ClearAllData empties objects and storage, keeps a single default room and
// clears UI error and selection. The assistant is untouched. Pending
// operations are dropped because their rollback data refers to cleared
// entities.
func (s *Store) ClearAllData() {
	s.mu.Lock()
	s.objects = make(map[string]SpatialObject)
	s.storage = make(map[string]StorageItem)
	s.rooms = map[string]Room{DefaultRoomID: defaultRoom()}
	s.currentRoomID = DefaultRoomID
	s.ui.Error = ""
	s.ui.SelectedObjectID = ""
	s.pending = make(map[string]PendingOperation)
	s.pendingByEntity = make(map[string]string)
	s.mu.Unlock()
	s.notify()
}

// Subscribe registers fn to be called after every mutation. fn runs without
// the store lock held and may read from the store.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify() {
	s.subsMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Tick satisfies driver.Manager and sweeps expired ledger entries.
func (s *Store) Tick(ctx context.Context) error {
	if n := s.ClearExpiredOperations(); n > 0 {
		slog.DebugContext(ctx, "swept expired pending operations", "count", n)
	}
	return nil
}
