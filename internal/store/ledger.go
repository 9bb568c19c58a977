package store

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/YourBr0ther/deskmate-sub001/internal/geometry"
	"github.com/google/uuid"
)

// OpType is the kind of optimistic mutation a PendingOperation tracks.
type OpType string

const (
	OpMove   OpType = "move"
	OpCreate OpType = "create"
	OpDelete OpType = "delete"
	OpUpdate OpType = "update"
)

// RollbackData is the snapshot needed to undo one optimistic mutation.
// Only the fields relevant to the mutation are set.
type RollbackData struct {
	// Object is the object as it was before the mutation. Move and update
	// restore it into the existing object; delete re-inserts it.
	Object *SpatialObject

	// CreatedObjectID is removed when a create is undone.
	CreatedObjectID string

	AssistantPosition *geometry.Position

	// StorageItem is re-inserted into storage on undo.
	StorageItem *StorageItem

	// AddedStorageItemID is removed from storage on undo.
	AddedStorageItemID string
}

// PendingOperation is one in-flight optimistic mutation.
type PendingOperation struct {
	ID        string
	Type      OpType
	EntityID  string
	Timestamp time.Time
	Rollback  RollbackData
}

const assistantEntity = "assistant"

func objectEntity(id string) string  { return "object:" + id }
func storageEntity(id string) string { return "storage:" + id }

// AddPendingOperation records op. It fails with ErrOperationPending when the
// same entity already has an outstanding operation.
func (s *Store) AddPendingOperation(op PendingOperation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addPendingLocked(op)
}

func (s *Store) newOperation(typ OpType, entity string, rb RollbackData) PendingOperation {
	return PendingOperation{
		ID:        uuid.New().String(),
		Type:      typ,
		EntityID:  entity,
		Timestamp: s.clock.Now(),
		Rollback:  rb,
	}
}

func (s *Store) addPendingLocked(op PendingOperation) error {
	if op.ID == "" {
		return fmt.Errorf("pending operation id is required")
	}
	if _, ok := s.pending[op.ID]; ok {
		return fmt.Errorf("pending operation %q already recorded", op.ID)
	}
	if op.EntityID != "" {
		if other, ok := s.pendingByEntity[op.EntityID]; ok {
			return fmt.Errorf("%s on %s (waiting on %s): %w", op.Type, op.EntityID, other, ErrOperationPending)
		}
		s.pendingByEntity[op.EntityID] = op.ID
	}
	if op.Timestamp.IsZero() {
		op.Timestamp = s.clock.Now()
	}
	s.pending[op.ID] = op
	return nil
}

// CompletePendingOperation discards a confirmed operation. It reports
// whether the entry was still in the ledger.
func (s *Store) CompletePendingOperation(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.takePendingLocked(id)
	return ok
}

// RollbackPendingOperation undoes the operation from its rollback data and
// removes it. If the entry is already gone, typically swept after
// expiring, nothing is restored.
func (s *Store) RollbackPendingOperation(id string) bool {
	s.mu.Lock()
	op, ok := s.takePendingLocked(id)
	if ok {
		s.rollbackLocked(op)
	}
	s.mu.Unlock()

	if !ok {
		slog.Debug("rollback for unknown pending operation ignored", "id", id)
		return false
	}
	s.notify()
	return true
}

func (s *Store) takePendingLocked(id string) (PendingOperation, bool) {
	op, ok := s.pending[id]
	if !ok {
		return PendingOperation{}, false
	}
	delete(s.pending, id)
	if s.pendingByEntity[op.EntityID] == id {
		delete(s.pendingByEntity, op.EntityID)
	}
	return op, true
}

func (s *Store) rollbackLocked(op PendingOperation) {
	rb := op.Rollback

	if rb.CreatedObjectID != "" {
		s.removeObjectLocked(rb.CreatedObjectID)
	}

	if rb.Object != nil {
		switch op.Type {
		case OpDelete:
			if err := s.putObjectLocked(*rb.Object); err != nil {
				slog.Warn("restoring deleted object", "id", rb.Object.ID, "error", err)
			}
		default:
			// Only restore into an object that still exists; a server push
			// may have deleted it in the meantime.
			if _, ok := s.objects[rb.Object.ID]; ok {
				if err := s.putObjectLocked(*rb.Object); err != nil {
					slog.Warn("restoring object", "id", rb.Object.ID, "error", err)
				}
			}
		}
	}

	if rb.AssistantPosition != nil {
		s.assistant.Position = *rb.AssistantPosition
	}

	if rb.AddedStorageItemID != "" {
		delete(s.storage, rb.AddedStorageItemID)
	}
	if rb.StorageItem != nil {
		s.storage[rb.StorageItem.ID] = rb.StorageItem.clone()
	}
}

// ClearExpiredOperations drops every entry older than the max age without
// rolling it back and returns how many were dropped.
func (s *Store) ClearExpiredOperations() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.clock.Now().Add(-s.maxAge)
	n := 0
	for id, op := range s.pending {
		if op.Timestamp.Before(cutoff) {
			s.takePendingLocked(id)
			n++
		}
	}
	return n
}

// PendingOperation returns the ledger entry with the given ID.
func (s *Store) PendingOperation(id string) (PendingOperation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	op, ok := s.pending[id]
	return op, ok
}

// PendingOperations returns every ledger entry, oldest first.
func (s *Store) PendingOperations() []PendingOperation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PendingOperation, 0, len(s.pending))
	for _, op := range s.pending {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}
