package store

import (
	"context"
	"fmt"
	"maps"

	"github.com/YourBr0ther/deskmate-sub001/internal/geometry"
	"github.com/google/uuid"
)

// Optimistic actions apply their local change and record a ledger entry
// before calling the API, so a read made while the call is in flight sees
// the new state. On failure the entry is rolled back and the failure
// message is stored as the UI error. The returned error is for the direct
// caller only; UI code observes the store.

// MoveObject moves an object locally, then confirms with the API.
func (s *Store) MoveObject(ctx context.Context, id string, pos geometry.Position) error {
	s.mu.Lock()
	obj, ok := s.objects[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("moving object %q: %w", id, ErrObjectNotFound)
	}
	snapshot := obj.Clone()
	op := s.newOperation(OpMove, objectEntity(id), RollbackData{Object: &snapshot})
	if err := s.beginLocked(op); err != nil {
		return err
	}
	obj = obj.Clone()
	obj.Position = pos
	s.objects[id] = obj
	s.mu.Unlock()
	s.notify()

	if s.api == nil {
		return s.fail(op.ID, &APIError{Op: "move object", Message: ErrNoAPI.Error()})
	}
	res, err := s.api.MoveObject(ctx, id, pos)
	if f := failure("move object", res, err); f != nil {
		return s.fail(op.ID, f)
	}
	s.CompletePendingOperation(op.ID)
	return nil
}

// CreateObject adds obj locally, then confirms with the API. An empty ID
// is filled with a generated one. If the API answers with a different ID,
// the local object is re-keyed to the server's.
func (s *Store) CreateObject(ctx context.Context, obj SpatialObject) (string, error) {
	if obj.ID == "" {
		obj.ID = uuid.New().String()
	}

	s.mu.Lock()
	if _, exists := s.objects[obj.ID]; exists {
		s.mu.Unlock()
		return "", fmt.Errorf("creating object %q: already exists", obj.ID)
	}
	op := s.newOperation(OpCreate, objectEntity(obj.ID), RollbackData{CreatedObjectID: obj.ID})
	if err := s.beginLocked(op); err != nil {
		return "", err
	}
	if err := s.putObjectLocked(obj); err != nil {
		s.takePendingLocked(op.ID)
		s.mu.Unlock()
		return "", err
	}
	s.mu.Unlock()
	s.notify()

	if s.api == nil {
		return "", s.fail(op.ID, &APIError{Op: "create object", Message: ErrNoAPI.Error()})
	}
	res, err := s.api.CreateObject(ctx, obj)
	if f := failure("create object", res, err); f != nil {
		return "", s.fail(op.ID, f)
	}

	id := obj.ID
	s.mu.Lock()
	if _, ok := s.takePendingLocked(op.ID); ok && res.Data.ID != "" && res.Data.ID != obj.ID {
		s.removeObjectLocked(obj.ID)
		if err := s.putObjectLocked(res.Data); err == nil {
			id = res.Data.ID
		}
	}
	s.mu.Unlock()
	s.notify()
	return id, nil
}

// DeleteObject removes an object locally, then confirms with the API.
func (s *Store) DeleteObject(ctx context.Context, id string) error {
	s.mu.Lock()
	obj, ok := s.objects[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("deleting object %q: %w", id, ErrObjectNotFound)
	}
	snapshot := obj.Clone()
	op := s.newOperation(OpDelete, objectEntity(id), RollbackData{Object: &snapshot})
	if err := s.beginLocked(op); err != nil {
		return err
	}
	s.removeObjectLocked(id)
	s.mu.Unlock()
	s.notify()

	if s.api == nil {
		return s.fail(op.ID, &APIError{Op: "delete object", Message: ErrNoAPI.Error()})
	}
	res, err := s.api.DeleteObject(ctx, id)
	if f := failure("delete object", res, err); f != nil {
		return s.fail(op.ID, f)
	}
	s.CompletePendingOperation(op.ID)
	return nil
}

// UpdateObjectState merges states locally, then confirms with the API.
func (s *Store) UpdateObjectState(ctx context.Context, id string, states map[string]any) error {
	s.mu.Lock()
	obj, ok := s.objects[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("updating object %q: %w", id, ErrObjectNotFound)
	}
	snapshot := obj.Clone()
	op := s.newOperation(OpUpdate, objectEntity(id), RollbackData{Object: &snapshot})
	if err := s.beginLocked(op); err != nil {
		return err
	}
	obj = obj.Clone()
	if obj.States == nil {
		obj.States = make(map[string]any, len(states))
	}
	maps.Copy(obj.States, states)
	s.objects[id] = obj
	s.mu.Unlock()
	s.notify()

	if s.api == nil {
		return s.fail(op.ID, &APIError{Op: "update object", Message: ErrNoAPI.Error()})
	}
	res, err := s.api.UpdateObjectState(ctx, id, states)
	if f := failure("update object", res, err); f != nil {
		return s.fail(op.ID, f)
	}
	s.CompletePendingOperation(op.ID)
	return nil
}

// MoveAssistant moves the assistant locally, then confirms with the API.
func (s *Store) MoveAssistant(ctx context.Context, pos geometry.Position) error {
	pos = geometry.ClampToRoom(pos)

	s.mu.Lock()
	prev := s.assistant.Position
	op := s.newOperation(OpMove, assistantEntity, RollbackData{AssistantPosition: &prev})
	if err := s.beginLocked(op); err != nil {
		return err
	}
	s.assistant.Position = pos
	s.mu.Unlock()
	s.notify()

	if s.api == nil {
		return s.fail(op.ID, &APIError{Op: "move assistant", Message: ErrNoAPI.Error()})
	}
	res, err := s.api.MoveAssistant(ctx, pos)
	if f := failure("move assistant", res, err); f != nil {
		return s.fail(op.ID, f)
	}
	s.CompletePendingOperation(op.ID)
	return nil
}

// StoreObject moves an object out of its room into storage.
func (s *Store) StoreObject(ctx context.Context, id string) error {
	s.mu.Lock()
	obj, ok := s.objects[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("storing object %q: %w", id, ErrObjectNotFound)
	}
	snapshot := obj.Clone()
	item := StorageItem{
		ID:         obj.ID,
		Name:       obj.Name,
		Type:       obj.Type,
		Size:       obj.Size,
		Properties: maps.Clone(obj.Properties),
		CreatedAt:  s.clock.Now(),
	}
	op := s.newOperation(OpDelete, objectEntity(id), RollbackData{Object: &snapshot, AddedStorageItemID: item.ID})
	if err := s.beginLocked(op); err != nil {
		return err
	}
	s.removeObjectLocked(id)
	s.storage[item.ID] = item
	s.mu.Unlock()
	s.notify()

	if s.api == nil {
		return s.fail(op.ID, &APIError{Op: "store object", Message: ErrNoAPI.Error()})
	}
	res, err := s.api.StoreObject(ctx, id)
	if f := failure("store object", res, err); f != nil {
		return s.fail(op.ID, f)
	}

	s.mu.Lock()
	if _, ok := s.takePendingLocked(op.ID); ok && res.Data.ID != "" {
		delete(s.storage, item.ID)
		s.storage[res.Data.ID] = res.Data.clone()
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// PlaceStorageItem takes an item out of storage and asks the API to place
// it in roomID at pos. The backend is expected to push the recreated
// object; if the API response carries it, it is added right away.
func (s *Store) PlaceStorageItem(ctx context.Context, id, roomID string, pos geometry.Position) error {
	s.mu.Lock()
	item, ok := s.storage[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("placing storage item %q: %w", id, ErrStorageItemNotFound)
	}
	if roomID == "" {
		roomID = s.currentRoomID
	}
	if _, ok := s.rooms[roomID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("placing storage item %q in room %q: %w", id, roomID, ErrRoomNotFound)
	}
	snapshot := item.clone()
	op := s.newOperation(OpDelete, storageEntity(id), RollbackData{StorageItem: &snapshot})
	if err := s.beginLocked(op); err != nil {
		return err
	}
	delete(s.storage, id)
	s.mu.Unlock()
	s.notify()

	if s.api == nil {
		return s.fail(op.ID, &APIError{Op: "place storage item", Message: ErrNoAPI.Error()})
	}
	res, err := s.api.PlaceStorageItem(ctx, id, roomID, pos)
	if f := failure("place storage item", res, err); f != nil {
		return s.fail(op.ID, f)
	}

	s.mu.Lock()
	s.takePendingLocked(op.ID)
	if res.Data.ID != "" {
		if err := s.putObjectLocked(res.Data); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("adding placed object: %w", err)
		}
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// beginLocked records op or, when the entity is busy, releases the lock,
// sets the UI error and returns ErrOperationPending. It expects s.mu held
// and leaves it held only on success.
func (s *Store) beginLocked(op PendingOperation) error {
	if err := s.addPendingLocked(op); err != nil {
		s.ui.Error = err.Error()
		s.mu.Unlock()
		s.notify()
		return err
	}
	return nil
}

func (s *Store) fail(opID string, f *APIError) error {
	s.RollbackPendingOperation(opID)
	s.SetError(f.Message)
	return f
}
