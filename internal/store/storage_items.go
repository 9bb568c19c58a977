package store

import (
	"context"
	"fmt"
	"sort"
)

// AddStorageItem inserts or replaces a storage item.
func (s *Store) AddStorageItem(item StorageItem) error {
	if item.ID == "" {
		return fmt.Errorf("adding storage item: id is required")
	}
	s.mu.Lock()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.clock.Now()
	}
	s.storage[item.ID] = item.clone()
	s.mu.Unlock()
	s.notify()
	return nil
}

// RemoveStorageItem deletes a storage item. Removing an absent ID is a no-op.
func (s *Store) RemoveStorageItem(id string) {
	s.mu.Lock()
	_, ok := s.storage[id]
	delete(s.storage, id)
	s.mu.Unlock()
	if ok {
		s.notify()
	}
}

// StorageItem returns a copy of the storage item with the given ID.
func (s *Store) StorageItem(id string) (StorageItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.storage[id]
	if !ok {
		return StorageItem{}, false
	}
	return item.clone(), true
}

// StorageItems returns every storage item, oldest first.
func (s *Store) StorageItems() []StorageItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]StorageItem, 0, len(s.storage))
	for _, item := range s.storage {
		out = append(out, item.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// LoadStorageItems replaces storage with the API's inventory.
func (s *Store) LoadStorageItems(ctx context.Context) error {
	if s.api == nil {
		s.SetError(ErrNoAPI.Error())
		return ErrNoAPI
	}

	res, err := s.api.FetchStorageItems(ctx)
	if f := failure("load storage items", res, err); f != nil {
		s.SetError(f.Message)
		return f
	}

	s.mu.Lock()
	s.storage = make(map[string]StorageItem, len(res.Data))
	for _, item := range res.Data {
		if item.ID == "" {
			continue
		}
		s.storage[item.ID] = item.clone()
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// LoadRoomData replaces the objects with the API's object list and merges
// in the assistant snapshot. Objects for rooms the store does not know are
// skipped.
func (s *Store) LoadRoomData(ctx context.Context) error {
	if s.api == nil {
		s.SetError(ErrNoAPI.Error())
		return ErrNoAPI
	}

	objs, err := s.api.FetchObjects(ctx)
	if f := failure("load objects", objs, err); f != nil {
		s.SetError(f.Message)
		return f
	}
	asst, err := s.api.FetchAssistant(ctx)
	if f := failure("load assistant", asst, err); f != nil {
		s.SetError(f.Message)
		return f
	}

	s.mu.Lock()
	s.objects = make(map[string]SpatialObject, len(objs.Data))
	for id, room := range s.rooms {
		room = room.clone()
		room.Objects = []string{}
		s.rooms[id] = room
	}
	var skipped int
	for _, o := range objs.Data {
		if err := s.putObjectLocked(o); err != nil {
			skipped++
		}
	}
	s.assistant = s.assistant.apply(patchFromAssistant(asst.Data))
	s.mu.Unlock()
	s.notify()

	if skipped > 0 {
		return fmt.Errorf("loading room data: skipped %d objects", skipped)
	}
	return nil
}

// patchFromAssistant turns a full snapshot into a patch that only carries
// fields the snapshot actually set.
func patchFromAssistant(a Assistant) AssistantPatch {
	p := AssistantPatch{
		Position:          &a.Position,
		IsMoving:          &a.IsMoving,
		SittingOnObjectID: &a.SittingOnObjectID,
		HoldingObjectID:   &a.HoldingObjectID,
	}
	if a.Mood != "" {
		p.Mood = &a.Mood
	}
	if a.Status != "" {
		p.Status = &a.Status
	}
	if a.Facing != "" {
		p.Facing = &a.Facing
	}
	if a.EnergyLevel != 0 {
		p.EnergyLevel = &a.EnergyLevel
	}
	if a.CurrentAction != "" {
		p.CurrentAction = &a.CurrentAction
	}
	return p
}
