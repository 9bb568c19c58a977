package store

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/YourBr0ther/deskmate-sub001/internal/geometry"
)

// AddObject inserts or overwrites obj and puts its ID in the owning room's
// object list exactly once. An empty RoomID means the current room.
func (s *Store) AddObject(obj SpatialObject) error {
	s.mu.Lock()
	err := s.putObjectLocked(obj)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// AddObjects inserts several objects under one lock, as a bulk load does.
// Objects whose room does not exist are skipped and reported.
func (s *Store) AddObjects(objs []SpatialObject) error {
	var errs []error
	s.mu.Lock()
	for _, obj := range objs {
		if err := s.putObjectLocked(obj); err != nil {
			errs = append(errs, err)
		}
	}
	s.mu.Unlock()
	s.notify()

	if len(errs) > 0 {
		return fmt.Errorf("adding %d of %d objects failed: %w", len(errs), len(objs), errs[0])
	}
	return nil
}

// RemoveObject deletes the object and its room membership. Removing an
// absent ID is a no-op.
func (s *Store) RemoveObject(id string) {
	s.mu.Lock()
	_, ok := s.removeObjectLocked(id)
	s.mu.Unlock()
	if ok {
		s.notify()
	}
}

// SetObjectPosition moves an object without going through the ledger.
func (s *Store) SetObjectPosition(id string, pos geometry.Position) {
	s.updateObject(id, func(o *SpatialObject) {
		o.Position = pos
	})
}

// SetObjectStates merges partial into the object's states.
func (s *Store) SetObjectStates(id string, partial map[string]any) {
	s.updateObject(id, func(o *SpatialObject) {
		if o.States == nil {
			o.States = make(map[string]any, len(partial))
		}
		maps.Copy(o.States, partial)
	})
}

// Object returns a copy of the object with the given ID.
func (s *Store) Object(id string) (SpatialObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.objects[id]
	if !ok {
		return SpatialObject{}, false
	}
	return o.Clone(), true
}

// Objects returns a copy of every object keyed by ID.
func (s *Store) Objects() map[string]SpatialObject {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]SpatialObject, len(s.objects))
	for id, o := range s.objects {
		out[id] = o.Clone()
	}
	return out
}

func (s *Store) updateObject(id string, fn func(*SpatialObject)) {
	s.mu.Lock()
	o, ok := s.objects[id]
	if !ok {
		s.mu.Unlock()
		slog.Debug("update for unknown object ignored", "id", id)
		return
	}
	o = o.Clone()
	fn(&o)
	s.objects[id] = o
	s.mu.Unlock()
	s.notify()
}

func (s *Store) putObjectLocked(obj SpatialObject) error {
	if obj.ID == "" {
		return fmt.Errorf("adding object: id is required")
	}
	if obj.RoomID == "" {
		obj.RoomID = s.currentRoomID
	}
	room, ok := s.rooms[obj.RoomID]
	if !ok {
		return fmt.Errorf("adding object %q to room %q: %w", obj.ID, obj.RoomID, ErrRoomNotFound)
	}

	if prev, ok := s.objects[obj.ID]; ok && prev.RoomID != obj.RoomID {
		s.unlinkLocked(prev.RoomID, obj.ID)
		room = s.rooms[obj.RoomID]
	}

	s.objects[obj.ID] = obj.Clone()
	if !slices.Contains(room.Objects, obj.ID) {
		room = room.clone()
		room.Objects = append(room.Objects, obj.ID)
		s.rooms[room.ID] = room
	}
	return nil
}

func (s *Store) removeObjectLocked(id string) (SpatialObject, bool) {
	o, ok := s.objects[id]
	if !ok {
		return SpatialObject{}, false
	}
	delete(s.objects, id)
	s.unlinkLocked(o.RoomID, id)
	if s.ui.SelectedObjectID == id {
		s.ui.SelectedObjectID = ""
	}
	return o, true
}

func (s *Store) unlinkLocked(roomID, objectID string) {
	room, ok := s.rooms[roomID]
	if !ok {
		return
	}
	room = room.clone()
	room.Objects = slices.DeleteFunc(room.Objects, func(id string) bool { return id == objectID })
	s.rooms[roomID] = room
}
