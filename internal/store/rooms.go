package store

import (
	"fmt"
	"sort"
)

// SetCurrentRoom switches the active room.
func (s *Store) SetCurrentRoom(id string) error {
	s.mu.Lock()
	if _, ok := s.rooms[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("selecting room %q: %w", id, ErrRoomNotFound)
	}
	s.currentRoomID = id
	s.mu.Unlock()
	s.notify()
	return nil
}

// AddRoom inserts or replaces a room. Object IDs listed by room that are not
// in the object map are dropped so the room never references a missing
// object. Replacing a room keeps the memberships the store already knows.
func (s *Store) AddRoom(room Room) error {
	if room.ID == "" {
		return fmt.Errorf("adding room: id is required")
	}

	s.mu.Lock()
	room = room.clone()
	known := make([]string, 0, len(room.Objects))
	seen := make(map[string]bool, len(room.Objects))
	for _, id := range room.Objects {
		if o, ok := s.objects[id]; ok && o.RoomID == room.ID && !seen[id] {
			known = append(known, id)
			seen[id] = true
		}
	}
	if prev, ok := s.rooms[room.ID]; ok {
		for _, id := range prev.Objects {
			if !seen[id] {
				known = append(known, id)
				seen[id] = true
			}
		}
	}
	room.Objects = known
	s.rooms[room.ID] = room
	if s.currentRoomID == "" {
		s.currentRoomID = room.ID
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// RemoveRoom deletes a room and the objects it owns. If it was the current
// room, another remaining room becomes current, or none if it was the last.
func (s *Store) RemoveRoom(id string) {
	s.mu.Lock()
	room, ok := s.rooms[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	for _, objID := range room.Objects {
		delete(s.objects, objID)
		if s.ui.SelectedObjectID == objID {
			s.ui.SelectedObjectID = ""
		}
	}
	delete(s.rooms, id)

	if s.currentRoomID == id {
		s.currentRoomID = ""
		ids := make([]string, 0, len(s.rooms))
		for rid := range s.rooms {
			ids = append(ids, rid)
		}
		if len(ids) > 0 {
			sort.Strings(ids)
			s.currentRoomID = ids[0]
		}
	}
	s.mu.Unlock()
	s.notify()
}

// CurrentRoomID returns the active room ID, or "" when there is none.
func (s *Store) CurrentRoomID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentRoomID
}

// Room returns a copy of the room with the given ID.
func (s *Store) Room(id string) (Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[id]
	if !ok {
		return Room{}, false
	}
	return r.clone(), true
}

// Rooms returns a copy of every room keyed by ID.
func (s *Store) Rooms() map[string]Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Room, len(s.rooms))
	for id, r := range s.rooms {
		out[id] = r.clone()
	}
	return out
}
