package store

import (
	"github.com/YourBr0ther/deskmate-sub001/internal/geometry"
)

// GetCurrentRoomObjects returns the current room's objects in room order.
func (s *Store) GetCurrentRoomObjects() []SpatialObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentRoomObjectsLocked(nil)
}

// GetInteractableObjects returns the current room's interactive objects.
func (s *Store) GetInteractableObjects() []SpatialObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentRoomObjectsLocked(func(o SpatialObject) bool { return o.Interactive })
}

// GetMovableObjects returns the current room's movable objects.
func (s *Store) GetMovableObjects() []SpatialObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentRoomObjectsLocked(func(o SpatialObject) bool { return o.Movable })
}

// GetObjectsNearPosition returns current room objects whose center lies
// within radius of pos. A non-positive radius uses the proximity threshold.
func (s *Store) GetObjectsNearPosition(pos geometry.Position, radius float64) []SpatialObject {
	if radius <= 0 {
		radius = geometry.ProximityThreshold
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentRoomObjectsLocked(func(o SpatialObject) bool {
		return geometry.Distance(geometry.Center(o.Position, o.Size), pos) <= radius
	})
}

// IsPositionOccupied reports whether a box at pos with the given size
// overlaps a solid object in the current room or the assistant's
// footprint. The object named by excludeID, usually the one being
// placed, is ignored.
func (s *Store) IsPositionOccupied(pos geometry.Position, size geometry.Size, excludeID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if geometry.CircleOverlapsBox(s.assistant.Position, geometry.AssistantRadius, pos, size) {
		return true
	}

	room, ok := s.rooms[s.currentRoomID]
	if !ok {
		return false
	}
	for _, id := range room.Objects {
		if id == excludeID {
			continue
		}
		o, ok := s.objects[id]
		if !ok || !o.Solid {
			continue
		}
		if geometry.Overlaps(pos, size, o.Position, o.Size) {
			return true
		}
	}
	return false
}

// GetObjectAt returns the most recently added current room object
// containing p.
func (s *Store) GetObjectAt(p geometry.Position) (SpatialObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[s.currentRoomID]
	if !ok {
		return SpatialObject{}, false
	}
	for i := len(room.Objects) - 1; i >= 0; i-- {
		o, ok := s.objects[room.Objects[i]]
		if ok && geometry.Contains(o.Position, o.Size, p) {
			return o.Clone(), true
		}
	}
	return SpatialObject{}, false
}

func (s *Store) currentRoomObjectsLocked(keep func(SpatialObject) bool) []SpatialObject {
	room, ok := s.rooms[s.currentRoomID]
	if !ok {
		return []SpatialObject{}
	}

	out := make([]SpatialObject, 0, len(room.Objects))
	for _, id := range room.Objects {
		o, ok := s.objects[id]
		if !ok {
			continue
		}
		if keep == nil || keep(o) {
			out = append(out, o.Clone())
		}
	}
	return out
}
