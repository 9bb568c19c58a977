package store

import (
	"github.com/YourBr0ther/deskmate-sub001/internal/geometry"
)

// Assistant returns a copy of the assistant.
func (s *Store) Assistant() Assistant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assistant.clone()
}

// SetAssistantPosition moves the assistant without going through the
// ledger. The position is clamped to the room bounds.
func (s *Store) SetAssistantPosition(pos geometry.Position) {
	s.SetAssistantStatus(AssistantPatch{Position: &pos})
}

// SetAssistantStatus merges only the fields set in patch.
func (s *Store) SetAssistantStatus(patch AssistantPatch) {
	s.mu.Lock()
	s.assistant = s.assistant.apply(patch)
	s.mu.Unlock()
	s.notify()
}
