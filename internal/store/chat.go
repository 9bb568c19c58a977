package store

import (
	"slices"

	"github.com/google/uuid"
)

// AddMessage appends msg, filling in a missing ID and timestamp, and
// returns the stored message.
func (s *Store) AddMessage(msg ChatMessage) ChatMessage {
	s.mu.Lock()
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.clock.Now()
	}
	s.chat.Messages = append(s.chat.Messages, msg)
	s.mu.Unlock()
	s.notify()
	return msg
}

// ApplyStream folds one streaming chunk into the conversation. The most
// recent assistant message still streaming is updated in place; only if
// there is none is a new message started. fullContent, when set, replaces
// the content; otherwise content is appended. done finalizes the message.
func (s *Store) ApplyStream(content, fullContent, model string, done bool) ChatMessage {
	s.mu.Lock()
	idx := -1
	for i := len(s.chat.Messages) - 1; i >= 0; i-- {
		m := s.chat.Messages[i]
		if m.Role == RoleAssistant && m.IsStreaming {
			idx = i
			break
		}
	}

	if idx < 0 {
		text := fullContent
		if text == "" {
			text = content
		}
		s.chat.Messages = append(s.chat.Messages, ChatMessage{
			ID:          uuid.New().String(),
			Role:        RoleAssistant,
			Content:     text,
			Timestamp:   s.clock.Now(),
			Model:       model,
			IsStreaming: !done,
		})
		idx = len(s.chat.Messages) - 1
	} else {
		m := s.chat.Messages[idx]
		if fullContent != "" {
			m.Content = fullContent
		} else {
			m.Content += content
		}
		if model != "" {
			m.Model = model
		}
		m.IsStreaming = !done
		s.chat.Messages[idx] = m
	}
	s.chat.IsTyping = !done
	msg := s.chat.Messages[idx]
	s.mu.Unlock()
	s.notify()
	return msg
}

// SetChatHistory replaces the conversation.
func (s *Store) SetChatHistory(msgs []ChatMessage) {
	s.mu.Lock()
	s.chat.Messages = slices.Clone(msgs)
	if s.chat.Messages == nil {
		s.chat.Messages = []ChatMessage{}
	}
	s.mu.Unlock()
	s.notify()
}

// ClearMessages empties the conversation.
func (s *Store) ClearMessages() {
	s.SetChatHistory(nil)
}

// SetModel records the backend model in use.
func (s *Store) SetModel(model string) {
	s.mu.Lock()
	s.chat.Model = model
	s.mu.Unlock()
	s.notify()
}

// SetTyping marks whether the assistant is composing a reply.
func (s *Store) SetTyping(typing bool) {
	s.mu.Lock()
	s.chat.IsTyping = typing
	s.mu.Unlock()
	s.notify()
}

// Chat returns a copy of the conversation state.
func (s *Store) Chat() ChatState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.chat
	c.Messages = slices.Clone(s.chat.Messages)
	return c
}

// Messages returns a copy of the conversation.
func (s *Store) Messages() []ChatMessage {
	return s.Chat().Messages
}
