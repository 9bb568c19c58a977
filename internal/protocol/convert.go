package protocol

import (
	"github.com/YourBr0ther/deskmate-sub001/internal/store"
)

// ToStore converts the wire object into pixel space.
func (o Object) ToStore() store.SpatialObject {
	return store.SpatialObject{
		ID:          o.ID,
		Type:        store.ObjectType(o.Type),
		Name:        o.Name,
		Position:    o.Position.Pixels(),
		Size:        o.Size.Pixels(),
		Solid:       o.Solid,
		Interactive: o.Interactive,
		Movable:     o.Movable,
		States:      o.States,
		RoomID:      o.RoomID,
		Properties:  o.Properties,
	}
}

// ObjectFromStore builds the wire form of a store object.
func ObjectFromStore(o store.SpatialObject) Object {
	return Object{
		ID:          o.ID,
		Type:        string(o.Type),
		Name:        o.Name,
		Position:    FromPixels(o.Position),
		Size:        Size{Width: o.Size.Width, Height: o.Size.Height},
		Solid:       o.Solid,
		Interactive: o.Interactive,
		Movable:     o.Movable,
		States:      o.States,
		RoomID:      o.RoomID,
		Properties:  o.Properties,
	}
}

func (s StorageItem) ToStore() store.StorageItem {
	item := store.StorageItem{
		ID:         s.ID,
		Name:       s.Name,
		Type:       store.ObjectType(s.Type),
		Size:       s.Size.Pixels(),
		Properties: s.Properties,
	}
	if ts, ok := ParseTimestamp(s.CreatedAt); ok {
		item.CreatedAt = ts
	}
	return item
}

// ToStore converts a chat message. A missing role means the assistant.
func (m ChatMessageData) ToStore() store.ChatMessage {
	role := store.Role(m.Role)
	if role == "" {
		role = store.RoleAssistant
	}
	msg := store.ChatMessage{
		ID:      m.ID,
		Role:    role,
		Content: m.Content,
		Model:   m.Model,
	}
	if ts, ok := ParseTimestamp(m.Timestamp); ok {
		msg.Timestamp = ts
	}
	return msg
}
