package store

import (
	"fmt"
	"maps"
	"time"

	"github.com/YourBr0ther/deskmate-sub001/internal/geometry"
)

// ObjectType is the category of a SpatialObject.
type ObjectType string

const (
	ObjectTypeFurniture   ObjectType = "furniture"
	ObjectTypeItem        ObjectType = "item"
	ObjectTypeStorageItem ObjectType = "storage_item"
)

// Valid reports whether t is one of the known object types.
func (t ObjectType) Valid() bool {
	switch t {
	case ObjectTypeFurniture, ObjectTypeItem, ObjectTypeStorageItem:
		return true
	}
	return false
}

// SpatialObject is an item placed in a room.
type SpatialObject struct {
	ID          string            `json:"id"`
	Type        ObjectType        `json:"type"`
	Name        string            `json:"name"`
	Position    geometry.Position `json:"position"`
	Size        geometry.Size     `json:"size"`
	Solid       bool              `json:"solid"`
	Interactive bool              `json:"interactive"`
	Movable     bool              `json:"movable"`
	States      map[string]any    `json:"states,omitempty"`
	RoomID      string            `json:"room_id"`
	Properties  map[string]any    `json:"properties,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (o *SpatialObject) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("object id is required")
	}
	if !o.Type.Valid() {
		return fmt.Errorf("object %q: invalid type %q", o.ID, o.Type)
	}
	return nil
}

// Clone returns a copy that shares no maps with o.
func (o SpatialObject) Clone() SpatialObject {
	o.States = maps.Clone(o.States)
	o.Properties = maps.Clone(o.Properties)
	return o
}

type Mood string

const (
	MoodNeutral Mood = "neutral"
	MoodHappy   Mood = "happy"
	MoodCurious Mood = "curious"
	MoodTired   Mood = "tired"
	MoodFocused Mood = "focused"
)

type Status string

const (
	StatusIdle        Status = "idle"
	StatusActive      Status = "active"
	StatusMoving      Status = "moving"
	StatusInteracting Status = "interacting"
)

type Facing string

const (
	FacingUp    Facing = "up"
	FacingDown  Facing = "down"
	FacingLeft  Facing = "left"
	FacingRight Facing = "right"
)

// Assistant is the singleton companion entity.
type Assistant struct {
	Position          geometry.Position `json:"position"`
	IsMoving          bool              `json:"isMoving"`
	Mood              Mood              `json:"mood"`
	Status            Status            `json:"status"`
	Facing            Facing            `json:"facing"`
	SittingOnObjectID *string           `json:"sitting_on_object_id"`
	HoldingObjectID   *string           `json:"holding_object_id"`
	EnergyLevel       float64           `json:"energy_level"`
	CurrentAction     string            `json:"current_action"`
}

// AssistantPatch carries the fields to merge into the Assistant. Nil
// fields are left untouched. The object-reference fields use a double
// pointer so a patch can clear them: a non-nil outer pointer to a nil
// inner pointer sets the reference to null.
type AssistantPatch struct {
	Position          *geometry.Position
	IsMoving          *bool
	Mood              *Mood
	Status            *Status
	Facing            *Facing
	SittingOnObjectID **string
	HoldingObjectID   **string
	EnergyLevel       *float64
	CurrentAction     *string
}

func (a Assistant) apply(p AssistantPatch) Assistant {
	if p.Position != nil {
		a.Position = geometry.ClampToRoom(*p.Position)
	}
	if p.IsMoving != nil {
		a.IsMoving = *p.IsMoving
	}
	if p.Mood != nil {
		a.Mood = *p.Mood
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Facing != nil {
		a.Facing = *p.Facing
	}
	if p.SittingOnObjectID != nil {
		a.SittingOnObjectID = copyRef(*p.SittingOnObjectID)
	}
	if p.HoldingObjectID != nil {
		a.HoldingObjectID = copyRef(*p.HoldingObjectID)
	}
	if p.EnergyLevel != nil {
		a.EnergyLevel = min(1, max(0, *p.EnergyLevel))
	}
	if p.CurrentAction != nil {
		a.CurrentAction = *p.CurrentAction
	}
	return a
}

func (a Assistant) clone() Assistant {
	a.SittingOnObjectID = copyRef(a.SittingOnObjectID)
	a.HoldingObjectID = copyRef(a.HoldingObjectID)
	return a
}

func copyRef(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Ref returns a pointer to v, for building patches.
func Ref[T any](v T) *T {
	return &v
}

// Room is a named spatial container. Objects lists object IDs in
// insertion order.
type Room struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Dimensions geometry.Size `json:"dimensions"`
	Objects    []string      `json:"objects"`
}

func (r Room) clone() Room {
	r.Objects = append([]string(nil), r.Objects...)
	return r
}

// StorageItem is an object withdrawn from every room.
type StorageItem struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Type       ObjectType     `json:"type"`
	Size       geometry.Size  `json:"size"`
	Properties map[string]any `json:"properties,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Validate satisfies storage.ValidatingSpec.
func (s *StorageItem) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("storage item id is required")
	}
	return nil
}

func (s StorageItem) clone() StorageItem {
	s.Properties = maps.Clone(s.Properties)
	return s
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

type ChatMessage struct {
	ID          string    `json:"id"`
	Role        Role      `json:"role"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	Model       string    `json:"model,omitempty"`
	IsStreaming bool      `json:"isStreaming,omitempty"`
}

// ConnStatus is the lifecycle state of the channel connection.
type ConnStatus string

const (
	ConnDisconnected ConnStatus = "disconnected"
	ConnConnecting   ConnStatus = "connecting"
	ConnOpen         ConnStatus = "open"
	ConnClosed       ConnStatus = "closed"
)

// ConnectionState is the store-visible view of the channel connection.
type ConnectionState struct {
	Connected bool       `json:"connected"`
	Status    ConnStatus `json:"status"`
	LastError string     `json:"lastError,omitempty"`
	SessionID string     `json:"sessionId,omitempty"`
}

type Viewport struct {
	Offset geometry.Position `json:"offset"`
	Zoom   float64           `json:"zoom"`
}

// UIState is selection and viewport state plus the last error message.
type UIState struct {
	SelectedObjectID string   `json:"selectedObjectId,omitempty"`
	Viewport         Viewport `json:"viewport"`
	Error            string   `json:"error,omitempty"`
}

// ChatState is the conversation view of the store.
type ChatState struct {
	Messages []ChatMessage `json:"messages"`
	Model    string        `json:"model,omitempty"`
	IsTyping bool          `json:"isTyping"`
}
