package protocol

import (
	"time"
)

// Events pushed by the backend.
const (
	ConnectionEstablished EventType = "connection_established"
	ChatMessage           EventType = "chat_message"
	ChatStream            EventType = "chat_stream"
	ChatHistory           EventType = "chat_history"
	AssistantState        EventType = "assistant_state"
	ObjectCreated         EventType = "object_created"
	ObjectMoved           EventType = "object_moved"
	ObjectStateChanged    EventType = "object_state_changed"
	ObjectDeleted         EventType = "object_deleted"
	RoomUpdated           EventType = "room_updated"
	StorageItemAdded      EventType = "storage_item_added"
	StorageItemRemoved    EventType = "storage_item_removed"
	StorageItemPlaced     EventType = "storage_item_placed"
	ModelChanged          EventType = "model_changed"
	Error                 EventType = "error"
	Pong                  EventType = "pong"
	PositionUpdate        EventType = "position_update"
	RoomTransition        EventType = "room_transition"
)

type ConnectionEstablishedData struct {
	SessionID string `json:"session_id"`
	Model     string `json:"model,omitempty"`
	Message   string `json:"message,omitempty"`
}

type ChatMessageData struct {
	ID        string `json:"id,omitempty"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
	Model     string `json:"model,omitempty"`
}

// ChatStreamData is one chunk of a streamed assistant reply. FullContent,
// when present, is the whole reply so far.
type ChatStreamData struct {
	Content     string `json:"content"`
	FullContent string `json:"full_content,omitempty"`
	Done        bool   `json:"done"`
	Model       string `json:"model,omitempty"`
}

type ChatHistoryData struct {
	Messages []ChatMessageData `json:"messages"`
}

// AssistantStateData is the nested assistant snapshot. Every group and
// every field is optional; only present ones are merged.
type AssistantStateData struct {
	Location    *AssistantLocation    `json:"location,omitempty"`
	Status      *AssistantStatus      `json:"status,omitempty"`
	Interaction *AssistantInteraction `json:"interaction,omitempty"`
	Movement    *AssistantMovement    `json:"movement,omitempty"`
}

type AssistantLocation struct {
	Position          *Position      `json:"position,omitempty"`
	Facing            *string        `json:"facing,omitempty"`
	SittingOnObjectID NullableString `json:"sitting_on_object_id"`
}

type AssistantStatus struct {
	Mood          *string  `json:"mood,omitempty"`
	State         *string  `json:"state,omitempty"`
	EnergyLevel   *float64 `json:"energy_level,omitempty"`
	CurrentAction *string  `json:"current_action,omitempty"`
}

type AssistantInteraction struct {
	HoldingObjectID NullableString `json:"holding_object_id"`
	CurrentAction   *string        `json:"current_action,omitempty"`
}

type AssistantMovement struct {
	IsMoving *bool     `json:"is_moving,omitempty"`
	Target   *Position `json:"target,omitempty"`
}

// Object is a spatial object as the backend describes it.
type Object struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Position    Position       `json:"position"`
	Size        Size           `json:"size"`
	Solid       bool           `json:"solid"`
	Interactive bool           `json:"interactive"`
	Movable     bool           `json:"movable"`
	States      map[string]any `json:"states,omitempty"`
	RoomID      string         `json:"room_id,omitempty"`
	Properties  map[string]any `json:"properties,omitempty"`
}

type ObjectCreatedData struct {
	Object Object `json:"object"`
}

type ObjectMovedData struct {
	ObjectID string   `json:"object_id"`
	Position Position `json:"position"`
}

type ObjectStateChangedData struct {
	ObjectID string         `json:"object_id"`
	States   map[string]any `json:"states"`
}

type ObjectDeletedData struct {
	ObjectID string `json:"object_id"`
}

type Room struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Dimensions Size     `json:"dimensions"`
	Objects    []Object `json:"objects,omitempty"`
}

type RoomUpdatedData struct {
	Room Room `json:"room"`
}

type StorageItem struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Size       Size           `json:"size"`
	Properties map[string]any `json:"properties,omitempty"`
	CreatedAt  string         `json:"created_at,omitempty"`
}

type StorageItemAddedData struct {
	Item StorageItem `json:"item"`
}

type StorageItemRemovedData struct {
	ItemID string `json:"item_id"`
}

// StorageItemPlacedData announces that an item left storage. Object is
// the recreated room object when the backend includes it.
type StorageItemPlacedData struct {
	ItemID string  `json:"item_id"`
	Object *Object `json:"object,omitempty"`
}

type ModelChangedData struct {
	Model string `json:"model"`
}

type ErrorData struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type PongData struct {
	Timestamp int64 `json:"timestamp"`
}

type PositionUpdateData struct {
	Position Position `json:"position"`
	IsMoving *bool    `json:"is_moving,omitempty"`
	Facing   *string  `json:"facing,omitempty"`
}

type RoomTransitionData struct {
	FromRoom string    `json:"from_room,omitempty"`
	ToRoom   string    `json:"to_room"`
	Position *Position `json:"position,omitempty"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp accepts RFC 3339 and the zone-less ISO forms some
// backends emit. Zone-less values are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
