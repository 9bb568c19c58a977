package channel

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/YourBr0ther/deskmate-sub001/internal/geometry"
	"github.com/YourBr0ther/deskmate-sub001/internal/protocol"
	"github.com/YourBr0ther/deskmate-sub001/internal/store"
	"github.com/pixil98/go-testutil"
)

type recordingNotifier struct {
	events []protocol.EventType
	data   []string
	err    error
}

func (r *recordingNotifier) Notify(typ protocol.EventType, data json.RawMessage) error {
	r.events = append(r.events, typ)
	r.data = append(r.data, string(data))
	return r.err
}

func newBoundClient(t *testing.T) (*Client, *store.Store, *recordingNotifier) {
	t.Helper()
	s := store.New(nil)
	n := &recordingNotifier{}
	c := NewClient("ws://127.0.0.1:1/ws")
	Bind(c, s, n)
	return c, s, n
}

func TestHandlers_Chat(t *testing.T) {
	tests := map[string]struct {
		frames     []string
		expCount   int
		expContent string
		expRole    store.Role
		expStream  bool
	}{
		"stream without prior message": {
			frames: []string{
				`{"type":"chat_stream","data":{"content":"Hi","full_content":"Hi","done":false}}`,
			},
			expCount:   1,
			expContent: "Hi",
			expRole:    store.RoleAssistant,
			expStream:  true,
		},
		"stream appends then finalizes": {
			frames: []string{
				`{"type":"chat_stream","data":{"content":"Hel","done":false}}`,
				`{"type":"chat_stream","data":{"content":"lo","done":false}}`,
				`{"type":"chat_stream","data":{"content":"","done":true}}`,
			},
			expCount:   1,
			expContent: "Hello",
			expRole:    store.RoleAssistant,
		},
		"discrete message": {
			frames: []string{
				`{"type":"chat_message","data":{"role":"assistant","content":"Hello!","timestamp":"2024-05-01T10:00:00.5"}}`,
			},
			expCount:   1,
			expContent: "Hello!",
			expRole:    store.RoleAssistant,
		},
		"history replaces conversation": {
			frames: []string{
				`{"type":"chat_message","data":{"role":"assistant","content":"stale"}}`,
				`{"type":"chat_history","data":{"messages":[{"id":"1","role":"user","content":"q"},{"id":"2","role":"assistant","content":"a"}]}}`,
			},
			expCount:   2,
			expContent: "a",
			expRole:    store.RoleAssistant,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c, s, _ := newBoundClient(t)
			for _, f := range tt.frames {
				c.dispatch([]byte(f))
			}

			msgs := s.Messages()
			testutil.AssertEqual(t, "count", len(msgs), tt.expCount)
			last := msgs[len(msgs)-1]
			testutil.AssertEqual(t, "content", last.Content, tt.expContent)
			testutil.AssertEqual(t, "role", last.Role, tt.expRole)
			testutil.AssertEqual(t, "streaming", last.IsStreaming, tt.expStream)
		})
	}
}

func TestHandlers_AssistantStateMergesFields(t *testing.T) {
	c, s, _ := newBoundClient(t)
	s.SetAssistantStatus(store.AssistantPatch{
		Facing:            store.Ref(store.FacingLeft),
		SittingOnObjectID: store.Ref(store.Ref("chair")),
		HoldingObjectID:   store.Ref(store.Ref("mug")),
	})

	c.dispatch([]byte(`{"type":"assistant_state","data":{
		"status":{"mood":"happy","energy_level":0.4},
		"location":{"position":{"x":2,"y":3,"unit":"grid"},"sitting_on_object_id":null},
		"movement":{"is_moving":true}
	}}`))

	a := s.Assistant()
	testutil.AssertEqual(t, "mood", a.Mood, store.MoodHappy)
	testutil.AssertEqual(t, "energy", a.EnergyLevel, 0.4)
	testutil.AssertEqual(t, "position", a.Position, geometry.Position{X: 60, Y: 90})
	testutil.AssertEqual(t, "moving", a.IsMoving, true)
	testutil.AssertEqual(t, "facing kept", a.Facing, store.FacingLeft)
	testutil.AssertEqual(t, "sitting cleared", a.SittingOnObjectID == nil, true)
	if a.HoldingObjectID == nil || *a.HoldingObjectID != "mug" {
		t.Fatalf("expected holding mug, got %v", a.HoldingObjectID)
	}
}

func TestHandlers_Objects(t *testing.T) {
	c, s, _ := newBoundClient(t)

	c.dispatch([]byte(`{"type":"object_created","data":{"object":{
		"id":"lamp","type":"item","name":"Lamp","position":{"x":10,"y":20},
		"size":{"width":1,"height":2,"unit":"grid"},"solid":true}}}`))

	lamp, ok := s.Object("lamp")
	testutil.AssertEqual(t, "created", ok, true)
	testutil.AssertEqual(t, "room", lamp.RoomID, store.DefaultRoomID)
	testutil.AssertEqual(t, "size", lamp.Size, geometry.Size{Width: 30, Height: 60})

	c.dispatch([]byte(`{"type":"object_moved","data":{"object_id":"lamp","position":{"x":100,"y":120}}}`))
	lamp, _ = s.Object("lamp")
	testutil.AssertEqual(t, "moved", lamp.Position, geometry.Position{X: 100, Y: 120})

	c.dispatch([]byte(`{"type":"object_state_changed","data":{"object_id":"lamp","states":{"power":"on"}}}`))
	lamp, _ = s.Object("lamp")
	testutil.AssertEqual(t, "state", lamp.States["power"], any("on"))

	c.dispatch([]byte(`{"type":"object_moved","data":{"object_id":"ghost","position":{"x":1,"y":1}}}`))
	_, ok = s.Object("ghost")
	testutil.AssertEqual(t, "ghost ignored", ok, false)

	c.dispatch([]byte(`{"type":"object_deleted","data":{"object_id":"lamp"}}`))
	_, ok = s.Object("lamp")
	testutil.AssertEqual(t, "deleted", ok, false)
	testutil.AssertEqual(t, "room list", len(s.GetCurrentRoomObjects()), 0)
}

func TestHandlers_RoomUpdated(t *testing.T) {
	c, s, _ := newBoundClient(t)

	c.dispatch([]byte(`{"type":"room_updated","data":{"room":{
		"id":"office","name":"Office","dimensions":{"width":1920,"height":480},
		"objects":[{"id":"desk","type":"furniture","name":"Desk","position":{"x":0,"y":0},"size":{"width":60,"height":30}}]}}}`))

	room, ok := s.Room("office")
	testutil.AssertEqual(t, "room", ok, true)
	testutil.AssertEqual(t, "name", room.Name, "Office")
	testutil.AssertEqual(t, "members", len(room.Objects), 1)

	desk, _ := s.Object("desk")
	testutil.AssertEqual(t, "desk room", desk.RoomID, "office")
}

func TestHandlers_Storage(t *testing.T) {
	c, s, _ := newBoundClient(t)

	c.dispatch([]byte(`{"type":"storage_item_added","data":{"item":{"id":"box","name":"Box","type":"item","size":{"width":30,"height":30}}}}`))
	_, ok := s.StorageItem("box")
	testutil.AssertEqual(t, "added", ok, true)

	c.dispatch([]byte(`{"type":"storage_item_placed","data":{"item_id":"box","object":{"id":"box","type":"item","name":"Box","position":{"x":5,"y":5},"size":{"width":30,"height":30}}}}`))
	_, ok = s.StorageItem("box")
	testutil.AssertEqual(t, "left storage", ok, false)
	_, ok = s.Object("box")
	testutil.AssertEqual(t, "placed", ok, true)

	c.dispatch([]byte(`{"type":"storage_item_added","data":{"item":{"id":"cup","name":"Cup","type":"item"}}}`))
	c.dispatch([]byte(`{"type":"storage_item_removed","data":{"item_id":"cup"}}`))
	testutil.AssertEqual(t, "removed", len(s.StorageItems()), 0)
}

func TestHandlers_SessionAndModel(t *testing.T) {
	c, s, _ := newBoundClient(t)

	c.dispatch([]byte(`{"type":"connection_established","data":{"session_id":"abc","model":"llama3"}}`))
	testutil.AssertEqual(t, "session", s.Connection().SessionID, "abc")
	testutil.AssertEqual(t, "model", s.Chat().Model, "llama3")

	c.dispatch([]byte(`{"type":"model_changed","data":{"model":"mistral"}}`))
	testutil.AssertEqual(t, "changed", s.Chat().Model, "mistral")
}

func TestHandlers_BackendError(t *testing.T) {
	c, s, _ := newBoundClient(t)
	s.SetTyping(true)

	c.dispatch([]byte(`{"type":"error","data":{"message":"model unavailable"}}`))

	testutil.AssertEqual(t, "ui error", s.UI().Error, "model unavailable")
	testutil.AssertEqual(t, "typing", s.Chat().IsTyping, false)
	msgs := s.Messages()
	testutil.AssertEqual(t, "messages", len(msgs), 1)
	testutil.AssertEqual(t, "role", msgs[0].Role, store.RoleSystem)
	testutil.AssertEqual(t, "content", msgs[0].Content, "Error: model unavailable")
}

func TestHandlers_PositionUpdate(t *testing.T) {
	c, s, _ := newBoundClient(t)
	mood := s.Assistant().Mood

	c.dispatch([]byte(`{"type":"position_update","data":{"position":{"x":5000,"y":100},"facing":"up"}}`))

	a := s.Assistant()
	testutil.AssertEqual(t, "clamped", a.Position, geometry.Position{X: geometry.RoomWidth, Y: 100})
	testutil.AssertEqual(t, "facing", a.Facing, store.FacingUp)
	testutil.AssertEqual(t, "mood kept", a.Mood, mood)
}

func TestHandlers_RoomTransition(t *testing.T) {
	tests := map[string]struct {
		frame       string
		notifyErr   error
		expRoom     string
		expNotified int
	}{
		"known room": {
			frame:       `{"type":"room_transition","data":{"from_room":"main-room","to_room":"office","position":{"x":10,"y":10}}}`,
			expRoom:     "office",
			expNotified: 1,
		},
		"unknown room is still rebroadcast": {
			frame:       `{"type":"room_transition","data":{"to_room":"attic"}}`,
			expRoom:     store.DefaultRoomID,
			expNotified: 1,
		},
		"notifier failure does not block store update": {
			frame:       `{"type":"room_transition","data":{"to_room":"office"}}`,
			notifyErr:   errors.New("bus down"),
			expRoom:     "office",
			expNotified: 1,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c, s, n := newBoundClient(t)
			n.err = tt.notifyErr
			if err := s.AddRoom(store.Room{ID: "office", Name: "Office"}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			c.dispatch([]byte(tt.frame))

			testutil.AssertEqual(t, "room", s.CurrentRoomID(), tt.expRoom)
			testutil.AssertEqual(t, "notified", len(n.events), tt.expNotified)
			testutil.AssertEqual(t, "event", n.events[0], protocol.RoomTransition)

			var env protocol.Envelope
			if err := json.Unmarshal([]byte(tt.frame), &env); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "payload unchanged", n.data[0], string(env.Data))
		})
	}
}
