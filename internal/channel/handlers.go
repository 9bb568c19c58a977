package channel

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/YourBr0ther/deskmate-sub001/internal/protocol"
	"github.com/YourBr0ther/deskmate-sub001/internal/store"
)

// Notifier rebroadcasts events to observers that are not wired into the
// store.
type Notifier interface {
	Notify(typ protocol.EventType, data json.RawMessage) error
}

// Bind installs the built-in handlers that turn pushed events into store
// updates. Pushed state is already committed on the backend, so it goes
// through the store's immediate actions and never through the ledger.
// notifier may be nil.
func Bind(c *Client, s *store.Store, notifier Notifier) {
	h := &storeHandlers{store: s}

	Handle(c, protocol.ConnectionEstablished, h.connectionEstablished)
	Handle(c, protocol.ChatMessage, h.chatMessage)
	Handle(c, protocol.ChatStream, h.chatStream)
	Handle(c, protocol.ChatHistory, h.chatHistory)
	Handle(c, protocol.AssistantState, h.assistantState)
	Handle(c, protocol.ObjectCreated, h.objectCreated)
	Handle(c, protocol.ObjectMoved, h.objectMoved)
	Handle(c, protocol.ObjectStateChanged, h.objectStateChanged)
	Handle(c, protocol.ObjectDeleted, h.objectDeleted)
	Handle(c, protocol.RoomUpdated, h.roomUpdated)
	Handle(c, protocol.StorageItemAdded, h.storageItemAdded)
	Handle(c, protocol.StorageItemRemoved, h.storageItemRemoved)
	Handle(c, protocol.StorageItemPlaced, h.storageItemPlaced)
	Handle(c, protocol.ModelChanged, h.modelChanged)
	Handle(c, protocol.Error, h.backendError)
	Handle(c, protocol.PositionUpdate, h.positionUpdate)

	c.handlersMu.Lock()
	c.builtin[protocol.RoomTransition] = func(data json.RawMessage) error {
		t, err := protocol.Payload[protocol.RoomTransitionData](data)
		if err != nil {
			return err
		}
		h.roomTransition(t)
		if notifier != nil {
			if err := notifier.Notify(protocol.RoomTransition, data); err != nil {
				return fmt.Errorf("rebroadcasting room transition: %w", err)
			}
		}
		return nil
	}
	c.handlersMu.Unlock()

	c.OnStatus(func(state State, err error) {
		s.SetConnectionStatus(store.ConnStatus(state))
		if err != nil {
			s.SetConnectionError(err.Error())
		}
	})
}

type storeHandlers struct {
	store *store.Store
}

func (h *storeHandlers) connectionEstablished(d protocol.ConnectionEstablishedData) error {
	h.store.SetSessionID(d.SessionID)
	if d.Model != "" {
		h.store.SetModel(d.Model)
	}
	slog.Info("session established", "session_id", d.SessionID, "model", d.Model)
	return nil
}

func (h *storeHandlers) chatMessage(d protocol.ChatMessageData) error {
	h.store.AddMessage(d.ToStore())
	h.store.SetTyping(false)
	return nil
}

func (h *storeHandlers) chatStream(d protocol.ChatStreamData) error {
	h.store.ApplyStream(d.Content, d.FullContent, d.Model, d.Done)
	return nil
}

func (h *storeHandlers) chatHistory(d protocol.ChatHistoryData) error {
	msgs := make([]store.ChatMessage, 0, len(d.Messages))
	for _, m := range d.Messages {
		msgs = append(msgs, m.ToStore())
	}
	h.store.SetChatHistory(msgs)
	return nil
}

// assistantState merges each present field of the nested snapshot into
// the assistant. Absent groups and fields are left alone.
func (h *storeHandlers) assistantState(d protocol.AssistantStateData) error {
	var p store.AssistantPatch

	if loc := d.Location; loc != nil {
		if loc.Position != nil {
			pos := loc.Position.Pixels()
			p.Position = &pos
		}
		if loc.Facing != nil {
			f := store.Facing(*loc.Facing)
			p.Facing = &f
		}
		if loc.SittingOnObjectID.Set {
			p.SittingOnObjectID = &loc.SittingOnObjectID.Value
		}
	}

	if st := d.Status; st != nil {
		if st.Mood != nil {
			m := store.Mood(*st.Mood)
			p.Mood = &m
		}
		if st.State != nil {
			s := store.Status(*st.State)
			p.Status = &s
		}
		p.EnergyLevel = st.EnergyLevel
		p.CurrentAction = st.CurrentAction
	}

	if in := d.Interaction; in != nil {
		if in.HoldingObjectID.Set {
			p.HoldingObjectID = &in.HoldingObjectID.Value
		}
		if in.CurrentAction != nil {
			p.CurrentAction = in.CurrentAction
		}
	}

	if mv := d.Movement; mv != nil {
		p.IsMoving = mv.IsMoving
	}

	h.store.SetAssistantStatus(p)
	return nil
}

func (h *storeHandlers) objectCreated(d protocol.ObjectCreatedData) error {
	if err := h.store.AddObject(d.Object.ToStore()); err != nil {
		return fmt.Errorf("adding pushed object: %w", err)
	}
	return nil
}

func (h *storeHandlers) objectMoved(d protocol.ObjectMovedData) error {
	h.store.SetObjectPosition(d.ObjectID, d.Position.Pixels())
	return nil
}

func (h *storeHandlers) objectStateChanged(d protocol.ObjectStateChangedData) error {
	h.store.SetObjectStates(d.ObjectID, d.States)
	return nil
}

func (h *storeHandlers) objectDeleted(d protocol.ObjectDeletedData) error {
	h.store.RemoveObject(d.ObjectID)
	return nil
}

func (h *storeHandlers) roomUpdated(d protocol.RoomUpdatedData) error {
	room := store.Room{
		ID:         d.Room.ID,
		Name:       d.Room.Name,
		Dimensions: d.Room.Dimensions.Pixels(),
	}
	if err := h.store.AddRoom(room); err != nil {
		return fmt.Errorf("updating room: %w", err)
	}

	objs := make([]store.SpatialObject, 0, len(d.Room.Objects))
	for _, o := range d.Room.Objects {
		obj := o.ToStore()
		obj.RoomID = room.ID
		objs = append(objs, obj)
	}
	if len(objs) == 0 {
		return nil
	}
	return h.store.AddObjects(objs)
}

func (h *storeHandlers) storageItemAdded(d protocol.StorageItemAddedData) error {
	return h.store.AddStorageItem(d.Item.ToStore())
}

func (h *storeHandlers) storageItemRemoved(d protocol.StorageItemRemovedData) error {
	h.store.RemoveStorageItem(d.ItemID)
	return nil
}

func (h *storeHandlers) storageItemPlaced(d protocol.StorageItemPlacedData) error {
	h.store.RemoveStorageItem(d.ItemID)
	if d.Object == nil {
		return nil
	}
	if err := h.store.AddObject(d.Object.ToStore()); err != nil {
		return fmt.Errorf("adding placed object: %w", err)
	}
	return nil
}

func (h *storeHandlers) modelChanged(d protocol.ModelChangedData) error {
	h.store.SetModel(d.Model)
	return nil
}

// backendError surfaces the failure both as the UI error and as a system
// message in the conversation.
func (h *storeHandlers) backendError(d protocol.ErrorData) error {
	msg := d.Message
	if msg == "" {
		msg = "unknown backend error"
	}
	h.store.SetError(msg)
	h.store.SetTyping(false)
	h.store.AddMessage(store.ChatMessage{
		Role:    store.RoleSystem,
		Content: "Error: " + msg,
	})
	return nil
}

func (h *storeHandlers) positionUpdate(d protocol.PositionUpdateData) error {
	pos := d.Position.Pixels()
	p := store.AssistantPatch{
		Position: &pos,
		IsMoving: d.IsMoving,
	}
	if d.Facing != nil {
		f := store.Facing(*d.Facing)
		p.Facing = &f
	}
	h.store.SetAssistantStatus(p)
	return nil
}

func (h *storeHandlers) roomTransition(d protocol.RoomTransitionData) {
	if d.ToRoom != "" {
		if _, ok := h.store.Room(d.ToRoom); ok {
			if err := h.store.SetCurrentRoom(d.ToRoom); err != nil {
				slog.Warn("switching room", "room", d.ToRoom, "error", err)
			}
		} else {
			slog.Debug("transition to unknown room", "room", d.ToRoom)
		}
	}
	if d.Position != nil {
		h.store.SetAssistantPosition(d.Position.Pixels())
	}
}
