package session

import (
	"fmt"

	"github.com/YourBr0ther/deskmate-sub001/internal/channel"
	"github.com/YourBr0ther/deskmate-sub001/internal/geometry"
	"github.com/YourBr0ther/deskmate-sub001/internal/protocol"
	"github.com/YourBr0ther/deskmate-sub001/internal/store"
)

// SendChat records the user's message in the conversation and sends it
// with persona context. An empty persona uses the session default. The
// message is recorded even when the channel is down.
func (s *Session) SendChat(content, persona string) error {
	if content == "" {
		return fmt.Errorf("sending chat: message is empty")
	}
	if persona == "" {
		persona = s.persona
	}

	s.store.AddMessage(store.ChatMessage{Role: store.RoleUser, Content: content})
	if err := channel.Send(s.client, protocol.ChatSend{Message: content, Persona: persona}); err != nil {
		return err
	}
	s.store.SetTyping(true)
	return nil
}

func (s *Session) RequestChatHistory(limit int) error {
	return channel.Send(s.client, protocol.ChatHistoryRequest{Limit: limit})
}

// ClearChat asks the backend to clear conversations in scope. Clearing
// the current or every conversation also empties the local one.
func (s *Session) ClearChat(scope protocol.ClearScope, persona string) error {
	if !scope.Valid() {
		return fmt.Errorf("clearing chat: unknown scope %q", scope)
	}
	if scope == protocol.ClearPersona && persona == "" {
		persona = s.persona
	}
	if scope == protocol.ClearPersona && persona == "" {
		return fmt.Errorf("clearing chat: persona is required")
	}

	if err := channel.Send(s.client, protocol.ChatClear{Scope: scope, Persona: persona}); err != nil {
		return err
	}
	if scope != protocol.ClearPersona {
		s.store.ClearMessages()
	}
	return nil
}

// MoveAssistant asks the backend to walk the assistant to x,y. The
// target is clamped to the room.
func (s *Session) MoveAssistant(x, y float64) error {
	target := geometry.ClampToRoom(geometry.Position{X: x, Y: y})
	return channel.Send(s.client, protocol.AssistantMoveCommand{Target: protocol.FromPixels(target)})
}

func (s *Session) MoveObject(id string, pos geometry.Position) error {
	return channel.Send(s.client, protocol.ObjectMoveCommand{ObjectID: id, Position: protocol.FromPixels(pos)})
}

func (s *Session) InteractWithObject(id, action string) error {
	return channel.Send(s.client, protocol.ObjectInteractCommand{ObjectID: id, Action: action})
}

func (s *Session) PickUpObject(id string) error {
	return channel.Send(s.client, protocol.ObjectPickUpCommand{ObjectID: id})
}

// PutDownObject drops the held object at pos, or wherever the backend
// decides when pos is nil.
func (s *Session) PutDownObject(pos *geometry.Position) error {
	cmd := protocol.ObjectPutDownCommand{}
	if pos != nil {
		p := protocol.FromPixels(*pos)
		cmd.Position = &p
	}
	return channel.Send(s.client, cmd)
}

func (s *Session) ChangeModel(model string) error {
	if model == "" {
		return fmt.Errorf("changing model: model is required")
	}
	return channel.Send(s.client, protocol.ModelChangeCommand{Model: model})
}

func (s *Session) IdleCommand(command string, params map[string]any) error {
	return channel.Send(s.client, protocol.IdleCommandRequest{Command: command, Parameters: params})
}

// GetState asks the backend to push a full state snapshot.
func (s *Session) GetState() error {
	return channel.Send(s.client, protocol.StateRequest{})
}
