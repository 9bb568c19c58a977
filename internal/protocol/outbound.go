package protocol

// Commands sent by the client.
const (
	SendChatMessage    EventType = "chat_message"
	RequestChatHistory EventType = "request_chat_history"
	ClearCurrentChat   EventType = "clear_current_chat"
	ClearAllChats      EventType = "clear_all_chats"
	ClearPersonaChats  EventType = "clear_persona_chats"
	AssistantMove      EventType = "assistant_move"
	ObjectMove         EventType = "object_move"
	ObjectInteract     EventType = "object_interact"
	ObjectPickUp       EventType = "object_pickup"
	ObjectPutDown      EventType = "object_putdown"
	ModelChange        EventType = "model_change"
	Ping               EventType = "ping"
	IdleCommand        EventType = "idle_command"
	GetState           EventType = "get_state"
)

type ChatSend struct {
	Message string `json:"message"`
	Persona string `json:"persona,omitempty"`
}

func (ChatSend) EventType() EventType { return SendChatMessage }

type ChatHistoryRequest struct {
	Limit int `json:"limit,omitempty"`
}

func (ChatHistoryRequest) EventType() EventType { return RequestChatHistory }

// ClearScope selects which conversations a ChatClear removes.
type ClearScope string

const (
	ClearCurrent ClearScope = "current"
	ClearAll     ClearScope = "all"
	ClearPersona ClearScope = "persona"
)

// Valid reports whether s is a known scope.
func (s ClearScope) Valid() bool {
	switch s {
	case ClearCurrent, ClearAll, ClearPersona:
		return true
	}
	return false
}

type ChatClear struct {
	Scope   ClearScope `json:"-"`
	Persona string     `json:"persona,omitempty"`
}

func (c ChatClear) EventType() EventType {
	switch c.Scope {
	case ClearAll:
		return ClearAllChats
	case ClearPersona:
		return ClearPersonaChats
	default:
		return ClearCurrentChat
	}
}

type AssistantMoveCommand struct {
	Target Position `json:"target"`
}

func (AssistantMoveCommand) EventType() EventType { return AssistantMove }

type ObjectMoveCommand struct {
	ObjectID string   `json:"object_id"`
	Position Position `json:"position"`
}

func (ObjectMoveCommand) EventType() EventType { return ObjectMove }

type ObjectInteractCommand struct {
	ObjectID string `json:"object_id"`
	Action   string `json:"action"`
}

func (ObjectInteractCommand) EventType() EventType { return ObjectInteract }

type ObjectPickUpCommand struct {
	ObjectID string `json:"object_id"`
}

func (ObjectPickUpCommand) EventType() EventType { return ObjectPickUp }

type ObjectPutDownCommand struct {
	Position *Position `json:"position,omitempty"`
}

func (ObjectPutDownCommand) EventType() EventType { return ObjectPutDown }

type ModelChangeCommand struct {
	Model string `json:"model"`
}

func (ModelChangeCommand) EventType() EventType { return ModelChange }

// PingCommand carries the send time in Unix milliseconds; the pong echoes it.
type PingCommand struct {
	Timestamp int64 `json:"timestamp"`
}

func (PingCommand) EventType() EventType { return Ping }

type IdleCommandRequest struct {
	Command    string         `json:"command"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

func (IdleCommandRequest) EventType() EventType { return IdleCommand }

type StateRequest struct{}

func (StateRequest) EventType() EventType { return GetState }
