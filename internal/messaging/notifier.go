package messaging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/YourBr0ther/deskmate-sub001/internal/channel"
	"github.com/YourBr0ther/deskmate-sub001/internal/protocol"
)

const (
	SubjectRoomTransition   = "deskmate.room.transition"
	SubjectConnectionStatus = "deskmate.connection.status"
	subjectEventPrefix      = "deskmate.event."
)

type Publisher interface {
	Publish(subject string, data []byte) error
}

// ConnectionStatus is the payload published on SubjectConnectionStatus.
type ConnectionStatus struct {
	Status string    `json:"status"`
	Error  string    `json:"error,omitempty"`
	At     time.Time `json:"at"`
}

// Notifier rebroadcasts channel events onto the bus. Payloads are
// published unmodified.
type Notifier struct {
	pub Publisher
	now func() time.Time
}

var _ channel.Notifier = (*Notifier)(nil)

func NewNotifier(pub Publisher) *Notifier {
	return &Notifier{pub: pub, now: time.Now}
}

// Subject maps an event type onto its bus subject.
func Subject(typ protocol.EventType) string {
	if typ == protocol.RoomTransition {
		return SubjectRoomTransition
	}
	return subjectEventPrefix + string(typ)
}

func (n *Notifier) Notify(typ protocol.EventType, data json.RawMessage) error {
	if err := n.pub.Publish(Subject(typ), data); err != nil {
		return fmt.Errorf("publishing %s: %w", typ, err)
	}
	return nil
}

// ConnectionChanged publishes a status change. It has the shape of a
// channel status observer.
func (n *Notifier) ConnectionChanged(state channel.State, err error) {
	msg := ConnectionStatus{Status: string(state), At: n.now().UTC()}
	if err != nil {
		msg.Error = err.Error()
	}

	data, mErr := json.Marshal(msg)
	if mErr != nil {
		slog.Warn("encoding connection status", "error", mErr)
		return
	}
	if pErr := n.pub.Publish(SubjectConnectionStatus, data); pErr != nil {
		slog.Debug("publishing connection status", "status", state, "error", pErr)
	}
}
