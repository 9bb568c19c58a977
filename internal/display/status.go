package display

import (
	"fmt"
	"strings"

	"github.com/YourBr0ther/deskmate-sub001/internal/store"
)

// Status is the data the status template sees.
type Status struct {
	Connection string
	Room       string
	Mood       string
	Status     string
	X, Y       float64
	Moving     bool
	Objects    int
	Pending    int
	Model      string
	Typing     bool
	Error      string
}

// StatusOf snapshots the parts of s the status line shows.
func StatusOf(s *store.Store) Status {
	a := s.Assistant()
	conn := s.Connection()
	chat := s.Chat()

	room := s.CurrentRoomID()
	if r, ok := s.Room(room); ok && r.Name != "" {
		room = r.Name
	}

	errMsg := s.UI().Error
	if errMsg == "" {
		errMsg = conn.LastError
	}

	return Status{
		Connection: string(conn.Status),
		Room:       room,
		Mood:       string(a.Mood),
		Status:     string(a.Status),
		X:          a.Position.X,
		Y:          a.Position.Y,
		Moving:     a.IsMoving,
		Objects:    len(s.GetCurrentRoomObjects()),
		Pending:    len(s.PendingOperations()),
		Model:      chat.Model,
		Typing:     chat.IsTyping,
		Error:      errMsg,
	}
}

// FormatMessage renders one chat line, wrapped to width.
func FormatMessage(m store.ChatMessage, width int) string {
	var b strings.Builder
	if !m.Timestamp.IsZero() {
		fmt.Fprintf(&b, "[%s] ", m.Timestamp.Local().Format("15:04"))
	}
	b.WriteString(Capitalize(string(m.Role)))
	b.WriteString(": ")
	return Hanging(b.String(), m.Content, width)
}
