package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/YourBr0ther/deskmate-sub001/internal/display"
	"github.com/YourBr0ther/deskmate-sub001/internal/geometry"
	"github.com/YourBr0ther/deskmate-sub001/internal/messaging"
	"github.com/YourBr0ther/deskmate-sub001/internal/protocol"
	"github.com/YourBr0ther/deskmate-sub001/internal/store"
)

// Commander is the part of the session the console drives.
type Commander interface {
	SendChat(content, persona string) error
	RequestChatHistory(limit int) error
	ClearChat(scope protocol.ClearScope, persona string) error
	MoveAssistant(x, y float64) error
	InteractWithObject(id, action string) error
	PickUpObject(id string) error
	PutDownObject(pos *geometry.Position) error
	ChangeModel(model string) error
	GetState() error
}

// Subscriber is the notification bus.
type Subscriber interface {
	Ready() <-chan struct{}
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// Console is a line-oriented front end. It prints a status line whenever
// it changes, prints finished chat messages once, and turns input lines
// into session commands.
type Console struct {
	in      io.Reader
	out     io.Writer
	store   *store.Store
	session Commander
	bus     Subscriber
	status  *display.Template
	width   int

	mu         sync.Mutex
	lastStatus string
	printed    map[string]bool
}

func New(in io.Reader, out io.Writer, st *store.Store, session Commander, opts ...ConsoleOpt) (*Console, error) {
	c := &Console{
		in:      in,
		out:     out,
		store:   st,
		session: session,
		width:   display.DefaultWidth,
		printed: map[string]bool{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.status == nil {
		t, err := display.ParseTemplate("status", display.DefaultStatusTemplate)
		if err != nil {
			return nil, err
		}
		c.status = t
	}
	return c, nil
}

func (c *Console) Start(ctx context.Context) error {
	unsubscribe := c.store.Subscribe(c.Refresh)
	defer unsubscribe()
	c.Refresh()

	if c.bus != nil {
		go c.watchTransitions(ctx)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			slog.Warn("reading console input", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			if err := c.Handle(line); err != nil {
				c.printf("error: %v\n", err)
			}
		}
	}
}

// Refresh prints the status line if it changed and any chat messages
// that finished since the last call. Only messages still in the store are
// remembered as printed.
func (c *Console) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()

	line, err := c.status.Execute(display.StatusOf(c.store))
	if err != nil {
		slog.Warn("rendering status", "error", err)
		return
	}

	msgs := c.store.Messages()
	printed := make(map[string]bool, len(msgs))
	for _, m := range msgs {
		if m.IsStreaming {
			continue
		}
		printed[m.ID] = true
		if c.printed[m.ID] || m.Role == store.RoleUser {
			continue
		}
		fmt.Fprintln(c.out, display.FormatMessage(m, c.width))
	}
	c.printed = printed

	if line != c.lastStatus {
		c.lastStatus = line
		fmt.Fprintln(c.out, line)
	}
}

func (c *Console) watchTransitions(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-c.bus.Ready():
	}

	unsubscribe, err := c.bus.Subscribe(messaging.SubjectRoomTransition, c.transition)
	if err != nil {
		slog.Warn("subscribing to room transitions", "error", err)
		return
	}
	<-ctx.Done()
	unsubscribe()
}

func (c *Console) transition(data []byte) {
	t, err := protocol.Payload[protocol.RoomTransitionData](data)
	if err != nil {
		slog.Warn("decoding room transition", "error", err)
		return
	}
	c.printf("* moving from %s to %s\n", orUnknown(t.FromRoom), orUnknown(t.ToRoom))
}

const help = `commands:
  <text>                       chat
  /move <x> <y>                walk the assistant
  /interact <id> <action>      use an object
  /pickup <id>                 pick an object up
  /putdown [<x> <y>]           put the held object down
  /model <name>                switch model
  /history [<limit>]           reload chat history
  /clear [current|all|persona] [<persona>]
  /state                       ask for a full state push`

// Handle runs one input line.
func (c *Console) Handle(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, "/") {
		return c.session.SendChat(line, "")
	}

	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return fmt.Errorf("empty command")
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		c.printf("%s\n", help)
		return nil
	case "move":
		pos, err := parsePosition(args)
		if err != nil {
			return err
		}
		return c.session.MoveAssistant(pos.X, pos.Y)
	case "interact":
		if len(args) != 2 {
			return fmt.Errorf("usage: /interact <id> <action>")
		}
		return c.session.InteractWithObject(args[0], args[1])
	case "pickup":
		if len(args) != 1 {
			return fmt.Errorf("usage: /pickup <id>")
		}
		return c.session.PickUpObject(args[0])
	case "putdown":
		if len(args) == 0 {
			return c.session.PutDownObject(nil)
		}
		pos, err := parsePosition(args)
		if err != nil {
			return err
		}
		return c.session.PutDownObject(&pos)
	case "model":
		if len(args) != 1 {
			return fmt.Errorf("usage: /model <name>")
		}
		return c.session.ChangeModel(args[0])
	case "history":
		limit := 0
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return fmt.Errorf("invalid limit %q", args[0])
			}
			limit = n
		}
		return c.session.RequestChatHistory(limit)
	case "clear":
		scope := protocol.ClearCurrent
		persona := ""
		if len(args) > 0 {
			scope = protocol.ClearScope(args[0])
		}
		if len(args) > 1 {
			persona = args[1]
		}
		return c.session.ClearChat(scope, persona)
	case "state":
		return c.session.GetState()
	default:
		return fmt.Errorf("unknown command %q, try /help", cmd)
	}
}

func parsePosition(args []string) (geometry.Position, error) {
	if len(args) != 2 {
		return geometry.Position{}, fmt.Errorf("expected <x> <y>")
	}
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return geometry.Position{}, fmt.Errorf("invalid x %q", args[0])
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return geometry.Position{}, fmt.Errorf("invalid y %q", args[1])
	}
	return geometry.Position{X: x, Y: y}, nil
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}
