package console

import "github.com/YourBr0ther/deskmate-sub001/internal/display"

type ConsoleOpt func(*Console)

// WithStatusTemplate replaces the default status line template.
func WithStatusTemplate(t *display.Template) ConsoleOpt {
	return func(c *Console) {
		c.status = t
	}
}

func WithWidth(width int) ConsoleOpt {
	return func(c *Console) {
		if width > 0 {
			c.width = width
		}
	}
}

// WithBus prints room transitions published on the bus.
func WithBus(bus Subscriber) ConsoleOpt {
	return func(c *Console) {
		c.bus = bus
	}
}
