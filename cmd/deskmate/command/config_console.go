package command

import (
	"fmt"
	"os"

	"github.com/YourBr0ther/deskmate-sub001/internal/console"
	"github.com/YourBr0ther/deskmate-sub001/internal/display"
	"github.com/YourBr0ther/deskmate-sub001/internal/store"
	"github.com/pixil98/go-errors"
)

type ConsoleConfig struct {
	Disabled       bool   `json:"disabled"`
	StatusTemplate string `json:"status_template"`
	Width          int    `json:"width"`
}

func (c *ConsoleConfig) validate() error {
	el := errors.NewErrorList()

	if c.StatusTemplate != "" {
		if _, err := display.ParseTemplate("status", c.StatusTemplate); err != nil {
			el.Add(fmt.Errorf("console: status_template: %w", err))
		}
	}
	if c.Width < 0 {
		el.Add(fmt.Errorf("console: width must not be negative"))
	}

	return el.Err()
}

func (c *ConsoleConfig) buildConsole(st *store.Store, cmd console.Commander, bus console.Subscriber) (*console.Console, error) {
	opts := []console.ConsoleOpt{
		console.WithWidth(c.Width),
		console.WithBus(bus),
	}
	if c.StatusTemplate != "" {
		t, err := display.ParseTemplate("status", c.StatusTemplate)
		if err != nil {
			return nil, fmt.Errorf("parsing status_template: %w", err)
		}
		opts = append(opts, console.WithStatusTemplate(t))
	}

	return console.New(os.Stdin, os.Stdout, st, cmd, opts...)
}
