package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

type Config struct {
	Channel ChannelConfig `json:"channel"`
	API     APIConfig     `json:"api"`
	Ledger  LedgerConfig  `json:"ledger"`
	Session SessionConfig `json:"session"`
	Nats    NatsConfig    `json:"nats"`
	Console ConsoleConfig `json:"console"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	el.Add(c.Channel.validate())
	el.Add(c.API.validate())
	el.Add(c.Ledger.validate())
	el.Add(c.Session.validate())
	el.Add(c.Nats.validate())
	el.Add(c.Console.validate())

	return el.Err()
}

// duration parses an optional duration setting. Empty means def.
func duration(name, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", name)
	}
	return d, nil
}

// checkDuration validates an optional duration setting.
func checkDuration(name, value string) error {
	_, err := duration(name, value, 0)
	return err
}
