package command

import (
	"github.com/YourBr0ther/deskmate-sub001/internal/channel"
	"github.com/YourBr0ther/deskmate-sub001/internal/session"
	"github.com/YourBr0ther/deskmate-sub001/internal/store"
	"github.com/pixil98/go-errors"
)

type SessionConfig struct {
	RetryOnError bool   `json:"retry_on_error"`
	RetryDelay   string `json:"retry_delay"`
	Persona      string `json:"persona"`
	Preload      *bool  `json:"preload,omitempty"`
}

func (c *SessionConfig) validate() error {
	el := errors.NewErrorList()

	el.Add(checkDuration("session.retry_delay", c.RetryDelay))

	return el.Err()
}

func (c *SessionConfig) buildSession(client *channel.Client, st *store.Store) (*session.Session, error) {
	var opts []session.SessionOpt
	if c.RetryOnError {
		delay, err := duration("session.retry_delay", c.RetryDelay, session.DefaultRetryDelay)
		if err != nil {
			return nil, err
		}
		opts = append(opts, session.WithRetry(delay))
	}
	if c.Persona != "" {
		opts = append(opts, session.WithPersona(c.Persona))
	}
	if c.Preload == nil || *c.Preload {
		opts = append(opts, session.WithPreload())
	}

	return session.New(client, st, opts...), nil
}
