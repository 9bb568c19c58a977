package command

import (
	"fmt"
	"net/url"

	"github.com/YourBr0ther/deskmate-sub001/internal/channel"
	"github.com/pixil98/go-errors"
)

type ChannelConfig struct {
	URL                  string `json:"url"`
	PingInterval         string `json:"ping_interval"`
	ReconnectBase        string `json:"reconnect_base"`
	ReconnectMax         string `json:"reconnect_max"`
	MaxReconnectAttempts *int   `json:"max_reconnect_attempts,omitempty"`
	HandshakeTimeout     string `json:"handshake_timeout"`
}

func (c *ChannelConfig) validate() error {
	el := errors.NewErrorList()

	if c.URL == "" {
		el.Add(fmt.Errorf("channel: url is required"))
	} else if u, err := url.Parse(c.URL); err != nil {
		el.Add(fmt.Errorf("channel: parsing url: %w", err))
	} else if u.Scheme != "ws" && u.Scheme != "wss" {
		el.Add(fmt.Errorf("channel: url scheme must be ws or wss, got %q", u.Scheme))
	}

	el.Add(checkDuration("channel.ping_interval", c.PingInterval))
	el.Add(checkDuration("channel.reconnect_base", c.ReconnectBase))
	el.Add(checkDuration("channel.reconnect_max", c.ReconnectMax))
	el.Add(checkDuration("channel.handshake_timeout", c.HandshakeTimeout))

	if c.MaxReconnectAttempts != nil && *c.MaxReconnectAttempts < 0 {
		el.Add(fmt.Errorf("channel: max_reconnect_attempts must not be negative"))
	}

	return el.Err()
}

func (c *ChannelConfig) buildClient() (*channel.Client, error) {
	ping, err := duration("channel.ping_interval", c.PingInterval, channel.DefaultPingInterval)
	if err != nil {
		return nil, err
	}
	base, err := duration("channel.reconnect_base", c.ReconnectBase, channel.DefaultReconnectBase)
	if err != nil {
		return nil, err
	}
	max, err := duration("channel.reconnect_max", c.ReconnectMax, channel.DefaultReconnectMax)
	if err != nil {
		return nil, err
	}
	handshake, err := duration("channel.handshake_timeout", c.HandshakeTimeout, channel.DefaultHandshakeTimeout)
	if err != nil {
		return nil, err
	}

	opts := []channel.ClientOpt{
		channel.WithPingInterval(ping),
		channel.WithReconnectBackoff(base, max),
		channel.WithHandshakeTimeout(handshake),
	}
	if c.MaxReconnectAttempts != nil {
		opts = append(opts, channel.WithMaxReconnectAttempts(*c.MaxReconnectAttempts))
	}

	return channel.NewClient(c.URL, opts...), nil
}
