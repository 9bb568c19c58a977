package command

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
)

func validConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Channel: ChannelConfig{URL: "ws://localhost:8000/ws"},
		API:     APIConfig{FixturePath: t.TempDir()},
	}
}

func TestConfig_Validate(t *testing.T) {
	negative := -1
	file := filepath.Join(t.TempDir(), "fixtures.json")
	if err := os.WriteFile(file, []byte("{}"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	tests := map[string]struct {
		mutate  func(c *Config)
		expErrs []string
	}{
		"minimal": {
			mutate: func(*Config) {},
		},
		"everything set": {
			mutate: func(c *Config) {
				c.Channel.PingInterval = "15s"
				c.Channel.ReconnectBase = "500ms"
				c.Channel.ReconnectMax = "10s"
				c.Channel.HandshakeTimeout = "3s"
				c.Ledger = LedgerConfig{SweepInterval: "5s", MaxAge: "20s"}
				c.Session = SessionConfig{RetryOnError: true, RetryDelay: "2s", Persona: "Alice"}
				c.Nats = NatsConfig{Host: "127.0.0.1", Port: 4333, StartTimeout: "5s"}
				c.Console = ConsoleConfig{StatusTemplate: "{{ .Room }}", Width: 100}
			},
		},
		"missing channel url": {
			mutate:  func(c *Config) { c.Channel.URL = "" },
			expErrs: []string{"channel: url is required"},
		},
		"http channel url": {
			mutate:  func(c *Config) { c.Channel.URL = "http://localhost" },
			expErrs: []string{`url scheme must be ws or wss, got "http"`},
		},
		"bad durations": {
			mutate: func(c *Config) {
				c.Channel.PingInterval = "soon"
				c.Ledger.MaxAge = "-1s"
				c.Session.RetryDelay = "x"
			},
			expErrs: []string{
				"parsing channel.ping_interval",
				"ledger.max_age must be positive",
				"parsing session.retry_delay",
			},
		},
		"negative attempts": {
			mutate:  func(c *Config) { c.Channel.MaxReconnectAttempts = &negative },
			expErrs: []string{"max_reconnect_attempts must not be negative"},
		},
		"no api backend": {
			mutate:  func(c *Config) { c.API.FixturePath = "" },
			expErrs: []string{"one of base_url or fixture_path is required"},
		},
		"both api backends": {
			mutate:  func(c *Config) { c.API.BaseURL = "http://localhost:8000" },
			expErrs: []string{"mutually exclusive"},
		},
		"fixture path is a file": {
			mutate:  func(c *Config) { c.API.FixturePath = file },
			expErrs: []string{"is not a directory"},
		},
		"bad api scheme": {
			mutate: func(c *Config) {
				c.API.FixturePath = ""
				c.API.BaseURL = "ftp://example.com"
			},
			expErrs: []string{"base_url scheme must be http or https"},
		},
		"nats port out of range": {
			mutate:  func(c *Config) { c.Nats.Port = 70000 },
			expErrs: []string{"nats: port 70000 out of range"},
		},
		"bad status template": {
			mutate:  func(c *Config) { c.Console.StatusTemplate = "{{ .Room " },
			expErrs: []string{"console: status_template"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(&cfg)

			err := cfg.Validate()
			if len(tt.expErrs) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			for _, e := range tt.expErrs {
				testutil.AssertErrorContains(t, err, e)
			}
		})
	}
}

func TestBuildWorkers(t *testing.T) {
	tests := map[string]struct {
		mutate     func(c *Config)
		expWorkers []string
	}{
		"with console": {
			mutate:     func(*Config) {},
			expWorkers: []string{"nats", "driver", "session", "console"},
		},
		"headless over http": {
			mutate: func(c *Config) {
				c.API = APIConfig{BaseURL: "http://localhost:8000", Timeout: "2s"}
				c.Console.Disabled = true
			},
			expWorkers: []string{"nats", "driver", "session"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(&cfg)

			workers, err := BuildWorkers(&cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			testutil.AssertEqual(t, "worker count", len(workers), len(tt.expWorkers))
			for _, name := range tt.expWorkers {
				if _, ok := workers[name]; !ok {
					t.Errorf("missing worker %q", name)
				}
			}
		})
	}
}

func TestBuildWorkers_WrongConfigType(t *testing.T) {
	_, err := BuildWorkers(struct{}{})
	testutil.AssertErrorContains(t, err, "unable to cast config")
}
