package command

import (
	"fmt"
	"net/url"
	"os"

	"github.com/YourBr0ther/deskmate-sub001/internal/api"
	"github.com/YourBr0ther/deskmate-sub001/internal/store"
	"github.com/pixil98/go-errors"
)

// APIConfig selects the bulk-load backend: the HTTP service at BaseURL,
// or JSON fixtures under FixturePath.
type APIConfig struct {
	BaseURL     string `json:"base_url"`
	FixturePath string `json:"fixture_path"`
	Timeout     string `json:"timeout"`
}

func (c *APIConfig) validate() error {
	el := errors.NewErrorList()

	switch {
	case c.BaseURL == "" && c.FixturePath == "":
		el.Add(fmt.Errorf("api: one of base_url or fixture_path is required"))
	case c.BaseURL != "" && c.FixturePath != "":
		el.Add(fmt.Errorf("api: base_url and fixture_path are mutually exclusive"))
	case c.BaseURL != "":
		u, err := url.Parse(c.BaseURL)
		if err != nil {
			el.Add(fmt.Errorf("api: parsing base_url: %w", err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			el.Add(fmt.Errorf("api: base_url scheme must be http or https, got %q", u.Scheme))
		}
	default:
		if info, err := os.Stat(c.FixturePath); err != nil {
			el.Add(fmt.Errorf("api: invalid fixture_path %q: %w", c.FixturePath, err))
		} else if !info.IsDir() {
			el.Add(fmt.Errorf("api: fixture_path %q is not a directory", c.FixturePath))
		}
	}

	el.Add(checkDuration("api.timeout", c.Timeout))

	return el.Err()
}

func (c *APIConfig) buildBackend() (store.API, error) {
	if c.FixturePath != "" {
		f, err := api.NewFixtureBackend(c.FixturePath)
		if err != nil {
			return nil, fmt.Errorf("loading fixtures: %w", err)
		}
		return f, nil
	}

	timeout, err := duration("api.timeout", c.Timeout, api.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	return api.NewHTTPClient(c.BaseURL, timeout), nil
}
