package driver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-errors"
)

const (
	DefaultTickLength = 30 * time.Second
)

// Manager is anything that needs periodic housekeeping, such as the store
// sweeping expired pending operations.
type Manager interface {
	Tick(context.Context) error
}

// ManagerFunc adapts a function to Manager.
type ManagerFunc func(context.Context) error

func (f ManagerFunc) Tick(ctx context.Context) error {
	return f(ctx)
}

// Driver ticks its managers on a fixed interval until stopped.
type Driver struct {
	tickLength time.Duration
	managers   []Manager
}

func NewDriver(managers []Manager, opts ...DriverOpt) *Driver {
	d := &Driver{
		tickLength: DefaultTickLength,
		managers:   managers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Start runs until ctx is cancelled. A failing tick is logged and the
// next one still runs.
func (d *Driver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := d.Tick(ctx); err != nil {
				slog.WarnContext(ctx, "driver tick failed", "error", err)
			}
		}
	}
}

// Tick runs every manager once, even when an earlier one fails.
func (d *Driver) Tick(ctx context.Context) error {
	el := errors.NewErrorList()
	for i, m := range d.managers {
		if err := m.Tick(ctx); err != nil {
			el.Add(fmt.Errorf("manager %d: %w", i, err))
		}
	}
	return el.Err()
}
