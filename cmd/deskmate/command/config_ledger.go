package command

import (
	"github.com/YourBr0ther/deskmate-sub001/internal/driver"
	"github.com/YourBr0ther/deskmate-sub001/internal/store"
	"github.com/pixil98/go-errors"
)

type LedgerConfig struct {
	SweepInterval string `json:"sweep_interval"`
	MaxAge        string `json:"max_age"`
}

func (c *LedgerConfig) validate() error {
	el := errors.NewErrorList()

	el.Add(checkDuration("ledger.sweep_interval", c.SweepInterval))
	el.Add(checkDuration("ledger.max_age", c.MaxAge))

	return el.Err()
}

func (c *LedgerConfig) buildStore(backend store.API) (*store.Store, error) {
	maxAge, err := duration("ledger.max_age", c.MaxAge, store.DefaultMaxOperationAge)
	if err != nil {
		return nil, err
	}
	return store.New(backend, store.WithMaxOperationAge(maxAge)), nil
}

func (c *LedgerConfig) buildDriver(managers ...driver.Manager) (*driver.Driver, error) {
	interval, err := duration("ledger.sweep_interval", c.SweepInterval, driver.DefaultTickLength)
	if err != nil {
		return nil, err
	}
	return driver.NewDriver(managers, driver.WithTickLength(interval)), nil
}
