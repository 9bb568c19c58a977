package command

import (
	"fmt"

	"github.com/YourBr0ther/deskmate-sub001/internal/channel"
	"github.com/YourBr0ther/deskmate-sub001/internal/messaging"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	bus, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	notifier := messaging.NewNotifier(bus)

	backend, err := cfg.API.buildBackend()
	if err != nil {
		return nil, fmt.Errorf("creating api backend: %w", err)
	}

	st, err := cfg.Ledger.buildStore(backend)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	// Wire the channel into the store and rebroadcast what other
	// observers need onto the bus
	client, err := cfg.Channel.buildClient()
	if err != nil {
		return nil, fmt.Errorf("creating channel client: %w", err)
	}
	channel.Bind(client, st, notifier)
	client.OnStatus(notifier.ConnectionChanged)

	sess, err := cfg.Session.buildSession(client, st)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	sweeper, err := cfg.Ledger.buildDriver(st)
	if err != nil {
		return nil, fmt.Errorf("creating ledger sweeper: %w", err)
	}

	workers := service.WorkerList{
		"nats":    bus,
		"driver":  sweeper,
		"session": sess,
	}

	if !cfg.Console.Disabled {
		con, err := cfg.Console.buildConsole(st, sess, bus)
		if err != nil {
			return nil, fmt.Errorf("creating console: %w", err)
		}
		workers["console"] = con
	}

	return workers, nil
}
