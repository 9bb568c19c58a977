package driver

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"

	"github.com/YourBr0ther/deskmate-sub001/internal/clock"
	"github.com/YourBr0ther/deskmate-sub001/internal/store"
)

func TestDriver_Tick(t *testing.T) {
	tests := map[string]struct {
		errs   []error
		expErr []string
	}{
		"no managers": {},
		"all succeed": {
			errs: []error{nil, nil},
		},
		"failures are collected": {
			errs:   []error{errors.New("first"), nil, errors.New("third")},
			expErr: []string{"manager 0: first", "manager 2: third"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var calls int
			var managers []Manager
			for _, err := range tt.errs {
				managers = append(managers, ManagerFunc(func(context.Context) error {
					calls++
					return err
				}))
			}

			err := NewDriver(managers).Tick(context.Background())

			testutil.AssertEqual(t, "calls", calls, len(tt.errs))
			if len(tt.expErr) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			for _, e := range tt.expErr {
				testutil.AssertErrorContains(t, err, e)
			}
		})
	}
}

func TestDriver_StartTicksUntilCancelled(t *testing.T) {
	var ticks atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	d := NewDriver([]Manager{ManagerFunc(func(context.Context) error {
		if ticks.Add(1) == 3 {
			cancel()
		}
		return errors.New("keeps going")
	})}, WithTickLength(time.Millisecond))

	done := make(chan error, 1)
	go func() { done <- d.Start(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("driver did not stop")
	}
	if ticks.Load() < 3 {
		t.Errorf("ticks = %d, want at least 3", ticks.Load())
	}
}

func TestDriver_SweepsStoreLedger(t *testing.T) {
	fake := clock.Fake(time.Unix(0, 0))
	s := store.New(nil, store.WithClock(fake), store.WithMaxOperationAge(10*time.Second))

	if err := s.AddPendingOperation(store.PendingOperation{ID: "op-1", Type: store.OpMove, EntityID: "object:desk"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d := NewDriver([]Manager{s})
	fake.Advance(5 * time.Second)
	if err := d.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "kept while fresh", len(s.PendingOperations()), 1)

	fake.Advance(6 * time.Second)
	if err := d.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "swept when stale", len(s.PendingOperations()), 0)
}
