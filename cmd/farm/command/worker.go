package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-farm/internal/driver"
	"github.com/pixil98/go-farm/internal/messaging"
	"github.com/pixil98/go-farm/internal/room"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	t, err := cfg.Room.loadTuning()
	if err != nil {
		return nil, err
	}

	persister, closeStore, err := cfg.Storage.BuildPersister()
	if err != nil {
		return nil, err
	}

	nats, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	publisher := messaging.NewRoomPublisher(nats)

	opts := append([]room.ControllerOpt{
		room.WithPersister(persister),
		room.WithBroadcaster(publisher),
		room.WithGrantSink(publisher),
	}, cfg.Room.controllerOpts()...)
	ctrl := room.NewController(t, opts...)

	l, err := cfg.Listener.BuildListener(ctrl, publisher, t.HeartbeatTimeout)
	if err != nil {
		return nil, fmt.Errorf("creating listener: %w", err)
	}

	return service.WorkerList{
		"nats":      nats,
		"room":      &roomWorker{ctrl: ctrl, ready: nats.Ready(), close: closeStore},
		"scheduler": driver.NewScheduler(ctrl.Tasks()),
		"listener":  l,
	}, nil
}

// roomWorker holds the controller back until the bus can carry its deltas and
// releases the snapshot store once no save is left running.
type roomWorker struct {
	ctrl  *room.Controller
	ready <-chan struct{}
	close func() error
}

func (w *roomWorker) Start(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return w.close()
	case <-w.ready:
	}

	err := w.ctrl.Start(ctx)
	if w.ctrl.SavePending() {
		slog.WarnContext(ctx, "save still running after drain, leaving snapshot store open")
		return err
	}
	if cerr := w.close(); cerr != nil {
		slog.WarnContext(ctx, "closing snapshot store", "error", cerr)
	}
	return err
}
