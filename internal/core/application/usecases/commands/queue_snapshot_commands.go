package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/queue"
	"campusdash/internal/pkg/guard"
)

var ErrRefreshQueueSnapshotsCommandIsNotConstructed = errors.New(
	"RefreshQueueSnapshotsCommand must be created via NewRefreshQueueSnapshotsCommand constructor",
)

// RefreshQueueSnapshotsCommand recomputes the display snapshots of the given keys,
// or of every known key when none are given.
type RefreshQueueSnapshotsCommand struct {
	keys []kernel.QueueKey

	guard guard.ConstructorGuard
}

func NewRefreshQueueSnapshotsCommand(keys ...kernel.QueueKey) (RefreshQueueSnapshotsCommand, error) {
	for _, k := range keys {
		if _, err := kernel.NewHallID(string(k.HallID)); err != nil {
			return RefreshQueueSnapshotsCommand{}, err
		}
		if err := k.WindowType.Validate(); err != nil {
			return RefreshQueueSnapshotsCommand{}, err
		}
	}
	return RefreshQueueSnapshotsCommand{
		keys:  append([]kernel.QueueKey(nil), keys...),
		guard: guard.NewConstructorGuard(),
	}, nil
}

func (c RefreshQueueSnapshotsCommand) Validate() error {
	return c.guard.Validate(ErrRefreshQueueSnapshotsCommandIsNotConstructed)
}

func (c RefreshQueueSnapshotsCommand) Keys() []kernel.QueueKey { return c.keys }

// RefreshQueueSnapshotsCommandHandler writes snapshots only. It never touches orders, so
// it may run as often as the queues change.
type RefreshQueueSnapshotsCommandHandler struct {
	runner TxRunner
}

func NewRefreshQueueSnapshotsCommandHandler(runner TxRunner) RefreshQueueSnapshotsCommandHandler {
	return RefreshQueueSnapshotsCommandHandler{runner: runner}
}

// Handle refreshes each key in its own transaction and returns how many were written.
func (h RefreshQueueSnapshotsCommandHandler) Handle(ctx context.Context, command RefreshQueueSnapshotsCommand) (int, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	keys := command.Keys()
	if len(keys) == 0 {
		err := h.runner.Run(ctx, func(ctx context.Context, uow UoW) error {
			var err error
			keys, err = uow.QueueSnapshotRepository().ListKeys(ctx)
			return err
		})
		if err != nil {
			return 0, err
		}
	}

	var (
		written  int
		failures []error
	)
	for _, key := range keys {
		err := h.runner.Run(ctx, func(ctx context.Context, uow UoW) error {
			waiting, err := uow.OrderRepository().ListWaiting(ctx, key)
			if err != nil {
				return err
			}

			entries := make([]queue.WaitingOrder, 0, len(waiting))
			for _, o := range waiting {
				entries = append(entries, queue.WaitingOrder{Key: o.QueueKey(), CreatedAt: o.CreatedAt()})
			}

			return uow.QueueSnapshotRepository().Save(ctx, queue.Compute(key, entries, time.Now().UTC()))
		})
		if err != nil {
			failures = append(failures, fmt.Errorf("refresh queue %s: %w", key, err))
			continue
		}
		written++
	}

	return written, errors.Join(failures...)
}
