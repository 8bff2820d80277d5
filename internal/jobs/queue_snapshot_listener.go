package jobs

import (
	"context"
	"log/slog"

	"campusdash/internal/core/application/usecases/commands"
	"campusdash/internal/core/domain/model/kernel"
)

// DefaultListenerBuffer bounds the keys waiting for a refresh.
const DefaultListenerBuffer = 256

type queueKeyed interface {
	QueueKey() kernel.QueueKey
}

// QueueSnapshotListener implements ports.EventPublisher. It refreshes the snapshot of every
// queue an order event touched, off the request path. Keys that do not fit the buffer are
// dropped and picked up by QueueSnapshotJob.
type QueueSnapshotListener struct {
	refresher SnapshotRefresher
	keys      chan kernel.QueueKey
	logger    *slog.Logger
}

func NewQueueSnapshotListener(refresher SnapshotRefresher, buffer int, logger *slog.Logger) *QueueSnapshotListener {
	if buffer <= 0 {
		buffer = DefaultListenerBuffer
	}
	return &QueueSnapshotListener{
		refresher: refresher,
		keys:      make(chan kernel.QueueKey, buffer),
		logger:    logger.With("component", "queue_snapshot_listener"),
	}
}

// Publish never blocks and never fails.
func (l *QueueSnapshotListener) Publish(ctx context.Context, events ...kernel.DomainEvent) error {
	for _, event := range events {
		keyed, ok := event.(queueKeyed)
		if !ok {
			continue
		}
		select {
		case l.keys <- keyed.QueueKey():
		default:
			l.logger.WarnContext(ctx, "Queue snapshot refresh dropped", "queue", keyed.QueueKey().String())
		}
	}
	return nil
}

// Run refreshes queued keys until ctx is done. Keys already waiting are coalesced into
// one refresh.
func (l *QueueSnapshotListener) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case key := <-l.keys:
			l.refresh(ctx, l.drain(key))
		}
	}
}

func (l *QueueSnapshotListener) drain(first kernel.QueueKey) []kernel.QueueKey {
	seen := map[kernel.QueueKey]struct{}{first: {}}
	keys := []kernel.QueueKey{first}
	for {
		select {
		case key := <-l.keys:
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				keys = append(keys, key)
			}
		default:
			return keys
		}
	}
}

func (l *QueueSnapshotListener) refresh(ctx context.Context, keys []kernel.QueueKey) {
	cmd, err := commands.NewRefreshQueueSnapshotsCommand(keys...)
	if err != nil {
		l.logger.ErrorContext(ctx, "Invalid queue snapshot keys", "error", err)
		return
	}
	if _, err = l.refresher.Handle(ctx, cmd); err != nil {
		l.logger.ErrorContext(ctx, "Queue snapshot refresh failed", "queues", len(keys), "error", err)
	}
}
