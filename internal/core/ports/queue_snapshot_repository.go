package ports

import (
	"context"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/queue"
)

// QueueSnapshotRepository stores one display snapshot per queue key.
type QueueSnapshotRepository interface {
	// Save replaces the snapshot of its key.
	Save(ctx context.Context, snapshot queue.Snapshot) error

	// ListKeys returns every (hall, window) that has ever had an order.
	ListKeys(ctx context.Context) ([]kernel.QueueKey, error)
}
