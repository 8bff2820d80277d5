// Package queue holds the display-only snapshot of a pooling queue.
package queue

import (
	"time"

	"campusdash/internal/core/domain/model/kernel"
)

// Snapshot is the queue depth and mean wait of waiting orders for one (hall, window).
type Snapshot struct {
	Key         kernel.QueueKey
	Depth       int
	AverageWait time.Duration
	ComputedAt  time.Time
}

// WaitingOrder is the part of an order the snapshot is derived from.
type WaitingOrder struct {
	Key       kernel.QueueKey
	CreatedAt time.Time
}

// Compute derives the snapshot of key from the orders still waiting in the queue.
// Orders of other keys are ignored.
func Compute(key kernel.QueueKey, waiting []WaitingOrder, now time.Time) Snapshot {
	s := Snapshot{Key: key, ComputedAt: now}

	var total time.Duration
	for _, o := range waiting {
		if o.Key != key {
			continue
		}
		s.Depth++
		total += max(now.Sub(o.CreatedAt), 0)
	}
	if s.Depth > 0 {
		s.AverageWait = (total / time.Duration(s.Depth)).Round(time.Second)
	}
	return s
}
