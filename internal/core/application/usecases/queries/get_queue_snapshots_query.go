// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries read denormalized rows directly and never go through the unit of work.
package queries

import (
	"errors"
	"time"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/pkg/guard"
)

var ErrGetQueueSnapshotsQueryIsNotConstructed = errors.New(
	"GetQueueSnapshotsQuery must be created via NewGetQueueSnapshotsQuery constructor",
)

// GetQueueSnapshotsQuery lists the latest queue snapshot of every (hall, window),
// optionally narrowed to one hall.
//
// Example:
//
//	query := NewGetQueueSnapshotsQuery("worcester")
//	snapshots, err := handler.Handle(ctx, query)
type GetQueueSnapshotsQuery struct {
	hallID kernel.HallID
	guard  guard.ConstructorGuard
}

// NewGetQueueSnapshotsQuery accepts an empty hallID for every hall.
func NewGetQueueSnapshotsQuery(hallID kernel.HallID) GetQueueSnapshotsQuery {
	return GetQueueSnapshotsQuery{hallID: hallID, guard: guard.NewConstructorGuard()}
}

func (q GetQueueSnapshotsQuery) Validate() error {
	return q.guard.Validate(ErrGetQueueSnapshotsQueryIsNotConstructed)
}

func (q GetQueueSnapshotsQuery) HallID() kernel.HallID { return q.hallID }

type QueueSnapshotView struct {
	HallID             kernel.HallID
	WindowType         kernel.WindowType
	Depth              int
	AverageWaitSeconds int64
	ComputedAt         time.Time
}
