package queries

import (
	"context"

	"campusdash/internal/core/domain/model/kernel"

	"gorm.io/gorm"
)

type GetQueueSnapshotsQueryHandler struct {
	db *gorm.DB
}

func NewGetQueueSnapshotsQueryHandler(db *gorm.DB) GetQueueSnapshotsQueryHandler {
	return GetQueueSnapshotsQueryHandler{db: db}
}

// Handle returns snapshots sorted by hall and window.
func (h GetQueueSnapshotsQueryHandler) Handle(ctx context.Context, query GetQueueSnapshotsQuery) ([]QueueSnapshotView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			hall_id,
			window_type,
			depth,
			average_wait_seconds,
			computed_at
		FROM queue_snapshots
		WHERE (@hall = '' OR hall_id = @hall)
		ORDER BY hall_id, window_type
	`, map[string]any{"hall": query.HallID().String()}).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make([]QueueSnapshotView, 0)
	for rows.Next() {
		var view QueueSnapshotView
		var hall, window string
		if err = rows.Scan(&hall, &window, &view.Depth, &view.AverageWaitSeconds, &view.ComputedAt); err != nil {
			return nil, err
		}
		view.HallID = kernel.HallID(hall)
		view.WindowType = kernel.WindowType(window)
		snapshots = append(snapshots, view)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return snapshots, nil
}
