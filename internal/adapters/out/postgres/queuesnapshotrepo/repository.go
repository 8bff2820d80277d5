// Package queuesnapshotrepo stores the display snapshot of each pooling queue.
package queuesnapshotrepo

import (
	"context"
	"time"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/queue"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QueueSnapshotDTO struct {
	HallID             string    `gorm:"primaryKey"`
	WindowType         string    `gorm:"primaryKey"`
	Depth              int       `gorm:"not null"`
	AverageWaitSeconds int64     `gorm:"not null"`
	ComputedAt         time.Time `gorm:"not null"`
}

func (QueueSnapshotDTO) TableName() string {
	return "queue_snapshots"
}

type GormQueueSnapshotRepository struct {
	db *gorm.DB
}

func NewGormQueueSnapshotRepository(db *gorm.DB) *GormQueueSnapshotRepository {
	return &GormQueueSnapshotRepository{db: db}
}

// Save upserts the snapshot. An older computation never replaces a newer one.
func (r *GormQueueSnapshotRepository) Save(ctx context.Context, snapshot queue.Snapshot) error {
	dto := QueueSnapshotDTO{
		HallID:             snapshot.Key.HallID.String(),
		WindowType:         snapshot.Key.WindowType.String(),
		Depth:              snapshot.Depth,
		AverageWaitSeconds: int64(snapshot.AverageWait / time.Second),
		ComputedAt:         snapshot.ComputedAt,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "hall_id"}, {Name: "window_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"depth", "average_wait_seconds", "computed_at"}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "queue_snapshots.computed_at <= excluded.computed_at"},
			}},
		}).
		Create(&dto).Error
}

// ListKeys returns every (hall, window) that has ever had an order.
func (r *GormQueueSnapshotRepository) ListKeys(ctx context.Context) ([]kernel.QueueKey, error) {
	rows, err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT hall_id, window_type
		FROM orders
		ORDER BY hall_id, window_type
	`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]kernel.QueueKey, 0)
	for rows.Next() {
		var hall, window string
		if err = rows.Scan(&hall, &window); err != nil {
			return nil, err
		}
		keys = append(keys, kernel.QueueKey{HallID: kernel.HallID(hall), WindowType: kernel.WindowType(window)})
	}
	return keys, rows.Err()
}
