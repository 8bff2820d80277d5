package jobs

import (
	"context"
	"log/slog"

	"campusdash/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultQueueSnapshotSchedule refreshes every queue once a minute.
const DefaultQueueSnapshotSchedule = "0 * * * * *"

// SnapshotRefresher is the part of commands.RefreshQueueSnapshotsCommandHandler the
// snapshot job and listener drive.
type SnapshotRefresher interface {
	Handle(ctx context.Context, command commands.RefreshQueueSnapshotsCommand) (int, error)
}

// QueueSnapshotJob recomputes the snapshot of every known queue on a schedule, so
// snapshots age correctly even when no order changes.
type QueueSnapshotJob struct {
	refresher SnapshotRefresher
	schedule  string
	cron      *cron.Cron
	logger    *slog.Logger
}

func NewQueueSnapshotJob(refresher SnapshotRefresher, schedule string, logger *slog.Logger) *QueueSnapshotJob {
	if schedule == "" {
		schedule = DefaultQueueSnapshotSchedule
	}
	return &QueueSnapshotJob{
		refresher: refresher,
		schedule:  schedule,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With("component", "queue_snapshot_job"),
	}
}

func (j *QueueSnapshotJob) RunOnce(ctx context.Context) (int, error) {
	cmd, err := commands.NewRefreshQueueSnapshotsCommand()
	if err != nil {
		return 0, err
	}

	written, err := j.refresher.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Queue snapshot refresh failed", "written", written, "error", err)
		return written, err
	}
	j.logger.DebugContext(ctx, "Queue snapshots refreshed", "written", written)
	return written, nil
}

func (j *QueueSnapshotJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		_, _ = j.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Queue snapshot job started", "schedule", j.schedule)
	return nil
}

func (j *QueueSnapshotJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Queue snapshot job stopped")
}
