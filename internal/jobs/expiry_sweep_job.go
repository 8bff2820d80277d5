package jobs

import (
	"context"
	"log/slog"
	"time"

	"campusdash/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultExpirySweepSchedule runs the sweep every five minutes.
const DefaultExpirySweepSchedule = "0 */5 * * * *"

// ExpirySweeper is the part of commands.DeliveryRequestHandler the job drives.
type ExpirySweeper interface {
	HandleExpire(ctx context.Context, command commands.ExpireDeliveryRequestsCommand) (commands.SweepResult, error)
}

// ExpirySweepJob expires delivery requests whose expiresAt has passed.
type ExpirySweepJob struct {
	sweeper  ExpirySweeper
	schedule string
	cron     *cron.Cron
	now      func() time.Time
	logger   *slog.Logger
}

func NewExpirySweepJob(sweeper ExpirySweeper, schedule string, logger *slog.Logger) *ExpirySweepJob {
	if schedule == "" {
		schedule = DefaultExpirySweepSchedule
	}
	return &ExpirySweepJob{
		sweeper:  sweeper,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.With("component", "expiry_sweep_job"),
	}
}

// RunOnce sweeps everything due at the current time.
func (j *ExpirySweepJob) RunOnce(ctx context.Context) (commands.SweepResult, error) {
	cmd, err := commands.NewExpireDeliveryRequestsCommand(j.now(), 0)
	if err != nil {
		return commands.SweepResult{}, err
	}

	result, err := j.sweeper.HandleExpire(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Expiry sweep failed", "expired", result.Expired, "skipped", result.Skipped, "error", err)
		return result, err
	}
	if result.Expired > 0 || result.Skipped > 0 {
		j.logger.InfoContext(ctx, "Expiry sweep finished", "expired", result.Expired, "skipped", result.Skipped)
	} else {
		j.logger.DebugContext(ctx, "Expiry sweep found nothing due")
	}
	return result, nil
}

func (j *ExpirySweepJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		_, _ = j.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Expiry sweep job started", "schedule", j.schedule)
	return nil
}

func (j *ExpirySweepJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Expiry sweep job stopped")
}
