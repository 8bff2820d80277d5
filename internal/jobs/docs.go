// Package jobs provides background tasks for the delivery engine.
//
// Scheduled jobs use github.com/robfig/cron/v3 with a seconds field:
//
//  1. ExpirySweepJob expires open delivery requests past their expiresAt
//     (default every five minutes). It is also run on demand by the sweep command.
//  2. QueueSnapshotJob recomputes the queue snapshot of every (hall, window)
//     (default every minute).
//
// QueueSnapshotListener is not scheduled. It receives committed domain events next to the
// broker publisher and refreshes the snapshots of the queues those events touched.
//
//	jobManager := jobs.NewJobManager(sweepJob, snapshotJob)
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
//   - A sweep logs expired and skipped counts; requests answered meanwhile are skipped, not errors
//   - Failures are logged at error level and retried on the next tick
//   - Failed job starts will stop any already running jobs
package jobs
