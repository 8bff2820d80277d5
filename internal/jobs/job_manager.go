package jobs

import (
	"fmt"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	expirySweepJob   *ExpirySweepJob
	queueSnapshotJob *QueueSnapshotJob
}

func NewJobManager(expirySweepJob *ExpirySweepJob, queueSnapshotJob *QueueSnapshotJob) *JobManager {
	return &JobManager{
		expirySweepJob:   expirySweepJob,
		queueSnapshotJob: queueSnapshotJob,
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.expirySweepJob.Start(); err != nil {
		return fmt.Errorf("failed to start expiry sweep job: %w", err)
	}

	if err := jm.queueSnapshotJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.expirySweepJob.Stop()
		return fmt.Errorf("failed to start queue snapshot job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs and waits for running invocations to return.
func (jm *JobManager) StopAll() {
	jm.queueSnapshotJob.Stop()
	jm.expirySweepJob.Stop()
}
