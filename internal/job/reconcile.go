// Package job runs periodic maintenance on a cron schedule.
package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Reconciler removes one-sided friendship edges and reports how many.
type Reconciler interface {
	Reconcile(ctx context.Context) (int, error)
}

// RemovedRecorder counts edges removed by a run.
type RemovedRecorder interface {
	RecordReconcileRemoved(n int)
}

const runTimeout = 2 * time.Minute

// ReconcileJob sweeps one-sided friendship edges left by partially failed
// creates and deletes.
type ReconcileJob struct {
	reconciler Reconciler
	recorder   RemovedRecorder
	logger     *zap.Logger
	cron       *cron.Cron
}

// NewReconcileJob schedules the sweep. recorder may be nil.
func NewReconcileJob(schedule string, reconciler Reconciler, recorder RemovedRecorder, logger *zap.Logger) (*ReconcileJob, error) {
	j := &ReconcileJob{
		reconciler: reconciler,
		recorder:   recorder,
		logger:     logger.With(zap.String("component", "reconcile_job")),
		cron:       cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
	if _, err := j.cron.AddFunc(schedule, j.Run); err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", schedule, err)
	}
	return j, nil
}

func (j *ReconcileJob) Start() {
	j.cron.Start()
	j.logger.Info("reconcile job started")
}

// Stop waits for a running sweep to finish or ctx to expire.
func (j *ReconcileJob) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
		j.logger.Warn("reconcile job did not stop in time")
	}
}

// Run performs one sweep.
func (j *ReconcileJob) Run() {
	defer func() {
		if r := recover(); r != nil {
			j.logger.Error("Panic in reconcile job", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	removed, err := j.reconciler.Reconcile(ctx)
	if j.recorder != nil && removed > 0 {
		j.recorder.RecordReconcileRemoved(removed)
	}
	if err != nil {
		j.logger.Error("reconcile failed", zap.Int("removed", removed), zap.Error(err))
		return
	}
	if removed > 0 {
		j.logger.Info("removed one-sided friendships", zap.Int("removed", removed))
	}
}
