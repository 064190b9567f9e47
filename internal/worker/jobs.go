package worker

import (
	"context"

	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
)

// ReconcileJob runs one shown_count reconciliation pass.
type ReconcileJob struct {
	Reconciler Reconciler
	// Trigger names who asked for the pass, for the logs ("cron", "admin").
	Trigger string
	// OnDone, when set, receives the report of a successful pass.
	OnDone func(*models.ReconcileReport)
}

func (j *ReconcileJob) Name() string { return "reconcile_shown_counts" }

func (j *ReconcileJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("trigger", j.Trigger)
	log.Info("starting background reconciliation")

	report, err := j.Reconciler.ReconcileShownCounts(ctx)
	if err != nil {
		return err
	}

	log.Info("reconciliation finished: checked=%d, fixed=%d, suspicious=%d",
		report.Checked, report.Fixed, len(report.Suspicious))
	if j.OnDone != nil {
		j.OnDone(report)
	}
	return nil
}
