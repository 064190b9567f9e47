package worker

import (
	"context"

	"github.com/vytor/wordflash/internal/models"
)

// Reconciler defines the reconciliation pass run by background jobs.
// This avoids import cycles by not importing the services package
type Reconciler interface {
	ReconcileShownCounts(ctx context.Context) (*models.ReconcileReport, error)
}
