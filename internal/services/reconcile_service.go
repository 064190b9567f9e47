package services

import (
	"context"
	"sync"
	"time"

	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/vytor/wordflash/internal/scheduler"
)

// maxSuspiciousLogged caps the per-record warnings after a pass.
const maxSuspiciousLogged = 10

// ReconcileService repairs shown_count drift against the event log
type ReconcileService interface {
	ReconcileShownCounts(ctx context.Context) (*models.ReconcileReport, error)
	// Check reports the first drifted row as an INVARIANT_VIOLATION without changing anything.
	Check(ctx context.Context) ([]models.ShownMismatch, error)
}

type reconcileService struct {
	repo  repository.ReconcileRepository
	retry RetryPolicy
	now   func() time.Time
	mu    sync.Mutex
}

// NewReconcileService creates a new ReconcileService
func NewReconcileService(repo repository.ReconcileRepository, retry RetryPolicy) ReconcileService {
	return &reconcileService{repo: repo, retry: retry, now: time.Now}
}

func (s *reconcileService) ReconcileShownCounts(ctx context.Context) (*models.ReconcileReport, error) {
	log := logger.FromContext(ctx).WithPrefix("reconcile")

	// the cron job and the admin endpoint can overlap; passes run one at a time
	s.mu.Lock()
	defer s.mu.Unlock()

	report := &models.ReconcileReport{StartedAt: s.now()}

	checked, err := s.repo.CountProgress(ctx)
	if err != nil {
		log.Error("failed to count progress rows: %v", err)
		return nil, storeError(err, "word_progress", "*")
	}
	report.Checked = checked
	log.Info("found %d progress records to check", checked)

	err = withRetry(ctx, s.retry, "reconcile", func(ctx context.Context) error {
		mismatches, err := s.repo.ShownCountMismatches(ctx)
		if err != nil {
			return err
		}
		corrections, err := s.repo.ApplyCorrections(ctx, mismatches, s.now())
		if err != nil {
			return err
		}
		report.Corrections = corrections
		return nil
	})
	if err != nil {
		log.Error("failed to reconcile shown counts: %v", err)
		return nil, storeError(err, "word_progress", "*")
	}

	for _, c := range report.Corrections {
		log.Info("fixed user %d, word %d: %d -> %d", c.UserID, c.WordID, c.OldValue, c.NewValue)
	}
	report.Fixed = len(report.Corrections)
	log.Info("fixed %d out of %d records", report.Fixed, report.Checked)

	suspicious, err := s.repo.SuspiciousRecords(ctx, scheduler.SuspiciousRatio)
	if err != nil {
		log.Error("failed to query suspicious records: %v", err)
		return nil, storeError(err, "word_progress", "*")
	}
	// the query only narrows by ratio; the rule itself lives in the scheduler
	report.Suspicious = make([]models.SuspiciousRecord, 0, len(suspicious))
	for _, r := range suspicious {
		if scheduler.IsSuspicious(r.ShownCount, r.CorrectCount+r.ErrorCount) {
			report.Suspicious = append(report.Suspicious, r)
		}
	}
	suspicious = report.Suspicious
	if len(suspicious) > 0 {
		log.Warn("found %d suspicious records where shown_count is much higher than correct_count + error_count", len(suspicious))
		for _, r := range suspicious[:min(len(suspicious), maxSuspiciousLogged)] {
			log.Warn("user %d, word %d: shown=%d, correct=%d, error=%d", r.UserID, r.WordID, r.ShownCount, r.CorrectCount, r.ErrorCount)
		}
	}

	report.FinishedAt = s.now()
	return report, nil
}

func (s *reconcileService) Check(ctx context.Context) ([]models.ShownMismatch, error) {
	mismatches, err := s.repo.ShownCountMismatches(ctx)
	if err != nil {
		return nil, storeError(err, "word_progress", "*")
	}
	if len(mismatches) > 0 {
		m := mismatches[0]
		return mismatches, errors.NewInvariantViolationError(m.UserID, m.WordID, m.StoredShown, m.EventShown)
	}
	return nil, nil
}
