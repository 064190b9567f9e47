package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

type reconcileRepository struct {
	db *sqlx.DB
}

// NewReconcileRepository creates a new ReconcileRepository implementation
func NewReconcileRepository(db *sql.DB) repository.ReconcileRepository {
	return &reconcileRepository{db: sqlx.NewDb(db, "sqlite3")}
}

func (r *reconcileRepository) CountProgress(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM word_progress`); err != nil {
		logger.FromContext(ctx).WithPrefix("reconcile_repo").Error("failed to count progress rows: %v", err)
		return 0, classify(err)
	}
	return n, nil
}

func (r *reconcileRepository) ShownCountMismatches(ctx context.Context) ([]models.ShownMismatch, error) {
	log := logger.FromContext(ctx).WithPrefix("reconcile_repo")

	var out []models.ShownMismatch
	err := r.db.SelectContext(ctx, &out, `
SELECT wp.user_id, wp.word_id, wp.shown_count AS stored_shown, COUNT(e.id) AS event_shown
FROM word_progress wp
LEFT JOIN user_word_events e
    ON e.user_id = wp.user_id AND e.word_id = wp.word_id AND e.event_type = 'shown'
GROUP BY wp.id, wp.user_id, wp.word_id, wp.shown_count
HAVING wp.shown_count <> COUNT(e.id)
ORDER BY wp.user_id, wp.word_id
`)
	if err != nil {
		log.Error("failed to query shown count mismatches: %v", err)
		return nil, classify(err)
	}
	log.Debug("found %d shown count mismatches", len(out))
	return out, nil
}

func (r *reconcileRepository) ApplyCorrections(ctx context.Context, mismatches []models.ShownMismatch, at time.Time) ([]models.Correction, error) {
	log := logger.FromContext(ctx).WithPrefix("reconcile_repo")
	if len(mismatches) == 0 {
		return nil, nil
	}

	var corrections []models.Correction
	err := tx(ctx, r.db.DB, func(tx *sql.Tx) error {
		stx := &sqlx.Tx{Tx: tx, Mapper: r.db.Mapper}
		for _, m := range mismatches {
			var current struct {
				Stored int `db:"stored_shown"`
				Events int `db:"event_shown"`
			}
			// recount inside the transaction; the row may have moved since it was listed
			err := stx.GetContext(ctx, &current, `
SELECT wp.shown_count AS stored_shown,
       (SELECT COUNT(*) FROM user_word_events e
        WHERE e.user_id = wp.user_id AND e.word_id = wp.word_id AND e.event_type = 'shown') AS event_shown
FROM word_progress wp
WHERE wp.user_id = ? AND wp.word_id = ?
`, m.UserID, m.WordID)
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			if err != nil {
				return err
			}
			if current.Stored == current.Events {
				continue
			}

			if _, err := stx.ExecContext(ctx, `UPDATE word_progress SET shown_count = ? WHERE user_id = ? AND word_id = ?`,
				current.Events, m.UserID, m.WordID); err != nil {
				return err
			}

			c := models.Correction{
				UserID:      m.UserID,
				WordID:      m.WordID,
				Field:       "shown_count",
				OldValue:    current.Stored,
				NewValue:    current.Events,
				CorrectedAt: at,
			}
			if _, err := stx.NamedExecContext(ctx, `
INSERT INTO progress_corrections (user_id, word_id, field, old_value, new_value, corrected_at)
VALUES (:user_id, :word_id, :field, :old_value, :new_value, :corrected_at)
`, c); err != nil {
				return err
			}
			corrections = append(corrections, c)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to apply corrections: %v", err)
		return nil, err
	}
	return corrections, nil
}

func (r *reconcileRepository) SuspiciousRecords(ctx context.Context, ratio float64) ([]models.SuspiciousRecord, error) {
	var out []models.SuspiciousRecord
	err := r.db.SelectContext(ctx, &out, `
SELECT user_id, word_id, shown_count, correct_count, error_count
FROM word_progress
WHERE shown_count > (correct_count + error_count) * ?
ORDER BY user_id, word_id
`, ratio)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("reconcile_repo").Error("failed to query suspicious records: %v", err)
		return nil, classify(err)
	}
	return out, nil
}
