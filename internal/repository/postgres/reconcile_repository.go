package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

type reconcileRepository struct {
	db *pgxpool.Pool
	tx *Transactor
}

// NewReconcileRepository creates a PostgreSQL ReconcileRepository.
func NewReconcileRepository(db *pgxpool.Pool, tx *Transactor) repository.ReconcileRepository {
	return &reconcileRepository{db: db, tx: tx}
}

func (r *reconcileRepository) CountProgress(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM word_progress`).Scan(&n); err != nil {
		return 0, classify(err)
	}
	return n, nil
}

func (r *reconcileRepository) ShownCountMismatches(ctx context.Context) ([]models.ShownMismatch, error) {
	rows, err := r.db.Query(ctx, `
		SELECT wp.user_id, wp.word_id, wp.shown_count AS stored_shown, COUNT(e.id)::int AS event_shown
		FROM word_progress wp
		LEFT JOIN user_word_events e
			ON e.user_id = wp.user_id AND e.word_id = wp.word_id AND e.event_type = 'shown'
		GROUP BY wp.id, wp.user_id, wp.word_id, wp.shown_count
		HAVING wp.shown_count <> COUNT(e.id)
		ORDER BY wp.user_id, wp.word_id
	`)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("reconcile_repo").Error("failed to query shown count mismatches: %v", err)
		return nil, classify(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[models.ShownMismatch])
	return out, classify(err)
}

func (r *reconcileRepository) ApplyCorrections(ctx context.Context, mismatches []models.ShownMismatch, at time.Time) ([]models.Correction, error) {
	if len(mismatches) == 0 {
		return nil, nil
	}

	var corrections []models.Correction
	err := r.tx.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		corrections = corrections[:0]
		for _, m := range mismatches {
			var stored, events int
			// lock the row and recount; it may have moved since it was listed
			err := tx.QueryRow(ctx, `
				SELECT wp.shown_count,
					(SELECT COUNT(*) FROM user_word_events e
					 WHERE e.user_id = wp.user_id AND e.word_id = wp.word_id AND e.event_type = 'shown')::int
				FROM word_progress wp
				WHERE wp.user_id = $1 AND wp.word_id = $2
				FOR UPDATE
			`, m.UserID, m.WordID).Scan(&stored, &events)
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			if err != nil {
				return err
			}
			if stored == events {
				continue
			}

			if _, err := tx.Exec(ctx, `UPDATE word_progress SET shown_count = $1 WHERE user_id = $2 AND word_id = $3`,
				events, m.UserID, m.WordID); err != nil {
				return err
			}

			c := models.Correction{
				UserID:      m.UserID,
				WordID:      m.WordID,
				Field:       "shown_count",
				OldValue:    stored,
				NewValue:    events,
				CorrectedAt: at,
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO progress_corrections (user_id, word_id, field, old_value, new_value, corrected_at)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, c.UserID, c.WordID, c.Field, c.OldValue, c.NewValue, c.CorrectedAt); err != nil {
				return err
			}
			corrections = append(corrections, c)
		}
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).WithPrefix("reconcile_repo").Error("failed to apply corrections: %v", err)
		return nil, err
	}
	return corrections, nil
}

func (r *reconcileRepository) SuspiciousRecords(ctx context.Context, ratio float64) ([]models.SuspiciousRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id, word_id, shown_count, correct_count, error_count
		FROM word_progress
		WHERE shown_count > (correct_count + error_count) * $1::double precision
		ORDER BY user_id, word_id
	`, ratio)
	if err != nil {
		return nil, classify(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[models.SuspiciousRecord])
	return out, classify(err)
}
