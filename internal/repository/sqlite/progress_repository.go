package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/vytor/wordflash/internal/scheduler"
)

const progressColumns = `user_id, word_id, shown_count, correct_count, error_count, last_shown, last_shown_position, exp_error_rate`

type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new ProgressRepository implementation
func NewProgressRepository(db *sql.DB) repository.ProgressRepository {
	return &progressRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgress(row rowScanner, p *models.WordProgress) error {
	return row.Scan(&p.UserID, &p.WordID, &p.ShownCount, &p.CorrectCount, &p.ErrorCount, &p.LastShown, &p.LastShownPosition, &p.ExpErrorRate)
}

func (r *progressRepository) ListForUser(ctx context.Context, userID int64) (map[int64]models.WordProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")

	rows, err := r.db.QueryContext(ctx, `SELECT `+progressColumns+` FROM word_progress WHERE user_id = ?`, userID)
	if err != nil {
		log.Error("failed to query progress: %v", err)
		return nil, classify(err)
	}
	defer rows.Close()

	out := make(map[int64]models.WordProgress)
	for rows.Next() {
		var p models.WordProgress
		if err := scanProgress(rows, &p); err != nil {
			log.Error("failed to scan progress row: %v", err)
			return nil, err
		}
		out[p.WordID] = p
	}
	log.Debug("loaded %d progress rows: user_id=%d", len(out), userID)
	return out, classify(rows.Err())
}

func (r *progressRepository) Get(ctx context.Context, userID, wordID int64) (*models.WordProgress, error) {
	var p models.WordProgress
	err := scanProgress(r.db.QueryRowContext(ctx, `SELECT `+progressColumns+` FROM word_progress WHERE user_id = ? AND word_id = ?`, userID, wordID), &p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("progress_repo").Error("failed to get progress: %v", err)
		return nil, classify(err)
	}
	return &p, nil
}

func (r *progressRepository) RecentlyShown(ctx context.Context, userID int64, n int) ([]int64, error) {
	if n <= 0 {
		return nil, nil
	}
	log := logger.FromContext(ctx).WithPrefix("progress_repo")

	sqlStr, args, err := sqlBuilder.Select("word_id").
		From("word_progress").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("last_shown_position DESC", "last_shown DESC").
		Limit(uint64(n)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query recent words: %v", err)
		return nil, classify(err)
	}
	defer rows.Close()

	ids := make([]int64, 0, n)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, classify(rows.Err())
}

func (r *progressRepository) FindShownByRequest(ctx context.Context, userID int64, requestID string) (*models.ShownResult, error) {
	return findShownByRequest(ctx, r.db, userID, requestID)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func findShownByRequest(ctx context.Context, q queryer, userID int64, requestID string) (*models.ShownResult, error) {
	var (
		res     models.ShownResult
		payload sql.NullString
	)
	err := q.QueryRowContext(ctx, `
SELECT word_id, position, payload
FROM user_word_events
WHERE user_id = ? AND request_id = ? AND event_type = 'shown'
`, userID, requestID).Scan(&res.WordID, &res.Position, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, classify(err)
	}

	options, err := models.DecodeShownPayload([]byte(payload.String))
	if err != nil {
		return nil, err
	}
	res.Options = options
	res.Replayed = true

	err = scanProgress(q.QueryRowContext(ctx, `SELECT `+progressColumns+` FROM word_progress WHERE user_id = ? AND word_id = ?`, userID, res.WordID), &res.Progress)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, classify(err)
	}
	return &res, nil
}

func (r *progressRepository) CommitShown(ctx context.Context, c models.ShownCommit) (*models.ShownResult, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("committing shown: user_id=%d, word_id=%d, options=%d", c.UserID, c.WordID, len(c.Options))

	payload, err := models.EncodeShownPayload(c.Options)
	if err != nil {
		return nil, err
	}

	var result *models.ShownResult
	err = tx(ctx, r.db, func(tx *sql.Tx) error {
		if c.RequestID != "" {
			prev, err := findShownByRequest(ctx, tx, c.UserID, c.RequestID)
			if err == nil {
				result = prev
				return nil
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}

		var position int64
		err := tx.QueryRowContext(ctx, `
UPDATE users SET words_shown_counter = words_shown_counter + 1
WHERE id = ?
RETURNING words_shown_counter
`, c.UserID).Scan(&position)
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		if err != nil {
			return err
		}

		fresh := scheduler.ApplyShown(nil, c.UserID, c.WordID, position, c.At)
		var p models.WordProgress
		err = scanProgress(tx.QueryRowContext(ctx, `
INSERT INTO word_progress (`+progressColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, word_id) DO UPDATE SET
    shown_count = word_progress.shown_count + 1,
    last_shown = excluded.last_shown,
    last_shown_position = excluded.last_shown_position
RETURNING `+progressColumns,
			fresh.UserID, fresh.WordID, fresh.ShownCount, fresh.CorrectCount, fresh.ErrorCount,
			fresh.LastShown, fresh.LastShownPosition, fresh.ExpErrorRate), &p)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
INSERT INTO user_word_events (user_id, word_id, event_type, payload, request_id, position, created_at)
VALUES (?, ?, 'shown', ?, ?, ?, ?)
`, c.UserID, c.WordID, string(payload), nullString(c.RequestID), position, c.At)
		if err != nil {
			return err
		}

		result = &models.ShownResult{Progress: p, Position: position, WordID: c.WordID, Options: c.Options}
		return nil
	})
	if err != nil {
		log.Error("failed to commit shown: %v", err)
		return nil, err
	}
	if result.Replayed {
		log.Info("replayed shown commit: user_id=%d, request_id=%s, word_id=%d", c.UserID, c.RequestID, result.WordID)
	}
	return result, nil
}

func (r *progressRepository) CommitAnswer(ctx context.Context, c models.AnswerCommit) (*models.WordProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("committing answer: user_id=%d, word_id=%d, correct=%t", c.UserID, c.WordID, c.IsCorrect)

	// The insert branch is the defensive row for an answer without a prior exposure; its
	// exp_error_rate equals the outcome, which the update branch folds into the average.
	fresh := scheduler.NewProgressFromAnswer(c.UserID, c.WordID, c.IsCorrect, 0)

	var p models.WordProgress
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		err := scanProgress(tx.QueryRowContext(ctx, `
INSERT INTO word_progress (`+progressColumns+`)
VALUES (?, ?, ?, ?, ?, ?, COALESCE((SELECT words_shown_counter FROM users WHERE id = ?), 0), ?)
ON CONFLICT(user_id, word_id) DO UPDATE SET
    correct_count = word_progress.correct_count + excluded.correct_count,
    error_count = word_progress.error_count + excluded.error_count,
    exp_error_rate = (excluded.exp_error_rate + word_progress.exp_error_rate) / 2.0
RETURNING `+progressColumns,
			fresh.UserID, fresh.WordID, fresh.ShownCount, fresh.CorrectCount, fresh.ErrorCount,
			fresh.LastShown, c.UserID, fresh.ExpErrorRate), &p)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
INSERT INTO user_word_events (user_id, word_id, event_type, is_correct, created_at)
VALUES (?, ?, 'answered', ?, ?)
`, c.UserID, c.WordID, c.IsCorrect, c.At)
		return err
	})
	if err != nil {
		log.Error("failed to commit answer: %v", err)
		return nil, err
	}
	log.Debug("answer committed: user_id=%d, word_id=%d, correct=%d, errors=%d, rate=%.3f",
		p.UserID, p.WordID, p.CorrectCount, p.ErrorCount, p.ExpErrorRate)
	return &p, nil
}

func (r *progressRepository) EventsFor(ctx context.Context, userID, wordID int64) ([]models.UserWordEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, word_id, event_type, is_correct, payload, request_id, position, created_at
FROM user_word_events
WHERE user_id = ? AND word_id = ?
ORDER BY id
`, userID, wordID)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("progress_repo").Error("failed to query events: %v", err)
		return nil, classify(err)
	}
	defer rows.Close()

	var events []models.UserWordEvent
	for rows.Next() {
		var (
			e         models.UserWordEvent
			isCorrect sql.NullBool
			payload   sql.NullString
			requestID sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.WordID, &e.EventType, &isCorrect, &payload, &requestID, &e.Position, &e.CreatedAt); err != nil {
			return nil, err
		}
		if isCorrect.Valid {
			v := isCorrect.Bool
			e.IsCorrect = &v
		}
		if payload.Valid {
			e.Payload = []byte(payload.String)
		}
		e.RequestID = requestID.String
		events = append(events, e)
	}
	return events, classify(rows.Err())
}
