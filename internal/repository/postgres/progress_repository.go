package postgres

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/vytor/wordflash/internal/scheduler"
)

const progressColumns = `user_id, word_id, shown_count, correct_count, error_count, last_shown, last_shown_position, exp_error_rate`

type progressRepository struct {
	db *pgxpool.Pool
	tx *Transactor
}

// NewProgressRepository creates a PostgreSQL ProgressRepository.
func NewProgressRepository(db *pgxpool.Pool, tx *Transactor) repository.ProgressRepository {
	return &progressRepository{db: db, tx: tx}
}

func scanProgress(row pgx.Row, p *models.WordProgress) error {
	return row.Scan(&p.UserID, &p.WordID, &p.ShownCount, &p.CorrectCount, &p.ErrorCount, &p.LastShown, &p.LastShownPosition, &p.ExpErrorRate)
}

func (r *progressRepository) ListForUser(ctx context.Context, userID int64) (map[int64]models.WordProgress, error) {
	rows, err := r.db.Query(ctx, `SELECT `+progressColumns+` FROM word_progress WHERE user_id = $1`, userID)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("progress_repo").Error("failed to query progress: %v", err)
		return nil, classify(err)
	}
	defer rows.Close()

	out := make(map[int64]models.WordProgress)
	for rows.Next() {
		var p models.WordProgress
		if err := scanProgress(rows, &p); err != nil {
			return nil, err
		}
		out[p.WordID] = p
	}
	return out, classify(rows.Err())
}

func (r *progressRepository) Get(ctx context.Context, userID, wordID int64) (*models.WordProgress, error) {
	var p models.WordProgress
	err := scanProgress(r.db.QueryRow(ctx, `SELECT `+progressColumns+` FROM word_progress WHERE user_id = $1 AND word_id = $2`, userID, wordID), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, classify(err)
	}
	return &p, nil
}

func (r *progressRepository) RecentlyShown(ctx context.Context, userID int64, n int) ([]int64, error) {
	if n <= 0 {
		return nil, nil
	}

	sqlStr, args, err := sqlBuilder.Select("word_id").
		From("word_progress").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("last_shown_position DESC", "last_shown DESC").
		Limit(uint64(n)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("progress_repo").Error("failed to query recent words: %v", err)
		return nil, classify(err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	return ids, classify(err)
}

func (r *progressRepository) FindShownByRequest(ctx context.Context, userID int64, requestID string) (*models.ShownResult, error) {
	return findShownByRequest(ctx, r.db, userID, requestID)
}

func findShownByRequest(ctx context.Context, q querier, userID int64, requestID string) (*models.ShownResult, error) {
	var (
		res     models.ShownResult
		payload []byte
	)
	err := q.QueryRow(ctx, `
		SELECT word_id, position, payload
		FROM user_word_events
		WHERE user_id = $1 AND request_id = $2 AND event_type = 'shown'
	`, userID, requestID).Scan(&res.WordID, &res.Position, &payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, classify(err)
	}

	options, err := models.DecodeShownPayload(payload)
	if err != nil {
		return nil, err
	}
	res.Options = options
	res.Replayed = true

	err = scanProgress(q.QueryRow(ctx, `SELECT `+progressColumns+` FROM word_progress WHERE user_id = $1 AND word_id = $2`, userID, res.WordID), &res.Progress)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
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
	err = r.tx.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		// the row lock orders concurrent shows for one user and makes the replay check race free
		var locked int64
		err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, c.UserID).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		if err != nil {
			return err
		}

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
		if err := tx.QueryRow(ctx, `
			UPDATE users SET words_shown_counter = words_shown_counter + 1
			WHERE id = $1
			RETURNING words_shown_counter
		`, c.UserID).Scan(&position); err != nil {
			return err
		}

		fresh := scheduler.ApplyShown(nil, c.UserID, c.WordID, position, c.At)
		var p models.WordProgress
		err = scanProgress(tx.QueryRow(ctx, `
			INSERT INTO word_progress (`+progressColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (user_id, word_id) DO UPDATE SET
				shown_count = word_progress.shown_count + 1,
				last_shown = excluded.last_shown,
				last_shown_position = excluded.last_shown_position
			RETURNING `+progressColumns,
			fresh.UserID, fresh.WordID, fresh.ShownCount, fresh.CorrectCount, fresh.ErrorCount,
			fresh.LastShown, fresh.LastShownPosition, fresh.ExpErrorRate), &p)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO user_word_events (user_id, word_id, event_type, payload, request_id, position, created_at)
			VALUES ($1, $2, 'shown', $3, $4, $5, $6)
		`, c.UserID, c.WordID, string(payload), nullString(c.RequestID), position, c.At); err != nil {
			return err
		}

		result = &models.ShownResult{Progress: p, Position: position, WordID: c.WordID, Options: c.Options}
		return nil
	})
	if err != nil {
		log.Error("failed to commit shown: %v", err)
		return nil, err
	}
	return result, nil
}

func (r *progressRepository) CommitAnswer(ctx context.Context, c models.AnswerCommit) (*models.WordProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("committing answer: user_id=%d, word_id=%d, correct=%t", c.UserID, c.WordID, c.IsCorrect)

	fresh := scheduler.NewProgressFromAnswer(c.UserID, c.WordID, c.IsCorrect, 0)

	var p models.WordProgress
	err := r.tx.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		err := scanProgress(tx.QueryRow(ctx, `
			INSERT INTO word_progress (`+progressColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, COALESCE((SELECT words_shown_counter FROM users WHERE id = $1), 0), $7)
			ON CONFLICT (user_id, word_id) DO UPDATE SET
				correct_count = word_progress.correct_count + excluded.correct_count,
				error_count = word_progress.error_count + excluded.error_count,
				exp_error_rate = (excluded.exp_error_rate + word_progress.exp_error_rate) / 2.0
			RETURNING `+progressColumns,
			fresh.UserID, fresh.WordID, fresh.ShownCount, fresh.CorrectCount, fresh.ErrorCount,
			fresh.LastShown, fresh.ExpErrorRate), &p)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO user_word_events (user_id, word_id, event_type, is_correct, created_at)
			VALUES ($1, $2, 'answered', $3, $4)
		`, c.UserID, c.WordID, c.IsCorrect, c.At)
		return err
	})
	if err != nil {
		log.Error("failed to commit answer: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *progressRepository) EventsFor(ctx context.Context, userID, wordID int64) ([]models.UserWordEvent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, word_id, event_type, is_correct, payload, COALESCE(request_id, ''), position, created_at
		FROM user_word_events
		WHERE user_id = $1 AND word_id = $2
		ORDER BY id
	`, userID, wordID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var events []models.UserWordEvent
	for rows.Next() {
		var (
			e         models.UserWordEvent
			eventType string
			payload   []byte
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.WordID, &eventType, &e.IsCorrect, &payload, &e.RequestID, &e.Position, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.EventType = models.EventType(eventType)
		e.Payload = payload
		events = append(events, e)
	}
	return events, classify(rows.Err())
}
