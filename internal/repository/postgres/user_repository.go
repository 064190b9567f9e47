package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

type userRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a PostgreSQL UserRepository.
func NewUserRepository(db *pgxpool.Pool) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Ensure(ctx context.Context, userID int64) (*models.User, error) {
	tag, err := r.db.Exec(ctx, `INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, userID)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("user_repo").Error("failed to ensure user: %v", err)
		return nil, classify(err)
	}
	if tag.RowsAffected() > 0 {
		logger.FromContext(ctx).WithPrefix("user_repo").Info("created user row: user_id=%d", userID)
	}
	return r.Get(ctx, userID)
}

func (r *userRepository) Get(ctx context.Context, userID int64) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx, `
		SELECT id, username, words_shown_counter, created_at
		FROM users
		WHERE id = $1
	`, userID).Scan(&u.ID, &u.Username, &u.WordsShownCounter, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, classify(err)
	}
	return &u, nil
}

func (r *userRepository) SessionCounter(ctx context.Context, userID int64) (int64, error) {
	var counter int64
	err := r.db.QueryRow(ctx, `SELECT words_shown_counter FROM users WHERE id = $1`, userID).Scan(&counter)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, repository.ErrNotFound
	}
	if err != nil {
		return 0, classify(err)
	}
	return counter, nil
}
