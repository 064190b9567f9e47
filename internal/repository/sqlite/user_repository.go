package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository implementation
func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Ensure(ctx context.Context, userID int64) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")

	res, err := r.db.ExecContext(ctx, `INSERT INTO users (id) VALUES (?) ON CONFLICT(id) DO NOTHING`, userID)
	if err != nil {
		log.Error("failed to ensure user: %v", err)
		return nil, classify(err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Info("created user row: user_id=%d", userID)
	}
	return r.Get(ctx, userID)
}

func (r *userRepository) Get(ctx context.Context, userID int64) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, `
SELECT id, username, words_shown_counter, created_at
FROM users
WHERE id = ?
`, userID).Scan(&u.ID, &u.Username, &u.WordsShownCounter, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("user_repo").Error("failed to get user: %v", err)
		return nil, classify(err)
	}
	return &u, nil
}

func (r *userRepository) SessionCounter(ctx context.Context, userID int64) (int64, error) {
	var counter int64
	err := r.db.QueryRowContext(ctx, `SELECT words_shown_counter FROM users WHERE id = ?`, userID).Scan(&counter)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, repository.ErrNotFound
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("user_repo").Error("failed to read session counter: %v", err)
		return 0, classify(err)
	}
	return counter, nil
}
