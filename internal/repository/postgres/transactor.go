package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vytor/wordflash/internal/logger"
)

type Transactor struct {
	pool *pgxpool.Pool
}

func NewTransactor(pool *pgxpool.Pool) *Transactor {
	return &Transactor{pool: pool}
}

// WithinTx runs fn in a transaction, committing when it returns nil.
// Errors come back classified onto the repository sentinels.
func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	log := logger.FromContext(ctx).WithPrefix("repo")

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		log.Error("failed to begin transaction: %v", err)
		return classify(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, tx); err != nil {
		log.Debug("transaction rolled back due to error: %v", err)
		return classify(err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error("failed to commit transaction: %v", err)
		return classify(err)
	}
	return nil
}
