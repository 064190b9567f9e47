package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vytor/wordflash/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// classify maps pgx errors onto the repository sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrConflict) || errors.Is(err, repository.ErrUnavailable) || errors.Is(err, repository.ErrNotFound) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return fmt.Errorf("%w: %w", repository.ErrConflict, err)
		case "23505":
			// a concurrent request with the same request id won the insert
			if pgErr.ConstraintName == "idx_events_request" {
				return fmt.Errorf("%w: %w", repository.ErrConflict, err)
			}
		case "57P01", "57P02", "57P03", "53300":
			return fmt.Errorf("%w: %w", repository.ErrUnavailable, err)
		}
		if len(pgErr.Code) == 5 && pgErr.Code[:2] == "08" {
			return fmt.Errorf("%w: %w", repository.ErrUnavailable, err)
		}
		return err
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %w", repository.ErrUnavailable, err)
	}
	return err
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
