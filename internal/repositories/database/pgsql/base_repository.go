package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/finledger/finledger_core/internal/apperrors"
	"github.com/finledger/finledger_core/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BaseRepository provides common functionality for all repositories.
type BaseRepository struct {
	Pool        *pgxpool.Pool
	LockTimeout time.Duration
	PageSize    int
}

// defaultLimit substitutes the configured page size when the caller passes no
// usable limit.
func (r *BaseRepository) defaultLimit(limit int) int {
	if limit > 0 {
		return limit
	}
	if r.PageSize > 0 {
		return r.PageSize
	}
	return 20
}

// Begin starts a new database transaction.
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return tx, nil
}

// BeginWithLockTimeout starts a transaction with a bounded row-lock budget so
// a blocked FOR UPDATE surfaces as a retryable conflict instead of waiting
// indefinitely.
func (r *BaseRepository) BeginWithLockTimeout(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	timeout := r.LockTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	// SET LOCAL scopes the setting to this transaction only.
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", timeout.Milliseconds())); err != nil {
		_ = tx.Rollback(ctx)
		return nil, apperrors.NewAppError(500, "failed to set lock timeout", err)
	}
	return tx, nil
}

// Commit commits a transaction.
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", mapPgError(err))
	}
	return nil
}

// Rollback rolls back a transaction.
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, sql.ErrTxDone) && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

// partitionTable qualifies a table name with the partition schema of the
// handle. Identifiers are sanitized, never interpolated raw.
func partitionTable(p domain.PartitionHandle, table string) string {
	return pgx.Identifier{p.Schema(), table}.Sanitize()
}

// mapPgError translates PostgreSQL error codes onto the application taxonomy:
// lock timeouts, deadlocks and serialization failures are retryable (nothing
// committed), unique violations are duplicates.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "55P03": // lock_not_available
		return fmt.Errorf("%w: lock acquisition timed out: %v", apperrors.ErrConflictRetryable, err)
	case "40001": // serialization_failure
		return fmt.Errorf("%w: serialization failure: %v", apperrors.ErrConflictRetryable, err)
	case "40P01": // deadlock_detected
		return fmt.Errorf("%w: deadlock detected: %v", apperrors.ErrConflictRetryable, err)
	case "23505": // unique_violation
		return fmt.Errorf("%w: %v", apperrors.ErrDuplicate, err)
	}
	return err
}
