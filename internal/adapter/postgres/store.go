package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"mesa-vesting/internal/core/domain"
	"mesa-vesting/internal/core/port"
)

const (
	sqlstateSerializationFailure = "40001"
	sqlstateDeadlockDetected     = "40P01"
)

// Store implements port.Store using pgxpool for PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ port.Store = (*Store)(nil)

// NewStore returns a new store instance.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Atomic runs fn in a serializable transaction. The settings row is locked
// first so that every unit of work on the engine is serialized.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// lock engine
	if _, err = tx.Exec(ctx, `SELECT id FROM engine_settings WHERE id = 1 FOR UPDATE`); err != nil {
		return mapError(err)
	}
	if err = fn(ctx, &repoTx{tx: tx}); err != nil {
		return mapError(err)
	}
	if err = tx.Commit(ctx); err != nil {
		return mapError(err)
	}
	return nil
}

// mapError turns serialization failures into a retryable conflict. Domain
// errors and everything else pass through.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlstateSerializationFailure, sqlstateDeadlockDetected:
			return domain.Wrap(domain.CodeConflict, "concurrent update, retry the operation", err)
		}
	}
	return err
}
