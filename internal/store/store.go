// internal/store/store.go
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"librakeep/internal/errs"
)

//go:embed schema.sql
var schema string

// Postgres error codes the transaction runner translates.
const (
	pqLockNotAvailable     = "55P03"
	pqQueryCanceled        = "57014"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
	pqUniqueViolation      = "23505"
)

// Store owns the database handle. Every composite mutation in the system goes
// through WithinTx so a reader can never observe a partial commit.
type Store struct {
	DB     *sqlx.DB
	tracer trace.Tracer
}

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{
		DB:     db,
		tracer: otel.Tracer("librakeep/store"),
	}, nil
}

// InitSchema applies the embedded schema. All statements are idempotent.
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// WithinTx runs fn inside a transaction with a bounded lock wait. Row locks
// taken by fn (SELECT ... FOR UPDATE) are held until commit, which is what
// serializes concurrent read-modify-writes on the same book. A lock or
// statement timeout surfaces as errs.ErrRetryable; in that case nothing was
// committed and the whole operation can be rerun from scratch.
func (s *Store) WithinTx(ctx context.Context, name string, fn func(tx *sqlx.Tx) error) error {
	ctx, span := s.tracer.Start(ctx, "store.tx",
		trace.WithAttributes(attribute.String("tx.name", name)),
	)
	defer span.End()

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "SET LOCAL lock_timeout = '3s'"); err != nil {
		return fmt.Errorf("set lock timeout: %w", err)
	}

	if err := fn(tx); err != nil {
		span.SetAttributes(attribute.Bool("tx.rolled_back", true))
		return translate(err)
	}

	if err := tx.Commit(); err != nil {
		span.SetAttributes(attribute.Bool("tx.rolled_back", true))
		return translate(fmt.Errorf("commit transaction: %w", err))
	}

	return nil
}

// translate maps driver-level failures onto the shared error taxonomy.
// Application sentinels pass through untouched.
func translate(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch string(pqErr.Code) {
	case pqLockNotAvailable, pqQueryCanceled, pqSerializationFailure, pqDeadlockDetected:
		return fmt.Errorf("%w: %v", errs.ErrRetryable, err)
	default:
		return err
	}
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation, optionally on the named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != pqUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// NotFound converts sql.ErrNoRows into the shared sentinel so services do not
// leak database/sql details to handlers.
func NotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errs.ErrNotFound
	}
	return err
}
