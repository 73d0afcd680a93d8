// Package sequence provides the PostgreSQL implementation of per-scope
// counters. This is the infrastructure layer - it implements
// core/sequence.Generator.
package sequence

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"medreg/internal/core/apperror"
	coresequence "medreg/internal/core/sequence"
	"medreg/internal/infrastructure/storage/postgres"
)

// Querier interface for database operations.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Service issues gapless per-scope numbers backed by the seq_counters table.
//
// Each scope has one dedicated counter row. Drawing a number is
// insert-if-absent, then SELECT ... FOR UPDATE, then UPDATE: the row lock
// serializes concurrent callers on the same scope, and the up-front insert
// closes the race between "no row found" and "first insert". Scanning
// previously issued identifiers for the maximum is deliberately avoided
// (string order is not numeric order).
type Service struct {
	txManager *postgres.TxManager

	// staticQuerier bypasses the tx manager; used by tests.
	staticQuerier Querier
}

// Ensure compile-time interface compliance.
var _ coresequence.Generator = (*Service)(nil)

// New creates a sequence service on top of the transaction manager.
// When a transaction is already in the context the counter update joins it,
// so a rolled-back registration never spends a number.
func New(txManager *postgres.TxManager) *Service {
	return &Service{txManager: txManager}
}

// NewWithQuerier creates a sequence service with a fixed querier.
// Use in tests.
func NewWithQuerier(querier Querier) *Service {
	return &Service{staticQuerier: querier}
}

func (s *Service) getQuerier(ctx context.Context) Querier {
	if s.staticQuerier != nil {
		return s.staticQuerier
	}
	return s.txManager.GetQuerier(ctx)
}

// Next implements core/sequence.Generator.
func (s *Service) Next(ctx context.Context, scopeKey string) (int64, error) {
	if scopeKey == "" {
		return 0, apperror.NewValidation("scope key is required")
	}

	// Outside a transaction, open one: lock, increment and write must be a
	// single atomic unit even for standalone callers.
	if s.txManager != nil && s.txManager.GetTx(ctx) == nil {
		var next int64
		err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			var innerErr error
			next, innerErr = s.nextLocked(ctx, scopeKey)
			return innerErr
		})
		return next, err
	}

	return s.nextLocked(ctx, scopeKey)
}

// nextLocked draws the next number under an exclusive row lock.
// Must run inside a transaction.
func (s *Service) nextLocked(ctx context.Context, scopeKey string) (int64, error) {
	q := s.getQuerier(ctx)

	_, err := q.Exec(ctx, `
		INSERT INTO seq_counters (scope_key, last_value)
		VALUES ($1, 0)
		ON CONFLICT (scope_key) DO NOTHING
	`, scopeKey)
	if err != nil {
		return 0, postgres.WrapStoreError("create counter", err)
	}

	var last int64
	err = q.QueryRow(ctx, `
		SELECT last_value FROM seq_counters
		WHERE scope_key = $1
		FOR UPDATE
	`, scopeKey).Scan(&last)
	if err != nil {
		return 0, postgres.WrapStoreError("lock counter", err)
	}

	next := last + 1

	_, err = q.Exec(ctx, `
		UPDATE seq_counters
		SET last_value = $2, updated_at = now()
		WHERE scope_key = $1
	`, scopeKey, next)
	if err != nil {
		return 0, postgres.WrapStoreError("advance counter", err)
	}

	return next, nil
}

// Set forces the counter for a scope to value (for migration purposes).
func (s *Service) Set(ctx context.Context, scopeKey string, value int64) error {
	if scopeKey == "" {
		return apperror.NewValidation("scope key is required")
	}
	if value < 0 {
		return apperror.NewValidation("counter value must not be negative").
			WithDetail("value", value)
	}

	q := s.getQuerier(ctx)
	_, err := q.Exec(ctx, `
		INSERT INTO seq_counters (scope_key, last_value)
		VALUES ($1, $2)
		ON CONFLICT (scope_key) DO UPDATE SET last_value = $2, updated_at = now()
	`, scopeKey, value)
	if err != nil {
		return postgres.WrapStoreError("set counter", err)
	}
	return nil
}

// PruneBefore deletes counter rows whose scope day is older than stamp
// (YYYYMMDD). Day-scoped counters stop being queried after rollover; this is
// retention maintenance, safe to run any time.
func (s *Service) PruneBefore(ctx context.Context, stamp string) (int64, error) {
	q := s.getQuerier(ctx)
	tag, err := q.Exec(ctx, `
		DELETE FROM seq_counters
		WHERE split_part(scope_key, ':', 2) < $1
	`, stamp)
	if err != nil {
		return 0, postgres.WrapStoreError("prune counters", err)
	}
	return tag.RowsAffected(), nil
}
