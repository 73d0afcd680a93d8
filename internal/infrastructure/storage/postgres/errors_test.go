package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"medreg/internal/core/apperror"
)

func TestIsTransientPgError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock detected", &pgconn.PgError{Code: "40P01"}, true},
		{"lock not available", &pgconn.PgError{Code: "55P03"}, true},
		{"statement timeout", &pgconn.PgError{Code: "57014"}, true},
		{"connection failure class 08", &pgconn.PgError{Code: "08006"}, true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransientPgError(tt.err); got != tt.want {
				t.Errorf("IsTransientPgError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestWrapStoreError_TransientBecomesRetryable(t *testing.T) {
	cause := &pgconn.PgError{Code: "40P01"}

	err := WrapStoreError("lock bed", cause)
	appErr, ok := apperror.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != apperror.CodeTransient {
		t.Errorf("expected code %s, got %s", apperror.CodeTransient, appErr.Code)
	}
	if !errors.Is(err, cause) {
		t.Error("expected wrapped error to unwrap to the pg error")
	}
}

func TestWrapStoreError_OtherErrorsKeepContext(t *testing.T) {
	cause := errors.New("row scan failed")

	err := WrapStoreError("load patient", cause)
	if _, ok := apperror.AsAppError(err); ok {
		t.Fatal("non-transient store errors must not be classified")
	}
	if !errors.Is(err, cause) {
		t.Error("expected wrapped error to unwrap to the cause")
	}
	if got, want := err.Error(), fmt.Sprintf("load patient: %v", cause); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestWrapStoreError_Nil(t *testing.T) {
	if err := WrapStoreError("noop", nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}
