package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestIsUniqueViolationPgxError(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "idx_orders_charge"}
	if !IsUniqueViolation(err) {
		t.Fatal("expected pgx 23505 to be a unique violation")
	}
	if !IsUniqueViolation(fmt.Errorf("inserting order: %w", err)) {
		t.Fatal("expected wrapped pgx 23505 to be a unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("foreign key violation is not a unique violation")
	}
}

func TestIsUniqueViolationPqError(t *testing.T) {
	if !IsUniqueViolation(&pq.Error{Code: "23505"}) {
		t.Fatal("expected pq 23505 to be a unique violation")
	}
	if IsUniqueViolation(&pq.Error{Code: "40001"}) {
		t.Fatal("serialization failure is not a unique violation")
	}
}

func TestIsUniqueViolationFallback(t *testing.T) {
	if IsUniqueViolation(nil) {
		t.Fatal("nil error is not a violation")
	}
	if !IsUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "charge_reconciliations_charge_id_key"`)) {
		t.Fatal("expected message fallback to match")
	}
	if IsUniqueViolation(errors.New("connection refused")) {
		t.Fatal("unrelated error is not a violation")
	}
}
