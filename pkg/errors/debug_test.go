package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestDumpExtractsPgxDetail(t *testing.T) {
	cause := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "idx_orders_charge",
		TableName:      "orders",
		Detail:         "Key (charge_id)=(pay_123) already exists.",
		Message:        "duplicate key value violates unique constraint",
	}
	err := Wrap(CodeInternal, fmt.Errorf("inserting order: %w", cause), "checkout failed")

	dump := Dump(err)
	if dump.Code != CodeInternal {
		t.Fatalf("expected code %s, got %s", CodeInternal, dump.Code)
	}
	if dump.PGCode != "23505" {
		t.Fatalf("expected pg code 23505, got %q", dump.PGCode)
	}
	if dump.PGConstraint != "idx_orders_charge" {
		t.Fatalf("expected constraint name, got %q", dump.PGConstraint)
	}
	if dump.PGTable != "orders" {
		t.Fatalf("expected table name, got %q", dump.PGTable)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected the full wrap chain, got %v", dump.Chain)
	}
}

func TestDumpExtractsPqDetail(t *testing.T) {
	dump := Dump(&pq.Error{Code: "40001", Message: "could not serialize access"})
	if dump.PGCode != "40001" {
		t.Fatalf("expected pg code 40001, got %q", dump.PGCode)
	}
	if dump.PGMessage != "could not serialize access" {
		t.Fatalf("unexpected pg message %q", dump.PGMessage)
	}
}

func TestDumpPlainError(t *testing.T) {
	dump := Dump(errors.New("boom"))
	if dump.TopMessage != "boom" {
		t.Fatalf("unexpected top message %q", dump.TopMessage)
	}
	if dump.PGCode != "" {
		t.Fatalf("expected no pg detail, got %q", dump.PGCode)
	}

	if empty := Dump(nil); empty.TopMessage != "" || empty.Chain != nil {
		t.Fatalf("expected zero dump for nil error, got %+v", empty)
	}
}
