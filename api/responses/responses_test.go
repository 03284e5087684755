package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
	"github.com/truckbites/truckbites-backend/pkg/logger"
	"github.com/truckbites/truckbites-backend/pkg/types"
)

func newTestWriter() (*Writer, *bytes.Buffer) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})
	return NewWriter(logg), &buf
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.ErrorEnvelope {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding error envelope: %v", err)
	}
	return envelope
}

func TestErrorInternalLogsDumpWithoutLeaking(t *testing.T) {
	writer, logged := newTestWriter()
	rec := httptest.NewRecorder()

	cause := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "idx_orders_charge",
		Detail:         "Key (charge_id)=(pay_123) already exists.",
	}
	err := pkgerrors.Wrap(pkgerrors.CodeInternal, fmt.Errorf("inserting order: %w", cause), "checkout failed")

	writer.Error(context.Background(), rec, err)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	envelope := decodeError(t, rec)
	if envelope.Error.Code != string(pkgerrors.CodeInternal) {
		t.Fatalf("unexpected error code %s", envelope.Error.Code)
	}
	if strings.Contains(rec.Body.String(), "idx_orders_charge") {
		t.Fatal("driver detail must not leak into the response body")
	}

	logLine := logged.String()
	for _, want := range []string{"pg_code", "23505", "idx_orders_charge", "error_chain"} {
		if !strings.Contains(logLine, want) {
			t.Fatalf("expected log entry to carry %q, got %s", want, logLine)
		}
	}
}

func TestErrorClientCodesSkipErrorLog(t *testing.T) {
	writer, logged := newTestWriter()
	rec := httptest.NewRecorder()

	writer.Error(context.Background(), rec, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot move order from completed to accepted"))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	envelope := decodeError(t, rec)
	if envelope.Error.Message != "cannot move order from completed to accepted" {
		t.Fatalf("expected the typed message, got %q", envelope.Error.Message)
	}
	if strings.Contains(logged.String(), `"level":"error"`) {
		t.Fatalf("client errors must not be logged at error level, got %s", logged.String())
	}
}

func TestErrorWrapsUntypedErrors(t *testing.T) {
	writer, _ := newTestWriter()
	rec := httptest.NewRecorder()

	writer.Error(context.Background(), rec, fmt.Errorf("raw failure"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	envelope := decodeError(t, rec)
	if strings.Contains(envelope.Error.Message, "raw failure") {
		t.Fatal("internal cause must not leak into the response body")
	}
}
