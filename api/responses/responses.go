package responses

import (
	"context"
	"encoding/json"
	"net/http"

	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
	"github.com/truckbites/truckbites-backend/pkg/logger"
	"github.com/truckbites/truckbites-backend/pkg/types"
)

// Writer renders the JSON envelopes and owns error translation.
type Writer struct {
	logger *logger.Logger
}

func NewWriter(logg *logger.Logger) *Writer {
	return &Writer{logger: logg}
}

// Success writes {"data": ...} with the given status.
func (w *Writer) Success(rw http.ResponseWriter, status int, data any) {
	writeJSON(rw, status, types.SuccessEnvelope{Data: data})
}

// Error translates any error into the envelope via the code taxonomy.
// Internal causes are logged but never leaked to the client.
func (w *Writer) Error(ctx context.Context, rw http.ResponseWriter, err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unhandled error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())
	if meta.HTTPStatus >= http.StatusInternalServerError {
		dump := pkgerrors.Dump(err)
		fields := map[string]any{
			"error_code":  dump.Code,
			"error_chain": dump.Chain,
		}
		if dump.PGCode != "" {
			fields["pg_code"] = dump.PGCode
			fields["pg_constraint"] = dump.PGConstraint
			fields["pg_table"] = dump.PGTable
			fields["pg_detail"] = dump.PGDetail
			fields["pg_message"] = dump.PGMessage
		}
		w.logger.Error(w.logger.WithFields(ctx, fields), "request failed", err)
	}

	apiErr := types.APIError{
		Code:    string(typed.Code()),
		Message: meta.PublicMessage,
	}
	if meta.DetailsAllowed {
		if msg := typed.Message(); msg != "" {
			apiErr.Message = msg
		}
		apiErr.Details = typed.Details()
	}

	writeJSON(rw, meta.HTTPStatus, types.ErrorEnvelope{Error: apiErr})
}

func writeJSON(rw http.ResponseWriter, status int, payload any) {
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(payload)
}
