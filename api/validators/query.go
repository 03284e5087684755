package validators

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
)

// ParseQueryInt reads an optional integer query parameter.
func ParseQueryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be an integer", name))
	}
	if value < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must not be negative", name))
	}
	return value, nil
}

// ParsePathUUID parses a UUID path segment.
func ParsePathUUID(raw, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be a valid uuid", name))
	}
	return id, nil
}
