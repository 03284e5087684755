package controllers

import (
	"context"
	"net/http"

	"github.com/truckbites/truckbites-backend/api/responses"
	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Health serves liveness and readiness probes.
type Health struct {
	db     pinger
	redis  pinger
	writer *responses.Writer
}

func NewHealth(db, redis pinger, writer *responses.Writer) *Health {
	return &Health{db: db, redis: redis, writer: writer}
}

// Live always succeeds while the process is serving.
func (h *Health) Live(w http.ResponseWriter, r *http.Request) {
	h.writer.Success(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready checks the datastores this service cannot run without.
func (h *Health) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.writer.Error(r.Context(), w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
		return
	}
	if err := h.redis.Ping(r.Context()); err != nil {
		h.writer.Error(r.Context(), w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable"))
		return
	}
	h.writer.Success(w, http.StatusOK, map[string]string{"status": "ready"})
}
