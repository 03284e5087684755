package orders

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/truckbites/truckbites-backend/api/validators"
	ordersvc "github.com/truckbites/truckbites-backend/internal/orders"
	"github.com/truckbites/truckbites-backend/pkg/enums"
	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
)

// UpdateStatus handles PUT /operators/me/orders/{orderID}/status.
func (c *Controller) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	operatorID, err := c.authedUser(r)
	if err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "order id")
	if err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	var req updateStatusRequest
	if err := validators.DecodeAndValidate(r, &req); err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	newStatus, err := enums.ParseOrderStatus(req.NewStatus)
	if err != nil {
		c.writer.Error(r.Context(), w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid new_status"))
		return
	}

	order, err := c.orders.UpdateStatus(r.Context(), operatorID, orderID, ordersvc.UpdateStatusInput{
		NewStatus:                  newStatus,
		Reason:                     req.Reason,
		UpdatedEstimatedReadyAt:    req.UpdatedEstimatedReadyTime,
		UpdatedEstimatedDeliveryAt: req.UpdatedEstimatedDeliveryAt,
	})
	if err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	c.writer.Success(w, http.StatusOK, toOrderView(order))
}
