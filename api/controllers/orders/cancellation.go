package orders

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/truckbites/truckbites-backend/api/validators"
)

// RequestCancellation handles POST /orders/me/{orderID}/request_cancellation.
func (c *Controller) RequestCancellation(w http.ResponseWriter, r *http.Request) {
	customerID, err := c.authedUser(r)
	if err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "order id")
	if err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	order, err := c.orders.RequestCancellation(r.Context(), customerID, orderID)
	if err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	c.writer.Success(w, http.StatusOK, toOrderView(order))
}
