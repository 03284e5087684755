package orders

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/truckbites/truckbites-backend/api/validators"
	ordersvc "github.com/truckbites/truckbites-backend/internal/orders"
	"github.com/truckbites/truckbites-backend/pkg/enums"
	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
)

// ListMine handles GET /orders/me: the customer's order history.
func (c *Controller) ListMine(w http.ResponseWriter, r *http.Request) {
	customerID, err := c.authedUser(r)
	if err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	filter, err := listFilterFrom(r)
	if err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	rows, err := c.orders.ListForCustomer(r.Context(), customerID, *filter)
	if err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	c.writer.Success(w, http.StatusOK, toOrderViews(rows))
}

// GetMine handles GET /orders/me/{orderID}.
func (c *Controller) GetMine(w http.ResponseWriter, r *http.Request) {
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

	order, err := c.orders.GetForCustomer(r.Context(), customerID, orderID)
	if err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	c.writer.Success(w, http.StatusOK, toOrderView(order))
}

// ListForOperator handles GET /operators/me/orders: the truck's queue.
func (c *Controller) ListForOperator(w http.ResponseWriter, r *http.Request) {
	operatorID, err := c.authedUser(r)
	if err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	filter, err := listFilterFrom(r)
	if err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	rows, err := c.orders.ListForOperator(r.Context(), operatorID, *filter)
	if err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	c.writer.Success(w, http.StatusOK, toOrderViews(rows))
}

func listFilterFrom(r *http.Request) (*ordersvc.ListFilter, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0)
	if err != nil {
		return nil, err
	}
	offset, err := validators.ParseQueryInt(r, "offset", 0)
	if err != nil {
		return nil, err
	}

	filter := &ordersvc.ListFilter{Limit: limit, Offset: offset}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filter.Status = &status
	}
	return filter, nil
}
