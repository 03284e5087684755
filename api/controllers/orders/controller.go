package orders

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/truckbites/truckbites-backend/api/middleware"
	"github.com/truckbites/truckbites-backend/api/responses"
	"github.com/truckbites/truckbites-backend/internal/checkout"
	ordersvc "github.com/truckbites/truckbites-backend/internal/orders"
	"github.com/truckbites/truckbites-backend/pkg/db/models"
	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
)

type checkoutService interface {
	Checkout(ctx context.Context, customerID uuid.UUID, input checkout.Input) (*models.Order, error)
}

type orderService interface {
	UpdateStatus(ctx context.Context, operatorUserID, orderID uuid.UUID, input ordersvc.UpdateStatusInput) (*models.Order, error)
	RequestCancellation(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error)
	GetForCustomer(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, filter ordersvc.ListFilter) ([]models.Order, error)
	ListForOperator(ctx context.Context, operatorUserID uuid.UUID, filter ordersvc.ListFilter) ([]models.Order, error)
}

// Controller exposes the order endpoints.
type Controller struct {
	checkout checkoutService
	orders   orderService
	writer   *responses.Writer
}

func NewController(checkoutSvc checkoutService, orderSvc orderService, writer *responses.Writer) *Controller {
	return &Controller{
		checkout: checkoutSvc,
		orders:   orderSvc,
		writer:   writer,
	}
}

func (c *Controller) authedUser(r *http.Request) (uuid.UUID, error) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return userID, nil
}
