package instruments

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/truckbites/truckbites-backend/api/middleware"
	"github.com/truckbites/truckbites-backend/api/responses"
	"github.com/truckbites/truckbites-backend/api/validators"
	"github.com/truckbites/truckbites-backend/internal/payments"
	"github.com/truckbites/truckbites-backend/pkg/db/models"
	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
)

type orchestrator interface {
	Attach(ctx context.Context, req payments.AttachRequest) (*models.PaymentInstrument, error)
	Detach(ctx context.Context, customerID, instrumentID uuid.UUID) error
}

type instrumentLister interface {
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.PaymentInstrument, error)
}

type attachRequest struct {
	CardToken  string `json:"card_token" validate:"required"`
	Cardholder string `json:"cardholder_name"`
}

type instrumentView struct {
	ID       uuid.UUID `json:"id"`
	Brand    string    `json:"brand"`
	Last4    string    `json:"last4"`
	ExpMonth int       `json:"exp_month"`
	ExpYear  int       `json:"exp_year"`
}

// Controller exposes the saved-card surface.
type Controller struct {
	payments orchestrator
	store    instrumentLister
	writer   *responses.Writer
}

func NewController(pay orchestrator, store instrumentLister, writer *responses.Writer) *Controller {
	return &Controller{payments: pay, store: store, writer: writer}
}

// Attach handles POST /customers/me/payment_instruments.
func (c *Controller) Attach(w http.ResponseWriter, r *http.Request) {
	customerID, err := c.authedUser(r)
	if err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	var req attachRequest
	if err := validators.DecodeAndValidate(r, &req); err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	instrument, err := c.payments.Attach(r.Context(), payments.AttachRequest{
		CustomerID:  customerID,
		SourceToken: req.CardToken,
		Cardholder:  req.Cardholder,
	})
	if err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	c.writer.Success(w, http.StatusCreated, toView(instrument))
}

// List handles GET /customers/me/payment_instruments.
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	customerID, err := c.authedUser(r)
	if err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	rows, err := c.store.ListByCustomer(r.Context(), customerID)
	if err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	views := make([]instrumentView, 0, len(rows))
	for i := range rows {
		views = append(views, toView(&rows[i]))
	}
	c.writer.Success(w, http.StatusOK, views)
}

// Detach handles DELETE /customers/me/payment_instruments/{instrumentID}.
func (c *Controller) Detach(w http.ResponseWriter, r *http.Request) {
	customerID, err := c.authedUser(r)
	if err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	instrumentID, err := validators.ParsePathUUID(chi.URLParam(r, "instrumentID"), "instrument id")
	if err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	if err := c.payments.Detach(r.Context(), customerID, instrumentID); err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	c.writer.Success(w, http.StatusOK, map[string]string{"status": "detached"})
}

func (c *Controller) authedUser(r *http.Request) (uuid.UUID, error) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return userID, nil
}

func toView(instrument *models.PaymentInstrument) instrumentView {
	return instrumentView{
		ID:       instrument.ID,
		Brand:    instrument.Brand,
		Last4:    instrument.Last4,
		ExpMonth: instrument.ExpMonth,
		ExpYear:  instrument.ExpYear,
	}
}
