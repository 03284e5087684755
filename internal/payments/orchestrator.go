package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	sq "github.com/square/square-go-sdk"

	"github.com/truckbites/truckbites-backend/pkg/db/models"
	"github.com/truckbites/truckbites-backend/pkg/enums"
	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
	"github.com/truckbites/truckbites-backend/pkg/logger"
	"github.com/truckbites/truckbites-backend/pkg/square"
	"github.com/truckbites/truckbites-backend/pkg/types"
)

type gateway interface {
	CreatePayment(ctx context.Context, params square.PaymentCreateParams) (*sq.Payment, error)
	RefundPayment(ctx context.Context, params square.RefundCreateParams) (*sq.PaymentRefund, error)
	CreateCustomer(ctx context.Context, params square.CustomerCreateParams) (*sq.Customer, error)
	CreateCard(ctx context.Context, params square.CardCreateParams) (*sq.Card, error)
	DisableCard(ctx context.Context, cardID string) (*sq.Card, error)
}

type instrumentStore interface {
	FindByID(ctx context.Context, instrumentID, customerID uuid.UUID) (*models.PaymentInstrument, error)
	Create(ctx context.Context, instrument *models.PaymentInstrument) error
	MarkDetached(ctx context.Context, instrumentID uuid.UUID) error
}

// ChargeRequest describes a single capture. Exactly one of InstrumentID or
// SourceToken identifies the payment method. IdempotencyKey comes from the
// client and is forwarded to the gateway so a retried checkout cannot double
// charge.
type ChargeRequest struct {
	CustomerID     uuid.UUID
	AmountCents    int64
	Currency       enums.Currency
	InstrumentID   *uuid.UUID
	SourceToken    string
	SaveCard       bool
	IdempotencyKey string
	Note           string
}

// RefundRequest describes a refund against a captured charge.
type RefundRequest struct {
	ChargeID       types.ChargeID
	AmountCents    int64
	Currency       enums.Currency
	Reason         string
	IdempotencyKey string
}

// AttachRequest vaults a new card for later charges.
type AttachRequest struct {
	CustomerID  uuid.UUID
	SourceToken string
	Cardholder  string
}

// Orchestrator owns every gateway interaction. Charges, refunds, and card
// lifecycle all funnel through it so id handling stays in one place.
type Orchestrator struct {
	gateway     gateway
	instruments instrumentStore
	logger      *logger.Logger
}

func NewOrchestrator(gw gateway, instruments instrumentStore, logg *logger.Logger) *Orchestrator {
	return &Orchestrator{
		gateway:     gw,
		instruments: instruments,
		logger:      logg,
	}
}

// Charge captures a payment and returns the gateway charge id. A declined
// card surfaces as PAYMENT_DECLINED; gateway outages as DEPENDENCY_ERROR.
func (o *Orchestrator) Charge(ctx context.Context, req ChargeRequest) (types.ChargeID, error) {
	if req.AmountCents <= 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "charge amount must be positive")
	}
	if strings.TrimSpace(req.IdempotencyKey) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "idempotency_key is required")
	}

	sourceID, gatewayCustomerID, err := o.resolveSource(ctx, req)
	if err != nil {
		return "", err
	}

	payment, err := o.gateway.CreatePayment(ctx, square.PaymentCreateParams{
		AmountCents:    req.AmountCents,
		Currency:       req.Currency.String(),
		CustomerID:     gatewayCustomerID,
		SourceID:       sourceID,
		IdempotencyKey: req.IdempotencyKey,
		Note:           req.Note,
	})
	if err != nil {
		return "", err
	}

	chargeID := types.ChargeID(paymentID(payment))
	if chargeID.IsZero() {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "gateway returned a payment without an id")
	}

	if req.SaveCard && req.InstrumentID == nil {
		o.saveCardAfterCharge(ctx, req, chargeID, gatewayCustomerID)
	}

	return chargeID, nil
}

// Refund reverses a captured charge, fully when AmountCents is zero.
func (o *Orchestrator) Refund(ctx context.Context, req RefundRequest) (types.RefundID, error) {
	if req.ChargeID.IsZero() {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "no charge id available to refund")
	}

	refund, err := o.gateway.RefundPayment(ctx, square.RefundCreateParams{
		PaymentID:      req.ChargeID.String(),
		AmountCents:    req.AmountCents,
		Currency:       req.Currency.String(),
		Reason:         req.Reason,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return "", err
	}

	refundID := types.RefundID(refund.GetID())
	if refundID.IsZero() {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "gateway returned a refund without an id")
	}
	return refundID, nil
}

// Attach vaults a card token and persists the instrument reference.
func (o *Orchestrator) Attach(ctx context.Context, req AttachRequest) (*models.PaymentInstrument, error) {
	if strings.TrimSpace(req.SourceToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card token is required")
	}

	gatewayCustomerID, err := o.ensureGatewayCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	card, err := o.gateway.CreateCard(ctx, square.CardCreateParams{
		CustomerID:     gatewayCustomerID,
		SourceID:       req.SourceToken,
		CardholderName: req.Cardholder,
		ReferenceID:    req.CustomerID.String(),
	})
	if err != nil {
		return nil, err
	}

	instrument := instrumentFromCard(req.CustomerID, gatewayCustomerID, card)
	if err := o.instruments.Create(ctx, instrument); err != nil {
		return nil, err
	}
	return instrument, nil
}

// Detach disables the card at the gateway, then soft-deletes the local row.
func (o *Orchestrator) Detach(ctx context.Context, customerID, instrumentID uuid.UUID) error {
	instrument, err := o.instruments.FindByID(ctx, instrumentID, customerID)
	if err != nil {
		return err
	}
	if _, err := o.gateway.DisableCard(ctx, instrument.GatewayCardID); err != nil {
		return err
	}
	return o.instruments.MarkDetached(ctx, instrument.ID)
}

func (o *Orchestrator) resolveSource(ctx context.Context, req ChargeRequest) (sourceID, gatewayCustomerID string, err error) {
	switch {
	case req.InstrumentID != nil && strings.TrimSpace(req.SourceToken) != "":
		return "", "", pkgerrors.New(pkgerrors.CodeValidation,
			"provide either a saved payment instrument or a card token, not both")
	case req.InstrumentID != nil:
		instrument, err := o.instruments.FindByID(ctx, *req.InstrumentID, req.CustomerID)
		if err != nil {
			return "", "", err
		}
		return instrument.GatewayCardID, instrument.GatewayCustomerID, nil
	case strings.TrimSpace(req.SourceToken) != "":
		return req.SourceToken, "", nil
	default:
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "a payment method is required")
	}
}

// saveCardAfterCharge vaults the card used for a one-time payment. Failures
// are logged and swallowed; the charge already succeeded and the order must
// proceed.
func (o *Orchestrator) saveCardAfterCharge(ctx context.Context, req ChargeRequest, chargeID types.ChargeID, gatewayCustomerID string) {
	ctx = o.logger.WithFields(ctx, map[string]any{
		"customer_id": req.CustomerID,
		"charge_id":   chargeID.String(),
	})

	if gatewayCustomerID == "" {
		resolved, err := o.ensureGatewayCustomer(ctx, req.CustomerID)
		if err != nil {
			o.logger.Warn(ctx, fmt.Sprintf("save card skipped, customer setup failed: %v", err))
			return
		}
		gatewayCustomerID = resolved
	}

	card, err := o.gateway.CreateCard(ctx, square.CardCreateParams{
		CustomerID:  gatewayCustomerID,
		SourceID:    chargeID.String(),
		ReferenceID: req.CustomerID.String(),
	})
	if err != nil {
		o.logger.Warn(ctx, fmt.Sprintf("save card skipped, vaulting failed: %v", err))
		return
	}

	instrument := instrumentFromCard(req.CustomerID, gatewayCustomerID, card)
	if err := o.instruments.Create(ctx, instrument); err != nil {
		o.logger.Warn(ctx, fmt.Sprintf("save card skipped, persist failed: %v", err))
	}
}

func (o *Orchestrator) ensureGatewayCustomer(ctx context.Context, customerID uuid.UUID) (string, error) {
	customer, err := o.gateway.CreateCustomer(ctx, square.CustomerCreateParams{
		ReferenceID: customerID.String(),
	})
	if err != nil {
		return "", err
	}
	id := stringValue(customer.GetID())
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "gateway returned a customer without an id")
	}
	return id, nil
}

func instrumentFromCard(customerID uuid.UUID, gatewayCustomerID string, card *sq.Card) *models.PaymentInstrument {
	instrument := &models.PaymentInstrument{
		CustomerID:        customerID,
		GatewayCardID:     stringValue(card.GetID()),
		GatewayCustomerID: gatewayCustomerID,
		Last4:             stringValue(card.GetLast4()),
	}
	if brand := card.GetCardBrand(); brand != nil {
		instrument.Brand = string(*brand)
	}
	if month := card.GetExpMonth(); month != nil {
		instrument.ExpMonth = int(*month)
	}
	if year := card.GetExpYear(); year != nil {
		instrument.ExpYear = int(*year)
	}
	return instrument
}

func paymentID(payment *sq.Payment) string {
	if payment == nil {
		return ""
	}
	return stringValue(payment.GetID())
}

func stringValue(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
