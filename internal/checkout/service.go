package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/truckbites/truckbites-backend/internal/delivery"
	"github.com/truckbites/truckbites-backend/internal/payments"
	"github.com/truckbites/truckbites-backend/internal/pricing"
	"github.com/truckbites/truckbites-backend/pkg/db/models"
	"github.com/truckbites/truckbites-backend/pkg/enums"
	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
	"github.com/truckbites/truckbites-backend/pkg/logger"
	"github.com/truckbites/truckbites-backend/pkg/metrics"
	"github.com/truckbites/truckbites-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type truckStore interface {
	FindByID(ctx context.Context, truckID uuid.UUID) (*models.FoodTruck, error)
	FindForUpdate(ctx context.Context, tx *gorm.DB, truckID uuid.UUID) (*models.FoodTruck, error)
}

type pricer interface {
	ValidateAndPrice(ctx context.Context, truckID uuid.UUID, lines []pricing.LineInput) (*pricing.Result, error)
	ValidateAndPriceTx(ctx context.Context, tx *gorm.DB, truckID uuid.UUID, lines []pricing.LineInput) (*pricing.Result, error)
}

type deliveryResolver interface {
	Resolve(ctx context.Context, customerID uuid.UUID, truck *models.FoodTruck, req delivery.Request) (*delivery.Resolution, error)
}

type paymentGateway interface {
	Charge(ctx context.Context, req payments.ChargeRequest) (types.ChargeID, error)
	Refund(ctx context.Context, req payments.RefundRequest) (types.RefundID, error)
}

type orderWriter interface {
	Create(ctx context.Context, tx *gorm.DB, order *models.Order) error
}

type reconciler interface {
	Record(ctx context.Context, row *models.ChargeReconciliation) error
}

type notifier interface {
	OrderCreated(ctx context.Context, order *models.Order, operatorUserID uuid.UUID)
}

type keyReserver interface {
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
}

// idempotencyTTL outlives any sane client retry window. The gateway enforces
// the same key on the charge itself; this reservation just rejects duplicates
// before money moves.
const idempotencyTTL = 24 * time.Hour

// Service coordinates the checkout transaction. The charge is captured before
// the truck lock is taken so gateway latency never serializes a truck's
// traffic; any failure after the capture triggers a compensating refund, and a
// failed refund is flagged for reconciliation.
type Service struct {
	tx        txRunner
	trucks    truckStore
	pricer    pricer
	delivery  deliveryResolver
	payments  paymentGateway
	orders    orderWriter
	reconcile reconciler
	notify    notifier
	keys      keyReserver
	logger    *logger.Logger
	metrics   *metrics.Metrics

	taxRate  decimal.Decimal
	currency enums.Currency
}

func NewService(
	tx txRunner,
	trucks truckStore,
	priceValidator pricer,
	deliveryResolver deliveryResolver,
	gateway paymentGateway,
	orders orderWriter,
	reconcile reconciler,
	notify notifier,
	keys keyReserver,
	logg *logger.Logger,
	m *metrics.Metrics,
	taxRate decimal.Decimal,
	currency enums.Currency,
) *Service {
	return &Service{
		tx:        tx,
		trucks:    trucks,
		pricer:    priceValidator,
		delivery:  deliveryResolver,
		payments:  gateway,
		orders:    orders,
		reconcile: reconcile,
		notify:    notify,
		keys:      keys,
		logger:    logg,
		metrics:   m,
		taxRate:   taxRate,
		currency:  currency,
	}
}

type pricedCheckout struct {
	truck            *models.FoodTruck
	lines            []pricing.LineSnapshot
	subtotalCents    int64
	taxCents         int64
	deliveryFeeCents int64
	totalCents       int64
	deliveryAddress  *types.Address
}

// Checkout runs the full order transaction and returns the committed order.
func (s *Service) Checkout(ctx context.Context, customerID uuid.UUID, input Input) (*models.Order, error) {
	started := time.Now()
	order, err := s.checkout(ctx, customerID, input)
	s.observe(started, err)
	return order, err
}

func (s *Service) checkout(ctx context.Context, customerID uuid.UUID, input Input) (*models.Order, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	ctx = s.logger.WithTruckID(ctx, input.FoodTruckID.String())

	if err := s.reserveKey(ctx, customerID, input.IdempotencyKey); err != nil {
		return nil, err
	}

	priced, err := s.preflight(ctx, customerID, input)
	if err != nil {
		return nil, err
	}

	chargeID, err := s.payments.Charge(ctx, payments.ChargeRequest{
		CustomerID:     customerID,
		AmountCents:    priced.totalCents,
		Currency:       s.currency,
		InstrumentID:   input.Payment.InstrumentID,
		SourceToken:    input.Payment.SourceToken,
		SaveCard:       input.Payment.SaveCard,
		IdempotencyKey: input.IdempotencyKey,
		Note:           fmt.Sprintf("order at %s", priced.truck.Name),
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodePaymentDeclined && s.metrics != nil {
			s.metrics.PaymentDeclines.Inc()
		}
		return nil, err
	}

	order, err := s.commitOrder(ctx, customerID, input, priced, chargeID)
	if err != nil {
		s.compensate(ctx, customerID, priced, chargeID, err)
		return nil, err
	}

	s.notify.OrderCreated(ctx, order, priced.truck.OwnerUserID)
	return order, nil
}

// preflight runs every check that needs no lock: truck status, pricing,
// delivery eligibility, minimum order value, and the money math.
func (s *Service) preflight(ctx context.Context, customerID uuid.UUID, input Input) (*pricedCheckout, error) {
	truck, err := s.trucks.FindByID(ctx, input.FoodTruckID)
	if err != nil {
		return nil, err
	}
	if truck.CurrentStatus != enums.TruckStatusOnline {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("truck is %s and not accepting orders", truck.CurrentStatus))
	}

	result, err := s.pricer.ValidateAndPrice(ctx, truck.ID, input.Items)
	if err != nil {
		return nil, err
	}

	priced := &pricedCheckout{
		truck:         truck,
		lines:         result.Lines,
		subtotalCents: result.SubtotalCents,
	}

	if input.FulfillmentType == enums.FulfillmentTypeDelivery {
		resolution, err := s.delivery.Resolve(ctx, customerID, truck, input.Delivery)
		if err != nil {
			return nil, err
		}
		if priced.subtotalCents < truck.DeliveryMinimumCents {
			return nil, pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("subtotal $%.2f is below the $%.2f delivery minimum",
					cents(priced.subtotalCents), cents(truck.DeliveryMinimumCents)))
		}
		priced.deliveryFeeCents = resolution.FeeCents
		addr := resolution.Address
		priced.deliveryAddress = &addr
	}

	priced.taxCents = taxFor(priced.subtotalCents, s.taxRate)
	priced.totalCents = priced.subtotalCents + priced.taxCents + priced.deliveryFeeCents
	return priced, nil
}

// commitOrder holds the truck row lock only for the re-validation and insert.
func (s *Service) commitOrder(ctx context.Context, customerID uuid.UUID, input Input, priced *pricedCheckout, chargeID types.ChargeID) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		locked, err := s.trucks.FindForUpdate(ctx, tx, input.FoodTruckID)
		if err != nil {
			return err
		}
		if locked.CurrentStatus != enums.TruckStatusOnline {
			return pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("truck went %s before the order could be placed", locked.CurrentStatus))
		}

		recheck, err := s.pricer.ValidateAndPriceTx(ctx, tx, locked.ID, input.Items)
		if err != nil {
			return err
		}
		if recheck.SubtotalCents != priced.subtotalCents {
			return pkgerrors.New(pkgerrors.CodeConflict,
				"menu prices changed while the order was being placed")
		}

		order = s.buildOrder(customerID, input, priced, chargeID)
		return s.orders.Create(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// compensate refunds a captured charge after a failed insert. If the refund
// also fails the charge is flagged for reconciliation; the customer-facing
// error stays the original failure.
func (s *Service) compensate(ctx context.Context, customerID uuid.UUID, priced *pricedCheckout, chargeID types.ChargeID, cause error) {
	ctx = s.logger.WithField(ctx, "charge_id", chargeID.String())
	s.logger.Warn(ctx, fmt.Sprintf("order insert failed after capture, refunding: %v", cause))

	_, refundErr := s.payments.Refund(ctx, payments.RefundRequest{
		ChargeID:       chargeID,
		AmountCents:    priced.totalCents,
		Currency:       s.currency,
		Reason:         "checkout rolled back",
		IdempotencyKey: fmt.Sprintf("compensate-%s", chargeID),
	})
	if refundErr == nil {
		if s.metrics != nil {
			s.metrics.RefundsIssued.WithLabelValues("checkout_rollback").Inc()
		}
		return
	}

	s.logger.Error(ctx, "compensating refund failed, flagging charge for reconciliation", refundErr)
	if s.metrics != nil {
		s.metrics.ReconciliationRows.Inc()
	}
	row := &models.ChargeReconciliation{
		ChargeID:    chargeID,
		CustomerID:  customerID,
		FoodTruckID: priced.truck.ID,
		AmountCents: priced.totalCents,
		Detail:      fmt.Sprintf("insert failed (%v); refund failed (%v)", cause, refundErr),
	}
	if recordErr := s.reconcile.Record(ctx, row); recordErr != nil {
		s.logger.Error(ctx, "recording charge reconciliation failed", recordErr)
	}
}

func (s *Service) buildOrder(customerID uuid.UUID, input Input, priced *pricedCheckout, chargeID types.ChargeID) *models.Order {
	now := time.Now().UTC()
	readyAt := now.Add(time.Duration(priced.truck.PrepTimeMinutes) * time.Minute)

	order := &models.Order{
		CustomerID:       customerID,
		FoodTruckID:      priced.truck.ID,
		FulfillmentType:  input.FulfillmentType,
		Status:           enums.OrderStatusPendingConfirmation,
		Currency:         s.currency,
		SubtotalCents:    priced.subtotalCents,
		TaxCents:         priced.taxCents,
		DeliveryFeeCents: priced.deliveryFeeCents,
		TotalCents:       priced.totalCents,
		DeliveryAddress:  priced.deliveryAddress,
		ChargeID:         chargeID,
		RefundStatus:     enums.RefundStatusNone,
		OrderTime:        now,
		EstimatedReadyAt: &readyAt,
	}
	if input.FulfillmentType == enums.FulfillmentTypeDelivery {
		deliveredAt := readyAt.Add(time.Duration(priced.truck.DeliveryTimeMinutes) * time.Minute)
		order.EstimatedDeliveryAt = &deliveredAt
	}

	for _, line := range priced.lines {
		item := models.OrderItem{
			MenuItemID:     line.MenuItemID,
			Name:           line.Name,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
			LineTotalCents: line.LineTotalCents,
		}
		for _, option := range line.Options {
			item.Options = append(item.Options, models.OrderItemOption{
				MenuItemOptionID:     option.MenuItemOptionID,
				Name:                 option.Name,
				PriceAdjustmentCents: option.PriceAdjustmentCents,
			})
		}
		order.Items = append(order.Items, item)
	}
	return order
}

// reserveKey claims the customer's idempotency key before the charge. A key
// already claimed means a duplicate submission. Redis being down does not
// block checkout; the gateway still enforces the key on the charge.
func (s *Service) reserveKey(ctx context.Context, customerID uuid.UUID, key string) error {
	reserved, err := s.keys.SetNX(ctx, fmt.Sprintf("checkout:%s:%s", customerID, key), "1", idempotencyTTL)
	if err != nil {
		s.logger.Warn(ctx, fmt.Sprintf("idempotency reservation unavailable, relying on gateway: %v", err))
		return nil
	}
	if !reserved {
		return pkgerrors.New(pkgerrors.CodeIdempotency, "an order with this idempotency key was already submitted")
	}
	return nil
}

func (s *Service) observe(started time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.CheckoutDuration.Observe(time.Since(started).Seconds())
	outcome := "success"
	if err != nil {
		outcome = "failure"
		if typed := pkgerrors.As(err); typed != nil {
			outcome = string(typed.Code())
		}
	}
	s.metrics.CheckoutAttempts.WithLabelValues(outcome).Inc()
}

func validateInput(input Input) error {
	if !input.FulfillmentType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "fulfillment_type must be pickup or delivery")
	}
	if input.IdempotencyKey == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "idempotency_key is required")
	}
	if input.Payment.InstrumentID == nil && input.Payment.SourceToken == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "a payment method is required")
	}
	return nil
}

// taxFor rounds half-up on the cent boundary so totals are exact int64 math.
func taxFor(subtotalCents int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(subtotalCents).Mul(rate).Round(0).IntPart()
}

func cents(v int64) float64 {
	return float64(v) / 100
}
