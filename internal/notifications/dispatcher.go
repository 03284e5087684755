package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/truckbites/truckbites-backend/pkg/db/models"
	"github.com/truckbites/truckbites-backend/pkg/email"
	"github.com/truckbites/truckbites-backend/pkg/enums"
	"github.com/truckbites/truckbites-backend/pkg/logger"
	"github.com/truckbites/truckbites-backend/pkg/metrics"
)

type pusher interface {
	Push(ctx context.Context, userID uuid.UUID, event enums.NotificationEvent, data any) error
}

type mailer interface {
	Send(ctx context.Context, msg email.Message) error
}

type emailDirectory interface {
	EmailFor(ctx context.Context, userID uuid.UUID) (string, error)
}

// OrderEvent is the data payload for every order notification.
type OrderEvent struct {
	OrderUID    uuid.UUID `json:"order_uid"`
	OrderNumber int64     `json:"order_number"`
	FoodTruckID uuid.UUID `json:"food_truck_id"`
	Status      string    `json:"status"`
	TotalCents  int64     `json:"total_cents"`
	Reason      *string   `json:"reason,omitempty"`
}

// Dispatcher fans out order events to realtime push and email. Every delivery
// is best-effort: failures are aggregated, logged, and counted, but the order
// flow never observes them.
type Dispatcher struct {
	push    pusher
	mail    mailer
	users   emailDirectory
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewDispatcher(push pusher, mail mailer, users emailDirectory, logg *logger.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		push:    push,
		mail:    mail,
		users:   users,
		logger:  logg,
		metrics: m,
	}
}

// OrderCreated notifies the operator of a new order and emails the customer a
// confirmation.
func (d *Dispatcher) OrderCreated(ctx context.Context, order *models.Order, operatorUserID uuid.UUID) {
	event := eventFromOrder(order)
	var errs error

	if err := d.push.Push(ctx, operatorUserID, enums.EventNewOrderForOperator, event); err != nil {
		d.countFailure("push")
		errs = multierr.Append(errs, fmt.Errorf("push to operator: %w", err))
	}

	subject := fmt.Sprintf("Order #%d confirmed", order.OrderNumber)
	body := fmt.Sprintf("Your order #%d has been placed. Total: $%.2f.",
		order.OrderNumber, float64(order.TotalCents)/100)
	if err := d.email(ctx, order.CustomerID, subject, body); err != nil {
		d.countFailure("email")
		errs = multierr.Append(errs, fmt.Errorf("email to customer: %w", err))
	}

	d.logOutcome(ctx, order, enums.EventNewOrderForOperator, errs)
}

// StatusChanged notifies the customer that the order moved to a new status.
// For refunded terminal states the email mentions the refund.
func (d *Dispatcher) StatusChanged(ctx context.Context, order *models.Order) {
	event := eventFromOrder(order)
	var errs error

	if err := d.push.Push(ctx, order.CustomerID, enums.EventOrderStatusUpdateForCustomer, event); err != nil {
		d.countFailure("push")
		errs = multierr.Append(errs, fmt.Errorf("push to customer: %w", err))
	}

	if order.Status == enums.OrderStatusRejected || order.Status == enums.OrderStatusCancelled {
		subject := fmt.Sprintf("Order #%d %s", order.OrderNumber, order.Status)
		body := fmt.Sprintf("Your order #%d was %s and your payment of $%.2f has been refunded.",
			order.OrderNumber, order.Status, float64(order.TotalCents)/100)
		if err := d.email(ctx, order.CustomerID, subject, body); err != nil {
			d.countFailure("email")
			errs = multierr.Append(errs, fmt.Errorf("email to customer: %w", err))
		}
	}

	d.logOutcome(ctx, order, enums.EventOrderStatusUpdateForCustomer, errs)
}

// CancellationRequested notifies the operator that the customer wants out.
func (d *Dispatcher) CancellationRequested(ctx context.Context, order *models.Order, operatorUserID uuid.UUID) {
	event := eventFromOrder(order)
	var errs error

	if err := d.push.Push(ctx, operatorUserID, enums.EventCustomerCancellationRequest, event); err != nil {
		d.countFailure("push")
		errs = multierr.Append(errs, fmt.Errorf("push to operator: %w", err))
	}

	d.logOutcome(ctx, order, enums.EventCustomerCancellationRequest, errs)
}

func (d *Dispatcher) email(ctx context.Context, userID uuid.UUID, subject, body string) error {
	if d.mail == nil {
		return nil
	}
	to, err := d.users.EmailFor(ctx, userID)
	if err != nil {
		return err
	}
	return d.mail.Send(ctx, email.Message{
		To:       to,
		Subject:  subject,
		TextBody: body,
	})
}

func (d *Dispatcher) countFailure(channel string) {
	if d.metrics != nil {
		d.metrics.NotificationErrors.WithLabelValues(channel).Inc()
	}
}

func (d *Dispatcher) logOutcome(ctx context.Context, order *models.Order, event enums.NotificationEvent, errs error) {
	ctx = d.logger.WithOrderID(ctx, order.ID.String())
	ctx = d.logger.WithField(ctx, "event", event.String())
	if errs != nil {
		d.logger.Warn(ctx, fmt.Sprintf("notification delivery incomplete: %v", errs))
		return
	}
	d.logger.Info(ctx, "notifications dispatched")
}

func eventFromOrder(order *models.Order) OrderEvent {
	return OrderEvent{
		OrderUID:    order.ID,
		OrderNumber: order.OrderNumber,
		FoodTruckID: order.FoodTruckID,
		Status:      order.Status.String(),
		TotalCents:  order.TotalCents,
		Reason:      order.Reason,
	}
}
