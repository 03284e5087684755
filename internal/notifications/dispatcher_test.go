package notifications

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/truckbites/truckbites-backend/pkg/db/models"
	"github.com/truckbites/truckbites-backend/pkg/email"
	"github.com/truckbites/truckbites-backend/pkg/enums"
	"github.com/truckbites/truckbites-backend/pkg/logger"
)

type pushCall struct {
	userID uuid.UUID
	event  enums.NotificationEvent
}

type stubPusher struct {
	calls []pushCall
	err   error
}

func (s *stubPusher) Push(_ context.Context, userID uuid.UUID, event enums.NotificationEvent, _ any) error {
	s.calls = append(s.calls, pushCall{userID: userID, event: event})
	return s.err
}

type stubMailer struct {
	sent []email.Message
	err  error
}

func (s *stubMailer) Send(_ context.Context, msg email.Message) error {
	s.sent = append(s.sent, msg)
	return s.err
}

type stubDirectory struct {
	email string
	err   error
}

func (s *stubDirectory) EmailFor(_ context.Context, _ uuid.UUID) (string, error) {
	return s.email, s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func sampleOrder(status enums.OrderStatus) *models.Order {
	return &models.Order{
		ID:          uuid.New(),
		OrderNumber: 1042,
		CustomerID:  uuid.New(),
		FoodTruckID: uuid.New(),
		Status:      status,
		TotalCents:  2750,
	}
}

func TestOrderCreatedPushesToOperatorAndEmailsCustomer(t *testing.T) {
	push := &stubPusher{}
	mail := &stubMailer{}
	dir := &stubDirectory{email: "customer@example.com"}
	operatorID := uuid.New()
	order := sampleOrder(enums.OrderStatusPendingConfirmation)

	d := NewDispatcher(push, mail, dir, testLogger(), nil)
	d.OrderCreated(context.Background(), order, operatorID)

	if len(push.calls) != 1 {
		t.Fatalf("expected 1 push, got %d", len(push.calls))
	}
	if push.calls[0].userID != operatorID || push.calls[0].event != enums.EventNewOrderForOperator {
		t.Fatalf("unexpected push %+v", push.calls[0])
	}
	if len(mail.sent) != 1 || mail.sent[0].To != "customer@example.com" {
		t.Fatalf("expected confirmation email, got %+v", mail.sent)
	}
}

func TestStatusChangedPushesToCustomer(t *testing.T) {
	push := &stubPusher{}
	mail := &stubMailer{}
	order := sampleOrder(enums.OrderStatusPreparing)

	d := NewDispatcher(push, mail, &stubDirectory{email: "c@example.com"}, testLogger(), nil)
	d.StatusChanged(context.Background(), order)

	if len(push.calls) != 1 || push.calls[0].userID != order.CustomerID {
		t.Fatalf("expected push to customer, got %+v", push.calls)
	}
	if push.calls[0].event != enums.EventOrderStatusUpdateForCustomer {
		t.Fatalf("unexpected event %s", push.calls[0].event)
	}
	if len(mail.sent) != 0 {
		t.Fatalf("non-terminal status should not email, got %+v", mail.sent)
	}
}

func TestStatusChangedEmailsOnRejection(t *testing.T) {
	push := &stubPusher{}
	mail := &stubMailer{}
	order := sampleOrder(enums.OrderStatusRejected)

	d := NewDispatcher(push, mail, &stubDirectory{email: "c@example.com"}, testLogger(), nil)
	d.StatusChanged(context.Background(), order)

	if len(mail.sent) != 1 {
		t.Fatalf("expected refund email, got %d", len(mail.sent))
	}
}

func TestDeliveryFailuresAreSwallowed(t *testing.T) {
	push := &stubPusher{err: errors.New("redis down")}
	mail := &stubMailer{err: errors.New("sendgrid down")}
	order := sampleOrder(enums.OrderStatusPendingConfirmation)

	d := NewDispatcher(push, mail, &stubDirectory{email: "c@example.com"}, testLogger(), nil)
	// Must not panic or propagate anything.
	d.OrderCreated(context.Background(), order, uuid.New())
	d.StatusChanged(context.Background(), order)
	d.CancellationRequested(context.Background(), order, uuid.New())
}

func TestCancellationRequestedPushesToOperator(t *testing.T) {
	push := &stubPusher{}
	operatorID := uuid.New()
	order := sampleOrder(enums.OrderStatusCancellationRequested)

	d := NewDispatcher(push, &stubMailer{}, &stubDirectory{}, testLogger(), nil)
	d.CancellationRequested(context.Background(), order, operatorID)

	if len(push.calls) != 1 || push.calls[0].event != enums.EventCustomerCancellationRequest {
		t.Fatalf("expected cancellation push, got %+v", push.calls)
	}
	if push.calls[0].userID != operatorID {
		t.Fatalf("expected push to operator, got %s", push.calls[0].userID)
	}
}
