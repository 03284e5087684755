package orders

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/truckbites/truckbites-backend/internal/payments"
	"github.com/truckbites/truckbites-backend/pkg/db/models"
	"github.com/truckbites/truckbites-backend/pkg/enums"
	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
	"github.com/truckbites/truckbites-backend/pkg/logger"
	"github.com/truckbites/truckbites-backend/pkg/types"
)

type stubTx struct {
	err error
}

func (s *stubTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	if err := fn(nil); err != nil {
		return err
	}
	return s.err
}

type stubOrderStore struct {
	order    *models.Order
	findErr  error
	applied  []StatusUpdate
	applyErr error
}

func (s *stubOrderStore) FindForUpdate(_ context.Context, _ *gorm.DB, _ uuid.UUID) (*models.Order, error) {
	return s.order, s.findErr
}

func (s *stubOrderStore) ApplyStatus(_ context.Context, _ *gorm.DB, _ uuid.UUID, update StatusUpdate) error {
	if s.applyErr != nil {
		return s.applyErr
	}
	s.applied = append(s.applied, update)
	return nil
}

func (s *stubOrderStore) FindForCustomer(_ context.Context, _, _ uuid.UUID) (*models.Order, error) {
	return s.order, s.findErr
}

func (s *stubOrderStore) ListForCustomer(_ context.Context, _ uuid.UUID, _ ListFilter) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrderStore) ListForTruck(_ context.Context, _ uuid.UUID, _ ListFilter) ([]models.Order, error) {
	return nil, nil
}

type stubTruckReader struct {
	truck *models.FoodTruck
	err   error
}

func (s *stubTruckReader) FindByID(_ context.Context, _ uuid.UUID) (*models.FoodTruck, error) {
	return s.truck, s.err
}

func (s *stubTruckReader) FindByOwner(_ context.Context, _ uuid.UUID) (*models.FoodTruck, error) {
	return s.truck, s.err
}

type stubRefunder struct {
	refundID types.RefundID
	err      error
	calls    []payments.RefundRequest
}

func (s *stubRefunder) Refund(_ context.Context, req payments.RefundRequest) (types.RefundID, error) {
	s.calls = append(s.calls, req)
	return s.refundID, s.err
}

type stubNotifier struct {
	statusChanged []enums.OrderStatus
	cancellations int
}

func (s *stubNotifier) StatusChanged(_ context.Context, order *models.Order) {
	s.statusChanged = append(s.statusChanged, order.Status)
}

func (s *stubNotifier) CancellationRequested(_ context.Context, _ *models.Order, _ uuid.UUID) {
	s.cancellations++
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func pendingOrder(truckID uuid.UUID) *models.Order {
	return &models.Order{
		ID:              uuid.New(),
		CustomerID:      uuid.New(),
		FoodTruckID:     truckID,
		FulfillmentType: enums.FulfillmentTypePickup,
		Status:          enums.OrderStatusPendingConfirmation,
		Currency:        enums.CurrencyUSD,
		TotalCents:      2750,
		ChargeID:        "pay_123",
	}
}

func newService(store *stubOrderStore, trucks *stubTruckReader, refunds *stubRefunder, notify *stubNotifier) *Service {
	return NewService(&stubTx{}, store, trucks, refunds, notify, testLogger(), nil)
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected *errors.Error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, typed.Code(), err)
	}
}

func TestUpdateStatusAcceptStampsTimestamp(t *testing.T) {
	truck := &models.FoodTruck{ID: uuid.New(), OwnerUserID: uuid.New()}
	store := &stubOrderStore{order: pendingOrder(truck.ID)}
	notify := &stubNotifier{}

	s := newService(store, &stubTruckReader{truck: truck}, &stubRefunder{}, notify)
	updated, err := s.UpdateStatus(context.Background(), truck.OwnerUserID, store.order.ID, UpdateStatusInput{
		NewStatus: enums.OrderStatusAccepted,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != enums.OrderStatusAccepted {
		t.Fatalf("expected accepted, got %s", updated.Status)
	}
	if updated.AcceptedAt == nil {
		t.Fatal("expected accepted_at stamped")
	}
	if len(notify.statusChanged) != 1 {
		t.Fatalf("expected one status notification, got %d", len(notify.statusChanged))
	}
}

func TestUpdateStatusIllegalTransitionConflicts(t *testing.T) {
	truck := &models.FoodTruck{ID: uuid.New(), OwnerUserID: uuid.New()}
	order := pendingOrder(truck.ID)
	store := &stubOrderStore{order: order}
	notify := &stubNotifier{}

	s := newService(store, &stubTruckReader{truck: truck}, &stubRefunder{}, notify)
	_, err := s.UpdateStatus(context.Background(), truck.OwnerUserID, order.ID, UpdateStatusInput{
		NewStatus: enums.OrderStatusCompleted,
	})
	expectCode(t, err, pkgerrors.CodeStateConflict)
	if len(store.applied) != 0 {
		t.Fatal("illegal transition must not write")
	}
	if len(notify.statusChanged) != 0 {
		t.Fatal("illegal transition must not notify")
	}
}

func TestUpdateStatusRejectRefundsFullAmount(t *testing.T) {
	truck := &models.FoodTruck{ID: uuid.New(), OwnerUserID: uuid.New()}
	order := pendingOrder(truck.ID)
	store := &stubOrderStore{order: order}
	refunds := &stubRefunder{refundID: "ref_456"}

	s := newService(store, &stubTruckReader{truck: truck}, refunds, &stubNotifier{})
	updated, err := s.UpdateStatus(context.Background(), truck.OwnerUserID, order.ID, UpdateStatusInput{
		NewStatus: enums.OrderStatusRejected,
		Reason:    strPtr("sold out"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(refunds.calls) != 1 {
		t.Fatalf("expected one refund, got %d", len(refunds.calls))
	}
	call := refunds.calls[0]
	if call.ChargeID != "pay_123" || call.AmountCents != 2750 {
		t.Fatalf("expected full refund of pay_123, got %+v", call)
	}
	if updated.RefundStatus != enums.RefundStatusFull {
		t.Fatalf("expected refund status full, got %s", updated.RefundStatus)
	}
	if updated.RefundID == nil || updated.RefundID.String() != "ref_456" {
		t.Fatalf("expected refund id recorded, got %v", updated.RefundID)
	}
	if updated.FinalizedAt == nil {
		t.Fatal("expected finalized_at stamped")
	}
}

func TestUpdateStatusRefundFailureRollsBack(t *testing.T) {
	truck := &models.FoodTruck{ID: uuid.New(), OwnerUserID: uuid.New()}
	order := pendingOrder(truck.ID)
	store := &stubOrderStore{order: order}
	refunds := &stubRefunder{err: pkgerrors.New(pkgerrors.CodeDependency, "square refund payment failed")}
	notify := &stubNotifier{}

	s := newService(store, &stubTruckReader{truck: truck}, refunds, notify)
	_, err := s.UpdateStatus(context.Background(), truck.OwnerUserID, order.ID, UpdateStatusInput{
		NewStatus: enums.OrderStatusRejected,
		Reason:    strPtr("sold out"),
	})
	expectCode(t, err, pkgerrors.CodeDependency)
	if len(store.applied) != 0 {
		t.Fatal("refund failure must not persist the transition")
	}
	if len(notify.statusChanged) != 0 {
		t.Fatal("refund failure must not notify")
	}
}

func TestUpdateStatusWrongTruckForbidden(t *testing.T) {
	truck := &models.FoodTruck{ID: uuid.New(), OwnerUserID: uuid.New()}
	order := pendingOrder(uuid.New())
	store := &stubOrderStore{order: order}

	s := newService(store, &stubTruckReader{truck: truck}, &stubRefunder{}, &stubNotifier{})
	_, err := s.UpdateStatus(context.Background(), truck.OwnerUserID, order.ID, UpdateStatusInput{
		NewStatus: enums.OrderStatusAccepted,
	})
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestUpdateStatusCancellationRequestedNotOperatorDriven(t *testing.T) {
	truck := &models.FoodTruck{ID: uuid.New(), OwnerUserID: uuid.New()}
	s := newService(&stubOrderStore{}, &stubTruckReader{truck: truck}, &stubRefunder{}, &stubNotifier{})
	_, err := s.UpdateStatus(context.Background(), truck.OwnerUserID, uuid.New(), UpdateStatusInput{
		NewStatus: enums.OrderStatusCancellationRequested,
	})
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestRequestCancellationFromAccepted(t *testing.T) {
	truck := &models.FoodTruck{ID: uuid.New(), OwnerUserID: uuid.New()}
	order := pendingOrder(truck.ID)
	order.Status = enums.OrderStatusAccepted
	store := &stubOrderStore{order: order}
	notify := &stubNotifier{}

	s := newService(store, &stubTruckReader{truck: truck}, &stubRefunder{}, notify)
	updated, err := s.RequestCancellation(context.Background(), order.CustomerID, order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != enums.OrderStatusCancellationRequested {
		t.Fatalf("expected cancellation_requested, got %s", updated.Status)
	}
	if notify.cancellations != 1 {
		t.Fatalf("expected operator notified, got %d", notify.cancellations)
	}
}

func TestRequestCancellationOutsideAcceptedConflicts(t *testing.T) {
	truck := &models.FoodTruck{ID: uuid.New(), OwnerUserID: uuid.New()}
	order := pendingOrder(truck.ID)
	order.Status = enums.OrderStatusPreparing
	store := &stubOrderStore{order: order}

	s := newService(store, &stubTruckReader{truck: truck}, &stubRefunder{}, &stubNotifier{})
	_, err := s.RequestCancellation(context.Background(), order.CustomerID, order.ID)
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestRequestCancellationOwnershipHidesOrder(t *testing.T) {
	truck := &models.FoodTruck{ID: uuid.New(), OwnerUserID: uuid.New()}
	order := pendingOrder(truck.ID)
	order.Status = enums.OrderStatusAccepted
	store := &stubOrderStore{order: order}

	s := newService(store, &stubTruckReader{truck: truck}, &stubRefunder{}, &stubNotifier{})
	_, err := s.RequestCancellation(context.Background(), uuid.New(), order.ID)
	expectCode(t, err, pkgerrors.CodeNotFound)
}
