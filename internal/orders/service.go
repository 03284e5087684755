package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/truckbites/truckbites-backend/internal/payments"
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

type orderStore interface {
	FindForUpdate(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error)
	ApplyStatus(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, update StatusUpdate) error
	FindForCustomer(ctx context.Context, orderID, customerID uuid.UUID) (*models.Order, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, filter ListFilter) ([]models.Order, error)
	ListForTruck(ctx context.Context, truckID uuid.UUID, filter ListFilter) ([]models.Order, error)
}

type truckReader interface {
	FindByID(ctx context.Context, truckID uuid.UUID) (*models.FoodTruck, error)
	FindByOwner(ctx context.Context, ownerUserID uuid.UUID) (*models.FoodTruck, error)
}

type refunder interface {
	Refund(ctx context.Context, req payments.RefundRequest) (types.RefundID, error)
}

type notifier interface {
	StatusChanged(ctx context.Context, order *models.Order)
	CancellationRequested(ctx context.Context, order *models.Order, operatorUserID uuid.UUID)
}

// Service runs the order lifecycle. Transitions lock the order row, and a
// refund required by the target status executes inside the same transaction
// so status and refund commit or fail as one.
type Service struct {
	tx       txRunner
	orders   orderStore
	trucks   truckReader
	payments refunder
	notify   notifier
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(
	tx txRunner,
	orders orderStore,
	trucks truckReader,
	refunds refunder,
	notify notifier,
	logg *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		tx:       tx,
		orders:   orders,
		trucks:   trucks,
		payments: refunds,
		notify:   notify,
		logger:   logg,
		metrics:  m,
	}
}

// UpdateStatus applies an operator-driven transition. The operator must own
// the order's truck.
func (s *Service) UpdateStatus(ctx context.Context, operatorUserID, orderID uuid.UUID, input UpdateStatusInput) (*models.Order, error) {
	if input.NewStatus == enums.OrderStatusCancellationRequested {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			"cancellation_requested is customer initiated")
	}

	truck, err := s.trucks.FindByOwner(ctx, operatorUserID)
	if err != nil {
		return nil, err
	}

	var updated *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.orders.FindForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.FoodTruckID != truck.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another truck")
		}
		if err := validateTransition(order, input.NewStatus, input.Reason); err != nil {
			return err
		}

		update := s.buildUpdate(order, input)

		if RequiresRefund(input.NewStatus) {
			refundID, err := s.refundInTx(ctx, order, input)
			if err != nil {
				return err
			}
			full := enums.RefundStatusFull
			update.RefundID = &refundID
			update.RefundStatus = &full
			if s.metrics != nil {
				s.metrics.RefundsIssued.WithLabelValues(input.NewStatus.String()).Inc()
			}
		}

		if err := s.orders.ApplyStatus(ctx, tx, order.ID, update); err != nil {
			return err
		}

		applyToModel(order, update)
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(updated.Status.String()).Inc()
	}
	s.notify.StatusChanged(ctx, updated)
	return updated, nil
}

// RequestCancellation flags an accepted order for operator review. The order
// does not stop; the operator resolves the request by cancelling or by moving
// the order back to accepted.
func (s *Service) RequestCancellation(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error) {
	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.orders.FindForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.CustomerID != customerID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if order.Status != enums.OrderStatusAccepted {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cancellation can only be requested while accepted, order is %s", order.Status))
		}

		update := StatusUpdate{Status: enums.OrderStatusCancellationRequested}
		if err := s.orders.ApplyStatus(ctx, tx, order.ID, update); err != nil {
			return err
		}
		applyToModel(order, update)
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if truck, err := s.trucks.FindByID(ctx, updated.FoodTruckID); err != nil {
		ctx := s.logger.WithOrderID(ctx, updated.ID.String())
		s.logger.Warn(ctx, fmt.Sprintf("cancellation request notification skipped: %v", err))
	} else {
		s.notify.CancellationRequested(ctx, updated, truck.OwnerUserID)
	}
	return updated, nil
}

// GetForCustomer returns one of the customer's orders with snapshots.
func (s *Service) GetForCustomer(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error) {
	return s.orders.FindForCustomer(ctx, orderID, customerID)
}

// ListForCustomer returns the customer's order history.
func (s *Service) ListForCustomer(ctx context.Context, customerID uuid.UUID, filter ListFilter) ([]models.Order, error) {
	return s.orders.ListForCustomer(ctx, customerID, filter)
}

// ListForOperator returns the queue for the operator's truck.
func (s *Service) ListForOperator(ctx context.Context, operatorUserID uuid.UUID, filter ListFilter) ([]models.Order, error) {
	truck, err := s.trucks.FindByOwner(ctx, operatorUserID)
	if err != nil {
		return nil, err
	}
	return s.orders.ListForTruck(ctx, truck.ID, filter)
}

// refundInTx reverses the full captured amount. Any failure maps to a
// dependency error so the transition rolls back and the caller sees 502.
func (s *Service) refundInTx(ctx context.Context, order *models.Order, input UpdateStatusInput) (types.RefundID, error) {
	reason := fmt.Sprintf("order %s", input.NewStatus)
	if input.Reason != nil && *input.Reason != "" {
		reason = *input.Reason
	}

	refundID, err := s.payments.Refund(ctx, payments.RefundRequest{
		ChargeID:       order.ChargeID,
		AmountCents:    order.TotalCents,
		Currency:       order.Currency,
		Reason:         reason,
		IdempotencyKey: fmt.Sprintf("refund-%s", order.ID),
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeDependency {
			return "", err
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refund failed, order left in prior state")
	}
	return refundID, nil
}

func (s *Service) buildUpdate(order *models.Order, input UpdateStatusInput) StatusUpdate {
	now := time.Now().UTC()
	update := StatusUpdate{
		Status:              input.NewStatus,
		Reason:              input.Reason,
		EstimatedReadyAt:    input.UpdatedEstimatedReadyAt,
		EstimatedDeliveryAt: input.UpdatedEstimatedDeliveryAt,
	}

	switch input.NewStatus {
	case enums.OrderStatusAccepted:
		if order.AcceptedAt == nil {
			update.AcceptedAt = &now
		}
	case enums.OrderStatusReadyForPickup, enums.OrderStatusOutForDelivery:
		update.ReadyAt = &now
	case enums.OrderStatusCompleted, enums.OrderStatusDelivered,
		enums.OrderStatusRejected, enums.OrderStatusCancelled:
		update.FinalizedAt = &now
	}
	return update
}

// applyToModel mirrors the persisted update onto the in-memory order so the
// handler can respond without a re-read.
func applyToModel(order *models.Order, update StatusUpdate) {
	order.Status = update.Status
	if update.Reason != nil {
		order.Reason = update.Reason
	}
	if update.RefundID != nil {
		order.RefundID = update.RefundID
	}
	if update.RefundStatus != nil {
		order.RefundStatus = *update.RefundStatus
	}
	if update.AcceptedAt != nil {
		order.AcceptedAt = update.AcceptedAt
	}
	if update.ReadyAt != nil {
		order.ReadyAt = update.ReadyAt
	}
	if update.FinalizedAt != nil {
		order.FinalizedAt = update.FinalizedAt
	}
	if update.EstimatedReadyAt != nil {
		order.EstimatedReadyAt = update.EstimatedReadyAt
	}
	if update.EstimatedDeliveryAt != nil {
		order.EstimatedDeliveryAt = update.EstimatedDeliveryAt
	}
}
