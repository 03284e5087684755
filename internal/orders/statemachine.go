package orders

import (
	"fmt"

	"github.com/truckbites/truckbites-backend/pkg/db/models"
	"github.com/truckbites/truckbites-backend/pkg/enums"
	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
)

// transitions is the full lifecycle table. cancellation_requested is the one
// customer-driven entry; everything else is operator-driven.
var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPendingConfirmation: {
		enums.OrderStatusAccepted,
		enums.OrderStatusRejected,
	},
	enums.OrderStatusAccepted: {
		enums.OrderStatusPreparing,
		enums.OrderStatusCancelled,
		enums.OrderStatusCancellationRequested,
	},
	enums.OrderStatusPreparing: {
		enums.OrderStatusReadyForPickup,
		enums.OrderStatusOutForDelivery,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusReadyForPickup: {
		enums.OrderStatusCompleted,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusOutForDelivery: {
		enums.OrderStatusDelivered,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusCancellationRequested: {
		enums.OrderStatusCancelled,
		enums.OrderStatusAccepted,
	},
}

// CanTransition reports whether the lifecycle table allows from → to.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// RequiresRefund reports whether entering the status must refund the charge.
func RequiresRefund(to enums.OrderStatus) bool {
	return to == enums.OrderStatusRejected || to == enums.OrderStatusCancelled
}

// requiresReason reports whether the transition must carry an explanation.
func requiresReason(to enums.OrderStatus) bool {
	return to == enums.OrderStatusRejected || to == enums.OrderStatusCancelled
}

// validateTransition enforces the table plus the fulfillment-type guard. It
// never mutates the order.
func validateTransition(order *models.Order, to enums.OrderStatus, reason *string) error {
	if !to.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown status %q", to))
	}
	if !CanTransition(order.Status, to) {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, to))
	}

	switch to {
	case enums.OrderStatusReadyForPickup:
		if order.IsDelivery() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				"delivery orders go out_for_delivery, not ready_for_pickup")
		}
	case enums.OrderStatusOutForDelivery:
		if !order.IsDelivery() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				"pickup orders go ready_for_pickup, not out_for_delivery")
		}
	}

	if requiresReason(to) && (reason == nil || *reason == "") {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("a reason is required when moving an order to %s", to))
	}
	return nil
}
