package enums

import "fmt"

// OrderStatus tracks the lifecycle of a customer order.
type OrderStatus string

const (
	OrderStatusPendingConfirmation   OrderStatus = "pending_confirmation"
	OrderStatusAccepted              OrderStatus = "accepted"
	OrderStatusPreparing             OrderStatus = "preparing"
	OrderStatusReadyForPickup        OrderStatus = "ready_for_pickup"
	OrderStatusOutForDelivery        OrderStatus = "out_for_delivery"
	OrderStatusCompleted             OrderStatus = "completed"
	OrderStatusDelivered             OrderStatus = "delivered"
	OrderStatusRejected              OrderStatus = "rejected"
	OrderStatusCancelled             OrderStatus = "cancelled"
	OrderStatusCancellationRequested OrderStatus = "cancellation_requested"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPendingConfirmation,
	OrderStatusAccepted,
	OrderStatusPreparing,
	OrderStatusReadyForPickup,
	OrderStatusOutForDelivery,
	OrderStatusCompleted,
	OrderStatusDelivered,
	OrderStatusRejected,
	OrderStatusCancelled,
	OrderStatusCancellationRequested,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is legal from the status.
func (o OrderStatus) IsTerminal() bool {
	switch o {
	case OrderStatusCompleted, OrderStatusDelivered, OrderStatusRejected, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
