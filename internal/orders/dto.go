package orders

import (
	"time"

	"github.com/truckbites/truckbites-backend/pkg/enums"
	"github.com/truckbites/truckbites-backend/pkg/types"
)

// UpdateStatusInput is the operator's transition request.
type UpdateStatusInput struct {
	NewStatus                  enums.OrderStatus
	Reason                     *string
	UpdatedEstimatedReadyAt    *time.Time
	UpdatedEstimatedDeliveryAt *time.Time
}

// StatusUpdate is the typed write applied to an order row during a
// transition. Only non-nil fields are written, so a transition can never
// clobber a column it did not mean to touch.
type StatusUpdate struct {
	Status              enums.OrderStatus
	Reason              *string
	RefundID            *types.RefundID
	RefundStatus        *enums.RefundStatus
	AcceptedAt          *time.Time
	ReadyAt             *time.Time
	FinalizedAt         *time.Time
	EstimatedReadyAt    *time.Time
	EstimatedDeliveryAt *time.Time
}

func (u StatusUpdate) columns() map[string]any {
	cols := map[string]any{"status": u.Status}
	if u.Reason != nil {
		cols["reason"] = *u.Reason
	}
	if u.RefundID != nil {
		cols["refund_id"] = u.RefundID.String()
	}
	if u.RefundStatus != nil {
		cols["refund_status"] = *u.RefundStatus
	}
	if u.AcceptedAt != nil {
		cols["accepted_at"] = *u.AcceptedAt
	}
	if u.ReadyAt != nil {
		cols["ready_at"] = *u.ReadyAt
	}
	if u.FinalizedAt != nil {
		cols["finalized_at"] = *u.FinalizedAt
	}
	if u.EstimatedReadyAt != nil {
		cols["estimated_ready_at"] = *u.EstimatedReadyAt
	}
	if u.EstimatedDeliveryAt != nil {
		cols["estimated_delivery_at"] = *u.EstimatedDeliveryAt
	}
	return cols
}

// ListFilter narrows operator queue reads.
type ListFilter struct {
	Status *enums.OrderStatus
	Limit  int
	Offset int
}
