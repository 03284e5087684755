package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/truckbites/truckbites-backend/pkg/enums"
	"github.com/truckbites/truckbites-backend/pkg/types"
)

// Order is the durable record produced by a committed checkout. Money fields
// are derived server-side and must satisfy total = subtotal + tax + delivery fee.
// ChargeID is set exactly once at creation and never cleared.
type Order struct {
	ID                  uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber         int64                 `gorm:"column:order_number;not null;default:nextval('order_number_seq')"`
	CustomerID          uuid.UUID             `gorm:"column:customer_id;type:uuid;not null"`
	FoodTruckID         uuid.UUID             `gorm:"column:food_truck_id;type:uuid;not null"`
	FulfillmentType     enums.FulfillmentType `gorm:"column:fulfillment_type;type:text;not null"`
	Status              enums.OrderStatus     `gorm:"column:status;type:text;not null;default:'pending_confirmation'"`
	Currency            enums.Currency        `gorm:"column:currency;type:text;not null;default:'USD'"`
	SubtotalCents       int64                 `gorm:"column:subtotal_cents;not null"`
	TaxCents            int64                 `gorm:"column:tax_cents;not null;default:0"`
	DeliveryFeeCents    int64                 `gorm:"column:delivery_fee_cents;not null;default:0"`
	TotalCents          int64                 `gorm:"column:total_cents;not null"`
	DeliveryAddress     *types.Address        `gorm:"column:delivery_address;type:jsonb;serializer:json"`
	ChargeID            types.ChargeID        `gorm:"column:charge_id;type:text;not null"`
	RefundID            *types.RefundID       `gorm:"column:refund_id;type:text"`
	RefundStatus        enums.RefundStatus    `gorm:"column:refund_status;type:text;not null;default:'none'"`
	Reason              *string               `gorm:"column:reason"`
	EstimatedReadyAt    *time.Time            `gorm:"column:estimated_ready_at"`
	EstimatedDeliveryAt *time.Time            `gorm:"column:estimated_delivery_at"`
	OrderTime           time.Time             `gorm:"column:order_time;not null"`
	AcceptedAt          *time.Time            `gorm:"column:accepted_at"`
	ReadyAt             *time.Time            `gorm:"column:ready_at"`
	FinalizedAt         *time.Time            `gorm:"column:finalized_at"`
	Items               []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// IsDelivery reports whether the order is fulfilled by delivery.
func (o *Order) IsDelivery() bool {
	return o.FulfillmentType == enums.FulfillmentTypeDelivery
}
