package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/truckbites/truckbites-backend/pkg/types"
)

// ChargeReconciliation flags a captured charge whose order transaction rolled
// back and whose compensating refund also failed. A human (or a sweep) works
// these off against the gateway.
type ChargeReconciliation struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ChargeID    types.ChargeID `gorm:"column:charge_id;type:text;not null;uniqueIndex"`
	CustomerID  uuid.UUID      `gorm:"column:customer_id;type:uuid;not null"`
	FoodTruckID uuid.UUID      `gorm:"column:food_truck_id;type:uuid;not null"`
	AmountCents int64          `gorm:"column:amount_cents;not null"`
	Detail      string         `gorm:"column:detail"`
	ResolvedAt  *time.Time     `gorm:"column:resolved_at"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
}
