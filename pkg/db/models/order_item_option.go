package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItemOption snapshots a selected option and its price adjustment.
type OrderItemOption struct {
	ID                   uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderItemID          uuid.UUID `gorm:"column:order_item_id;type:uuid;not null"`
	MenuItemOptionID     uuid.UUID `gorm:"column:menu_item_option_id;type:uuid;not null"`
	Name                 string    `gorm:"column:name;not null"`
	PriceAdjustmentCents int64     `gorm:"column:price_adjustment_cents;not null;default:0"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime"`
}
