package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is an immutable snapshot of a menu item at order time. Catalog
// edits after checkout must never alter it.
type OrderItem struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID         `gorm:"column:order_id;type:uuid;not null"`
	MenuItemID     uuid.UUID         `gorm:"column:menu_item_id;type:uuid;not null"`
	Name           string            `gorm:"column:name;not null"`
	UnitPriceCents int64             `gorm:"column:unit_price_cents;not null"`
	Quantity       int               `gorm:"column:quantity;not null"`
	LineTotalCents int64             `gorm:"column:line_total_cents;not null"`
	Options        []OrderItemOption `gorm:"foreignKey:OrderItemID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
}
