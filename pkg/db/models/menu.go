package models

import (
	"time"

	"github.com/google/uuid"
)

// MenuCategory groups menu items under a truck. Read-only for the order core.
type MenuCategory struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FoodTruckID uuid.UUID `gorm:"column:food_truck_id;type:uuid;not null"`
	Name        string    `gorm:"column:name;not null"`
	IsAvailable bool      `gorm:"column:is_available;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// MenuItem carries the authoritative base price for a line.
type MenuItem struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FoodTruckID    uuid.UUID        `gorm:"column:food_truck_id;type:uuid;not null"`
	MenuCategoryID uuid.UUID        `gorm:"column:menu_category_id;type:uuid;not null"`
	Name           string           `gorm:"column:name;not null"`
	BasePriceCents int64            `gorm:"column:base_price_cents;not null"`
	IsAvailable    bool             `gorm:"column:is_available;not null;default:true"`
	Category       *MenuCategory    `gorm:"foreignKey:MenuCategoryID"`
	Options        []MenuItemOption `gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// MenuItemOption is a priced modifier belonging to exactly one menu item.
type MenuItemOption struct {
	ID                   uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MenuItemID           uuid.UUID `gorm:"column:menu_item_id;type:uuid;not null"`
	Name                 string    `gorm:"column:name;not null"`
	PriceAdjustmentCents int64     `gorm:"column:price_adjustment_cents;not null;default:0"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
