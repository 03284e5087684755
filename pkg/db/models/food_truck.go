package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/truckbites/truckbites-backend/pkg/enums"
)

// FoodTruck is owned by the menu-management surface; the order core reads it
// and locks its row during checkout.
type FoodTruck struct {
	ID                   uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerUserID          uuid.UUID         `gorm:"column:owner_user_id;type:uuid;not null"`
	Name                 string            `gorm:"column:name;not null"`
	CurrentStatus        enums.TruckStatus `gorm:"column:current_status;type:text;not null;default:'offline'"`
	DeliveryEnabled      bool              `gorm:"column:delivery_enabled;not null;default:false"`
	DeliveryFeeCents     int64             `gorm:"column:delivery_fee_cents;not null;default:0"`
	DeliveryMinimumCents int64             `gorm:"column:delivery_minimum_cents;not null;default:0"`
	DeliveryRadiusKM     float64           `gorm:"column:delivery_radius_km;not null;default:0"`
	Latitude             float64           `gorm:"column:latitude;not null;default:0"`
	Longitude            float64           `gorm:"column:longitude;not null;default:0"`
	PrepTimeMinutes      int               `gorm:"column:prep_time_minutes;not null;default:20"`
	DeliveryTimeMinutes  int               `gorm:"column:delivery_time_minutes;not null;default:40"`
	CreatedAt            time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
