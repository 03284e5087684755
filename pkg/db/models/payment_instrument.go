package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentInstrument references a gateway-side card token plus display
// metadata. Raw card data is never stored.
type PaymentInstrument struct {
	ID                uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID        uuid.UUID  `gorm:"column:customer_id;type:uuid;not null"`
	GatewayCardID     string     `gorm:"column:gateway_card_id;not null;uniqueIndex"`
	GatewayCustomerID string     `gorm:"column:gateway_customer_id;not null"`
	Brand             string     `gorm:"column:brand"`
	Last4             string     `gorm:"column:last4"`
	ExpMonth          int        `gorm:"column:exp_month"`
	ExpYear           int        `gorm:"column:exp_year"`
	DetachedAt        *time.Time `gorm:"column:detached_at"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
