package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/truckbites/truckbites-backend/pkg/types"
)

// CustomerAddress is a saved delivery address owned by a customer.
type CustomerAddress struct {
	ID         uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID uuid.UUID     `gorm:"column:customer_id;type:uuid;not null"`
	Label      string        `gorm:"column:label"`
	Address    types.Address `gorm:"column:address;type:jsonb;serializer:json;not null"`
	CreatedAt  time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
