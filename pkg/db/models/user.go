package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/truckbites/truckbites-backend/pkg/enums"
)

// User is a read-model over the accounts service's users. The order core
// consults it for notification routing only.
type User struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Email       string         `gorm:"column:email;not null;uniqueIndex"`
	DisplayName string         `gorm:"column:display_name"`
	Role        enums.UserRole `gorm:"column:role;type:text;not null"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
