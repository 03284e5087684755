package addresses

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/truckbites/truckbites-backend/pkg/db/models"
	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
)

// Repo reads saved customer addresses.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// FindByID fetches a saved address and enforces ownership. A row owned by
// another customer is reported as not found so ids cannot be probed.
func (r *Repo) FindByID(ctx context.Context, addressID, customerID uuid.UUID) (*models.CustomerAddress, error) {
	var addr models.CustomerAddress
	err := r.db.WithContext(ctx).
		Where("id = ? AND customer_id = ?", addressID, customerID).
		First(&addr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "saved address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching saved address")
	}
	return &addr, nil
}

// ListByCustomer returns the customer's saved addresses, newest first.
func (r *Repo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CustomerAddress, error) {
	var rows []models.CustomerAddress
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing saved addresses")
	}
	return rows, nil
}
