package pricing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/truckbites/truckbites-backend/pkg/db/models"
	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
)

// Repo loads menu rows for server-side pricing. Lookups are always scoped to
// one truck so a menu item id from another truck can never price a line.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// WithTx rebinds the repo to a transaction handle.
func (r *Repo) WithTx(tx *gorm.DB) *Repo {
	return &Repo{db: tx}
}

// FindMenuItems loads the requested items for one truck with their category
// and options preloaded.
func (r *Repo) FindMenuItems(ctx context.Context, truckID uuid.UUID, itemIDs []uuid.UUID) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Options").
		Where("food_truck_id = ? AND id IN ?", truckID, itemIDs).
		Find(&items).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching menu items")
	}
	return items, nil
}
