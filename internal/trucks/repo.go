package trucks

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/truckbites/truckbites-backend/pkg/db/models"
	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
)

// Repo reads food truck rows. The order core never mutates trucks; it only
// locks them during checkout.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// FindByID fetches a truck without locking.
func (r *Repo) FindByID(ctx context.Context, truckID uuid.UUID) (*models.FoodTruck, error) {
	var truck models.FoodTruck
	err := r.db.WithContext(ctx).
		Where("id = ?", truckID).
		First(&truck).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "food truck not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching food truck")
	}
	return &truck, nil
}

// FindForUpdate fetches a truck under SELECT ... FOR UPDATE inside the given
// transaction; the lock is released at commit or rollback.
func (r *Repo) FindForUpdate(ctx context.Context, tx *gorm.DB, truckID uuid.UUID) (*models.FoodTruck, error) {
	var truck models.FoodTruck
	err := r.handle(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", truckID).
		First(&truck).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "food truck not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "locking food truck")
	}
	return &truck, nil
}

// FindByOwner resolves the truck operated by a user.
func (r *Repo) FindByOwner(ctx context.Context, ownerUserID uuid.UUID) (*models.FoodTruck, error) {
	var truck models.FoodTruck
	err := r.db.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		First(&truck).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "food truck not found for operator")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching operator food truck")
	}
	return &truck, nil
}
