package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/truckbites/truckbites-backend/pkg/db/models"
	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
)

const defaultListLimit = 50

// Repo persists orders and their snapshots. Methods that participate in a
// transaction take the handle explicitly; a nil handle falls back to the
// shared connection.
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

// Create inserts the order with its item and option snapshots in one go.
func (r *Repo) Create(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if err := r.handle(tx).WithContext(ctx).Create(order).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "inserting order")
	}
	return nil
}

// FindForUpdate locks the order row for the duration of the transaction.
func (r *Repo) FindForUpdate(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.handle(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "locking order")
	}
	return &order, nil
}

// ApplyStatus writes a typed transition update to the locked row.
func (r *Repo) ApplyStatus(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, update StatusUpdate) error {
	result := r.handle(tx).WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(update.columns())
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "updating order status")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

// FindForCustomer fetches one order with snapshots, enforcing ownership.
func (r *Repo) FindForCustomer(ctx context.Context, orderID, customerID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Options").
		Where("id = ? AND customer_id = ?", orderID, customerID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching order")
	}
	return &order, nil
}

// ListForCustomer returns the customer's orders, newest first.
func (r *Repo) ListForCustomer(ctx context.Context, customerID uuid.UUID, filter ListFilter) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID)
	return r.list(query, filter)
}

// ListForTruck returns a truck's orders for the operator queue.
func (r *Repo) ListForTruck(ctx context.Context, truckID uuid.UUID, filter ListFilter) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("food_truck_id = ?", truckID)
	return r.list(query, filter)
}

func (r *Repo) list(query *gorm.DB, filter ListFilter) ([]models.Order, error) {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	limit := filter.Limit
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	var rows []models.Order
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return rows, nil
}
