package instruments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/truckbites/truckbites-backend/pkg/db/models"
	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
)

// Repo persists saved payment instruments. Only gateway tokens and display
// metadata live here.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// FindByID fetches an instrument and enforces ownership. Detached instruments
// are excluded from charge paths.
func (r *Repo) FindByID(ctx context.Context, instrumentID, customerID uuid.UUID) (*models.PaymentInstrument, error) {
	var instrument models.PaymentInstrument
	err := r.db.WithContext(ctx).
		Where("id = ? AND customer_id = ? AND detached_at IS NULL", instrumentID, customerID).
		First(&instrument).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment instrument not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching payment instrument")
	}
	return &instrument, nil
}

// ListByCustomer returns the customer's active instruments, newest first.
func (r *Repo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.PaymentInstrument, error) {
	var rows []models.PaymentInstrument
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND detached_at IS NULL", customerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing payment instruments")
	}
	return rows, nil
}

// Create inserts a newly vaulted instrument.
func (r *Repo) Create(ctx context.Context, instrument *models.PaymentInstrument) error {
	if err := r.db.WithContext(ctx).Create(instrument).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving payment instrument")
	}
	return nil
}

// MarkDetached soft-deletes an instrument after the gateway confirms the
// detach. The row is kept for display on historical orders.
func (r *Repo) MarkDetached(ctx context.Context, instrumentID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentInstrument{}).
		Where("id = ? AND detached_at IS NULL", instrumentID).
		Update("detached_at", gorm.Expr("now()"))
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "detaching payment instrument")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "payment instrument not found")
	}
	return nil
}
