package checkout

import (
	"context"

	"gorm.io/gorm"

	"github.com/truckbites/truckbites-backend/pkg/db"
	"github.com/truckbites/truckbites-backend/pkg/db/models"
	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
)

// ReconciliationRepo records charges whose order insert rolled back and whose
// compensating refund failed. These rows are the input to a manual (or
// scheduled) sweep against the gateway; nothing in the hot path reads them.
type ReconciliationRepo struct {
	db *gorm.DB
}

func NewReconciliationRepo(conn *gorm.DB) *ReconciliationRepo {
	return &ReconciliationRepo{db: conn}
}

// Record flags a charge for reconciliation. A duplicate charge id means the
// flag already exists, which is fine.
func (r *ReconciliationRepo) Record(ctx context.Context, row *models.ChargeReconciliation) error {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording charge reconciliation")
	}
	return nil
}

// ListUnresolved returns flagged charges awaiting manual action.
func (r *ReconciliationRepo) ListUnresolved(ctx context.Context) ([]models.ChargeReconciliation, error) {
	var rows []models.ChargeReconciliation
	err := r.db.WithContext(ctx).
		Where("resolved_at IS NULL").
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing charge reconciliations")
	}
	return rows, nil
}
