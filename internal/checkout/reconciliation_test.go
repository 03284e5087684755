package checkout

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/truckbites/truckbites-backend/pkg/db/models"
	pkgtypes "github.com/truckbites/truckbites-backend/pkg/types"
)

func setupReconciliationTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	table := `
CREATE TABLE IF NOT EXISTS charge_reconciliations (
  id TEXT PRIMARY KEY,
  charge_id TEXT NOT NULL UNIQUE,
  customer_id TEXT NOT NULL,
  food_truck_id TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  detail TEXT,
  resolved_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(table).Error)
	return db
}

func reconciliationRow(chargeID string) *models.ChargeReconciliation {
	return &models.ChargeReconciliation{
		ID:          uuid.New(),
		ChargeID:    pkgtypes.ChargeID(chargeID),
		CustomerID:  uuid.New(),
		FoodTruckID: uuid.New(),
		AmountCents: 2165,
		Detail:      "insert failed; refund failed",
	}
}

func TestReconciliationRecordToleratesDuplicateCharge(t *testing.T) {
	db := setupReconciliationTestDB(t)
	repo := NewReconciliationRepo(db)

	row := reconciliationRow("pay_dup")
	require.NoError(t, repo.Record(context.Background(), row))

	again := reconciliationRow("pay_dup")
	require.NoError(t, repo.Record(context.Background(), again), "a charge already flagged must not error")

	rows, err := repo.ListUnresolved(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, row.ChargeID, rows[0].ChargeID)
}

func TestReconciliationListSkipsResolved(t *testing.T) {
	db := setupReconciliationTestDB(t)
	repo := NewReconciliationRepo(db)

	open := reconciliationRow("pay_open")
	require.NoError(t, repo.Record(context.Background(), open))

	done := reconciliationRow("pay_done")
	now := time.Now().UTC()
	done.ResolvedAt = &now
	require.NoError(t, repo.Record(context.Background(), done))

	rows, err := repo.ListUnresolved(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, open.ChargeID, rows[0].ChargeID)
}
