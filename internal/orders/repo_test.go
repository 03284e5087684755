package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/truckbites/truckbites-backend/pkg/db/models"
	"github.com/truckbites/truckbites-backend/pkg/enums"
	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
	"github.com/truckbites/truckbites-backend/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number INTEGER NOT NULL,
  customer_id TEXT NOT NULL,
  food_truck_id TEXT NOT NULL,
  fulfillment_type TEXT NOT NULL,
  status TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  subtotal_cents INTEGER NOT NULL,
  tax_cents INTEGER NOT NULL DEFAULT 0,
  delivery_fee_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  delivery_address TEXT,
  charge_id TEXT NOT NULL,
  refund_id TEXT,
  refund_status TEXT NOT NULL DEFAULT 'none',
  reason TEXT,
  estimated_ready_at DATETIME,
  estimated_delivery_at DATETIME,
  order_time DATETIME NOT NULL,
  accepted_at DATETIME,
  ready_at DATETIME,
  finalized_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  menu_item_id TEXT NOT NULL,
  name TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  line_total_cents INTEGER NOT NULL,
  created_at DATETIME
);`
	orderItemOptions := `
CREATE TABLE IF NOT EXISTS order_item_options (
  id TEXT PRIMARY KEY,
  order_item_id TEXT NOT NULL,
  menu_item_option_id TEXT NOT NULL,
  name TEXT NOT NULL,
  price_adjustment_cents INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(ordersTable).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	require.NoError(t, db.Exec(orderItemOptions).Error)
	return db
}

func seedOrder(t *testing.T, repo *Repo, customerID, truckID uuid.UUID, number int64, status enums.OrderStatus, created time.Time) *models.Order {
	t.Helper()

	item := models.OrderItem{
		ID:             uuid.New(),
		MenuItemID:     uuid.New(),
		Name:           "Carne Asada Taco",
		UnitPriceCents: 450,
		Quantity:       2,
		LineTotalCents: 900,
		Options: []models.OrderItemOption{
			{
				ID:                   uuid.New(),
				MenuItemOptionID:     uuid.New(),
				Name:                 "Extra Salsa",
				PriceAdjustmentCents: 50,
			},
		},
	}
	order := &models.Order{
		ID:              uuid.New(),
		OrderNumber:     number,
		CustomerID:      customerID,
		FoodTruckID:     truckID,
		FulfillmentType: enums.FulfillmentTypePickup,
		Status:          status,
		Currency:        enums.CurrencyUSD,
		SubtotalCents:   900,
		TaxCents:        74,
		TotalCents:      974,
		ChargeID:        types.ChargeID("pay_" + uuid.NewString()),
		RefundStatus:    enums.RefundStatusNone,
		OrderTime:       created,
		Items:           []models.OrderItem{item},
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	require.NoError(t, repo.Create(context.Background(), nil, order))
	return order
}

func TestRepoCreatePersistsSnapshots(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepo(db)

	customerID := uuid.New()
	truckID := uuid.New()
	created := seedOrder(t, repo, customerID, truckID, 1001, enums.OrderStatusPendingConfirmation, time.Now().UTC())

	found, err := repo.FindForCustomer(context.Background(), created.ID, customerID)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), found.OrderNumber)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Carne Asada Taco", found.Items[0].Name)
	assert.Equal(t, int64(900), found.Items[0].LineTotalCents)
	require.Len(t, found.Items[0].Options, 1)
	assert.Equal(t, "Extra Salsa", found.Items[0].Options[0].Name)
	assert.Equal(t, int64(50), found.Items[0].Options[0].PriceAdjustmentCents)
}

func TestRepoFindForCustomerEnforcesOwnership(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepo(db)

	created := seedOrder(t, repo, uuid.New(), uuid.New(), 1001, enums.OrderStatusAccepted, time.Now().UTC())

	_, err := repo.FindForCustomer(context.Background(), created.ID, uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestRepoApplyStatusWritesOnlyProvidedColumns(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepo(db)

	customerID := uuid.New()
	created := seedOrder(t, repo, customerID, uuid.New(), 1001, enums.OrderStatusPendingConfirmation, time.Now().UTC())

	acceptedAt := time.Now().UTC().Truncate(time.Second)
	err := repo.ApplyStatus(context.Background(), nil, created.ID, StatusUpdate{
		Status:     enums.OrderStatusAccepted,
		AcceptedAt: &acceptedAt,
	})
	require.NoError(t, err)

	found, err := repo.FindForCustomer(context.Background(), created.ID, customerID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusAccepted, found.Status)
	require.NotNil(t, found.AcceptedAt)
	assert.Nil(t, found.Reason)
	assert.Nil(t, found.RefundID)
	assert.Equal(t, enums.RefundStatusNone, found.RefundStatus)
}

func TestRepoApplyStatusMissingOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepo(db)

	err := repo.ApplyStatus(context.Background(), nil, uuid.New(), StatusUpdate{
		Status: enums.OrderStatusAccepted,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestRepoListForCustomerOrdersAndFilters(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepo(db)

	customerID := uuid.New()
	truckID := uuid.New()
	now := time.Now().UTC()
	older := seedOrder(t, repo, customerID, truckID, 1001, enums.OrderStatusCompleted, now.Add(-time.Hour))
	newer := seedOrder(t, repo, customerID, truckID, 1002, enums.OrderStatusAccepted, now)
	seedOrder(t, repo, uuid.New(), truckID, 1003, enums.OrderStatusAccepted, now)

	rows, err := repo.ListForCustomer(context.Background(), customerID, ListFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.ID, rows[0].ID)
	assert.Equal(t, older.ID, rows[1].ID)

	accepted := enums.OrderStatusAccepted
	rows, err = repo.ListForCustomer(context.Background(), customerID, ListFilter{Status: &accepted})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, newer.ID, rows[0].ID)

	rows, err = repo.ListForCustomer(context.Background(), customerID, ListFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, older.ID, rows[0].ID)
}

func TestRepoListForTruckScopesToTruck(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepo(db)

	truckID := uuid.New()
	now := time.Now().UTC()
	mine := seedOrder(t, repo, uuid.New(), truckID, 1001, enums.OrderStatusPendingConfirmation, now)
	seedOrder(t, repo, uuid.New(), uuid.New(), 1002, enums.OrderStatusPendingConfirmation, now)

	rows, err := repo.ListForTruck(context.Background(), truckID, ListFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, mine.ID, rows[0].ID)
}
