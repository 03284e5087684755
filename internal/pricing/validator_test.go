package pricing

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/truckbites/truckbites-backend/pkg/db/models"
	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
)

type stubMenuReader struct {
	items []models.MenuItem
	err   error
}

func (s *stubMenuReader) FindMenuItems(_ context.Context, _ uuid.UUID, _ []uuid.UUID) ([]models.MenuItem, error) {
	return s.items, s.err
}

func availableItem(id uuid.UUID, price int64, options ...models.MenuItemOption) models.MenuItem {
	return models.MenuItem{
		ID:             id,
		Name:           "Carne Asada Taco",
		BasePriceCents: price,
		IsAvailable:    true,
		Category:       &models.MenuCategory{ID: uuid.New(), Name: "Tacos", IsAvailable: true},
		Options:        options,
	}
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected *errors.Error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, typed.Code(), err)
	}
}

func TestValidateAndPricePricesFromMenu(t *testing.T) {
	itemID := uuid.New()
	optionID := uuid.New()
	item := availableItem(itemID, 850, models.MenuItemOption{
		ID:                   optionID,
		Name:                 "Extra Guac",
		PriceAdjustmentCents: 150,
	})

	v := &Validator{menu: &stubMenuReader{items: []models.MenuItem{item}}}
	result, err := v.ValidateAndPrice(context.Background(), uuid.New(), []LineInput{
		{MenuItemID: itemID, Quantity: 3, OptionIDs: []uuid.UUID{optionID}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(result.Lines))
	}
	line := result.Lines[0]
	if line.UnitPriceCents != 1000 {
		t.Fatalf("expected unit price 1000, got %d", line.UnitPriceCents)
	}
	if line.LineTotalCents != 3000 {
		t.Fatalf("expected line total 3000, got %d", line.LineTotalCents)
	}
	if result.SubtotalCents != 3000 {
		t.Fatalf("expected subtotal 3000, got %d", result.SubtotalCents)
	}
	if len(line.Options) != 1 || line.Options[0].PriceAdjustmentCents != 150 {
		t.Fatalf("expected option snapshot with adjustment 150, got %+v", line.Options)
	}
}

func TestValidateAndPriceRejectsNonPositiveQuantity(t *testing.T) {
	v := &Validator{menu: &stubMenuReader{}}
	_, err := v.ValidateAndPrice(context.Background(), uuid.New(), []LineInput{
		{MenuItemID: uuid.New(), Quantity: 0},
	})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestValidateAndPriceRejectsEmptyOrder(t *testing.T) {
	v := &Validator{menu: &stubMenuReader{}}
	_, err := v.ValidateAndPrice(context.Background(), uuid.New(), nil)
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestValidateAndPriceUnknownItemIsNotFound(t *testing.T) {
	v := &Validator{menu: &stubMenuReader{}}
	_, err := v.ValidateAndPrice(context.Background(), uuid.New(), []LineInput{
		{MenuItemID: uuid.New(), Quantity: 1},
	})
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestValidateAndPriceUnavailableItemConflicts(t *testing.T) {
	itemID := uuid.New()
	item := availableItem(itemID, 850)
	item.IsAvailable = false

	v := &Validator{menu: &stubMenuReader{items: []models.MenuItem{item}}}
	_, err := v.ValidateAndPrice(context.Background(), uuid.New(), []LineInput{
		{MenuItemID: itemID, Quantity: 1},
	})
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestValidateAndPriceUnavailableCategoryConflicts(t *testing.T) {
	itemID := uuid.New()
	item := availableItem(itemID, 850)
	item.Category.IsAvailable = false

	v := &Validator{menu: &stubMenuReader{items: []models.MenuItem{item}}}
	_, err := v.ValidateAndPrice(context.Background(), uuid.New(), []LineInput{
		{MenuItemID: itemID, Quantity: 1},
	})
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestValidateAndPriceForeignOptionRejected(t *testing.T) {
	itemID := uuid.New()
	item := availableItem(itemID, 850, models.MenuItemOption{ID: uuid.New(), Name: "Salsa Verde"})

	v := &Validator{menu: &stubMenuReader{items: []models.MenuItem{item}}}
	_, err := v.ValidateAndPrice(context.Background(), uuid.New(), []LineInput{
		{MenuItemID: itemID, Quantity: 1, OptionIDs: []uuid.UUID{uuid.New()}},
	})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestValidateAndPriceNegativeAdjustmentLowersUnitPrice(t *testing.T) {
	itemID := uuid.New()
	optionID := uuid.New()
	item := availableItem(itemID, 850, models.MenuItemOption{
		ID:                   optionID,
		Name:                 "No Cheese",
		PriceAdjustmentCents: -50,
	})

	v := &Validator{menu: &stubMenuReader{items: []models.MenuItem{item}}}
	result, err := v.ValidateAndPrice(context.Background(), uuid.New(), []LineInput{
		{MenuItemID: itemID, Quantity: 2, OptionIDs: []uuid.UUID{optionID}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Lines[0].UnitPriceCents != 800 {
		t.Fatalf("expected unit price 800, got %d", result.Lines[0].UnitPriceCents)
	}
	if result.SubtotalCents != 1600 {
		t.Fatalf("expected subtotal 1600, got %d", result.SubtotalCents)
	}
}
