package pricing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/truckbites/truckbites-backend/pkg/db/models"
	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
)

// LineInput is a requested order line. Client prices are never accepted;
// only ids and quantity cross the trust boundary.
type LineInput struct {
	MenuItemID uuid.UUID
	Quantity   int
	OptionIDs  []uuid.UUID
}

// OptionSnapshot captures one selected modifier at order time.
type OptionSnapshot struct {
	MenuItemOptionID     uuid.UUID
	Name                 string
	PriceAdjustmentCents int64
}

// LineSnapshot is an authoritatively priced order line.
type LineSnapshot struct {
	MenuItemID     uuid.UUID
	Name           string
	UnitPriceCents int64
	Quantity       int
	LineTotalCents int64
	Options        []OptionSnapshot
}

// Result is the validated and priced order.
type Result struct {
	Lines         []LineSnapshot
	SubtotalCents int64
}

type menuReader interface {
	FindMenuItems(ctx context.Context, truckID uuid.UUID, itemIDs []uuid.UUID) ([]models.MenuItem, error)
}

// Validator prices order lines against the live menu.
type Validator struct {
	menu menuReader
	repo *Repo
}

func NewValidator(repo *Repo) *Validator {
	return &Validator{menu: repo, repo: repo}
}

// ValidateAndPrice resolves every line against the truck's menu, rejecting
// unavailable items or categories and recomputing all prices server-side.
// Unit price is the base price plus the sum of option adjustments; the line
// total is unit price times quantity.
func (v *Validator) ValidateAndPrice(ctx context.Context, truckID uuid.UUID, lines []LineInput) (*Result, error) {
	return v.validate(ctx, v.menu, truckID, lines)
}

// ValidateAndPriceTx runs the same checks through a transaction handle so the
// post-lock re-check in checkout reads the locked snapshot.
func (v *Validator) ValidateAndPriceTx(ctx context.Context, tx *gorm.DB, truckID uuid.UUID, lines []LineInput) (*Result, error) {
	return v.validate(ctx, v.repo.WithTx(tx), truckID, lines)
}

func (v *Validator) validate(ctx context.Context, menu menuReader, truckID uuid.UUID, lines []LineInput) (*Result, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}

	itemIDs := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("quantity must be positive for item %s", line.MenuItemID))
		}
		itemIDs = append(itemIDs, line.MenuItemID)
	}

	items, err := menu.FindMenuItems(ctx, truckID, itemIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.MenuItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}

	result := &Result{Lines: make([]LineSnapshot, 0, len(lines))}
	for _, line := range lines {
		item, ok := byID[line.MenuItemID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound,
				fmt.Sprintf("menu item %s not found on this truck", line.MenuItemID))
		}
		if !item.IsAvailable {
			return nil, pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("menu item %q is no longer available", item.Name)).
				WithDetails(map[string]any{"menu_item_id": item.ID})
		}
		if item.Category != nil && !item.Category.IsAvailable {
			return nil, pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("menu item %q is no longer available", item.Name)).
				WithDetails(map[string]any{"menu_item_id": item.ID, "menu_category_id": item.MenuCategoryID})
		}

		snapshot, err := buildLine(item, line)
		if err != nil {
			return nil, err
		}
		result.Lines = append(result.Lines, *snapshot)
		result.SubtotalCents += snapshot.LineTotalCents
	}

	return result, nil
}

func buildLine(item *models.MenuItem, line LineInput) (*LineSnapshot, error) {
	optionsByID := make(map[uuid.UUID]*models.MenuItemOption, len(item.Options))
	for i := range item.Options {
		optionsByID[item.Options[i].ID] = &item.Options[i]
	}

	var adjustments int64
	options := make([]OptionSnapshot, 0, len(line.OptionIDs))
	seen := make(map[uuid.UUID]bool, len(line.OptionIDs))
	for _, optionID := range line.OptionIDs {
		option, ok := optionsByID[optionID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("option %s does not belong to item %q", optionID, item.Name))
		}
		if seen[optionID] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("option %s selected more than once", optionID))
		}
		seen[optionID] = true
		adjustments += option.PriceAdjustmentCents
		options = append(options, OptionSnapshot{
			MenuItemOptionID:     option.ID,
			Name:                 option.Name,
			PriceAdjustmentCents: option.PriceAdjustmentCents,
		})
	}

	unitPrice := item.BasePriceCents + adjustments
	return &LineSnapshot{
		MenuItemID:     item.ID,
		Name:           item.Name,
		UnitPriceCents: unitPrice,
		Quantity:       line.Quantity,
		LineTotalCents: unitPrice * int64(line.Quantity),
		Options:        options,
	}, nil
}
