package orders

import (
	"net/http"

	"github.com/truckbites/truckbites-backend/api/validators"
	"github.com/truckbites/truckbites-backend/internal/checkout"
	"github.com/truckbites/truckbites-backend/internal/delivery"
	"github.com/truckbites/truckbites-backend/internal/pricing"
	"github.com/truckbites/truckbites-backend/pkg/enums"
	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
	"github.com/truckbites/truckbites-backend/pkg/types"
)

// Create handles POST /orders: the customer checkout transaction.
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	customerID, err := c.authedUser(r)
	if err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	var req createOrderRequest
	if err := validators.DecodeAndValidate(r, &req); err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	input, err := toCheckoutInput(req)
	if err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	order, err := c.checkout.Checkout(r.Context(), customerID, *input)
	if err != nil {
		c.writer.Error(r.Context(), w, err)
		return
	}

	c.writer.Success(w, http.StatusCreated, toCreateResponse(order))
}

func toCheckoutInput(req createOrderRequest) (*checkout.Input, error) {
	fulfillment, err := enums.ParseFulfillmentType(req.FulfillmentType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fulfillment_type")
	}

	lines := make([]pricing.LineInput, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, pricing.LineInput{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			OptionIDs:  item.OptionIDs,
		})
	}

	input := &checkout.Input{
		FoodTruckID:     req.FoodTruckUID,
		FulfillmentType: fulfillment,
		Items:           lines,
		Payment: checkout.PaymentMethod{
			InstrumentID: req.PaymentMethod.PaymentInstrumentID,
			SourceToken:  req.PaymentMethod.CardToken,
			SaveCard:     req.PaymentMethod.SaveCard,
		},
		IdempotencyKey: req.IdempotencyKey,
	}

	if fulfillment == enums.FulfillmentTypeDelivery {
		input.Delivery = delivery.Request{SavedAddressID: req.SavedAddressID}
		if req.DeliveryAddress != nil {
			input.Delivery.Address = &types.Address{
				Line1:      req.DeliveryAddress.Line1,
				Line2:      req.DeliveryAddress.Line2,
				City:       req.DeliveryAddress.City,
				State:      req.DeliveryAddress.State,
				PostalCode: req.DeliveryAddress.PostalCode,
				Country:    req.DeliveryAddress.Country,
			}
		}
	}

	return input, nil
}
