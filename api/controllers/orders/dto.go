package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/truckbites/truckbites-backend/pkg/db/models"
)

type lineItemRequest struct {
	MenuItemID uuid.UUID   `json:"menu_item_id" validate:"required"`
	Quantity   int         `json:"quantity" validate:"required,gt=0"`
	OptionIDs  []uuid.UUID `json:"option_ids"`
}

type paymentMethodRequest struct {
	PaymentInstrumentID *uuid.UUID `json:"payment_instrument_id"`
	CardToken           string     `json:"card_token"`
	SaveCard            bool       `json:"save_card"`
}

type createOrderRequest struct {
	FoodTruckUID    uuid.UUID            `json:"food_truck_uid" validate:"required"`
	FulfillmentType string               `json:"fulfillment_type" validate:"required"`
	Items           []lineItemRequest    `json:"items" validate:"required,min=1,dive"`
	SavedAddressID  *uuid.UUID           `json:"saved_address_id"`
	DeliveryAddress *addressRequest      `json:"delivery_address"`
	PaymentMethod   paymentMethodRequest `json:"payment_method" validate:"required"`
	IdempotencyKey  string               `json:"idempotency_key" validate:"required"`
}

type addressRequest struct {
	Line1      string  `json:"line1" validate:"required"`
	Line2      *string `json:"line2"`
	City       string  `json:"city" validate:"required"`
	State      string  `json:"state" validate:"required"`
	PostalCode string  `json:"postal_code" validate:"required"`
	Country    string  `json:"country"`
}

type updateStatusRequest struct {
	NewStatus                  string     `json:"new_status" validate:"required"`
	Reason                     *string    `json:"reason"`
	UpdatedEstimatedReadyTime  *time.Time `json:"updated_estimated_ready_time"`
	UpdatedEstimatedDeliveryAt *time.Time `json:"updated_estimated_delivery_time"`
}

type createOrderResponse struct {
	OrderUID              uuid.UUID  `json:"order_uid"`
	OrderNumber           int64      `json:"order_number"`
	Status                string     `json:"status"`
	TotalAmount           int64      `json:"total_amount"`
	EstimatedReadyTime    *time.Time `json:"estimated_ready_time,omitempty"`
	EstimatedDeliveryTime *time.Time `json:"estimated_delivery_time,omitempty"`
}

type orderItemOptionView struct {
	Name                 string `json:"name"`
	PriceAdjustmentCents int64  `json:"price_adjustment_cents"`
}

type orderItemView struct {
	Name           string                `json:"name"`
	UnitPriceCents int64                 `json:"unit_price_cents"`
	Quantity       int                   `json:"quantity"`
	LineTotalCents int64                 `json:"line_total_cents"`
	Options        []orderItemOptionView `json:"options,omitempty"`
}

type orderView struct {
	OrderUID              uuid.UUID       `json:"order_uid"`
	OrderNumber           int64           `json:"order_number"`
	FoodTruckID           uuid.UUID       `json:"food_truck_id"`
	FulfillmentType       string          `json:"fulfillment_type"`
	Status                string          `json:"status"`
	Currency              string          `json:"currency"`
	SubtotalCents         int64           `json:"subtotal_cents"`
	TaxCents              int64           `json:"tax_cents"`
	DeliveryFeeCents      int64           `json:"delivery_fee_cents"`
	TotalCents            int64           `json:"total_cents"`
	RefundStatus          string          `json:"refund_status"`
	Reason                *string         `json:"reason,omitempty"`
	Items                 []orderItemView `json:"items,omitempty"`
	OrderTime             time.Time       `json:"order_time"`
	EstimatedReadyTime    *time.Time      `json:"estimated_ready_time,omitempty"`
	EstimatedDeliveryTime *time.Time      `json:"estimated_delivery_time,omitempty"`
	AcceptedAt            *time.Time      `json:"accepted_at,omitempty"`
	ReadyAt               *time.Time      `json:"ready_at,omitempty"`
	FinalizedAt           *time.Time      `json:"finalized_at,omitempty"`
}

func toCreateResponse(order *models.Order) createOrderResponse {
	return createOrderResponse{
		OrderUID:              order.ID,
		OrderNumber:           order.OrderNumber,
		Status:                order.Status.String(),
		TotalAmount:           order.TotalCents,
		EstimatedReadyTime:    order.EstimatedReadyAt,
		EstimatedDeliveryTime: order.EstimatedDeliveryAt,
	}
}

func toOrderView(order *models.Order) orderView {
	view := orderView{
		OrderUID:              order.ID,
		OrderNumber:           order.OrderNumber,
		FoodTruckID:           order.FoodTruckID,
		FulfillmentType:       order.FulfillmentType.String(),
		Status:                order.Status.String(),
		Currency:              order.Currency.String(),
		SubtotalCents:         order.SubtotalCents,
		TaxCents:              order.TaxCents,
		DeliveryFeeCents:      order.DeliveryFeeCents,
		TotalCents:            order.TotalCents,
		RefundStatus:          order.RefundStatus.String(),
		Reason:                order.Reason,
		OrderTime:             order.OrderTime,
		EstimatedReadyTime:    order.EstimatedReadyAt,
		EstimatedDeliveryTime: order.EstimatedDeliveryAt,
		AcceptedAt:            order.AcceptedAt,
		ReadyAt:               order.ReadyAt,
		FinalizedAt:           order.FinalizedAt,
	}
	for _, item := range order.Items {
		itemView := orderItemView{
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
			LineTotalCents: item.LineTotalCents,
		}
		for _, option := range item.Options {
			itemView.Options = append(itemView.Options, orderItemOptionView{
				Name:                 option.Name,
				PriceAdjustmentCents: option.PriceAdjustmentCents,
			})
		}
		view.Items = append(view.Items, itemView)
	}
	return view
}

func toOrderViews(rows []models.Order) []orderView {
	views := make([]orderView, 0, len(rows))
	for i := range rows {
		views = append(views, toOrderView(&rows[i]))
	}
	return views
}
