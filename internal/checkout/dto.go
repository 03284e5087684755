package checkout

import (
	"github.com/google/uuid"

	"github.com/truckbites/truckbites-backend/internal/delivery"
	"github.com/truckbites/truckbites-backend/internal/pricing"
	"github.com/truckbites/truckbites-backend/pkg/enums"
)

// PaymentMethod selects how the order is paid. Exactly one of InstrumentID or
// SourceToken must be set.
type PaymentMethod struct {
	InstrumentID *uuid.UUID
	SourceToken  string
	SaveCard     bool
}

// Input is a fully parsed checkout request. IdempotencyKey is supplied by the
// client and forwarded to the payment gateway so retries cannot double charge.
type Input struct {
	FoodTruckID     uuid.UUID
	FulfillmentType enums.FulfillmentType
	Items           []pricing.LineInput
	Delivery        delivery.Request
	Payment         PaymentMethod
	IdempotencyKey  string
}
