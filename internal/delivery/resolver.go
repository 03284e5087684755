package delivery

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/truckbites/truckbites-backend/pkg/db/models"
	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
	"github.com/truckbites/truckbites-backend/pkg/types"
)

const earthRadiusKM = 6371.0

// Request is the delivery portion of a checkout. Exactly one of
// SavedAddressID or Address must be set.
type Request struct {
	SavedAddressID *uuid.UUID
	Address        *types.Address
}

// Resolution is the validated delivery outcome: the address snapshot to
// persist, the fee to charge, and the computed distance.
type Resolution struct {
	Address    types.Address
	FeeCents   int64
	DistanceKM float64
}

type addressReader interface {
	FindByID(ctx context.Context, addressID, customerID uuid.UUID) (*models.CustomerAddress, error)
}

type geocoder interface {
	Geocode(ctx context.Context, address types.Address) (types.LatLng, error)
}

// Resolver validates delivery eligibility for a truck.
type Resolver struct {
	addresses addressReader
	geocoder  geocoder
}

func NewResolver(addresses addressReader, geo geocoder) *Resolver {
	return &Resolver{addresses: addresses, geocoder: geo}
}

// Resolve materializes the delivery address, geocodes it, and enforces the
// truck's delivery rules. Coordinates are used only for the radius check and
// are not part of the returned snapshot.
func (r *Resolver) Resolve(ctx context.Context, customerID uuid.UUID, truck *models.FoodTruck, req Request) (*Resolution, error) {
	if !truck.DeliveryEnabled {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "this truck does not offer delivery")
	}

	address, err := r.materialize(ctx, customerID, req)
	if err != nil {
		return nil, err
	}
	if err := address.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery address")
	}

	point, err := r.geocoder.Geocode(ctx, *address)
	if err != nil {
		return nil, err
	}

	distance := haversineKM(truck.Latitude, truck.Longitude, point.Latitude, point.Longitude)
	if distance > truck.DeliveryRadiusKM {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("address is %.1f km away, outside the %.1f km delivery radius", distance, truck.DeliveryRadiusKM)).
			WithDetails(map[string]any{
				"distance_km": roundTenth(distance),
				"radius_km":   truck.DeliveryRadiusKM,
			})
	}

	return &Resolution{
		Address:    *address,
		FeeCents:   truck.DeliveryFeeCents,
		DistanceKM: distance,
	}, nil
}

func (r *Resolver) materialize(ctx context.Context, customerID uuid.UUID, req Request) (*types.Address, error) {
	switch {
	case req.SavedAddressID != nil && req.Address != nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provide either a saved address or an inline address, not both")
	case req.SavedAddressID != nil:
		saved, err := r.addresses.FindByID(ctx, *req.SavedAddressID, customerID)
		if err != nil {
			return nil, err
		}
		addr := saved.Address
		return &addr, nil
	case req.Address != nil:
		return req.Address, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery orders require an address")
	}
}

// haversineKM computes the great-circle distance between two points.
func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	deltaPhi := toRadians(lat2 - lat1)
	deltaLambda := toRadians(lon2 - lon1)

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
