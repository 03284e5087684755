package delivery

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/truckbites/truckbites-backend/pkg/db/models"
	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
	"github.com/truckbites/truckbites-backend/pkg/types"
)

type stubAddressReader struct {
	saved *models.CustomerAddress
	err   error
}

func (s *stubAddressReader) FindByID(_ context.Context, _, _ uuid.UUID) (*models.CustomerAddress, error) {
	return s.saved, s.err
}

type stubGeocoder struct {
	point types.LatLng
	err   error
}

func (s *stubGeocoder) Geocode(_ context.Context, _ types.Address) (types.LatLng, error) {
	return s.point, s.err
}

func deliveryTruck(radiusKM float64) *models.FoodTruck {
	return &models.FoodTruck{
		ID:               uuid.New(),
		DeliveryEnabled:  true,
		DeliveryFeeCents: 399,
		DeliveryRadiusKM: radiusKM,
		Latitude:         30.2672,
		Longitude:        -97.7431,
	}
}

func inlineAddress() *types.Address {
	return &types.Address{
		Line1:      "1100 Congress Ave",
		City:       "Austin",
		State:      "TX",
		PostalCode: "78701",
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

func TestResolveWithinRadius(t *testing.T) {
	truck := deliveryTruck(5)
	// Roughly 1.2 km north of the truck.
	geo := &stubGeocoder{point: types.LatLng{Latitude: 30.278, Longitude: -97.7431}}

	r := NewResolver(&stubAddressReader{}, geo)
	res, err := r.Resolve(context.Background(), uuid.New(), truck, Request{Address: inlineAddress()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FeeCents != 399 {
		t.Fatalf("expected fee 399, got %d", res.FeeCents)
	}
	if res.DistanceKM <= 0 || res.DistanceKM >= 5 {
		t.Fatalf("expected small positive distance, got %f", res.DistanceKM)
	}
	if res.Address.Line1 != "1100 Congress Ave" {
		t.Fatalf("expected address snapshot, got %+v", res.Address)
	}
}

func TestResolveOutsideRadiusConflicts(t *testing.T) {
	truck := deliveryTruck(2)
	// About 11 km away.
	geo := &stubGeocoder{point: types.LatLng{Latitude: 30.3672, Longitude: -97.7431}}

	r := NewResolver(&stubAddressReader{}, geo)
	_, err := r.Resolve(context.Background(), uuid.New(), truck, Request{Address: inlineAddress()})
	expectCode(t, err, pkgerrors.CodeConflict)
	if !strings.Contains(err.Error(), "delivery radius") {
		t.Fatalf("expected radius message, got %v", err)
	}
}

func TestResolveDeliveryDisabledConflicts(t *testing.T) {
	truck := deliveryTruck(5)
	truck.DeliveryEnabled = false

	r := NewResolver(&stubAddressReader{}, &stubGeocoder{})
	_, err := r.Resolve(context.Background(), uuid.New(), truck, Request{Address: inlineAddress()})
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestResolveSavedAddressOwnership(t *testing.T) {
	truck := deliveryTruck(5)
	reader := &stubAddressReader{err: pkgerrors.New(pkgerrors.CodeNotFound, "saved address not found")}
	savedID := uuid.New()

	r := NewResolver(reader, &stubGeocoder{})
	_, err := r.Resolve(context.Background(), uuid.New(), truck, Request{SavedAddressID: &savedID})
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestResolveSavedAddressUsed(t *testing.T) {
	truck := deliveryTruck(5)
	reader := &stubAddressReader{saved: &models.CustomerAddress{Address: *inlineAddress()}}
	savedID := uuid.New()
	geo := &stubGeocoder{point: types.LatLng{Latitude: 30.268, Longitude: -97.744}}

	r := NewResolver(reader, geo)
	res, err := r.Resolve(context.Background(), uuid.New(), truck, Request{SavedAddressID: &savedID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Address.City != "Austin" {
		t.Fatalf("expected saved address snapshot, got %+v", res.Address)
	}
}

func TestResolveRequiresExactlyOneAddressSource(t *testing.T) {
	truck := deliveryTruck(5)
	savedID := uuid.New()
	r := NewResolver(&stubAddressReader{}, &stubGeocoder{})

	_, err := r.Resolve(context.Background(), uuid.New(), truck, Request{})
	expectCode(t, err, pkgerrors.CodeValidation)

	_, err = r.Resolve(context.Background(), uuid.New(), truck, Request{
		SavedAddressID: &savedID,
		Address:        inlineAddress(),
	})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestHaversineKnownDistance(t *testing.T) {
	// Austin to Dallas is roughly 293 km.
	got := haversineKM(30.2672, -97.7431, 32.7767, -96.7970)
	if math.Abs(got-293) > 5 {
		t.Fatalf("expected ~293 km, got %f", got)
	}
}
