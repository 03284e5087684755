package types

import (
	"fmt"
	"strings"
)

// Address is the postal address snapshot persisted with an order. Coordinates
// are deliberately not part of the snapshot; they exist only transiently for
// the delivery radius check.
type Address struct {
	Line1      string  `json:"line1" validate:"required"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city" validate:"required"`
	State      string  `json:"state" validate:"required"`
	PostalCode string  `json:"postal_code" validate:"required"`
	Country    string  `json:"country,omitempty"`
}

// Validate checks the required postal fields.
func (a Address) Validate() error {
	if strings.TrimSpace(a.Line1) == "" {
		return fmt.Errorf("address: missing line1")
	}
	if strings.TrimSpace(a.City) == "" {
		return fmt.Errorf("address: missing city")
	}
	if strings.TrimSpace(a.State) == "" {
		return fmt.Errorf("address: missing state")
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		return fmt.Errorf("address: missing postal_code")
	}
	return nil
}

// Formatted renders the single-line form sent to the geocoder.
func (a Address) Formatted() string {
	parts := []string{a.Line1}
	if a.Line2 != nil && strings.TrimSpace(*a.Line2) != "" {
		parts = append(parts, *a.Line2)
	}
	parts = append(parts, a.City, a.State, a.PostalCode)
	country := strings.TrimSpace(a.Country)
	if country == "" {
		country = "US"
	}
	parts = append(parts, country)
	return strings.Join(parts, ", ")
}

// LatLng is a latitude/longitude pair.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
