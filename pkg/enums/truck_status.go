package enums

import "fmt"

// TruckStatus reflects whether a truck is taking orders.
type TruckStatus string

const (
	TruckStatusOnline  TruckStatus = "online"
	TruckStatusOffline TruckStatus = "offline"
	TruckStatusPaused  TruckStatus = "paused"
)

var validTruckStatuses = []TruckStatus{
	TruckStatusOnline,
	TruckStatusOffline,
	TruckStatusPaused,
}

// String implements fmt.Stringer.
func (t TruckStatus) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TruckStatus.
func (t TruckStatus) IsValid() bool {
	for _, candidate := range validTruckStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTruckStatus converts raw input into a TruckStatus.
func ParseTruckStatus(value string) (TruckStatus, error) {
	for _, candidate := range validTruckStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid truck status %q", value)
}
