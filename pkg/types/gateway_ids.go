package types

import "strings"

// ChargeID is the payment gateway's identifier for a captured payment. It is
// distinct from RefundID on purpose: the gateway requires the charge identifier
// to issue a refund, and conflating the two was a recurring source of bugs.
type ChargeID string

// String implements fmt.Stringer.
func (c ChargeID) String() string {
	return string(c)
}

// IsZero reports whether no charge has been captured.
func (c ChargeID) IsZero() bool {
	return strings.TrimSpace(string(c)) == ""
}

// RefundID is the gateway's identifier for an issued refund.
type RefundID string

// String implements fmt.Stringer.
func (r RefundID) String() string {
	return string(r)
}

// IsZero reports whether no refund has been issued.
func (r RefundID) IsZero() bool {
	return strings.TrimSpace(string(r)) == ""
}
