package enums

import "fmt"

// CancellationReason explains why a booking was cancelled.
type CancellationReason string

const (
	CancellationReasonOther            CancellationReason = "other"
	CancellationReasonOverbooking      CancellationReason = "overbooking"
	CancellationReasonDuplicate        CancellationReason = "duplicate"
	CancellationReasonInternal         CancellationReason = "internal_impediment"
	CancellationReasonExternal         CancellationReason = "external_impediment"
	CancellationReasonHealthImpediment CancellationReason = "health_impediment"
	CancellationReasonOtherLocation    CancellationReason = "other_location"
)

var validCancellationReasons = []CancellationReason{
	CancellationReasonOther,
	CancellationReasonOverbooking,
	CancellationReasonDuplicate,
	CancellationReasonInternal,
	CancellationReasonExternal,
	CancellationReasonHealthImpediment,
	CancellationReasonOtherLocation,
}

// String implements fmt.Stringer.
func (v CancellationReason) String() string {
	return string(v)
}

// IsValid reports whether the value is a known CancellationReason.
func (v CancellationReason) IsValid() bool {
	for _, candidate := range validCancellationReasons {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseCancellationReason converts raw input into a CancellationReason.
func ParseCancellationReason(value string) (CancellationReason, error) {
	for _, candidate := range validCancellationReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cancellation reason %q", value)
}
