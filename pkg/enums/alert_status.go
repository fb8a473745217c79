package enums

import "fmt"

// AlertStatus tracks operational alerts raised on bookings.
type AlertStatus string

const (
	AlertStatusPending   AlertStatus = "pending"
	AlertStatusResolved  AlertStatus = "resolved"
	AlertStatusDismissed AlertStatus = "dismissed"
)

var validAlertStatuses = []AlertStatus{
	AlertStatusPending,
	AlertStatusResolved,
	AlertStatusDismissed,
}

// String implements fmt.Stringer.
func (v AlertStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known AlertStatus.
func (v AlertStatus) IsValid() bool {
	for _, candidate := range validAlertStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseAlertStatus converts raw input into a AlertStatus.
func ParseAlertStatus(value string) (AlertStatus, error) {
	for _, candidate := range validAlertStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid alert status %q", value)
}
