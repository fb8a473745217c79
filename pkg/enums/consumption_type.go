package enums

import "fmt"

// ConsumptionType qualifies a rental unit occupancy.
type ConsumptionType string

const (
	ConsumptionTypeBook       ConsumptionType = "book"
	ConsumptionTypeOutOfOrder ConsumptionType = "ooo"
)

var validConsumptionTypes = []ConsumptionType{
	ConsumptionTypeBook,
	ConsumptionTypeOutOfOrder,
}

// String implements fmt.Stringer.
func (v ConsumptionType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known ConsumptionType.
func (v ConsumptionType) IsValid() bool {
	for _, candidate := range validConsumptionTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseConsumptionType converts raw input into a ConsumptionType.
func ParseConsumptionType(value string) (ConsumptionType, error) {
	for _, candidate := range validConsumptionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid consumption type %q", value)
}
