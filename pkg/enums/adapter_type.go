package enums

import "fmt"

// AdapterType describes how a price adapter alters a line.
type AdapterType string

const (
	AdapterTypePercent AdapterType = "percent"
	AdapterTypeAmount  AdapterType = "amount"
	AdapterTypeFreebie AdapterType = "freebie"
)

var validAdapterTypes = []AdapterType{
	AdapterTypePercent,
	AdapterTypeAmount,
	AdapterTypeFreebie,
}

// String implements fmt.Stringer.
func (v AdapterType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known AdapterType.
func (v AdapterType) IsValid() bool {
	for _, candidate := range validAdapterTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseAdapterType converts raw input into a AdapterType.
func ParseAdapterType(value string) (AdapterType, error) {
	for _, candidate := range validAdapterTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid adapter type %q", value)
}
