package enums

import "fmt"

// GroupType discriminates booking line groups.
type GroupType string

const (
	GroupTypeSimple  GroupType = "simple"
	GroupTypeSojourn GroupType = "sojourn"
	GroupTypeEvent   GroupType = "event"
	GroupTypeCamp    GroupType = "camp"
)

var validGroupTypes = []GroupType{
	GroupTypeSimple,
	GroupTypeSojourn,
	GroupTypeEvent,
	GroupTypeCamp,
}

// String implements fmt.Stringer.
func (v GroupType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known GroupType.
func (v GroupType) IsValid() bool {
	for _, candidate := range validGroupTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseGroupType converts raw input into a GroupType.
func ParseGroupType(value string) (GroupType, error) {
	for _, candidate := range validGroupTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid group type %q", value)
}
