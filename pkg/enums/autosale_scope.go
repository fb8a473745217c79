package enums

import "fmt"

// AutosaleScope tells whether an autosale product applies per booking or per group.
type AutosaleScope string

const (
	AutosaleScopeBooking AutosaleScope = "booking"
	AutosaleScopeGroup   AutosaleScope = "group"
)

var validAutosaleScopes = []AutosaleScope{
	AutosaleScopeBooking,
	AutosaleScopeGroup,
}

// String implements fmt.Stringer.
func (v AutosaleScope) String() string {
	return string(v)
}

// IsValid reports whether the value is a known AutosaleScope.
func (v AutosaleScope) IsValid() bool {
	for _, candidate := range validAutosaleScopes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseAutosaleScope converts raw input into a AutosaleScope.
func ParseAutosaleScope(value string) (AutosaleScope, error) {
	for _, candidate := range validAutosaleScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid autosale scope %q", value)
}
