package bookings

import "github.com/discope/discope-backend/pkg/enums"

// Behaviour lists what the refresh cascade does for a group type.
type Behaviour struct {
	Accommodation bool
	RentalUnits   bool
	Autosale      bool
	Meals         bool
}

var behaviours = map[enums.GroupType]Behaviour{
	enums.GroupTypeSimple:  {},
	enums.GroupTypeSojourn: {Accommodation: true, RentalUnits: true, Autosale: true, Meals: true},
	enums.GroupTypeEvent:   {RentalUnits: true, Meals: true},
	enums.GroupTypeCamp:    {Accommodation: true, RentalUnits: true, Autosale: true, Meals: true},
}

// BehaviourOf returns the behaviour of t. Unknown types behave as simple groups.
func BehaviourOf(t enums.GroupType) Behaviour {
	return behaviours[t]
}
