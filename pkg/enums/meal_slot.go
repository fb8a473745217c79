package enums

import "fmt"

// MealSlot identifies the moment of a day a meal is served.
type MealSlot string

const (
	MealSlotMorning MealSlot = "morning"
	MealSlotMidday  MealSlot = "midday"
	MealSlotEvening MealSlot = "evening"
)

var validMealSlots = []MealSlot{
	MealSlotMorning,
	MealSlotMidday,
	MealSlotEvening,
}

// String implements fmt.Stringer.
func (v MealSlot) String() string {
	return string(v)
}

// IsValid reports whether the value is a known MealSlot.
func (v MealSlot) IsValid() bool {
	for _, candidate := range validMealSlots {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseMealSlot converts raw input into a MealSlot.
func ParseMealSlot(value string) (MealSlot, error) {
	for _, candidate := range validMealSlots {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid meal slot %q", value)
}
