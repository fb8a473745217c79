package enums

import "fmt"

// MealPreferenceType captures dietary preferences within a group.
type MealPreferenceType string

const (
	MealPreferenceRegular    MealPreferenceType = "regular"
	MealPreferenceVegetarian MealPreferenceType = "vegetarian"
	MealPreferenceVegan      MealPreferenceType = "vegan"
	MealPreferenceGlutenFree MealPreferenceType = "gluten_free"
)

var validMealPreferenceTypes = []MealPreferenceType{
	MealPreferenceRegular,
	MealPreferenceVegetarian,
	MealPreferenceVegan,
	MealPreferenceGlutenFree,
}

// String implements fmt.Stringer.
func (v MealPreferenceType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known MealPreferenceType.
func (v MealPreferenceType) IsValid() bool {
	for _, candidate := range validMealPreferenceTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseMealPreferenceType converts raw input into a MealPreferenceType.
func ParseMealPreferenceType(value string) (MealPreferenceType, error) {
	for _, candidate := range validMealPreferenceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid meal preference type %q", value)
}
