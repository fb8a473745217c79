package enums

import "fmt"

// QtyAccountingMethod drives how a line quantity is derived from its group.
type QtyAccountingMethod string

const (
	QtyAccountingPerson       QtyAccountingMethod = "person"
	QtyAccountingAccomodation QtyAccountingMethod = "accomodation"
	QtyAccountingUnit         QtyAccountingMethod = "unit"
)

var validQtyAccountingMethods = []QtyAccountingMethod{
	QtyAccountingPerson,
	QtyAccountingAccomodation,
	QtyAccountingUnit,
}

// String implements fmt.Stringer.
func (v QtyAccountingMethod) String() string {
	return string(v)
}

// IsValid reports whether the value is a known QtyAccountingMethod.
func (v QtyAccountingMethod) IsValid() bool {
	for _, candidate := range validQtyAccountingMethods {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseQtyAccountingMethod converts raw input into a QtyAccountingMethod.
func ParseQtyAccountingMethod(value string) (QtyAccountingMethod, error) {
	for _, candidate := range validQtyAccountingMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid qty accounting method %q", value)
}
