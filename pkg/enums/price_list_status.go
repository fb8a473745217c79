package enums

import "fmt"

// PriceListStatus gates whether prices of a list are final.
type PriceListStatus string

const (
	PriceListStatusDraft     PriceListStatus = "draft"
	PriceListStatusPending   PriceListStatus = "pending"
	PriceListStatusPublished PriceListStatus = "published"
	PriceListStatusClosed    PriceListStatus = "closed"
)

var validPriceListStatuses = []PriceListStatus{
	PriceListStatusDraft,
	PriceListStatusPending,
	PriceListStatusPublished,
	PriceListStatusClosed,
}

// String implements fmt.Stringer.
func (v PriceListStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known PriceListStatus.
func (v PriceListStatus) IsValid() bool {
	for _, candidate := range validPriceListStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParsePriceListStatus converts raw input into a PriceListStatus.
func ParsePriceListStatus(value string) (PriceListStatus, error) {
	for _, candidate := range validPriceListStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price list status %q", value)
}
