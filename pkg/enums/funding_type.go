package enums

import "fmt"

// FundingType distinguishes payment plan installments from invoice balances.
type FundingType string

const (
	FundingTypeInstallment FundingType = "installment"
	FundingTypeInvoice     FundingType = "invoice"
	FundingTypeTransfer    FundingType = "transfer"
)

var validFundingTypes = []FundingType{
	FundingTypeInstallment,
	FundingTypeInvoice,
	FundingTypeTransfer,
}

// String implements fmt.Stringer.
func (v FundingType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known FundingType.
func (v FundingType) IsValid() bool {
	for _, candidate := range validFundingTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseFundingType converts raw input into a FundingType.
func ParseFundingType(value string) (FundingType, error) {
	for _, candidate := range validFundingTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid funding type %q", value)
}
