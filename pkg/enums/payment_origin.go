package enums

import "fmt"

// PaymentOrigin records where money was received.
type PaymentOrigin string

const (
	PaymentOriginCashdesk PaymentOrigin = "cashdesk"
	PaymentOriginBank     PaymentOrigin = "bank"
)

var validPaymentOrigins = []PaymentOrigin{
	PaymentOriginCashdesk,
	PaymentOriginBank,
}

// String implements fmt.Stringer.
func (v PaymentOrigin) String() string {
	return string(v)
}

// IsValid reports whether the value is a known PaymentOrigin.
func (v PaymentOrigin) IsValid() bool {
	for _, candidate := range validPaymentOrigins {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParsePaymentOrigin converts raw input into a PaymentOrigin.
func ParsePaymentOrigin(value string) (PaymentOrigin, error) {
	for _, candidate := range validPaymentOrigins {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment origin %q", value)
}
