package enums

import "fmt"

// BookingStatus tracks the booking lifecycle from quote to balance.
type BookingStatus string

const (
	BookingStatusQuote         BookingStatus = "quote"
	BookingStatusOption        BookingStatus = "option"
	BookingStatusConfirmed     BookingStatus = "confirmed"
	BookingStatusCheckedIn     BookingStatus = "checkedin"
	BookingStatusCheckedOut    BookingStatus = "checkedout"
	BookingStatusInvoiced      BookingStatus = "invoiced"
	BookingStatusDebitBalance  BookingStatus = "debit_balance"
	BookingStatusCreditBalance BookingStatus = "credit_balance"
	BookingStatusBalanced      BookingStatus = "balanced"
)

var validBookingStatuses = []BookingStatus{
	BookingStatusQuote,
	BookingStatusOption,
	BookingStatusConfirmed,
	BookingStatusCheckedIn,
	BookingStatusCheckedOut,
	BookingStatusInvoiced,
	BookingStatusDebitBalance,
	BookingStatusCreditBalance,
	BookingStatusBalanced,
}

// String implements fmt.Stringer.
func (v BookingStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known BookingStatus.
func (v BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseBookingStatus converts raw input into a BookingStatus.
func ParseBookingStatus(value string) (BookingStatus, error) {
	for _, candidate := range validBookingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking status %q", value)
}

// IsBalance reports whether the booking reached one of the terminal balance states.
func (v BookingStatus) IsBalance() bool {
	switch v {
	case BookingStatusDebitBalance, BookingStatusCreditBalance, BookingStatusBalanced:
		return true
	}
	return false
}

// IsBeyondQuote reports whether the booking left the quote state.
func (v BookingStatus) IsBeyondQuote() bool {
	return v != BookingStatusQuote
}

// HasProgressed reports whether the customer already started the stay.
func (v BookingStatus) HasProgressed() bool {
	switch v {
	case BookingStatusCheckedIn, BookingStatusCheckedOut, BookingStatusInvoiced:
		return true
	}
	return v.IsBalance()
}
