package enums

import "fmt"

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateBooking       OutboxAggregateType = "booking"
	AggregateFunding       OutboxAggregateType = "funding"
	AggregateContract      OutboxAggregateType = "contract"
	AggregateStatementLine OutboxAggregateType = "bank_statement_line"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateBooking,
	AggregateFunding,
	AggregateContract,
	AggregateStatementLine,
}

// IsValid reports whether the value matches a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType names a domain event stored in the outbox.
type OutboxEventType string

const (
	EventBookingStatusChanged    OutboxEventType = "booking_status_changed"
	EventBookingCancelled        OutboxEventType = "booking_cancelled"
	EventBookingOptionExpired    OutboxEventType = "booking_option_expired"
	EventContractSigned          OutboxEventType = "contract_signed"
	EventPaymentReceived         OutboxEventType = "payment_received"
	EventFundingPaid             OutboxEventType = "funding_paid"
	EventStatementLineReconciled OutboxEventType = "statement_line_reconciled"
)

var validOutboxEventTypes = []OutboxEventType{
	EventBookingStatusChanged,
	EventBookingCancelled,
	EventBookingOptionExpired,
	EventContractSigned,
	EventPaymentReceived,
	EventFundingPaid,
	EventStatementLineReconciled,
}

// IsValid reports whether the value matches a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
