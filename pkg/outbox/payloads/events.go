package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/discope/discope-backend/pkg/enums"
)

// BookingStatusChangedEvent is emitted on every workflow transition.
type BookingStatusChangedEvent struct {
	BookingID  uuid.UUID           `json:"booking_id"`
	Number     int64               `json:"number"`
	CenterID   uuid.UUID           `json:"center_id"`
	CustomerID uuid.UUID           `json:"customer_id"`
	From       enums.BookingStatus `json:"from"`
	To         enums.BookingStatus `json:"to"`
	Price      decimal.Decimal     `json:"price"`
}

// BookingCancelledEvent is emitted when a booking is cancelled.
type BookingCancelledEvent struct {
	BookingID  uuid.UUID                `json:"booking_id"`
	Number     int64                    `json:"number"`
	CenterID   uuid.UUID                `json:"center_id"`
	CustomerID uuid.UUID                `json:"customer_id"`
	Status     enums.BookingStatus      `json:"status"`
	Reason     enums.CancellationReason `json:"reason"`
}

// BookingOptionExpiredEvent is emitted when the option sweep reverts a booking to quote.
type BookingOptionExpiredEvent struct {
	BookingID uuid.UUID `json:"booking_id"`
	Number    int64     `json:"number"`
	ExpiredAt time.Time `json:"expired_at"`
}

// ContractSignedEvent is emitted when the customer signs a contract.
type ContractSignedEvent struct {
	ContractID uuid.UUID       `json:"contract_id"`
	BookingID  uuid.UUID       `json:"booking_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Price      decimal.Decimal `json:"price"`
	SignedAt   time.Time       `json:"signed_at"`
}

// PaymentReceivedEvent is emitted for every payment allocated to a funding.
type PaymentReceivedEvent struct {
	PaymentID  uuid.UUID           `json:"payment_id"`
	FundingID  uuid.UUID           `json:"funding_id"`
	BookingID  uuid.UUID           `json:"booking_id"`
	CustomerID uuid.UUID           `json:"customer_id"`
	Amount     decimal.Decimal     `json:"amount"`
	Origin     enums.PaymentOrigin `json:"origin"`
	Method     enums.PaymentMethod `json:"method"`
}

// FundingPaidEvent is emitted when a funding becomes fully paid.
type FundingPaidEvent struct {
	FundingID  uuid.UUID       `json:"funding_id"`
	BookingID  uuid.UUID       `json:"booking_id"`
	DueAmount  decimal.Decimal `json:"due_amount"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
}

// StatementLineReconciledEvent is emitted when a bank statement line is matched.
type StatementLineReconciledEvent struct {
	StatementLineID uuid.UUID       `json:"statement_line_id"`
	FundingID       uuid.UUID       `json:"funding_id"`
	PaymentID       uuid.UUID       `json:"payment_id"`
	Amount          decimal.Decimal `json:"amount"`
	Reference       string          `json:"reference,omitempty"`
}
