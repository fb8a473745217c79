package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/discope/discope-backend/pkg/enums"
)

// Funding is an expected payment (installment or invoice) attached to a booking.
type Funding struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	BookingID        uuid.UUID         `gorm:"column:booking_id;type:uuid;not null;index"`
	CustomerID       uuid.UUID         `gorm:"column:customer_id;type:uuid;not null;index"`
	Name             string            `gorm:"column:name;not null"`
	Type             enums.FundingType `gorm:"column:type;type:text;not null"`
	Position         int               `gorm:"column:position;not null"`
	DueAmount        decimal.Decimal   `gorm:"column:due_amount;type:numeric(14,2);not null"`
	PaidAmount       decimal.Decimal   `gorm:"column:paid_amount;type:numeric(14,2);not null"`
	IsPaid           bool              `gorm:"column:is_paid;not null"`
	DueDate          time.Time         `gorm:"column:due_date;type:date;not null"`
	PaymentReference string            `gorm:"column:payment_reference;not null;index"`
	Payments         []*Payment        `gorm:"foreignKey:FundingID"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// HasBankPayment reports whether at least one payment arrived through a bank statement.
func (f *Funding) HasBankPayment() bool {
	for _, p := range f.Payments {
		if p.Origin == enums.PaymentOriginBank {
			return true
		}
	}
	return false
}

// Payment is a received amount allocated to a funding.
type Payment struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	FundingID       uuid.UUID           `gorm:"column:funding_id;type:uuid;not null;index"`
	BookingID       uuid.UUID           `gorm:"column:booking_id;type:uuid;not null;index"`
	CustomerID      uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	Amount          decimal.Decimal     `gorm:"column:amount;type:numeric(14,2);not null"`
	Origin          enums.PaymentOrigin `gorm:"column:origin;type:text;not null"`
	Method          enums.PaymentMethod `gorm:"column:method;type:text;not null"`
	StatementLineID *uuid.UUID          `gorm:"column:statement_line_id;type:uuid"`
	ReceiptDate     time.Time           `gorm:"column:receipt_date;not null"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
}
