package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/discope/discope-backend/pkg/enums"
)

// BankStatement is an imported account statement.
type BankStatement struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Date           time.Time            `gorm:"column:date;type:date;not null"`
	Account        string               `gorm:"column:account;not null"`
	OpeningBalance decimal.Decimal      `gorm:"column:opening_balance;type:numeric(14,2);not null"`
	ClosingBalance decimal.Decimal      `gorm:"column:closing_balance;type:numeric(14,2);not null"`
	Lines          []*BankStatementLine `gorm:"foreignKey:StatementID"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
}

// BankStatementLine is a single bank movement waiting to be matched against a funding.
type BankStatementLine struct {
	ID                 uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	StatementID        uuid.UUID                 `gorm:"column:statement_id;type:uuid;not null;index"`
	Date               time.Time                 `gorm:"column:date;type:date;not null"`
	Amount             decimal.Decimal           `gorm:"column:amount;type:numeric(14,2);not null"`
	StructuredMessage  *string                   `gorm:"column:structured_message"`
	Message            *string                   `gorm:"column:message"`
	CounterpartName    *string                   `gorm:"column:counterpart_name"`
	CounterpartAccount *string                   `gorm:"column:counterpart_account"`
	Status             enums.StatementLineStatus `gorm:"column:status;type:text;not null;index"`
	FundingID          *uuid.UUID                `gorm:"column:funding_id;type:uuid"`
	PaymentID          *uuid.UUID                `gorm:"column:payment_id;type:uuid"`
	CreatedAt          time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
