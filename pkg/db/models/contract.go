package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/discope/discope-backend/pkg/enums"
)

// Contract freezes the priced content of a booking at confirmation time.
type Contract struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	BookingID  uuid.UUID            `gorm:"column:booking_id;type:uuid;not null;index"`
	CustomerID uuid.UUID            `gorm:"column:customer_id;type:uuid;not null"`
	Status     enums.ContractStatus `gorm:"column:status;type:text;not null"`
	IsLocked   bool                 `gorm:"column:is_locked;not null"`
	Total      decimal.Decimal      `gorm:"column:total;type:numeric(14,4);not null"`
	Price      decimal.Decimal      `gorm:"column:price;type:numeric(14,2);not null"`
	ValidUntil time.Time            `gorm:"column:valid_until;type:date;not null"`
	SignedAt   *time.Time           `gorm:"column:signed_at"`
	Lines      []*ContractLine      `gorm:"foreignKey:ContractID"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// ContractLine is a snapshot of a booking line.
type ContractLine struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ContractID uuid.UUID       `gorm:"column:contract_id;type:uuid;not null;index"`
	GroupName  string          `gorm:"column:group_name;not null"`
	Name       string          `gorm:"column:name;not null"`
	Qty        int             `gorm:"column:qty;not null"`
	FreeQty    int             `gorm:"column:free_qty;not null"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(14,4);not null"`
	VatRate    decimal.Decimal `gorm:"column:vat_rate;type:numeric(6,4);not null"`
	Discount   decimal.Decimal `gorm:"column:discount;type:numeric(6,4);not null"`
	Total      decimal.Decimal `gorm:"column:total;type:numeric(14,4);not null"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(14,2);not null"`
	Position   int             `gorm:"column:position;not null"`
}
