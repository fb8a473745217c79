package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/discope/discope-backend/pkg/enums"
)

// PriceList is a dated set of prices for a center category, optionally bound to a rate class.
type PriceList struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Name        string                `gorm:"column:name;not null"`
	CategoryID  uuid.UUID             `gorm:"column:category_id;type:uuid;not null;index"`
	RateClassID *uuid.UUID            `gorm:"column:rate_class_id;type:uuid"`
	DateFrom    time.Time             `gorm:"column:date_from;type:date;not null"`
	DateTo      time.Time             `gorm:"column:date_to;type:date;not null"`
	Status      enums.PriceListStatus `gorm:"column:status;type:text;not null"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}

// Price is the VAT excluded price of a product within a price list.
type Price struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	PriceListID uuid.UUID       `gorm:"column:price_list_id;type:uuid;not null;index"`
	PriceList   *PriceList      `gorm:"foreignKey:PriceListID"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(14,4);not null"`
	VatRate     decimal.Decimal `gorm:"column:vat_rate;type:numeric(6,4);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// AutosaleList groups the products automatically added to bookings of a category.
type AutosaleList struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name       string    `gorm:"column:name;not null"`
	CategoryID uuid.UUID `gorm:"column:category_id;type:uuid;not null;index"`
	DateFrom   time.Time `gorm:"column:date_from;type:date;not null"`
	DateTo     time.Time `gorm:"column:date_to;type:date;not null"`
	IsActive   bool      `gorm:"column:is_active;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

// AutosaleLine is a product added when its conditions hold.
type AutosaleLine struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	AutosaleListID uuid.UUID           `gorm:"column:autosale_list_id;type:uuid;not null;index"`
	AutosaleList   *AutosaleList       `gorm:"foreignKey:AutosaleListID"`
	ProductID      uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	Scope          enums.AutosaleScope `gorm:"column:scope;type:text;not null"`
	MinNbPers      int                 `gorm:"column:min_nb_pers;not null"`
	MinNights      int                 `gorm:"column:min_nights;not null"`
	AgeFrom        *int                `gorm:"column:age_from"`
	AgeTo          *int                `gorm:"column:age_to"`
}

// DiscountList holds discounts for a category, optionally bound to a rate class.
type DiscountList struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name        string     `gorm:"column:name;not null"`
	CategoryID  uuid.UUID  `gorm:"column:category_id;type:uuid;not null;index"`
	RateClassID *uuid.UUID `gorm:"column:rate_class_id;type:uuid"`
	DateFrom    time.Time  `gorm:"column:date_from;type:date;not null"`
	DateTo      time.Time  `gorm:"column:date_to;type:date;not null"`
	IsActive    bool       `gorm:"column:is_active;not null"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// Discount describes a price adapter and the conditions it applies under.
// Zero conditions are ignored.
type Discount struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	DiscountListID uuid.UUID         `gorm:"column:discount_list_id;type:uuid;not null;index"`
	DiscountList   *DiscountList     `gorm:"foreignKey:DiscountListID"`
	Name           string            `gorm:"column:name;not null"`
	Type           enums.AdapterType `gorm:"column:type;type:text;not null"`
	Value          decimal.Decimal   `gorm:"column:value;type:numeric(14,4);not null"`
	MinNbPers      int               `gorm:"column:min_nb_pers;not null"`
	MinNights      int               `gorm:"column:min_nights;not null"`
	MaxNights      int               `gorm:"column:max_nights;not null"`
	AgeRangeID     *uuid.UUID        `gorm:"column:age_range_id;type:uuid"`
}

// PaymentPlan splits the booking price into installments.
type PaymentPlan struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	CenterID    *uuid.UUID         `gorm:"column:center_id;type:uuid"`
	RateClassID *uuid.UUID         `gorm:"column:rate_class_id;type:uuid"`
	Name        string             `gorm:"column:name;not null"`
	Steps       []*PaymentPlanStep `gorm:"foreignKey:PaymentPlanID"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
}

// PaymentPlanStep is one installment. DaysBeforeArrival takes precedence over DaysAfterConfirm when set.
type PaymentPlanStep struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	PaymentPlanID     uuid.UUID       `gorm:"column:payment_plan_id;type:uuid;not null;index"`
	Position          int             `gorm:"column:position;not null"`
	Name              string          `gorm:"column:name;not null"`
	Percent           decimal.Decimal `gorm:"column:percent;type:numeric(6,2);not null"`
	DaysAfterConfirm  int             `gorm:"column:days_after_confirm;not null"`
	DaysBeforeArrival *int            `gorm:"column:days_before_arrival"`
}
