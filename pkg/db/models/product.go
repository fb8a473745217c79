package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/discope/discope-backend/pkg/enums"
)

// ProductModel holds the behavior shared by the products (variants) built on it.
type ProductModel struct {
	ID                  uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	Name                string                    `gorm:"column:name;not null"`
	QtyAccountingMethod enums.QtyAccountingMethod `gorm:"column:qty_accounting_method;type:text;not null"`
	IsPack              bool                      `gorm:"column:is_pack;not null"`
	IsLocked            bool                      `gorm:"column:is_locked;not null"`
	HasOwnPrice         bool                      `gorm:"column:has_own_price;not null"`
	HasDuration         bool                      `gorm:"column:has_duration;not null"`
	Duration            int                       `gorm:"column:duration;not null"`
	Capacity            int                       `gorm:"column:capacity;not null"`
	IsAccomodation      bool                      `gorm:"column:is_accomodation;not null"`
	IsRepeatable        bool                      `gorm:"column:is_repeatable;not null"`
	IsMeal              bool                      `gorm:"column:is_meal;not null"`
	MealSlot            *enums.MealSlot           `gorm:"column:meal_slot;type:text"`
	IsCitytax           bool                      `gorm:"column:is_citytax;not null"`
	RentalUnitType      *string                   `gorm:"column:rental_unit_type"`
	ScheduleFrom        *string                   `gorm:"column:schedule_from"`
	ScheduleTo          *string                   `gorm:"column:schedule_to"`
	BookingTypeCode     *string                   `gorm:"column:booking_type_code"`
	CreatedAt           time.Time                 `gorm:"column:created_at;autoCreateTime"`
}

// Product is a sellable variant of a product model.
type Product struct {
	ID             uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	SKU            string        `gorm:"column:sku;not null;uniqueIndex"`
	Name           string        `gorm:"column:name;not null"`
	ProductModelID uuid.UUID     `gorm:"column:product_model_id;type:uuid;not null"`
	ProductModel   *ProductModel `gorm:"foreignKey:ProductModelID"`
	AgeRangeID     *uuid.UUID    `gorm:"column:age_range_id;type:uuid"`
	CanSell        bool          `gorm:"column:can_sell;not null"`
	CreatedAt      time.Time     `gorm:"column:created_at;autoCreateTime"`
}

// PackLine binds a constituent product to a pack product.
type PackLine struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ParentProductID uuid.UUID `gorm:"column:parent_product_id;type:uuid;not null;index"`
	ChildProductID  uuid.UUID `gorm:"column:child_product_id;type:uuid;not null"`
	ChildProduct    *Product  `gorm:"foreignKey:ChildProductID"`
	HasOwnQty       bool      `gorm:"column:has_own_qty;not null"`
	OwnQty          int       `gorm:"column:own_qty;not null"`
	HasOwnDuration  bool      `gorm:"column:has_own_duration;not null"`
	OwnDuration     int       `gorm:"column:own_duration;not null"`
	Position        int       `gorm:"column:position;not null"`
}
