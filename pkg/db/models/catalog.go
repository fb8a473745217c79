package models

import (
	"time"

	"github.com/google/uuid"
)

// CenterOffice groups centers managed by the same team.
type CenterOffice struct {
	ID                   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name                 string    `gorm:"column:name;not null"`
	RentalUnitAutoAssign bool      `gorm:"column:rental_unit_auto_assign;not null"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime"`
}

// Center is a lodging site with its own catalog configuration.
type Center struct {
	ID                  uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	Name                string        `gorm:"column:name;not null"`
	Code                string        `gorm:"column:code;not null"`
	OfficeID            uuid.UUID     `gorm:"column:office_id;type:uuid;not null"`
	Office              *CenterOffice `gorm:"foreignKey:OfficeID"`
	PriceListCategoryID uuid.UUID     `gorm:"column:price_list_category_id;type:uuid;not null"`
	AutosaleCategoryID  *uuid.UUID    `gorm:"column:autosale_category_id;type:uuid"`
	HasCitytax          bool          `gorm:"column:has_citytax;not null"`
	DefaultAgeRangeID   *uuid.UUID    `gorm:"column:default_age_range_id;type:uuid"`
	CreatedAt           time.Time     `gorm:"column:created_at;autoCreateTime"`
}

// AutoAssignsRentalUnits reports whether the center office lets the engine pick rental units.
func (c *Center) AutoAssignsRentalUnits() bool {
	return c != nil && c.Office != nil && c.Office.RentalUnitAutoAssign
}

// Customer is the party a booking is invoiced to.
type Customer struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name        string     `gorm:"column:name;not null"`
	Email       *string    `gorm:"column:email"`
	RateClassID *uuid.UUID `gorm:"column:rate_class_id;type:uuid"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// RateClass segments customers for pricing and discounts ("general public", "school", ...).
type RateClass struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Code      string    `gorm:"column:code;not null"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// AgeRange is a named bracket of ages persons of a group are split into.
type AgeRange struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	AgeFrom   int       `gorm:"column:age_from;not null"`
	AgeTo     int       `gorm:"column:age_to;not null"`
	IsActive  bool      `gorm:"column:is_active;not null"`
	Position  int       `gorm:"column:position;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// RentalUnit is a physical unit (room, dormitory, meeting room) of a center.
type RentalUnit struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CenterID       uuid.UUID `gorm:"column:center_id;type:uuid;not null;index"`
	Name           string    `gorm:"column:name;not null"`
	Type           string    `gorm:"column:type;not null"`
	Capacity       int       `gorm:"column:capacity;not null"`
	IsAccomodation bool      `gorm:"column:is_accomodation;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
