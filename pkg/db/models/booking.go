package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/discope/discope-backend/pkg/enums"
)

// Booking is the root aggregate of a reservation.
type Booking struct {
	ID                 uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	Number             int64                     `gorm:"column:number;not null;uniqueIndex"`
	CenterID           uuid.UUID                 `gorm:"column:center_id;type:uuid;not null;index"`
	CustomerID         uuid.UUID                 `gorm:"column:customer_id;type:uuid;not null;index"`
	Description        *string                   `gorm:"column:description"`
	BookingTypeCode    string                    `gorm:"column:booking_type_code;not null"`
	Status             enums.BookingStatus       `gorm:"column:status;type:text;not null;index"`
	DateFrom           time.Time                 `gorm:"column:date_from;type:date;not null"`
	DateTo             time.Time                 `gorm:"column:date_to;type:date;not null"`
	NbPers             int                       `gorm:"column:nb_pers;not null"`
	Total              decimal.Decimal           `gorm:"column:total;type:numeric(14,4);not null"`
	Price              decimal.Decimal           `gorm:"column:price;type:numeric(14,2);not null"`
	PaidAmount         decimal.Decimal           `gorm:"column:paid_amount;type:numeric(14,2);not null"`
	IsPriceTBC         bool                      `gorm:"column:is_price_tbc;not null"`
	IsCancelled        bool                      `gorm:"column:is_cancelled;not null"`
	CancellationReason *enums.CancellationReason `gorm:"column:cancellation_reason;type:text"`
	OptionExpiresAt    *time.Time                `gorm:"column:option_expires_at"`
	ArchivedAt         *time.Time                `gorm:"column:archived_at"`
	Groups             []*BookingLineGroup       `gorm:"foreignKey:BookingID"`
	Contacts           []*BookingContact         `gorm:"foreignKey:BookingID"`
	CreatedAt          time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

// FindGroup returns the group with the given id, or nil.
func (b *Booking) FindGroup(id uuid.UUID) *BookingLineGroup {
	for _, g := range b.Groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// AutosaleGroup returns the dedicated group holding booking level autosale lines, or nil.
func (b *Booking) AutosaleGroup() *BookingLineGroup {
	for _, g := range b.Groups {
		if g.IsAutosale {
			return g
		}
	}
	return nil
}

// BookingContact is a person to reach about the booking.
type BookingContact struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	BookingID uuid.UUID `gorm:"column:booking_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	Email     *string   `gorm:"column:email"`
	Phone     *string   `gorm:"column:phone"`
	Role      string    `gorm:"column:role;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// BookingLineGroup is a sub-booking (sojourn, event, camp or simple service set)
// with its own dates and occupancy.
type BookingLineGroup struct {
	ID              uuid.UUID                             `gorm:"column:id;type:uuid;primaryKey"`
	BookingID       uuid.UUID                             `gorm:"column:booking_id;type:uuid;not null;index"`
	Name            string                                `gorm:"column:name;not null"`
	Position        int                                   `gorm:"column:position;not null"`
	GroupType       enums.GroupType                       `gorm:"column:group_type;type:text;not null"`
	DateFrom        time.Time                             `gorm:"column:date_from;type:date;not null"`
	DateTo          time.Time                             `gorm:"column:date_to;type:date;not null"`
	TimeFrom        string                                `gorm:"column:time_from;not null"`
	TimeTo          string                                `gorm:"column:time_to;not null"`
	Nights          int                                   `gorm:"column:nights;not null"`
	NbPers          int                                   `gorm:"column:nb_pers;not null"`
	RateClassID     uuid.UUID                             `gorm:"column:rate_class_id;type:uuid;not null"`
	HasPack         bool                                  `gorm:"column:has_pack;not null"`
	PackID          *uuid.UUID                            `gorm:"column:pack_id;type:uuid"`
	IsLocked        bool                                  `gorm:"column:is_locked;not null"`
	IsExtra         bool                                  `gorm:"column:is_extra;not null"`
	IsAutosale      bool                                  `gorm:"column:is_autosale;not null"`
	PriceID         *uuid.UUID                            `gorm:"column:price_id;type:uuid"`
	Total           decimal.Decimal                       `gorm:"column:total;type:numeric(14,4);not null"`
	Price           decimal.Decimal                       `gorm:"column:price;type:numeric(14,2);not null"`
	Lines           []*BookingLine                        `gorm:"foreignKey:GroupID"`
	AgeRanges       []*BookingLineGroupAgeRangeAssignment `gorm:"foreignKey:GroupID"`
	ProductModels   []*SojournProductModel                `gorm:"foreignKey:GroupID"`
	MealPreferences []*MealPreference                     `gorm:"foreignKey:GroupID"`
	Meals           []*BookingMeal                        `gorm:"foreignKey:GroupID"`
	Adapters        []*PriceAdapter                       `gorm:"foreignKey:GroupID"`
	CreatedAt       time.Time                             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                             `gorm:"column:updated_at;autoUpdateTime"`
}

// FindLine returns the line with the given id, or nil.
func (g *BookingLineGroup) FindLine(id uuid.UUID) *BookingLine {
	for _, l := range g.Lines {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// BookingLine is a priced service instance.
type BookingLine struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	BookingID          uuid.UUID       `gorm:"column:booking_id;type:uuid;not null;index"`
	GroupID            uuid.UUID       `gorm:"column:group_id;type:uuid;not null;index"`
	ProductID          uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductModelID     uuid.UUID       `gorm:"column:product_model_id;type:uuid;not null"`
	Name               string          `gorm:"column:name;not null"`
	Position           int             `gorm:"column:position;not null"`
	Qty                int             `gorm:"column:qty;not null"`
	FreeQty            int             `gorm:"column:free_qty;not null"`
	QtyVars            []int           `gorm:"column:qty_vars;type:jsonb;serializer:json"`
	NbPers             *int            `gorm:"column:nb_pers"`
	PackOwnQty         *int            `gorm:"column:pack_own_qty"`
	PackOwnDuration    *int            `gorm:"column:pack_own_duration"`
	PriceID            *uuid.UUID      `gorm:"column:price_id;type:uuid"`
	UnitPrice          decimal.Decimal `gorm:"column:unit_price;type:numeric(14,4);not null"`
	VatRate            decimal.Decimal `gorm:"column:vat_rate;type:numeric(6,4);not null"`
	Discount           decimal.Decimal `gorm:"column:discount;type:numeric(6,4);not null"`
	Total              decimal.Decimal `gorm:"column:total;type:numeric(14,4);not null"`
	Price              decimal.Decimal `gorm:"column:price;type:numeric(14,2);not null"`
	HasManualUnitPrice bool            `gorm:"column:has_manual_unit_price;not null"`
	HasManualVatRate   bool            `gorm:"column:has_manual_vat_rate;not null"`
	IsAutosale         bool            `gorm:"column:is_autosale;not null"`
	IsFromPack         bool            `gorm:"column:is_from_pack;not null"`
	IsPackZeroPrice    bool            `gorm:"column:is_pack_zero_price;not null"`
	IsAccomodation     bool            `gorm:"column:is_accomodation;not null"`
	IsMeal             bool            `gorm:"column:is_meal;not null"`
	IsPriceTBC         bool            `gorm:"column:is_price_tbc;not null"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// BookingLineGroupAgeRangeAssignment partitions the persons of a group across age ranges.
type BookingLineGroupAgeRangeAssignment struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	BookingID  uuid.UUID `gorm:"column:booking_id;type:uuid;not null;index"`
	GroupID    uuid.UUID `gorm:"column:group_id;type:uuid;not null;index"`
	AgeRangeID uuid.UUID `gorm:"column:age_range_id;type:uuid;not null"`
	Qty        int       `gorm:"column:qty;not null"`
	Position   int       `gorm:"column:position;not null"`
}

// SojournProductModel is an accommodation requirement of a group, derived
// from its accommodation lines.
type SojournProductModel struct {
	ID             uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	BookingID      uuid.UUID               `gorm:"column:booking_id;type:uuid;not null;index"`
	GroupID        uuid.UUID               `gorm:"column:group_id;type:uuid;not null;index"`
	ProductModelID uuid.UUID               `gorm:"column:product_model_id;type:uuid;not null"`
	IsAccomodation bool                    `gorm:"column:is_accomodation;not null"`
	Qty            int                     `gorm:"column:qty;not null"`
	Assignments    []*RentalUnitAssignment `gorm:"foreignKey:SojournProductModelID"`
}

// AssignedQty sums the persons covered by the rental unit assignments.
func (m *SojournProductModel) AssignedQty() int {
	total := 0
	for _, a := range m.Assignments {
		total += a.Qty
	}
	return total
}

// RentalUnitAssignment binds a rental unit to an accommodation requirement
// for the dates of its group.
type RentalUnitAssignment struct {
	ID                    uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	BookingID             uuid.UUID `gorm:"column:booking_id;type:uuid;not null;index"`
	GroupID               uuid.UUID `gorm:"column:group_id;type:uuid;not null"`
	SojournProductModelID uuid.UUID `gorm:"column:sojourn_product_model_id;type:uuid;not null;index"`
	RentalUnitID          uuid.UUID `gorm:"column:rental_unit_id;type:uuid;not null"`
	Qty                   int       `gorm:"column:qty;not null"`
	IsAccomodation        bool      `gorm:"column:is_accomodation;not null"`
	IsAuto                bool      `gorm:"column:is_auto;not null"`
}

// MealPreference splits the persons of a group by diet.
type MealPreference struct {
	ID        uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	BookingID uuid.UUID                `gorm:"column:booking_id;type:uuid;not null;index"`
	GroupID   uuid.UUID                `gorm:"column:group_id;type:uuid;not null;index"`
	Type      enums.MealPreferenceType `gorm:"column:type;type:text;not null"`
	Qty       int                      `gorm:"column:qty;not null"`
}

// BookingMeal is a concrete meal served to a group.
type BookingMeal struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	BookingID      uuid.UUID      `gorm:"column:booking_id;type:uuid;not null;index"`
	GroupID        uuid.UUID      `gorm:"column:group_id;type:uuid;not null;index"`
	Date           time.Time      `gorm:"column:date;type:date;not null"`
	Slot           enums.MealSlot `gorm:"column:slot;type:text;not null"`
	Qty            int            `gorm:"column:qty;not null"`
	IsSelfProvided bool           `gorm:"column:is_self_provided;not null"`
}

// PriceAdapter alters the price of the lines of a group. Automatic adapters
// come from discount lists and are rebuilt on refresh; manual ones are kept.
type PriceAdapter struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	BookingID  uuid.UUID         `gorm:"column:booking_id;type:uuid;not null;index"`
	GroupID    uuid.UUID         `gorm:"column:group_id;type:uuid;not null;index"`
	LineID     *uuid.UUID        `gorm:"column:line_id;type:uuid"`
	DiscountID *uuid.UUID        `gorm:"column:discount_id;type:uuid"`
	Name       string            `gorm:"column:name;not null"`
	Type       enums.AdapterType `gorm:"column:type;type:text;not null"`
	Value      decimal.Decimal   `gorm:"column:value;type:numeric(14,4);not null"`
	IsManual   bool              `gorm:"column:is_manual;not null"`
}
