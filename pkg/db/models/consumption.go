package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/discope/discope-backend/pkg/enums"
)

// Consumption marks a rental unit as occupied for one night.
type Consumption struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	BookingID    *uuid.UUID            `gorm:"column:booking_id;type:uuid;index"`
	GroupID      *uuid.UUID            `gorm:"column:group_id;type:uuid"`
	CenterID     uuid.UUID             `gorm:"column:center_id;type:uuid;not null"`
	RentalUnitID uuid.UUID             `gorm:"column:rental_unit_id;type:uuid;not null;index"`
	Date         time.Time             `gorm:"column:date;type:date;not null;index"`
	Type         enums.ConsumptionType `gorm:"column:type;type:text;not null"`
	Qty          int                   `gorm:"column:qty;not null"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
}
