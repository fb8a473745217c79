package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/discope/discope-backend/pkg/enums"
)

// Alert is an operational warning attached to a booking, raised by the
// refresh or payment checks.
type Alert struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	BookingID uuid.UUID         `gorm:"column:booking_id;type:uuid;not null;index"`
	Code      string            `gorm:"column:code;not null"`
	Message   string            `gorm:"column:message;not null"`
	Status    enums.AlertStatus `gorm:"column:status;type:text;not null"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
