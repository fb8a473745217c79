package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/discope/discope-backend/pkg/enums"
)

// OutboxEvent is an append-only domain event written in the same transaction
// as the change it describes.
type OutboxEvent struct {
	ID            uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	EventType     enums.OutboxEventType     `gorm:"column:event_type;type:text;not null"`
	AggregateType enums.OutboxAggregateType `gorm:"column:aggregate_type;type:text;not null"`
	AggregateID   uuid.UUID                 `gorm:"column:aggregate_id;type:uuid;not null"`
	Payload       json.RawMessage           `gorm:"column:payload;type:jsonb;not null"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime"`
	PublishedAt   *time.Time                `gorm:"column:published_at;index"`
	AttemptCount  int                       `gorm:"column:attempt_count;not null;default:0"`
	LastError     *string                   `gorm:"column:last_error"`
}

// OutboxDLQ captures terminal outbox failures.
type OutboxDLQ struct {
	ID            uuid.UUID                  `gorm:"column:id;type:uuid;primaryKey"`
	EventID       uuid.UUID                  `gorm:"column:event_id;type:uuid;not null"`
	EventType     enums.OutboxEventType      `gorm:"column:event_type;type:text;not null"`
	AggregateType enums.OutboxAggregateType  `gorm:"column:aggregate_type;type:text;not null"`
	AggregateID   uuid.UUID                  `gorm:"column:aggregate_id;type:uuid;not null"`
	Payload       json.RawMessage            `gorm:"column:payload_json;type:jsonb;not null"`
	ErrorReason   enums.OutboxDLQErrorReason `gorm:"column:error_reason;type:text;not null"`
	ErrorMessage  *string                    `gorm:"column:error_message"`
	AttemptCount  int                        `gorm:"column:attempt_count;not null;default:0"`
	FailedAt      time.Time                  `gorm:"column:failed_at;autoCreateTime"`
	CreatedAt     time.Time                  `gorm:"column:created_at;autoCreateTime"`
}

func (OutboxDLQ) TableName() string { return "outbox_dlq" }

// All lists every persisted model, in dependency order.
func All() []any {
	return []any{
		&CenterOffice{}, &Center{}, &Customer{}, &RateClass{}, &AgeRange{}, &RentalUnit{},
		&ProductModel{}, &Product{}, &PackLine{},
		&PriceList{}, &Price{}, &AutosaleList{}, &AutosaleLine{}, &DiscountList{}, &Discount{},
		&PaymentPlan{}, &PaymentPlanStep{},
		&Booking{}, &BookingContact{}, &BookingLineGroup{}, &BookingLine{},
		&BookingLineGroupAgeRangeAssignment{}, &SojournProductModel{}, &RentalUnitAssignment{},
		&MealPreference{}, &BookingMeal{}, &PriceAdapter{},
		&Funding{}, &Payment{}, &Contract{}, &ContractLine{},
		&BankStatement{}, &BankStatementLine{}, &Consumption{}, &Alert{},
		&OutboxEvent{}, &OutboxDLQ{},
	}
}
