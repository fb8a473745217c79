package bookings

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/discope/discope-backend/api/validators"
	internalbookings "github.com/discope/discope-backend/internal/bookings"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
)

const (
	maxNameLen        = 255
	maxDescriptionLen = 2000
)

type ContactRequest struct {
	Name  string  `json:"name" validate:"required,max=255"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,max=64"`
	Role  string  `json:"role" validate:"omitempty,max=64"`
}

type CreateBookingRequest struct {
	CenterID    uuid.UUID        `json:"center_id" validate:"required"`
	CustomerID  uuid.UUID        `json:"customer_id" validate:"required"`
	Description *string          `json:"description"`
	DateFrom    string           `json:"date_from" validate:"required"`
	DateTo      string           `json:"date_to" validate:"required"`
	Contacts    []ContactRequest `json:"contacts" validate:"omitempty,dive"`
}

func (r CreateBookingRequest) toInput() (internalbookings.CreateBookingInput, error) {
	from, err := validators.ParseDate(r.DateFrom, "date_from")
	if err != nil {
		return internalbookings.CreateBookingInput{}, err
	}
	to, err := validators.ParseDate(r.DateTo, "date_to")
	if err != nil {
		return internalbookings.CreateBookingInput{}, err
	}
	return internalbookings.CreateBookingInput{
		CenterID:    r.CenterID,
		CustomerID:  r.CustomerID,
		Description: sanitizeOptional(r.Description, maxDescriptionLen),
		DateFrom:    from,
		DateTo:      to,
		Contacts:    toContacts(r.Contacts),
	}, nil
}

type UpdateBookingRequest struct {
	Description *string           `json:"description"`
	Contacts    *[]ContactRequest `json:"contacts" validate:"omitempty,dive"`
}

func (r UpdateBookingRequest) toInput() internalbookings.UpdateBookingInput {
	in := internalbookings.UpdateBookingInput{Description: sanitizeOptional(r.Description, maxDescriptionLen)}
	if r.Contacts != nil {
		contacts := toContacts(*r.Contacts)
		in.Contacts = &contacts
	}
	return in
}

func toContacts(rows []ContactRequest) []internalbookings.ContactInput {
	out := make([]internalbookings.ContactInput, 0, len(rows))
	for _, c := range rows {
		out = append(out, internalbookings.ContactInput{
			Name:  validators.SanitizeString(c.Name, maxNameLen),
			Email: c.Email,
			Phone: c.Phone,
			Role:  c.Role,
		})
	}
	return out
}

func sanitizeOptional(value *string, maxLen int) *string {
	if value == nil {
		return nil
	}
	clean := validators.SanitizeString(*value, maxLen)
	return &clean
}

// GroupRequest carries a partial group update; absent fields keep their value.
type GroupRequest struct {
	Name        *string    `json:"name" validate:"omitempty,max=255"`
	GroupType   *string    `json:"group_type"`
	DateFrom    *string    `json:"date_from"`
	DateTo      *string    `json:"date_to"`
	NbPers      *int       `json:"nb_pers" validate:"omitempty,min=0"`
	RateClassID *uuid.UUID `json:"rate_class_id"`
	IsExtra     *bool      `json:"is_extra"`
}

func (r GroupRequest) toInput() (internalbookings.GroupInput, error) {
	in := internalbookings.GroupInput{
		Name:        sanitizeOptional(r.Name, maxNameLen),
		NbPers:      r.NbPers,
		RateClassID: r.RateClassID,
		IsExtra:     r.IsExtra,
	}
	if r.GroupType != nil {
		gt, err := enums.ParseGroupType(*r.GroupType)
		if err != nil {
			return in, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid group type").WithDetails(map[string]any{"field": "group_type"})
		}
		in.GroupType = &gt
	}
	var err error
	if in.DateFrom, err = validators.ParseOptionalDate(r.DateFrom, "date_from"); err != nil {
		return in, err
	}
	if in.DateTo, err = validators.ParseOptionalDate(r.DateTo, "date_to"); err != nil {
		return in, err
	}
	return in, nil
}

type PackRequest struct {
	PackID uuid.UUID `json:"pack_id" validate:"required"`
}

type AgeRangeRequest struct {
	Qty int `json:"qty" validate:"min=0"`
}

// LineRequest sets line fields. reset_unit_price and reset_vat_rate drop a
// manual override so the price list applies again.
type LineRequest struct {
	ProductID      *uuid.UUID       `json:"product_id"`
	Qty            *int             `json:"qty"`
	QtyVars        []int            `json:"qty_vars"`
	NbPers         *int             `json:"nb_pers" validate:"omitempty,min=0"`
	UnitPrice      *decimal.Decimal `json:"unit_price"`
	VatRate        *decimal.Decimal `json:"vat_rate"`
	ResetUnitPrice bool             `json:"reset_unit_price"`
	ResetVatRate   bool             `json:"reset_vat_rate"`
}

func (r LineRequest) toInput() internalbookings.LineInput {
	return internalbookings.LineInput{
		ProductID:      r.ProductID,
		Qty:            r.Qty,
		QtyVars:        r.QtyVars,
		NbPers:         r.NbPers,
		UnitPrice:      r.UnitPrice,
		VatRate:        r.VatRate,
		ResetUnitPrice: r.ResetUnitPrice,
		ResetVatRate:   r.ResetVatRate,
	}
}

type AdapterRequest struct {
	LineID *uuid.UUID      `json:"line_id"`
	Name   string          `json:"name" validate:"required,max=255"`
	Type   string          `json:"type" validate:"required"`
	Value  decimal.Decimal `json:"value"`
}

func (r AdapterRequest) toInput() (internalbookings.AdapterInput, error) {
	t, err := enums.ParseAdapterType(r.Type)
	if err != nil {
		return internalbookings.AdapterInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid adapter type").WithDetails(map[string]any{"field": "type"})
	}
	return internalbookings.AdapterInput{
		LineID: r.LineID,
		Name:   validators.SanitizeString(r.Name, maxNameLen),
		Type:   t,
		Value:  r.Value,
	}, nil
}

type AssignmentRequest struct {
	RentalUnitID uuid.UUID `json:"rental_unit_id" validate:"required"`
	Qty          int       `json:"qty" validate:"required,min=1"`
}

type MealPreferenceRequest struct {
	Type string `json:"type" validate:"required"`
	Qty  int    `json:"qty" validate:"min=0"`
}

type MealRequest struct {
	IsSelfProvided bool `json:"is_self_provided"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}
