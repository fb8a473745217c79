package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
)

const dateLayout = "2006-01-02"

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// Booking is the API view of a booking and its groups.
type Booking struct {
	ID                 uuid.UUID                 `json:"id"`
	Number             int64                     `json:"number"`
	CenterID           uuid.UUID                 `json:"center_id"`
	CustomerID         uuid.UUID                 `json:"customer_id"`
	Description        *string                   `json:"description,omitempty"`
	Type               string                    `json:"type"`
	Status             enums.BookingStatus       `json:"status"`
	DateFrom           string                    `json:"date_from"`
	DateTo             string                    `json:"date_to"`
	NbPers             int                       `json:"nb_pers"`
	Total              decimal.Decimal           `json:"total"`
	Price              decimal.Decimal           `json:"price"`
	PaidAmount         decimal.Decimal           `json:"paid_amount"`
	IsPriceTBC         bool                      `json:"is_price_tbc"`
	IsCancelled        bool                      `json:"is_cancelled"`
	CancellationReason *enums.CancellationReason `json:"cancellation_reason,omitempty"`
	OptionExpiresAt    *time.Time                `json:"option_expires_at,omitempty"`
	ArchivedAt         *time.Time                `json:"archived_at,omitempty"`
	Contacts           []Contact                 `json:"contacts"`
	Groups             []Group                   `json:"groups"`
	UpdatedAt          time.Time                 `json:"updated_at"`
}

type Contact struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email *string   `json:"email,omitempty"`
	Phone *string   `json:"phone,omitempty"`
	Role  string    `json:"role"`
}

// Group is the API view of a booking line group.
type Group struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	Position        int              `json:"position"`
	GroupType       enums.GroupType  `json:"group_type"`
	DateFrom        string           `json:"date_from"`
	DateTo          string           `json:"date_to"`
	TimeFrom        string           `json:"time_from"`
	TimeTo          string           `json:"time_to"`
	Nights          int              `json:"nights"`
	NbPers          int              `json:"nb_pers"`
	RateClassID     uuid.UUID        `json:"rate_class_id"`
	PackID          *uuid.UUID       `json:"pack_id,omitempty"`
	IsLocked        bool             `json:"is_locked"`
	IsExtra         bool             `json:"is_extra"`
	IsAutosale      bool             `json:"is_autosale"`
	Total           decimal.Decimal  `json:"total"`
	Price           decimal.Decimal  `json:"price"`
	AgeRanges       []AgeRange       `json:"age_ranges"`
	Lines           []Line           `json:"lines"`
	Adapters        []Adapter        `json:"adapters"`
	Accommodations  []Accommodation  `json:"accommodations"`
	MealPreferences []MealPreference `json:"meal_preferences"`
	Meals           []Meal           `json:"meals"`
}

type AgeRange struct {
	ID         uuid.UUID `json:"id"`
	AgeRangeID uuid.UUID `json:"age_range_id"`
	Qty        int       `json:"qty"`
}

// Line is the API view of a priced booking line.
type Line struct {
	ID                 uuid.UUID       `json:"id"`
	ProductID          uuid.UUID       `json:"product_id"`
	Name               string          `json:"name"`
	Position           int             `json:"position"`
	Qty                int             `json:"qty"`
	FreeQty            int             `json:"free_qty"`
	QtyVars            []int           `json:"qty_vars,omitempty"`
	NbPers             *int            `json:"nb_pers,omitempty"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	VatRate            decimal.Decimal `json:"vat_rate"`
	Discount           decimal.Decimal `json:"discount"`
	Total              decimal.Decimal `json:"total"`
	Price              decimal.Decimal `json:"price"`
	HasManualUnitPrice bool            `json:"has_manual_unit_price"`
	HasManualVatRate   bool            `json:"has_manual_vat_rate"`
	IsAutosale         bool            `json:"is_autosale"`
	IsFromPack         bool            `json:"is_from_pack"`
	IsPackZeroPrice    bool            `json:"is_pack_zero_price"`
	IsAccomodation     bool            `json:"is_accomodation"`
	IsMeal             bool            `json:"is_meal"`
	IsPriceTBC         bool            `json:"is_price_tbc"`
}

type Adapter struct {
	ID       uuid.UUID         `json:"id"`
	LineID   *uuid.UUID        `json:"line_id,omitempty"`
	Name     string            `json:"name"`
	Type     enums.AdapterType `json:"type"`
	Value    decimal.Decimal   `json:"value"`
	IsManual bool              `json:"is_manual"`
}

// Accommodation reports the assignment progress of an accommodation requirement.
type Accommodation struct {
	ID             uuid.UUID    `json:"id"`
	ProductModelID uuid.UUID    `json:"product_model_id"`
	Qty            int          `json:"qty"`
	AssignedQty    int          `json:"assigned_qty"`
	Assignments    []Assignment `json:"assignments"`
}

type Assignment struct {
	ID           uuid.UUID `json:"id"`
	RentalUnitID uuid.UUID `json:"rental_unit_id"`
	Qty          int       `json:"qty"`
	IsAuto       bool      `json:"is_auto"`
}

type MealPreference struct {
	Type enums.MealPreferenceType `json:"type"`
	Qty  int                      `json:"qty"`
}

type Meal struct {
	ID             uuid.UUID      `json:"id"`
	Date           string         `json:"date"`
	Slot           enums.MealSlot `json:"slot"`
	Qty            int            `json:"qty"`
	IsSelfProvided bool           `json:"is_self_provided"`
}

// NewBooking maps a loaded aggregate. Groups and lines keep their position order.
func NewBooking(b *models.Booking) Booking {
	out := Booking{
		ID:                 b.ID,
		Number:             b.Number,
		CenterID:           b.CenterID,
		CustomerID:         b.CustomerID,
		Description:        b.Description,
		Type:               b.BookingTypeCode,
		Status:             b.Status,
		DateFrom:           formatDate(b.DateFrom),
		DateTo:             formatDate(b.DateTo),
		NbPers:             b.NbPers,
		Total:              b.Total,
		Price:              b.Price,
		PaidAmount:         b.PaidAmount,
		IsPriceTBC:         b.IsPriceTBC,
		IsCancelled:        b.IsCancelled,
		CancellationReason: b.CancellationReason,
		OptionExpiresAt:    b.OptionExpiresAt,
		ArchivedAt:         b.ArchivedAt,
		Contacts:           make([]Contact, 0, len(b.Contacts)),
		Groups:             make([]Group, 0, len(b.Groups)),
		UpdatedAt:          b.UpdatedAt,
	}
	for _, c := range b.Contacts {
		out.Contacts = append(out.Contacts, Contact{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone, Role: c.Role})
	}
	for _, g := range b.Groups {
		out.Groups = append(out.Groups, newGroup(g))
	}
	return out
}

func newGroup(g *models.BookingLineGroup) Group {
	out := Group{
		ID:              g.ID,
		Name:            g.Name,
		Position:        g.Position,
		GroupType:       g.GroupType,
		DateFrom:        formatDate(g.DateFrom),
		DateTo:          formatDate(g.DateTo),
		TimeFrom:        g.TimeFrom,
		TimeTo:          g.TimeTo,
		Nights:          g.Nights,
		NbPers:          g.NbPers,
		RateClassID:     g.RateClassID,
		PackID:          g.PackID,
		IsLocked:        g.IsLocked,
		IsExtra:         g.IsExtra,
		IsAutosale:      g.IsAutosale,
		Total:           g.Total,
		Price:           g.Price,
		AgeRanges:       make([]AgeRange, 0, len(g.AgeRanges)),
		Lines:           make([]Line, 0, len(g.Lines)),
		Adapters:        make([]Adapter, 0, len(g.Adapters)),
		Accommodations:  make([]Accommodation, 0, len(g.ProductModels)),
		MealPreferences: make([]MealPreference, 0, len(g.MealPreferences)),
		Meals:           make([]Meal, 0, len(g.Meals)),
	}
	for _, a := range g.AgeRanges {
		out.AgeRanges = append(out.AgeRanges, AgeRange{ID: a.ID, AgeRangeID: a.AgeRangeID, Qty: a.Qty})
	}
	for _, l := range g.Lines {
		out.Lines = append(out.Lines, Line{
			ID:                 l.ID,
			ProductID:          l.ProductID,
			Name:               l.Name,
			Position:           l.Position,
			Qty:                l.Qty,
			FreeQty:            l.FreeQty,
			QtyVars:            l.QtyVars,
			NbPers:             l.NbPers,
			UnitPrice:          l.UnitPrice,
			VatRate:            l.VatRate,
			Discount:           l.Discount,
			Total:              l.Total,
			Price:              l.Price,
			HasManualUnitPrice: l.HasManualUnitPrice,
			HasManualVatRate:   l.HasManualVatRate,
			IsAutosale:         l.IsAutosale,
			IsFromPack:         l.IsFromPack,
			IsPackZeroPrice:    l.IsPackZeroPrice,
			IsAccomodation:     l.IsAccomodation,
			IsMeal:             l.IsMeal,
			IsPriceTBC:         l.IsPriceTBC,
		})
	}
	for _, a := range g.Adapters {
		out.Adapters = append(out.Adapters, Adapter{ID: a.ID, LineID: a.LineID, Name: a.Name, Type: a.Type, Value: a.Value, IsManual: a.IsManual})
	}
	for _, m := range g.ProductModels {
		if !m.IsAccomodation {
			continue
		}
		acc := Accommodation{
			ID:             m.ID,
			ProductModelID: m.ProductModelID,
			Qty:            m.Qty,
			AssignedQty:    m.AssignedQty(),
			Assignments:    make([]Assignment, 0, len(m.Assignments)),
		}
		for _, a := range m.Assignments {
			acc.Assignments = append(acc.Assignments, Assignment{ID: a.ID, RentalUnitID: a.RentalUnitID, Qty: a.Qty, IsAuto: a.IsAuto})
		}
		out.Accommodations = append(out.Accommodations, acc)
	}
	for _, p := range g.MealPreferences {
		out.MealPreferences = append(out.MealPreferences, MealPreference{Type: p.Type, Qty: p.Qty})
	}
	for _, m := range g.Meals {
		out.Meals = append(out.Meals, Meal{ID: m.ID, Date: formatDate(m.Date), Slot: m.Slot, Qty: m.Qty, IsSelfProvided: m.IsSelfProvided})
	}
	return out
}
