package bookings

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/discope/discope-backend/pkg/dates"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
)

// GroupInput carries the editable fields of a group. Nil fields are left untouched.
type GroupInput struct {
	Name        *string
	GroupType   *enums.GroupType
	DateFrom    *time.Time
	DateTo      *time.Time
	NbPers      *int
	RateClassID *uuid.UUID
	IsExtra     *bool
}

// AddGroup creates a group in b and refreshes it.
func (e *Engine) AddGroup(ctx context.Context, b *models.Booking, in GroupInput) (*models.BookingLineGroup, error) {
	g := &models.BookingLineGroup{
		ID:          uuid.New(),
		BookingID:   b.ID,
		Name:        "Séjour",
		GroupType:   enums.GroupTypeSojourn,
		DateFrom:    b.DateFrom,
		DateTo:      b.DateTo,
		NbPers:      1,
		Position:    nextGroupPosition(b),
		RateClassID: uuid.Nil,
	}
	if err := applyGroupInput(g, in); err != nil {
		return nil, err
	}
	if g.RateClassID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidParam, "missing_rate_class")
	}
	b.Groups = append(b.Groups, g)
	if err := e.RefreshGroup(ctx, b, g); err != nil {
		return nil, err
	}
	return g, nil
}

// UpdateGroup edits g and refreshes it.
func (e *Engine) UpdateGroup(ctx context.Context, b *models.Booking, g *models.BookingLineGroup, in GroupInput) error {
	if err := applyGroupInput(g, in); err != nil {
		return err
	}
	return e.RefreshGroup(ctx, b, g)
}

// RemoveGroup deletes g from b and refreshes the booking.
func (e *Engine) RemoveGroup(ctx context.Context, b *models.Booking, groupID uuid.UUID) error {
	if b.FindGroup(groupID) == nil {
		return pkgerrors.New(pkgerrors.CodeUnknownObject, "booking line group not found")
	}
	removeGroup(b, groupID)
	e.report = Report{}
	return e.refreshBooking(ctx, b)
}

func applyGroupInput(g *models.BookingLineGroup, in GroupInput) error {
	if in.Name != nil {
		g.Name = *in.Name
	}
	if in.GroupType != nil {
		if !in.GroupType.IsValid() {
			return pkgerrors.New(pkgerrors.CodeInvalidParam, "invalid_group_type")
		}
		g.GroupType = *in.GroupType
	}
	if in.DateFrom != nil {
		g.DateFrom = dates.Day(*in.DateFrom)
	}
	if in.DateTo != nil {
		g.DateTo = dates.Day(*in.DateTo)
	}
	if in.NbPers != nil {
		if *in.NbPers < 0 {
			return negativeValue()
		}
		g.NbPers = *in.NbPers
	}
	if in.RateClassID != nil {
		g.RateClassID = *in.RateClassID
	}
	if in.IsExtra != nil {
		g.IsExtra = *in.IsExtra
	}
	return nil
}

// refreshGroup is the group cascade. Steps run in a fixed order, each one
// reading what the previous ones produced.
func (e *Engine) refreshGroup(ctx context.Context, b *models.Booking, g *models.BookingLineGroup) error {
	if err := e.syncAgeRanges(ctx, b, g); err != nil {
		return err
	}
	if err := e.syncPack(ctx, b, g); err != nil {
		return err
	}

	// 1. nights
	nights := dates.Nights(g.DateFrom, g.DateTo)
	if nights < 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonInvalidDateRange)
	}
	g.Nights = nights
	// 2. autosale
	if err := e.refreshGroupAutosale(ctx, b, g); err != nil {
		return err
	}
	// 3. price adapters
	if err := e.refreshAdapters(ctx, b, g); err != nil {
		return err
	}
	// 4. meal preferences
	refreshMealPreferences(b, g)
	// 5. lines
	if err := e.refreshLines(ctx, b, g); err != nil {
		return err
	}
	// 6. rental units
	if err := e.refreshProductModels(ctx, b, g); err != nil {
		return err
	}
	// 7. price id
	if err := e.refreshGroupPriceID(ctx, b, g); err != nil {
		return err
	}
	// 8. totals
	refreshGroupTotals(g)
	// 9. time
	if err := e.refreshTime(ctx, g); err != nil {
		return err
	}
	// 10. meals
	return e.refreshMeals(ctx, g)
}

func refreshGroupTotals(g *models.BookingLineGroup) {
	total, price := decimal.Zero, decimal.Zero
	for _, l := range g.Lines {
		total = total.Add(l.Total)
		price = price.Add(l.Price)
	}
	g.Total, g.Price = total, price
}

func sortGroups(b *models.Booking) {
	sort.SliceStable(b.Groups, func(i, j int) bool { return b.Groups[i].Position < b.Groups[j].Position })
}

func nextGroupPosition(b *models.Booking) int {
	position := 0
	for _, g := range b.Groups {
		if !g.IsAutosale && g.Position > position {
			position = g.Position
		}
	}
	return position + 1
}

func removeGroup(b *models.Booking, id uuid.UUID) {
	kept := b.Groups[:0]
	for _, g := range b.Groups {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	b.Groups = kept
}
