package bookings

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/discope/discope-backend/pkg/dates"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
	"github.com/discope/discope-backend/pkg/money"
)

// AdapterInput describes a manual price adapter.
type AdapterInput struct {
	LineID *uuid.UUID
	Name   string
	Type   enums.AdapterType
	Value  decimal.Decimal
}

// AddManualAdapter attaches a manual discount to g or one of its lines.
func (e *Engine) AddManualAdapter(ctx context.Context, b *models.Booking, g *models.BookingLineGroup, in AdapterInput) (*models.PriceAdapter, error) {
	if !in.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidParam, "invalid_adapter_type")
	}
	if in.Value.IsNegative() {
		return nil, negativeValue()
	}
	if in.LineID != nil && g.FindLine(*in.LineID) == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnknownObject, "booking line not found")
	}
	a := &models.PriceAdapter{
		ID:        uuid.New(),
		BookingID: b.ID,
		GroupID:   g.ID,
		LineID:    in.LineID,
		Name:      in.Name,
		Type:      in.Type,
		Value:     in.Value,
		IsManual:  true,
	}
	g.Adapters = append(g.Adapters, a)
	if err := e.RefreshGroup(ctx, b, g); err != nil {
		return nil, err
	}
	return a, nil
}

// RemoveAdapter drops a manual adapter.
func (e *Engine) RemoveAdapter(ctx context.Context, b *models.Booking, g *models.BookingLineGroup, adapterID uuid.UUID) error {
	idx := -1
	for i, a := range g.Adapters {
		if a.ID == adapterID && a.IsManual {
			idx = i
		}
	}
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeUnknownObject, "price adapter not found")
	}
	g.Adapters = append(g.Adapters[:idx], g.Adapters[idx+1:]...)
	return e.RefreshGroup(ctx, b, g)
}

// refreshAdapters rebuilds the automatic adapters of g from the discount
// lists of the center. Manual adapters are kept.
func (e *Engine) refreshAdapters(ctx context.Context, b *models.Booking, g *models.BookingLineGroup) error {
	var adapters []*models.PriceAdapter
	auto := map[uuid.UUID]*models.PriceAdapter{}
	for _, a := range g.Adapters {
		if a.IsManual {
			adapters = append(adapters, a)
		} else if a.DiscountID != nil {
			auto[*a.DiscountID] = a
		}
	}
	if g.IsAutosale {
		g.Adapters = adapters
		return nil
	}

	center, err := e.center(ctx, b.CenterID)
	if err != nil {
		return err
	}
	discounts, err := e.catalog.ListDiscounts(ctx, center.PriceListCategoryID)
	if err != nil {
		return err
	}
	for _, d := range discounts {
		value, ok := discountValue(d, g)
		if !ok {
			continue
		}
		a, exists := auto[d.ID]
		if !exists {
			a = &models.PriceAdapter{ID: uuid.New(), BookingID: b.ID, GroupID: g.ID, DiscountID: &d.ID}
		}
		a.Name = d.Name
		a.Type = d.Type
		a.Value = value
		adapters = append(adapters, a)
	}
	g.Adapters = adapters
	return nil
}

// discountValue checks the conditions of d against g. Percent discounts bound
// to an age range are weighted by the share of that range.
func discountValue(d *models.Discount, g *models.BookingLineGroup) (decimal.Decimal, bool) {
	list := d.DiscountList
	if list == nil || !list.IsActive {
		return decimal.Zero, false
	}
	if list.RateClassID != nil && *list.RateClassID != g.RateClassID {
		return decimal.Zero, false
	}
	if !dates.Contains(list.DateFrom, list.DateTo, g.DateFrom) {
		return decimal.Zero, false
	}
	if d.MinNbPers > 0 && g.NbPers < d.MinNbPers {
		return decimal.Zero, false
	}
	if d.MinNights > 0 && g.Nights < d.MinNights {
		return decimal.Zero, false
	}
	if d.MaxNights > 0 && g.Nights > d.MaxNights {
		return decimal.Zero, false
	}
	value := d.Value
	if d.AgeRangeID != nil {
		qty := ageRangeQty(g, *d.AgeRangeID)
		if qty == 0 || g.NbPers == 0 {
			return decimal.Zero, false
		}
		switch d.Type {
		case enums.AdapterTypePercent:
			value = money.Round4(value.Mul(decimal.NewFromInt(int64(qty))).Div(decimal.NewFromInt(int64(g.NbPers))))
		case enums.AdapterTypeFreebie:
			if value.GreaterThan(decimal.NewFromInt(int64(qty))) {
				value = decimal.NewFromInt(int64(qty))
			}
		}
	}
	return value, true
}
