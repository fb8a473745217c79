package bookings

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/discope/discope-backend/pkg/db/models"
)

// refreshBooking rolls the groups up into the booking: dates, occupancy,
// type, booking scoped autosale, totals and the TBC flag.
func (e *Engine) refreshBooking(ctx context.Context, b *models.Booking) error {
	sortGroups(b)

	first := true
	nbPers := 0
	for _, g := range b.Groups {
		if g.IsAutosale {
			continue
		}
		if first || g.DateFrom.Before(b.DateFrom) {
			b.DateFrom = g.DateFrom
		}
		if first || g.DateTo.After(b.DateTo) {
			b.DateTo = g.DateTo
		}
		first = false
		nbPers += g.NbPers
	}
	b.NbPers = nbPers

	typeCode, err := e.bookingType(ctx, b)
	if err != nil {
		return err
	}
	b.BookingTypeCode = typeCode

	if err := e.refreshBookingAutosale(ctx, b); err != nil {
		return err
	}
	sortGroups(b)

	total, price := decimal.Zero, decimal.Zero
	tbc := false
	for _, g := range b.Groups {
		total = total.Add(g.Total)
		price = price.Add(g.Price)
		for _, l := range g.Lines {
			tbc = tbc || l.IsPriceTBC
		}
	}
	b.Total, b.Price, b.IsPriceTBC = total, price, tbc
	return nil
}

// bookingType is the code of the first pack carrying one, or the default.
func (e *Engine) bookingType(ctx context.Context, b *models.Booking) (string, error) {
	for _, g := range b.Groups {
		if !g.HasPack || g.PackID == nil {
			continue
		}
		pack, err := e.product(ctx, *g.PackID)
		if err != nil {
			return "", err
		}
		if code := pack.ProductModel.BookingTypeCode; code != nil && *code != "" {
			return *code, nil
		}
	}
	return e.opts.DefaultBookingType, nil
}
