package bookings

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/discope/discope-backend/pkg/db/models"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
)

func negativeValue() error {
	return pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonNegativeValue)
}

// SetNbPers changes the occupancy of g. The first age range bucket absorbs the delta.
func (e *Engine) SetNbPers(ctx context.Context, b *models.Booking, g *models.BookingLineGroup, nbPers int) error {
	if nbPers < 0 {
		return negativeValue()
	}
	g.NbPers = nbPers
	return e.RefreshGroup(ctx, b, g)
}

// SetAgeRangeQty assigns qty persons of g to an age range. The group
// occupancy becomes the sum of its buckets.
func (e *Engine) SetAgeRangeQty(ctx context.Context, b *models.Booking, g *models.BookingLineGroup, ageRangeID uuid.UUID, qty int) error {
	if qty < 0 {
		return negativeValue()
	}
	if _, err := e.ageRange(ctx, ageRangeID); err != nil {
		return err
	}
	var assignment *models.BookingLineGroupAgeRangeAssignment
	for _, a := range g.AgeRanges {
		if a.AgeRangeID == ageRangeID {
			assignment = a
			break
		}
	}
	if assignment == nil {
		assignment = &models.BookingLineGroupAgeRangeAssignment{
			ID:         uuid.New(),
			BookingID:  b.ID,
			GroupID:    g.ID,
			AgeRangeID: ageRangeID,
			Position:   len(g.AgeRanges) + 1,
		}
		g.AgeRanges = append(g.AgeRanges, assignment)
	}
	assignment.Qty = qty
	g.NbPers = sumAgeRanges(g)
	return e.RefreshGroup(ctx, b, g)
}

// RemoveAgeRange drops a bucket. A group keeps at least one.
func (e *Engine) RemoveAgeRange(ctx context.Context, b *models.Booking, g *models.BookingLineGroup, ageRangeID uuid.UUID) error {
	idx := -1
	for i, a := range g.AgeRanges {
		if a.AgeRangeID == ageRangeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeUnknownObject, "age range assignment not found")
	}
	if len(g.AgeRanges) == 1 {
		return pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonMissingAgeRange)
	}
	g.AgeRanges = append(g.AgeRanges[:idx], g.AgeRanges[idx+1:]...)
	g.NbPers = sumAgeRanges(g)
	return e.RefreshGroup(ctx, b, g)
}

// syncAgeRanges restores sum(buckets) == nb_pers by resizing the first bucket.
func (e *Engine) syncAgeRanges(ctx context.Context, b *models.Booking, g *models.BookingLineGroup) error {
	sort.SliceStable(g.AgeRanges, func(i, j int) bool { return g.AgeRanges[i].Position < g.AgeRanges[j].Position })
	if len(g.AgeRanges) == 0 {
		id, err := e.defaultAgeRangeID(ctx, b)
		if err != nil {
			return err
		}
		g.AgeRanges = []*models.BookingLineGroupAgeRangeAssignment{{
			ID:         uuid.New(),
			BookingID:  b.ID,
			GroupID:    g.ID,
			AgeRangeID: id,
			Qty:        g.NbPers,
			Position:   1,
		}}
		return nil
	}
	others := 0
	for _, a := range g.AgeRanges[1:] {
		others += a.Qty
	}
	first := g.NbPers - others
	if first < 0 {
		return negativeValue()
	}
	g.AgeRanges[0].Qty = first
	return nil
}

func (e *Engine) defaultAgeRangeID(ctx context.Context, b *models.Booking) (uuid.UUID, error) {
	center, err := e.center(ctx, b.CenterID)
	if err != nil {
		return uuid.Nil, err
	}
	if center.DefaultAgeRangeID != nil {
		return *center.DefaultAgeRangeID, nil
	}
	ranges, err := e.activeAgeRanges(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if len(ranges) == 0 {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeInvalidConfig, pkgerrors.ReasonMissingAgeRange)
	}
	return ranges[0].ID, nil
}

// replaceAgeRanges puts every person of g into a single bucket.
func replaceAgeRanges(b *models.Booking, g *models.BookingLineGroup, ageRangeID uuid.UUID) {
	id := uuid.New()
	for _, a := range g.AgeRanges {
		if a.AgeRangeID == ageRangeID {
			id = a.ID
		}
	}
	g.AgeRanges = []*models.BookingLineGroupAgeRangeAssignment{{
		ID:         id,
		BookingID:  b.ID,
		GroupID:    g.ID,
		AgeRangeID: ageRangeID,
		Qty:        g.NbPers,
		Position:   1,
	}}
}

func sumAgeRanges(g *models.BookingLineGroup) int {
	total := 0
	for _, a := range g.AgeRanges {
		total += a.Qty
	}
	return total
}

func ageRangeQty(g *models.BookingLineGroup, ageRangeID uuid.UUID) int {
	for _, a := range g.AgeRanges {
		if a.AgeRangeID == ageRangeID {
			return a.Qty
		}
	}
	return 0
}
