package bookings

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/discope/discope-backend/pkg/dates"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
)

const (
	autosaleGroupName     = "Suppléments automatiques"
	autosaleGroupPosition = 9999
)

func (e *Engine) autosaleLines(ctx context.Context, center *models.Center, scope enums.AutosaleScope) ([]*models.AutosaleLine, error) {
	if center.AutosaleCategoryID == nil {
		return nil, nil
	}
	lines, err := e.catalog.ListAutosaleLines(ctx, *center.AutosaleCategoryID)
	if err != nil {
		return nil, err
	}
	var out []*models.AutosaleLine
	for _, l := range lines {
		if l.Scope == scope {
			out = append(out, l)
		}
	}
	return out, nil
}

// wantedAutosales returns, per product, the number of persons an autosale
// applies to for the given stay.
func (e *Engine) wantedAutosales(ctx context.Context, center *models.Center, lines []*models.AutosaleLine, from time.Time, nights int, ranges []*models.BookingLineGroupAgeRangeAssignment) (map[uuid.UUID]int, error) {
	wanted := map[uuid.UUID]int{}
	for _, al := range lines {
		list := al.AutosaleList
		if list == nil || !list.IsActive || !dates.Contains(list.DateFrom, list.DateTo, from) {
			continue
		}
		if al.MinNights > 0 && nights < al.MinNights {
			continue
		}
		product, err := e.product(ctx, al.ProductID)
		if err != nil {
			return nil, err
		}
		if product.ProductModel.IsCitytax && !center.HasCitytax {
			continue
		}
		eligible, err := e.eligiblePersons(ctx, al, ranges)
		if err != nil {
			return nil, err
		}
		if eligible == 0 || (al.MinNbPers > 0 && eligible < al.MinNbPers) {
			continue
		}
		if eligible > wanted[product.ID] {
			wanted[product.ID] = eligible
		}
	}
	return wanted, nil
}

func (e *Engine) eligiblePersons(ctx context.Context, al *models.AutosaleLine, ranges []*models.BookingLineGroupAgeRangeAssignment) (int, error) {
	total := 0
	for _, a := range ranges {
		if al.AgeFrom == nil && al.AgeTo == nil {
			total += a.Qty
			continue
		}
		ar, err := e.ageRange(ctx, a.AgeRangeID)
		if err != nil {
			return 0, err
		}
		if al.AgeFrom != nil && ar.AgeFrom < *al.AgeFrom {
			continue
		}
		if al.AgeTo != nil && ar.AgeTo > *al.AgeTo {
			continue
		}
		total += a.Qty
	}
	return total, nil
}

// syncAutosaleLines makes the autosale lines of g match wanted.
func (e *Engine) syncAutosaleLines(ctx context.Context, b *models.Booking, g *models.BookingLineGroup, wanted map[uuid.UUID]int) error {
	existing := map[uuid.UUID]*models.BookingLine{}
	for _, l := range g.Lines {
		if l.IsAutosale {
			existing[l.ProductID] = l
		}
	}
	ids := make([]uuid.UUID, 0, len(wanted))
	for id := range wanted {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	for _, id := range ids {
		l, ok := existing[id]
		if !ok {
			product, err := e.product(ctx, id)
			if err != nil {
				return err
			}
			l = newLine(b, g, product)
			l.IsAutosale = true
			g.Lines = append(g.Lines, l)
		}
		l.NbPers = intPtr(wanted[id])
	}
	kept := g.Lines[:0]
	for _, l := range g.Lines {
		if !l.IsAutosale {
			kept = append(kept, l)
			continue
		}
		if _, ok := wanted[l.ProductID]; ok {
			kept = append(kept, l)
		}
	}
	g.Lines = kept
	return nil
}

// refreshGroupAutosale adds the group scoped autosale products (city tax, ...).
func (e *Engine) refreshGroupAutosale(ctx context.Context, b *models.Booking, g *models.BookingLineGroup) error {
	if g.IsAutosale {
		return nil
	}
	wanted := map[uuid.UUID]int{}
	if BehaviourOf(g.GroupType).Autosale && !g.IsExtra {
		center, err := e.center(ctx, b.CenterID)
		if err != nil {
			return err
		}
		lines, err := e.autosaleLines(ctx, center, enums.AutosaleScopeGroup)
		if err != nil {
			return err
		}
		if wanted, err = e.wantedAutosales(ctx, center, lines, g.DateFrom, g.Nights, g.AgeRanges); err != nil {
			return err
		}
	}
	return e.syncAutosaleLines(ctx, b, g, wanted)
}

// refreshBookingAutosale maintains the dedicated group carrying booking
// scoped autosale products. The group is dropped when nothing applies.
func (e *Engine) refreshBookingAutosale(ctx context.Context, b *models.Booking) error {
	center, err := e.center(ctx, b.CenterID)
	if err != nil {
		return err
	}
	lines, err := e.autosaleLines(ctx, center, enums.AutosaleScopeBooking)
	if err != nil {
		return err
	}

	var ranges []*models.BookingLineGroupAgeRangeAssignment
	byRange := map[uuid.UUID]*models.BookingLineGroupAgeRangeAssignment{}
	var rateClass uuid.UUID
	for _, g := range b.Groups {
		if g.IsAutosale || g.IsExtra {
			continue
		}
		if rateClass == uuid.Nil {
			rateClass = g.RateClassID
		}
		for _, a := range g.AgeRanges {
			agg, ok := byRange[a.AgeRangeID]
			if !ok {
				agg = &models.BookingLineGroupAgeRangeAssignment{AgeRangeID: a.AgeRangeID, Position: len(ranges) + 1}
				byRange[a.AgeRangeID] = agg
				ranges = append(ranges, agg)
			}
			agg.Qty += a.Qty
		}
	}

	wanted := map[uuid.UUID]int{}
	if len(ranges) > 0 {
		if wanted, err = e.wantedAutosales(ctx, center, lines, b.DateFrom, dates.Nights(b.DateFrom, b.DateTo), ranges); err != nil {
			return err
		}
	}

	ag := b.AutosaleGroup()
	if len(wanted) == 0 {
		if ag != nil {
			removeGroup(b, ag.ID)
		}
		return nil
	}
	if ag == nil {
		ag = &models.BookingLineGroup{
			ID:         uuid.New(),
			BookingID:  b.ID,
			Name:       autosaleGroupName,
			GroupType:  enums.GroupTypeSimple,
			IsAutosale: true,
			Position:   autosaleGroupPosition,
		}
		b.Groups = append(b.Groups, ag)
	}
	ag.DateFrom, ag.DateTo = b.DateFrom, b.DateTo
	ag.RateClassID = rateClass
	ag.NbPers = 0
	for _, r := range ranges {
		ag.NbPers += r.Qty
	}

	existing := map[uuid.UUID]*models.BookingLineGroupAgeRangeAssignment{}
	for _, a := range ag.AgeRanges {
		existing[a.AgeRangeID] = a
	}
	ag.AgeRanges = nil
	for _, r := range ranges {
		a, ok := existing[r.AgeRangeID]
		if !ok {
			a = &models.BookingLineGroupAgeRangeAssignment{ID: uuid.New(), BookingID: b.ID, GroupID: ag.ID, AgeRangeID: r.AgeRangeID}
		}
		a.Qty, a.Position = r.Qty, r.Position
		ag.AgeRanges = append(ag.AgeRanges, a)
	}

	if err := e.syncAutosaleLines(ctx, b, ag, wanted); err != nil {
		return err
	}
	return e.refreshGroup(ctx, b, ag)
}
