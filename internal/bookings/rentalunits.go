package bookings

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/discope/discope-backend/pkg/dates"
	"github.com/discope/discope-backend/pkg/db/models"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
)

// AssignRentalUnit manually binds a rental unit to an accommodation requirement of g.
func (e *Engine) AssignRentalUnit(ctx context.Context, b *models.Booking, g *models.BookingLineGroup, spmID, rentalUnitID uuid.UUID, qty int) (*models.RentalUnitAssignment, error) {
	if qty < 0 {
		return nil, negativeValue()
	}
	var spm *models.SojournProductModel
	for _, m := range g.ProductModels {
		if m.ID == spmID {
			spm = m
		}
	}
	if spm == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnknownObject, "sojourn product model not found")
	}
	units, err := e.catalog.ListRentalUnits(ctx, b.CenterID)
	if err != nil {
		return nil, err
	}
	var unit *models.RentalUnit
	for _, u := range units {
		if u.ID == rentalUnitID {
			unit = u
		}
	}
	if unit == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnknownObject, "rental unit not found")
	}
	for _, a := range spm.Assignments {
		if a.RentalUnitID == unit.ID {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonRentalUnitAssigned).
				WithDetails(map[string]any{"rental_unit_id": unit.ID})
		}
	}
	busy, err := e.unavailableUnits(ctx, b, g)
	if err != nil {
		return nil, err
	}
	if busy[unit.ID] {
		return nil, pkgerrors.New(pkgerrors.CodeNotAllowed, pkgerrors.ReasonRentalUnitUnavailable)
	}
	if qty == 0 || qty > unit.Capacity {
		qty = unit.Capacity
	}
	a := &models.RentalUnitAssignment{
		ID:                    uuid.New(),
		BookingID:             b.ID,
		GroupID:               g.ID,
		SojournProductModelID: spm.ID,
		RentalUnitID:          unit.ID,
		Qty:                   qty,
		IsAccomodation:        spm.IsAccomodation,
	}
	spm.Assignments = append(spm.Assignments, a)
	if err := e.RefreshGroup(ctx, b, g); err != nil {
		return nil, err
	}
	return a, nil
}

// RemoveRentalUnitAssignment unbinds a rental unit from g.
func (e *Engine) RemoveRentalUnitAssignment(ctx context.Context, b *models.Booking, g *models.BookingLineGroup, assignmentID uuid.UUID) error {
	for _, m := range g.ProductModels {
		for i, a := range m.Assignments {
			if a.ID == assignmentID {
				m.Assignments = append(m.Assignments[:i], m.Assignments[i+1:]...)
				return e.RefreshGroup(ctx, b, g)
			}
		}
	}
	return pkgerrors.New(pkgerrors.CodeUnknownObject, "rental unit assignment not found")
}

// refreshProductModels derives the accommodation requirements of g from its
// lines, then fills missing capacity when the office allows it.
func (e *Engine) refreshProductModels(ctx context.Context, b *models.Booking, g *models.BookingLineGroup) error {
	behaviour := BehaviourOf(g.GroupType)
	if !behaviour.RentalUnits || g.IsAutosale {
		g.ProductModels = nil
		return nil
	}

	existing := map[uuid.UUID]*models.SojournProductModel{}
	for _, m := range g.ProductModels {
		existing[m.ProductModelID] = m
	}
	var spms []*models.SojournProductModel
	seen := map[uuid.UUID]bool{}
	for _, l := range g.Lines {
		if l.IsAutosale || l.Qty == 0 || seen[l.ProductModelID] {
			continue
		}
		product, err := e.product(ctx, l.ProductID)
		if err != nil {
			return err
		}
		model := product.ProductModel
		needsUnit := (behaviour.Accommodation && model.IsAccomodation) || (!model.IsAccomodation && model.RentalUnitType != nil)
		if !needsUnit {
			continue
		}
		seen[model.ID] = true
		persons := g.NbPers
		if l.NbPers != nil {
			persons = *l.NbPers
		}
		spm, ok := existing[model.ID]
		if !ok {
			spm = &models.SojournProductModel{ID: uuid.New(), BookingID: b.ID, GroupID: g.ID, ProductModelID: model.ID}
		}
		spm.IsAccomodation = model.IsAccomodation
		spm.Qty = persons
		spms = append(spms, spm)
	}
	g.ProductModels = spms

	for _, spm := range g.ProductModels {
		trimAssignments(spm)
	}

	center, err := e.center(ctx, b.CenterID)
	if err != nil {
		return err
	}
	if center.AutoAssignsRentalUnits() {
		if err := e.autoAssign(ctx, b, g); err != nil {
			return err
		}
	}
	if !AccommodationComplete(g) {
		e.report.IncompleteGroups = append(e.report.IncompleteGroups, g.ID)
	}
	return nil
}

// AccommodationComplete reports whether every accommodation requirement of g
// is covered by rental unit assignments.
func AccommodationComplete(g *models.BookingLineGroup) bool {
	for _, spm := range g.ProductModels {
		if spm.IsAccomodation && spm.AssignedQty() < spm.Qty {
			return false
		}
	}
	return true
}

// trimAssignments drops assignments that are no longer needed, starting with
// automatic ones, then shrinks the last one to the exact requirement.
func trimAssignments(spm *models.SojournProductModel) {
	sort.SliceStable(spm.Assignments, func(i, j int) bool {
		return !spm.Assignments[i].IsAuto && spm.Assignments[j].IsAuto
	})
	for len(spm.Assignments) > 0 {
		last := spm.Assignments[len(spm.Assignments)-1]
		if spm.AssignedQty()-last.Qty < spm.Qty {
			break
		}
		spm.Assignments = spm.Assignments[:len(spm.Assignments)-1]
	}
	if excess := spm.AssignedQty() - spm.Qty; excess > 0 && len(spm.Assignments) > 0 {
		spm.Assignments[len(spm.Assignments)-1].Qty -= excess
	}
}

func (e *Engine) autoAssign(ctx context.Context, b *models.Booking, g *models.BookingLineGroup) error {
	var pending []*models.SojournProductModel
	for _, spm := range g.ProductModels {
		if spm.AssignedQty() < spm.Qty {
			pending = append(pending, spm)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	units, err := e.catalog.ListRentalUnits(ctx, b.CenterID)
	if err != nil {
		return err
	}
	unavailable, err := e.unavailableUnits(ctx, b, g)
	if err != nil {
		return err
	}
	for _, spm := range pending {
		model, err := e.modelOf(ctx, g, spm.ProductModelID)
		if err != nil {
			return err
		}
		var candidates []*models.RentalUnit
		for _, u := range units {
			if unavailable[u.ID] || u.Capacity < 1 {
				continue
			}
			if spm.IsAccomodation && !u.IsAccomodation {
				continue
			}
			if model.RentalUnitType != nil && *model.RentalUnitType != u.Type {
				continue
			}
			candidates = append(candidates, u)
		}
		for remaining := spm.Qty - spm.AssignedQty(); remaining > 0 && len(candidates) > 0; {
			idx := bestFit(candidates, remaining)
			unit := candidates[idx]
			candidates = append(candidates[:idx], candidates[idx+1:]...)
			qty := unit.Capacity
			if qty > remaining {
				qty = remaining
			}
			spm.Assignments = append(spm.Assignments, &models.RentalUnitAssignment{
				ID:                    uuid.New(),
				BookingID:             b.ID,
				GroupID:               g.ID,
				SojournProductModelID: spm.ID,
				RentalUnitID:          unit.ID,
				Qty:                   qty,
				IsAccomodation:        spm.IsAccomodation,
				IsAuto:                true,
			})
			unavailable[unit.ID] = true
			remaining -= qty
		}
	}
	return nil
}

// bestFit returns the smallest unit holding remaining persons, or the largest one.
func bestFit(units []*models.RentalUnit, remaining int) int {
	best, largest := -1, 0
	for i, u := range units {
		if u.Capacity >= remaining && (best < 0 || u.Capacity < units[best].Capacity) {
			best = i
		}
		if u.Capacity > units[largest].Capacity {
			largest = i
		}
	}
	if best >= 0 {
		return best
	}
	return largest
}

// unavailableUnits lists the units consumed by other bookings over the dates
// of g, plus the units already used by g or by overlapping groups of b.
func (e *Engine) unavailableUnits(ctx context.Context, b *models.Booking, g *models.BookingLineGroup) (map[uuid.UUID]bool, error) {
	to := g.DateTo
	if !to.After(g.DateFrom) {
		to = dates.AddDays(g.DateFrom, 1)
	}
	busy, err := e.occupancy.BusyUnits(ctx, b.CenterID, g.DateFrom, to, b.ID)
	if err != nil {
		return nil, err
	}
	if busy == nil {
		busy = map[uuid.UUID]bool{}
	}
	for _, other := range b.Groups {
		if other.ID != g.ID && !dates.Overlaps(other.DateFrom, other.DateTo, g.DateFrom, g.DateTo) {
			continue
		}
		for _, spm := range other.ProductModels {
			for _, a := range spm.Assignments {
				busy[a.RentalUnitID] = true
			}
		}
	}
	return busy, nil
}

func (e *Engine) modelOf(ctx context.Context, g *models.BookingLineGroup, modelID uuid.UUID) (*models.ProductModel, error) {
	for _, l := range g.Lines {
		if l.ProductModelID == modelID {
			product, err := e.product(ctx, l.ProductID)
			if err != nil {
				return nil, err
			}
			return product.ProductModel, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeUnknownObject, "product model not found")
}
