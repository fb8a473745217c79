package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/discope/discope-backend/pkg/dates"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
)

// SetMealPreference sets how many persons of g follow a diet. Regular meals
// absorb the remainder.
func (e *Engine) SetMealPreference(ctx context.Context, b *models.Booking, g *models.BookingLineGroup, pref enums.MealPreferenceType, qty int) error {
	if !pref.IsValid() {
		return pkgerrors.New(pkgerrors.CodeInvalidParam, "invalid_meal_preference")
	}
	if qty < 0 || qty > g.NbPers {
		return negativeValue()
	}
	if pref == enums.MealPreferenceRegular {
		return pkgerrors.New(pkgerrors.CodeInvalidParam, "regular_preference_is_derived")
	}
	var found *models.MealPreference
	for _, p := range g.MealPreferences {
		if p.Type == pref {
			found = p
		}
	}
	if found == nil {
		found = &models.MealPreference{ID: uuid.New(), BookingID: b.ID, GroupID: g.ID, Type: pref}
		g.MealPreferences = append(g.MealPreferences, found)
	}
	found.Qty = qty
	return e.RefreshGroup(ctx, b, g)
}

// SetMealSelfProvided flags a meal as brought by the guests.
func (e *Engine) SetMealSelfProvided(ctx context.Context, b *models.Booking, g *models.BookingLineGroup, mealID uuid.UUID, selfProvided bool) error {
	for _, m := range g.Meals {
		if m.ID == mealID {
			m.IsSelfProvided = selfProvided
			return e.RefreshGroup(ctx, b, g)
		}
	}
	return pkgerrors.New(pkgerrors.CodeUnknownObject, "meal not found")
}

// refreshMealPreferences keeps sum(preferences) == nb_pers, the regular
// preference taking the remainder.
func refreshMealPreferences(b *models.Booking, g *models.BookingLineGroup) {
	if !BehaviourOf(g.GroupType).Meals || g.IsAutosale {
		g.MealPreferences = nil
		return
	}
	var regular *models.MealPreference
	others := 0
	for _, p := range g.MealPreferences {
		if p.Type == enums.MealPreferenceRegular {
			regular = p
			continue
		}
		others += p.Qty
	}
	if others > g.NbPers {
		for _, p := range g.MealPreferences {
			p.Qty = 0
		}
		others = 0
	}
	if regular == nil {
		regular = &models.MealPreference{ID: uuid.New(), BookingID: b.ID, GroupID: g.ID, Type: enums.MealPreferenceRegular}
		g.MealPreferences = append([]*models.MealPreference{regular}, g.MealPreferences...)
	}
	regular.Qty = g.NbPers - others
}

// refreshMeals rebuilds the meal rows of g for every slot covered by a meal
// line. Breakfast is served from the second day to departure, lunch and
// dinner from arrival to the last night.
func (e *Engine) refreshMeals(ctx context.Context, g *models.BookingLineGroup) error {
	if !BehaviourOf(g.GroupType).Meals || g.IsAutosale {
		g.Meals = nil
		return nil
	}
	slots := map[enums.MealSlot]bool{}
	for _, l := range g.Lines {
		if !l.IsMeal || l.Qty == 0 {
			continue
		}
		product, err := e.product(ctx, l.ProductID)
		if err != nil {
			return err
		}
		if product.ProductModel.MealSlot != nil {
			slots[*product.ProductModel.MealSlot] = true
		}
	}

	type key struct {
		day  time.Time
		slot enums.MealSlot
	}
	existing := map[key]*models.BookingMeal{}
	for _, m := range g.Meals {
		existing[key{dates.Day(m.Date), m.Slot}] = m
	}

	var meals []*models.BookingMeal
	add := func(day time.Time, slot enums.MealSlot) {
		m, ok := existing[key{day, slot}]
		if !ok {
			m = &models.BookingMeal{ID: uuid.New(), BookingID: g.BookingID, GroupID: g.ID, Date: day, Slot: slot}
		}
		m.Qty = g.NbPers
		meals = append(meals, m)
	}
	lastDay := g.DateTo
	if g.Nights == 0 {
		lastDay = dates.AddDays(g.DateFrom, 1)
	}
	dates.Each(g.DateFrom, lastDay, func(day time.Time) {
		if slots[enums.MealSlotMorning] && g.Nights > 0 {
			add(dates.AddDays(day, 1), enums.MealSlotMorning)
		}
		if slots[enums.MealSlotMidday] {
			add(day, enums.MealSlotMidday)
		}
		if slots[enums.MealSlotEvening] {
			add(day, enums.MealSlotEvening)
		}
	})
	g.Meals = meals
	return nil
}

// refreshTime spans the schedules of the products of g, or the defaults.
func (e *Engine) refreshTime(ctx context.Context, g *models.BookingLineGroup) error {
	from, to := "", ""
	consider := func(model *models.ProductModel) {
		if model.ScheduleFrom != nil && (from == "" || *model.ScheduleFrom < from) {
			from = *model.ScheduleFrom
		}
		if model.ScheduleTo != nil && (to == "" || *model.ScheduleTo > to) {
			to = *model.ScheduleTo
		}
	}
	if g.HasPack && g.PackID != nil {
		pack, err := e.product(ctx, *g.PackID)
		if err != nil {
			return err
		}
		consider(pack.ProductModel)
	}
	for _, l := range g.Lines {
		product, err := e.product(ctx, l.ProductID)
		if err != nil {
			return err
		}
		consider(product.ProductModel)
	}
	if from == "" {
		from = e.opts.DefaultTimeFrom
	}
	if to == "" {
		to = e.opts.DefaultTimeTo
	}
	g.TimeFrom, g.TimeTo = from, to
	return nil
}
