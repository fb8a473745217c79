package fundings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/discope/discope-backend/pkg/dates"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	"github.com/discope/discope-backend/pkg/money"
	"github.com/discope/discope-backend/pkg/reference"
)

// DefaultPlan is used when the catalog has no payment plan for a booking:
// a deposit a week after confirmation and the balance before arrival.
func DefaultPlan(depositPercent, balanceDaysBefore int) *models.PaymentPlan {
	deposit := decimal.NewFromInt(int64(depositPercent))
	days := balanceDaysBefore
	return &models.PaymentPlan{
		Name: "default",
		Steps: []*models.PaymentPlanStep{
			{Position: 1, Name: "Acompte", Percent: deposit, DaysAfterConfirm: 7},
			{Position: 2, Name: "Solde", Percent: decimal.NewFromInt(100).Sub(deposit), DaysBeforeArrival: &days},
		},
	}
}

// BuildFundings splits amount over the steps of plan. Each step gets its
// rounded percentage and the last one absorbs the rounding remainder.
// Positions start at firstPosition and drive the payment reference.
func BuildFundings(b *models.Booking, plan *models.PaymentPlan, amount decimal.Decimal, confirmedAt time.Time, firstPosition int) []*models.Funding {
	if plan == nil || len(plan.Steps) == 0 || !amount.IsPositive() {
		return nil
	}
	out := make([]*models.Funding, 0, len(plan.Steps))
	allocated := decimal.Zero
	for i, step := range plan.Steps {
		due := money.Percent(amount, step.Percent)
		if i == len(plan.Steps)-1 {
			due = amount.Sub(allocated)
		}
		allocated = allocated.Add(due)
		if due.IsZero() {
			continue
		}
		position := firstPosition + len(out)
		out = append(out, &models.Funding{
			ID:               uuid.New(),
			BookingID:        b.ID,
			CustomerID:       b.CustomerID,
			Name:             step.Name,
			Type:             enums.FundingTypeInstallment,
			Position:         position,
			DueAmount:        due,
			PaidAmount:       decimal.Zero,
			DueDate:          dueDate(step, b.DateFrom, confirmedAt),
			PaymentReference: reference.ForBooking(b.Number, position),
		})
	}
	return out
}

// dueDate never falls before the confirmation day.
func dueDate(step *models.PaymentPlanStep, arrival, confirmedAt time.Time) time.Time {
	confirmed := dates.Day(confirmedAt)
	if step.DaysBeforeArrival != nil {
		d := dates.AddDays(dates.Day(arrival), -*step.DaysBeforeArrival)
		if d.Before(confirmed) {
			return confirmed
		}
		return d
	}
	return dates.AddDays(confirmed, step.DaysAfterConfirm)
}

// settled reports whether paid covers due, for refunds as well as receipts.
func settled(due, paid decimal.Decimal) bool {
	if due.IsNegative() {
		return paid.LessThanOrEqual(due)
	}
	return paid.GreaterThanOrEqual(due)
}
