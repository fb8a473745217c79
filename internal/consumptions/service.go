package consumptions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/discope/discope-backend/pkg/dates"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
)

// Conflict reports a rental unit already taken on a given night.
type Conflict struct {
	RentalUnitID uuid.UUID  `json:"rental_unit_id"`
	Date         string     `json:"date"`
	BookingID    *uuid.UUID `json:"booking_id,omitempty"`
}

// Service reserves and releases rental units for bookings.
type Service interface {
	BusyUnits(ctx context.Context, centerID uuid.UUID, from, to time.Time, excludeBookingID uuid.UUID) (map[uuid.UUID]bool, error)
	Reserve(ctx context.Context, tx *gorm.DB, b *models.Booking) error
	Release(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds the consumption service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("consumption repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) BusyUnits(ctx context.Context, centerID uuid.UUID, from, to time.Time, excludeBookingID uuid.UUID) (map[uuid.UUID]bool, error) {
	return s.repo.BusyUnits(ctx, centerID, from, to, excludeBookingID)
}

// Reserve replaces the consumptions of b with one row per assigned unit and
// night. It fails with rental_unit_unavailable when another booking holds one
// of the units.
func (s *service) Reserve(ctx context.Context, tx *gorm.DB, b *models.Booking) error {
	repo := s.repo.WithTx(tx)
	if err := repo.DeleteForBooking(ctx, b.ID); err != nil {
		return err
	}

	rows := Plan(b)
	var conflicts []Conflict
	for _, g := range b.Groups {
		var units []uuid.UUID
		for _, spm := range g.ProductModels {
			for _, a := range spm.Assignments {
				units = append(units, a.RentalUnitID)
			}
		}
		taken, err := repo.ListOverlapping(ctx, units, g.DateFrom, g.DateTo, b.ID)
		if err != nil {
			return err
		}
		for _, c := range taken {
			conflicts = append(conflicts, Conflict{RentalUnitID: c.RentalUnitID, Date: c.Date.Format(dates.Layout), BookingID: c.BookingID})
		}
	}
	if len(conflicts) > 0 {
		return pkgerrors.New(pkgerrors.CodeNotAllowed, pkgerrors.ReasonRentalUnitUnavailable).WithDetails(conflicts)
	}
	return repo.CreateMany(ctx, rows)
}

func (s *service) Release(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) error {
	return s.repo.WithTx(tx).DeleteForBooking(ctx, bookingID)
}

// Plan lists the consumptions implied by the rental unit assignments of b.
func Plan(b *models.Booking) []models.Consumption {
	var rows []models.Consumption
	for _, g := range b.Groups {
		bookingID, groupID := b.ID, g.ID
		from, to := window(g.DateFrom, g.DateTo)
		for _, spm := range g.ProductModels {
			for _, a := range spm.Assignments {
				dates.Each(from, to, func(day time.Time) {
					rows = append(rows, models.Consumption{
						ID:           uuid.New(),
						BookingID:    &bookingID,
						GroupID:      &groupID,
						CenterID:     b.CenterID,
						RentalUnitID: a.RentalUnitID,
						Date:         day,
						Type:         enums.ConsumptionTypeBook,
						Qty:          a.Qty,
					})
				})
			}
		}
	}
	return rows
}
