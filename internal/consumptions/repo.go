package consumptions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/discope/discope-backend/internal/repo"
	"github.com/discope/discope-backend/pkg/dates"
	"github.com/discope/discope-backend/pkg/db/models"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
)

// Repository stores the nightly occupancy of rental units.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	BusyUnits(ctx context.Context, centerID uuid.UUID, from, to time.Time, excludeBookingID uuid.UUID) (map[uuid.UUID]bool, error)
	ListOverlapping(ctx context.Context, unitIDs []uuid.UUID, from, to time.Time, excludeBookingID uuid.UUID) ([]models.Consumption, error)
	ListForBooking(ctx context.Context, bookingID uuid.UUID) ([]models.Consumption, error)
	CreateMany(ctx context.Context, rows []models.Consumption) error
	DeleteForBooking(ctx context.Context, bookingID uuid.UUID) error
}

type repository struct {
	repo.Base
}

// NewRepository builds a consumption repository on the given connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

// window returns the stored day range covered by [from, to); a zero-night
// stay occupies its arrival day.
func window(from, to time.Time) (time.Time, time.Time) {
	from, to = dates.Day(from), dates.Day(to)
	if !to.After(from) {
		to = from.AddDate(0, 0, 1)
	}
	return from, to
}

// BusyUnits returns the units of the centre occupied by other bookings or
// out of order on any night of [from, to).
func (r *repository) BusyUnits(ctx context.Context, centerID uuid.UUID, from, to time.Time, excludeBookingID uuid.UUID) (map[uuid.UUID]bool, error) {
	from, to = window(from, to)
	var ids []uuid.UUID
	err := r.DB(ctx).Model(&models.Consumption{}).
		Distinct("rental_unit_id").
		Where("center_id = ? AND date >= ? AND date < ?", centerID, from, to).
		Where("booking_id IS NULL OR booking_id <> ?", excludeBookingID).
		Pluck("rental_unit_id", &ids).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list busy rental units")
	}
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *repository) ListOverlapping(ctx context.Context, unitIDs []uuid.UUID, from, to time.Time, excludeBookingID uuid.UUID) ([]models.Consumption, error) {
	if len(unitIDs) == 0 {
		return nil, nil
	}
	from, to = window(from, to)
	var rows []models.Consumption
	err := r.DB(ctx).
		Where("rental_unit_id IN ? AND date >= ? AND date < ?", unitIDs, from, to).
		Where("booking_id IS NULL OR booking_id <> ?", excludeBookingID).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list overlapping consumptions")
	}
	return rows, nil
}

func (r *repository) ListForBooking(ctx context.Context, bookingID uuid.UUID) ([]models.Consumption, error) {
	var rows []models.Consumption
	if err := r.DB(ctx).Where("booking_id = ?", bookingID).Order("date ASC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list booking consumptions")
	}
	return rows, nil
}

func (r *repository) CreateMany(ctx context.Context, rows []models.Consumption) error {
	if len(rows) == 0 {
		return nil
	}
	if err := r.DB(ctx).CreateInBatches(rows, 200).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create consumptions")
	}
	return nil
}

func (r *repository) DeleteForBooking(ctx context.Context, bookingID uuid.UUID) error {
	if err := r.DB(ctx).Where("booking_id = ?", bookingID).Delete(&models.Consumption{}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release consumptions")
	}
	return nil
}
