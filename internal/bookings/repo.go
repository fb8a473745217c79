package bookings

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/discope/discope-backend/internal/repo"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
)

// Repository persists booking aggregates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Load(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	FindHeader(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	Save(ctx context.Context, b *models.Booking) error
	SaveHeader(ctx context.Context, b *models.Booking) error
	Delete(ctx context.Context, id uuid.UUID) error
	NextNumber(ctx context.Context, at time.Time) (int64, error)
	ListExpiredOptions(ctx context.Context, now time.Time) ([]models.Booking, error)
	ListArchivable(ctx context.Context, before time.Time) ([]models.Booking, error)
	ListByStatus(ctx context.Context, statuses ...enums.BookingStatus) ([]models.Booking, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a booking repository on the given connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func byPosition(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }

// Load returns the full aggregate with groups and lines ordered by position.
func (r *repository) Load(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	q := r.DB(ctx).
		Preload("Groups", byPosition).
		Preload("Groups.Lines", byPosition).
		Preload("Groups.AgeRanges", byPosition).
		Preload("Groups.ProductModels").
		Preload("Groups.ProductModels.Assignments").
		Preload("Groups.MealPreferences").
		Preload("Groups.Meals", func(db *gorm.DB) *gorm.DB { return db.Order("date ASC, slot ASC") }).
		Preload("Groups.Adapters").
		Preload("Contacts").
		Where("id = ?", id)
	if err := r.First(ctx, &b, "booking", q); err != nil {
		return nil, err
	}
	return &b, nil
}

// FindHeader loads the booking row without its children.
func (r *repository) FindHeader(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	if err := r.First(ctx, &b, "booking", r.DB(ctx).Where("id = ?", id)); err != nil {
		return nil, err
	}
	return &b, nil
}

// SaveHeader writes the booking row only.
func (r *repository) SaveHeader(ctx context.Context, b *models.Booking) error {
	if err := r.DB(ctx).Omit(clause.Associations).Save(b).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save booking")
	}
	return nil
}

// Save upserts every row of the aggregate and removes the rows the engine dropped.
func (r *repository) Save(ctx context.Context, b *models.Booking) error {
	if err := r.SaveHeader(ctx, b); err != nil {
		return err
	}

	var (
		groupIDs, lineIDs, rangeIDs, spmIDs   []uuid.UUID
		assignIDs, prefIDs, mealIDs, adaptIDs []uuid.UUID
		contactIDs                            []uuid.UUID
	)
	save := func(row any) error {
		return r.DB(ctx).Omit(clause.Associations).Save(row).Error
	}

	for _, c := range b.Contacts {
		c.BookingID = b.ID
		if err := save(c); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save booking contact")
		}
		contactIDs = append(contactIDs, c.ID)
	}

	for _, g := range b.Groups {
		g.BookingID = b.ID
		if err := save(g); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save booking group")
		}
		groupIDs = append(groupIDs, g.ID)

		for _, l := range g.Lines {
			if err := save(l); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save booking line")
			}
			lineIDs = append(lineIDs, l.ID)
		}
		for _, a := range g.AgeRanges {
			if err := save(a); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save age range assignment")
			}
			rangeIDs = append(rangeIDs, a.ID)
		}
		for _, m := range g.ProductModels {
			if err := save(m); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save sojourn product model")
			}
			spmIDs = append(spmIDs, m.ID)
			for _, a := range m.Assignments {
				if err := save(a); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save rental unit assignment")
				}
				assignIDs = append(assignIDs, a.ID)
			}
		}
		for _, p := range g.MealPreferences {
			if err := save(p); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save meal preference")
			}
			prefIDs = append(prefIDs, p.ID)
		}
		for _, m := range g.Meals {
			if err := save(m); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save meal")
			}
			mealIDs = append(mealIDs, m.ID)
		}
		for _, a := range g.Adapters {
			if err := save(a); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save price adapter")
			}
			adaptIDs = append(adaptIDs, a.ID)
		}
	}

	orphans := []struct {
		model any
		keep  []uuid.UUID
	}{
		{&models.RentalUnitAssignment{}, assignIDs},
		{&models.SojournProductModel{}, spmIDs},
		{&models.PriceAdapter{}, adaptIDs},
		{&models.BookingMeal{}, mealIDs},
		{&models.MealPreference{}, prefIDs},
		{&models.BookingLineGroupAgeRangeAssignment{}, rangeIDs},
		{&models.BookingLine{}, lineIDs},
		{&models.BookingLineGroup{}, groupIDs},
		{&models.BookingContact{}, contactIDs},
	}
	for _, o := range orphans {
		if err := r.DeleteOrphans(ctx, o.model, "booking_id", b.ID, o.keep); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "prune booking rows")
		}
	}
	return nil
}

// Delete removes the booking and every row it owns.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	children := []any{
		&models.RentalUnitAssignment{},
		&models.SojournProductModel{},
		&models.PriceAdapter{},
		&models.BookingMeal{},
		&models.MealPreference{},
		&models.BookingLineGroupAgeRangeAssignment{},
		&models.BookingLine{},
		&models.BookingLineGroup{},
		&models.BookingContact{},
		&models.Alert{},
	}
	for _, m := range children {
		if err := r.DeleteOrphans(ctx, m, "booking_id", id, nil); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete booking rows")
		}
	}
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Booking{})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "delete booking")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeUnknownObject, "booking not found")
	}
	return nil
}

// NextNumber returns the next number of the yearly sequence: YY followed by a
// four digit counter (230001, 230002, ...).
func (r *repository) NextNumber(ctx context.Context, at time.Time) (int64, error) {
	base := int64(at.Year()%100) * 10000
	var current sql.NullInt64
	err := r.DB(ctx).Model(&models.Booking{}).
		Select("MAX(number)").
		Where("number > ? AND number < ?", base, base+10000).
		Row().Scan(&current)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read booking sequence")
	}
	if !current.Valid {
		return base + 1, nil
	}
	return current.Int64 + 1, nil
}

func (r *repository) ListExpiredOptions(ctx context.Context, now time.Time) ([]models.Booking, error) {
	var rows []models.Booking
	err := r.DB(ctx).
		Where("status = ? AND is_cancelled = ? AND option_expires_at IS NOT NULL AND option_expires_at < ?", enums.BookingStatusOption, false, now).
		Order("option_expires_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expired options")
	}
	return rows, nil
}

// ListArchivable returns cancelled or balanced bookings whose stay ended before the cutoff.
func (r *repository) ListArchivable(ctx context.Context, before time.Time) ([]models.Booking, error) {
	var rows []models.Booking
	err := r.DB(ctx).
		Where("archived_at IS NULL AND date_to < ?", before).
		Where("is_cancelled = ? OR status = ?", true, enums.BookingStatusBalanced).
		Order("date_to ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list archivable bookings")
	}
	return rows, nil
}

func (r *repository) ListByStatus(ctx context.Context, statuses ...enums.BookingStatus) ([]models.Booking, error) {
	var rows []models.Booking
	err := r.DB(ctx).
		Where("status IN ? AND is_cancelled = ?", statuses, false).
		Order("number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}
	return rows, nil
}
