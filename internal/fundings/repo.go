package fundings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/discope/discope-backend/internal/repo"
	"github.com/discope/discope-backend/pkg/db/models"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
)

// Repository persists fundings and their payments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, f *models.Funding) error
	Update(ctx context.Context, f *models.Funding) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Funding, error)
	FindByReference(ctx context.Context, ref string) (*models.Funding, error)
	ListForBooking(ctx context.Context, bookingID uuid.UUID) ([]*models.Funding, error)
	ListOverdue(ctx context.Context, day time.Time) ([]*models.Funding, error)
	DeleteUnpaidForBooking(ctx context.Context, bookingID uuid.UUID) (int64, error)
	SumPaid(ctx context.Context, bookingID uuid.UUID) (decimal.Decimal, error)

	CreatePayment(ctx context.Context, p *models.Payment) error
	UpdatePayment(ctx context.Context, p *models.Payment) error
	DeletePayment(ctx context.Context, id uuid.UUID) error
	FindPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a funding repository on the given connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func withPayments(db *gorm.DB) *gorm.DB {
	return db.Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("receipt_date ASC, created_at ASC") })
}

func (r *repository) Create(ctx context.Context, f *models.Funding) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if err := r.DB(ctx).Omit(clause.Associations).Create(f).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create funding")
	}
	return nil
}

func (r *repository) Update(ctx context.Context, f *models.Funding) error {
	if err := r.DB(ctx).Omit(clause.Associations).Save(f).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update funding")
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.DB(ctx).Where("funding_id = ?", id).Delete(&models.Payment{}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete funding payments")
	}
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Funding{})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "delete funding")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeUnknownObject, "funding not found")
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Funding, error) {
	var f models.Funding
	if err := r.First(ctx, &f, "funding", withPayments(r.DB(ctx)).Where("id = ?", id)); err != nil {
		return nil, err
	}
	return &f, nil
}

// FindByReference matches the formatted structured reference of a funding.
func (r *repository) FindByReference(ctx context.Context, ref string) (*models.Funding, error) {
	var f models.Funding
	q := withPayments(r.DB(ctx)).Where("payment_reference = ?", ref).Order("created_at DESC")
	if err := r.First(ctx, &f, "funding", q); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repository) ListForBooking(ctx context.Context, bookingID uuid.UUID) ([]*models.Funding, error) {
	var rows []*models.Funding
	if err := withPayments(r.DB(ctx)).Where("booking_id = ?", bookingID).Order("position ASC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list fundings")
	}
	return rows, nil
}

// ListOverdue returns unpaid fundings due before day whose booking is still live.
func (r *repository) ListOverdue(ctx context.Context, day time.Time) ([]*models.Funding, error) {
	var rows []*models.Funding
	err := r.DB(ctx).
		Where("is_paid = ? AND due_date < ?", false, day).
		Where("booking_id IN (?)", r.DB(ctx).Model(&models.Booking{}).Select("id").Where("is_cancelled = ? AND archived_at IS NULL", false)).
		Order("due_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list overdue fundings")
	}
	return rows, nil
}

// DeleteUnpaidForBooking removes the fundings of a booking that received no money.
func (r *repository) DeleteUnpaidForBooking(ctx context.Context, bookingID uuid.UUID) (int64, error) {
	paid := r.DB(ctx).Model(&models.Payment{}).Select("funding_id").Where("booking_id = ?", bookingID)
	res := r.DB(ctx).
		Where("booking_id = ? AND is_paid = ?", bookingID, false).
		Where("id NOT IN (?)", paid).
		Delete(&models.Funding{})
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "delete unpaid fundings")
	}
	return res.RowsAffected, nil
}

func (r *repository) SumPaid(ctx context.Context, bookingID uuid.UUID) (decimal.Decimal, error) {
	var rows []models.Funding
	if err := r.DB(ctx).Select("paid_amount").Where("booking_id = ?", bookingID).Find(&rows).Error; err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum paid amounts")
	}
	total := decimal.Zero
	for _, f := range rows {
		total = total.Add(f.PaidAmount)
	}
	return total, nil
}

func (r *repository) CreatePayment(ctx context.Context, p *models.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if err := r.DB(ctx).Create(p).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
	}
	return nil
}

func (r *repository) UpdatePayment(ctx context.Context, p *models.Payment) error {
	if err := r.DB(ctx).Save(p).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment")
	}
	return nil
}

func (r *repository) DeletePayment(ctx context.Context, id uuid.UUID) error {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Payment{})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "delete payment")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeUnknownObject, "payment not found")
	}
	return nil
}

func (r *repository) FindPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	if err := r.First(ctx, &p, "payment", r.DB(ctx).Where("id = ?", id)); err != nil {
		return nil, err
	}
	return &p, nil
}
