package contracts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/discope/discope-backend/internal/repo"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
)

// Repository persists contracts and their line snapshots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, c *models.Contract) error
	Update(ctx context.Context, c *models.Contract) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	Latest(ctx context.Context, bookingID uuid.UUID) (*models.Contract, error)
	ListLive(ctx context.Context, bookingID uuid.UUID) ([]*models.Contract, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a contract repository on the given connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, c *models.Contract) error {
	if err := r.DB(ctx).Omit(clause.Associations).Create(c).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create contract")
	}
	if len(c.Lines) == 0 {
		return nil
	}
	if err := r.DB(ctx).Create(&c.Lines).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create contract lines")
	}
	return nil
}

func (r *repository) Update(ctx context.Context, c *models.Contract) error {
	if err := r.DB(ctx).Omit(clause.Associations).Save(c).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update contract")
	}
	return nil
}

func withLines(db *gorm.DB) *gorm.DB {
	return db.Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var c models.Contract
	if err := r.First(ctx, &c, "contract", withLines(r.DB(ctx)).Where("id = ?", id)); err != nil {
		return nil, err
	}
	return &c, nil
}

// Latest returns the most recent contract of the booking, cancelled or not.
func (r *repository) Latest(ctx context.Context, bookingID uuid.UUID) (*models.Contract, error) {
	var c models.Contract
	q := withLines(r.DB(ctx)).Where("booking_id = ?", bookingID).Order("created_at DESC")
	if err := r.First(ctx, &c, "contract", q); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) ListLive(ctx context.Context, bookingID uuid.UUID) ([]*models.Contract, error) {
	var rows []*models.Contract
	err := r.DB(ctx).
		Where("booking_id = ? AND status <> ?", bookingID, enums.ContractStatusCancelled).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list contracts")
	}
	return rows, nil
}
