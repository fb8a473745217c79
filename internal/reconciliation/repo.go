package reconciliation

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

// Repository persists bank statements and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateStatement(ctx context.Context, st *models.BankStatement) error
	FindStatement(ctx context.Context, id uuid.UUID) (*models.BankStatement, error)
	FindLine(ctx context.Context, id uuid.UUID) (*models.BankStatementLine, error)
	UpdateLine(ctx context.Context, line *models.BankStatementLine) error
	ListLineIDsByStatus(ctx context.Context, status enums.StatementLineStatus, limit int) ([]uuid.UUID, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a statement repository on the given connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) CreateStatement(ctx context.Context, st *models.BankStatement) error {
	if err := r.DB(ctx).Omit(clause.Associations).Create(st).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create bank statement")
	}
	if len(st.Lines) == 0 {
		return nil
	}
	if err := r.DB(ctx).CreateInBatches(st.Lines, 200).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create bank statement lines")
	}
	return nil
}

func (r *repository) FindStatement(ctx context.Context, id uuid.UUID) (*models.BankStatement, error) {
	var st models.BankStatement
	q := r.DB(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("date ASC, created_at ASC") }).
		Where("id = ?", id)
	if err := r.First(ctx, &st, "bank statement", q); err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *repository) FindLine(ctx context.Context, id uuid.UUID) (*models.BankStatementLine, error) {
	var line models.BankStatementLine
	if err := r.First(ctx, &line, "bank statement line", r.DB(ctx).Where("id = ?", id)); err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) UpdateLine(ctx context.Context, line *models.BankStatementLine) error {
	if err := r.DB(ctx).Save(line).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update bank statement line")
	}
	return nil
}

func (r *repository) ListLineIDsByStatus(ctx context.Context, status enums.StatementLineStatus, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	q := r.DB(ctx).Model(&models.BankStatementLine{}).Where("status = ?", status).Order("date ASC, created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Pluck("id", &ids).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list statement lines")
	}
	return ids, nil
}
