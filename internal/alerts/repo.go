package alerts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	"github.com/discope/discope-backend/pkg/pagination"
)

// Repository exposes persistence helpers for booking alerts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, alert *models.Alert) error
	FindPending(ctx context.Context, bookingID uuid.UUID, code string) (*models.Alert, error)
	List(ctx context.Context, params listAlertsParams) ([]models.Alert, *pagination.Cursor, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.AlertStatus) (bool, error)
	CloseByCode(ctx context.Context, bookingID uuid.UUID, code string, status enums.AlertStatus) (int64, error)
	ClosePending(ctx context.Context, bookingID uuid.UUID, status enums.AlertStatus) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an alerts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listAlertsParams struct {
	BookingID   *uuid.UUID
	Limit       int
	Cursor      *pagination.Cursor
	PendingOnly bool
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, alert *models.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *repositoryImpl) FindPending(ctx context.Context, bookingID uuid.UUID, code string) (*models.Alert, error) {
	var rows []models.Alert
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND code = ? AND status = ?", bookingID, code, enums.AlertStatusPending).
		Limit(1).
		Find(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

func (r *repositoryImpl) List(ctx context.Context, params listAlertsParams) ([]models.Alert, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Alert{})
	if params.BookingID != nil {
		query = query.Where("booking_id = ?", *params.BookingID)
	}
	if params.PendingOnly {
		query = query.Where("status = ?", enums.AlertStatusPending)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", params.Cursor.CreatedAt, params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var alerts []models.Alert
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&alerts).Error; err != nil {
		return nil, nil, err
	}

	if len(alerts) > normalized {
		next := alerts[normalized-1]
		alerts = alerts[:normalized]
		return alerts, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return alerts, nil, nil
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.AlertStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Alert{}).
		Where("id = ? AND status = ?", id, enums.AlertStatusPending).
		Update("status", status)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) CloseByCode(ctx context.Context, bookingID uuid.UUID, code string, status enums.AlertStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Alert{}).
		Where("booking_id = ? AND code = ? AND status = ?", bookingID, code, enums.AlertStatusPending).
		Update("status", status)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) ClosePending(ctx context.Context, bookingID uuid.UUID, status enums.AlertStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Alert{}).
		Where("booking_id = ? AND status = ?", bookingID, enums.AlertStatusPending).
		Update("status", status)
	return result.RowsAffected, result.Error
}
