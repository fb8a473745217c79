package alerts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
	"github.com/discope/discope-backend/pkg/pagination"
)

// Alert codes.
const (
	CodeIncompleteRentalUnits = "incomplete_rental_units"
	CodeOptionExpired         = "option_expired"
	CodeOverdueFunding        = "overdue_funding"
)

// Service raises and closes booking alerts.
type Service interface {
	Raise(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID, code, message string) error
	Resolve(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID, code string) error
	DismissAll(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) error
	Dismiss(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo Repository
}

// ListParams configures pagination for alerts.
type ListParams struct {
	BookingID   *uuid.UUID
	Limit       int
	Cursor      string
	PendingOnly bool
}

// ListResult wraps returned alerts and the cursor for the next page.
type ListResult struct {
	Items  []models.Alert `json:"items"`
	Cursor string         `json:"cursor"`
}

// NewService wires alerts dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "alerts repository required")
	}
	return &service{repo: repo}, nil
}

// Raise records a pending alert unless one with the same code is already pending.
func (s *service) Raise(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID, code, message string) error {
	repo := s.repo.WithTx(tx)
	existing, err := repo.FindPending(ctx, bookingID, code)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find alert")
	}
	if existing != nil {
		return nil
	}
	alert := &models.Alert{
		ID:        uuid.New(),
		BookingID: bookingID,
		Code:      code,
		Message:   message,
		Status:    enums.AlertStatusPending,
	}
	if err := repo.Create(ctx, alert); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create alert")
	}
	return nil
}

func (s *service) Resolve(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID, code string) error {
	if _, err := s.repo.WithTx(tx).CloseByCode(ctx, bookingID, code, enums.AlertStatusResolved); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve alert")
	}
	return nil
}

func (s *service) DismissAll(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) error {
	if _, err := s.repo.WithTx(tx).ClosePending(ctx, bookingID, enums.AlertStatusDismissed); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dismiss alerts")
	}
	return nil
}

func (s *service) Dismiss(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "alert id required")
	}
	updated, err := s.repo.UpdateStatus(ctx, id, enums.AlertStatusDismissed)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dismiss alert")
	}
	if !updated {
		return pkgerrors.New(pkgerrors.CodeUnknownObject, "alert not found")
	}
	return nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listAlertsParams{
		BookingID:   params.BookingID,
		Limit:       params.Limit,
		PendingOnly: params.PendingOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list alerts")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}
