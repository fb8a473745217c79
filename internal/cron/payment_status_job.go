package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/discope/discope-backend/internal/alerts"
	"github.com/discope/discope-backend/pkg/dates"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	"github.com/discope/discope-backend/pkg/logger"
)

// PaymentStatusJobParams configure the payment status job.
type PaymentStatusJobParams struct {
	Logger   *logger.Logger
	DB       txRunner
	Bookings statusReader
	Workflow balancer
	Fundings overdueReader
	Alerts   alertRaiser
}

type statusReader interface {
	ListByStatus(ctx context.Context, statuses ...enums.BookingStatus) ([]models.Booking, error)
}

type balancer interface {
	Balance(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

type overdueReader interface {
	ListOverdue(ctx context.Context, day time.Time) ([]*models.Funding, error)
}

type alertRaiser interface {
	Raise(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID, code, message string) error
}

// NewPaymentStatusJob builds the job settling invoiced bookings against their
// payments and flagging overdue fundings.
func NewPaymentStatusJob(params PaymentStatusJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Bookings == nil {
		return nil, fmt.Errorf("booking reader required")
	}
	if params.Workflow == nil {
		return nil, fmt.Errorf("workflow service required")
	}
	if params.Fundings == nil {
		return nil, fmt.Errorf("funding reader required")
	}
	if params.Alerts == nil {
		return nil, fmt.Errorf("alert service required")
	}
	return &paymentStatusJob{
		logg:     params.Logger,
		db:       params.DB,
		bookings: params.Bookings,
		workflow: params.Workflow,
		fundings: params.Fundings,
		alerts:   params.Alerts,
		now:      time.Now,
	}, nil
}

type paymentStatusJob struct {
	logg     *logger.Logger
	db       txRunner
	bookings statusReader
	workflow balancer
	fundings overdueReader
	alerts   alertRaiser
	now      func() time.Time
}

func (j *paymentStatusJob) Name() string { return "payment-status" }

func (j *paymentStatusJob) Run(ctx context.Context) error {
	return multierr.Combine(j.settleInvoiced(ctx), j.flagOverdue(ctx))
}

func (j *paymentStatusJob) settleInvoiced(ctx context.Context) error {
	rows, err := j.bookings.ListByStatus(ctx,
		enums.BookingStatusInvoiced,
		enums.BookingStatusDebitBalance,
		enums.BookingStatusCreditBalance,
	)
	if err != nil {
		return fmt.Errorf("query invoiced bookings: %w", err)
	}
	var errs error
	changed := 0
	for _, b := range rows {
		if b.IsCancelled || b.ArchivedAt != nil {
			continue
		}
		updated, err := j.workflow.Balance(ctx, b.ID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("balance booking %d: %w", b.Number, err))
			continue
		}
		if updated.Status != b.Status {
			changed++
		}
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": len(rows), "changed": changed})
	j.logg.Info(logCtx, "payment status loop complete")
	return errs
}

func (j *paymentStatusJob) flagOverdue(ctx context.Context) error {
	today := dates.Day(j.now().UTC())
	overdue, err := j.fundings.ListOverdue(ctx, today)
	if err != nil {
		return fmt.Errorf("query overdue fundings: %w", err)
	}
	byBooking := map[uuid.UUID]*models.Funding{}
	var order []uuid.UUID
	for _, f := range overdue {
		if _, seen := byBooking[f.BookingID]; !seen {
			byBooking[f.BookingID] = f
			order = append(order, f.BookingID)
		}
	}
	var errs error
	for _, id := range order {
		f := byBooking[id]
		msg := fmt.Sprintf("Funding %q overdue since %s", f.Name, f.DueDate.Format("2006-01-02"))
		err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
			return j.alerts.Raise(ctx, tx, id, alerts.CodeOverdueFunding, msg)
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("flag overdue booking %s: %w", id, err))
		}
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"fundings": len(overdue), "bookings": len(order)})
	j.logg.Info(logCtx, "overdue funding loop complete")
	return errs
}
