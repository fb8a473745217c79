package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/logger"
)

// OptionExpiryJobParams configure the option sweep.
type OptionExpiryJobParams struct {
	Logger   *logger.Logger
	Bookings expiredOptionReader
	Workflow optionExpirer
}

type expiredOptionReader interface {
	ListExpiredOptions(ctx context.Context, now time.Time) ([]models.Booking, error)
}

type optionExpirer interface {
	ExpireOption(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

// NewOptionExpiryJob builds the job reverting expired options to quote.
func NewOptionExpiryJob(params OptionExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Bookings == nil {
		return nil, fmt.Errorf("booking reader required")
	}
	if params.Workflow == nil {
		return nil, fmt.Errorf("workflow service required")
	}
	return &optionExpiryJob{
		logg:     params.Logger,
		bookings: params.Bookings,
		workflow: params.Workflow,
		now:      time.Now,
	}, nil
}

type optionExpiryJob struct {
	logg     *logger.Logger
	bookings expiredOptionReader
	workflow optionExpirer
	now      func() time.Time
}

func (j *optionExpiryJob) Name() string { return "option-expiry" }

func (j *optionExpiryJob) Run(ctx context.Context) error {
	expired, err := j.bookings.ListExpiredOptions(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("query expired options: %w", err)
	}
	var errs error
	count := 0
	for _, b := range expired {
		if _, err := j.workflow.ExpireOption(ctx, b.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("expire option %d: %w", b.Number, err))
			continue
		}
		count++
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count, "candidates": len(expired)})
	j.logg.Info(logCtx, "option expiry loop complete")
	return errs
}
