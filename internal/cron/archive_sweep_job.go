package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/discope/discope-backend/pkg/dates"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/logger"
)

const defaultArchiveAfterDays = 365

// ArchiveSweepJobParams configure the archival sweep.
type ArchiveSweepJobParams struct {
	Logger    *logger.Logger
	Bookings  archivableReader
	Workflow  archiver
	AfterDays int
}

type archivableReader interface {
	ListArchivable(ctx context.Context, before time.Time) ([]models.Booking, error)
}

type archiver interface {
	Archive(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

// NewArchiveSweepJob builds the job archiving closed bookings whose stay
// ended more than AfterDays ago.
func NewArchiveSweepJob(params ArchiveSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Bookings == nil {
		return nil, fmt.Errorf("booking reader required")
	}
	if params.Workflow == nil {
		return nil, fmt.Errorf("workflow service required")
	}
	after := params.AfterDays
	if after <= 0 {
		after = defaultArchiveAfterDays
	}
	return &archiveSweepJob{
		logg:      params.Logger,
		bookings:  params.Bookings,
		workflow:  params.Workflow,
		afterDays: after,
		now:       time.Now,
	}, nil
}

type archiveSweepJob struct {
	logg      *logger.Logger
	bookings  archivableReader
	workflow  archiver
	afterDays int
	now       func() time.Time
}

func (j *archiveSweepJob) Name() string { return "archive-sweep" }

func (j *archiveSweepJob) Run(ctx context.Context) error {
	cutoff := dates.AddDays(dates.Day(j.now().UTC()), -j.afterDays)
	rows, err := j.bookings.ListArchivable(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query archivable bookings: %w", err)
	}
	var errs error
	count := 0
	for _, b := range rows {
		if _, err := j.workflow.Archive(ctx, b.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("archive booking %d: %w", b.Number, err))
			continue
		}
		count++
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"cutoff": cutoff, "count": count})
	j.logg.Info(logCtx, "archive sweep complete")
	return errs
}
