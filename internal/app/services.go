// Package app wires repositories and domain services for the binaries.
package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/discope/discope-backend/internal/alerts"
	"github.com/discope/discope-backend/internal/bookings"
	"github.com/discope/discope-backend/internal/catalog"
	"github.com/discope/discope-backend/internal/consumptions"
	"github.com/discope/discope-backend/internal/contracts"
	"github.com/discope/discope-backend/internal/fundings"
	"github.com/discope/discope-backend/internal/reconciliation"
	"github.com/discope/discope-backend/internal/workflow"
	"github.com/discope/discope-backend/pkg/config"
	"github.com/discope/discope-backend/pkg/db"
	"github.com/discope/discope-backend/pkg/logger"
	"github.com/discope/discope-backend/pkg/metrics"
	"github.com/discope/discope-backend/pkg/outbox"
)

// Services holds every domain service built over one database client.
type Services struct {
	BookingRepo    bookings.Repository
	OutboxRepo     *outbox.Repository
	Bookings       bookings.Service
	Workflow       workflow.Service
	Fundings       fundings.Service
	Contracts      contracts.Service
	Reconciliation reconciliation.Service
	Alerts         alerts.Service
}

// NewServices builds the service graph. Booking metrics are registered on reg
// when it is not nil.
func NewServices(dbClient *db.Client, cfg *config.Config, logg *logger.Logger, reg prometheus.Registerer) (*Services, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	conn := dbClient.DB()

	bookingMetrics := metrics.NewBookingMetrics(reg)

	outboxRepo := outbox.NewRepository(conn)
	publisher := outbox.NewService(outboxRepo, logg)
	cat := catalog.NewRepository(conn)
	bookingRepo := bookings.NewRepository(conn)
	occupancy := consumptions.NewRepository(conn)

	consumptionSvc, err := consumptions.NewService(occupancy)
	if err != nil {
		return nil, fmt.Errorf("consumptions service: %w", err)
	}
	alertSvc, err := alerts.NewService(alerts.NewRepository(conn))
	if err != nil {
		return nil, fmt.Errorf("alerts service: %w", err)
	}
	bookingSvc, err := bookings.NewService(dbClient, bookingRepo, cat, occupancy, consumptionSvc, alertSvc, bookings.Options{
		DefaultTimeFrom:    cfg.Booking.DefaultTimeFrom,
		DefaultTimeTo:      cfg.Booking.DefaultTimeTo,
		DefaultBookingType: cfg.Booking.DefaultType,
		Metrics:            bookingMetrics,
	})
	if err != nil {
		return nil, fmt.Errorf("bookings service: %w", err)
	}
	contractSvc, err := contracts.NewService(dbClient, contracts.NewRepository(conn), publisher)
	if err != nil {
		return nil, fmt.Errorf("contracts service: %w", err)
	}
	fundingSvc, err := fundings.NewService(dbClient, fundings.NewRepository(conn), bookingRepo, cat, publisher, fundings.Options{
		DepositPercent:    cfg.Booking.DepositPercent,
		BalanceDaysBefore: cfg.Booking.BalanceDaysBefore,
	})
	if err != nil {
		return nil, fmt.Errorf("fundings service: %w", err)
	}
	workflowSvc, err := workflow.NewService(workflow.Deps{
		Tx:           dbClient,
		Bookings:     bookingRepo,
		Consumptions: consumptionSvc,
		Contracts:    contractSvc,
		Fundings:     fundingSvc,
		Alerts:       alertSvc,
		Outbox:       publisher,
		Metrics:      bookingMetrics,
		Logger:       logg,
	}, workflow.Options{OptionValidityDays: cfg.Booking.OptionValidityDays})
	if err != nil {
		return nil, fmt.Errorf("workflow service: %w", err)
	}
	reconciliationSvc, err := reconciliation.NewService(dbClient, reconciliation.NewRepository(conn), fundingSvc, publisher, logg)
	if err != nil {
		return nil, fmt.Errorf("reconciliation service: %w", err)
	}

	return &Services{
		BookingRepo:    bookingRepo,
		OutboxRepo:     outboxRepo,
		Bookings:       bookingSvc,
		Workflow:       workflowSvc,
		Fundings:       fundingSvc,
		Contracts:      contractSvc,
		Reconciliation: reconciliationSvc,
		Alerts:         alertSvc,
	}, nil
}
