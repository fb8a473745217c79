package app

import (
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/discope/discope-backend/internal/testdb"
	"github.com/discope/discope-backend/pkg/config"
	pkgdb "github.com/discope/discope-backend/pkg/db"
	"github.com/discope/discope-backend/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Booking: config.BookingConfig{
			OptionValidityDays: 10,
			DefaultTimeFrom:    "14:00",
			DefaultTimeTo:      "10:00",
			DefaultType:        "TP",
			DepositPercent:     30,
			BalanceDaysBefore:  30,
		},
	}
}

func TestNewServicesBuildsEveryService(t *testing.T) {
	conn := testdb.Open(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	svc, err := NewServices(pkgdb.Wrap(conn), testConfig(), logg, prometheus.NewRegistry())
	require.NoError(t, err)
	require.NotNil(t, svc.BookingRepo)
	require.NotNil(t, svc.OutboxRepo)
	require.NotNil(t, svc.Bookings)
	require.NotNil(t, svc.Workflow)
	require.NotNil(t, svc.Fundings)
	require.NotNil(t, svc.Contracts)
	require.NotNil(t, svc.Reconciliation)
	require.NotNil(t, svc.Alerts)
}

func TestNewServicesRejectsInvalidBookingConfig(t *testing.T) {
	conn := testdb.Open(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	cfg := testConfig()
	cfg.Booking.OptionValidityDays = 0

	_, err := NewServices(pkgdb.Wrap(conn), cfg, logg, nil)
	require.Error(t, err)

	_, err = NewServices(nil, cfg, logg, nil)
	require.Error(t, err)
}
