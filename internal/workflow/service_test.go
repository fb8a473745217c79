package workflow

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/discope/discope-backend/internal/alerts"
	"github.com/discope/discope-backend/internal/bookings"
	"github.com/discope/discope-backend/internal/catalog"
	"github.com/discope/discope-backend/internal/catalog/catalogtest"
	"github.com/discope/discope-backend/internal/consumptions"
	"github.com/discope/discope-backend/internal/contracts"
	"github.com/discope/discope-backend/internal/fundings"
	"github.com/discope/discope-backend/internal/testdb"
	"github.com/discope/discope-backend/pkg/dates"
	pkgdb "github.com/discope/discope-backend/pkg/db"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
	"github.com/discope/discope-backend/pkg/logger"
	"github.com/discope/discope-backend/pkg/metrics"
	"github.com/discope/discope-backend/pkg/outbox"
)

var fixedNow = time.Date(2023, 2, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	db        *gorm.DB
	scenario  *catalogtest.Scenario
	bookings  bookings.Service
	contracts contracts.Service
	fundings  fundings.Service
	svc       Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := testdb.Open(t)
	s := catalogtest.NewScenario()
	require.NoError(t, s.Seed(conn))

	tx := pkgdb.Wrap(conn)
	cat := catalog.NewRepository(conn)
	bookingRepo := bookings.NewRepository(conn)
	occupancy := consumptions.NewRepository(conn)
	consumptionSvc, err := consumptions.NewService(occupancy)
	require.NoError(t, err)
	alertSvc, err := alerts.NewService(alerts.NewRepository(conn))
	require.NoError(t, err)
	publisher := outbox.NewService(outbox.NewRepository(conn), nil)

	bookingSvc, err := bookings.NewService(tx, bookingRepo, cat, occupancy, consumptionSvc, alertSvc, bookings.Options{})
	require.NoError(t, err)
	contractSvc, err := contracts.NewService(tx, contracts.NewRepository(conn), publisher)
	require.NoError(t, err)
	fundingSvc, err := fundings.NewService(tx, fundings.NewRepository(conn), bookingRepo, cat, publisher, fundings.Options{DepositPercent: 30, BalanceDaysBefore: 30})
	require.NoError(t, err)

	svc, err := NewService(Deps{
		Tx:           tx,
		Bookings:     bookingRepo,
		Consumptions: consumptionSvc,
		Contracts:    contractSvc,
		Fundings:     fundingSvc,
		Alerts:       alertSvc,
		Outbox:       publisher,
		Metrics:      metrics.NewBookingMetrics(nil),
		Logger:       logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	}, Options{OptionValidityDays: 10})
	require.NoError(t, err)
	svc.(*service).now = func() time.Time { return fixedNow }

	return &fixture{db: conn, scenario: s, bookings: bookingSvc, contracts: contractSvc, fundings: fundingSvc, svc: svc}
}

// booking creates a two night stay with nbPers guests and a night line.
func (f *fixture) booking(t *testing.T, nbPers int) *models.Booking {
	t.Helper()
	ctx := context.Background()
	from, to := dates.MustParse("2023-03-01"), dates.MustParse("2023-03-03")
	b, err := f.bookings.CreateBooking(ctx, bookings.CreateBookingInput{
		CenterID:   f.scenario.Center.ID,
		CustomerID: f.scenario.Customer.ID,
		DateFrom:   from,
		DateTo:     to,
	})
	require.NoError(t, err)
	rc := f.scenario.GeneralPublic.ID
	b, err = f.bookings.CreateGroup(ctx, b.ID, bookings.GroupInput{DateFrom: &from, DateTo: &to, NbPers: &nbPers, RateClassID: &rc})
	require.NoError(t, err)
	b, err = f.bookings.AddLine(ctx, b.ID, b.Groups[0].ID, f.scenario.Night.ID, bookings.LineInput{})
	require.NoError(t, err)
	require.True(t, b.Price.IsPositive())
	return b
}

func (f *fixture) count(t *testing.T, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func (f *fixture) payAll(t *testing.T, bookingID uuid.UUID) {
	t.Helper()
	list, err := f.fundings.List(context.Background(), bookingID)
	require.NoError(t, err)
	for _, fund := range list {
		rest := fund.DueAmount.Sub(fund.PaidAmount)
		if rest.IsZero() {
			continue
		}
		_, err := f.fundings.AppendPayment(context.Background(), fund.ID, fundings.PaymentInput{Amount: rest})
		require.NoError(t, err)
	}
}

func TestOptionReservesUnitsAndSetsExpiry(t *testing.T) {
	f := newFixture(t)
	b := f.booking(t, 2)

	got, err := f.svc.Option(context.Background(), b.ID)
	require.NoError(t, err)
	require.Equal(t, enums.BookingStatusOption, got.Status)
	require.NotNil(t, got.OptionExpiresAt)
	require.Equal(t, fixedNow.AddDate(0, 0, 10), got.OptionExpiresAt.UTC())
	require.Positive(t, f.count(t, &models.Consumption{}, "booking_id = ?", b.ID))
	require.EqualValues(t, 1, f.count(t, &models.OutboxEvent{}, "aggregate_id = ? AND event_type = ?", b.ID, enums.EventBookingStatusChanged))

	_, err = f.svc.Option(context.Background(), b.ID)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeInvalidParam, pkgerrors.ReasonIncompatibleStatus))
}

func TestConfirmRequiresCompleteAssignment(t *testing.T) {
	f := newFixture(t)
	b := f.booking(t, 30)

	_, err := f.svc.Confirm(context.Background(), b.ID)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotAllowed, pkgerrors.ReasonIncompleteRentalUnits))

	reloaded, err := f.bookings.GetBooking(context.Background(), b.ID)
	require.NoError(t, err)
	require.Equal(t, enums.BookingStatusQuote, reloaded.Status)
}

func TestConfirmCreatesContractAndFundings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.booking(t, 2)

	got, err := f.svc.Confirm(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, enums.BookingStatusConfirmed, got.Status)

	c, err := f.contracts.Latest(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, enums.ContractStatusPending, c.Status)
	require.True(t, c.Price.Equal(got.Price))

	list, err := f.fundings.List(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	total := decimal.Zero
	for _, fund := range list {
		total = total.Add(fund.DueAmount)
	}
	require.True(t, total.Equal(got.Price), "%s != %s", total, got.Price)
}

func TestFullLifecycleToBalanced(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.booking(t, 2)

	_, err := f.svc.Option(ctx, b.ID)
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, b.ID)
	require.NoError(t, err)

	_, err = f.svc.CheckIn(ctx, b.ID)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotAllowed, pkgerrors.ReasonUnsignedContract))

	c, err := f.contracts.Latest(ctx, b.ID)
	require.NoError(t, err)
	_, err = f.contracts.Sign(ctx, c.ID)
	require.NoError(t, err)

	got, err := f.svc.CheckIn(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, enums.BookingStatusCheckedIn, got.Status)
	_, err = f.svc.CheckOut(ctx, b.ID)
	require.NoError(t, err)
	_, err = f.svc.Invoice(ctx, b.ID)
	require.NoError(t, err)

	got, err = f.svc.Balance(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, enums.BookingStatusDebitBalance, got.Status)

	f.payAll(t, b.ID)
	got, err = f.svc.Balance(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, enums.BookingStatusBalanced, got.Status)
	require.True(t, got.PaidAmount.Equal(got.Price))

	_, err = f.svc.Cancel(ctx, b.ID, enums.CancellationReasonOther)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeInvalidParam, pkgerrors.ReasonIncompatibleStatus))

	archived, err := f.svc.Archive(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, archived.ArchivedAt)
}

func TestQuoteRevertsConfirmation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.booking(t, 2)
	_, err := f.svc.Confirm(ctx, b.ID)
	require.NoError(t, err)

	got, err := f.svc.Quote(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, enums.BookingStatusQuote, got.Status)

	c, err := f.contracts.Latest(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, enums.ContractStatusCancelled, c.Status)
	require.Zero(t, f.count(t, &models.Funding{}, "booking_id = ?", b.ID))
	require.Zero(t, f.count(t, &models.Consumption{}, "booking_id = ?", b.ID))
}

func TestCancelSideEffects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.booking(t, 2)
	_, err := f.svc.Confirm(ctx, b.ID)
	require.NoError(t, err)
	list, err := f.fundings.List(ctx, b.ID)
	require.NoError(t, err)
	_, err = f.fundings.AppendPayment(ctx, list[0].ID, fundings.PaymentInput{Amount: decimal.NewFromInt(20)})
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, b.ID, "")
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeInvalidParam, pkgerrors.ReasonMissingReason))

	got, err := f.svc.Cancel(ctx, b.ID, enums.CancellationReasonOverbooking)
	require.NoError(t, err)
	require.True(t, got.IsCancelled)
	require.Equal(t, enums.BookingStatusCheckedOut, got.Status, "payments were received")
	for _, g := range got.Groups {
		require.True(t, g.IsExtra)
	}
	require.Zero(t, f.count(t, &models.Consumption{}, "booking_id = ?", b.ID))
	require.EqualValues(t, 1, f.count(t, &models.Funding{}, "booking_id = ?", b.ID))
	require.EqualValues(t, 1, f.count(t, &models.OutboxEvent{}, "aggregate_id = ? AND event_type = ?", b.ID, enums.EventBookingCancelled))

	_, err = f.svc.Cancel(ctx, b.ID, enums.CancellationReasonOther)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeInvalidParam, pkgerrors.ReasonIncompatibleStatus))
}

func TestCancelQuoteKeepsStatusAndDismissesAlerts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.booking(t, 30)
	require.EqualValues(t, 1, f.count(t, &models.Alert{}, "booking_id = ? AND status = ?", b.ID, enums.AlertStatusPending))

	got, err := f.svc.Cancel(ctx, b.ID, enums.CancellationReasonDuplicate)
	require.NoError(t, err)
	require.Equal(t, enums.BookingStatusQuote, got.Status)
	require.Zero(t, f.count(t, &models.Alert{}, "booking_id = ? AND status = ?", b.ID, enums.AlertStatusPending))

	_, err = f.svc.Archive(ctx, b.ID)
	require.NoError(t, err)
}

func TestExpireOption(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.booking(t, 2)
	_, err := f.svc.Option(ctx, b.ID)
	require.NoError(t, err)

	_, err = f.svc.ExpireOption(ctx, b.ID)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotAllowed, "option_not_expired"))

	f.svc.(*service).now = func() time.Time { return fixedNow.AddDate(0, 0, 11) }
	got, err := f.svc.ExpireOption(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, enums.BookingStatusQuote, got.Status)
	require.Nil(t, got.OptionExpiresAt)
	require.Zero(t, f.count(t, &models.Consumption{}, "booking_id = ?", b.ID))
	require.EqualValues(t, 1, f.count(t, &models.Alert{}, "booking_id = ? AND code = ?", b.ID, alerts.CodeOptionExpired))
	require.EqualValues(t, 1, f.count(t, &models.OutboxEvent{}, "aggregate_id = ? AND event_type = ?", b.ID, enums.EventBookingOptionExpired))
}

func TestArchiveRequiresClosedBooking(t *testing.T) {
	f := newFixture(t)
	b := f.booking(t, 2)
	_, err := f.svc.Archive(context.Background(), b.ID)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeInvalidParam, pkgerrors.ReasonIncompatibleStatus))
}

func TestBalanceStatus(t *testing.T) {
	price := decimal.RequireFromString("725.90")
	require.Equal(t, enums.BookingStatusBalanced, BalanceStatus(price, decimal.RequireFromString("725.9")))
	require.Equal(t, enums.BookingStatusDebitBalance, BalanceStatus(price, decimal.RequireFromString("700")))
	require.Equal(t, enums.BookingStatusCreditBalance, BalanceStatus(price, decimal.RequireFromString("726")))
}
