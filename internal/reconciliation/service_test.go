package reconciliation

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/discope/discope-backend/internal/bookings"
	"github.com/discope/discope-backend/internal/catalog"
	"github.com/discope/discope-backend/internal/catalog/catalogtest"
	"github.com/discope/discope-backend/internal/fundings"
	"github.com/discope/discope-backend/internal/testdb"
	"github.com/discope/discope-backend/pkg/dates"
	pkgdb "github.com/discope/discope-backend/pkg/db"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
	"github.com/discope/discope-backend/pkg/logger"
	"github.com/discope/discope-backend/pkg/outbox"
	"github.com/discope/discope-backend/pkg/reference"
)

type fixture struct {
	db       *gorm.DB
	svc      Service
	fundings fundings.Service
	booking  *models.Booking
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := testdb.Open(t)
	s := catalogtest.NewScenario()
	require.NoError(t, s.Seed(conn))

	publisher := outbox.NewService(outbox.NewRepository(conn), nil)
	fundingSvc, err := fundings.NewService(pkgdb.Wrap(conn), fundings.NewRepository(conn), bookings.NewRepository(conn), catalog.NewRepository(conn), publisher, fundings.Options{DepositPercent: 30, BalanceDaysBefore: 30})
	require.NoError(t, err)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(pkgdb.Wrap(conn), NewRepository(conn), fundingSvc, publisher, logg)
	require.NoError(t, err)

	b := &models.Booking{
		ID:              uuid.New(),
		Number:          230001,
		CenterID:        s.Center.ID,
		CustomerID:      s.Customer.ID,
		BookingTypeCode: "TP",
		Status:          enums.BookingStatusConfirmed,
		DateFrom:        dates.MustParse("2023-03-01"),
		DateTo:          dates.MustParse("2023-03-03"),
		Price:           decimal.NewFromInt(100),
	}
	require.NoError(t, conn.Omit("Groups", "Contacts").Create(b).Error)
	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		_, err := fundingSvc.GenerateForBooking(context.Background(), tx, b, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
		return err
	}))
	return &fixture{db: conn, svc: svc, fundings: fundingSvc, booking: b}
}

func (f *fixture) deposit(t *testing.T) *models.Funding {
	t.Helper()
	list, err := f.fundings.List(context.Background(), f.booking.ID)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	return list[0]
}

func (f *fixture) importLine(t *testing.T, amount decimal.Decimal, structured, message *string) *models.BankStatementLine {
	t.Helper()
	st, err := f.svc.ImportStatement(context.Background(), StatementInput{
		Date:    dates.MustParse("2023-01-05"),
		Account: "BE68539007547034",
		Lines: []LineInput{{
			Date:              dates.MustParse("2023-01-05"),
			Amount:            amount,
			StructuredMessage: structured,
			Message:           message,
		}},
	})
	require.NoError(t, err)
	return st.Lines[0]
}

func ptr(s string) *string { return &s }

func TestReconcileByStructuredReference(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	deposit := f.deposit(t)
	line := f.importLine(t, deposit.DueAmount, ptr(reference.Normalize(deposit.PaymentReference)), nil)

	got, err := f.svc.Reconcile(ctx, line.ID)
	require.NoError(t, err)
	require.Equal(t, enums.StatementLineStatusReconciled, got.Status)
	require.Equal(t, deposit.ID, *got.FundingID)

	paid, err := f.fundings.Get(ctx, deposit.ID)
	require.NoError(t, err)
	require.True(t, paid.IsPaid)
	require.True(t, paid.PaidAmount.Equal(paid.DueAmount))
	require.Len(t, paid.Payments, 1)
	require.Equal(t, enums.PaymentOriginBank, paid.Payments[0].Origin)
	require.Equal(t, enums.PaymentMethodWireTransfer, paid.Payments[0].Method)

	var events []models.OutboxEvent
	require.NoError(t, f.db.Where("event_type = ?", enums.EventStatementLineReconciled).Find(&events).Error)
	require.Len(t, events, 1)

	_, err = f.svc.Reconcile(ctx, line.ID)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotAllowed, pkgerrors.ReasonAlreadyReconciled))
}

func TestReconcileFindsReferenceInFreeMessage(t *testing.T) {
	f := newFixture(t)
	deposit := f.deposit(t)
	line := f.importLine(t, deposit.DueAmount, nil, ptr("acompte "+deposit.PaymentReference+" merci"))

	got, err := f.svc.Reconcile(context.Background(), line.ID)
	require.NoError(t, err)
	require.Equal(t, deposit.ID, *got.FundingID)
}

func TestReconcileWithoutMatch(t *testing.T) {
	f := newFixture(t)
	line := f.importLine(t, decimal.NewFromInt(10), ptr(reference.Structured(999)), nil)

	_, err := f.svc.Reconcile(context.Background(), line.ID)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeInvalidParam, pkgerrors.ReasonNoMatchingFunding))

	reloaded, err := NewRepository(f.db).FindLine(context.Background(), line.ID)
	require.NoError(t, err)
	require.Equal(t, enums.StatementLineStatusPending, reloaded.Status)
}

func TestReconcileManualAndIgnore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	deposit := f.deposit(t)
	line := f.importLine(t, decimal.NewFromInt(12), nil, ptr("virement"))

	got, err := f.svc.ReconcileManual(ctx, line.ID, deposit.ID)
	require.NoError(t, err)
	require.Equal(t, enums.StatementLineStatusReconciled, got.Status)

	other := f.importLine(t, decimal.NewFromInt(3), nil, nil)
	ignored, err := f.svc.Ignore(ctx, other.ID)
	require.NoError(t, err)
	require.Equal(t, enums.StatementLineStatusIgnored, ignored.Status)
	_, err = f.svc.Ignore(ctx, other.ID)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotAllowed, pkgerrors.ReasonAlreadyReconciled))
}

func TestReconcilePendingCountsOutcomes(t *testing.T) {
	f := newFixture(t)
	deposit := f.deposit(t)
	f.importLine(t, deposit.DueAmount, ptr(deposit.PaymentReference), nil)
	f.importLine(t, decimal.NewFromInt(1), nil, ptr("no reference"))

	summary, err := f.svc.ReconcilePending(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, Summary{Reconciled: 1, Unmatched: 1}, summary)
}

func TestImportRejectsEmptyStatement(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ImportStatement(context.Background(), StatementInput{Date: time.Now()})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeInvalidParam, ""))
}
