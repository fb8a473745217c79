package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/discope/discope-backend/internal/alerts"
	"github.com/discope/discope-backend/internal/catalog"
	"github.com/discope/discope-backend/internal/catalog/catalogtest"
	"github.com/discope/discope-backend/internal/consumptions"
	"github.com/discope/discope-backend/internal/testdb"
	"github.com/discope/discope-backend/pkg/dates"
	pkgdb "github.com/discope/discope-backend/pkg/db"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
)

type serviceFixture struct {
	db       *gorm.DB
	scenario *catalogtest.Scenario
	svc      Service
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	conn := testdb.Open(t)
	s := catalogtest.NewScenario()
	require.NoError(t, s.Seed(conn))

	occupancy := consumptions.NewRepository(conn)
	consumptionSvc, err := consumptions.NewService(occupancy)
	require.NoError(t, err)
	alertSvc, err := alerts.NewService(alerts.NewRepository(conn))
	require.NoError(t, err)

	svc, err := NewService(pkgdb.Wrap(conn), NewRepository(conn), catalog.NewRepository(conn), occupancy, consumptionSvc, alertSvc, Options{})
	require.NoError(t, err)
	svc.(*service).now = func() time.Time { return time.Date(2023, 2, 1, 9, 0, 0, 0, time.UTC) }
	return &serviceFixture{db: conn, scenario: s, svc: svc}
}

func (f *serviceFixture) createBooking(t *testing.T) *models.Booking {
	t.Helper()
	b, err := f.svc.CreateBooking(context.Background(), CreateBookingInput{
		CenterID:   f.scenario.Center.ID,
		CustomerID: f.scenario.Customer.ID,
		DateFrom:   dates.MustParse("2023-03-01"),
		DateTo:     dates.MustParse("2023-03-03"),
		Contacts:   []ContactInput{{Name: "Jeanne Dupont", Role: "organizer"}},
	})
	require.NoError(t, err)
	return b
}

func (f *serviceFixture) addGroup(t *testing.T, b *models.Booking, nbPers int) *models.BookingLineGroup {
	t.Helper()
	from, to := dates.MustParse("2023-03-01"), dates.MustParse("2023-03-03")
	rc := f.scenario.GeneralPublic.ID
	updated, err := f.svc.CreateGroup(context.Background(), b.ID, GroupInput{DateFrom: &from, DateTo: &to, NbPers: &nbPers, RateClassID: &rc})
	require.NoError(t, err)
	return updated.Groups[0]
}

func (f *serviceFixture) setStatus(t *testing.T, id uuid.UUID, status enums.BookingStatus) {
	t.Helper()
	require.NoError(t, f.db.Model(&models.Booking{}).Where("id = ?", id).Update("status", status).Error)
}

func TestCreateBookingNumbersAndPersists(t *testing.T) {
	f := newServiceFixture(t)
	first := f.createBooking(t)
	second := f.createBooking(t)

	require.EqualValues(t, 230001, first.Number)
	require.EqualValues(t, 230002, second.Number)
	require.Equal(t, enums.BookingStatusQuote, first.Status)
	require.Equal(t, "TP", first.BookingTypeCode)

	loaded, err := f.svc.GetBooking(context.Background(), first.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Contacts, 1)
	require.Equal(t, "organizer", loaded.Contacts[0].Role)
}

func TestCreateBookingUnknownCustomer(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.CreateBooking(context.Background(), CreateBookingInput{
		CenterID:   f.scenario.Center.ID,
		CustomerID: uuid.New(),
		DateFrom:   dates.MustParse("2023-03-01"),
		DateTo:     dates.MustParse("2023-03-03"),
	})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeUnknownObject, ""))
}

func TestLinesRoundTripThroughStorage(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	b := f.createBooking(t)
	g := f.addGroup(t, b, 2)

	updated, err := f.svc.AddLine(ctx, b.ID, g.ID, f.scenario.Night.ID, LineInput{})
	require.NoError(t, err)
	requireConsistent(t, updated)

	loaded, err := f.svc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	require.True(t, loaded.Price.Equal(updated.Price), "%s != %s", loaded.Price, updated.Price)
	require.Len(t, loaded.Groups, len(updated.Groups))
	night := findLine(loaded, f.scenario.Night.Name)
	require.NotNil(t, night)
	require.Equal(t, 4, night.Qty)

	updated, err = f.svc.DeleteLine(ctx, b.ID, g.ID, night.ID)
	require.NoError(t, err)
	require.Nil(t, findLine(updated, f.scenario.Night.Name))

	var count int64
	require.NoError(t, f.db.Model(&models.BookingLine{}).Where("id = ?", night.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestRefreshIsIdempotentAfterReload(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	b := f.createBooking(t)
	g := f.addGroup(t, b, 3)
	_, err := f.svc.AddLine(ctx, b.ID, g.ID, f.scenario.Night.ID, LineInput{})
	require.NoError(t, err)
	before, err := f.svc.GetBooking(ctx, b.ID)
	require.NoError(t, err)

	after, err := f.svc.RefreshBooking(ctx, b.ID)
	require.NoError(t, err)
	require.True(t, after.Price.Equal(before.Price))
	require.Equal(t, len(before.Groups), len(after.Groups))
}

func TestNonQuoteBookingGuards(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	b := f.createBooking(t)
	g := f.addGroup(t, b, 2)
	f.setStatus(t, b.ID, enums.BookingStatusConfirmed)

	_, err := f.svc.AddLine(ctx, b.ID, g.ID, f.scenario.Breakfast.ID, LineInput{})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotAllowed, pkgerrors.MsgNonQuoteLines))

	nb := 4
	_, err = f.svc.UpdateGroup(ctx, b.ID, g.ID, GroupInput{NbPers: &nb})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotAllowed, pkgerrors.MsgNonQuoteServices))

	_, err = f.svc.CreateGroup(ctx, b.ID, GroupInput{RateClassID: &f.scenario.GeneralPublic.ID})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotAllowed, pkgerrors.MsgNonQuoteServices))

	extra := true
	simple := enums.GroupTypeSimple
	updated, err := f.svc.CreateGroup(ctx, b.ID, GroupInput{RateClassID: &f.scenario.GeneralPublic.ID, IsExtra: &extra, GroupType: &simple})
	require.NoError(t, err)
	var extraGroup *models.BookingLineGroup
	for _, grp := range updated.Groups {
		if grp.IsExtra {
			extraGroup = grp
		}
	}
	require.NotNil(t, extraGroup)
	_, err = f.svc.AddLine(ctx, b.ID, extraGroup.ID, f.scenario.Breakfast.ID, LineInput{})
	require.NoError(t, err)

	err = f.svc.DeleteBooking(ctx, b.ID)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotAllowed, pkgerrors.ReasonNonRemovableBooking))
}

func (f *serviceFixture) cancel(t *testing.T, id uuid.UUID, status enums.BookingStatus) {
	t.Helper()
	require.NoError(t, f.db.Model(&models.Booking{}).Where("id = ?", id).
		Updates(map[string]any{"is_cancelled": true, "status": status}).Error)
	require.NoError(t, f.db.Model(&models.BookingLineGroup{}).Where("booking_id = ?", id).Update("is_extra", true).Error)
}

func TestCancelledBookingAcceptsFeesOnExtraGroups(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	b := f.createBooking(t)
	g := f.addGroup(t, b, 2)
	f.cancel(t, b.ID, enums.BookingStatusCheckedOut)

	updated, err := f.svc.AddLine(ctx, b.ID, g.ID, f.scenario.Breakfast.ID, LineInput{})
	require.NoError(t, err)
	require.NotNil(t, findLine(updated, f.scenario.Breakfast.Name))
	require.True(t, updated.IsCancelled)
	require.Equal(t, enums.BookingStatusCheckedOut, updated.Status)

	var pending int64
	require.NoError(t, f.db.Model(&models.Alert{}).Where("booking_id = ? AND status = ?", b.ID, enums.AlertStatusPending).Count(&pending).Error)
	require.Zero(t, pending)

	notExtra := false
	_, err = f.svc.UpdateGroup(ctx, b.ID, g.ID, GroupInput{IsExtra: &notExtra})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeInvalidParam, pkgerrors.ReasonIncompatibleStatus))

	desc := "late cancellation"
	_, err = f.svc.UpdateBooking(ctx, b.ID, UpdateBookingInput{Description: &desc})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeInvalidParam, pkgerrors.ReasonIncompatibleStatus))
}

func TestCancelledBookingRejectsNonExtraGroups(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	b := f.createBooking(t)
	g := f.addGroup(t, b, 2)
	require.NoError(t, f.db.Model(&models.Booking{}).Where("id = ?", b.ID).Update("is_cancelled", true).Error)

	_, err := f.svc.AddLine(ctx, b.ID, g.ID, f.scenario.Breakfast.ID, LineInput{})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeInvalidParam, pkgerrors.ReasonIncompatibleStatus))
}

func TestCancelledBookingClosedOnceInvoiced(t *testing.T) {
	ctx := context.Background()
	for _, status := range []enums.BookingStatus{enums.BookingStatusInvoiced, enums.BookingStatusBalanced, enums.BookingStatusDebitBalance} {
		t.Run(string(status), func(t *testing.T) {
			f := newServiceFixture(t)
			b := f.createBooking(t)
			g := f.addGroup(t, b, 2)
			f.cancel(t, b.ID, status)

			_, err := f.svc.AddLine(ctx, b.ID, g.ID, f.scenario.Breakfast.ID, LineInput{})
			require.True(t, pkgerrors.Is(err, pkgerrors.CodeInvalidParam, pkgerrors.ReasonIncompatibleStatus))
		})
	}

	t.Run("archived", func(t *testing.T) {
		f := newServiceFixture(t)
		b := f.createBooking(t)
		g := f.addGroup(t, b, 2)
		f.cancel(t, b.ID, enums.BookingStatusCheckedOut)
		require.NoError(t, f.db.Model(&models.Booking{}).Where("id = ?", b.ID).Update("archived_at", time.Now()).Error)

		_, err := f.svc.AddLine(ctx, b.ID, g.ID, f.scenario.Breakfast.ID, LineInput{})
		require.True(t, pkgerrors.Is(err, pkgerrors.CodeInvalidParam, pkgerrors.ReasonIncompatibleStatus))
	})
}

func TestDeleteQuoteBookingRemovesRows(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	b := f.createBooking(t)
	g := f.addGroup(t, b, 2)
	_, err := f.svc.AddLine(ctx, b.ID, g.ID, f.scenario.Night.ID, LineInput{})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteBooking(ctx, b.ID))
	_, err = f.svc.GetBooking(ctx, b.ID)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeUnknownObject, ""))

	var lines, groups int64
	require.NoError(t, f.db.Model(&models.BookingLine{}).Where("booking_id = ?", b.ID).Count(&lines).Error)
	require.NoError(t, f.db.Model(&models.BookingLineGroup{}).Where("booking_id = ?", b.ID).Count(&groups).Error)
	require.Zero(t, lines)
	require.Zero(t, groups)
}

func TestIncompleteAssignmentRaisesAlert(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	b := f.createBooking(t)
	g := f.addGroup(t, b, 30)
	_, err := f.svc.AddLine(ctx, b.ID, g.ID, f.scenario.Night.ID, LineInput{})
	require.NoError(t, err)

	var pending []models.Alert
	require.NoError(t, f.db.Where("booking_id = ? AND status = ?", b.ID, enums.AlertStatusPending).Find(&pending).Error)
	require.Len(t, pending, 1)
	require.Equal(t, alerts.CodeIncompleteRentalUnits, pending[0].Code)

	nb := 10
	_, err = f.svc.UpdateGroup(ctx, b.ID, g.ID, GroupInput{NbPers: &nb})
	require.NoError(t, err)
	require.NoError(t, f.db.Where("booking_id = ? AND status = ?", b.ID, enums.AlertStatusPending).Find(&pending).Error)
	require.Empty(t, pending)
}

func TestHeldUnitsAreReservedAgainOnChange(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	b := f.createBooking(t)
	extra := true
	from, to := dates.MustParse("2023-03-01"), dates.MustParse("2023-03-03")
	nb := 1
	updated, err := f.svc.CreateGroup(ctx, b.ID, GroupInput{DateFrom: &from, DateTo: &to, NbPers: &nb, RateClassID: &f.scenario.GeneralPublic.ID, IsExtra: &extra})
	require.NoError(t, err)
	g := updated.Groups[0]
	f.setStatus(t, b.ID, enums.BookingStatusOption)

	_, err = f.svc.AddLine(ctx, b.ID, g.ID, f.scenario.Night.ID, LineInput{})
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.db.Model(&models.Consumption{}).Where("booking_id = ?", b.ID).Count(&count).Error)
	require.EqualValues(t, 2, count)
}
