package bookings

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalbookings "github.com/discope/discope-backend/internal/bookings"
	"github.com/discope/discope-backend/internal/workflow"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
	"github.com/discope/discope-backend/pkg/logger"
)

type fakeBookings struct {
	internalbookings.Service
	create    func(ctx context.Context, in internalbookings.CreateBookingInput) (*models.Booking, error)
	get       func(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	updateGrp func(ctx context.Context, bookingID, groupID uuid.UUID, in internalbookings.GroupInput) (*models.Booking, error)
	addLine   func(ctx context.Context, bookingID, groupID, productID uuid.UUID, in internalbookings.LineInput) (*models.Booking, error)
	mealPref  func(ctx context.Context, bookingID, groupID uuid.UUID, pref enums.MealPreferenceType, qty int) (*models.Booking, error)
}

func (f *fakeBookings) CreateBooking(ctx context.Context, in internalbookings.CreateBookingInput) (*models.Booking, error) {
	return f.create(ctx, in)
}

func (f *fakeBookings) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return f.get(ctx, id)
}

func (f *fakeBookings) UpdateGroup(ctx context.Context, bookingID, groupID uuid.UUID, in internalbookings.GroupInput) (*models.Booking, error) {
	return f.updateGrp(ctx, bookingID, groupID, in)
}

func (f *fakeBookings) AddLine(ctx context.Context, bookingID, groupID, productID uuid.UUID, in internalbookings.LineInput) (*models.Booking, error) {
	return f.addLine(ctx, bookingID, groupID, productID, in)
}

func (f *fakeBookings) SetMealPreference(ctx context.Context, bookingID, groupID uuid.UUID, pref enums.MealPreferenceType, qty int) (*models.Booking, error) {
	return f.mealPref(ctx, bookingID, groupID, pref, qty)
}

type fakeWorkflow struct {
	workflow.Service
	confirm func(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	cancel  func(ctx context.Context, id uuid.UUID, reason enums.CancellationReason) (*models.Booking, error)
}

func (f *fakeWorkflow) Confirm(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return f.confirm(ctx, id)
}

func (f *fakeWorkflow) Cancel(ctx context.Context, id uuid.UUID, reason enums.CancellationReason) (*models.Booking, error) {
	return f.cancel(ctx, id, reason)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func withParams(req *http.Request, kv ...string) *http.Request {
	routeCtx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		routeCtx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func sampleBooking(status enums.BookingStatus) *models.Booking {
	return &models.Booking{
		ID:         uuid.New(),
		Number:     42,
		CenterID:   uuid.New(),
		CustomerID: uuid.New(),
		Status:     status,
		DateFrom:   time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		DateTo:     time.Date(2026, 7, 3, 0, 0, 0, 0, time.UTC),
		Price:      decimal.RequireFromString("120.50"),
		Groups: []*models.BookingLineGroup{{
			ID:        uuid.New(),
			Name:      "Sojourn",
			GroupType: enums.GroupTypeSojourn,
			Lines: []*models.BookingLine{{
				ID:        uuid.New(),
				Name:      "Night",
				Qty:       2,
				UnitPrice: decimal.RequireFromString("60.25"),
			}},
		}},
	}
}

type envelope struct {
	Data  map[string]any `json:"data"`
	Error map[string]any `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestCreateBookingParsesDates(t *testing.T) {
	centerID, customerID := uuid.New(), uuid.New()
	svc := &fakeBookings{create: func(ctx context.Context, in internalbookings.CreateBookingInput) (*models.Booking, error) {
		assert.Equal(t, centerID, in.CenterID)
		assert.Equal(t, customerID, in.CustomerID)
		assert.Equal(t, "2026-07-01", in.DateFrom.Format("2006-01-02"))
		assert.Equal(t, "2026-07-03", in.DateTo.Format("2006-01-02"))
		require.Len(t, in.Contacts, 1)
		assert.Equal(t, "Jane", in.Contacts[0].Name)
		return sampleBooking(enums.BookingStatusQuote), nil
	}}

	body := `{"center_id":"` + centerID.String() + `","customer_id":"` + customerID.String() +
		`","date_from":"2026-07-01","date_to":"2026-07-03","contacts":[{"name":"  Jane ","role":"booking"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	Create(svc, testLogger())(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "quote", env.Data["status"])
	assert.Equal(t, "2026-07-01", env.Data["date_from"])
	assert.Equal(t, "120.5", env.Data["price"])
}

func TestCreateBookingRejectsMissingCenter(t *testing.T) {
	body := `{"customer_id":"` + uuid.NewString() + `","date_from":"2026-07-01","date_to":"2026-07-03"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	Create(&fakeBookings{}, testLogger())(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBookingRejectsBadDate(t *testing.T) {
	body := `{"center_id":"` + uuid.NewString() + `","customer_id":"` + uuid.NewString() + `","date_from":"01/07/2026","date_to":"2026-07-03"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	Create(&fakeBookings{}, testLogger())(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBookingMapsGroupsAndLines(t *testing.T) {
	b := sampleBooking(enums.BookingStatusConfirmed)
	svc := &fakeBookings{get: func(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
		assert.Equal(t, b.ID, id)
		return b, nil
	}}
	req := withParams(httptest.NewRequest(http.MethodGet, "/api/v1/bookings/"+b.ID.String(), nil), "bookingId", b.ID.String())
	rec := httptest.NewRecorder()
	Get(svc, testLogger())(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	groups, ok := env.Data["groups"].([]any)
	require.True(t, ok)
	require.Len(t, groups, 1)
	lines := groups[0].(map[string]any)["lines"].([]any)
	assert.Equal(t, "60.25", lines[0].(map[string]any)["unit_price"])
}

func TestGetBookingInvalidID(t *testing.T) {
	req := withParams(httptest.NewRequest(http.MethodGet, "/api/v1/bookings/nope", nil), "bookingId", "nope")
	rec := httptest.NewRecorder()
	Get(&fakeBookings{}, testLogger())(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBookingNotFound(t *testing.T) {
	svc := &fakeBookings{get: func(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
		return nil, pkgerrors.New(pkgerrors.CodeUnknownObject, "booking not found")
	}}
	id := uuid.NewString()
	req := withParams(httptest.NewRequest(http.MethodGet, "/api/v1/bookings/"+id, nil), "bookingId", id)
	rec := httptest.NewRecorder()
	Get(svc, testLogger())(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateGroupPassesOnlyProvidedFields(t *testing.T) {
	bookingID, groupID := uuid.New(), uuid.New()
	svc := &fakeBookings{updateGrp: func(ctx context.Context, bid, gid uuid.UUID, in internalbookings.GroupInput) (*models.Booking, error) {
		assert.Equal(t, bookingID, bid)
		assert.Equal(t, groupID, gid)
		require.NotNil(t, in.NbPers)
		assert.Equal(t, 12, *in.NbPers)
		require.NotNil(t, in.DateTo)
		assert.Nil(t, in.DateFrom)
		assert.Nil(t, in.Name)
		return sampleBooking(enums.BookingStatusQuote), nil
	}}
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"nb_pers":12,"date_to":"2026-07-05"}`))
	req = withParams(req, "bookingId", bookingID.String(), "groupId", groupID.String())
	rec := httptest.NewRecorder()
	UpdateGroup(svc, testLogger())(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateGroupRejectsUnknownType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"group_type":"castle"}`))
	req = withParams(req, "bookingId", uuid.NewString(), "groupId", uuid.NewString())
	rec := httptest.NewRecorder()
	UpdateGroup(&fakeBookings{}, testLogger())(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddLineRequiresProduct(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"qty":2}`))
	req = withParams(req, "bookingId", uuid.NewString(), "groupId", uuid.NewString())
	rec := httptest.NewRecorder()
	AddLine(&fakeBookings{}, testLogger())(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddLineManualPrice(t *testing.T) {
	productID := uuid.New()
	svc := &fakeBookings{addLine: func(ctx context.Context, bid, gid, pid uuid.UUID, in internalbookings.LineInput) (*models.Booking, error) {
		assert.Equal(t, productID, pid)
		require.NotNil(t, in.UnitPrice)
		assert.True(t, in.UnitPrice.Equal(decimal.RequireFromString("12.5")))
		return sampleBooking(enums.BookingStatusQuote), nil
	}}
	body := `{"product_id":"` + productID.String() + `","unit_price":"12.5"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req = withParams(req, "bookingId", uuid.NewString(), "groupId", uuid.NewString())
	rec := httptest.NewRecorder()
	AddLine(svc, testLogger())(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestAddLineLockedGroupIsForbidden(t *testing.T) {
	svc := &fakeBookings{addLine: func(ctx context.Context, bid, gid, pid uuid.UUID, in internalbookings.LineInput) (*models.Booking, error) {
		return nil, pkgerrors.New(pkgerrors.CodeNotAllowed, pkgerrors.ReasonLockedGroup)
	}}
	body := `{"product_id":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req = withParams(req, "bookingId", uuid.NewString(), "groupId", uuid.NewString())
	rec := httptest.NewRecorder()
	AddLine(svc, testLogger())(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, pkgerrors.ReasonLockedGroup, env.Error["message"])
}

func TestSetMealPreferenceValidatesType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"type":"carnivore","qty":3}`))
	req = withParams(req, "bookingId", uuid.NewString(), "groupId", uuid.NewString())
	rec := httptest.NewRecorder()
	SetMealPreference(&fakeBookings{}, testLogger())(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDoConfirm(t *testing.T) {
	id := uuid.New()
	svc := &fakeWorkflow{confirm: func(ctx context.Context, got uuid.UUID) (*models.Booking, error) {
		assert.Equal(t, id, got)
		return sampleBooking(enums.BookingStatusConfirmed), nil
	}}
	req := withParams(httptest.NewRequest(http.MethodPost, "/", nil), "bookingId", id.String())
	rec := httptest.NewRecorder()
	DoConfirm(svc, testLogger())(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "confirmed", decode(t, rec).Data["status"])
}

func TestDoConfirmIncompatibleStatus(t *testing.T) {
	svc := &fakeWorkflow{confirm: func(ctx context.Context, got uuid.UUID) (*models.Booking, error) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonIncompatibleStatus)
	}}
	req := withParams(httptest.NewRequest(http.MethodPost, "/", nil), "bookingId", uuid.NewString())
	rec := httptest.NewRecorder()
	DoConfirm(svc, testLogger())(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDoCancelParsesReason(t *testing.T) {
	svc := &fakeWorkflow{cancel: func(ctx context.Context, id uuid.UUID, reason enums.CancellationReason) (*models.Booking, error) {
		assert.Equal(t, enums.CancellationReasonOverbooking, reason)
		b := sampleBooking(enums.BookingStatusQuote)
		b.IsCancelled = true
		return b, nil
	}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reason":"overbooking"}`))
	req = withParams(req, "bookingId", uuid.NewString())
	rec := httptest.NewRecorder()
	DoCancel(svc, testLogger())(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec).Data["is_cancelled"])
}

func TestDoCancelRejectsUnknownReason(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reason":"boredom"}`))
	req = withParams(req, "bookingId", uuid.NewString())
	rec := httptest.NewRecorder()
	DoCancel(&fakeWorkflow{}, testLogger())(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDoCancelEmptyReasonReachesService(t *testing.T) {
	svc := &fakeWorkflow{cancel: func(ctx context.Context, id uuid.UUID, reason enums.CancellationReason) (*models.Booking, error) {
		assert.Empty(t, reason)
		return nil, pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonMissingReason)
	}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req = withParams(req, "bookingId", uuid.NewString())
	rec := httptest.NewRecorder()
	DoCancel(svc, testLogger())(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWorkflowUnavailable(t *testing.T) {
	req := withParams(httptest.NewRequest(http.MethodPost, "/", nil), "bookingId", uuid.NewString())
	rec := httptest.NewRecorder()
	DoInvoice(nil, testLogger())(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
