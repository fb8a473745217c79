package contracts

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalcontracts "github.com/discope/discope-backend/internal/contracts"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
	"github.com/discope/discope-backend/pkg/logger"
)

type fakeContracts struct {
	internalcontracts.Service
	contract *models.Contract
}

func (f *fakeContracts) Sign(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	if f.contract.Status != enums.ContractStatusSent {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonIncompatibleStatus)
	}
	now := time.Now()
	f.contract.Status = enums.ContractStatusSigned
	f.contract.SignedAt = &now
	return f.contract, nil
}

func (f *fakeContracts) Latest(ctx context.Context, bookingID uuid.UUID) (*models.Contract, error) {
	if f.contract.BookingID != bookingID {
		return nil, pkgerrors.New(pkgerrors.CodeUnknownObject, "contract not found")
	}
	return f.contract, nil
}

func newRequest(key, value string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestDoSignSentContract(t *testing.T) {
	c := &models.Contract{ID: uuid.New(), BookingID: uuid.New(), Status: enums.ContractStatusSent}
	rec := httptest.NewRecorder()
	DoSign(&fakeContracts{contract: c}, testLogger())(rec, newRequest("contractId", c.ID.String()))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"signed"`)
}

func TestDoSignPendingContractIsRejected(t *testing.T) {
	c := &models.Contract{ID: uuid.New(), Status: enums.ContractStatusPending}
	rec := httptest.NewRecorder()
	DoSign(&fakeContracts{contract: c}, testLogger())(rec, newRequest("contractId", c.ID.String()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLatestUsesBookingParam(t *testing.T) {
	c := &models.Contract{ID: uuid.New(), BookingID: uuid.New(), Status: enums.ContractStatusPending}
	rec := httptest.NewRecorder()
	Latest(&fakeContracts{contract: c}, testLogger())(rec, newRequest("bookingId", c.BookingID.String()))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	Latest(&fakeContracts{contract: c}, testLogger())(rec, newRequest("bookingId", uuid.NewString()))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
