package reconciliation

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalreconciliation "github.com/discope/discope-backend/internal/reconciliation"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
	"github.com/discope/discope-backend/pkg/logger"
)

type fakeReconciliation struct {
	internalreconciliation.Service
	imported  *internalreconciliation.StatementInput
	reconcile func(ctx context.Context, lineID uuid.UUID) (*models.BankStatementLine, error)
	manual    func(ctx context.Context, lineID, fundingID uuid.UUID) (*models.BankStatementLine, error)
}

func (f *fakeReconciliation) ImportStatement(ctx context.Context, in internalreconciliation.StatementInput) (*models.BankStatement, error) {
	f.imported = &in
	s := &models.BankStatement{ID: uuid.New(), Date: in.Date, Account: in.Account}
	for _, l := range in.Lines {
		s.Lines = append(s.Lines, &models.BankStatementLine{ID: uuid.New(), Date: l.Date, Amount: l.Amount, Status: enums.StatementLineStatusPending})
	}
	return s, nil
}

func (f *fakeReconciliation) Reconcile(ctx context.Context, lineID uuid.UUID) (*models.BankStatementLine, error) {
	return f.reconcile(ctx, lineID)
}

func (f *fakeReconciliation) ReconcileManual(ctx context.Context, lineID, fundingID uuid.UUID) (*models.BankStatementLine, error) {
	return f.manual(ctx, lineID, fundingID)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func withParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestImportStatement(t *testing.T) {
	svc := &fakeReconciliation{}
	body := `{"date":"2026-05-02","account":"BE71096123456769","opening_balance":"0","closing_balance":"250",
		"lines":[{"date":"2026-05-02","amount":"250","structured_message":"+++000/0012/30194+++"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bank-statements", strings.NewReader(body))
	rec := httptest.NewRecorder()
	ImportStatement(svc, testLogger())(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.imported)
	require.Len(t, svc.imported.Lines, 1)
	assert.Equal(t, "250", svc.imported.Lines[0].Amount.String())
	assert.Contains(t, rec.Body.String(), `"status":"pending"`)
}

func TestImportStatementRequiresLines(t *testing.T) {
	body := `{"date":"2026-05-02","account":"BE71096123456769","lines":[]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bank-statements", strings.NewReader(body))
	rec := httptest.NewRecorder()
	ImportStatement(&fakeReconciliation{}, testLogger())(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDoReconcileNoMatch(t *testing.T) {
	svc := &fakeReconciliation{reconcile: func(ctx context.Context, lineID uuid.UUID) (*models.BankStatementLine, error) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonNoMatchingFunding)
	}}
	req := withParam(httptest.NewRequest(http.MethodPost, "/", nil), "lineId", uuid.NewString())
	rec := httptest.NewRecorder()
	DoReconcile(svc, testLogger())(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), pkgerrors.ReasonNoMatchingFunding)
}

func TestDoReconcileManual(t *testing.T) {
	lineID, fundingID := uuid.New(), uuid.New()
	svc := &fakeReconciliation{manual: func(ctx context.Context, lid, fid uuid.UUID) (*models.BankStatementLine, error) {
		assert.Equal(t, lineID, lid)
		assert.Equal(t, fundingID, fid)
		return &models.BankStatementLine{ID: lid, Status: enums.StatementLineStatusReconciled, FundingID: &fid}, nil
	}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"funding_id":"`+fundingID.String()+`"}`))
	req = withParam(req, "lineId", lineID.String())
	rec := httptest.NewRecorder()
	DoReconcileManual(svc, testLogger())(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"reconciled"`)
}
