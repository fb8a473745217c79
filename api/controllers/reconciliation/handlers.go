package reconciliation

import (
	"net/http"

	"github.com/discope/discope-backend/api/controllers/dto"
	"github.com/discope/discope-backend/api/responses"
	"github.com/discope/discope-backend/api/validators"
	internalreconciliation "github.com/discope/discope-backend/internal/reconciliation"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
	"github.com/discope/discope-backend/pkg/logger"
)

var errUnavailable = pkgerrors.New(pkgerrors.CodeInternal, "reconciliation service unavailable")

// ImportStatement stores a decoded bank statement. Lines stay pending until
// reconciled.
func ImportStatement(svc internalreconciliation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, errUnavailable)
			return
		}
		var req StatementRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		in, err := req.toInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		s, err := svc.ImportStatement(ctx, in)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteCreated(w, dto.NewStatement(s))
	}
}

func GetStatement(svc internalreconciliation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, errUnavailable)
			return
		}
		id, err := validators.ParseUUIDParam(r, "statementId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		s, err := svc.GetStatement(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.NewStatement(s))
	}
}

// DoReconcile matches a line by its structured reference.
func DoReconcile(svc internalreconciliation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, errUnavailable)
			return
		}
		id, err := validators.ParseUUIDParam(r, "lineId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		line, err := svc.Reconcile(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.NewStatementLine(line))
	}
}

func DoReconcileManual(svc internalreconciliation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, errUnavailable)
			return
		}
		id, err := validators.ParseUUIDParam(r, "lineId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req ManualRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		line, err := svc.ReconcileManual(ctx, id, req.FundingID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.NewStatementLine(line))
	}
}

func DoIgnore(svc internalreconciliation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, errUnavailable)
			return
		}
		id, err := validators.ParseUUIDParam(r, "lineId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		line, err := svc.Ignore(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.NewStatementLine(line))
	}
}
