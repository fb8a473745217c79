package bookings

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/discope/discope-backend/api/responses"
	"github.com/discope/discope-backend/api/validators"
	"github.com/discope/discope-backend/internal/workflow"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
	"github.com/discope/discope-backend/pkg/logger"
)

type transitionFunc func(ctx context.Context, id uuid.UUID) (*models.Booking, error)

// transition serves the do-* actions that take no body.
func transition(svc workflow.Service, logg *logger.Logger, pick func(workflow.Service) transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workflow service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "bookingId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		b, err := pick(svc)(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeBooking(w, b)
	}
}

func DoOption(svc workflow.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, func(s workflow.Service) transitionFunc { return s.Option })
}

func DoConfirm(svc workflow.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, func(s workflow.Service) transitionFunc { return s.Confirm })
}

func DoQuote(svc workflow.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, func(s workflow.Service) transitionFunc { return s.Quote })
}

func DoCheckIn(svc workflow.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, func(s workflow.Service) transitionFunc { return s.CheckIn })
}

func DoCheckOut(svc workflow.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, func(s workflow.Service) transitionFunc { return s.CheckOut })
}

func DoInvoice(svc workflow.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, func(s workflow.Service) transitionFunc { return s.Invoice })
}

func DoBalance(svc workflow.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, func(s workflow.Service) transitionFunc { return s.Balance })
}

func DoArchive(svc workflow.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, func(s workflow.Service) transitionFunc { return s.Archive })
}

// DoCancel cancels with the reason given in the body.
func DoCancel(svc workflow.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workflow service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "bookingId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req CancelRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var reason enums.CancellationReason
		if req.Reason != "" {
			if reason, err = enums.ParseCancellationReason(req.Reason); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cancellation reason").WithDetails(map[string]any{"field": "reason"}))
				return
			}
		}
		b, err := svc.Cancel(ctx, id, reason)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeBooking(w, b)
	}
}
