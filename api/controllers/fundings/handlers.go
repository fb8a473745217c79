package fundings

import (
	"net/http"

	"github.com/discope/discope-backend/api/controllers/dto"
	"github.com/discope/discope-backend/api/responses"
	"github.com/discope/discope-backend/api/validators"
	internalfundings "github.com/discope/discope-backend/internal/fundings"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
	"github.com/discope/discope-backend/pkg/logger"
)

var errUnavailable = pkgerrors.New(pkgerrors.CodeInternal, "fundings service unavailable")

// List returns the fundings of a booking in position order.
func List(svc internalfundings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, errUnavailable)
			return
		}
		bookingID, err := validators.ParseUUIDParam(r, "bookingId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		rows, err := svc.List(ctx, bookingID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.NewFundings(rows))
	}
}

func Get(svc internalfundings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, errUnavailable)
			return
		}
		id, err := validators.ParseUUIDParam(r, "fundingId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		f, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.NewFunding(f))
	}
}

func Add(svc internalfundings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, errUnavailable)
			return
		}
		bookingID, err := validators.ParseUUIDParam(r, "bookingId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req FundingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		in, err := req.toInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		f, err := svc.AddFunding(ctx, bookingID, in)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteCreated(w, dto.NewFunding(f))
	}
}

// AppendPayment records a payment and returns the refreshed funding.
func AppendPayment(svc internalfundings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, errUnavailable)
			return
		}
		id, err := validators.ParseUUIDParam(r, "fundingId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req PaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		in, err := req.toInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if _, err := svc.AppendPayment(ctx, id, in); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		f, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteCreated(w, dto.NewFunding(f))
	}
}

func RemovePayment(svc internalfundings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, errUnavailable)
			return
		}
		id, err := validators.ParseUUIDParam(r, "paymentId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.RemovePayment(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": id, "deleted": true})
	}
}

func MarkPaid(svc internalfundings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, errUnavailable)
			return
		}
		id, err := validators.ParseUUIDParam(r, "fundingId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		f, err := svc.MarkPaid(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.NewFunding(f))
	}
}

func MarkUnpaid(svc internalfundings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, errUnavailable)
			return
		}
		id, err := validators.ParseUUIDParam(r, "fundingId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		f, err := svc.MarkUnpaid(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.NewFunding(f))
	}
}

func Delete(svc internalfundings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, errUnavailable)
			return
		}
		id, err := validators.ParseUUIDParam(r, "fundingId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.DeleteFunding(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": id, "deleted": true})
	}
}

// TransferFunding moves a funding and its payments to another booking of
// the same customer.
func TransferFunding(svc internalfundings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, errUnavailable)
			return
		}
		id, err := validators.ParseUUIDParam(r, "fundingId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req TransferRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		f, err := svc.TransferFunding(ctx, id, req.BookingID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.NewFunding(f))
	}
}

// TransferPayment moves a single payment onto a transfer funding of the target booking.
func TransferPayment(svc internalfundings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, errUnavailable)
			return
		}
		id, err := validators.ParseUUIDParam(r, "paymentId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req TransferRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		f, err := svc.TransferPayment(ctx, id, req.BookingID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.NewFunding(f))
	}
}
