package alerts

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/discope/discope-backend/api/controllers/dto"
	"github.com/discope/discope-backend/api/responses"
	"github.com/discope/discope-backend/api/validators"
	internalalerts "github.com/discope/discope-backend/internal/alerts"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
	"github.com/discope/discope-backend/pkg/logger"
	"github.com/discope/discope-backend/pkg/pagination"
)

type listResponse struct {
	Items  []dto.Alert `json:"items"`
	Cursor string      `json:"cursor"`
}

// List returns paginated alerts, optionally narrowed to one booking.
func List(svc internalalerts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "alerts service unavailable"))
			return
		}

		bookingID, err := validators.ParseQueryUUID(r, "booking_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		params := internalalerts.ListParams{
			BookingID: bookingID,
			Limit:     limit,
			Cursor:    strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		if pending := strings.TrimSpace(r.URL.Query().Get("pending_only")); pending != "" {
			value, err := strconv.ParseBool(pending)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pending_only value"))
				return
			}
			params.PendingOnly = value
		}

		res, err := svc.List(ctx, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		out := listResponse{Items: make([]dto.Alert, 0, len(res.Items)), Cursor: res.Cursor}
		for _, a := range res.Items {
			out.Items = append(out.Items, dto.NewAlert(a))
		}
		responses.WriteSuccess(w, out)
	}
}

func Dismiss(svc internalalerts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "alerts service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "alertId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.Dismiss(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"dismissed": true})
	}
}
