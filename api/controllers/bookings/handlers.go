package bookings

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/discope/discope-backend/api/controllers/dto"
	"github.com/discope/discope-backend/api/responses"
	"github.com/discope/discope-backend/api/validators"
	internalbookings "github.com/discope/discope-backend/internal/bookings"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
	"github.com/discope/discope-backend/pkg/logger"
)

func serviceUnavailable(svc internalbookings.Service) error {
	if svc == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "bookings service unavailable")
	}
	return nil
}

func writeBooking(w http.ResponseWriter, b *models.Booking) {
	responses.WriteSuccess(w, dto.NewBooking(b))
}

// groupIDs reads the booking and group path parameters.
func groupIDs(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	bookingID, err := validators.ParseUUIDParam(r, "bookingId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	groupID, err := validators.ParseUUIDParam(r, "groupId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return bookingID, groupID, nil
}

// Create opens a quote booking.
func Create(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := serviceUnavailable(svc); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req CreateBookingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		in, err := req.toInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		b, err := svc.CreateBooking(ctx, in)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteCreated(w, dto.NewBooking(b))
	}
}

func Get(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := serviceUnavailable(svc); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "bookingId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		b, err := svc.GetBooking(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeBooking(w, b)
	}
}

func Update(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := serviceUnavailable(svc); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "bookingId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req UpdateBookingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		b, err := svc.UpdateBooking(ctx, id, req.toInput())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeBooking(w, b)
	}
}

// Delete removes a booking that never left quote.
func Delete(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := serviceUnavailable(svc); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "bookingId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.DeleteBooking(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": id, "deleted": true})
	}
}

// Refresh recomputes every group, line and total of the booking.
func Refresh(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := serviceUnavailable(svc); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "bookingId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		b, err := svc.RefreshBooking(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeBooking(w, b)
	}
}

func CreateGroup(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := serviceUnavailable(svc); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		bookingID, err := validators.ParseUUIDParam(r, "bookingId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req GroupRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		in, err := req.toInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		b, err := svc.CreateGroup(ctx, bookingID, in)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteCreated(w, dto.NewBooking(b))
	}
}

func UpdateGroup(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := serviceUnavailable(svc); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		bookingID, groupID, err := groupIDs(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req GroupRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		in, err := req.toInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		b, err := svc.UpdateGroup(ctx, bookingID, groupID, in)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeBooking(w, b)
	}
}

func DeleteGroup(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := serviceUnavailable(svc); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		bookingID, groupID, err := groupIDs(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		b, err := svc.DeleteGroup(ctx, bookingID, groupID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeBooking(w, b)
	}
}

func SetPack(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := serviceUnavailable(svc); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		bookingID, groupID, err := groupIDs(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req PackRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		b, err := svc.SetPack(ctx, bookingID, groupID, req.PackID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeBooking(w, b)
	}
}

func RemovePack(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := serviceUnavailable(svc); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		bookingID, groupID, err := groupIDs(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		b, err := svc.RemovePack(ctx, bookingID, groupID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeBooking(w, b)
	}
}

func SetAgeRange(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := serviceUnavailable(svc); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		bookingID, groupID, err := groupIDs(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		ageRangeID, err := validators.ParseUUIDParam(r, "ageRangeId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req AgeRangeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		b, err := svc.SetAgeRange(ctx, bookingID, groupID, ageRangeID, req.Qty)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeBooking(w, b)
	}
}

func RemoveAgeRange(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := serviceUnavailable(svc); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		bookingID, groupID, err := groupIDs(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		ageRangeID, err := validators.ParseUUIDParam(r, "ageRangeId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		b, err := svc.RemoveAgeRange(ctx, bookingID, groupID, ageRangeID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeBooking(w, b)
	}
}

// AddLine requires product_id in the body.
func AddLine(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := serviceUnavailable(svc); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		bookingID, groupID, err := groupIDs(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req LineRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if req.ProductID == nil || *req.ProductID == uuid.Nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{"product_id": "is required"}))
			return
		}
		b, err := svc.AddLine(ctx, bookingID, groupID, *req.ProductID, req.toInput())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteCreated(w, dto.NewBooking(b))
	}
}

func UpdateLine(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := serviceUnavailable(svc); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		bookingID, groupID, err := groupIDs(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		lineID, err := validators.ParseUUIDParam(r, "lineId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req LineRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		b, err := svc.UpdateLine(ctx, bookingID, groupID, lineID, req.toInput())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeBooking(w, b)
	}
}

func DeleteLine(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := serviceUnavailable(svc); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		bookingID, groupID, err := groupIDs(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		lineID, err := validators.ParseUUIDParam(r, "lineId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		b, err := svc.DeleteLine(ctx, bookingID, groupID, lineID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeBooking(w, b)
	}
}

func AddAdapter(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := serviceUnavailable(svc); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		bookingID, groupID, err := groupIDs(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req AdapterRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		in, err := req.toInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		b, err := svc.AddAdapter(ctx, bookingID, groupID, in)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteCreated(w, dto.NewBooking(b))
	}
}

func RemoveAdapter(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := serviceUnavailable(svc); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		bookingID, groupID, err := groupIDs(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		adapterID, err := validators.ParseUUIDParam(r, "adapterId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		b, err := svc.RemoveAdapter(ctx, bookingID, groupID, adapterID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeBooking(w, b)
	}
}

// AssignRentalUnit assigns persons of an accommodation requirement to a rental unit.
func AssignRentalUnit(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := serviceUnavailable(svc); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		bookingID, groupID, err := groupIDs(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		spmID, err := validators.ParseUUIDParam(r, "accommodationId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req AssignmentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		b, err := svc.AssignRentalUnit(ctx, bookingID, groupID, spmID, req.RentalUnitID, req.Qty)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeBooking(w, b)
	}
}

func RemoveRentalUnitAssignment(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := serviceUnavailable(svc); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		bookingID, groupID, err := groupIDs(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		assignmentID, err := validators.ParseUUIDParam(r, "assignmentId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		b, err := svc.RemoveRentalUnitAssignment(ctx, bookingID, groupID, assignmentID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeBooking(w, b)
	}
}

func SetMealPreference(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := serviceUnavailable(svc); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		bookingID, groupID, err := groupIDs(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req MealPreferenceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		pref, err := enums.ParseMealPreferenceType(req.Type)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid meal preference").WithDetails(map[string]any{"field": "type"}))
			return
		}
		b, err := svc.SetMealPreference(ctx, bookingID, groupID, pref, req.Qty)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeBooking(w, b)
	}
}

func UpdateMeal(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := serviceUnavailable(svc); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		bookingID, groupID, err := groupIDs(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		mealID, err := validators.ParseUUIDParam(r, "mealId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req MealRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		b, err := svc.SetMealSelfProvided(ctx, bookingID, groupID, mealID, req.IsSelfProvided)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeBooking(w, b)
	}
}
