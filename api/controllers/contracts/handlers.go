package contracts

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/discope/discope-backend/api/controllers/dto"
	"github.com/discope/discope-backend/api/responses"
	"github.com/discope/discope-backend/api/validators"
	internalcontracts "github.com/discope/discope-backend/internal/contracts"
	"github.com/discope/discope-backend/pkg/db/models"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
	"github.com/discope/discope-backend/pkg/logger"
)

type contractFunc func(ctx context.Context, id uuid.UUID) (*models.Contract, error)

func serve(svc internalcontracts.Service, logg *logger.Logger, param string, pick func(internalcontracts.Service) contractFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contracts service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, param)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		c, err := pick(svc)(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.NewContract(c))
	}
}

func Get(svc internalcontracts.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, "contractId", func(s internalcontracts.Service) contractFunc { return s.Get })
}

// Latest returns the most recent contract of a booking.
func Latest(svc internalcontracts.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, "bookingId", func(s internalcontracts.Service) contractFunc { return s.Latest })
}

func DoSend(svc internalcontracts.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, "contractId", func(s internalcontracts.Service) contractFunc { return s.Send })
}

func DoSign(svc internalcontracts.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, "contractId", func(s internalcontracts.Service) contractFunc { return s.Sign })
}

func DoLock(svc internalcontracts.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, "contractId", func(s internalcontracts.Service) contractFunc { return s.Lock })
}

func DoUnlock(svc internalcontracts.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, "contractId", func(s internalcontracts.Service) contractFunc { return s.Unlock })
}

func DoCancel(svc internalcontracts.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, "contractId", func(s internalcontracts.Service) contractFunc { return s.Cancel })
}
