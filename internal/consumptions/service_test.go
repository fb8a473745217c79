package consumptions

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/discope/discope-backend/internal/testdb"
	"github.com/discope/discope-backend/pkg/dates"
	"github.com/discope/discope-backend/pkg/db/models"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
)

func bookingWithUnit(centerID, unitID uuid.UUID, from, to string) *models.Booking {
	bookingID, groupID, spmID := uuid.New(), uuid.New(), uuid.New()
	return &models.Booking{
		ID:       bookingID,
		CenterID: centerID,
		Groups: []*models.BookingLineGroup{{
			ID:        groupID,
			BookingID: bookingID,
			DateFrom:  dates.MustParse(from),
			DateTo:    dates.MustParse(to),
			ProductModels: []*models.SojournProductModel{{
				ID:        spmID,
				BookingID: bookingID,
				GroupID:   groupID,
				Assignments: []*models.RentalUnitAssignment{{
					ID:                    uuid.New(),
					BookingID:             bookingID,
					GroupID:               groupID,
					SojournProductModelID: spmID,
					RentalUnitID:          unitID,
					Qty:                   2,
				}},
			}},
		}},
	}
}

func TestPlanOneRowPerNight(t *testing.T) {
	b := bookingWithUnit(uuid.New(), uuid.New(), "2023-03-01", "2023-03-04")
	rows := Plan(b)
	require.Len(t, rows, 3)
	require.Equal(t, "2023-03-01", rows[0].Date.Format(dates.Layout))
	require.Equal(t, "2023-03-03", rows[2].Date.Format(dates.Layout))
	require.Equal(t, 2, rows[0].Qty)
}

func TestPlanZeroNightStayOccupiesArrivalDay(t *testing.T) {
	b := bookingWithUnit(uuid.New(), uuid.New(), "2023-03-01", "2023-03-01")
	rows := Plan(b)
	require.Len(t, rows, 1)
}

func TestReserveAndRelease(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	center, unit := uuid.New(), uuid.New()
	first := bookingWithUnit(center, unit, "2023-03-01", "2023-03-04")
	require.NoError(t, svc.Reserve(ctx, db, first))

	busy, err := svc.BusyUnits(ctx, center, dates.MustParse("2023-03-03"), dates.MustParse("2023-03-05"), uuid.New())
	require.NoError(t, err)
	require.True(t, busy[unit])

	busy, err = svc.BusyUnits(ctx, center, dates.MustParse("2023-03-03"), dates.MustParse("2023-03-05"), first.ID)
	require.NoError(t, err)
	require.False(t, busy[unit])

	busy, err = svc.BusyUnits(ctx, center, dates.MustParse("2023-03-04"), dates.MustParse("2023-03-06"), uuid.New())
	require.NoError(t, err)
	require.False(t, busy[unit])

	second := bookingWithUnit(center, unit, "2023-03-03", "2023-03-05")
	err = svc.Reserve(ctx, db, second)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotAllowed, pkgerrors.ReasonRentalUnitUnavailable))

	require.NoError(t, svc.Reserve(ctx, db, first), "reserving twice replaces the rows")
	var count int64
	require.NoError(t, db.Model(&models.Consumption{}).Where("booking_id = ?", first.ID).Count(&count).Error)
	require.EqualValues(t, 3, count)

	require.NoError(t, svc.Release(ctx, db, first.ID))
	require.NoError(t, svc.Reserve(ctx, db, second))
}
