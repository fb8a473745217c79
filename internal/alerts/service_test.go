package alerts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/discope/discope-backend/internal/testdb"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, Repository) {
	t.Helper()
	repo := NewRepository(testdb.Open(t))
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}

func TestRaiseIsIdempotentWhilePending(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	bookingID := uuid.New()

	require.NoError(t, svc.Raise(ctx, nil, bookingID, CodeIncompleteRentalUnits, "group Séjour"))
	require.NoError(t, svc.Raise(ctx, nil, bookingID, CodeIncompleteRentalUnits, "group Séjour"))

	res, err := svc.List(ctx, ListParams{BookingID: &bookingID, PendingOnly: true})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)

	require.NoError(t, svc.Resolve(ctx, nil, bookingID, CodeIncompleteRentalUnits))
	res, err = svc.List(ctx, ListParams{BookingID: &bookingID, PendingOnly: true})
	require.NoError(t, err)
	require.Empty(t, res.Items)

	require.NoError(t, svc.Raise(ctx, nil, bookingID, CodeIncompleteRentalUnits, "again"))
	res, err = svc.List(ctx, ListParams{BookingID: &bookingID})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
}

func TestDismissAllClosesPendingAlerts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	bookingID := uuid.New()

	require.NoError(t, svc.Raise(ctx, nil, bookingID, CodeIncompleteRentalUnits, "a"))
	require.NoError(t, svc.Raise(ctx, nil, bookingID, CodeOptionExpired, "b"))
	require.NoError(t, svc.DismissAll(ctx, nil, bookingID))

	res, err := svc.List(ctx, ListParams{BookingID: &bookingID})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	for _, a := range res.Items {
		require.Equal(t, enums.AlertStatusDismissed, a.Status)
	}
}

func TestDismissUnknownAlert(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.Dismiss(context.Background(), uuid.New())
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeUnknownObject, ""))
}

func TestListPaginates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Raise(ctx, nil, uuid.New(), CodeOverdueFunding, "due"))
	}

	first, err := svc.List(ctx, ListParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.Cursor)

	second, err := svc.List(ctx, ListParams{Limit: 2, Cursor: first.Cursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	require.Empty(t, second.Cursor)
}
