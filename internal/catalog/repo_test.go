package catalog_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/discope/discope-backend/internal/catalog"
	"github.com/discope/discope-backend/internal/catalog/catalogtest"
	"github.com/discope/discope-backend/internal/testdb"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
)

func seeded(t *testing.T) (catalog.Repository, *catalogtest.Scenario) {
	t.Helper()
	db := testdb.Open(t)
	s := catalogtest.NewScenario()
	require.NoError(t, s.Seed(db))
	return catalog.NewRepository(db), s
}

func TestRepositoryFindCenterLoadsOffice(t *testing.T) {
	repo, s := seeded(t)
	center, err := repo.FindCenter(context.Background(), s.Center.ID)
	require.NoError(t, err)
	require.True(t, center.AutoAssignsRentalUnits())
	require.True(t, center.HasCitytax)
}

func TestRepositoryUnknownObject(t *testing.T) {
	repo, _ := seeded(t)
	_, err := repo.FindProduct(context.Background(), uuid.New())
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeUnknownObject, ""))
}

func TestRepositoryFindProductLoadsModel(t *testing.T) {
	repo, s := seeded(t)
	product, err := repo.FindProduct(context.Background(), s.SchoolPack.ID)
	require.NoError(t, err)
	require.True(t, product.ProductModel.IsPack)
	require.Equal(t, 2, product.ProductModel.Duration)
}

func TestRepositoryListPackLinesOrdered(t *testing.T) {
	repo, s := seeded(t)
	lines, err := repo.ListPackLines(context.Background(), s.SchoolPack.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.Equal(t, s.SchoolNight.ID, lines[0].ChildProductID)
	require.NotNil(t, lines[0].ChildProduct.ProductModel)
}

func TestRepositoryListPricesByCategory(t *testing.T) {
	repo, s := seeded(t)
	prices, err := repo.ListPrices(context.Background(), s.Night.ID, s.CategoryID)
	require.NoError(t, err)
	require.Len(t, prices, 2)
	for _, p := range prices {
		require.NotNil(t, p.PriceList)
	}

	none, err := repo.ListPrices(context.Background(), s.Night.ID, uuid.New())
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestRepositoryListAutosaleAndDiscounts(t *testing.T) {
	repo, s := seeded(t)
	lines, err := repo.ListAutosaleLines(context.Background(), s.CategoryID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, s.Citytax.ID, lines[0].ProductID)

	discounts, err := repo.ListDiscounts(context.Background(), s.CategoryID)
	require.NoError(t, err)
	require.Len(t, discounts, 1)
	require.NotNil(t, discounts[0].DiscountList)
}

func TestRepositoryFindPaymentPlanOrdersSteps(t *testing.T) {
	repo, s := seeded(t)
	plan, err := repo.FindPaymentPlan(context.Background(), s.Center.ID, s.GeneralPublic.ID)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 2)
	require.Equal(t, "Acompte", plan.Steps[0].Name)
}

func TestRepositoryListAgeRangesActiveOnly(t *testing.T) {
	repo, s := seeded(t)
	ranges, err := repo.ListAgeRanges(context.Background())
	require.NoError(t, err)
	require.Len(t, ranges, 3)
	require.Equal(t, s.Adults.ID, ranges[0].ID)
}
