package pricing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/discope/discope-backend/pkg/dates"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
)

// PriceSource lists the prices of a product in the lists of a category.
type PriceSource interface {
	ListPrices(ctx context.Context, productID, categoryID uuid.UUID) ([]*models.Price, error)
}

// Query identifies the price to look up.
type Query struct {
	ProductID   uuid.UUID
	CategoryID  uuid.UUID
	RateClassID uuid.UUID
	Date        time.Time
}

// Resolution is the applicable price entry. IsTBC is set when it comes from an
// unpublished list.
type Resolution struct {
	Price     *models.Price
	UnitPrice decimal.Decimal
	VatRate   decimal.Decimal
	IsTBC     bool
}

// Resolver picks the applicable price of a product at a date.
type Resolver struct {
	source PriceSource
}

// NewResolver builds a resolver over the provided price source.
func NewResolver(source PriceSource) (*Resolver, error) {
	if source == nil {
		return nil, fmt.Errorf("price source required")
	}
	return &Resolver{source: source}, nil
}

// Resolve returns the most specific price entry of q. It fails with
// INVALID_PARAM missing_price when no list carries the product at that date.
func (r *Resolver) Resolve(ctx context.Context, q Query) (*Resolution, error) {
	prices, err := r.source.ListPrices(ctx, q.ProductID, q.CategoryID)
	if err != nil {
		return nil, err
	}
	best, tbc := Select(prices, q)
	if best == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonMissingPrice).
			WithDetails(map[string]any{"product_id": q.ProductID, "date": dates.Day(q.Date).Format(dates.Layout)})
	}
	return &Resolution{Price: best, UnitPrice: best.Price, VatRate: best.VatRate, IsTBC: tbc}, nil
}

// Select ranks candidate prices. Published lists win over draft and pending
// ones; within a tier a list bound to the rate class beats a generic list,
// then the narrowest validity window, then the most recent start.
func Select(prices []*models.Price, q Query) (*models.Price, bool) {
	var published, unpublished []*models.Price
	for _, p := range prices {
		list := p.PriceList
		if list == nil || p.ProductID != q.ProductID || list.CategoryID != q.CategoryID {
			continue
		}
		if list.RateClassID != nil && *list.RateClassID != q.RateClassID {
			continue
		}
		if !dates.Contains(list.DateFrom, list.DateTo, q.Date) {
			continue
		}
		switch list.Status {
		case enums.PriceListStatusPublished:
			published = append(published, p)
		case enums.PriceListStatusDraft, enums.PriceListStatusPending:
			unpublished = append(unpublished, p)
		}
	}
	if len(published) > 0 {
		return rank(published), false
	}
	if len(unpublished) > 0 {
		return rank(unpublished), true
	}
	return nil, false
}

func rank(prices []*models.Price) *models.Price {
	sort.SliceStable(prices, func(i, j int) bool {
		a, b := prices[i].PriceList, prices[j].PriceList
		if (a.RateClassID != nil) != (b.RateClassID != nil) {
			return a.RateClassID != nil
		}
		wa, wb := a.DateTo.Sub(a.DateFrom), b.DateTo.Sub(b.DateFrom)
		if wa != wb {
			return wa < wb
		}
		return a.DateFrom.After(b.DateFrom)
	})
	return prices[0]
}
