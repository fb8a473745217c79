// Package catalogtest provides an in-memory catalog and the reference
// scenario used by booking tests.
package catalogtest

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/discope/discope-backend/internal/catalog"
	"github.com/discope/discope-backend/pkg/db/models"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
)

// Catalog is an in-memory catalog.Repository.
type Catalog struct {
	Centers       map[uuid.UUID]*models.Center
	Customers     map[uuid.UUID]*models.Customer
	RateClasses   map[uuid.UUID]*models.RateClass
	Products      map[uuid.UUID]*models.Product
	AgeRanges     []*models.AgeRange
	PackLines     []*models.PackLine
	Prices        []*models.Price
	AutosaleLines []*models.AutosaleLine
	Discounts     []*models.Discount
	RentalUnits   []*models.RentalUnit
	PaymentPlans  []*models.PaymentPlan
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		Centers:     map[uuid.UUID]*models.Center{},
		Customers:   map[uuid.UUID]*models.Customer{},
		RateClasses: map[uuid.UUID]*models.RateClass{},
		Products:    map[uuid.UUID]*models.Product{},
	}
}

var _ catalog.Repository = (*Catalog)(nil)

func (c *Catalog) WithTx(*gorm.DB) catalog.Repository { return c }

func notFound(what string) error {
	return pkgerrors.New(pkgerrors.CodeUnknownObject, what+" not found")
}

func (c *Catalog) FindCenter(_ context.Context, id uuid.UUID) (*models.Center, error) {
	if v, ok := c.Centers[id]; ok {
		return v, nil
	}
	return nil, notFound("center")
}

func (c *Catalog) FindCustomer(_ context.Context, id uuid.UUID) (*models.Customer, error) {
	if v, ok := c.Customers[id]; ok {
		return v, nil
	}
	return nil, notFound("customer")
}

func (c *Catalog) FindRateClass(_ context.Context, id uuid.UUID) (*models.RateClass, error) {
	if v, ok := c.RateClasses[id]; ok {
		return v, nil
	}
	return nil, notFound("rate class")
}

func (c *Catalog) FindProduct(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if v, ok := c.Products[id]; ok {
		return v, nil
	}
	return nil, notFound("product")
}

func (c *Catalog) FindAgeRange(_ context.Context, id uuid.UUID) (*models.AgeRange, error) {
	for _, ar := range c.AgeRanges {
		if ar.ID == id {
			return ar, nil
		}
	}
	return nil, notFound("age range")
}

func (c *Catalog) ListAgeRanges(context.Context) ([]*models.AgeRange, error) {
	var out []*models.AgeRange
	for _, ar := range c.AgeRanges {
		if ar.IsActive {
			out = append(out, ar)
		}
	}
	return out, nil
}

func (c *Catalog) ListPackLines(_ context.Context, packProductID uuid.UUID) ([]*models.PackLine, error) {
	var out []*models.PackLine
	for _, pl := range c.PackLines {
		if pl.ParentProductID == packProductID {
			out = append(out, pl)
		}
	}
	return out, nil
}

func (c *Catalog) ListPrices(_ context.Context, productID, categoryID uuid.UUID) ([]*models.Price, error) {
	var out []*models.Price
	for _, p := range c.Prices {
		if p.ProductID == productID && p.PriceList.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *Catalog) ListAutosaleLines(_ context.Context, categoryID uuid.UUID) ([]*models.AutosaleLine, error) {
	var out []*models.AutosaleLine
	for _, l := range c.AutosaleLines {
		if l.AutosaleList.CategoryID == categoryID && l.AutosaleList.IsActive {
			out = append(out, l)
		}
	}
	return out, nil
}

func (c *Catalog) ListDiscounts(_ context.Context, categoryID uuid.UUID) ([]*models.Discount, error) {
	var out []*models.Discount
	for _, d := range c.Discounts {
		if d.DiscountList.CategoryID == categoryID && d.DiscountList.IsActive {
			out = append(out, d)
		}
	}
	return out, nil
}

func (c *Catalog) ListRentalUnits(_ context.Context, centerID uuid.UUID) ([]*models.RentalUnit, error) {
	var out []*models.RentalUnit
	for _, u := range c.RentalUnits {
		if u.CenterID == centerID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (c *Catalog) FindPaymentPlan(_ context.Context, centerID, rateClassID uuid.UUID) (*models.PaymentPlan, error) {
	var candidates []*models.PaymentPlan
	for _, p := range c.PaymentPlans {
		if (p.CenterID == nil || *p.CenterID == centerID) && (p.RateClassID == nil || *p.RateClassID == rateClassID) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil, notFound("payment plan")
	}
	return catalog.BestPaymentPlan(candidates), nil
}
