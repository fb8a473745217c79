package catalog

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/discope/discope-backend/internal/repo"
	"github.com/discope/discope-backend/pkg/db/models"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
)

// Repository reads the center configuration the booking engine prices against.
// Missing rows are reported as UNKNOWN_OBJECT.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindCenter(ctx context.Context, id uuid.UUID) (*models.Center, error)
	FindCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindRateClass(ctx context.Context, id uuid.UUID) (*models.RateClass, error)
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindAgeRange(ctx context.Context, id uuid.UUID) (*models.AgeRange, error)
	ListAgeRanges(ctx context.Context) ([]*models.AgeRange, error)
	ListPackLines(ctx context.Context, packProductID uuid.UUID) ([]*models.PackLine, error)
	ListPrices(ctx context.Context, productID, categoryID uuid.UUID) ([]*models.Price, error)
	ListAutosaleLines(ctx context.Context, categoryID uuid.UUID) ([]*models.AutosaleLine, error)
	ListDiscounts(ctx context.Context, categoryID uuid.UUID) ([]*models.Discount, error)
	ListRentalUnits(ctx context.Context, centerID uuid.UUID) ([]*models.RentalUnit, error)
	FindPaymentPlan(ctx context.Context, centerID, rateClassID uuid.UUID) (*models.PaymentPlan, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) FindCenter(ctx context.Context, id uuid.UUID) (*models.Center, error) {
	var center models.Center
	q := r.DB(ctx).Preload("Office").Where("id = ?", id)
	if err := r.First(ctx, &center, "center", q); err != nil {
		return nil, err
	}
	return &center, nil
}

func (r *repository) FindCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.First(ctx, &customer, "customer", r.DB(ctx).Where("id = ?", id)); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) FindRateClass(ctx context.Context, id uuid.UUID) (*models.RateClass, error) {
	var rc models.RateClass
	if err := r.First(ctx, &rc, "rate class", r.DB(ctx).Where("id = ?", id)); err != nil {
		return nil, err
	}
	return &rc, nil
}

func (r *repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	q := r.DB(ctx).Preload("ProductModel").Where("id = ?", id)
	if err := r.First(ctx, &product, "product", q); err != nil {
		return nil, err
	}
	if product.ProductModel == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidConfig, "product without model")
	}
	return &product, nil
}

func (r *repository) FindAgeRange(ctx context.Context, id uuid.UUID) (*models.AgeRange, error) {
	var ar models.AgeRange
	if err := r.First(ctx, &ar, "age range", r.DB(ctx).Where("id = ?", id)); err != nil {
		return nil, err
	}
	return &ar, nil
}

func (r *repository) ListAgeRanges(ctx context.Context) ([]*models.AgeRange, error) {
	var ranges []*models.AgeRange
	if err := r.DB(ctx).Where("is_active = ?", true).Order("position ASC").Find(&ranges).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list age ranges")
	}
	return ranges, nil
}

func (r *repository) ListPackLines(ctx context.Context, packProductID uuid.UUID) ([]*models.PackLine, error) {
	var lines []*models.PackLine
	if err := r.DB(ctx).
		Preload("ChildProduct.ProductModel").
		Where("parent_product_id = ?", packProductID).
		Order("position ASC").
		Find(&lines).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pack lines")
	}
	return lines, nil
}

func (r *repository) ListPrices(ctx context.Context, productID, categoryID uuid.UUID) ([]*models.Price, error) {
	var prices []*models.Price
	if err := r.DB(ctx).
		Preload("PriceList").
		Joins("JOIN price_lists ON price_lists.id = prices.price_list_id").
		Where("prices.product_id = ? AND price_lists.category_id = ?", productID, categoryID).
		Find(&prices).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list prices")
	}
	return prices, nil
}

func (r *repository) ListAutosaleLines(ctx context.Context, categoryID uuid.UUID) ([]*models.AutosaleLine, error) {
	var lines []*models.AutosaleLine
	if err := r.DB(ctx).
		Preload("AutosaleList").
		Joins("JOIN autosale_lists ON autosale_lists.id = autosale_lines.autosale_list_id").
		Where("autosale_lists.category_id = ? AND autosale_lists.is_active = ?", categoryID, true).
		Find(&lines).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list autosale lines")
	}
	return lines, nil
}

func (r *repository) ListDiscounts(ctx context.Context, categoryID uuid.UUID) ([]*models.Discount, error) {
	var discounts []*models.Discount
	if err := r.DB(ctx).
		Preload("DiscountList").
		Joins("JOIN discount_lists ON discount_lists.id = discounts.discount_list_id").
		Where("discount_lists.category_id = ? AND discount_lists.is_active = ?", categoryID, true).
		Find(&discounts).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list discounts")
	}
	return discounts, nil
}

func (r *repository) ListRentalUnits(ctx context.Context, centerID uuid.UUID) ([]*models.RentalUnit, error) {
	var units []*models.RentalUnit
	if err := r.DB(ctx).Where("center_id = ?", centerID).Order("capacity ASC, name ASC").Find(&units).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list rental units")
	}
	return units, nil
}

// FindPaymentPlan picks the most specific plan: center and rate class, then
// center only, rate class only, and finally a generic plan.
func (r *repository) FindPaymentPlan(ctx context.Context, centerID, rateClassID uuid.UUID) (*models.PaymentPlan, error) {
	var plans []*models.PaymentPlan
	if err := r.DB(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("(center_id = ? OR center_id IS NULL) AND (rate_class_id = ? OR rate_class_id IS NULL)", centerID, rateClassID).
		Find(&plans).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payment plans")
	}
	if len(plans) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnknownObject, "payment plan not found")
	}
	return BestPaymentPlan(plans), nil
}

// BestPaymentPlan ranks plans by specificity.
func BestPaymentPlan(plans []*models.PaymentPlan) *models.PaymentPlan {
	score := func(p *models.PaymentPlan) int {
		s := 0
		if p.CenterID != nil {
			s += 2
		}
		if p.RateClassID != nil {
			s++
		}
		return s
	}
	sorted := append([]*models.PaymentPlan(nil), plans...)
	sort.SliceStable(sorted, func(i, j int) bool { return score(sorted[i]) > score(sorted[j]) })
	return sorted[0]
}
