package bookings

import (
	"context"

	"github.com/google/uuid"

	"github.com/discope/discope-backend/pkg/dates"
	"github.com/discope/discope-backend/pkg/db/models"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
)

// SetPack binds a pack product to g and expands its content.
func (e *Engine) SetPack(ctx context.Context, b *models.Booking, g *models.BookingLineGroup, packProductID uuid.UUID) error {
	pack, err := e.product(ctx, packProductID)
	if err != nil {
		return err
	}
	model := pack.ProductModel
	if !model.IsPack {
		return pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonNotAPack)
	}
	g.HasPack = true
	g.PackID = &pack.ID
	g.IsLocked = model.IsLocked
	if model.Capacity > g.NbPers {
		g.NbPers = model.Capacity
	}
	if model.HasDuration {
		g.DateTo = dates.AddDays(g.DateFrom, model.Duration)
	}
	if pack.AgeRangeID != nil {
		replaceAgeRanges(b, g, *pack.AgeRangeID)
	}
	return e.RefreshGroup(ctx, b, g)
}

// RemovePack drops the pack derived lines and unlocks g.
func (e *Engine) RemovePack(ctx context.Context, b *models.Booking, g *models.BookingLineGroup) error {
	g.HasPack = false
	g.PackID = nil
	g.IsLocked = false
	g.PriceID = nil
	kept := g.Lines[:0]
	for _, l := range g.Lines {
		if !l.IsFromPack {
			kept = append(kept, l)
		}
	}
	g.Lines = kept
	return e.RefreshGroup(ctx, b, g)
}

type packItem struct {
	product     *models.Product
	ownQty      *int
	ownDuration *int
	zeroPrice   bool
}

// syncPack reconciles the pack derived lines of g with the pack content, by
// product. Running it twice yields the same lines.
func (e *Engine) syncPack(ctx context.Context, b *models.Booking, g *models.BookingLineGroup) error {
	if !g.HasPack || g.PackID == nil {
		return nil
	}
	pack, err := e.product(ctx, *g.PackID)
	if err != nil {
		return err
	}
	packLines, err := e.catalog.ListPackLines(ctx, pack.ID)
	if err != nil {
		return err
	}

	ownPrice := pack.ProductModel.HasOwnPrice
	var items []packItem
	if ownPrice {
		items = append(items, packItem{product: pack})
	}
	for _, pl := range packLines {
		child := pl.ChildProduct
		if child == nil || child.ProductModel == nil {
			if child, err = e.product(ctx, pl.ChildProductID); err != nil {
				return err
			}
		} else {
			e.products[child.ID] = child
		}
		item := packItem{product: child, zeroPrice: ownPrice}
		if pl.HasOwnQty {
			item.ownQty = intPtr(pl.OwnQty)
		}
		if pl.HasOwnDuration {
			item.ownDuration = intPtr(pl.OwnDuration)
		}
		items = append(items, item)
	}

	existing := map[uuid.UUID]*models.BookingLine{}
	for _, l := range g.Lines {
		if l.IsFromPack {
			existing[l.ProductID] = l
		}
	}
	wanted := map[uuid.UUID]bool{}
	for _, item := range items {
		if wanted[item.product.ID] {
			continue
		}
		wanted[item.product.ID] = true
		l, ok := existing[item.product.ID]
		if !ok {
			l = newLine(b, g, item.product)
			l.IsFromPack = true
			g.Lines = append(g.Lines, l)
		}
		l.PackOwnQty = item.ownQty
		l.PackOwnDuration = item.ownDuration
		l.IsPackZeroPrice = item.zeroPrice
	}

	kept := g.Lines[:0]
	for _, l := range g.Lines {
		if !l.IsFromPack || wanted[l.ProductID] {
			kept = append(kept, l)
		}
	}
	g.Lines = kept
	return nil
}

// refreshGroupPriceID binds the group to the price of a pack sold at its own price.
func (e *Engine) refreshGroupPriceID(ctx context.Context, b *models.Booking, g *models.BookingLineGroup) error {
	g.PriceID = nil
	if !g.HasPack || g.PackID == nil {
		return nil
	}
	pack, err := e.product(ctx, *g.PackID)
	if err != nil {
		return err
	}
	if !pack.ProductModel.HasOwnPrice {
		return nil
	}
	res, err := e.resolve(ctx, b, g, pack.ID)
	if err != nil {
		return err
	}
	g.PriceID = &res.Price.ID
	return nil
}

func intPtr(v int) *int { return &v }
