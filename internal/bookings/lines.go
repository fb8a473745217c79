package bookings

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/discope/discope-backend/internal/pricing"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
	"github.com/discope/discope-backend/pkg/money"
)

// LineInput carries the editable fields of a line. Nil fields are left untouched.
type LineInput struct {
	ProductID      *uuid.UUID
	Qty            *int
	QtyVars        []int
	NbPers         *int
	UnitPrice      *decimal.Decimal
	VatRate        *decimal.Decimal
	ResetUnitPrice bool
	ResetVatRate   bool
}

func lockedGroup(g *models.BookingLineGroup) error {
	if g.HasPack && g.IsLocked {
		return pkgerrors.New(pkgerrors.CodeNotAllowed, pkgerrors.ReasonLockedGroup)
	}
	return nil
}

// AddLine appends a product to g. The product must have a price for the group.
func (e *Engine) AddLine(ctx context.Context, b *models.Booking, g *models.BookingLineGroup, productID uuid.UUID, in LineInput) (*models.BookingLine, error) {
	if err := lockedGroup(g); err != nil {
		return nil, err
	}
	product, err := e.product(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.CanSell {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidParam, "product_not_sellable")
	}
	l := newLine(b, g, product)
	if err := applyLineInput(l, in); err != nil {
		return nil, err
	}
	g.Lines = append(g.Lines, l)
	if err := e.RefreshGroup(ctx, b, g); err != nil {
		return nil, err
	}
	return l, nil
}

// UpdateLine edits a line of g and refreshes the group.
func (e *Engine) UpdateLine(ctx context.Context, b *models.Booking, g *models.BookingLineGroup, lineID uuid.UUID, in LineInput) (*models.BookingLine, error) {
	if err := lockedGroup(g); err != nil {
		return nil, err
	}
	l := g.FindLine(lineID)
	if l == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnknownObject, "booking line not found")
	}
	if in.ProductID != nil && *in.ProductID != l.ProductID {
		product, err := e.product(ctx, *in.ProductID)
		if err != nil {
			return nil, err
		}
		l.ProductID = product.ID
		l.ProductModelID = product.ProductModelID
		l.Name = product.Name
		l.QtyVars = nil
	}
	if err := applyLineInput(l, in); err != nil {
		return nil, err
	}
	if err := e.RefreshGroup(ctx, b, g); err != nil {
		return nil, err
	}
	return l, nil
}

// DeleteLine removes a line from g.
func (e *Engine) DeleteLine(ctx context.Context, b *models.Booking, g *models.BookingLineGroup, lineID uuid.UUID) error {
	if err := lockedGroup(g); err != nil {
		return err
	}
	idx := -1
	for i, l := range g.Lines {
		if l.ID == lineID {
			idx = i
		}
	}
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeUnknownObject, "booking line not found")
	}
	g.Lines = append(g.Lines[:idx], g.Lines[idx+1:]...)
	kept := g.Adapters[:0]
	for _, a := range g.Adapters {
		if a.LineID == nil || *a.LineID != lineID {
			kept = append(kept, a)
		}
	}
	g.Adapters = kept
	return e.RefreshGroup(ctx, b, g)
}

func applyLineInput(l *models.BookingLine, in LineInput) error {
	if in.Qty != nil {
		if *in.Qty < 0 {
			return negativeValue()
		}
		l.Qty = *in.Qty
	}
	if in.QtyVars != nil {
		l.QtyVars = append([]int(nil), in.QtyVars...)
	}
	if in.NbPers != nil {
		if *in.NbPers < 0 {
			return negativeValue()
		}
		l.NbPers = in.NbPers
	}
	if in.UnitPrice != nil {
		if in.UnitPrice.IsNegative() {
			return negativeValue()
		}
		l.UnitPrice = *in.UnitPrice
		l.HasManualUnitPrice = true
	}
	if in.VatRate != nil {
		if in.VatRate.IsNegative() {
			return negativeValue()
		}
		l.VatRate = *in.VatRate
		l.HasManualVatRate = true
	}
	if in.ResetUnitPrice {
		l.HasManualUnitPrice = false
	}
	if in.ResetVatRate {
		l.HasManualVatRate = false
	}
	return nil
}

func newLine(b *models.Booking, g *models.BookingLineGroup, p *models.Product) *models.BookingLine {
	position := 0
	for _, l := range g.Lines {
		if l.Position > position {
			position = l.Position
		}
	}
	return &models.BookingLine{
		ID:             uuid.New(),
		BookingID:      b.ID,
		GroupID:        g.ID,
		ProductID:      p.ID,
		ProductModelID: p.ProductModelID,
		Name:           p.Name,
		Position:       position + 1,
		Qty:            1,
	}
}

func sortLines(g *models.BookingLineGroup) {
	sort.SliceStable(g.Lines, func(i, j int) bool { return g.Lines[i].Position < g.Lines[j].Position })
}

func (e *Engine) resolve(ctx context.Context, b *models.Booking, g *models.BookingLineGroup, productID uuid.UUID) (*pricing.Resolution, error) {
	center, err := e.center(ctx, b.CenterID)
	if err != nil {
		return nil, err
	}
	return e.prices.Resolve(ctx, pricing.Query{
		ProductID:   productID,
		CategoryID:  center.PriceListCategoryID,
		RateClassID: g.RateClassID,
		Date:        g.DateFrom,
	})
}

func (e *Engine) refreshLines(ctx context.Context, b *models.Booking, g *models.BookingLineGroup) error {
	sortLines(g)
	var first *models.BookingLine
	for _, l := range g.Lines {
		if !l.IsAutosale {
			first = l
			break
		}
	}
	for _, l := range g.Lines {
		if err := e.refreshLine(ctx, b, g, l, l == first); err != nil {
			return err
		}
	}
	return nil
}

// refreshLine recomputes price entry, quantity and amounts of l.
func (e *Engine) refreshLine(ctx context.Context, b *models.Booking, g *models.BookingLineGroup, l *models.BookingLine, firstEligible bool) error {
	product, err := e.product(ctx, l.ProductID)
	if err != nil {
		return err
	}
	model := product.ProductModel
	l.ProductModelID = model.ID
	l.IsAccomodation = model.IsAccomodation
	l.IsMeal = model.IsMeal

	if err := e.refreshLinePrice(ctx, b, g, l); err != nil {
		return err
	}

	repeat := lineRepeat(g, model, l)
	l.Qty = lineQty(g, model, l, repeat)

	discount, freebies, amount := lineAdjustments(g, l, model, firstEligible)
	l.Discount = money.Clamp(discount, money.Zero, money.One)
	l.FreeQty = freebies * repeat
	if l.FreeQty > l.Qty {
		l.FreeQty = l.Qty
	}

	billable := decimal.NewFromInt(int64(l.Qty - l.FreeQty))
	total := money.Round4(l.UnitPrice.Mul(money.One.Sub(l.Discount)).Mul(billable)).Sub(amount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	l.Total = total
	l.Price = money.WithVat(total, l.VatRate)
	return nil
}

func (e *Engine) refreshLinePrice(ctx context.Context, b *models.Booking, g *models.BookingLineGroup, l *models.BookingLine) error {
	fixed := l.HasManualUnitPrice || l.IsPackZeroPrice
	if l.IsPackZeroPrice && !l.HasManualUnitPrice {
		l.UnitPrice = decimal.Zero
	}
	if fixed && l.HasManualVatRate {
		l.IsPriceTBC = false
		return nil
	}
	res, err := e.resolve(ctx, b, g, l.ProductID)
	if err != nil {
		if fixed && pkgerrors.Is(err, pkgerrors.CodeInvalidParam, pkgerrors.ReasonMissingPrice) {
			l.PriceID = nil
			l.IsPriceTBC = false
			return nil
		}
		return err
	}
	l.PriceID = &res.Price.ID
	l.IsPriceTBC = res.IsTBC
	if !fixed {
		l.UnitPrice = res.UnitPrice
	}
	if !l.HasManualVatRate {
		l.VatRate = res.VatRate
	}
	return nil
}

func lineRepeat(g *models.BookingLineGroup, model *models.ProductModel, l *models.BookingLine) int {
	if l.PackOwnDuration != nil {
		return *l.PackOwnDuration
	}
	if !model.IsRepeatable {
		return 1
	}
	if g.Nights < 1 {
		return 1
	}
	return g.Nights
}

func lineQty(g *models.BookingLineGroup, model *models.ProductModel, l *models.BookingLine, repeat int) int {
	if l.PackOwnQty != nil {
		return *l.PackOwnQty
	}
	persons := g.NbPers
	if l.NbPers != nil {
		persons = *l.NbPers
	}
	switch model.QtyAccountingMethod {
	case enums.QtyAccountingPerson:
		if len(l.QtyVars) == 0 {
			return persons * repeat
		}
		l.QtyVars = resize(l.QtyVars, repeat)
		qty := 0
		for _, v := range l.QtyVars {
			if n := persons + v; n > 0 {
				qty += n
			}
		}
		return qty
	case enums.QtyAccountingAccomodation:
		capacity := model.Capacity
		if capacity < 1 {
			capacity = 1
		}
		return (persons + capacity - 1) / capacity * repeat
	default:
		if l.Qty < 1 {
			return 1
		}
		return l.Qty
	}
}

func resize(vars []int, n int) []int {
	if len(vars) >= n {
		return vars[:n]
	}
	return append(vars, make([]int, n-len(vars))...)
}

// lineAdjustments sums the adapters of g applying to l. Automatic adapters
// skip autosale lines; amount adapters without a target hit the first
// eligible line only.
func lineAdjustments(g *models.BookingLineGroup, l *models.BookingLine, model *models.ProductModel, firstEligible bool) (decimal.Decimal, int, decimal.Decimal) {
	discount, amount := decimal.Zero, decimal.Zero
	freebies := 0
	for _, a := range g.Adapters {
		targeted := a.LineID != nil
		if targeted && *a.LineID != l.ID {
			continue
		}
		if !targeted && l.IsAutosale {
			continue
		}
		switch a.Type {
		case enums.AdapterTypePercent:
			discount = discount.Add(a.Value)
		case enums.AdapterTypeFreebie:
			if model.QtyAccountingMethod == enums.QtyAccountingPerson {
				freebies += int(a.Value.IntPart())
			}
		case enums.AdapterTypeAmount:
			if targeted || firstEligible {
				amount = amount.Add(a.Value)
			}
		}
	}
	return discount, freebies, amount
}
