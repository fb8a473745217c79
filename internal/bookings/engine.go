package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/discope/discope-backend/internal/catalog"
	"github.com/discope/discope-backend/internal/pricing"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/metrics"
)

// Occupancy reports rental units already consumed by other bookings.
type Occupancy interface {
	BusyUnits(ctx context.Context, centerID uuid.UUID, from, to time.Time, excludeBookingID uuid.UUID) (map[uuid.UUID]bool, error)
}

// Options tunes the defaults applied by the cascade.
type Options struct {
	DefaultTimeFrom    string
	DefaultTimeTo      string
	DefaultBookingType string
	Metrics            *metrics.BookingMetrics
}

// Report collects what a refresh could not settle by itself.
type Report struct {
	// IncompleteGroups lists groups whose accommodation is not fully assigned.
	IncompleteGroups []uuid.UUID
}

// Engine recomputes a loaded booking aggregate in place. It is bound to one
// unit of work and memoizes catalog reads.
type Engine struct {
	catalog   catalog.Repository
	prices    *pricing.Resolver
	occupancy Occupancy
	opts      Options

	products  map[uuid.UUID]*models.Product
	centers   map[uuid.UUID]*models.Center
	ageRanges []*models.AgeRange
	report    Report
}

// NewEngine wires an engine over the catalog and occupancy readers.
func NewEngine(cat catalog.Repository, occupancy Occupancy, opts Options) (*Engine, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if occupancy == nil {
		return nil, fmt.Errorf("occupancy reader required")
	}
	resolver, err := pricing.NewResolver(cat)
	if err != nil {
		return nil, err
	}
	if opts.DefaultTimeFrom == "" {
		opts.DefaultTimeFrom = "14:00"
	}
	if opts.DefaultTimeTo == "" {
		opts.DefaultTimeTo = "10:00"
	}
	if opts.DefaultBookingType == "" {
		opts.DefaultBookingType = "TP"
	}
	return &Engine{
		catalog:   cat,
		prices:    resolver,
		occupancy: occupancy,
		opts:      opts,
		products:  map[uuid.UUID]*models.Product{},
		centers:   map[uuid.UUID]*models.Center{},
	}, nil
}

// Report returns what the last refreshes left unsettled.
func (e *Engine) Report() Report {
	return e.report
}

// Refresh runs the group cascade on every group, then the booking cascade.
func (e *Engine) Refresh(ctx context.Context, b *models.Booking) (err error) {
	start := time.Now()
	defer func() { e.opts.Metrics.ObserveRefresh("booking", time.Since(start), err) }()

	e.report = Report{}
	sortGroups(b)
	for _, g := range b.Groups {
		if g.IsAutosale {
			continue
		}
		if err := e.refreshGroup(ctx, b, g); err != nil {
			return err
		}
	}
	return e.refreshBooking(ctx, b)
}

// RefreshGroup runs the group cascade on g, then the booking cascade.
func (e *Engine) RefreshGroup(ctx context.Context, b *models.Booking, g *models.BookingLineGroup) (err error) {
	start := time.Now()
	defer func() { e.opts.Metrics.ObserveRefresh("group", time.Since(start), err) }()

	e.report = Report{}
	if err := e.refreshGroup(ctx, b, g); err != nil {
		return err
	}
	return e.refreshBooking(ctx, b)
}

func (e *Engine) product(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := e.products[id]; ok {
		return p, nil
	}
	p, err := e.catalog.FindProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	e.products[id] = p
	return p, nil
}

func (e *Engine) center(ctx context.Context, id uuid.UUID) (*models.Center, error) {
	if c, ok := e.centers[id]; ok {
		return c, nil
	}
	c, err := e.catalog.FindCenter(ctx, id)
	if err != nil {
		return nil, err
	}
	e.centers[id] = c
	return c, nil
}

func (e *Engine) activeAgeRanges(ctx context.Context) ([]*models.AgeRange, error) {
	if e.ageRanges != nil {
		return e.ageRanges, nil
	}
	ranges, err := e.catalog.ListAgeRanges(ctx)
	if err != nil {
		return nil, err
	}
	e.ageRanges = ranges
	return ranges, nil
}

func (e *Engine) ageRange(ctx context.Context, id uuid.UUID) (*models.AgeRange, error) {
	ranges, err := e.activeAgeRanges(ctx)
	if err != nil {
		return nil, err
	}
	for _, ar := range ranges {
		if ar.ID == id {
			return ar, nil
		}
	}
	return e.catalog.FindAgeRange(ctx, id)
}
