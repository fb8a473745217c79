package bookings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/discope/discope-backend/internal/alerts"
	"github.com/discope/discope-backend/internal/catalog"
	"github.com/discope/discope-backend/internal/consumptions"
	"github.com/discope/discope-backend/pkg/dates"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type reserver interface {
	Reserve(ctx context.Context, tx *gorm.DB, b *models.Booking) error
}

type alertRaiser interface {
	Raise(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID, code, message string) error
	Resolve(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID, code string) error
}

// Service exposes the transactional booking operations. Every mutation loads
// the aggregate, applies the change, runs the refresh cascade and saves.
type Service interface {
	CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	UpdateBooking(ctx context.Context, id uuid.UUID, in UpdateBookingInput) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id uuid.UUID) error
	RefreshBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)

	CreateGroup(ctx context.Context, bookingID uuid.UUID, in GroupInput) (*models.Booking, error)
	UpdateGroup(ctx context.Context, bookingID, groupID uuid.UUID, in GroupInput) (*models.Booking, error)
	DeleteGroup(ctx context.Context, bookingID, groupID uuid.UUID) (*models.Booking, error)
	SetPack(ctx context.Context, bookingID, groupID, packProductID uuid.UUID) (*models.Booking, error)
	RemovePack(ctx context.Context, bookingID, groupID uuid.UUID) (*models.Booking, error)
	SetAgeRange(ctx context.Context, bookingID, groupID, ageRangeID uuid.UUID, qty int) (*models.Booking, error)
	RemoveAgeRange(ctx context.Context, bookingID, groupID, ageRangeID uuid.UUID) (*models.Booking, error)

	AddLine(ctx context.Context, bookingID, groupID, productID uuid.UUID, in LineInput) (*models.Booking, error)
	UpdateLine(ctx context.Context, bookingID, groupID, lineID uuid.UUID, in LineInput) (*models.Booking, error)
	DeleteLine(ctx context.Context, bookingID, groupID, lineID uuid.UUID) (*models.Booking, error)
	AddAdapter(ctx context.Context, bookingID, groupID uuid.UUID, in AdapterInput) (*models.Booking, error)
	RemoveAdapter(ctx context.Context, bookingID, groupID, adapterID uuid.UUID) (*models.Booking, error)

	AssignRentalUnit(ctx context.Context, bookingID, groupID, spmID, rentalUnitID uuid.UUID, qty int) (*models.Booking, error)
	RemoveRentalUnitAssignment(ctx context.Context, bookingID, groupID, assignmentID uuid.UUID) (*models.Booking, error)
	SetMealPreference(ctx context.Context, bookingID, groupID uuid.UUID, pref enums.MealPreferenceType, qty int) (*models.Booking, error)
	SetMealSelfProvided(ctx context.Context, bookingID, groupID, mealID uuid.UUID, selfProvided bool) (*models.Booking, error)
}

// CreateBookingInput carries the header of a new booking.
type CreateBookingInput struct {
	CenterID    uuid.UUID
	CustomerID  uuid.UUID
	Description *string
	DateFrom    time.Time
	DateTo      time.Time
	Contacts    []ContactInput
}

// UpdateBookingInput edits the booking header. Nil fields are left untouched;
// a non-nil Contacts replaces the contact list.
type UpdateBookingInput struct {
	Description *string
	Contacts    *[]ContactInput
}

// ContactInput describes a booking contact.
type ContactInput struct {
	Name  string
	Email *string
	Phone *string
	Role  string
}

type service struct {
	tx           txRunner
	repo         Repository
	catalog      catalog.Repository
	occupancy    consumptions.Repository
	consumptions reserver
	alerts       alertRaiser
	opts         Options
	now          func() time.Time
}

// NewService builds the booking service.
func NewService(
	tx txRunner,
	repo Repository,
	cat catalog.Repository,
	occupancy consumptions.Repository,
	consumptionSvc reserver,
	alertSvc alertRaiser,
	opts Options,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("booking repository required")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if occupancy == nil {
		return nil, fmt.Errorf("occupancy repository required")
	}
	if consumptionSvc == nil {
		return nil, fmt.Errorf("consumption service required")
	}
	if alertSvc == nil {
		return nil, fmt.Errorf("alert service required")
	}
	return &service{
		tx:           tx,
		repo:         repo,
		catalog:      cat,
		occupancy:    occupancy,
		consumptions: consumptionSvc,
		alerts:       alertSvc,
		opts:         opts,
		now:          time.Now,
	}, nil
}

// NewTxEngine builds an engine reading the catalog and occupancy inside tx.
func NewTxEngine(tx *gorm.DB, cat catalog.Repository, occupancy consumptions.Repository, opts Options) (*Engine, error) {
	return NewEngine(cat.WithTx(tx), occupancy.WithTx(tx), opts)
}

func (s *service) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	if dates.Nights(in.DateFrom, in.DateTo) < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonInvalidDateRange)
	}
	var out *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cat := s.catalog.WithTx(tx)
		if _, err := cat.FindCenter(ctx, in.CenterID); err != nil {
			return err
		}
		if _, err := cat.FindCustomer(ctx, in.CustomerID); err != nil {
			return err
		}
		repo := s.repo.WithTx(tx)
		number, err := repo.NextNumber(ctx, s.now())
		if err != nil {
			return err
		}
		b := &models.Booking{
			ID:          uuid.New(),
			Number:      number,
			CenterID:    in.CenterID,
			CustomerID:  in.CustomerID,
			Description: in.Description,
			Status:      enums.BookingStatusQuote,
			DateFrom:    dates.Day(in.DateFrom),
			DateTo:      dates.Day(in.DateTo),
		}
		b.Contacts = buildContacts(b.ID, in.Contacts)
		engine, err := NewTxEngine(tx, s.catalog, s.occupancy, s.opts)
		if err != nil {
			return err
		}
		if err := engine.Refresh(ctx, b); err != nil {
			return err
		}
		if err := repo.Save(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.repo.Load(ctx, id)
}

func (s *service) UpdateBooking(ctx context.Context, id uuid.UUID, in UpdateBookingInput) (*models.Booking, error) {
	return s.mutate(ctx, id, func(ctx context.Context, e *Engine, b *models.Booking) error {
		if err := editable(b); err != nil {
			return err
		}
		if in.Description != nil {
			b.Description = in.Description
		}
		if in.Contacts != nil {
			b.Contacts = buildContacts(b.ID, *in.Contacts)
		}
		return nil
	})
}

// DeleteBooking removes a booking still at the quote stage.
func (s *service) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		b, err := repo.FindHeader(ctx, id)
		if err != nil {
			return err
		}
		if b.Status != enums.BookingStatusQuote {
			return pkgerrors.New(pkgerrors.CodeNotAllowed, pkgerrors.ReasonNonRemovableBooking)
		}
		return repo.Delete(ctx, id)
	})
}

func (s *service) RefreshBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.mutate(ctx, id, func(ctx context.Context, e *Engine, b *models.Booking) error {
		return e.Refresh(ctx, b)
	})
}

func (s *service) CreateGroup(ctx context.Context, bookingID uuid.UUID, in GroupInput) (*models.Booking, error) {
	return s.mutate(ctx, bookingID, func(ctx context.Context, e *Engine, b *models.Booking) error {
		if err := editable(b); err != nil {
			return err
		}
		extra := in.IsExtra != nil && *in.IsExtra
		if b.Status.IsBeyondQuote() && !extra {
			return pkgerrors.New(pkgerrors.CodeNotAllowed, pkgerrors.MsgNonQuoteServices)
		}
		_, err := e.AddGroup(ctx, b, in)
		return err
	})
}

func (s *service) UpdateGroup(ctx context.Context, bookingID, groupID uuid.UUID, in GroupInput) (*models.Booking, error) {
	return s.mutateGroup(ctx, bookingID, groupID, servicesGuard, func(ctx context.Context, e *Engine, b *models.Booking, g *models.BookingLineGroup) error {
		if in.IsExtra != nil && !*in.IsExtra {
			if b.IsCancelled {
				return pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonIncompatibleStatus)
			}
			if b.Status.IsBeyondQuote() {
				return pkgerrors.New(pkgerrors.CodeNotAllowed, pkgerrors.MsgNonQuoteServices)
			}
		}
		return e.UpdateGroup(ctx, b, g, in)
	})
}

func (s *service) DeleteGroup(ctx context.Context, bookingID, groupID uuid.UUID) (*models.Booking, error) {
	return s.mutateGroup(ctx, bookingID, groupID, servicesGuard, func(ctx context.Context, e *Engine, b *models.Booking, g *models.BookingLineGroup) error {
		if g.IsAutosale {
			return pkgerrors.New(pkgerrors.CodeNotAllowed, "autosale_group")
		}
		return e.RemoveGroup(ctx, b, g.ID)
	})
}

func (s *service) SetPack(ctx context.Context, bookingID, groupID, packProductID uuid.UUID) (*models.Booking, error) {
	return s.mutateGroup(ctx, bookingID, groupID, servicesGuard, func(ctx context.Context, e *Engine, b *models.Booking, g *models.BookingLineGroup) error {
		return e.SetPack(ctx, b, g, packProductID)
	})
}

func (s *service) RemovePack(ctx context.Context, bookingID, groupID uuid.UUID) (*models.Booking, error) {
	return s.mutateGroup(ctx, bookingID, groupID, servicesGuard, func(ctx context.Context, e *Engine, b *models.Booking, g *models.BookingLineGroup) error {
		return e.RemovePack(ctx, b, g)
	})
}

func (s *service) SetAgeRange(ctx context.Context, bookingID, groupID, ageRangeID uuid.UUID, qty int) (*models.Booking, error) {
	return s.mutateGroup(ctx, bookingID, groupID, servicesGuard, func(ctx context.Context, e *Engine, b *models.Booking, g *models.BookingLineGroup) error {
		return e.SetAgeRangeQty(ctx, b, g, ageRangeID, qty)
	})
}

func (s *service) RemoveAgeRange(ctx context.Context, bookingID, groupID, ageRangeID uuid.UUID) (*models.Booking, error) {
	return s.mutateGroup(ctx, bookingID, groupID, servicesGuard, func(ctx context.Context, e *Engine, b *models.Booking, g *models.BookingLineGroup) error {
		return e.RemoveAgeRange(ctx, b, g, ageRangeID)
	})
}

func (s *service) AddLine(ctx context.Context, bookingID, groupID, productID uuid.UUID, in LineInput) (*models.Booking, error) {
	return s.mutateGroup(ctx, bookingID, groupID, linesGuard, func(ctx context.Context, e *Engine, b *models.Booking, g *models.BookingLineGroup) error {
		_, err := e.AddLine(ctx, b, g, productID, in)
		return err
	})
}

func (s *service) UpdateLine(ctx context.Context, bookingID, groupID, lineID uuid.UUID, in LineInput) (*models.Booking, error) {
	return s.mutateGroup(ctx, bookingID, groupID, linesGuard, func(ctx context.Context, e *Engine, b *models.Booking, g *models.BookingLineGroup) error {
		_, err := e.UpdateLine(ctx, b, g, lineID, in)
		return err
	})
}

func (s *service) DeleteLine(ctx context.Context, bookingID, groupID, lineID uuid.UUID) (*models.Booking, error) {
	return s.mutateGroup(ctx, bookingID, groupID, linesGuard, func(ctx context.Context, e *Engine, b *models.Booking, g *models.BookingLineGroup) error {
		return e.DeleteLine(ctx, b, g, lineID)
	})
}

func (s *service) AddAdapter(ctx context.Context, bookingID, groupID uuid.UUID, in AdapterInput) (*models.Booking, error) {
	return s.mutateGroup(ctx, bookingID, groupID, linesGuard, func(ctx context.Context, e *Engine, b *models.Booking, g *models.BookingLineGroup) error {
		_, err := e.AddManualAdapter(ctx, b, g, in)
		return err
	})
}

func (s *service) RemoveAdapter(ctx context.Context, bookingID, groupID, adapterID uuid.UUID) (*models.Booking, error) {
	return s.mutateGroup(ctx, bookingID, groupID, linesGuard, func(ctx context.Context, e *Engine, b *models.Booking, g *models.BookingLineGroup) error {
		return e.RemoveAdapter(ctx, b, g, adapterID)
	})
}

func (s *service) AssignRentalUnit(ctx context.Context, bookingID, groupID, spmID, rentalUnitID uuid.UUID, qty int) (*models.Booking, error) {
	return s.mutateGroup(ctx, bookingID, groupID, noGuard, func(ctx context.Context, e *Engine, b *models.Booking, g *models.BookingLineGroup) error {
		_, err := e.AssignRentalUnit(ctx, b, g, spmID, rentalUnitID, qty)
		return err
	})
}

func (s *service) RemoveRentalUnitAssignment(ctx context.Context, bookingID, groupID, assignmentID uuid.UUID) (*models.Booking, error) {
	return s.mutateGroup(ctx, bookingID, groupID, noGuard, func(ctx context.Context, e *Engine, b *models.Booking, g *models.BookingLineGroup) error {
		return e.RemoveRentalUnitAssignment(ctx, b, g, assignmentID)
	})
}

func (s *service) SetMealPreference(ctx context.Context, bookingID, groupID uuid.UUID, pref enums.MealPreferenceType, qty int) (*models.Booking, error) {
	return s.mutateGroup(ctx, bookingID, groupID, noGuard, func(ctx context.Context, e *Engine, b *models.Booking, g *models.BookingLineGroup) error {
		return e.SetMealPreference(ctx, b, g, pref, qty)
	})
}

func (s *service) SetMealSelfProvided(ctx context.Context, bookingID, groupID, mealID uuid.UUID, selfProvided bool) (*models.Booking, error) {
	return s.mutateGroup(ctx, bookingID, groupID, noGuard, func(ctx context.Context, e *Engine, b *models.Booking, g *models.BookingLineGroup) error {
		return e.SetMealSelfProvided(ctx, b, g, mealID, selfProvided)
	})
}

type guard int

const (
	noGuard guard = iota
	servicesGuard
	linesGuard
)

// editable rejects changes on bookings that are cancelled, archived or
// already past the stay.
func editable(b *models.Booking) error {
	if b.IsCancelled {
		return pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonIncompatibleStatus)
	}
	if b.Status == enums.BookingStatusCheckedOut {
		return pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonIncompatibleStatus)
	}
	return closed(b)
}

// closed rejects bookings that were invoiced, settled or archived.
func closed(b *models.Booking) error {
	if b.ArchivedAt != nil || b.Status == enums.BookingStatusInvoiced || b.Status.IsBalance() {
		return pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonIncompatibleStatus)
	}
	return nil
}

// check lets extra groups of a cancelled booking take lines and services
// until the booking is invoiced, so cancellation fees can be charged.
func (k guard) check(b *models.Booking, g *models.BookingLineGroup) error {
	if k != noGuard && b.IsCancelled && g.IsExtra {
		return closed(b)
	}
	if err := editable(b); err != nil {
		return err
	}
	if !b.Status.IsBeyondQuote() || g.IsExtra {
		return nil
	}
	switch k {
	case servicesGuard:
		return pkgerrors.New(pkgerrors.CodeNotAllowed, pkgerrors.MsgNonQuoteServices)
	case linesGuard:
		return pkgerrors.New(pkgerrors.CodeNotAllowed, pkgerrors.MsgNonQuoteLines)
	}
	return nil
}

func (s *service) mutateGroup(ctx context.Context, bookingID, groupID uuid.UUID, k guard, fn func(context.Context, *Engine, *models.Booking, *models.BookingLineGroup) error) (*models.Booking, error) {
	return s.mutate(ctx, bookingID, func(ctx context.Context, e *Engine, b *models.Booking) error {
		g := b.FindGroup(groupID)
		if g == nil {
			return pkgerrors.New(pkgerrors.CodeUnknownObject, "booking line group not found")
		}
		if err := k.check(b, g); err != nil {
			return err
		}
		return fn(ctx, e, b, g)
	})
}

// mutate runs fn on the loaded aggregate inside one transaction, then saves
// the booking, re-reserves its rental units when they are held and syncs the
// assignment alert.
func (s *service) mutate(ctx context.Context, bookingID uuid.UUID, fn func(context.Context, *Engine, *models.Booking) error) (*models.Booking, error) {
	var out *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		b, err := repo.Load(ctx, bookingID)
		if err != nil {
			return err
		}
		engine, err := NewTxEngine(tx, s.catalog, s.occupancy, s.opts)
		if err != nil {
			return err
		}
		if err := fn(ctx, engine, b); err != nil {
			return err
		}
		if err := repo.Save(ctx, b); err != nil {
			return err
		}
		if holdsRentalUnits(b) {
			if err := s.consumptions.Reserve(ctx, tx, b); err != nil {
				return err
			}
		}
		if err := s.syncAlerts(ctx, tx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// holdsRentalUnits reports whether the booking currently consumes its units.
func holdsRentalUnits(b *models.Booking) bool {
	if b.IsCancelled {
		return false
	}
	switch b.Status {
	case enums.BookingStatusOption, enums.BookingStatusConfirmed, enums.BookingStatusCheckedIn:
		return true
	}
	return false
}

func (s *service) syncAlerts(ctx context.Context, tx *gorm.DB, b *models.Booking) error {
	if b.IsCancelled {
		return nil
	}
	var names []string
	for _, g := range b.Groups {
		if !AccommodationComplete(g) {
			names = append(names, g.Name)
		}
	}
	if len(names) == 0 {
		return s.alerts.Resolve(ctx, tx, b.ID, alerts.CodeIncompleteRentalUnits)
	}
	msg := "Rental units are not fully assigned: " + strings.Join(names, ", ")
	return s.alerts.Raise(ctx, tx, b.ID, alerts.CodeIncompleteRentalUnits, msg)
}

func buildContacts(bookingID uuid.UUID, in []ContactInput) []*models.BookingContact {
	out := make([]*models.BookingContact, 0, len(in))
	for _, c := range in {
		role := c.Role
		if role == "" {
			role = "contact"
		}
		out = append(out, &models.BookingContact{
			ID:        uuid.New(),
			BookingID: bookingID,
			Name:      c.Name,
			Email:     c.Email,
			Phone:     c.Phone,
			Role:      role,
		})
	}
	return out
}
