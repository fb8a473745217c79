package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/discope/discope-backend/internal/alerts"
	"github.com/discope/discope-backend/internal/bookings"
	"github.com/discope/discope-backend/pkg/dates"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
	"github.com/discope/discope-backend/pkg/logger"
	"github.com/discope/discope-backend/pkg/metrics"
	"github.com/discope/discope-backend/pkg/money"
	"github.com/discope/discope-backend/pkg/outbox"
	"github.com/discope/discope-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type unitReserver interface {
	Reserve(ctx context.Context, tx *gorm.DB, b *models.Booking) error
	Release(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) error
}

type contractManager interface {
	CreateFromBooking(ctx context.Context, tx *gorm.DB, b *models.Booking, validUntil time.Time) (*models.Contract, error)
	CancelForBooking(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) error
	LatestTx(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) (*models.Contract, error)
}

type fundingManager interface {
	GenerateForBooking(ctx context.Context, tx *gorm.DB, b *models.Booking, confirmedAt time.Time) ([]*models.Funding, error)
	CreateInvoiceFunding(ctx context.Context, tx *gorm.DB, b *models.Booking, invoicedAt time.Time) (*models.Funding, error)
	DeleteUnpaid(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) (int64, error)
	RefreshPaidAmount(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) (decimal.Decimal, error)
}

type alertManager interface {
	Raise(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID, code, message string) error
	DismissAll(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) error
}

// Options tunes the workflow.
type Options struct {
	OptionValidityDays int
}

// Service moves bookings through their lifecycle:
// quote, option, confirmed, checkedin, checkedout, invoiced, then one of the
// balance states. Cancellation and archival are flags on top of the status.
type Service interface {
	Option(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	Confirm(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	Quote(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	CheckIn(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	CheckOut(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	Invoice(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	Balance(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	Cancel(ctx context.Context, id uuid.UUID, reason enums.CancellationReason) (*models.Booking, error)
	Archive(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ExpireOption(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

// Deps groups the collaborators of the workflow.
type Deps struct {
	Tx           txRunner
	Bookings     bookings.Repository
	Consumptions unitReserver
	Contracts    contractManager
	Fundings     fundingManager
	Alerts       alertManager
	Outbox       outboxPublisher
	Metrics      *metrics.BookingMetrics
	Logger       *logger.Logger
}

type service struct {
	Deps
	opts Options
	now  func() time.Time
}

// NewService builds the workflow service.
func NewService(deps Deps, opts Options) (Service, error) {
	switch {
	case deps.Tx == nil:
		return nil, fmt.Errorf("tx runner required")
	case deps.Bookings == nil:
		return nil, fmt.Errorf("booking repository required")
	case deps.Consumptions == nil:
		return nil, fmt.Errorf("consumption service required")
	case deps.Contracts == nil:
		return nil, fmt.Errorf("contract service required")
	case deps.Fundings == nil:
		return nil, fmt.Errorf("funding service required")
	case deps.Alerts == nil:
		return nil, fmt.Errorf("alert service required")
	case deps.Outbox == nil:
		return nil, fmt.Errorf("outbox publisher required")
	case deps.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	if opts.OptionValidityDays <= 0 {
		return nil, fmt.Errorf("option validity days must be positive")
	}
	return &service{Deps: deps, opts: opts, now: time.Now}, nil
}

func incompatible(b *models.Booking) error {
	return pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonIncompatibleStatus).
		WithDetails(map[string]any{"status": b.Status, "is_cancelled": b.IsCancelled})
}

func requireStatus(b *models.Booking, allowed ...enums.BookingStatus) error {
	if b.IsCancelled || b.ArchivedAt != nil {
		return incompatible(b)
	}
	for _, s := range allowed {
		if b.Status == s {
			return nil
		}
	}
	return incompatible(b)
}

// Option holds the rental units of a quote until the option expires.
func (s *service) Option(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.transition(ctx, id, "option", func(ctx context.Context, tx *gorm.DB, b *models.Booking) error {
		if err := requireStatus(b, enums.BookingStatusQuote); err != nil {
			return err
		}
		expires := s.now().UTC().AddDate(0, 0, s.opts.OptionValidityDays)
		b.Status = enums.BookingStatusOption
		b.OptionExpiresAt = &expires
		return s.Consumptions.Reserve(ctx, tx, b)
	})
}

// Confirm requires every accommodation to be assigned, then freezes the
// contract and schedules the fundings of the payment plan.
func (s *service) Confirm(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.transition(ctx, id, "confirm", func(ctx context.Context, tx *gorm.DB, b *models.Booking) error {
		if err := requireStatus(b, enums.BookingStatusQuote, enums.BookingStatusOption); err != nil {
			return err
		}
		var incomplete []string
		for _, g := range b.Groups {
			if !bookings.AccommodationComplete(g) {
				incomplete = append(incomplete, g.Name)
			}
		}
		if len(incomplete) > 0 {
			return pkgerrors.New(pkgerrors.CodeNotAllowed, pkgerrors.ReasonIncompleteRentalUnits).
				WithDetails(map[string]any{"groups": incomplete})
		}
		now := s.now().UTC()
		b.Status = enums.BookingStatusConfirmed
		b.OptionExpiresAt = nil
		if err := s.Consumptions.Reserve(ctx, tx, b); err != nil {
			return err
		}
		if _, err := s.Contracts.CreateFromBooking(ctx, tx, b, dates.AddDays(dates.Day(now), s.opts.OptionValidityDays)); err != nil {
			return err
		}
		_, err := s.Fundings.GenerateForBooking(ctx, tx, b, now)
		return err
	})
}

// Quote reverts an option or a confirmation.
func (s *service) Quote(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.transition(ctx, id, "quote", func(ctx context.Context, tx *gorm.DB, b *models.Booking) error {
		if err := requireStatus(b, enums.BookingStatusOption, enums.BookingStatusConfirmed); err != nil {
			return err
		}
		return s.revertToQuote(ctx, tx, b)
	})
}

func (s *service) revertToQuote(ctx context.Context, tx *gorm.DB, b *models.Booking) error {
	b.Status = enums.BookingStatusQuote
	b.OptionExpiresAt = nil
	if err := s.Contracts.CancelForBooking(ctx, tx, b.ID); err != nil {
		return err
	}
	if _, err := s.Fundings.DeleteUnpaid(ctx, tx, b.ID); err != nil {
		return err
	}
	paid, err := s.Fundings.RefreshPaidAmount(ctx, tx, b.ID)
	if err != nil {
		return err
	}
	b.PaidAmount = paid
	return s.Consumptions.Release(ctx, tx, b.ID)
}

// CheckIn requires the latest contract to be signed.
func (s *service) CheckIn(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.transition(ctx, id, "checkin", func(ctx context.Context, tx *gorm.DB, b *models.Booking) error {
		if err := requireStatus(b, enums.BookingStatusConfirmed); err != nil {
			return err
		}
		c, err := s.Contracts.LatestTx(ctx, tx, b.ID)
		if err != nil && !pkgerrors.Is(err, pkgerrors.CodeUnknownObject, "") {
			return err
		}
		if c == nil || c.Status != enums.ContractStatusSigned {
			return pkgerrors.New(pkgerrors.CodeNotAllowed, pkgerrors.ReasonUnsignedContract)
		}
		b.Status = enums.BookingStatusCheckedIn
		return nil
	})
}

func (s *service) CheckOut(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.transition(ctx, id, "checkout", func(ctx context.Context, tx *gorm.DB, b *models.Booking) error {
		if err := requireStatus(b, enums.BookingStatusCheckedIn); err != nil {
			return err
		}
		b.Status = enums.BookingStatusCheckedOut
		return nil
	})
}

// Invoice adds the funding settling the difference between the final price
// and the installments.
func (s *service) Invoice(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.transition(ctx, id, "invoice", func(ctx context.Context, tx *gorm.DB, b *models.Booking) error {
		if err := requireStatus(b, enums.BookingStatusCheckedOut); err != nil {
			return err
		}
		if _, err := s.Fundings.CreateInvoiceFunding(ctx, tx, b, s.now()); err != nil {
			return err
		}
		b.Status = enums.BookingStatusInvoiced
		return nil
	})
}

// Balance settles an invoiced booking against what was paid.
func (s *service) Balance(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.transition(ctx, id, "balance", func(ctx context.Context, tx *gorm.DB, b *models.Booking) error {
		if err := requireStatus(b, enums.BookingStatusInvoiced, enums.BookingStatusDebitBalance, enums.BookingStatusCreditBalance, enums.BookingStatusBalanced); err != nil {
			return err
		}
		paid, err := s.Fundings.RefreshPaidAmount(ctx, tx, b.ID)
		if err != nil {
			return err
		}
		b.PaidAmount = paid
		b.Status = BalanceStatus(b.Price, paid)
		return nil
	})
}

// BalanceStatus compares the price with the paid amount to the cent.
func BalanceStatus(price, paid decimal.Decimal) enums.BookingStatus {
	switch money.Round2(paid).Cmp(money.Round2(price)) {
	case -1:
		return enums.BookingStatusDebitBalance
	case 1:
		return enums.BookingStatusCreditBalance
	}
	return enums.BookingStatusBalanced
}

// Cancel flags the booking as cancelled. Units are released, unpaid fundings
// removed and every group becomes extra so that cancellation fees can still
// be charged.
func (s *service) Cancel(ctx context.Context, id uuid.UUID, reason enums.CancellationReason) (*models.Booking, error) {
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonMissingReason)
	}
	if !reason.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidParam, "invalid cancellation reason").WithDetails(map[string]any{"reason": reason})
	}
	return s.transition(ctx, id, "cancel", func(ctx context.Context, tx *gorm.DB, b *models.Booking) error {
		if b.IsCancelled || b.Status.IsBalance() || b.ArchivedAt != nil {
			return incompatible(b)
		}
		if err := s.Consumptions.Release(ctx, tx, b.ID); err != nil {
			return err
		}
		if err := s.Contracts.CancelForBooking(ctx, tx, b.ID); err != nil {
			return err
		}
		if _, err := s.Fundings.DeleteUnpaid(ctx, tx, b.ID); err != nil {
			return err
		}
		paid, err := s.Fundings.RefreshPaidAmount(ctx, tx, b.ID)
		if err != nil {
			return err
		}
		b.PaidAmount = paid
		if b.Status.HasProgressed() || !paid.IsZero() {
			b.Status = enums.BookingStatusCheckedOut
		}
		b.IsCancelled = true
		b.CancellationReason = &reason
		b.OptionExpiresAt = nil
		for _, g := range b.Groups {
			g.IsExtra = true
		}
		if err := s.Alerts.DismissAll(ctx, tx, b.ID); err != nil {
			return err
		}
		return s.Outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingCancelled,
			AggregateType: enums.AggregateBooking,
			AggregateID:   b.ID,
			Data: payloads.BookingCancelledEvent{
				BookingID:  b.ID,
				Number:     b.Number,
				CenterID:   b.CenterID,
				CustomerID: b.CustomerID,
				Status:     b.Status,
				Reason:     reason,
			},
		})
	})
}

// Archive hides a cancelled or balanced booking from the working lists.
func (s *service) Archive(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.transition(ctx, id, "archive", func(ctx context.Context, tx *gorm.DB, b *models.Booking) error {
		if b.ArchivedAt != nil || !(b.IsCancelled || b.Status == enums.BookingStatusBalanced) {
			return incompatible(b)
		}
		now := s.now().UTC()
		b.ArchivedAt = &now
		return nil
	})
}

// ExpireOption reverts an option whose validity ran out.
func (s *service) ExpireOption(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.transition(ctx, id, "expire_option", func(ctx context.Context, tx *gorm.DB, b *models.Booking) error {
		if err := requireStatus(b, enums.BookingStatusOption); err != nil {
			return err
		}
		now := s.now().UTC()
		if b.OptionExpiresAt == nil || b.OptionExpiresAt.After(now) {
			return pkgerrors.New(pkgerrors.CodeNotAllowed, "option_not_expired")
		}
		expiredAt := *b.OptionExpiresAt
		if err := s.revertToQuote(ctx, tx, b); err != nil {
			return err
		}
		msg := fmt.Sprintf("Option expired on %s", expiredAt.Format("2006-01-02"))
		if err := s.Alerts.Raise(ctx, tx, b.ID, alerts.CodeOptionExpired, msg); err != nil {
			return err
		}
		return s.Outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingOptionExpired,
			AggregateType: enums.AggregateBooking,
			AggregateID:   b.ID,
			Data: payloads.BookingOptionExpiredEvent{
				BookingID: b.ID,
				Number:    b.Number,
				ExpiredAt: expiredAt,
			},
		})
	})
}

// transition loads the aggregate, applies fn and saves it in one
// transaction. A status change emits booking_status_changed.
func (s *service) transition(ctx context.Context, id uuid.UUID, action string, fn func(context.Context, *gorm.DB, *models.Booking) error) (*models.Booking, error) {
	var (
		out  *models.Booking
		from enums.BookingStatus
	)
	err := s.Tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.Bookings.WithTx(tx)
		b, err := repo.Load(ctx, id)
		if err != nil {
			return err
		}
		from = b.Status
		if err := fn(ctx, tx, b); err != nil {
			return err
		}
		if err := repo.Save(ctx, b); err != nil {
			return err
		}
		if b.Status != from {
			if err := s.Outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventBookingStatusChanged,
				AggregateType: enums.AggregateBooking,
				AggregateID:   b.ID,
				Data: payloads.BookingStatusChangedEvent{
					BookingID:  b.ID,
					Number:     b.Number,
					CenterID:   b.CenterID,
					CustomerID: b.CustomerID,
					From:       from,
					To:         b.Status,
					Price:      b.Price,
				},
			}); err != nil {
				return err
			}
		}
		out = b
		return nil
	})
	logCtx := s.Logger.WithFields(s.Logger.WithBookingID(ctx, id.String()), map[string]any{"action": action})
	if err != nil {
		s.Logger.Warn(s.Logger.WithField(logCtx, "error", err.Error()), "booking.transition_rejected")
		return nil, err
	}
	event := "booking." + action
	if out.Status != from {
		s.Metrics.IncTransition(string(out.Status))
		event = "booking.status_changed"
	}
	s.Logger.Info(s.Logger.WithFields(logCtx, map[string]any{
		"from":         string(from),
		"to":           string(out.Status),
		"is_cancelled": out.IsCancelled,
	}), event)
	return out, nil
}
