package fundings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/discope/discope-backend/internal/bookings"
	"github.com/discope/discope-backend/internal/catalog"
	"github.com/discope/discope-backend/pkg/dates"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
	"github.com/discope/discope-backend/pkg/outbox"
	"github.com/discope/discope-backend/pkg/outbox/payloads"
	"github.com/discope/discope-backend/pkg/reference"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Options carries the fallback payment plan.
type Options struct {
	DepositPercent    int
	BalanceDaysBefore int
}

// PaymentInput describes money received for a funding.
type PaymentInput struct {
	Amount          decimal.Decimal
	Method          enums.PaymentMethod
	ReceiptDate     *time.Time
	Origin          enums.PaymentOrigin
	StatementLineID *uuid.UUID
}

// FundingInput describes a manually added funding.
type FundingInput struct {
	Name      string
	DueAmount decimal.Decimal
	DueDate   time.Time
}

// Service manages fundings, payments and the paid amount of bookings.
type Service interface {
	// Workflow hooks, run inside the caller's transaction.
	GenerateForBooking(ctx context.Context, tx *gorm.DB, b *models.Booking, confirmedAt time.Time) ([]*models.Funding, error)
	CreateInvoiceFunding(ctx context.Context, tx *gorm.DB, b *models.Booking, invoicedAt time.Time) (*models.Funding, error)
	DeleteUnpaid(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) (int64, error)
	Allocate(ctx context.Context, tx *gorm.DB, fundingID uuid.UUID, in PaymentInput) (*models.Payment, error)
	RefreshPaidAmount(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) (decimal.Decimal, error)
	FindByReferenceTx(ctx context.Context, tx *gorm.DB, ref string) (*models.Funding, error)
	ListOverdue(ctx context.Context, day time.Time) ([]*models.Funding, error)

	List(ctx context.Context, bookingID uuid.UUID) ([]*models.Funding, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Funding, error)
	AddFunding(ctx context.Context, bookingID uuid.UUID, in FundingInput) (*models.Funding, error)
	AppendPayment(ctx context.Context, fundingID uuid.UUID, in PaymentInput) (*models.Payment, error)
	RemovePayment(ctx context.Context, paymentID uuid.UUID) error
	MarkPaid(ctx context.Context, fundingID uuid.UUID) (*models.Funding, error)
	MarkUnpaid(ctx context.Context, fundingID uuid.UUID) (*models.Funding, error)
	DeleteFunding(ctx context.Context, fundingID uuid.UUID) error
	TransferFunding(ctx context.Context, fundingID, targetBookingID uuid.UUID) (*models.Funding, error)
	TransferPayment(ctx context.Context, paymentID, targetBookingID uuid.UUID) (*models.Funding, error)
}

type service struct {
	tx       txRunner
	repo     Repository
	bookings bookings.Repository
	catalog  catalog.Repository
	outbox   outboxPublisher
	opts     Options
	now      func() time.Time
}

// NewService builds the funding service.
func NewService(tx txRunner, repo Repository, bookingRepo bookings.Repository, cat catalog.Repository, publisher outboxPublisher, opts Options) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("funding repository required")
	}
	if bookingRepo == nil {
		return nil, fmt.Errorf("booking repository required")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if opts.DepositPercent < 0 || opts.DepositPercent > 100 {
		return nil, fmt.Errorf("deposit percent out of range: %d", opts.DepositPercent)
	}
	return &service{tx: tx, repo: repo, bookings: bookingRepo, catalog: cat, outbox: publisher, opts: opts, now: time.Now}, nil
}

// GenerateForBooking creates the installments of the booking's payment plan
// for the part of the price not already covered by existing fundings.
func (s *service) GenerateForBooking(ctx context.Context, tx *gorm.DB, b *models.Booking, confirmedAt time.Time) ([]*models.Funding, error) {
	repo := s.repo.WithTx(tx)
	existing, err := repo.ListForBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	covered := decimal.Zero
	for _, f := range existing {
		covered = covered.Add(f.DueAmount)
	}
	plan, err := s.planFor(ctx, tx, b)
	if err != nil {
		return nil, err
	}
	created := BuildFundings(b, plan, b.Price.Sub(covered), confirmedAt, nextPosition(existing))
	for _, f := range created {
		if err := repo.Create(ctx, f); err != nil {
			return nil, err
		}
	}
	return created, nil
}

func (s *service) planFor(ctx context.Context, tx *gorm.DB, b *models.Booking) (*models.PaymentPlan, error) {
	cat := s.catalog.WithTx(tx)
	rateClassID := uuid.Nil
	customer, err := cat.FindCustomer(ctx, b.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer.RateClassID != nil {
		rateClassID = *customer.RateClassID
	}
	plan, err := cat.FindPaymentPlan(ctx, b.CenterID, rateClassID)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeUnknownObject, "") {
			return DefaultPlan(s.opts.DepositPercent, s.opts.BalanceDaysBefore), nil
		}
		return nil, err
	}
	return plan, nil
}

// CreateInvoiceFunding adds a funding for the difference between the
// booking price and what the existing fundings ask for. A negative amount
// is a credit note.
func (s *service) CreateInvoiceFunding(ctx context.Context, tx *gorm.DB, b *models.Booking, invoicedAt time.Time) (*models.Funding, error) {
	repo := s.repo.WithTx(tx)
	existing, err := repo.ListForBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	covered := decimal.Zero
	for _, f := range existing {
		covered = covered.Add(f.DueAmount)
	}
	diff := b.Price.Sub(covered)
	if diff.IsZero() {
		return nil, nil
	}
	position := nextPosition(existing)
	f := &models.Funding{
		ID:               uuid.New(),
		BookingID:        b.ID,
		CustomerID:       b.CustomerID,
		Name:             "Facture",
		Type:             enums.FundingTypeInvoice,
		Position:         position,
		DueAmount:        diff,
		PaidAmount:       decimal.Zero,
		DueDate:          dates.Day(invoicedAt),
		PaymentReference: reference.ForBooking(b.Number, position),
	}
	if err := repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *service) DeleteUnpaid(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) (int64, error) {
	return s.repo.WithTx(tx).DeleteUnpaidForBooking(ctx, bookingID)
}

// Allocate records a payment against a funding and rolls the amounts up to
// the booking.
func (s *service) Allocate(ctx context.Context, tx *gorm.DB, fundingID uuid.UUID, in PaymentInput) (*models.Payment, error) {
	if in.Amount.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonInvalidAmount)
	}
	if in.Method == "" {
		in.Method = enums.PaymentMethodCash
	}
	if !in.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidParam, "invalid payment method").WithDetails(map[string]any{"method": in.Method})
	}
	if in.Origin == "" {
		in.Origin = enums.PaymentOriginCashdesk
	}
	repo := s.repo.WithTx(tx)
	f, err := repo.FindByID(ctx, fundingID)
	if err != nil {
		return nil, err
	}
	if f.IsPaid && f.HasBankPayment() {
		return nil, pkgerrors.New(pkgerrors.CodeNotAllowed, pkgerrors.ReasonFundingAlreadyPaid)
	}
	received := s.now().UTC()
	if in.ReceiptDate != nil {
		received = in.ReceiptDate.UTC()
	}
	p := &models.Payment{
		ID:              uuid.New(),
		FundingID:       f.ID,
		BookingID:       f.BookingID,
		CustomerID:      f.CustomerID,
		Amount:          in.Amount,
		Origin:          in.Origin,
		Method:          in.Method,
		StatementLineID: in.StatementLineID,
		ReceiptDate:     received,
	}
	if err := repo.CreatePayment(ctx, p); err != nil {
		return nil, err
	}
	f.Payments = append(f.Payments, p)
	if err := s.settle(ctx, tx, f); err != nil {
		return nil, err
	}
	if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventPaymentReceived,
		AggregateType: enums.AggregateFunding,
		AggregateID:   f.ID,
		Data: payloads.PaymentReceivedEvent{
			PaymentID:  p.ID,
			FundingID:  f.ID,
			BookingID:  f.BookingID,
			CustomerID: f.CustomerID,
			Amount:     p.Amount,
			Origin:     p.Origin,
			Method:     p.Method,
		},
	}); err != nil {
		return nil, err
	}
	if _, err := s.RefreshPaidAmount(ctx, tx, f.BookingID); err != nil {
		return nil, err
	}
	return p, nil
}

// settle recomputes paid_amount from the payments and stores the funding.
func (s *service) settle(ctx context.Context, tx *gorm.DB, f *models.Funding) error {
	paid := decimal.Zero
	for _, p := range f.Payments {
		paid = paid.Add(p.Amount)
	}
	wasPaid := f.IsPaid
	f.PaidAmount = paid
	f.IsPaid = !paid.IsZero() && settled(f.DueAmount, paid)
	if err := s.repo.WithTx(tx).Update(ctx, f); err != nil {
		return err
	}
	if f.IsPaid && !wasPaid {
		return s.emitFundingPaid(ctx, tx, f)
	}
	return nil
}

func (s *service) emitFundingPaid(ctx context.Context, tx *gorm.DB, f *models.Funding) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventFundingPaid,
		AggregateType: enums.AggregateFunding,
		AggregateID:   f.ID,
		Data: payloads.FundingPaidEvent{
			FundingID:  f.ID,
			BookingID:  f.BookingID,
			DueAmount:  f.DueAmount,
			PaidAmount: f.PaidAmount,
		},
	})
}

// RefreshPaidAmount stores the sum of the funding paid amounts on the booking.
func (s *service) RefreshPaidAmount(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) (decimal.Decimal, error) {
	total, err := s.repo.WithTx(tx).SumPaid(ctx, bookingID)
	if err != nil {
		return decimal.Zero, err
	}
	err = tx.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", bookingID).Update("paid_amount", total).Error
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking paid amount")
	}
	return total, nil
}

func (s *service) FindByReferenceTx(ctx context.Context, tx *gorm.DB, ref string) (*models.Funding, error) {
	return s.repo.WithTx(tx).FindByReference(ctx, ref)
}

func (s *service) ListOverdue(ctx context.Context, day time.Time) ([]*models.Funding, error) {
	return s.repo.ListOverdue(ctx, dates.Day(day))
}

func (s *service) List(ctx context.Context, bookingID uuid.UUID) ([]*models.Funding, error) {
	if _, err := s.bookings.FindHeader(ctx, bookingID); err != nil {
		return nil, err
	}
	return s.repo.ListForBooking(ctx, bookingID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Funding, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) AddFunding(ctx context.Context, bookingID uuid.UUID, in FundingInput) (*models.Funding, error) {
	if in.DueAmount.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonInvalidAmount)
	}
	var out *models.Funding
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		b, err := s.bookings.WithTx(tx).FindHeader(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.IsCancelled {
			return pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonIncompatibleStatus)
		}
		repo := s.repo.WithTx(tx)
		existing, err := repo.ListForBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		position := nextPosition(existing)
		name := in.Name
		if name == "" {
			name = fmt.Sprintf("Paiement %d", position)
		}
		due := in.DueDate
		if due.IsZero() {
			due = s.now()
		}
		f := &models.Funding{
			ID:               uuid.New(),
			BookingID:        b.ID,
			CustomerID:       b.CustomerID,
			Name:             name,
			Type:             enums.FundingTypeInstallment,
			Position:         position,
			DueAmount:        in.DueAmount,
			PaidAmount:       decimal.Zero,
			DueDate:          dates.Day(due),
			PaymentReference: reference.ForBooking(b.Number, position),
		}
		if err := repo.Create(ctx, f); err != nil {
			return err
		}
		out = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AppendPayment records a cash desk payment.
func (s *service) AppendPayment(ctx context.Context, fundingID uuid.UUID, in PaymentInput) (*models.Payment, error) {
	in.Origin = enums.PaymentOriginCashdesk
	in.StatementLineID = nil
	if in.Method == enums.PaymentMethodTransfer {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidParam, "invalid payment method").WithDetails(map[string]any{"method": in.Method})
	}
	var out *models.Payment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		p, err := s.Allocate(ctx, tx, fundingID, in)
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemovePayment deletes a manual payment. Bank payments are irreversible.
func (s *service) RemovePayment(ctx context.Context, paymentID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		p, err := repo.FindPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		f, err := repo.FindByID(ctx, p.FundingID)
		if err != nil {
			return err
		}
		if p.Origin == enums.PaymentOriginBank || (f.IsPaid && f.HasBankPayment()) {
			return pkgerrors.New(pkgerrors.CodeNotAllowed, pkgerrors.ReasonFundingAlreadyPaid)
		}
		if p.Method == enums.PaymentMethodTransfer {
			return pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonIncompatibleStatus)
		}
		if err := repo.DeletePayment(ctx, p.ID); err != nil {
			return err
		}
		kept := f.Payments[:0]
		for _, other := range f.Payments {
			if other.ID != p.ID {
				kept = append(kept, other)
			}
		}
		f.Payments = kept
		if err := s.settle(ctx, tx, f); err != nil {
			return err
		}
		_, err = s.RefreshPaidAmount(ctx, tx, f.BookingID)
		return err
	})
}

// MarkPaid flags a funding as settled regardless of the payments received.
func (s *service) MarkPaid(ctx context.Context, fundingID uuid.UUID) (*models.Funding, error) {
	return s.updateFunding(ctx, fundingID, func(tx *gorm.DB, f *models.Funding) error {
		if f.IsPaid {
			return nil
		}
		f.IsPaid = true
		return s.emitFundingPaid(ctx, tx, f)
	})
}

func (s *service) MarkUnpaid(ctx context.Context, fundingID uuid.UUID) (*models.Funding, error) {
	return s.updateFunding(ctx, fundingID, func(tx *gorm.DB, f *models.Funding) error {
		if f.HasBankPayment() {
			return pkgerrors.New(pkgerrors.CodeNotAllowed, pkgerrors.ReasonFundingAlreadyPaid)
		}
		f.IsPaid = false
		return nil
	})
}

func (s *service) updateFunding(ctx context.Context, id uuid.UUID, fn func(tx *gorm.DB, f *models.Funding) error) (*models.Funding, error) {
	var out *models.Funding
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		f, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(tx, f); err != nil {
			return err
		}
		if err := repo.Update(ctx, f); err != nil {
			return err
		}
		out = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteFunding removes a funding that received no money.
func (s *service) DeleteFunding(ctx context.Context, fundingID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		f, err := repo.FindByID(ctx, fundingID)
		if err != nil {
			return err
		}
		if f.IsPaid || len(f.Payments) > 0 || !f.PaidAmount.IsZero() {
			return pkgerrors.New(pkgerrors.CodeNotAllowed, pkgerrors.ReasonNonRemovableFunding)
		}
		return repo.Delete(ctx, f.ID)
	})
}

// TransferFunding moves the money received on a funding to another booking
// of the same customer. The target gets a paid transfer funding holding the
// payments; the source funding is removed, or keeps the unpaid remainder.
func (s *service) TransferFunding(ctx context.Context, fundingID, targetBookingID uuid.UUID) (*models.Funding, error) {
	var out *models.Funding
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		f, err := repo.FindByID(ctx, fundingID)
		if err != nil {
			return err
		}
		source, target, err := s.transferEnds(ctx, tx, f.BookingID, targetBookingID)
		if err != nil {
			return err
		}
		if !f.PaidAmount.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonNothingToTransfer)
		}
		moved, err := s.newTransferFunding(ctx, tx, target, fmt.Sprintf("Transfert %d", source.Number), f.PaidAmount)
		if err != nil {
			return err
		}
		for _, p := range f.Payments {
			p.FundingID = moved.ID
			p.BookingID = target.ID
			if err := repo.UpdatePayment(ctx, p); err != nil {
				return err
			}
		}
		moved.PaidAmount = f.PaidAmount
		moved.IsPaid = true
		if err := repo.Update(ctx, moved); err != nil {
			return err
		}
		remainder := f.DueAmount.Sub(f.PaidAmount)
		if remainder.IsPositive() {
			f.DueAmount = remainder
			f.PaidAmount = decimal.Zero
			f.IsPaid = false
			if err := repo.Update(ctx, f); err != nil {
				return err
			}
		} else if err := repo.Delete(ctx, f.ID); err != nil {
			return err
		}
		if err := s.emitFundingPaid(ctx, tx, moved); err != nil {
			return err
		}
		if err := s.rollUp(ctx, tx, source.ID, target.ID); err != nil {
			return err
		}
		out = moved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TransferPayment moves one payment to another booking of the same customer.
// The source booking gets a compensating negative funding so the original
// payment stays where it was received.
func (s *service) TransferPayment(ctx context.Context, paymentID, targetBookingID uuid.UUID) (*models.Funding, error) {
	var out *models.Funding
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		p, err := repo.FindPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		source, target, err := s.transferEnds(ctx, tx, p.BookingID, targetBookingID)
		if err != nil {
			return err
		}
		if !p.Amount.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonNothingToTransfer)
		}
		compensation, err := s.newTransferFunding(ctx, tx, source, fmt.Sprintf("Transfert vers %d", target.Number), p.Amount.Neg())
		if err != nil {
			return err
		}
		if _, err := s.Allocate(ctx, tx, compensation.ID, PaymentInput{Amount: p.Amount.Neg(), Method: enums.PaymentMethodTransfer}); err != nil {
			return err
		}
		received, err := s.newTransferFunding(ctx, tx, target, fmt.Sprintf("Transfert %d", source.Number), p.Amount)
		if err != nil {
			return err
		}
		if _, err := s.Allocate(ctx, tx, received.ID, PaymentInput{Amount: p.Amount, Method: enums.PaymentMethodTransfer}); err != nil {
			return err
		}
		out, err = repo.FindByID(ctx, received.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) transferEnds(ctx context.Context, tx *gorm.DB, sourceID, targetID uuid.UUID) (*models.Booking, *models.Booking, error) {
	if sourceID == targetID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeInvalidParam, "same_booking")
	}
	repo := s.bookings.WithTx(tx)
	source, err := repo.FindHeader(ctx, sourceID)
	if err != nil {
		return nil, nil, err
	}
	target, err := repo.FindHeader(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}
	if source.CustomerID != target.CustomerID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotAllowed, pkgerrors.ReasonCustomerMismatch)
	}
	return source, target, nil
}

func (s *service) newTransferFunding(ctx context.Context, tx *gorm.DB, b *models.Booking, name string, due decimal.Decimal) (*models.Funding, error) {
	repo := s.repo.WithTx(tx)
	existing, err := repo.ListForBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	position := nextPosition(existing)
	f := &models.Funding{
		ID:               uuid.New(),
		BookingID:        b.ID,
		CustomerID:       b.CustomerID,
		Name:             name,
		Type:             enums.FundingTypeTransfer,
		Position:         position,
		DueAmount:        due,
		PaidAmount:       decimal.Zero,
		DueDate:          dates.Day(s.now()),
		PaymentReference: reference.ForBooking(b.Number, position),
	}
	if err := repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *service) rollUp(ctx context.Context, tx *gorm.DB, bookingIDs ...uuid.UUID) error {
	for _, id := range bookingIDs {
		if _, err := s.RefreshPaidAmount(ctx, tx, id); err != nil {
			return err
		}
	}
	return nil
}

func nextPosition(existing []*models.Funding) int {
	next := 1
	for _, f := range existing {
		if f.Position >= next {
			next = f.Position + 1
		}
	}
	return next
}
