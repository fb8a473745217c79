package contracts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
	"github.com/discope/discope-backend/pkg/outbox"
	"github.com/discope/discope-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service manages the contract of a booking. The workflow creates and
// cancels contracts inside its own transaction; the other operations are
// user actions.
type Service interface {
	CreateFromBooking(ctx context.Context, tx *gorm.DB, b *models.Booking, validUntil time.Time) (*models.Contract, error)
	CancelForBooking(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) error
	LatestTx(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) (*models.Contract, error)

	Get(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	Latest(ctx context.Context, bookingID uuid.UUID) (*models.Contract, error)
	Send(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	Sign(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	Lock(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	Unlock(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	Cancel(ctx context.Context, id uuid.UUID) (*models.Contract, error)
}

type service struct {
	tx     txRunner
	repo   Repository
	outbox outboxPublisher
	now    func() time.Time
}

// NewService builds the contract service.
func NewService(tx txRunner, repo Repository, publisher outboxPublisher) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("contract repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{tx: tx, repo: repo, outbox: publisher, now: time.Now}, nil
}

// CreateFromBooking cancels the live contracts of b and snapshots its lines
// into a new pending contract.
func (s *service) CreateFromBooking(ctx context.Context, tx *gorm.DB, b *models.Booking, validUntil time.Time) (*models.Contract, error) {
	if err := s.CancelForBooking(ctx, tx, b.ID); err != nil {
		return nil, err
	}
	c := &models.Contract{
		ID:         uuid.New(),
		BookingID:  b.ID,
		CustomerID: b.CustomerID,
		Status:     enums.ContractStatusPending,
		Total:      b.Total,
		Price:      b.Price,
		ValidUntil: validUntil,
	}
	position := 0
	for _, g := range b.Groups {
		for _, l := range g.Lines {
			c.Lines = append(c.Lines, &models.ContractLine{
				ID:         uuid.New(),
				ContractID: c.ID,
				GroupName:  g.Name,
				Name:       l.Name,
				Qty:        l.Qty,
				FreeQty:    l.FreeQty,
				UnitPrice:  l.UnitPrice,
				VatRate:    l.VatRate,
				Discount:   l.Discount,
				Total:      l.Total,
				Price:      l.Price,
				Position:   position,
			})
			position++
		}
	}
	if err := s.repo.WithTx(tx).Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// CancelForBooking cancels every live contract of the booking, locked or not.
func (s *service) CancelForBooking(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) error {
	repo := s.repo.WithTx(tx)
	live, err := repo.ListLive(ctx, bookingID)
	if err != nil {
		return err
	}
	for _, c := range live {
		c.Status = enums.ContractStatusCancelled
		if err := repo.Update(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) LatestTx(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) (*models.Contract, error) {
	return s.repo.WithTx(tx).Latest(ctx, bookingID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) Latest(ctx context.Context, bookingID uuid.UUID) (*models.Contract, error) {
	return s.repo.Latest(ctx, bookingID)
}

func (s *service) Send(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	return s.update(ctx, id, func(tx *gorm.DB, c *models.Contract) error {
		if c.Status != enums.ContractStatusPending && c.Status != enums.ContractStatusSent {
			return incompatible()
		}
		c.Status = enums.ContractStatusSent
		return nil
	})
}

// Sign records the customer signature. Locked contracts can still be signed.
func (s *service) Sign(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	return s.update(ctx, id, func(tx *gorm.DB, c *models.Contract) error {
		if c.Status != enums.ContractStatusPending && c.Status != enums.ContractStatusSent {
			return incompatible()
		}
		now := s.now().UTC()
		c.Status = enums.ContractStatusSigned
		c.SignedAt = &now
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventContractSigned,
			AggregateType: enums.AggregateContract,
			AggregateID:   c.ID,
			OccurredAt:    now,
			Data: payloads.ContractSignedEvent{
				ContractID: c.ID,
				BookingID:  c.BookingID,
				CustomerID: c.CustomerID,
				Price:      c.Price,
				SignedAt:   now,
			},
		})
	})
}

func (s *service) Lock(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	return s.update(ctx, id, func(tx *gorm.DB, c *models.Contract) error {
		if c.Status == enums.ContractStatusCancelled {
			return incompatible()
		}
		c.IsLocked = true
		return nil
	})
}

func (s *service) Unlock(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	return s.update(ctx, id, func(tx *gorm.DB, c *models.Contract) error {
		c.IsLocked = false
		return nil
	})
}

// Cancel cancels an unlocked contract.
func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	return s.update(ctx, id, func(tx *gorm.DB, c *models.Contract) error {
		if c.IsLocked {
			return pkgerrors.New(pkgerrors.CodeNotAllowed, "locked_contract")
		}
		if c.Status == enums.ContractStatusCancelled {
			return incompatible()
		}
		c.Status = enums.ContractStatusCancelled
		return nil
	})
}

func incompatible() error {
	return pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonIncompatibleStatus)
}

func (s *service) update(ctx context.Context, id uuid.UUID, fn func(tx *gorm.DB, c *models.Contract) error) (*models.Contract, error) {
	var out *models.Contract
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		c, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(tx, c); err != nil {
			return err
		}
		if err := repo.Update(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
