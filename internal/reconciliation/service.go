package reconciliation

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/discope/discope-backend/internal/fundings"
	"github.com/discope/discope-backend/pkg/dates"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
	"github.com/discope/discope-backend/pkg/logger"
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

type fundingAllocator interface {
	FindByReferenceTx(ctx context.Context, tx *gorm.DB, ref string) (*models.Funding, error)
	Allocate(ctx context.Context, tx *gorm.DB, fundingID uuid.UUID, in fundings.PaymentInput) (*models.Payment, error)
}

// StatementInput is an already decoded bank statement.
type StatementInput struct {
	Date           time.Time
	Account        string
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	Lines          []LineInput
}

// LineInput is one movement of a decoded statement.
type LineInput struct {
	Date               time.Time
	Amount             decimal.Decimal
	StructuredMessage  *string
	Message            *string
	CounterpartName    *string
	CounterpartAccount *string
}

// Summary reports a batch run.
type Summary struct {
	Reconciled int
	Unmatched  int
	Failed     int
}

// Service matches bank statement lines with fundings.
type Service interface {
	ImportStatement(ctx context.Context, in StatementInput) (*models.BankStatement, error)
	GetStatement(ctx context.Context, id uuid.UUID) (*models.BankStatement, error)
	Reconcile(ctx context.Context, lineID uuid.UUID) (*models.BankStatementLine, error)
	ReconcileManual(ctx context.Context, lineID, fundingID uuid.UUID) (*models.BankStatementLine, error)
	Ignore(ctx context.Context, lineID uuid.UUID) (*models.BankStatementLine, error)
	ReconcilePending(ctx context.Context, limit int) (Summary, error)
}

type service struct {
	tx       txRunner
	repo     Repository
	fundings fundingAllocator
	outbox   outboxPublisher
	logg     *logger.Logger
}

// NewService builds the reconciliation service.
func NewService(tx txRunner, repo Repository, fundingSvc fundingAllocator, publisher outboxPublisher, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("statement repository required")
	}
	if fundingSvc == nil {
		return nil, fmt.Errorf("funding service required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{tx: tx, repo: repo, fundings: fundingSvc, outbox: publisher, logg: logg}, nil
}

func (s *service) ImportStatement(ctx context.Context, in StatementInput) (*models.BankStatement, error) {
	if len(in.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidParam, "empty statement")
	}
	st := &models.BankStatement{
		ID:             uuid.New(),
		Date:           dates.Day(in.Date),
		Account:        in.Account,
		OpeningBalance: in.OpeningBalance,
		ClosingBalance: in.ClosingBalance,
	}
	for _, l := range in.Lines {
		st.Lines = append(st.Lines, &models.BankStatementLine{
			ID:                 uuid.New(),
			StatementID:        st.ID,
			Date:               dates.Day(l.Date),
			Amount:             l.Amount,
			StructuredMessage:  l.StructuredMessage,
			Message:            l.Message,
			CounterpartName:    l.CounterpartName,
			CounterpartAccount: l.CounterpartAccount,
			Status:             enums.StatementLineStatusPending,
		})
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).CreateStatement(ctx, st)
	})
	if err != nil {
		return nil, err
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{"statement_id": st.ID.String(), "lines": len(st.Lines)})
	s.logg.Info(logCtx, "bank.statement_imported")
	return st, nil
}

func (s *service) GetStatement(ctx context.Context, id uuid.UUID) (*models.BankStatement, error) {
	return s.repo.FindStatement(ctx, id)
}

// Reconcile matches the line with the funding carrying its structured
// reference.
func (s *service) Reconcile(ctx context.Context, lineID uuid.UUID) (*models.BankStatementLine, error) {
	return s.reconcile(ctx, lineID, func(tx *gorm.DB, line *models.BankStatementLine) (*models.Funding, string, error) {
		ref, ok := lineReference(line)
		if !ok {
			return nil, "", pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonNoMatchingFunding)
		}
		f, err := s.fundings.FindByReferenceTx(ctx, tx, ref)
		if err != nil {
			if pkgerrors.Is(err, pkgerrors.CodeUnknownObject, "") {
				return nil, "", pkgerrors.New(pkgerrors.CodeInvalidParam, pkgerrors.ReasonNoMatchingFunding).
					WithDetails(map[string]any{"reference": ref})
			}
			return nil, "", err
		}
		return f, ref, nil
	})
}

// ReconcileManual allocates the line to an explicit funding.
func (s *service) ReconcileManual(ctx context.Context, lineID, fundingID uuid.UUID) (*models.BankStatementLine, error) {
	return s.reconcile(ctx, lineID, func(tx *gorm.DB, line *models.BankStatementLine) (*models.Funding, string, error) {
		return &models.Funding{ID: fundingID}, "", nil
	})
}

type matcher func(tx *gorm.DB, line *models.BankStatementLine) (*models.Funding, string, error)

func (s *service) reconcile(ctx context.Context, lineID uuid.UUID, match matcher) (*models.BankStatementLine, error) {
	var out *models.BankStatementLine
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		line, err := repo.FindLine(ctx, lineID)
		if err != nil {
			return err
		}
		if line.Status != enums.StatementLineStatusPending {
			return pkgerrors.New(pkgerrors.CodeNotAllowed, pkgerrors.ReasonAlreadyReconciled)
		}
		f, ref, err := match(tx, line)
		if err != nil {
			return err
		}
		received := line.Date
		p, err := s.fundings.Allocate(ctx, tx, f.ID, fundings.PaymentInput{
			Amount:          line.Amount,
			Method:          enums.PaymentMethodWireTransfer,
			Origin:          enums.PaymentOriginBank,
			StatementLineID: &line.ID,
			ReceiptDate:     &received,
		})
		if err != nil {
			return err
		}
		line.Status = enums.StatementLineStatusReconciled
		line.FundingID = &p.FundingID
		line.PaymentID = &p.ID
		if err := repo.UpdateLine(ctx, line); err != nil {
			return err
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventStatementLineReconciled,
			AggregateType: enums.AggregateStatementLine,
			AggregateID:   line.ID,
			Data: payloads.StatementLineReconciledEvent{
				StatementLineID: line.ID,
				FundingID:       p.FundingID,
				PaymentID:       p.ID,
				Amount:          line.Amount,
				Reference:       ref,
			},
		}); err != nil {
			return err
		}
		out = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"statement_line_id": out.ID.String(),
		"funding_id":        out.FundingID.String(),
		"amount":            out.Amount.String(),
	})
	s.logg.Info(logCtx, "bank.line_reconciled")
	return out, nil
}

func (s *service) Ignore(ctx context.Context, lineID uuid.UUID) (*models.BankStatementLine, error) {
	var out *models.BankStatementLine
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		line, err := repo.FindLine(ctx, lineID)
		if err != nil {
			return err
		}
		if line.Status != enums.StatementLineStatusPending {
			return pkgerrors.New(pkgerrors.CodeNotAllowed, pkgerrors.ReasonAlreadyReconciled)
		}
		line.Status = enums.StatementLineStatusIgnored
		if err := repo.UpdateLine(ctx, line); err != nil {
			return err
		}
		out = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReconcilePending tries every pending line once. Lines without a matching
// funding stay pending; other failures are collected.
func (s *service) ReconcilePending(ctx context.Context, limit int) (Summary, error) {
	var summary Summary
	ids, err := s.repo.ListLineIDsByStatus(ctx, enums.StatementLineStatusPending, limit)
	if err != nil {
		return summary, err
	}
	var errs error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, multierr.Append(errs, err)
		}
		_, err := s.Reconcile(ctx, id)
		switch {
		case err == nil:
			summary.Reconciled++
		case pkgerrors.Is(err, pkgerrors.CodeInvalidParam, pkgerrors.ReasonNoMatchingFunding):
			summary.Unmatched++
		default:
			summary.Failed++
			errs = multierr.Append(errs, fmt.Errorf("reconcile line %s: %w", id, err))
		}
	}
	return summary, errs
}

var twelveDigits = regexp.MustCompile(`\+{0,3}\d{3}/?\d{4}/?\d{5}\+{0,3}`)

// lineReference extracts a valid structured reference from the line, first
// from its structured communication, then from the free message.
func lineReference(line *models.BankStatementLine) (string, bool) {
	if line.StructuredMessage != nil {
		if ref, ok := reference.Format(*line.StructuredMessage); ok {
			return ref, true
		}
	}
	if line.Message != nil {
		for _, candidate := range twelveDigits.FindAllString(*line.Message, -1) {
			if ref, ok := reference.Format(candidate); ok {
				return ref, true
			}
		}
	}
	return "", false
}
