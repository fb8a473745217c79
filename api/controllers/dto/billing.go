package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
	"github.com/discope/discope-backend/pkg/reference"
)

type Funding struct {
	ID               uuid.UUID         `json:"id"`
	BookingID        uuid.UUID         `json:"booking_id"`
	Name             string            `json:"name"`
	Type             enums.FundingType `json:"type"`
	Position         int               `json:"position"`
	DueAmount        decimal.Decimal   `json:"due_amount"`
	PaidAmount       decimal.Decimal   `json:"paid_amount"`
	IsPaid           bool              `json:"is_paid"`
	DueDate          string            `json:"due_date"`
	PaymentReference string            `json:"payment_reference"`
	Payments         []Payment         `json:"payments"`
}

type Payment struct {
	ID              uuid.UUID           `json:"id"`
	FundingID       uuid.UUID           `json:"funding_id"`
	Amount          decimal.Decimal     `json:"amount"`
	Origin          enums.PaymentOrigin `json:"origin"`
	Method          enums.PaymentMethod `json:"method"`
	StatementLineID *uuid.UUID          `json:"statement_line_id,omitempty"`
	ReceiptDate     time.Time           `json:"receipt_date"`
}

func NewFunding(f *models.Funding) Funding {
	ref := f.PaymentReference
	if formatted, ok := reference.Format(ref); ok {
		ref = formatted
	}
	out := Funding{
		ID:               f.ID,
		BookingID:        f.BookingID,
		Name:             f.Name,
		Type:             f.Type,
		Position:         f.Position,
		DueAmount:        f.DueAmount,
		PaidAmount:       f.PaidAmount,
		IsPaid:           f.IsPaid,
		DueDate:          formatDate(f.DueDate),
		PaymentReference: ref,
		Payments:         make([]Payment, 0, len(f.Payments)),
	}
	for _, p := range f.Payments {
		out.Payments = append(out.Payments, NewPayment(p))
	}
	return out
}

func NewFundings(rows []*models.Funding) []Funding {
	out := make([]Funding, 0, len(rows))
	for _, f := range rows {
		out = append(out, NewFunding(f))
	}
	return out
}

func NewPayment(p *models.Payment) Payment {
	return Payment{
		ID:              p.ID,
		FundingID:       p.FundingID,
		Amount:          p.Amount,
		Origin:          p.Origin,
		Method:          p.Method,
		StatementLineID: p.StatementLineID,
		ReceiptDate:     p.ReceiptDate,
	}
}

type Contract struct {
	ID         uuid.UUID            `json:"id"`
	BookingID  uuid.UUID            `json:"booking_id"`
	Status     enums.ContractStatus `json:"status"`
	IsLocked   bool                 `json:"is_locked"`
	Total      decimal.Decimal      `json:"total"`
	Price      decimal.Decimal      `json:"price"`
	ValidUntil string               `json:"valid_until"`
	SignedAt   *time.Time           `json:"signed_at,omitempty"`
	Lines      []ContractLine       `json:"lines"`
}

type ContractLine struct {
	GroupName string          `json:"group_name"`
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	FreeQty   int             `json:"free_qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	VatRate   decimal.Decimal `json:"vat_rate"`
	Discount  decimal.Decimal `json:"discount"`
	Price     decimal.Decimal `json:"price"`
}

func NewContract(c *models.Contract) Contract {
	out := Contract{
		ID:         c.ID,
		BookingID:  c.BookingID,
		Status:     c.Status,
		IsLocked:   c.IsLocked,
		Total:      c.Total,
		Price:      c.Price,
		ValidUntil: formatDate(c.ValidUntil),
		SignedAt:   c.SignedAt,
		Lines:      make([]ContractLine, 0, len(c.Lines)),
	}
	for _, l := range c.Lines {
		out.Lines = append(out.Lines, ContractLine{
			GroupName: l.GroupName,
			Name:      l.Name,
			Qty:       l.Qty,
			FreeQty:   l.FreeQty,
			UnitPrice: l.UnitPrice,
			VatRate:   l.VatRate,
			Discount:  l.Discount,
			Price:     l.Price,
		})
	}
	return out
}

type Statement struct {
	ID             uuid.UUID       `json:"id"`
	Date           string          `json:"date"`
	Account        string          `json:"account"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Lines          []StatementLine `json:"lines"`
}

type StatementLine struct {
	ID                uuid.UUID                 `json:"id"`
	Date              string                    `json:"date"`
	Amount            decimal.Decimal           `json:"amount"`
	StructuredMessage *string                   `json:"structured_message,omitempty"`
	Message           *string                   `json:"message,omitempty"`
	CounterpartName   *string                   `json:"counterpart_name,omitempty"`
	Status            enums.StatementLineStatus `json:"status"`
	FundingID         *uuid.UUID                `json:"funding_id,omitempty"`
	PaymentID         *uuid.UUID                `json:"payment_id,omitempty"`
}

func NewStatement(s *models.BankStatement) Statement {
	out := Statement{
		ID:             s.ID,
		Date:           formatDate(s.Date),
		Account:        s.Account,
		OpeningBalance: s.OpeningBalance,
		ClosingBalance: s.ClosingBalance,
		Lines:          make([]StatementLine, 0, len(s.Lines)),
	}
	for _, l := range s.Lines {
		out.Lines = append(out.Lines, NewStatementLine(l))
	}
	return out
}

func NewStatementLine(l *models.BankStatementLine) StatementLine {
	return StatementLine{
		ID:                l.ID,
		Date:              formatDate(l.Date),
		Amount:            l.Amount,
		StructuredMessage: l.StructuredMessage,
		Message:           l.Message,
		CounterpartName:   l.CounterpartName,
		Status:            l.Status,
		FundingID:         l.FundingID,
		PaymentID:         l.PaymentID,
	}
}

type Alert struct {
	ID        uuid.UUID         `json:"id"`
	BookingID uuid.UUID         `json:"booking_id"`
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Status    enums.AlertStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

func NewAlert(a models.Alert) Alert {
	return Alert{ID: a.ID, BookingID: a.BookingID, Code: a.Code, Message: a.Message, Status: a.Status, CreatedAt: a.CreatedAt}
}
