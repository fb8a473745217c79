package reconciliation

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/discope/discope-backend/api/validators"
	internalreconciliation "github.com/discope/discope-backend/internal/reconciliation"
)

type StatementRequest struct {
	Date           string                 `json:"date" validate:"required"`
	Account        string                 `json:"account" validate:"required,max=64"`
	OpeningBalance decimal.Decimal        `json:"opening_balance"`
	ClosingBalance decimal.Decimal        `json:"closing_balance"`
	Lines          []StatementLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type StatementLineRequest struct {
	Date               string          `json:"date" validate:"required"`
	Amount             decimal.Decimal `json:"amount"`
	StructuredMessage  *string         `json:"structured_message"`
	Message            *string         `json:"message" validate:"omitempty,max=512"`
	CounterpartName    *string         `json:"counterpart_name" validate:"omitempty,max=255"`
	CounterpartAccount *string         `json:"counterpart_account" validate:"omitempty,max=64"`
}

func (r StatementRequest) toInput() (internalreconciliation.StatementInput, error) {
	date, err := validators.ParseDate(r.Date, "date")
	if err != nil {
		return internalreconciliation.StatementInput{}, err
	}
	in := internalreconciliation.StatementInput{
		Date:           date,
		Account:        validators.SanitizeString(r.Account, 64),
		OpeningBalance: r.OpeningBalance,
		ClosingBalance: r.ClosingBalance,
		Lines:          make([]internalreconciliation.LineInput, 0, len(r.Lines)),
	}
	for _, l := range r.Lines {
		lineDate, err := validators.ParseDate(l.Date, "lines.date")
		if err != nil {
			return internalreconciliation.StatementInput{}, err
		}
		in.Lines = append(in.Lines, internalreconciliation.LineInput{
			Date:               lineDate,
			Amount:             l.Amount,
			StructuredMessage:  l.StructuredMessage,
			Message:            l.Message,
			CounterpartName:    l.CounterpartName,
			CounterpartAccount: l.CounterpartAccount,
		})
	}
	return in, nil
}

type ManualRequest struct {
	FundingID uuid.UUID `json:"funding_id" validate:"required"`
}
