package fundings

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/discope/discope-backend/api/validators"
	internalfundings "github.com/discope/discope-backend/internal/fundings"
	"github.com/discope/discope-backend/pkg/enums"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
)

type FundingRequest struct {
	Name      string          `json:"name" validate:"required,max=255"`
	DueAmount decimal.Decimal `json:"due_amount"`
	DueDate   string          `json:"due_date" validate:"required"`
}

func (r FundingRequest) toInput() (internalfundings.FundingInput, error) {
	due, err := validators.ParseDate(r.DueDate, "due_date")
	if err != nil {
		return internalfundings.FundingInput{}, err
	}
	return internalfundings.FundingInput{
		Name:      validators.SanitizeString(r.Name, 255),
		DueAmount: r.DueAmount,
		DueDate:   due,
	}, nil
}

// PaymentRequest records a cashdesk payment. Bank payments come from
// statement reconciliation only.
type PaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method" validate:"required"`
	ReceiptDate *string         `json:"receipt_date"`
}

func (r PaymentRequest) toInput() (internalfundings.PaymentInput, error) {
	method, err := enums.ParsePaymentMethod(r.Method)
	if err != nil {
		return internalfundings.PaymentInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method").WithDetails(map[string]any{"field": "method"})
	}
	receipt, err := validators.ParseOptionalDate(r.ReceiptDate, "receipt_date")
	if err != nil {
		return internalfundings.PaymentInput{}, err
	}
	return internalfundings.PaymentInput{
		Amount:      r.Amount,
		Method:      method,
		ReceiptDate: receipt,
		Origin:      enums.PaymentOriginCashdesk,
	}, nil
}

type TransferRequest struct {
	BookingID uuid.UUID `json:"booking_id" validate:"required"`
}
