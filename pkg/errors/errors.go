package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeUnknownObject Code = "UNKNOWN_OBJECT"
	CodeInvalidParam  Code = "INVALID_PARAM"
	CodeNotAllowed    Code = "NOT_ALLOWED"
	CodeInvalidConfig Code = "INVALID_CONFIG"
	CodeConflict      Code = "CONFLICT"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
)

// Machine-readable reasons carried as the message of business errors. The
// front-end maps them to localized strings.
const (
	ReasonMissingPrice          = "missing_price"
	ReasonNegativeValue         = "negative_value"
	ReasonIncompatibleStatus    = "incompatible_status"
	ReasonMissingReason         = "missing_reason"
	ReasonUnsignedContract      = "unsigned_contract"
	ReasonFundingAlreadyPaid    = "funding_already_paid"
	ReasonNonRemovableBooking   = "non_removable_booking"
	ReasonNonRemovableFunding   = "non_removable_funding"
	ReasonLockedGroup           = "locked_group"
	ReasonMissingAgeRange       = "missing_age_range"
	ReasonIncompleteRentalUnits = "incomplete_rental_units"
	ReasonRentalUnitUnavailable = "rental_unit_unavailable"
	ReasonRentalUnitAssigned    = "rental_unit_already_assigned"
	ReasonCustomerMismatch      = "customer_mismatch"
	ReasonInvalidDateRange      = "invalid_date_range"
	ReasonNotAPack              = "not_a_pack"
	ReasonNoMatchingFunding     = "no_matching_funding"
	ReasonAlreadyReconciled     = "already_reconciled"
	ReasonNothingToTransfer     = "nothing_to_transfer"
	ReasonInvalidAmount         = "invalid_amount"

	MsgNonQuoteServices = "Services cannot be updated for non-quote bookings"
	MsgNonQuoteLines    = "Non-extra service lines cannot be changed for non-quote bookings"
)

type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:     http.StatusBadRequest,
		Retryable:      false,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
	},
	CodeUnauthorized: {
		HTTPStatus:     http.StatusUnauthorized,
		Retryable:      false,
		PublicMessage:  "authentication required",
		DetailsAllowed: false,
	},
	CodeUnknownObject: {
		HTTPStatus:     http.StatusNotFound,
		Retryable:      false,
		PublicMessage:  "unknown object",
		DetailsAllowed: true,
	},
	CodeInvalidParam: {
		HTTPStatus:     http.StatusBadRequest,
		Retryable:      false,
		PublicMessage:  "invalid parameter",
		DetailsAllowed: true,
	},
	CodeNotAllowed: {
		HTTPStatus:     http.StatusForbidden,
		Retryable:      false,
		PublicMessage:  "operation not allowed",
		DetailsAllowed: true,
	},
	CodeInvalidConfig: {
		HTTPStatus:     http.StatusInternalServerError,
		Retryable:      false,
		PublicMessage:  "invalid configuration",
		DetailsAllowed: true,
	},
	CodeConflict: {
		HTTPStatus:     http.StatusConflict,
		Retryable:      false,
		PublicMessage:  "conflict detected",
		DetailsAllowed: false,
	},
	CodeIdempotency: {
		HTTPStatus:     http.StatusConflict,
		Retryable:      false,
		PublicMessage:  "idempotency key reused",
		DetailsAllowed: true,
	},
	CodeInternal: {
		HTTPStatus:     http.StatusInternalServerError,
		Retryable:      true,
		PublicMessage:  "internal server error",
		DetailsAllowed: false,
	},
	CodeDependency: {
		HTTPStatus:     http.StatusServiceUnavailable,
		Retryable:      true,
		PublicMessage:  "dependency unavailable",
		DetailsAllowed: true,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// Is reports whether err carries the given code and, when reason is not
// empty, the given machine-readable reason.
func Is(err error, code Code, reason string) bool {
	typed := As(err)
	if typed == nil || typed.Code() != code {
		return false
	}
	return reason == "" || typed.Message() == reason
}
