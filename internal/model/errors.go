package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Error kinds. Every rule error below wraps exactly one of them, so callers
// can branch with errors.Is on either the kind or the specific rule.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("duplicate")
)

var (
	// Account number errors
	ErrAccountNumberLength = fmt.Errorf("%w: account number must be 6 characters", ErrValidation)
	ErrAccountNumberKind   = fmt.Errorf("%w: account number must start with S or C", ErrValidation)
	ErrAccountNumberDigits = fmt.Errorf("%w: account number must end with 5 digits", ErrValidation)
	ErrAccountKindMismatch = fmt.Errorf("%w: account number does not match account kind", ErrValidation)
	ErrInvalidAccountKind  = fmt.Errorf("%w: invalid account kind: must be S or C", ErrValidation)

	// Account errors
	ErrCustomerNameEmpty   = fmt.Errorf("%w: customer name is required", ErrValidation)
	ErrCustomerNameTooLong = fmt.Errorf("%w: customer name must be at most %d characters", ErrValidation, MaxCustomerNameLength)
	ErrBelowMinLimit       = fmt.Errorf("%w: balance below minimum limit", ErrValidation)
	ErrAboveMaxLimit       = fmt.Errorf("%w: balance above maximum limit", ErrValidation)
	ErrAccountNotFound     = fmt.Errorf("%w: account", ErrNotFound)
	ErrAccountExists       = fmt.Errorf("%w: account already exists", ErrDuplicate)
	ErrAccountNumbersSpent = fmt.Errorf("%w: no free account numbers left", ErrValidation)

	// Transaction errors
	ErrInvalidTransactionType = fmt.Errorf("%w: invalid transaction type: must be D or W", ErrValidation)
	ErrInvalidAmount          = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrInvalidDate            = fmt.Errorf("%w: invalid transaction date", ErrValidation)

	// Encoding errors
	ErrMalformedLine = fmt.Errorf("%w: malformed record", ErrValidation)
	ErrFieldOverflow = fmt.Errorf("%w: value does not fit its column", ErrValidation)
)

// limitError reports the limit that a balance crossed.
func limitError(kind error, limit decimal.Decimal) error {
	return fmt.Errorf("%w %s", kind, FormatMoney(limit))
}
