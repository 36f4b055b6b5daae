package model

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// AccountKind is the account type, encoded as the first character of the account number
type AccountKind string

const (
	AccountKindSavings AccountKind = "S"
	AccountKindCurrent AccountKind = "C"
)

const (
	// AccountNumberLength is the kind character followed by five digits
	AccountNumberLength = 6

	// MaxCustomerNameLength is also the width of the name column
	MaxCustomerNameLength = 29

	// SavingsAnnualInterestRate is accrued monthly as rate/12
	SavingsAnnualInterestRate = 0.01
)

// Default balance limits used when an account has none of its own
var (
	DefaultMinLimit = decimal.NewFromFloat(-10000.00)
	DefaultMaxLimit = decimal.NewFromFloat(1000000.00)
)

// ParseAccountKind converts "S" or "C" into an AccountKind
func ParseAccountKind(s string) (AccountKind, error) {
	switch k := AccountKind(strings.ToUpper(strings.TrimSpace(s))); k {
	case AccountKindSavings, AccountKindCurrent:
		return k, nil
	default:
		return "", ErrInvalidAccountKind
	}
}

// Name returns a human readable name of the kind
func (k AccountKind) Name() string {
	switch k {
	case AccountKindSavings:
		return "Savings"
	case AccountKindCurrent:
		return "Current"
	default:
		return ""
	}
}

// ValidateAccountNumber checks the length, kind character and digit suffix of
// an account number.
func ValidateAccountNumber(number string) error {
	runes := []rune(number)
	if len(runes) != AccountNumberLength {
		return ErrAccountNumberLength
	}
	if k := AccountKind(runes[0]); k != AccountKindSavings && k != AccountKindCurrent {
		return ErrAccountNumberKind
	}
	for _, r := range runes[1:] {
		if r < '0' || r > '9' {
			return ErrAccountNumberDigits
		}
	}
	return nil
}

// Account is a savings or current account. Fields are only changed through
// methods that keep MinLimit <= Balance <= MaxLimit, except SetLimits.
type Account struct {
	number         string
	customerName   string
	kind           AccountKind
	balance        decimal.Decimal
	initialBalance decimal.Decimal
	minLimit       decimal.Decimal
	maxLimit       decimal.Decimal
}

// NewAccount validates and creates an account of the given kind with default limits
func NewAccount(kind AccountKind, number, customerName string, balance decimal.Decimal) (*Account, error) {
	if kind != AccountKindSavings && kind != AccountKindCurrent {
		return nil, ErrInvalidAccountKind
	}
	if err := ValidateAccountNumber(number); err != nil {
		return nil, err
	}
	if AccountKind(number[:1]) != kind {
		return nil, ErrAccountKindMismatch
	}
	if err := validateCustomerName(customerName); err != nil {
		return nil, err
	}

	a := &Account{
		number:       number,
		customerName: strings.TrimRight(customerName, " "),
		kind:         kind,
		minLimit:     DefaultMinLimit,
		maxLimit:     DefaultMaxLimit,
	}
	if err := a.validateBalance(balance); err != nil {
		return nil, err
	}
	a.balance = balance
	a.initialBalance = balance
	return a, nil
}

// NewSavingsAccount creates an account whose number must start with S
func NewSavingsAccount(number, customerName string, balance decimal.Decimal) (*Account, error) {
	return NewAccount(AccountKindSavings, number, customerName, balance)
}

// NewCurrentAccount creates an account whose number must start with C
func NewCurrentAccount(number, customerName string, balance decimal.Decimal) (*Account, error) {
	return NewAccount(AccountKindCurrent, number, customerName, balance)
}

func (a *Account) Number() string                  { return a.number }
func (a *Account) CustomerName() string            { return a.customerName }
func (a *Account) Kind() AccountKind               { return a.kind }
func (a *Account) Balance() decimal.Decimal        { return a.balance }
func (a *Account) InitialBalance() decimal.Decimal { return a.initialBalance }
func (a *Account) MinLimit() decimal.Decimal       { return a.minLimit }
func (a *Account) MaxLimit() decimal.Decimal       { return a.maxLimit }

// HasDefaultMinLimit reports whether the minimum limit is the system default
func (a *Account) HasDefaultMinLimit() bool { return a.minLimit.Equal(DefaultMinLimit) }

// HasDefaultMaxLimit reports whether the maximum limit is the system default
func (a *Account) HasDefaultMaxLimit() bool { return a.maxLimit.Equal(DefaultMaxLimit) }

// SetLimits replaces both limits. The current balance is not re-checked, so a
// balance outside the new range stays until the next mutation fails.
func (a *Account) SetLimits(minLimit, maxLimit decimal.Decimal) {
	a.minLimit = minLimit
	a.maxLimit = maxLimit
}

// SetBalance replaces the balance if it lies within the limits
func (a *Account) SetBalance(balance decimal.Decimal) error {
	if err := a.validateBalance(balance); err != nil {
		return err
	}
	a.balance = balance
	return nil
}

// Deposit adds amount to the balance; on error the balance is unchanged
func (a *Account) Deposit(amount decimal.Decimal) error {
	return a.SetBalance(a.balance.Add(amount))
}

// Withdraw subtracts amount from the balance; on error the balance is unchanged
func (a *Account) Withdraw(amount decimal.Decimal) error {
	return a.SetBalance(a.balance.Sub(amount))
}

// MonthlyInterest returns the balance of a savings account after one month
// of interest and the interest itself, leaving the account unchanged. The
// new balance must stay within the limits. Current accounts earn nothing.
func (a *Account) MonthlyInterest() (balance, interest decimal.Decimal, err error) {
	if a.kind != AccountKindSavings {
		return a.balance, decimal.Zero, nil
	}
	// balance * (1 + rate/12) computed as balance * (12 + rate) / 12
	months := decimal.NewFromInt(12)
	rate := decimal.NewFromFloat(SavingsAnnualInterestRate)
	balance = a.balance.Mul(months.Add(rate)).Div(months)
	if err = a.validateBalance(balance); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return balance, balance.Sub(a.balance), nil
}

func (a *Account) validateBalance(balance decimal.Decimal) error {
	if balance.LessThan(a.minLimit) {
		return limitError(ErrBelowMinLimit, a.minLimit)
	}
	if balance.GreaterThan(a.maxLimit) {
		return limitError(ErrAboveMaxLimit, a.maxLimit)
	}
	return nil
}

func validateCustomerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrCustomerNameEmpty
	}
	if utf8.RuneCountInString(name) > MaxCustomerNameLength {
		return ErrCustomerNameTooLong
	}
	return nil
}

// accountJSON is the wire view of an account
type accountJSON struct {
	AccountNumber string          `json:"account_number"`
	AccountType   AccountKind     `json:"account_type"`
	CustomerName  string          `json:"customer_name"`
	Balance       decimal.Decimal `json:"balance"`
	MinLimit      decimal.Decimal `json:"min_limit"`
	MaxLimit      decimal.Decimal `json:"max_limit"`
}

// MarshalJSON exposes the account's live state
func (a *Account) MarshalJSON() ([]byte, error) {
	return json.Marshal(accountJSON{
		AccountNumber: a.number,
		AccountType:   a.kind,
		CustomerName:  a.customerName,
		Balance:       a.balance,
		MinLimit:      a.minLimit,
		MaxLimit:      a.maxLimit,
	})
}
