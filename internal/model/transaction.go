package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "D"
	TransactionTypeWithdraw TransactionType = "W"
)

// Name returns a human readable name of the type
func (t TransactionType) Name() string {
	switch t {
	case TransactionTypeDeposit:
		return "deposit"
	case TransactionTypeWithdraw:
		return "withdrawal"
	default:
		return ""
	}
}

// Transaction is an immutable deposit or withdrawal against an account.
// The account is referenced by number only and need not exist yet.
type Transaction struct {
	date    time.Time
	account string
	txnType TransactionType
	amount  decimal.Decimal
}

// NewTransaction validates and creates a transaction. The time of day of date
// is discarded.
func NewTransaction(date time.Time, account string, txnType TransactionType, amount decimal.Decimal) (*Transaction, error) {
	if err := ValidateAccountNumber(account); err != nil {
		return nil, err
	}
	if txnType != TransactionTypeDeposit && txnType != TransactionTypeWithdraw {
		return nil, ErrInvalidTransactionType
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	y, m, d := date.Date()
	return &Transaction{
		date:    time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		account: account,
		txnType: txnType,
		amount:  amount,
	}, nil
}

// ParseTransactionDate parses a YYYYMMDD date
func ParseTransactionDate(s string) (time.Time, error) {
	date, err := time.Parse(txnDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q", ErrInvalidDate, s)
	}
	return date, nil
}

func (t *Transaction) Date() time.Time         { return t.date }
func (t *Transaction) Account() string         { return t.account }
func (t *Transaction) Type() TransactionType   { return t.txnType }
func (t *Transaction) Amount() decimal.Decimal { return t.amount }

// ApplyTo deposits or withdraws the transaction amount on the account
func (t *Transaction) ApplyTo(a *Account) error {
	switch t.txnType {
	case TransactionTypeDeposit:
		return a.Deposit(t.amount)
	case TransactionTypeWithdraw:
		return a.Withdraw(t.amount)
	default:
		return ErrInvalidTransactionType
	}
}

// transactionJSON is the wire view of a transaction
type transactionJSON struct {
	Date          string          `json:"date"`
	AccountNumber string          `json:"account_number"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
}

// MarshalJSON renders the date as YYYY-MM-DD
func (t *Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionJSON{
		Date:          t.date.Format(time.DateOnly),
		AccountNumber: t.account,
		Type:          t.txnType,
		Amount:        t.amount,
	})
}
