package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Account record columns, in characters:
//
//	[0,6)   account number
//	[6,35)  customer name, left-justified
//	[35,50) balance, right-justified
//	[50,65) min limit, optional
//	[65,80) max limit, optional
const (
	accountNameStart    = AccountNumberLength
	accountBalanceStart = accountNameStart + MaxCustomerNameLength
	accountMinStart     = accountBalanceStart + AmountWidth
	accountMaxStart     = accountMinStart + AmountWidth
	accountRecordEnd    = accountMaxStart + AmountWidth
)

// Transaction record columns, in characters:
//
//	[0,8)   date as YYYYMMDD
//	[8,14)  account number
//	[14,15) transaction type
//	[15,..) amount, right-justified in 15
const (
	txnDateLayout   = "20060102"
	txnAccountStart = len(txnDateLayout)
	txnTypeStart    = txnAccountStart + AccountNumberLength
	txnAmountStart  = txnTypeStart + 1
)

// Encode renders the account as a fixed-width record. The balance column holds
// the balance the account was created or loaded with, not the live balance.
// Limit columns are written only when the limits differ from the defaults.
func (a *Account) Encode() (string, error) {
	balance, err := encodeAmount(a.initialBalance)
	if err != nil {
		return "", fmt.Errorf("account %s balance: %w", a.number, err)
	}

	var b strings.Builder
	b.WriteString(a.number)
	b.WriteString(padRight(a.customerName, MaxCustomerNameLength))
	b.WriteString(balance)

	if a.HasDefaultMinLimit() && a.HasDefaultMaxLimit() {
		return b.String(), nil
	}
	for _, limit := range []decimal.Decimal{a.minLimit, a.maxLimit} {
		s, err := encodeAmount(limit)
		if err != nil {
			return "", fmt.Errorf("account %s limit: %w", a.number, err)
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

// DecodeAccount parses a fixed-width account record. The kind is taken from
// the first character of the account number; absent limit columns mean the
// default limits.
func DecodeAccount(line string) (*Account, error) {
	runes := []rune(strings.TrimRight(line, "\r\n"))
	if len(runes) <= accountBalanceStart {
		return nil, fmt.Errorf("%w: account record too short", ErrMalformedLine)
	}

	number := string(runes[:accountNameStart])
	if err := ValidateAccountNumber(number); err != nil {
		return nil, err
	}
	name := strings.TrimRight(column(runes, accountNameStart, accountBalanceStart), " ")

	balance, err := decodeAmount(column(runes, accountBalanceStart, accountMinStart), "balance")
	if err != nil {
		return nil, err
	}
	minLimit, err := decodeOptionalAmount(column(runes, accountMinStart, accountMaxStart), DefaultMinLimit, "min limit")
	if err != nil {
		return nil, err
	}
	maxLimit, err := decodeOptionalAmount(column(runes, accountMaxStart, accountRecordEnd), DefaultMaxLimit, "max limit")
	if err != nil {
		return nil, err
	}

	// The stored balance is the opening balance, which was checked against
	// the default limits. Stored limits may have been set later and are
	// applied without re-checking it.
	a, err := NewAccount(AccountKind(number[:1]), number, name, balance)
	if err != nil {
		return nil, err
	}
	a.SetLimits(minLimit, maxLimit)
	return a, nil
}

// Encode renders the transaction as a fixed-width record
func (t *Transaction) Encode() (string, error) {
	amount, err := encodeAmount(t.amount)
	if err != nil {
		return "", fmt.Errorf("transaction amount: %w", err)
	}
	return t.date.Format(txnDateLayout) + t.account + string(t.txnType) + amount, nil
}

// DecodeTransaction parses a fixed-width transaction record
func DecodeTransaction(line string) (*Transaction, error) {
	runes := []rune(strings.TrimRight(line, "\r\n"))
	if len(runes) <= txnAmountStart {
		return nil, fmt.Errorf("%w: transaction record too short", ErrMalformedLine)
	}

	date, err := ParseTransactionDate(string(runes[:txnAccountStart]))
	if err != nil {
		return nil, err
	}
	amount, err := decodeAmount(string(runes[txnAmountStart:]), "amount")
	if err != nil {
		return nil, err
	}
	return NewTransaction(
		date,
		string(runes[txnAccountStart:txnTypeStart]),
		TransactionType(string(runes[txnTypeStart:txnAmountStart])),
		amount,
	)
}

// column returns runes[start:end] clipped to the record length
func column(runes []rune, start, end int) string {
	if start >= len(runes) {
		return ""
	}
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[start:end])
}

func decodeAmount(field, name string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(field))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid %s %q", ErrMalformedLine, name, strings.TrimSpace(field))
	}
	return d, nil
}

func decodeOptionalAmount(field string, fallback decimal.Decimal, name string) (decimal.Decimal, error) {
	if strings.TrimSpace(field) == "" {
		return fallback, nil
	}
	return decodeAmount(field, name)
}
