package repository

import (
	"fmt"
	"io"

	"github.com/simonkvalheim/hm9-ledger/internal/model"
)

// TransactionRegistry is the transaction log, kept in append order
type TransactionRegistry struct {
	items []*model.Transaction
}

// NewTransactionRegistry creates an empty TransactionRegistry
func NewTransactionRegistry() *TransactionRegistry {
	return &TransactionRegistry{}
}

// Append adds a transaction to the end of the log. Duplicates are allowed.
func (r *TransactionRegistry) Append(txn *model.Transaction) {
	r.items = append(r.items, txn)
}

// Len returns the number of logged transactions
func (r *TransactionRegistry) Len() int {
	return len(r.items)
}

// All returns every transaction in log order
func (r *TransactionRegistry) All() []*model.Transaction {
	out := make([]*model.Transaction, len(r.items))
	copy(out, r.items)
	return out
}

// Search returns the transactions of one account in log order. No match is
// an empty result, not an error.
func (r *TransactionRegistry) Search(accountNumber string) []*model.Transaction {
	var out []*model.Transaction
	for _, txn := range r.items {
		if txn.Account() == accountNumber {
			out = append(out, txn)
		}
	}
	return out
}

// Load replaces the log with the records read from src.
// On error the log is left unchanged.
func (r *TransactionRegistry) Load(src io.Reader) error {
	var items []*model.Transaction
	err := readRecords(src, func(line string) error {
		txn, err := model.DecodeTransaction(line)
		if err != nil {
			return err
		}
		items = append(items, txn)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	r.items = items
	return nil
}

// Save writes one record per transaction to dst in log order
func (r *TransactionRegistry) Save(dst io.Writer) error {
	lines := make([]string, 0, len(r.items))
	for _, txn := range r.items {
		line, err := txn.Encode()
		if err != nil {
			return fmt.Errorf("failed to save transactions: %w", err)
		}
		lines = append(lines, line)
	}
	if err := writeRecords(dst, lines); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}
	return nil
}
