package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simonkvalheim/hm9-ledger/internal/model"
)

// Poster applies a single deposit or withdrawal to the ledger
type Poster interface {
	Post(ctx context.Context, number string, txnType model.TransactionType, amount decimal.Decimal) (*model.Transaction, error)
}

// Posting is a deposit or withdrawal accepted for later processing
type Posting struct {
	ID      uuid.UUID
	Account string
	Type    string
	Amount  string
}

// ProcessResult contains the result of processing a posting
type ProcessResult struct {
	Success      bool
	ErrorMessage string
	Transaction  *model.Transaction
}

// PostingProcessor applies queued postings to the ledger
type PostingProcessor struct {
	ledger Poster
}

// NewPostingProcessor creates a new PostingProcessor
func NewPostingProcessor(ledger Poster) *PostingProcessor {
	return &PostingProcessor{ledger: ledger}
}

// Process applies one posting.
//
// A posting the ledger rejects (bad amount, unknown account, limit crossed)
// is a failed result, not an error. Errors are reserved for failures where
// the posting itself may be fine, such as the store being unavailable.
func (p *PostingProcessor) Process(ctx context.Context, posting Posting) (*ProcessResult, error) {
	amount, err := model.ParseMoney(posting.Amount)
	if err != nil {
		return failed(err), nil
	}

	txn, err := p.ledger.Post(ctx, posting.Account, model.TransactionType(posting.Type), amount)
	if err != nil {
		if isRejection(err) {
			return failed(err), nil
		}
		return nil, fmt.Errorf("failed to post %s: %w", posting.ID, err)
	}

	return &ProcessResult{Success: true, Transaction: txn}, nil
}

func failed(err error) *ProcessResult {
	return &ProcessResult{Success: false, ErrorMessage: err.Error()}
}

// isRejection reports whether err is the ledger refusing the posting
func isRejection(err error) bool {
	return errors.Is(err, model.ErrValidation) ||
		errors.Is(err, model.ErrNotFound) ||
		errors.Is(err, model.ErrDuplicate)
}
