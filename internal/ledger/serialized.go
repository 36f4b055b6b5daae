package ledger

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/simonkvalheim/hm9-ledger/internal/model"
)

// Serialized lets HTTP handlers and the posting worker share one Service.
// Every access goes through a single mutex, so the service still sees one
// caller at a time.
type Serialized struct {
	mu  sync.Mutex
	svc *Service
}

// NewSerialized wraps svc
func NewSerialized(svc *Service) *Serialized {
	return &Serialized{svc: svc}
}

// Do runs fn with exclusive access to the service
func (s *Serialized) Do(fn func(*Service) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.svc)
}

// Post applies a deposit or withdrawal under the lock
func (s *Serialized) Post(ctx context.Context, number string, txnType model.TransactionType, amount decimal.Decimal) (*model.Transaction, error) {
	var txn *model.Transaction
	err := s.Do(func(svc *Service) error {
		var err error
		txn, err = svc.Post(ctx, number, txnType, amount)
		return err
	})
	return txn, err
}
