// Package ledger ties the account and transaction registries to a store.
//
// Balances are never stored as such: on load the persisted account snapshot
// is read and the whole transaction log is replayed on top of it. Every
// mutating call persists the registry it touched before returning.
package ledger

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simonkvalheim/hm9-ledger/internal/model"
	"github.com/simonkvalheim/hm9-ledger/internal/repository"
	"github.com/simonkvalheim/hm9-ledger/internal/storage"
)

// Service is the single owner of ledger state. It is not safe for concurrent
// use; callers that share it must serialize access.
type Service struct {
	store        storage.Store
	accounts     *repository.AccountRegistry
	transactions *repository.TransactionRegistry
	now          func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithClock sets the clock used to date new transactions
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates an empty Service persisting to store
func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:        store,
		accounts:     repository.NewAccountRegistry(),
		transactions: repository.NewTransactionRegistry(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize loads both datasets from the store and replays the log
func (s *Service) Initialize(ctx context.Context) error {
	accounts, err := s.store.Open(ctx, storage.DatasetAccounts)
	if err != nil {
		return err
	}
	defer accounts.Close()

	transactions, err := s.store.Open(ctx, storage.DatasetTransactions)
	if err != nil {
		return err
	}
	defer transactions.Close()

	return s.Load(accounts, transactions)
}

// Load replaces the in-memory state with the given sources and replays every
// transaction against its account in log order. A transaction naming an
// unknown account fails the whole load. On error the current state is kept.
func (s *Service) Load(accountsSrc, transactionsSrc io.Reader) error {
	accounts := repository.NewAccountRegistry()
	if err := accounts.Load(accountsSrc); err != nil {
		return err
	}

	transactions := repository.NewTransactionRegistry()
	if err := transactions.Load(transactionsSrc); err != nil {
		return err
	}

	if err := replay(accounts, transactions); err != nil {
		return err
	}

	s.accounts = accounts
	s.transactions = transactions
	return nil
}

// replay applies every logged transaction to the loaded account snapshot
func replay(accounts *repository.AccountRegistry, transactions *repository.TransactionRegistry) error {
	for i, txn := range transactions.All() {
		account, err := accounts.Get(txn.Account())
		if err != nil {
			return fmt.Errorf("replay transaction %d: %w", i+1, err)
		}
		if err := txn.ApplyTo(account); err != nil {
			return fmt.Errorf("replay transaction %d on %s: %w", i+1, txn.Account(), err)
		}
	}
	return nil
}

// Import replaces the ledger with the given sources, replays the log and
// persists the result to the store
func (s *Service) Import(ctx context.Context, accountsSrc, transactionsSrc io.Reader) error {
	if err := s.Load(accountsSrc, transactionsSrc); err != nil {
		return err
	}
	if err := s.saveAccounts(ctx); err != nil {
		return err
	}
	return s.saveTransactions(ctx)
}

// Deposit credits amount to the account and logs a transaction dated now
func (s *Service) Deposit(ctx context.Context, number string, amount decimal.Decimal) (*model.Transaction, error) {
	return s.post(ctx, number, model.TransactionTypeDeposit, amount)
}

// Withdraw debits amount from the account and logs a transaction dated now
func (s *Service) Withdraw(ctx context.Context, number string, amount decimal.Decimal) (*model.Transaction, error) {
	return s.post(ctx, number, model.TransactionTypeWithdraw, amount)
}

// Post applies a deposit or withdrawal chosen by type
func (s *Service) Post(ctx context.Context, number string, txnType model.TransactionType, amount decimal.Decimal) (*model.Transaction, error) {
	return s.post(ctx, number, txnType, amount)
}

// post applies the transaction first and logs it only once the account
// accepted it, so a rejected posting leaves no trace
func (s *Service) post(ctx context.Context, number string, txnType model.TransactionType, amount decimal.Decimal) (*model.Transaction, error) {
	account, err := s.accounts.Get(number)
	if err != nil {
		return nil, err
	}

	txn, err := model.NewTransaction(s.now(), number, txnType, amount)
	if err != nil {
		return nil, err
	}
	if err := txn.ApplyTo(account); err != nil {
		return nil, err
	}

	s.transactions.Append(txn)
	if err := s.saveTransactions(ctx); err != nil {
		return nil, err
	}
	return txn, nil
}

// SetLimits replaces the account's limits and persists the accounts
func (s *Service) SetLimits(ctx context.Context, number string, minLimit, maxLimit decimal.Decimal) (*model.Account, error) {
	account, err := s.accounts.Get(number)
	if err != nil {
		return nil, err
	}

	account.SetLimits(minLimit, maxLimit)
	if err := s.saveAccounts(ctx); err != nil {
		return nil, err
	}
	return account, nil
}

// CreateAccount opens an account under the next free number of its kind
func (s *Service) CreateAccount(ctx context.Context, customerName string, kind model.AccountKind, balance decimal.Decimal) (*model.Account, error) {
	number, err := s.accounts.NextFreeNumber(kind)
	if err != nil {
		return nil, err
	}

	account, err := model.NewAccount(kind, number, customerName, balance)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Add(account); err != nil {
		return nil, err
	}

	if err := s.saveAccounts(ctx); err != nil {
		return nil, err
	}
	return account, nil
}

// Account looks up one account
func (s *Service) Account(number string) (*model.Account, error) {
	return s.accounts.Get(number)
}

// Accounts returns all accounts in registry order
func (s *Service) Accounts() []*model.Account {
	return s.accounts.All()
}

// Transactions returns the log, or only the entries of one account when
// number is not empty
func (s *Service) Transactions(number string) []*model.Transaction {
	if number == "" {
		return s.transactions.All()
	}
	return s.transactions.Search(number)
}

// ExportAccounts writes the account registry in the fixed-width format
func (s *Service) ExportAccounts(w io.Writer) error {
	return s.accounts.Save(w)
}

// ExportTransactions writes the transaction log in the fixed-width format
func (s *Service) ExportTransactions(w io.Writer) error {
	return s.transactions.Save(w)
}

func (s *Service) saveAccounts(ctx context.Context) error {
	return s.store.Replace(ctx, storage.DatasetAccounts, s.accounts.Save)
}

func (s *Service) saveTransactions(ctx context.Context) error {
	return s.store.Replace(ctx, storage.DatasetTransactions, s.transactions.Save)
}
