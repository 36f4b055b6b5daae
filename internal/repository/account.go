package repository

import (
	"fmt"
	"io"
	"strconv"

	"github.com/simonkvalheim/hm9-ledger/internal/model"
)

// maxAccountSuffix is the largest five digit account number suffix
const maxAccountSuffix = 99999

// AccountRegistry holds accounts keyed by number, remembering insertion order
// for listing and saving.
type AccountRegistry struct {
	accounts map[string]*model.Account
	order    []string
}

// NewAccountRegistry creates an empty AccountRegistry
func NewAccountRegistry() *AccountRegistry {
	return &AccountRegistry{accounts: make(map[string]*model.Account)}
}

// Add registers an account. It fails if the number is already taken.
func (r *AccountRegistry) Add(account *model.Account) error {
	if _, exists := r.accounts[account.Number()]; exists {
		return fmt.Errorf("%w: %s", model.ErrAccountExists, account.Number())
	}
	r.accounts[account.Number()] = account
	r.order = append(r.order, account.Number())
	return nil
}

// Get retrieves an account by its number
func (r *AccountRegistry) Get(number string) (*model.Account, error) {
	account, ok := r.accounts[number]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrAccountNotFound, number)
	}
	return account, nil
}

// Len returns the number of registered accounts
func (r *AccountRegistry) Len() int {
	return len(r.order)
}

// All returns the accounts in insertion order
func (r *AccountRegistry) All() []*model.Account {
	out := make([]*model.Account, 0, len(r.order))
	for _, number := range r.order {
		out = append(out, r.accounts[number])
	}
	return out
}

// NextFreeNumber allocates the number after the highest existing number of
// the given kind. Gaps below the maximum are never reused.
func (r *AccountRegistry) NextFreeNumber(kind model.AccountKind) (string, error) {
	if kind != model.AccountKindSavings && kind != model.AccountKindCurrent {
		return "", model.ErrInvalidAccountKind
	}

	highest := 0
	for _, account := range r.accounts {
		if account.Kind() != kind {
			continue
		}
		n, err := strconv.Atoi(account.Number()[1:])
		if err != nil {
			return "", fmt.Errorf("account %s: %w", account.Number(), model.ErrAccountNumberDigits)
		}
		if n > highest {
			highest = n
		}
	}

	if highest >= maxAccountSuffix {
		return "", fmt.Errorf("%w for kind %s", model.ErrAccountNumbersSpent, kind)
	}
	return fmt.Sprintf("%s%05d", kind, highest+1), nil
}

// Load replaces the registry contents with the records read from src.
// On error the registry is left unchanged.
func (r *AccountRegistry) Load(src io.Reader) error {
	loaded := NewAccountRegistry()
	err := readRecords(src, func(line string) error {
		account, err := model.DecodeAccount(line)
		if err != nil {
			return err
		}
		return loaded.Add(account)
	})
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}

	r.accounts = loaded.accounts
	r.order = loaded.order
	return nil
}

// Save writes one record per account to dst in insertion order
func (r *AccountRegistry) Save(dst io.Writer) error {
	lines := make([]string, 0, len(r.order))
	for _, account := range r.All() {
		line, err := account.Encode()
		if err != nil {
			return fmt.Errorf("failed to save accounts: %w", err)
		}
		lines = append(lines, line)
	}
	if err := writeRecords(dst, lines); err != nil {
		return fmt.Errorf("failed to save accounts: %w", err)
	}
	return nil
}
