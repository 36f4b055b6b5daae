package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/simonkvalheim/hm9-ledger/internal/model"
)

// Statement is the monthly view of one account
type Statement struct {
	Account      *model.Account       `json:"account"`
	Balance      decimal.Decimal      `json:"balance"`
	Interest     decimal.Decimal      `json:"interest"`
	Transactions []*model.Transaction `json:"transactions"`
}

// Statement projects one month of interest on a savings account and returns
// it with the account's transactions. Balance is the balance after interest;
// the account itself is left unchanged, so repeated statements agree.
func (s *Service) Statement(number string) (*Statement, error) {
	account, err := s.accounts.Get(number)
	if err != nil {
		return nil, err
	}

	balance, interest, err := account.MonthlyInterest()
	if err != nil {
		return nil, err
	}

	transactions := s.transactions.Search(number)
	if transactions == nil {
		transactions = []*model.Transaction{}
	}

	return &Statement{
		Account:      account,
		Balance:      balance,
		Interest:     interest,
		Transactions: transactions,
	}, nil
}
